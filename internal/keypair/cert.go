package keypair

import (
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"fmt"
	"math/big"
	"time"

	"primeforge/internal/entropy"
	"primeforge/internal/util/memzero"
)

// CertParams names the self-signed certificate surface.
type CertParams struct {
	CommonName   string
	Organization string
	DNSName      string
	ValidityDays int
}

// DefaultCertParams returns the fixed identity used for generated
// certificates.
func DefaultCertParams() CertParams {
	return CertParams{
		CommonName:   "PRIMEFORGE_RSA_KEY_GEN",
		Organization: "PrimeForge RSA Key Generator",
		DNSName:      "secure.primeforge.local",
		ValidityDays: DefaultValidityDays,
	}
}

// Certificate signs a self-issued X.509 v3 certificate over the
// material and returns the DER encoding. The serial number comes from
// 20 fresh entropy bytes, never from the generation seed, so
// certificates of related runs cannot be correlated.
func Certificate(m *Material, p CertParams) ([]byte, error) {
	serialBytes, err := entropy.Bytes(20)
	if err != nil {
		return nil, fmt.Errorf("certificate serial: %w", err)
	}
	serial := new(big.Int).SetBytes(serialBytes)
	memzero.Zero(serialBytes)

	now := time.Now()
	tmpl := &x509.Certificate{
		SerialNumber: serial,
		Subject: pkix.Name{
			CommonName:   p.CommonName,
			Organization: []string{p.Organization},
		},
		NotBefore:             now,
		NotAfter:              now.Add(time.Duration(p.ValidityDays) * 24 * time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth, x509.ExtKeyUsageClientAuth},
		BasicConstraintsValid: true,
		IsCA:                  false,
		DNSNames:              []string{p.DNSName},
		SignatureAlgorithm:    x509.SHA256WithRSA,
	}

	key, err := m.ToCryptoKey()
	if err != nil {
		return nil, err
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		return nil, fmt.Errorf("sign certificate: %w", err)
	}
	return der, nil
}

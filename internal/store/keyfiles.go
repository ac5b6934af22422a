package store

import (
	"bytes"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	logging "github.com/ipfs/go-log/v2"

	"primeforge/internal/util/memzero"
)

var log = logging.Logger("store")

const (
	keyPattern  = "primeforge-%s.key"
	certPattern = "primeforge-%s.crt"
	encSuffix   = ".enc"

	keyPEMType  = "PRIVATE KEY"
	certPEMType = "CERTIFICATE"
)

// KeyHeader is the provenance comment written ahead of the PEM block in a
// key file. The seed hex is enough to regenerate the exact same keypair,
// so it shares the key file's protection (file mode, envelope).
type KeyHeader struct {
	SeedHex   string
	BumpP     int
	BumpQ     int
	KappaStar float64
	KappaGeo  float64
}

func (h KeyHeader) render() string {
	return fmt.Sprintf(
		"# PRIMEFORGE RSA KEY GENERATOR\n# seed_hex=%q; bumps: p=%d, q=%d; kappa_star=%g, kappa_geo=%g\n",
		h.SeedHex, h.BumpP, h.BumpQ, h.KappaStar, h.KappaGeo)
}

// Writer persists generated key material under a single output directory.
type Writer struct {
	dir string
	mu  sync.Mutex
}

func NewWriter(dir string) *Writer { return &Writer{dir: dir} }

// WriteKey serialises key as PKCS#8 PEM prefixed with the header comment
// lines and writes it to <dir>/primeforge-<tag>.key with mode 0600. With a
// non-empty passphrase the whole file body (header included) is sealed
// into a JSON envelope instead and the name gains a .enc suffix. Returns
// the path written.
func (w *Writer) WriteKey(key *rsa.PrivateKey, tag string, hdr KeyHeader, passphrase string) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.ensureDir(); err != nil {
		return "", err
	}

	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return "", fmt.Errorf("encode private key: %w", err)
	}
	defer memzero.Zero(der)

	var buf bytes.Buffer
	buf.WriteString(hdr.render())
	if err := pem.Encode(&buf, &pem.Block{Type: keyPEMType, Bytes: der}); err != nil {
		return "", err
	}
	plain := buf.Bytes()
	defer memzero.Zero(plain)

	name := fmt.Sprintf(keyPattern, tag)
	out := plain
	if passphrase != "" {
		sealed, err := seal(passphrase, plain)
		if err != nil {
			return "", err
		}
		name += encSuffix
		out = sealed
	}

	path := filepath.Join(w.dir, name)
	if err := writeFile(path, out, 0o600); err != nil {
		return "", err
	}
	log.Debugf("wrote key file %s (%d bytes, sealed=%v)", path, len(out), passphrase != "")
	return path, nil
}

// WriteCert writes a DER certificate to <dir>/primeforge-<tag>.crt as PEM.
// Returns the path written.
func (w *Writer) WriteCert(der []byte, tag string) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.ensureDir(); err != nil {
		return "", err
	}

	pemBytes := pem.EncodeToMemory(&pem.Block{Type: certPEMType, Bytes: der})
	path := filepath.Join(w.dir, fmt.Sprintf(certPattern, tag))
	if err := writeFile(path, pemBytes, 0o600); err != nil {
		return "", err
	}
	log.Debugf("wrote certificate %s (%d bytes)", path, len(pemBytes))
	return path, nil
}

// ReadKey loads a key file written by WriteKey, in either the plain PEM or
// the envelope form. The leading header comment lines are skipped; for an
// envelope the passphrase must match or ErrPassphrase is returned.
func ReadKey(path, passphrase string) (*rsa.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	block, _ := pem.Decode(data)
	if block == nil {
		plain, err := open(passphrase, data)
		if err != nil {
			return nil, err
		}
		block, _ = pem.Decode(plain)
		memzero.Zero(plain)
	}
	if block == nil || block.Type != keyPEMType {
		return nil, fmt.Errorf("%s: no private key PEM block", path)
	}
	defer memzero.Zero(block.Bytes)

	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("decode private key: %w", err)
	}
	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%s: not an RSA private key", path)
	}
	return key, nil
}

func (w *Writer) ensureDir() error {
	fi, err := os.Stat(w.dir)
	if err == nil {
		if !fi.IsDir() {
			return fmt.Errorf("%s exists and is not a directory", w.dir)
		}
		return nil
	}
	return os.MkdirAll(w.dir, 0o700)
}

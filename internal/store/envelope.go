package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"

	"primeforge/internal/entropy"
	"primeforge/internal/util/memzero"
)

const (
	// The current supported version of the encrypted key-file format.
	envelopeVersion = 1

	kdfName  = "scrypt"
	saltSize = 16
)

// ErrPassphrase is returned when the passphrase is incorrect or the
// ciphertext has been modified / corrupted.
var ErrPassphrase = errors.New("wrong passphrase or corrupted key file")

// envelope is the on-disk JSON structure holding the ciphertext and KDF
// parameters for a passphrase-protected key file.
type envelope struct {
	V      int    `json:"v"`
	KDF    string `json:"kdf"`
	Salt   []byte `json:"salt"`
	N      int    `json:"scrypt_N"`
	R      int    `json:"scrypt_r"`
	P      int    `json:"scrypt_p"`
	Nonce  []byte `json:"nonce"`
	Cipher []byte `json:"cipher"`
}

// seal derives a key from passphrase and encrypts raw into a JSON envelope.
// The salt and nonce are drawn fresh from the OS entropy source; the AEAD
// additionally binds the ciphertext to the salt.
func seal(passphrase string, raw []byte) ([]byte, error) {
	salt, err := entropy.Bytes(saltSize)
	if err != nil {
		return nil, err
	}
	nonce, err := entropy.Bytes(chacha20poly1305.NonceSize)
	if err != nil {
		return nil, err
	}
	N, r, p := scryptParams()
	key, err := scrypt.Key([]byte(passphrase), salt, N, r, p, chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}
	defer memzero.Zero(key)

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	ct := aead.Seal(nil, nonce, raw, salt)

	return json.Marshal(envelope{
		V:      envelopeVersion,
		KDF:    kdfName,
		Salt:   salt,
		N:      N,
		R:      r,
		P:      p,
		Nonce:  nonce,
		Cipher: ct,
	})
}

// open decrypts a JSON envelope using a key derived from passphrase.
func open(passphrase string, blob []byte) ([]byte, error) {
	var env envelope
	if err := json.Unmarshal(blob, &env); err != nil {
		return nil, fmt.Errorf("malformed key envelope: %w", err)
	}
	if env.V > envelopeVersion {
		return nil, fmt.Errorf("unsupported key envelope version %d", env.V)
	}
	if env.KDF != kdfName {
		return nil, fmt.Errorf("unsupported key derivation %q", env.KDF)
	}
	if len(env.Nonce) != chacha20poly1305.NonceSize {
		return nil, ErrPassphrase
	}

	key, err := scrypt.Key([]byte(passphrase), env.Salt, env.N, env.R, env.P, chacha20poly1305.KeySize)
	if err != nil {
		return nil, fmt.Errorf("key derivation: %w", err)
	}
	defer memzero.Zero(key)

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	pt, err := aead.Open(nil, env.Nonce, env.Cipher, env.Salt)
	if err != nil {
		return nil, ErrPassphrase
	}
	return pt, nil
}

// Tunables for scrypt key derivation.
func scryptParams() (N, r, p int) { return 1 << 15, 8, 1 }

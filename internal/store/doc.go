// Package store persists generated RSA key material on disk.
//
// Key files are PKCS#8 PEM prefixed with provenance comment lines, written
// atomically with owner-only permissions; an optional passphrase wraps the
// whole file in a scrypt + ChaCha20-Poly1305 JSON envelope. Certificates
// are written alongside as PEM. File names are derived from the seed tag,
// so repeated runs with the same seed overwrite rather than accumulate.
package store

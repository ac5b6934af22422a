// Package keypair assembles RSA key material and orchestrates the
// generation pipeline end to end: seed-derived starting points, the
// estimator-guided prime searches, the duplicate-prime retry policy and
// the final verified assembly. A certificate helper bridges the material
// into a self-signed X.509 identity.
package keypair

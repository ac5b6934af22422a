// Package seed defines the 256-bit master seed and the domain-tagged
// derivation scheme that turns one seed into independent sub-seeds for
// the two prime searches. Derivation is deterministic, so the same seed
// reproduces the same keypair.
package seed

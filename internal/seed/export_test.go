package seed

// MixDigestForTesting exposes the context-mix digest so tests can pin
// its construction.
var MixDigestForTesting = mixDigest

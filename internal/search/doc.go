// Package search turns prime-location estimates into verified probable
// primes. The guided walk tests odd candidates forward from an estimate
// inside a fixed bit window; the uniform walk is the deterministic
// fallback that wraps at the window boundary instead of stopping. Both
// enforce the proximity guard against a reference prime and can fan a
// segment out over a worker pool.
package search

package search

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"runtime"
	"sync"
	"sync/atomic"

	logging "github.com/ipfs/go-log/v2"

	"primeforge/internal/primality"
)

var log = logging.Logger("search")

// ErrExhausted reports a search that ran out of attempt budget, or
// walked past the bit-window boundary, without an acceptable prime.
var ErrExhausted = errors.New("prime search exhausted")

// DefaultProximityBits is the width of the shared-prefix window used to
// keep the two primes of a keypair apart (X9.31 style).
const DefaultProximityBits = 100

var (
	one = big.NewInt(1)
	two = big.NewInt(2)
)

// Result carries an accepted prime. Attempts is the zero-based index of
// the winning attempt within the budget; Parallel records whether the
// worker pool produced it.
type Result struct {
	Prime    *big.Int
	Attempts uint64
	Parallel bool
}

// Engine walks candidate windows looking for probable primes. Workers
// bounds the goroutines used per segment; ProximityBits sets the
// closeness window enforced against an avoid reference.
type Engine struct {
	tester        *primality.Tester
	workers       int
	proximityBits uint
}

// NewEngine returns an Engine. workers <= 0 selects GOMAXPROCS-style
// auto-sizing via NumCPU; proximityBits 0 selects the default window.
func NewEngine(t *primality.Tester, workers int, proximityBits uint) *Engine {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if proximityBits == 0 {
		proximityBits = DefaultProximityBits
	}
	return &Engine{tester: t, workers: workers, proximityBits: proximityBits}
}

// TooClose reports whether a and b agree in the top window bits of a
// bits-wide value. window >= bits degenerates to exact equality.
func TooClose(a, b *big.Int, bits, window uint) bool {
	var shift uint
	if window < bits {
		shift = bits - window
	}
	ah := new(big.Int).Rsh(a, shift)
	bh := new(big.Int).Rsh(b, shift)
	return ah.Cmp(bh) == 0
}

// Guided searches forward from an estimated prime location. The estimate
// is folded into [2^(bits-1), 2^bits) with the top bit set and forced
// odd, then walked in steps of 2. The walk is segmented so that no
// segment can cross the 2^bits boundary: each segment is capped at half
// the remaining distance, and the base advances past failed segments.
// The search stops at the boundary even with budget left. bits must be
// at least 2.
func (e *Engine) Guided(estimate *big.Int, bits uint, budget uint64, hint uint64, avoid *big.Int) (Result, error) {
	modulus := new(big.Int).Lsh(one, bits)
	base := new(big.Int).Mod(estimate, modulus)
	base.SetBit(base, int(bits-1), 1)
	base.SetBit(base, 0, 1)

	current := new(big.Int).Set(base)
	remaining := budget
	var offset uint64

	for remaining > 0 {
		segment := remaining

		distance := new(big.Int).Sub(modulus, current)
		if distance.Sign() <= 0 {
			break
		}
		twiceSeg := segment * 2
		if segment > math.MaxUint64/2 {
			twiceSeg = math.MaxUint64
		}
		if distance.Cmp(new(big.Int).SetUint64(twiceSeg)) <= 0 {
			safe := new(big.Int).Rsh(distance, 1).Uint64()
			if safe == 0 {
				safe = 1
			}
			if safe < segment {
				segment = safe
			}
		}

		res, ok := e.scanSegment(current, bits, segment, hint+offset, false, avoid)
		if ok {
			res.Attempts += offset
			log.Debugf("guided search hit attempt %d of %d (parallel=%v)", res.Attempts, budget, res.Parallel)
			return res, nil
		}

		offset += segment
		remaining -= segment
		if remaining == 0 {
			break
		}
		step := new(big.Int).SetUint64(offset)
		current.Add(base, step.Lsh(step, 1))
		if current.Cmp(modulus) >= 0 {
			break
		}
	}
	return Result{}, fmt.Errorf("%w: guided walk, %d-attempt budget, %d-bit window", ErrExhausted, budget, bits)
}

// Uniform scans from a derived starting point with wrap-around: the
// start is folded into the window and forced odd, and a walk that
// crosses 2^bits clamps back to the bottom of the window instead of
// stopping. Witness hints derive from the attempt index alone.
func (e *Engine) Uniform(start *big.Int, bits uint, budget uint64, avoid *big.Int) (Result, error) {
	cand := new(big.Int).Mod(start, new(big.Int).Lsh(one, bits))
	cand.SetBit(cand, int(bits-1), 1)
	cand.SetBit(cand, 0, 1)

	res, ok := e.scanSegment(cand, bits, budget, 0, true, avoid)
	if !ok {
		return Result{}, fmt.Errorf("%w: uniform scan, %d-attempt budget, %d-bit window", ErrExhausted, budget, bits)
	}
	log.Debugf("uniform search hit attempt %d of %d (parallel=%v)", res.Attempts, budget, res.Parallel)
	return res, nil
}

// acceptable applies the primality test and the proximity guard.
func (e *Engine) acceptable(cand *big.Int, bits uint, hint uint64, avoid *big.Int) bool {
	if !e.tester.IsProbablePrime(cand, hint) {
		return false
	}
	if avoid != nil && TooClose(avoid, cand, bits, e.proximityBits) {
		return false
	}
	return true
}

func (e *Engine) scanSegment(start *big.Int, bits uint, attempts uint64, hintSeed uint64, clamp bool, avoid *big.Int) (Result, bool) {
	if attempts == 0 {
		return Result{}, false
	}
	workers := e.workers
	if uint64(workers) > attempts {
		workers = int(attempts)
	}
	if workers >= 2 {
		return e.scanParallel(start, bits, attempts, hintSeed, clamp, avoid, workers)
	}
	return e.scanSerial(start, bits, attempts, hintSeed, clamp, avoid)
}

func (e *Engine) scanSerial(start *big.Int, bits uint, attempts uint64, hintSeed uint64, clamp bool, avoid *big.Int) (Result, bool) {
	cand := new(big.Int).Set(start)
	for attempt := uint64(0); attempt < attempts; attempt++ {
		if e.acceptable(cand, bits, hintSeed^attempt, avoid) {
			return Result{Prime: cand, Attempts: attempt}, true
		}
		cand.Add(cand, two)
		if cand.Bit(int(bits)) == 1 {
			if !clamp {
				break
			}
			cand.SetBit(cand, int(bits), 0)
			cand.SetBit(cand, int(bits-1), 1)
		}
	}
	return Result{}, false
}

// scanParallel fans the segment out over a worker pool. Worker w tests
// start+2w, start+2(w+T), start+2(w+2T), ... so the workers partition
// the same arithmetic progression the serial scan walks. The first
// worker to accept a candidate takes the single result slot and flips
// the cancellation flag; peers notice within one attempt. The flag
// belongs to winners only: a worker that walks past the boundary in
// stop mode retires quietly while peers finish their own progressions.
func (e *Engine) scanParallel(start *big.Int, bits uint, attempts uint64, hintSeed uint64, clamp bool, avoid *big.Int, workers int) (Result, bool) {
	var (
		cancel   atomic.Bool
		mu       sync.Mutex
		winner   *big.Int
		winIndex uint64
		wg       sync.WaitGroup
	)
	stride := new(big.Int).SetUint64(2 * uint64(workers))

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			cand := new(big.Int).SetUint64(2 * uint64(w))
			cand.Add(cand, start)
			if cand.Bit(int(bits)) == 1 {
				if !clamp {
					return
				}
				cand.SetBit(cand, int(bits), 0)
				cand.SetBit(cand, int(bits-1), 1)
			}
			for attempt := uint64(w); attempt < attempts; attempt += uint64(workers) {
				if cancel.Load() {
					return
				}
				if e.acceptable(cand, bits, hintSeed^attempt, avoid) {
					mu.Lock()
					if winner == nil {
						winner = new(big.Int).Set(cand)
						winIndex = attempt
					}
					mu.Unlock()
					cancel.Store(true)
					return
				}
				cand.Add(cand, stride)
				if cand.Bit(int(bits)) == 1 {
					if !clamp {
						return
					}
					cand.SetBit(cand, int(bits), 0)
					cand.SetBit(cand, int(bits-1), 1)
				}
			}
		}(w)
	}
	wg.Wait()

	if winner == nil {
		return Result{}, false
	}
	return Result{Prime: winner, Attempts: winIndex, Parallel: true}, true
}

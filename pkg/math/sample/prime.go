package sample

import (
	"io"
	"math"
	"math/big"
	"sync"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/mpc-sign/internal/params"
	"github.com/taurusgroup/mpc-sign/pkg/pool"
)

const (
	// windowSize is the number of consecutive candidates examined per random starting point.
	windowSize = 1 << 18
	// smallPrimeBound bounds the primes used to sieve a window.
	smallPrimeBound = 1 << 20
	// millerRabinRounds is applied to (p-1)/2 only, one round suffices for p once (p-1)/2 is prime.
	millerRabinRounds = 20
)

var (
	smallPrimesOnce sync.Once
	smallPrimes     []uint32

	windows = sync.Pool{
		New: func() any {
			w := make([]bool, windowSize)
			return &w
		},
	}
)

// oddPrimesBelow runs the sieve of Eratosthenes and returns the odd primes smaller than bound.
func oddPrimesBelow(bound uint32) []uint32 {
	composite := make([]bool, bound)
	for p := uint32(2); p*p < bound; p++ {
		if composite[p] {
			continue
		}
		for m := 2 * p; m < bound; m += p {
			composite[m] = true
		}
	}
	// there are roughly N/ln(N) primes below N
	out := make([]uint32, 0, int(float64(bound)/math.Log(float64(bound))))
	for p := uint32(3); p < bound; p++ {
		if !composite[p] {
			out = append(out, p)
		}
	}
	return out
}

// markWindow sets alive[δ] for every candidate base+δ which can still be a safe Blum prime.
func markWindow(base *big.Int, alive []bool) {
	// base ≡ 3 (mod 4), so only δ ≡ 0 (mod 4) keeps p ≡ 3 (mod 4)
	for i := range alive {
		alive[i] = i%4 == 0
	}
	var modulus, r big.Int
	for _, prime := range smallPrimes {
		step := int(prime)
		// x ≡ 0 (mod prime) means x is composite, x ≡ 1 (mod prime) means (x-1)/2 is.
		rem := int(r.Mod(base, modulus.SetUint64(uint64(prime))).Uint64())
		first := 0
		if rem != 0 {
			first = step - rem
		}
		for i := first; i+1 < len(alive); i += step {
			alive[i] = false
			alive[i+1] = false
		}
	}
}

// tryBlumPrime looks for a safe prime p ≡ 3 (mod 4) in a window after a random starting point.
// It returns nil if the window contains none, or if rand fails.
func tryBlumPrime(rand io.Reader) *saferith.Nat {
	smallPrimesOnce.Do(func() { smallPrimes = oddPrimesBelow(smallPrimeBound) })

	buf := make([]byte, (params.BitsBlumPrime+7)/8)
	if _, err := io.ReadFull(rand, buf); err != nil {
		return nil
	}
	// the two top bits make the product of two such primes exactly twice as long
	buf[0] |= 0xC0
	buf[len(buf)-1] |= 3
	base := new(big.Int).SetBytes(buf)

	window := windows.Get().(*[]bool)
	defer windows.Put(window)
	alive := *window
	markWindow(base, alive)

	p, half := new(big.Int), new(big.Int)
	for delta, ok := range alive {
		if !ok {
			continue
		}
		p.Add(base, big.NewInt(int64(delta)))
		if p.BitLen() > params.BitsBlumPrime {
			return nil
		}
		// (p-1)/2 fails more often, test it first
		if !half.Rsh(p, 1).ProbablyPrime(millerRabinRounds) {
			continue
		}
		if !p.ProbablyPrime(0) {
			continue
		}
		return new(saferith.Nat).SetBig(p, params.BitsBlumPrime)
	}
	return nil
}

// BlumPrime returns a safe prime p ≡ 3 (mod 4) of params.BitsBlumPrime bits.
func BlumPrime(rand io.Reader) *saferith.Nat {
	for {
		if p := tryBlumPrime(rand); p != nil {
			return p
		}
	}
}

// Paillier returns the two safe Blum primes of a Paillier modulus N = p⋅q,
// searching for them on the pool's workers.
func Paillier(rand io.Reader, pl *pool.Pool) (p, q *saferith.Nat) {
	reader := pool.NewLockedReader(rand)
	found := pl.Search(2, func() interface{} {
		// a typed nil would count as a result
		if prime := tryBlumPrime(reader); prime != nil {
			return prime
		}
		return nil
	})
	return found[0].(*saferith.Nat), found[1].(*saferith.Nat)
}

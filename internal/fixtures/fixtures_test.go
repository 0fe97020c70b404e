package fixtures

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaillierPrimes(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < MaxPairs; i++ {
		p, q := PaillierPrimes(i)
		for _, n := range []string{p.Big().String(), q.Big().String()} {
			assert.False(t, seen[n], "fixture primes must be distinct")
			seen[n] = true
		}
		assert.Equal(t, 1024, p.TrueLen())
		assert.True(t, p.Big().ProbablyPrime(20))
		assert.True(t, q.Big().ProbablyPrime(20))
	}
	assert.Panics(t, func() { PaillierPrimes(MaxPairs) })
}

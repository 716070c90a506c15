package speedup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFactor_ZeroServers(t *testing.T) {
	assert.Equal(t, Floor, Factor(0.5, 0))
	assert.Equal(t, Floor, Factor(0.5, -3))
}

func TestFactor_NoParallelism(t *testing.T) {
	// p == 0: speedup is always exactly 1 regardless of k.
	assert.InDelta(t, 1.0, Factor(0, 10), 1e-9)
}

func TestFactor_FullParallelism(t *testing.T) {
	// p == 1: speedup is exactly k.
	assert.InDelta(t, 4.0, Factor(1, 4), 1e-9)
}

func TestFactor_Monotone(t *testing.T) {
	p := 0.7
	prev := Factor(p, 1)
	for k := 2.0; k <= 64; k++ {
		cur := Factor(p, k)
		assert.GreaterOrEqual(t, cur, prev-1e-12, "speedup must be nondecreasing in k")
		prev = cur
	}
}

func TestFactor_Concave(t *testing.T) {
	p := 0.6
	// Second difference should be <= 0 for concavity in k.
	f1, f2, f3 := Factor(p, 2), Factor(p, 4), Factor(p, 6)
	assert.LessOrEqual(t, f3-f2, f2-f1+1e-9)
}

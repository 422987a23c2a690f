package tokens

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimate(t *testing.T) {
	assert.Equal(t, 0, Estimate(""))
	assert.Equal(t, 0, Estimate("one"))          // floor(1*0.75)
	assert.Equal(t, 1, Estimate("one two"))      // floor(2*0.75)
	assert.Equal(t, 3, Estimate("a b c d e"))    // floor(5*0.75)
	assert.Equal(t, 75, Estimate(strings.Repeat("word ", 100)))
}

func TestAddEstimateIsPerCallAdditive(t *testing.T) {
	// Estimating two calls separately must equal the sum of the per-call
	// floors, which can differ from estimating the concatenation.
	first := "alpha beta gamma"        // 3 words -> 2
	second := "delta epsilon"          // 2 words -> 1
	combined := first + " " + second   // 5 words -> 3

	a := NewAccountant()
	a.AddEstimate(first)
	a.AddEstimate(second)

	assert.Equal(t, Estimate(first)+Estimate(second), a.Usage().Output)
	assert.Equal(t, 3, a.Usage().Output)
	assert.Equal(t, 3, Estimate(combined), "concatenated estimate happens to match here")

	// A case where the floors genuinely diverge.
	b := NewAccountant()
	b.AddEstimate("one")       // 1 word -> 0
	b.AddEstimate("two")       // 1 word -> 0
	assert.Equal(t, 0, b.Usage().Output)
	assert.Equal(t, 1, Estimate("one two"), "concatenation would have produced 1")
}

func TestAddExactAndCost(t *testing.T) {
	a := NewAccountant()
	a.AddExact(1000, 2000)
	a.AddExact(500, 0)

	usage := a.Usage()
	assert.Equal(t, 1500, usage.Input)
	assert.Equal(t, 2000, usage.Output)
	assert.Equal(t, 3500, usage.Total())

	cost := a.Cost(Rates{InputPer1K: 0.01, OutputPer1K: 0.03})
	assert.InDelta(t, 1.5*0.01+2.0*0.03, cost, 1e-9)
}

func TestReset(t *testing.T) {
	a := NewAccountant()
	a.AddExact(10, 20)
	a.Reset()
	assert.Equal(t, Usage{}, a.Usage())
}

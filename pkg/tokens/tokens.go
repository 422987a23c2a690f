// Package tokens tracks token usage and derives cost for a generation run.
//
// Two accounting strategies exist. When the backend reports prompt and
// completion counts they are added directly (exact). When no usage metadata
// is available, typically for streamed responses, usage is estimated from
// the raw text of each individual call. Estimation is always per call,
// never over a concatenation of calls, so the totals stay additive.
package tokens

import "strings"

// wordsPerToken is the inverse word→token ratio used by the estimator.
const estimateRatio = 0.75

// Usage is a pair of running token counters.
type Usage struct {
	Input  int
	Output int
}

// Total returns input plus output tokens.
func (u Usage) Total() int { return u.Input + u.Output }

// Rates holds per-1K-token prices.
type Rates struct {
	InputPer1K  float64
	OutputPer1K float64
}

// Accountant accumulates token usage across the calls of one generation run.
type Accountant struct {
	usage Usage
}

// NewAccountant returns a zeroed Accountant.
func NewAccountant() *Accountant {
	return &Accountant{}
}

// Reset zeroes the counters. Called at the start of each generation run.
func (a *Accountant) Reset() {
	a.usage = Usage{}
}

// AddExact records backend-reported prompt and completion token counts.
func (a *Accountant) AddExact(input, output int) {
	a.usage.Input += input
	a.usage.Output += output
}

// AddEstimate estimates the output tokens of a single call from its raw
// text (reasoning spans included, since the backend computed them) and adds
// the estimate to the output counter. Returns the amount added.
func (a *Accountant) AddEstimate(rawText string) int {
	estimate := Estimate(rawText)
	a.usage.Output += estimate
	return estimate
}

// Usage returns the current counters.
func (a *Accountant) Usage() Usage {
	return a.usage
}

// Cost derives the dollar cost of the accumulated usage.
func (a *Accountant) Cost(rates Rates) float64 {
	return float64(a.usage.Input)/1000*rates.InputPer1K +
		float64(a.usage.Output)/1000*rates.OutputPer1K
}

// Estimate approximates the token count of text as floor(words * 0.75).
func Estimate(text string) int {
	return int(float64(len(strings.Fields(text))) * estimateRatio)
}

// Package stream accumulates backend response fragments and filters
// reasoning spans out of the final text.
//
// Fragments arrive in order and are appended to a raw buffer exactly as
// received. Reasoning content reaches the buffer by two routes: some
// backends deliver it as separately tagged fragments, others inline it
// in the text as <think>...</think> spans. Both routes end up covered by
// the same post-completion filter, which strips the spans from the raw
// buffer to produce the clean text used for parsing and assembly. Token
// estimation always reads the raw buffer, never the clean one.
package stream

import "regexp"

// thinkBlock matches an inline reasoning span, case-insensitively, across
// newlines, non-greedily. Attributes on the opening tag are tolerated.
var thinkBlock = regexp.MustCompile(`(?is)<think\b[^>]*>.*?</think>`)

// Fragment is one delta from a backend response stream.
type Fragment struct {
	Text      string
	Reasoning bool // tagged reasoning delta, shown dimmed and excluded from output
}

// Accumulator collects the fragments of one backend call.
type Accumulator struct {
	raw []byte
}

// NewAccumulator returns an empty Accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// Add appends a fragment to the raw buffer. Reasoning fragments are
// wrapped in think tags so the single post-completion filter removes
// them together with any inline spans the backend produced itself.
func (a *Accumulator) Add(f Fragment) {
	if f.Reasoning {
		a.raw = append(a.raw, "<think>"...)
		a.raw = append(a.raw, f.Text...)
		a.raw = append(a.raw, "</think>"...)
		return
	}
	a.raw = append(a.raw, f.Text...)
}

// AddText appends a plain content fragment.
func (a *Accumulator) AddText(text string) {
	a.Add(Fragment{Text: text})
}

// Raw returns everything received so far, reasoning included. This is the
// input to token estimation.
func (a *Accumulator) Raw() string {
	return string(a.raw)
}

// Clean returns the accumulated text with reasoning spans removed.
func (a *Accumulator) Clean() string {
	return StripThink(string(a.raw))
}

// StripThink removes every <think>...</think> span from text. The
// operation is idempotent: output containing no think spans passes
// through unchanged.
func StripThink(text string) string {
	return thinkBlock.ReplaceAllString(text, "")
}

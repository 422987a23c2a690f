// Package engine defines the backend contract for text generation and the
// OpenAI and Ollama implementations of it.
//
// Both response shapes, incremental streaming and one complete text, are
// presented behind the same Stream interface: zero or more fragments
// terminated by io.EOF. A non-streaming call simply yields one fragment.
// When a backend reports exact token usage it is exposed through Usage;
// callers fall back to heuristic estimation otherwise.
package engine

import (
	"context"
	"fmt"
	"io"

	"github.com/knowgen/knowgen/pkg/stream"
	"github.com/knowgen/knowgen/pkg/tokens"
)

// Role identifies the author of a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of conversation history sent to the backend.
type Message struct {
	Role    Role
	Content string
}

// Options tunes a single backend invocation.
type Options struct {
	Stream      bool
	Think       bool // request a reasoning pass where the backend supports one
	Temperature float64
	MaxTokens   int
}

// Feature names an optional backend capability.
type Feature string

// FeatureReasoning is the optional reasoning pass some models reject.
const FeatureReasoning Feature = "reasoning"

// CapabilityError reports that the backend rejected an optional feature.
// Callers retry exactly once with the feature disabled.
type CapabilityError struct {
	Feature Feature
	Err     error
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("backend does not support %s: %v", e.Feature, e.Err)
}

func (e *CapabilityError) Unwrap() error { return e.Err }

// Stream yields the fragments of one backend response. Recv returns io.EOF
// after the final fragment.
type Stream interface {
	Recv() (stream.Fragment, error)
	// Usage reports backend-counted token usage when available. It is only
	// meaningful after Recv has returned io.EOF.
	Usage() (tokens.Usage, bool)
}

// Engine is a pluggable generation backend.
type Engine interface {
	Name() string
	Invoke(ctx context.Context, history []Message, opts Options) (Stream, error)
}

// oneShot adapts a complete response to the Stream interface.
type oneShot struct {
	fragments []stream.Fragment
	usage     tokens.Usage
	hasUsage  bool
	pos       int
}

func newOneShot(text string) *oneShot {
	return &oneShot{fragments: []stream.Fragment{{Text: text}}}
}

func (o *oneShot) Recv() (stream.Fragment, error) {
	if o.pos >= len(o.fragments) {
		return stream.Fragment{}, io.EOF
	}
	f := o.fragments[o.pos]
	o.pos++
	return f, nil
}

func (o *oneShot) Usage() (tokens.Usage, bool) {
	return o.usage, o.hasUsage
}

// Drain pulls every fragment from s into acc, calling onFragment (when
// non-nil) for each one as it arrives. A transport error interrupting the
// stream is returned; acc still holds everything received before it.
func Drain(s Stream, acc *stream.Accumulator, onFragment func(stream.Fragment)) error {
	for {
		f, err := s.Recv()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		acc.Add(f)
		if onFragment != nil {
			onFragment(f)
		}
	}
}

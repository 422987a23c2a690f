package engine

import (
	"context"
	"io"

	"github.com/knowgen/knowgen/pkg/stream"
	"github.com/knowgen/knowgen/pkg/tokens"
)

// ScriptedResponse is one canned backend reply for the Scripted engine.
type ScriptedResponse struct {
	Fragments []stream.Fragment
	Usage     *tokens.Usage // exact usage, nil for heuristic accounting
	Err       error         // returned from Invoke instead of a stream
}

// Text is a convenience constructor for a plain one-fragment response.
func Text(s string) ScriptedResponse {
	return ScriptedResponse{Fragments: []stream.Fragment{{Text: s}}}
}

// Scripted replays canned responses in order and records every invocation.
// It exists for tests; replies past the end of the script return io.EOF
// immediately with no fragments.
type Scripted struct {
	Responses []ScriptedResponse

	Calls []ScriptedCall
}

// ScriptedCall records the arguments of one Invoke.
type ScriptedCall struct {
	History []Message
	Opts    Options
}

func (s *Scripted) Name() string { return "scripted" }

func (s *Scripted) Invoke(_ context.Context, history []Message, opts Options) (Stream, error) {
	copied := make([]Message, len(history))
	copy(copied, history)
	s.Calls = append(s.Calls, ScriptedCall{History: copied, Opts: opts})

	if len(s.Responses) == 0 {
		return &scriptedStream{}, nil
	}
	resp := s.Responses[0]
	s.Responses = s.Responses[1:]
	if resp.Err != nil {
		return nil, resp.Err
	}
	return &scriptedStream{fragments: resp.Fragments, usage: resp.Usage}, nil
}

type scriptedStream struct {
	fragments []stream.Fragment
	usage     *tokens.Usage
	pos       int
}

func (s *scriptedStream) Recv() (stream.Fragment, error) {
	if s.pos >= len(s.fragments) {
		return stream.Fragment{}, io.EOF
	}
	f := s.fragments[s.pos]
	s.pos++
	return f, nil
}

func (s *scriptedStream) Usage() (tokens.Usage, bool) {
	if s.usage == nil {
		return tokens.Usage{}, false
	}
	return *s.usage, true
}

package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knowgen/knowgen/pkg/stream"
	"github.com/knowgen/knowgen/pkg/tokens"
)

func TestOneShotYieldsSingleFragment(t *testing.T) {
	s := newOneShot("complete text")
	acc := stream.NewAccumulator()
	require.NoError(t, Drain(s, acc, nil))
	assert.Equal(t, "complete text", acc.Raw())

	_, ok := s.Usage()
	assert.False(t, ok)
}

func TestDrainCallsFragmentCallback(t *testing.T) {
	scripted := &Scripted{Responses: []ScriptedResponse{
		{Fragments: []stream.Fragment{
			{Text: "a"},
			{Text: "thinking", Reasoning: true},
			{Text: "b"},
		}},
	}}

	s, err := scripted.Invoke(context.Background(), nil, Options{})
	require.NoError(t, err)

	var seen []stream.Fragment
	acc := stream.NewAccumulator()
	require.NoError(t, Drain(s, acc, func(f stream.Fragment) { seen = append(seen, f) }))

	require.Len(t, seen, 3)
	assert.True(t, seen[1].Reasoning)
	assert.Equal(t, "ab", acc.Clean())
}

func TestScriptedReportsExactUsage(t *testing.T) {
	scripted := &Scripted{Responses: []ScriptedResponse{
		{Fragments: []stream.Fragment{{Text: "x"}}, Usage: &tokens.Usage{Input: 10, Output: 20}},
	}}

	s, err := scripted.Invoke(context.Background(), nil, Options{})
	require.NoError(t, err)
	require.NoError(t, Drain(s, stream.NewAccumulator(), nil))

	usage, ok := s.Usage()
	require.True(t, ok)
	assert.Equal(t, tokens.Usage{Input: 10, Output: 20}, usage)
}

func TestScriptedRecordsHistory(t *testing.T) {
	scripted := &Scripted{Responses: []ScriptedResponse{Text("one"), Text("two")}}

	_, err := scripted.Invoke(context.Background(), []Message{{Role: RoleUser, Content: "hello"}}, Options{Stream: true})
	require.NoError(t, err)
	_, err = scripted.Invoke(context.Background(), []Message{
		{Role: RoleUser, Content: "hello"},
		{Role: RoleAssistant, Content: "one"},
	}, Options{})
	require.NoError(t, err)

	require.Len(t, scripted.Calls, 2)
	assert.True(t, scripted.Calls[0].Opts.Stream)
	assert.Len(t, scripted.Calls[1].History, 2)
	assert.Equal(t, RoleAssistant, scripted.Calls[1].History[1].Role)
}

func TestCapabilityErrorUnwraps(t *testing.T) {
	base := errors.New("model refused")
	err := &CapabilityError{Feature: FeatureReasoning, Err: base}

	assert.ErrorIs(t, err, base)
	assert.Contains(t, err.Error(), "reasoning")

	var capErr *CapabilityError
	assert.ErrorAs(t, error(err), &capErr)
}

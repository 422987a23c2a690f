package generator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knowgen/knowgen/pkg/engine"
)

func scriptedInvoke(responses ...string) (InvokeFunc, *[][]engine.Message) {
	var calls [][]engine.Message
	callsRef := &calls
	i := 0
	return func(_ context.Context, history []engine.Message) (string, error) {
		copied := make([]engine.Message, len(history))
		copy(copied, history)
		*callsRef = append(*callsRef, copied)
		if i >= len(responses) {
			return "", errors.New("script exhausted")
		}
		resp := responses[i]
		i++
		return resp, nil
	}, callsRef
}

func TestControllerMarkerOnFirstAttempt(t *testing.T) {
	invoke, calls := scriptedInvoke("full body\n## Conclusion\ndone")

	body, complete, err := NewController().Run(context.Background(), "write it", invoke)
	require.NoError(t, err)
	assert.True(t, complete)
	assert.Contains(t, body, "## Conclusion")
	assert.Len(t, *calls, 1)
}

func TestControllerContinuesUntilMarker(t *testing.T) {
	invoke, calls := scriptedInvoke("first half", "second half\n## Conclusion")

	body, complete, err := NewController().Run(context.Background(), "write it", invoke)
	require.NoError(t, err)
	assert.True(t, complete)
	assert.Equal(t, "first halfsecond half\n## Conclusion", body)

	require.Len(t, *calls, 2)
	second := (*calls)[1]
	require.Len(t, second, 3)
	assert.Equal(t, engine.RoleAssistant, second[1].Role)
	assert.Equal(t, "first half", second[1].Content)
	assert.Equal(t, continueInstruction, second[2].Content)
}

func TestControllerExhaustionReturnsPartialWithoutError(t *testing.T) {
	invoke, calls := scriptedInvoke("one ", "two ", "three", "never reached")

	body, complete, err := NewController().Run(context.Background(), "write it", invoke)
	require.NoError(t, err)
	assert.False(t, complete)
	assert.Equal(t, "one two three", body)
	assert.Len(t, *calls, MaxContinuationAttempts, "exactly the bounded number of attempts")
}

func TestControllerPropagatesInvokeError(t *testing.T) {
	boom := errors.New("backend down")
	i := 0
	invoke := func(context.Context, []engine.Message) (string, error) {
		i++
		if i == 1 {
			return "partial ", nil
		}
		return "", boom
	}

	body, complete, err := NewController().Run(context.Background(), "write it", invoke)
	require.ErrorIs(t, err, boom)
	assert.False(t, complete)
	assert.Equal(t, "partial ", body, "text gathered before the failure is preserved")
}

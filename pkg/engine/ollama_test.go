package engine

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knowgen/knowgen/pkg/config"
	"github.com/knowgen/knowgen/pkg/stream"
)

func newTestOllama(t *testing.T, handler http.HandlerFunc) *Ollama {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewOllama(config.OllamaConfig{Model: "llama3.2", Host: srv.URL}, logrus.New())
}

func TestOllamaStreamingChat(t *testing.T) {
	o := newTestOllama(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chat", r.URL.Path)

		var req ollamaChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama3.2", req.Model)
		assert.True(t, req.Stream)

		w.Header().Set("Content-Type", "application/x-ndjson")
		lines := []string{
			`{"message":{"content":"","thinking":"let me think"},"done":false}`,
			`{"message":{"content":"Hello"},"done":false}`,
			`{"message":{"content":" world"},"done":true}`,
		}
		for _, l := range lines {
			w.Write([]byte(l + "\n"))
		}
	})

	s, err := o.Invoke(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, Options{Stream: true, Think: true})
	require.NoError(t, err)

	acc := stream.NewAccumulator()
	require.NoError(t, Drain(s, acc, nil))
	assert.Equal(t, "Hello world", acc.Clean())
	assert.Contains(t, acc.Raw(), "let me think")
}

func TestOllamaNonStreamingChat(t *testing.T) {
	o := newTestOllama(t, func(w http.ResponseWriter, r *http.Request) {
		var req ollamaChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.False(t, req.Stream)
		require.NotNil(t, req.Think, "disabled reasoning is sent explicitly")
		assert.False(t, *req.Think)

		json.NewEncoder(w).Encode(map[string]any{
			"message": map[string]string{"content": "complete answer"},
			"done":    true,
		})
	})

	s, err := o.Invoke(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, Options{})
	require.NoError(t, err)

	acc := stream.NewAccumulator()
	require.NoError(t, Drain(s, acc, nil))
	assert.Equal(t, "complete answer", acc.Clean())
}

func TestOllamaThinkingUnsupportedIsCapabilityError(t *testing.T) {
	o := newTestOllama(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"error": `registry.ollama.ai/library/llama3.2 does not support thinking`,
		})
	})

	_, err := o.Invoke(context.Background(), nil, Options{Stream: true, Think: true})
	var capErr *CapabilityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, FeatureReasoning, capErr.Feature)
}

func TestOllamaErrorWithoutThinkIsPlain(t *testing.T) {
	o := newTestOllama(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "model not found"})
	})

	_, err := o.Invoke(context.Background(), nil, Options{Stream: true})
	require.Error(t, err)
	var capErr *CapabilityError
	assert.False(t, errors.As(err, &capErr))
	assert.Contains(t, err.Error(), "model not found")
}

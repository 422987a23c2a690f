package engine

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/knowgen/knowgen/pkg/config"
	"github.com/knowgen/knowgen/pkg/stream"
	"github.com/knowgen/knowgen/pkg/tokens"
)

const defaultOllamaHost = "http://localhost:11434"

// Ollama drives a local Ollama server over its native /api/chat endpoint.
// Responses stream as newline-delimited JSON. Token usage is never
// reported through this engine; callers estimate it heuristically.
type Ollama struct {
	host       string
	model      string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewOllama builds the engine from config, defaulting the host to the
// standard local address.
func NewOllama(cfg config.OllamaConfig, logger *logrus.Logger) *Ollama {
	host := strings.TrimRight(cfg.Host, "/")
	if host == "" {
		host = defaultOllamaHost
	}
	return &Ollama{
		host:       host,
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: 10 * time.Minute},
		logger:     logger,
	}
}

func (o *Ollama) Name() string { return config.EngineOllama }

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Think    *bool           `json:"think,omitempty"`
	Options  map[string]any  `json:"options,omitempty"`
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatResponse struct {
	Message struct {
		Content  string `json:"content"`
		Thinking string `json:"thinking"`
	} `json:"message"`
	Done  bool   `json:"done"`
	Error string `json:"error"`
}

// Invoke sends the conversation history and returns the response stream.
// A model rejecting the reasoning pass surfaces as a *CapabilityError so
// the caller can retry once without it.
func (o *Ollama) Invoke(ctx context.Context, history []Message, opts Options) (Stream, error) {
	reqBody := ollamaChatRequest{
		Model:    o.model,
		Messages: make([]ollamaMessage, 0, len(history)),
		Stream:   opts.Stream,
	}
	for _, m := range history {
		reqBody.Messages = append(reqBody.Messages, ollamaMessage{Role: string(m.Role), Content: m.Content})
	}
	if !opts.Think {
		think := false
		reqBody.Think = &think
	}
	if opts.Temperature != 0 {
		reqBody.Options = map[string]any{"temperature": opts.Temperature}
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.host+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, o.decodeError(resp, opts)
	}

	if opts.Stream {
		return &ollamaStream{body: resp.Body, scanner: newLineScanner(resp.Body)}, nil
	}

	defer resp.Body.Close()
	var single ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&single); err != nil {
		return nil, fmt.Errorf("failed to decode ollama response: %w", err)
	}
	if single.Error != "" {
		return nil, o.asEngineError(single.Error, opts)
	}
	text := single.Message.Content
	if single.Message.Thinking != "" {
		text = "<think>" + single.Message.Thinking + "</think>" + text
	}
	return newOneShot(text), nil
}

func (o *Ollama) decodeError(resp *http.Response, opts Options) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var payload struct {
		Error string `json:"error"`
	}
	msg := strings.TrimSpace(string(body))
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		msg = payload.Error
	}
	return o.asEngineError(fmt.Sprintf("%s (status %d)", msg, resp.StatusCode), opts)
}

func (o *Ollama) asEngineError(msg string, opts Options) error {
	err := fmt.Errorf("ollama: %s", msg)
	if opts.Think && strings.Contains(msg, "does not support thinking") {
		return &CapabilityError{Feature: FeatureReasoning, Err: err}
	}
	return err
}

type ollamaStream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	pending []stream.Fragment
	done    bool
}

func (s *ollamaStream) Recv() (stream.Fragment, error) {
	for {
		if len(s.pending) > 0 {
			f := s.pending[0]
			s.pending = s.pending[1:]
			return f, nil
		}
		if s.done {
			s.body.Close()
			return stream.Fragment{}, io.EOF
		}
		if !s.scanner.Scan() {
			s.done = true
			s.body.Close()
			if err := s.scanner.Err(); err != nil {
				return stream.Fragment{}, fmt.Errorf("ollama stream interrupted: %w", err)
			}
			return stream.Fragment{}, io.EOF
		}

		line := bytes.TrimSpace(s.scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var chunk ollamaChatResponse
		if err := json.Unmarshal(line, &chunk); err != nil {
			s.done = true
			s.body.Close()
			return stream.Fragment{}, fmt.Errorf("failed to decode ollama chunk: %w", err)
		}
		if chunk.Error != "" {
			s.done = true
			s.body.Close()
			return stream.Fragment{}, fmt.Errorf("ollama: %s", chunk.Error)
		}
		if chunk.Message.Thinking != "" {
			s.pending = append(s.pending, stream.Fragment{Text: chunk.Message.Thinking, Reasoning: true})
		}
		if chunk.Message.Content != "" {
			s.pending = append(s.pending, stream.Fragment{Text: chunk.Message.Content})
		}
		if chunk.Done {
			s.done = true
		}
	}
}

// Usage always reports false: token counts are estimated from raw text.
func (s *ollamaStream) Usage() (tokens.Usage, bool) {
	return tokens.Usage{}, false
}

func newLineScanner(r io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return sc
}

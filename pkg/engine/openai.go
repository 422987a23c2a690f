package engine

import (
	"context"
	"errors"
	"io"
	"os"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/ssestream"
	"github.com/sirupsen/logrus"

	"github.com/knowgen/knowgen/pkg/config"
	"github.com/knowgen/knowgen/pkg/stream"
	"github.com/knowgen/knowgen/pkg/tokens"
)

// OpenAI drives the chat-completions API through the official SDK.
// Non-streaming responses carry exact token usage; streamed responses do
// not, so callers estimate those heuristically.
type OpenAI struct {
	client openai.Client
	model  string
	logger *logrus.Logger
}

// NewOpenAI builds the client from config and the OPENAI_API_KEY
// environment variable.
func NewOpenAI(cfg config.OpenAIConfig, logger *logrus.Logger) (*OpenAI, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY is not set")
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &OpenAI{
		client: openai.NewClient(opts...),
		model:  cfg.Model,
		logger: logger,
	}, nil
}

func (o *OpenAI) Name() string { return config.EngineOpenAI }

// Invoke sends the conversation history and returns the response stream.
func (o *OpenAI) Invoke(ctx context.Context, history []Message, opts Options) (Stream, error) {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(o.model),
		Messages: toOpenAIMessages(history),
	}
	if opts.Temperature != 0 {
		params.Temperature = openai.Float(opts.Temperature)
	}
	if opts.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(opts.MaxTokens))
	}

	if opts.Stream {
		return &openaiStream{inner: o.client.Chat.Completions.NewStreaming(ctx, params)}, nil
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("openai: response contains no choices")
	}
	s := newOneShot(resp.Choices[0].Message.Content)
	s.usage = tokens.Usage{
		Input:  int(resp.Usage.PromptTokens),
		Output: int(resp.Usage.CompletionTokens),
	}
	s.hasUsage = true
	return s, nil
}

func toOpenAIMessages(history []Message) []openai.ChatCompletionMessageParamUnion {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(history))
	for _, m := range history {
		switch m.Role {
		case RoleSystem:
			msgs = append(msgs, openai.SystemMessage(m.Content))
		case RoleAssistant:
			msgs = append(msgs, openai.ChatCompletionMessageParamOfAssistant(m.Content))
		default:
			msgs = append(msgs, openai.UserMessage(m.Content))
		}
	}
	return msgs
}

type openaiStream struct {
	inner *ssestream.Stream[openai.ChatCompletionChunk]
}

func (s *openaiStream) Recv() (stream.Fragment, error) {
	for s.inner.Next() {
		chunk := s.inner.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		if delta := chunk.Choices[0].Delta.Content; delta != "" {
			return stream.Fragment{Text: delta}, nil
		}
	}
	if err := s.inner.Err(); err != nil {
		return stream.Fragment{}, err
	}
	return stream.Fragment{}, io.EOF
}

// Usage always reports false: the streaming API does not return counts.
func (s *openaiStream) Usage() (tokens.Usage, bool) {
	return tokens.Usage{}, false
}

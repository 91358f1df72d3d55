// Package genai provides GenAI-enhanced operations using OpenAI API.
//
// Every intake component depends on the ClientInterface abstraction rather
// than the concrete client, so tests can script generation output and
// exercise each deterministic fallback branch.
package genai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// DefaultTimeout bounds a single generation call. A timeout is treated by
// callers identically to any other generation failure.
const DefaultTimeout = 30 * time.Second

// ErrNoChoicesReturned indicates the completion API returned an empty choice list.
var ErrNoChoicesReturned = errors.New("no choices returned")

// Params carries one generation request: a system instruction, a user prompt,
// and optional sampling controls. Zero values leave the provider defaults.
type Params struct {
	SystemPrompt string
	UserPrompt   string
	Temperature  float64
	MaxTokens    int64
}

// ClientInterface is the single external capability the intake engine
// consumes: transform text under instructions, synchronously.
type ClientInterface interface {
	Generate(ctx context.Context, p Params) (string, error)
}

// chatService defines minimal interface for chat completions.
type chatService interface {
	New(ctx context.Context, params openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// Opts holds configuration options for the GenAI client.
type Opts struct {
	APIKey  string
	Model   openai.ChatModel
	Timeout time.Duration
}

// Option defines a configuration option for the GenAI client.
type Option func(*Opts)

// WithAPIKey sets the OpenAI API key (overrides $OPENAI_API_KEY).
func WithAPIKey(key string) Option {
	return func(o *Opts) { o.APIKey = key }
}

// WithModel sets the chat model used for generation.
func WithModel(model openai.ChatModel) Option {
	return func(o *Opts) { o.Model = model }
}

// WithTimeout sets the per-request timeout applied when the caller's context
// has no deadline of its own.
func WithTimeout(d time.Duration) Option {
	return func(o *Opts) { o.Timeout = d }
}

// Client wraps the OpenAI ChatCompletion service for the intake engine.
type Client struct {
	chat    chatService
	model   openai.ChatModel
	timeout time.Duration
}

// NewClient initializes a new GenAI client. The API key comes from options or
// the OPENAI_API_KEY environment variable.
func NewClient(opts ...Option) (*Client, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY not set")
	}
	if cfg.Model == "" {
		cfg.Model = openai.ChatModelGPT4oMini
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	slog.Debug("GenAI.NewClient: client configured", "model", cfg.Model, "timeout", cfg.Timeout)

	cli := openai.NewClient(option.WithAPIKey(cfg.APIKey))
	return &Client{chat: &cli.Chat.Completions, model: cfg.Model, timeout: cfg.Timeout}, nil
}

// Generate runs one chat completion and returns the trimmed assistant reply.
func (c *Client) Generate(ctx context.Context, p Params) (string, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline && c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	params := openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(p.SystemPrompt),
			openai.UserMessage(p.UserPrompt),
		},
	}
	if p.Temperature > 0 {
		params.Temperature = openai.Float(p.Temperature)
	}
	if p.MaxTokens > 0 {
		params.MaxTokens = openai.Int(p.MaxTokens)
	}

	resp, err := c.chat.New(ctx, params)
	if err != nil {
		slog.Error("GenAI.Generate: completion failed", "error", err)
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		slog.Error("GenAI.Generate: completion returned no choices")
		return "", ErrNoChoicesReturned
	}

	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	slog.Debug("GenAI.Generate: completion succeeded", "response_length", len(out))
	return out, nil
}

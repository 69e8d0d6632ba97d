// Package ai wraps the generative backend behind a uniform, retryable call
// contract. Every pipeline stage goes through Complete; the gateway knows
// nothing about the shape a stage expects back beyond JSON-or-prose.
package ai

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/chrismelba/noirplan/internal/errors"
	openai "github.com/sashabaranov/go-openai"
)

const (
	// MaxTokens bounds a single completion.
	MaxTokens = 4096

	// The retry budget: up to 3 retries after the first attempt, starting at
	// 2s and doubling. Only rate-limit and server-side failures are retried.
	defaultMaxRetries = 3
	defaultRetryDelay = 2000 * time.Millisecond
)

// ErrMalformedResponse means the backend answered but the payload did not
// match the expected shape. Terminal: retrying a schema violation just burns
// quota.
var ErrMalformedResponse = errors.NewSentinel("malformed backend response")

// Request is one generation call. JSON switches the backend into
// JSON-object-only output for stages with a structured contract; the timeline
// stage leaves it off and receives opaque prose.
type Request struct {
	System string
	Prompt string
	JSON   bool
}

// Completer is the call contract every stage depends on. The production
// implementation is Client; tests substitute a scripted fake.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// CompleterFunc adapts a function to the Completer interface.
type CompleterFunc func(ctx context.Context, req Request) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// Config carries the backend connection settings.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Client is the production gateway over the OpenAI-compatible backend.
type Client struct {
	client *openai.Client
	model  string
	logger *slog.Logger

	maxRetries int
	retryDelay time.Duration
	sleeper    func(time.Duration)
}

// Option customizes the client.
type Option func(*Client)

// WithMaxRetries overrides the retry budget.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		c.maxRetries = n
	}
}

// WithRetryDelay overrides the initial backoff delay.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) {
		c.retryDelay = d
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.sleeper = sleeper
	}
}

// NewClient constructs the gateway. Model defaults to GPT-4 Turbo if unset.
func NewClient(cfg Config, logger *slog.Logger, opts ...Option) *Client {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = openai.GPT4TurboPreview
	}
	c := &Client{
		client:     openai.NewClientWithConfig(clientConfig),
		model:      model,
		logger:     logger.With("source", "ai.Client"),
		maxRetries: defaultMaxRetries,
		retryDelay: defaultRetryDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Complete performs one generation round trip with bounded exponential
// backoff. Failures classified as rate-limiting or server-side are retried up
// to the budget; everything else propagates immediately.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	delay := c.retryDelay
	var lastErr error
	for attempt := 0; ; attempt++ {
		content, err := c.completeOnce(ctx, req)
		if err == nil {
			return content, nil
		}
		lastErr = err

		if attempt >= c.maxRetries || !retryable(err) {
			return "", lastErr
		}

		c.logger.Debug("retrying backend call",
			slog.Int("attempt", attempt+1),
			slog.Duration("delay", delay),
			errors.SlogError(err))
		if err = c.sleep(ctx, delay); err != nil {
			return "", err
		}
		delay *= 2
	}
}

func (c *Client) completeOnce(ctx context.Context, req Request) (string, error) {
	chatReq := openai.ChatCompletionRequest{ //nolint:exhaustruct // this is better for readability
		Model:     c.model,
		MaxTokens: MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
	}
	if req.JSON {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	completion, err := c.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return "", errors.Wrap(err, "create chat completion")
	}
	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		return "", errors.Wrap(ErrMalformedResponse, "empty completion")
	}
	return completion.Choices[0].Message.Content, nil
}

func (c *Client) sleep(ctx context.Context, delay time.Duration) error {
	if c.sleeper != nil {
		c.sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// retryable classifies a failure as rate-limiting or server-side.
func retryable(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests ||
			apiErr.HTTPStatusCode >= http.StatusInternalServerError
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests ||
			reqErr.HTTPStatusCode >= http.StatusInternalServerError
	}
	return false
}

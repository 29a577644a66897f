// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/jeranaias/loki-tui/internal/config"
	"github.com/jeranaias/loki-tui/internal/model"
	"github.com/jeranaias/loki-tui/internal/tokens"
	"github.com/jeranaias/loki-tui/internal/util"
)

// Configuration constants for the completion client.
const (
	// DefaultBaseURL is the OpenAI API root.
	DefaultBaseURL = "https://api.openai.com/v1"

	// DefaultTimeout bounds one Complete call, retries included.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxRetries is the number of retries after the first attempt.
	DefaultMaxRetries = 2

	// DefaultMaxTokens caps the reply length.
	DefaultMaxTokens = 100

	// retryBaseDelay is the base delay for exponential backoff.
	retryBaseDelay = 500 * time.Millisecond

	// retryMaxDelay is the maximum delay for exponential backoff.
	retryMaxDelay = 10 * time.Second

	// limiterBurst lets a few quick turns through before pacing applies.
	limiterBurst = 3
)

// Error variables for common completion failures.
var (
	// ErrNotConfigured indicates the API key is not set.
	ErrNotConfigured = errors.New("completion API key not configured")

	// ErrAuthFailed indicates the API rejected the key.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrRateLimited indicates too many requests were made.
	ErrRateLimited = errors.New("rate limited")

	// ErrModelNotFound indicates the requested model does not exist.
	ErrModelNotFound = errors.New("model not found")

	// ErrNoChoices indicates a success response without any choices.
	ErrNoChoices = errors.New("response contained no choices")

	// ErrEmptyPrompt indicates there was no user message to send.
	ErrEmptyPrompt = errors.New("no user message to send")
)

// StatusError is a non-success HTTP status that maps to no sentinel.
type StatusError struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("completion API error (HTTP %d)", e.Status)
	}
	return fmt.Sprintf("completion API error (HTTP %d): %s", e.Status, e.Message)
}

// Completer produces one assistant reply for a conversation.
type Completer interface {
	Complete(ctx context.Context, history []model.Message) (string, error)
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to an OpenAI-compatible chat completion endpoint.
// It is safe for concurrent use.
type Client struct {
	api    *openai.Client
	apiKey string

	mu          sync.RWMutex
	model       string
	maxTokens   int
	historyMode string
	budget      int

	timeout    time.Duration
	maxRetries int
	limiter    *rate.Limiter
	counter    *tokens.Counter
	usage      *UsageTracker
}

// NewClient creates a client from the completion config section.
func NewClient(cfg config.CompletionConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	apiCfg := openai.DefaultConfig(cfg.APIKey)
	apiCfg.BaseURL = strings.TrimRight(baseURL, "/")
	apiCfg.HTTPClient = &http.Client{Timeout: timeout}

	c := &Client{
		api:         openai.NewClientWithConfig(apiCfg),
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		historyMode: cfg.HistoryMode,
		budget:      cfg.HistoryTokenBudget,
		timeout:     timeout,
		maxRetries:  cfg.MaxRetries,
		counter:     tokens.New(cfg.Model),
		usage:       NewUsageTracker(),
	}
	if c.model == "" {
		c.model = model.DefaultModel
	}
	if c.maxTokens <= 0 {
		c.maxTokens = DefaultMaxTokens
	}
	if c.historyMode == "" {
		c.historyMode = config.HistorySingle
	}
	if c.maxRetries < 0 {
		c.maxRetries = 0
	}
	if cfg.RequestsPerMinute > 0 {
		c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), limiterBurst)
	}
	return c
}

// Apply updates the settings that may change while running. The endpoint
// and key are fixed for the lifetime of the client.
func (c *Client) Apply(cfg config.CompletionConfig) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cfg.Model != "" {
		c.model = cfg.Model
	}
	if cfg.MaxTokens > 0 {
		c.maxTokens = cfg.MaxTokens
	}
	if cfg.HistoryMode != "" {
		c.historyMode = cfg.HistoryMode
	}
	if cfg.HistoryTokenBudget > 0 {
		c.budget = cfg.HistoryTokenBudget
	}
}

// Model returns the model used for requests.
func (c *Client) Model() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.model
}

// HistoryMode returns "single" or "full".
func (c *Client) HistoryMode() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.historyMode
}

// Usage returns the token usage tracker fed by every successful response.
func (c *Client) Usage() *UsageTracker {
	return c.usage
}

// Counter returns the tokenizer used for history trimming.
func (c *Client) Counter() *tokens.Counter {
	return c.counter
}

// IsConfigured reports whether an API key is set.
func (c *Client) IsConfigured() bool {
	return c.apiKey != ""
}

// KeyFingerprint identifies the API key in logs without exposing it.
func (c *Client) KeyFingerprint() string {
	return util.Fingerprint(c.apiKey)
}

// Complete sends the conversation according to the history mode and returns
// the first choice's content. Transient failures (429, 5xx) are retried with
// exponential backoff; the whole call is bounded by the client timeout.
func (c *Client) Complete(ctx context.Context, history []model.Message) (string, error) {
	if !c.IsConfigured() {
		return "", ErrNotConfigured
	}

	c.mu.RLock()
	req := openai.ChatCompletionRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages:  BuildMessages(c.historyMode, history, c.counter, c.budget),
	}
	c.mu.RUnlock()

	if len(req.Messages) == 0 {
		return "", ErrEmptyPrompt
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.calculateBackoff(attempt)
			log.Debug().Int("attempt", attempt).Dur("delay", delay).Err(lastErr).Msg("retrying completion")
			select {
			case <-ctx.Done():
				return "", errors.Wrap(ctx.Err(), "completion cancelled")
			case <-time.After(delay):
			}
		}

		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return "", errors.Wrap(err, "waiting for rate limiter")
			}
		}

		content, err := c.doRequest(ctx, req)
		if err == nil {
			return content, nil
		}
		if !c.isRetryable(err) {
			return "", err
		}
		lastErr = err
	}
	return "", errors.Wrap(lastErr, "max retries exceeded")
}

// doRequest performs one chat completion call.
func (c *Client) doRequest(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	log.Debug().
		Str("model", req.Model).
		Int("messages", len(req.Messages)).
		Int("max_tokens", req.MaxTokens).
		Str("key", c.KeyFingerprint()).
		Msg("completion request")

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, req)
	duration := time.Since(start)

	if err != nil {
		mapped := c.handleError(err)
		log.Warn().Err(mapped).Dur("duration", duration).Msg("completion failed")
		return "", mapped
	}

	log.Debug().
		Int("choices", len(resp.Choices)).
		Int("prompt_tokens", resp.Usage.PromptTokens).
		Int("completion_tokens", resp.Usage.CompletionTokens).
		Dur("duration", duration).
		Msg("completion response")

	c.usage.Record(req.Model, resp.Usage.PromptTokens, resp.Usage.CompletionTokens)

	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}
	return resp.Choices[0].Message.Content, nil
}

// handleError converts go-openai errors into this package's errors.
func (c *Client) handleError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return statusToError(apiErr.HTTPStatusCode, apiErr.Message)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		msg := ""
		if reqErr.Err != nil {
			msg = reqErr.Err.Error()
		}
		return statusToError(reqErr.HTTPStatusCode, msg)
	}
	return errors.Wrap(err, "completion request failed")
}

func statusToError(status int, message string) error {
	var sentinel error
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		sentinel = ErrAuthFailed
	case http.StatusNotFound:
		sentinel = ErrModelNotFound
	case http.StatusTooManyRequests:
		sentinel = ErrRateLimited
	default:
		return &StatusError{Status: status, Message: message}
	}
	if message == "" {
		return sentinel
	}
	return errors.Wrap(sentinel, message)
}

// isRetryable reports whether err is worth another attempt.
func (c *Client) isRetryable(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status >= 500 && se.Status < 600
	}
	return false
}

// calculateBackoff returns the delay to wait before the next retry.
func (c *Client) calculateBackoff(attempt int) time.Duration {
	// 500ms, 1s, 2s, ... capped at retryMaxDelay
	delay := retryBaseDelay * time.Duration(1<<uint(attempt-1))
	if delay > retryMaxDelay {
		delay = retryMaxDelay
	}
	return delay
}

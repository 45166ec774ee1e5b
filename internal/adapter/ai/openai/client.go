// Package openai implements domain.CompletionClient against the OpenAI
// chat completions API.
package openai

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	backoff "github.com/cenkalti/backoff/v4"

	"github.com/fairyhunter13/agent-recruitment/internal/adapter/observability"
	"github.com/fairyhunter13/agent-recruitment/internal/config"
	"github.com/fairyhunter13/agent-recruitment/internal/domain"
)

// systemRole is the role attached to the system content on every request.
const systemRole = "assistant"

// Client calls the chat completions endpoint with retries.
type Client struct {
	cfg config.Config
	hc  *http.Client
}

// New constructs a Client with sensible timeouts.
func New(cfg config.Config) *Client {
	timeout := 60 * time.Second
	if cfg.IsDev() {
		timeout = 300 * time.Second
	}
	return &Client{cfg: cfg, hc: &http.Client{Timeout: timeout}}
}

func (c *Client) getBackoffConfig() *backoff.ExponentialBackOff {
	expo := backoff.NewExponentialBackOff()
	maxElapsedTime, initialInterval, maxInterval, multiplier := c.cfg.GetAIBackoffConfig()
	expo.MaxElapsedTime = maxElapsedTime
	expo.InitialInterval = initialInterval
	expo.MaxInterval = maxInterval
	expo.Multiplier = multiplier
	return expo
}

// Complete sends one system+user message pair and returns the assistant
// content. 429 and 5xx responses are retried with exponential backoff;
// other 4xx responses fail permanently.
func (c *Client) Complete(ctx domain.Context, systemContent, userPrompt string) (string, error) {
	if c.cfg.OpenAIAPIKey == "" {
		return "", fmt.Errorf("%w: OPENAI_API_KEY missing", domain.ErrInvalidArgument)
	}

	model := c.cfg.ChatModel
	slog.Info("calling completion API",
		slog.String("provider", "openai"),
		slog.String("model", model),
		slog.Int("prompt_tokens_est", CountTokens(model, systemContent+userPrompt)))

	body := map[string]any{
		"model": model,
		"messages": []map[string]string{
			{"role": systemRole, "content": systemContent},
			{"role": "user", "content": userPrompt},
		},
	}
	b, _ := json.Marshal(body)

	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	op := func() error {
		start := time.Now()
		// Recreate request each attempt to avoid reusing consumed bodies
		r, _ := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.OpenAIBaseURL+"/chat/completions", bytes.NewReader(b))
		r.Header.Set("Authorization", "Bearer "+c.cfg.OpenAIAPIKey)
		r.Header.Set("Content-Type", "application/json")
		resp, err := c.hc.Do(r)
		observability.AIRequestsTotal.WithLabelValues("openai", "chat").Inc()
		observability.AIRequestDuration.WithLabelValues("openai", "chat").Observe(time.Since(start).Seconds())
		if err != nil {
			return err
		}
		defer func() { _ = resp.Body.Close() }()

		bodyBytes, err := io.ReadAll(resp.Body)
		if err != nil {
			slog.Error("failed to read response body", slog.String("provider", "openai"), slog.Any("error", err))
			return err
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			slog.Warn("ai provider rate limited",
				slog.String("provider", "openai"),
				slog.Int("status", resp.StatusCode),
				slog.String("x_request_id", resp.Header.Get("X-Request-Id")))
			return fmt.Errorf("rate limited: 429")
		}
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			bodySnippet := string(bodyBytes)
			if len(bodySnippet) > 512 {
				bodySnippet = bodySnippet[:512]
			}
			slog.Warn("ai provider 4xx",
				slog.String("provider", "openai"),
				slog.Int("status", resp.StatusCode),
				slog.String("model", model),
				slog.String("body", bodySnippet))
			return backoff.Permanent(fmt.Errorf("chat status %d", resp.StatusCode))
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			bodySnippet := string(bodyBytes)
			if len(bodySnippet) > 512 {
				bodySnippet = bodySnippet[:512]
			}
			slog.Error("ai provider non-2xx",
				slog.String("provider", "openai"),
				slog.Int("status", resp.StatusCode),
				slog.String("model", model),
				slog.String("body", bodySnippet))
			return fmt.Errorf("chat status %d", resp.StatusCode)
		}
		if err := json.Unmarshal(bodyBytes, &out); err != nil {
			slog.Error("ai provider decode error", slog.String("provider", "openai"), slog.Any("error", err))
			return err
		}
		return nil
	}

	expo := c.getBackoffConfig()
	bo := backoff.WithContext(expo, ctx)
	if err := backoff.Retry(op, bo); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("openai api: %w", domain.ErrUpstreamTimeout)
		}
		return "", fmt.Errorf("openai api failed: %w", err)
	}

	if len(out.Choices) == 0 {
		return "", errors.New("empty choices from completion API")
	}
	return out.Choices[0].Message.Content, nil
}

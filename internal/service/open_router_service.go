package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fadilmartias/resume-analyzer/internal/config"
	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

const systemPrompt = "You are an expert resume reviewer and career coach. Reply with a single JSON object and nothing else."

// OpenRouterService talks to any OpenAI-compatible chat completions API.
type OpenRouterService struct {
	client *resty.Client
	model  string
	logger *slog.Logger
}

func NewOpenRouterService(cfg *config.OpenRouterConfig, referer string, logger *slog.Logger) (*OpenRouterService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OPENROUTER_API_KEY not set")
	}
	if logger == nil {
		logger = slog.Default()
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetTimeout(cfg.Timeout)
	if referer != "" {
		client.SetHeader("HTTP-Referer", referer)
	}

	return &OpenRouterService{client: client, model: cfg.Model, logger: logger}, nil
}

func (s *OpenRouterService) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	model := req.Model
	if model == "" {
		model = s.model
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return "", fmt.Errorf("prompt cannot be empty")
	}

	body := map[string]any{
		"model": model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": req.Prompt},
		},
		"temperature": req.Temperature,
	}
	if req.MaxTokens > 0 {
		body["max_tokens"] = req.MaxTokens
	}

	start := time.Now()
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(body).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("openrouter request failed: %w", err)
	}

	s.logger.Debug("openrouter.response",
		"status", resp.StatusCode(),
		"model", model,
		"duration_ms", time.Since(start).Milliseconds(),
		"bytes", len(resp.Body()),
	)

	raw := resp.String()
	if resp.IsError() {
		msg := gjson.Get(raw, "error.message").String()
		if msg == "" {
			msg = resp.Status()
		}
		return "", fmt.Errorf("openrouter returned %d: %s", resp.StatusCode(), msg)
	}
	// some upstream providers report failures inside a 200 body
	if e := gjson.Get(raw, "error.message"); e.Exists() {
		return "", fmt.Errorf("openrouter error: %s", e.String())
	}

	text := gjson.Get(raw, "choices.0.message.content").String()
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}

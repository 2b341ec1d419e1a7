package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/fadilmartias/resume-analyzer/internal/config"
	"google.golang.org/genai"
)

const maxEmbeddingChars = 10000

type GeminiService struct {
	Client         *genai.Client
	Model          string
	EmbeddingModel string
	MaxRetries     int
	BaseDelay      time.Duration
	MaxDelay       time.Duration
	RequestTimeout time.Duration

	logger            *slog.Logger
	mu                sync.Mutex
	consecutiveErrors int
	circuitBreakerMax int
}

func NewGeminiService(ctx context.Context, cfg *config.GeminiConfig, logger *slog.Logger) (*GeminiService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not set")
	}
	if logger == nil {
		logger = slog.Default()
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &GeminiService{
		Client:            client,
		Model:             cfg.Model,
		EmbeddingModel:    cfg.EmbeddingModel,
		MaxRetries:        cfg.MaxRetries,
		BaseDelay:         time.Second,
		MaxDelay:          90 * time.Second,
		RequestTimeout:    cfg.RequestTimeout,
		logger:            logger,
		circuitBreakerMax: 5,
	}, nil
}

func (s *GeminiService) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	model := req.Model
	if model == "" {
		model = s.Model
	}
	if model == "" {
		return "", fmt.Errorf("model name cannot be empty")
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return "", fmt.Errorf("prompt cannot be empty")
	}

	genConfig := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(req.Temperature),
		ResponseMIMEType: "application/json",
	}
	if req.MaxTokens > 0 {
		genConfig.MaxOutputTokens = int32(req.MaxTokens)
	}

	var text string
	err := s.withRetry(ctx, "GenerateContent", func(ctx context.Context) error {
		result, err := s.Client.Models.GenerateContent(ctx, model, genai.Text(req.Prompt), genConfig)
		if err != nil {
			return err
		}
		if err := validateGenerateResponse(result); err != nil {
			return fmt.Errorf("invalid response: %w", err)
		}
		text = result.Text()
		return nil
	})
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}

func (s *GeminiService) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, fmt.Errorf("text for embedding cannot be empty")
	}
	if utf8.RuneCountInString(trimmed) > maxEmbeddingChars {
		s.logger.Warn("gemini.embedding_truncated", "chars", utf8.RuneCountInString(trimmed), "limit", maxEmbeddingChars)
		trimmed = string([]rune(trimmed)[:maxEmbeddingChars])
	}

	content := []*genai.Content{genai.NewContentFromText(trimmed, genai.RoleUser)}

	var values []float32
	err := s.withRetry(ctx, "EmbedContent", func(ctx context.Context) error {
		result, err := s.Client.Models.EmbedContent(ctx, s.EmbeddingModel, content, nil)
		if err != nil {
			return err
		}
		v, err := validateEmbeddingResponse(result)
		if err != nil {
			return fmt.Errorf("invalid embedding response: %w", err)
		}
		values = v
		return nil
	})
	return values, err
}

// withRetry runs call at most MaxRetries+1 times inside one RequestTimeout
// budget and feeds the circuit breaker.
func (s *GeminiService) withRetry(ctx context.Context, op string, call func(context.Context) error) error {
	if n, open := s.CircuitBreakerStatus(); open {
		return fmt.Errorf("circuit breaker open: too many consecutive errors (%d)", n)
	}

	if s.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.RequestTimeout)
		defer cancel()
	}

	var lastErr error
	for attempt := 0; attempt <= s.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := s.calculateBackoff(attempt)
			s.logger.Info("gemini.retry", "op", op, "attempt", attempt, "max", s.MaxRetries, "delay", delay)

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return fmt.Errorf("context timeout during retry: %w", ctx.Err())
			}
		}

		err := call(ctx)
		if err == nil {
			s.recordSuccess()
			return nil
		}
		lastErr = err

		if !isRetryableError(err) {
			s.recordFailure()
			s.logger.Warn("gemini.failed", "op", op, "error", err)
			return fmt.Errorf("%s failed: %w", op, err)
		}
		s.logger.Warn("gemini.retryable_error", "op", op, "attempt", attempt+1, "error", err)
	}

	s.recordFailure()
	if s.MaxRetries == 0 {
		return fmt.Errorf("%s failed: %w", op, lastErr)
	}
	return fmt.Errorf("max retries (%d) exceeded for %s: %w", s.MaxRetries, op, lastErr)
}

func (s *GeminiService) calculateBackoff(attempt int) time.Duration {
	delay := s.BaseDelay * time.Duration(math.Pow(2, float64(attempt-1)))
	if delay > s.MaxDelay {
		delay = s.MaxDelay
	}
	return delay
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	if code, ok := apiErrorCode(err); ok {
		return isRetryableStatus(code)
	}

	msg := err.Error()
	for _, s := range []string{"connection refused", "connection reset", "timeout", "temporary failure", "EOF"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

// apiErrorCode finds the HTTP status of a genai.APIError anywhere in err's
// chain, matching both the value and the pointer form.
func apiErrorCode(err error) (int, bool) {
	for err != nil {
		switch e := any(err).(type) {
		case genai.APIError:
			return e.Code, true
		case *genai.APIError:
			return e.Code, true
		}
		err = errors.Unwrap(err)
	}
	return 0, false
}

func isRetryableStatus(code int) bool {
	switch code {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

func validateGenerateResponse(resp *genai.GenerateContentResponse) error {
	if resp == nil {
		return fmt.Errorf("response is nil")
	}
	if len(resp.Candidates) == 0 {
		return fmt.Errorf("no candidates in response")
	}
	if resp.Candidates[0].Content == nil {
		return fmt.Errorf("candidate content is nil")
	}
	if len(resp.Candidates[0].Content.Parts) == 0 {
		return fmt.Errorf("no parts in content")
	}
	return nil
}

func validateEmbeddingResponse(resp *genai.EmbedContentResponse) ([]float32, error) {
	if resp == nil {
		return nil, fmt.Errorf("response is nil")
	}
	if len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil {
		return nil, fmt.Errorf("no embeddings returned")
	}

	values := resp.Embeddings[0].Values
	if len(values) == 0 {
		return nil, fmt.Errorf("embedding vector is empty")
	}
	for i, v := range values {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return nil, fmt.Errorf("invalid embedding value at index %d: %v", i, v)
		}
	}
	return values, nil
}

func (s *GeminiService) recordSuccess() {
	s.mu.Lock()
	s.consecutiveErrors = 0
	s.mu.Unlock()
}

func (s *GeminiService) recordFailure() {
	s.mu.Lock()
	s.consecutiveErrors++
	s.mu.Unlock()
}

func (s *GeminiService) ResetCircuitBreaker() {
	s.recordSuccess()
	s.logger.Info("gemini.circuit_reset")
}

func (s *GeminiService) CircuitBreakerStatus() (consecutiveErrors int, isOpen bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.consecutiveErrors, s.circuitBreakerMax > 0 && s.consecutiveErrors >= s.circuitBreakerMax
}

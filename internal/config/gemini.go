package config

import (
	"sync"
	"time"
)

type GeminiConfig struct {
	APIKey         string
	BaseURL        string
	Model          string
	EmbeddingModel string
	// MaxRetries is 0 by default: a failed analysis is reported, not retried.
	MaxRetries     int
	RequestTimeout time.Duration
}

var (
	geminiConfig *GeminiConfig
	geminiOnce   sync.Once
)

func LoadGeminiConfig() *GeminiConfig {
	geminiOnce.Do(func() {
		geminiConfig = &GeminiConfig{
			APIKey:         getEnv("GEMINI_API_KEY", ""),
			BaseURL:        getEnv("GEMINI_BASE_URL", ""),
			Model:          getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			EmbeddingModel: getEnv("GEMINI_EMBEDDING_MODEL", "gemini-embedding-001"),
			MaxRetries:     getEnvAsInt("GEMINI_MAX_RETRIES", 0),
			RequestTimeout: getEnvAsDuration("GEMINI_TIMEOUT", 90*time.Second),
		}
	})
	return geminiConfig
}

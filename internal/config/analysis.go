package config

import "sync"

const (
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
)

type AnalysisConfig struct {
	Provider        string
	ShareBaseURL    string
	MaxTokens       int
	Temperature     float32
	StoredTextLimit int
	RoleSuggestions int
}

var (
	analysisConfig *AnalysisConfig
	analysisOnce   sync.Once
)

func LoadAnalysisConfig() *AnalysisConfig {
	analysisOnce.Do(func() {
		analysisConfig = &AnalysisConfig{
			Provider:        getEnv("AI_PROVIDER", ProviderGemini),
			ShareBaseURL:    getEnv("SHARE_BASE_URL", LoadAppConfig().BaseURL+"/analysis"),
			MaxTokens:       getEnvAsInt("ANALYSIS_MAX_TOKENS", 2048),
			Temperature:     getEnvAsFloat32("ANALYSIS_TEMPERATURE", 0.3),
			StoredTextLimit: getEnvAsInt("STORED_TEXT_LIMIT", 10000),
			RoleSuggestions: getEnvAsInt("ROLE_SUGGESTIONS_LIMIT", 5),
		}
	})
	return analysisConfig
}

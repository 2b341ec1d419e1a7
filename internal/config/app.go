package config

import (
	"log/slog"
	"sync"
)

const EnvProduction = "production"

type AppConfig struct {
	Name     string
	Env      string
	Port     string
	BaseURL  string
	LogLevel string
}

func (c *AppConfig) IsProduction() bool {
	return c.Env == EnvProduction
}

var (
	appConfig *AppConfig
	appOnce   sync.Once
)

func LoadAppConfig() *AppConfig {
	appOnce.Do(func() {
		env := getEnv("APP_ENV", "")
		if env == "" {
			env = "development"
			slog.Warn("config.app_env_missing", "default", env)
		}
		appConfig = &AppConfig{
			Name:     getEnv("APP_NAME", "Resume Analyzer"),
			Env:      env,
			Port:     getEnv("APP_PORT", ":8080"),
			BaseURL:  getEnv("APP_URL", "http://localhost:8080"),
			LogLevel: getEnv("LOG_LEVEL", "info"),
		}
	})
	return appConfig
}

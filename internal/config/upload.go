package config

import (
	"os"
	"sync"
)

type UploadConfig struct {
	MaxFileSize int64
	TempDir     string
}

var (
	uploadConfig *UploadConfig
	uploadOnce   sync.Once
)

func LoadUploadConfig() *UploadConfig {
	uploadOnce.Do(func() {
		uploadConfig = &UploadConfig{
			MaxFileSize: getEnvAsInt64("MAX_FILE_SIZE", 10<<20),
			TempDir:     getEnv("UPLOAD_DIR", os.TempDir()),
		}
	})
	return uploadConfig
}

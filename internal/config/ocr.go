package config

import (
	"sync"
	"time"
)

type OCRConfig struct {
	Tesseract    string
	Lang         string
	TessdataDir  string
	PSM          int
	PDFFallback  bool
	MaxPages     int
	ParseTimeout time.Duration
}

var (
	ocrConfig *OCRConfig
	ocrOnce   sync.Once
)

func LoadOCRConfig() *OCRConfig {
	ocrOnce.Do(func() {
		ocrConfig = &OCRConfig{
			Tesseract:    getEnv("TESSERACT_PATH", "tesseract"),
			Lang:         getEnv("OCR_LANG", "eng"),
			TessdataDir:  getEnv("TESSDATA_DIR", ""),
			PSM:          getEnvAsInt("OCR_PSM", 0),
			PDFFallback:  getEnvAsBool("PDF_OCR_FALLBACK", false),
			MaxPages:     getEnvAsInt("OCR_MAX_PAGES", 5),
			ParseTimeout: getEnvAsDuration("PDF_PARSE_TIMEOUT", 30*time.Second),
		}
	})
	return ocrConfig
}

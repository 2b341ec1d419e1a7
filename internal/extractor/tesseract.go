package extractor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
)

var ErrEngineClosed = errors.New("ocr engine already closed")

type TesseractConfig struct {
	Binary      string // default "tesseract"
	Lang        string // default "eng"
	TessdataDir string
	PSM         int // 0 keeps tesseract's default
}

// Tesseract hands out engines backed by the tesseract CLI.
type Tesseract struct {
	cfg    TesseractConfig
	runner Runner
	logger *slog.Logger
}

func NewTesseract(cfg TesseractConfig, logger *slog.Logger) *Tesseract {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Binary == "" {
		cfg.Binary = "tesseract"
	}
	if cfg.Lang == "" {
		cfg.Lang = "eng"
	}
	return &Tesseract{cfg: cfg, runner: execRunner{}, logger: logger}
}

func (t *Tesseract) WithRunner(r Runner) *Tesseract {
	t.runner = r
	return t
}

// Check verifies the binary is installed and returns its version line.
func (t *Tesseract) Check(ctx context.Context) (string, error) {
	out, errb, err := t.runner.Run(ctx, t.cfg.Binary, "--version")
	if err != nil {
		return "", fmt.Errorf("tesseract not found or not executable: %w: %s", err, strings.TrimSpace(string(errb)))
	}
	// older builds print the version on stderr
	version := strings.TrimSpace(string(out))
	if version == "" {
		version = strings.TrimSpace(string(errb))
	}
	line, _, _ := strings.Cut(version, "\n")
	return line, nil
}

func (t *Tesseract) Acquire(ctx context.Context) (Engine, error) {
	version, err := t.Check(ctx)
	if err != nil {
		return nil, err
	}
	t.logger.Debug("ocr.acquired", "version", version, "lang", t.cfg.Lang)
	return &tesseractEngine{t: t}, nil
}

type tesseractEngine struct {
	t      *Tesseract
	mu     sync.Mutex
	closed bool
}

func (e *tesseractEngine) Recognize(ctx context.Context, path string) (string, error) {
	e.mu.Lock()
	closed := e.closed
	e.mu.Unlock()
	if closed {
		return "", ErrEngineClosed
	}

	cfg := e.t.cfg
	args := []string{path, "stdout", "-l", cfg.Lang}
	if cfg.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(cfg.PSM))
	}
	if cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", cfg.TessdataDir)
	}

	out, errb, err := e.t.runner.Run(ctx, cfg.Binary, args...)
	if err != nil {
		msg := strings.TrimSpace(string(errb))
		if msg == "" {
			return "", fmt.Errorf("tesseract: %w", err)
		}
		return "", fmt.Errorf("tesseract: %w: %s", err, truncate(msg, 512))
	}
	return string(out), nil
}

func (e *tesseractEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}

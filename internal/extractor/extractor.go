// Package extractor turns an uploaded resume into plain text, either from a
// PDF text layer or by running OCR over an image.
package extractor

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fadilmartias/resume-analyzer/internal/apperror"
	"golang.org/x/text/unicode/norm"
)

const (
	// MinExtractedChars separates a real text layer from a scanned image
	// saved as PDF. Results below it are not usable.
	MinExtractedChars = 50

	PDFParseTimeout = 30 * time.Second
)

type Method string

const (
	MethodPDFText  Method = "pdf-text"
	MethodImageOCR Method = "image-ocr"
	MethodPDFOCR   Method = "pdf-ocr"
)

type Result struct {
	Text           string `json:"text"`
	CharacterCount int    `json:"characterCount"`
	Method         Method `json:"processingMethod"`
	Filename       string `json:"filename"`
	FileSize       int64  `json:"fileSize"`
	Pages          int    `json:"pages,omitempty"`
}

// Engine recognizes text in one image. An engine belongs to a single
// request and must be closed by whoever acquired it.
type Engine interface {
	Recognize(ctx context.Context, path string) (string, error)
	Close() error
}

type EngineFactory interface {
	Acquire(ctx context.Context) (Engine, error)
}

// PDFParser returns the text of every page in document order.
type PDFParser interface {
	Parse(ctx context.Context, path string) ([]string, error)
}

// Rasterizer renders each page of a PDF to an image inside dir and returns
// the image paths in page order.
type Rasterizer interface {
	Rasterize(ctx context.Context, path, dir string) ([]string, error)
}

type Config struct {
	MinChars     int
	ParseTimeout time.Duration
	// OCRFallback retries PDFs without a usable text layer through OCR.
	// It only takes effect when a Rasterizer is set.
	OCRFallback bool
}

type Extractor struct {
	cfg     Config
	engines EngineFactory
	parser  PDFParser
	raster  Rasterizer
	logger  *slog.Logger
}

func New(cfg Config, engines EngineFactory, parser PDFParser, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MinChars <= 0 {
		cfg.MinChars = MinExtractedChars
	}
	if cfg.ParseTimeout <= 0 {
		cfg.ParseTimeout = PDFParseTimeout
	}
	return &Extractor{cfg: cfg, engines: engines, parser: parser, logger: logger}
}

func (e *Extractor) WithRasterizer(r Rasterizer) *Extractor {
	e.raster = r
	return e
}

// Extract produces text from u. The file at u's path is removed before
// Extract returns, whatever the outcome.
func (e *Extractor) Extract(ctx context.Context, u Upload) (Result, error) {
	f := u.file()
	defer e.cleanup(f.Path)

	start := time.Now()
	var (
		res Result
		err error
	)
	switch up := u.(type) {
	case ImageUpload:
		res, err = e.extractImage(ctx, up)
	case PDFUpload:
		res, err = e.extractPDF(ctx, up)
	default:
		return Result{}, apperror.InvalidInput("unsupported upload")
	}

	if err != nil {
		e.logger.Warn("extract.failed",
			"filename", f.Filename,
			"reason", apperror.ReasonOf(err),
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err,
		)
		return Result{}, err
	}

	res.Filename = f.Filename
	res.FileSize = f.Size
	e.logger.Info("extract.ok",
		"filename", f.Filename,
		"method", res.Method,
		"chars", res.CharacterCount,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

func (e *Extractor) extractImage(ctx context.Context, u ImageUpload) (Result, error) {
	text, err := e.recognize(ctx, u.Path)
	if err != nil {
		return Result{}, err
	}
	n := utf8.RuneCountInString(text)
	if n < e.cfg.MinChars {
		return Result{}, apperror.Extraction(apperror.ReasonInsufficientText,
			"OCR completed but the recognized text is too short", nil)
	}
	return Result{Text: text, CharacterCount: n, Method: MethodImageOCR, Pages: 1}, nil
}

// recognize runs every image through one freshly acquired engine and joins
// the non-blank results.
func (e *Extractor) recognize(ctx context.Context, paths ...string) (string, error) {
	engine, err := e.engines.Acquire(ctx)
	if err != nil {
		return "", apperror.Extraction(apperror.ReasonOcrEngineFailure, "OCR engine unavailable", err)
	}
	defer func() {
		if cerr := engine.Close(); cerr != nil {
			e.logger.Warn("extract.ocr_release_failed", "error", cerr)
		}
	}()

	parts := make([]string, 0, len(paths))
	for _, p := range paths {
		raw, err := engine.Recognize(ctx, p)
		if err != nil {
			return "", apperror.Extraction(apperror.ReasonOcrEngineFailure, "OCR engine failed", err)
		}
		if t := strings.TrimSpace(raw); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n"), nil
}

func (e *Extractor) extractPDF(ctx context.Context, u PDFUpload) (Result, error) {
	pages, err := e.parsePDF(ctx, u.Path)
	if err != nil {
		return Result{}, err
	}

	// NFKC folds typographic ligatures and full-width forms that PDF text
	// layers often carry.
	text := strings.TrimSpace(norm.NFKC.String(strings.Join(pages, "\n")))
	n := utf8.RuneCountInString(text)
	if n >= e.cfg.MinChars {
		return Result{Text: text, CharacterCount: n, Method: MethodPDFText, Pages: len(pages)}, nil
	}

	if e.cfg.OCRFallback && e.raster != nil {
		res, ok := e.ocrPDF(ctx, u.Path)
		if ok {
			return res, nil
		}
	}
	return Result{}, apperror.Extraction(apperror.ReasonScannedPdfSuspected,
		"the PDF has little or no text layer", nil)
}

// parsePDF bounds the parser by cfg.ParseTimeout. The parser goroutine may
// outlive a timeout; its result is then discarded.
func (e *Extractor) parsePDF(ctx context.Context, path string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.ParseTimeout)
	defer cancel()

	type outcome struct {
		pages []string
		err   error
	}
	done := make(chan outcome, 1)
	go func() {
		pages, err := e.parser.Parse(ctx, path)
		done <- outcome{pages: pages, err: err}
	}()

	select {
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, apperror.Extraction(apperror.ReasonPdfParseTimeout, "PDF parsing timed out", ctx.Err())
		}
		return nil, apperror.Extraction(apperror.ReasonPdfParseError, "PDF parsing was cancelled", ctx.Err())
	case out := <-done:
		if out.err != nil {
			if errors.Is(out.err, context.DeadlineExceeded) {
				return nil, apperror.Extraction(apperror.ReasonPdfParseTimeout, "PDF parsing timed out", out.err)
			}
			return nil, apperror.Extraction(apperror.ReasonPdfParseError, "the PDF could not be read", out.err)
		}
		return out.pages, nil
	}
}

// ocrPDF rasterizes the pages into a scratch directory and recognizes them.
// Any failure just reports !ok so the caller falls back to the scanned-PDF
// answer.
func (e *Extractor) ocrPDF(ctx context.Context, path string) (Result, bool) {
	dir, err := os.MkdirTemp("", "resume-pages-*")
	if err != nil {
		e.logger.Warn("extract.pdf_ocr_failed", "stage", "scratch", "error", err)
		return Result{}, false
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			e.logger.Warn("extract.cleanup_failed", "path", dir, "error", err)
		}
	}()

	images, err := e.raster.Rasterize(ctx, path, dir)
	if err != nil || len(images) == 0 {
		e.logger.Warn("extract.pdf_ocr_failed", "stage", "rasterize", "pages", len(images), "error", err)
		return Result{}, false
	}

	text, err := e.recognize(ctx, images...)
	if err != nil {
		e.logger.Warn("extract.pdf_ocr_failed", "stage", "recognize", "error", err)
		return Result{}, false
	}
	n := utf8.RuneCountInString(text)
	if n < e.cfg.MinChars {
		return Result{}, false
	}
	return Result{Text: text, CharacterCount: n, Method: MethodPDFOCR, Pages: len(images)}, true
}

func (e *Extractor) cleanup(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		e.logger.Warn("extract.cleanup_failed", "path", path, "error", err)
	}
}

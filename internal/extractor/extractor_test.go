package extractor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fadilmartias/resume-analyzer/internal/apperror"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type fakeEngine struct {
	mu     sync.Mutex
	texts  map[string]string
	text   string
	err    error
	seen   []string
	closed bool
}

func (e *fakeEngine) Recognize(_ context.Context, path string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.seen = append(e.seen, path)
	if e.err != nil {
		return "", e.err
	}
	if t, ok := e.texts[filepath.Base(path)]; ok {
		return t, nil
	}
	return e.text, nil
}

func (e *fakeEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}

type fakeFactory struct {
	engine     *fakeEngine
	acquireErr error
	acquired   int
}

func (f *fakeFactory) Acquire(context.Context) (Engine, error) {
	f.acquired++
	if f.acquireErr != nil {
		return nil, f.acquireErr
	}
	return f.engine, nil
}

type parserFunc func(ctx context.Context, path string) ([]string, error)

func (p parserFunc) Parse(ctx context.Context, path string) ([]string, error) { return p(ctx, path) }

type fakeRasterizer struct {
	pages int
	err   error
}

func (r fakeRasterizer) Rasterize(_ context.Context, _, dir string) ([]string, error) {
	if r.err != nil {
		return nil, r.err
	}
	out := make([]string, 0, r.pages)
	for i := 1; i <= r.pages; i++ {
		p := filepath.Join(dir, fmt.Sprintf("page-%03d.png", i))
		if err := os.WriteFile(p, []byte("png"), 0o600); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func tempUpload(t *testing.T, name string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte("payload"), 0o600))
	return p
}

func assertRemoved(t *testing.T, path string) {
	t.Helper()
	_, err := os.Stat(path)
	assert.True(t, errors.Is(err, os.ErrNotExist), "temp file %s should be removed", path)
}

func pages(texts ...string) parserFunc {
	return func(context.Context, string) ([]string, error) { return texts, nil }
}

func TestExtractPDFTextLayer(t *testing.T) {
	path := tempUpload(t, "cv.pdf")
	body := strings.Repeat("a", 200)
	ex := New(Config{}, &fakeFactory{}, pages(body), discard)

	res, err := ex.Extract(context.Background(), PDFUpload{File{Path: path, Filename: "cv.pdf", Size: 7}})
	require.NoError(t, err)

	assert.Equal(t, MethodPDFText, res.Method)
	assert.Equal(t, 200, res.CharacterCount)
	assert.Equal(t, body, res.Text)
	assert.Equal(t, "cv.pdf", res.Filename)
	assert.Equal(t, int64(7), res.FileSize)
	assertRemoved(t, path)
}

func TestExtractPDFJoinsPagesWithNewline(t *testing.T) {
	path := tempUpload(t, "cv.pdf")
	p1 := "Jane Doe, Senior Backend Engineer"
	p2 := "Experience: eight years building payment systems in Go"
	ex := New(Config{}, &fakeFactory{}, pages(p1, p2), discard)

	res, err := ex.Extract(context.Background(), PDFUpload{File{Path: path}})
	require.NoError(t, err)

	assert.Equal(t, p1+"\n"+p2, res.Text)
	assert.Equal(t, 2, res.Pages)
}

func TestExtractPDFCountsCharactersNotBytes(t *testing.T) {
	path := tempUpload(t, "cv.pdf")
	body := strings.Repeat("é", 60)
	ex := New(Config{}, &fakeFactory{}, pages(body), discard)

	res, err := ex.Extract(context.Background(), PDFUpload{File{Path: path}})
	require.NoError(t, err)
	assert.Equal(t, 60, res.CharacterCount)
}

func TestExtractPDFFoldsLigatures(t *testing.T) {
	path := tempUpload(t, "cv.pdf")
	body := "Proﬁcient in workﬂow automation and ﬁnancial reporting for ﬁve years"
	ex := New(Config{}, &fakeFactory{}, pages(body), discard)

	res, err := ex.Extract(context.Background(), PDFUpload{File{Path: path}})
	require.NoError(t, err)

	assert.Equal(t, "Proficient in workflow automation and financial reporting for five years", res.Text)
	assert.Equal(t, utf8.RuneCountInString(res.Text), res.CharacterCount)
}

func TestExtractPDFScannedSuspected(t *testing.T) {
	path := tempUpload(t, "scan.pdf")
	ex := New(Config{}, &fakeFactory{}, pages("0123456789"), discard)

	_, err := ex.Extract(context.Background(), PDFUpload{File{Path: path}})

	require.Error(t, err)
	assert.Equal(t, apperror.KindExtractionFailure, apperror.KindOf(err))
	assert.Equal(t, apperror.ReasonScannedPdfSuspected, apperror.ReasonOf(err))
	assertRemoved(t, path)
}

func TestExtractPDFParseError(t *testing.T) {
	path := tempUpload(t, "broken.pdf")
	parser := parserFunc(func(context.Context, string) ([]string, error) {
		return nil, errors.New("xref table missing")
	})
	ex := New(Config{}, &fakeFactory{}, parser, discard)

	_, err := ex.Extract(context.Background(), PDFUpload{File{Path: path}})

	assert.Equal(t, apperror.ReasonPdfParseError, apperror.ReasonOf(err))
	assert.Contains(t, err.Error(), "xref table missing")
	assertRemoved(t, path)
}

func TestExtractPDFParseTimeout(t *testing.T) {
	path := tempUpload(t, "slow.pdf")
	release := make(chan struct{})
	defer close(release)
	parser := parserFunc(func(context.Context, string) ([]string, error) {
		<-release
		return nil, nil
	})
	ex := New(Config{ParseTimeout: 20 * time.Millisecond}, &fakeFactory{}, parser, discard)

	start := time.Now()
	_, err := ex.Extract(context.Background(), PDFUpload{File{Path: path}})

	assert.Equal(t, apperror.ReasonPdfParseTimeout, apperror.ReasonOf(err))
	assert.Less(t, time.Since(start), 2*time.Second)
	assertRemoved(t, path)
}

func TestExtractRealParserRejectsGarbage(t *testing.T) {
	path := tempUpload(t, "garbage.pdf")
	ex := New(Config{}, &fakeFactory{}, TextLayerParser{}, discard)

	_, err := ex.Extract(context.Background(), PDFUpload{File{Path: path}})

	assert.Equal(t, apperror.ReasonPdfParseError, apperror.ReasonOf(err))
	assertRemoved(t, path)
}

func TestExtractImage(t *testing.T) {
	tests := []struct {
		name       string
		engine     *fakeEngine
		acquireErr error
		wantReason apperror.Reason
		wantText   string
	}{
		{
			name:     "recognized",
			engine:   &fakeEngine{text: "  " + strings.Repeat("b", 80) + "\n\n"},
			wantText: strings.Repeat("b", 80),
		},
		{
			name:       "too short",
			engine:     &fakeEngine{text: "   hello   "},
			wantReason: apperror.ReasonInsufficientText,
		},
		{
			name:       "engine error",
			engine:     &fakeEngine{err: errors.New("tessdata not found")},
			wantReason: apperror.ReasonOcrEngineFailure,
		},
		{
			name:       "acquire error",
			engine:     &fakeEngine{},
			acquireErr: errors.New("binary missing"),
			wantReason: apperror.ReasonOcrEngineFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tempUpload(t, "cv.png")
			factory := &fakeFactory{engine: tt.engine, acquireErr: tt.acquireErr}
			ex := New(Config{}, factory, pages(), discard)

			res, err := ex.Extract(context.Background(), ImageUpload{File: File{Path: path, Filename: "cv.png"}, MediaType: MediaTypePNG})

			assert.Equal(t, 1, factory.acquired)
			if tt.acquireErr == nil {
				assert.True(t, tt.engine.closed, "engine must be released")
			}
			assertRemoved(t, path)

			if tt.wantReason != apperror.ReasonNone {
				require.Error(t, err)
				assert.Equal(t, tt.wantReason, apperror.ReasonOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, MethodImageOCR, res.Method)
			assert.Equal(t, tt.wantText, res.Text)
			assert.Equal(t, len(tt.wantText), res.CharacterCount)
		})
	}
}

func TestExtractEngineFailureKeepsUnderlyingMessage(t *testing.T) {
	path := tempUpload(t, "cv.jpg")
	ex := New(Config{}, &fakeFactory{engine: &fakeEngine{err: errors.New("Error opening data file eng.traineddata")}}, pages(), discard)

	_, err := ex.Extract(context.Background(), ImageUpload{File: File{Path: path}, MediaType: MediaTypeJPEG})
	assert.Contains(t, err.Error(), "eng.traineddata")
}

func TestExtractMissingTempFileIsNotAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gone.png")
	engine := &fakeEngine{text: strings.Repeat("c", 64)}
	ex := New(Config{}, &fakeFactory{engine: engine}, pages(), discard)

	res, err := ex.Extract(context.Background(), ImageUpload{File: File{Path: path}, MediaType: MediaTypePNG})
	require.NoError(t, err)
	assert.Equal(t, 64, res.CharacterCount)
}

func TestExtractPDFOCRFallback(t *testing.T) {
	tests := []struct {
		name       string
		fallback   bool
		raster     fakeRasterizer
		engine     *fakeEngine
		wantMethod Method
		wantReason apperror.Reason
	}{
		{
			name:       "disabled",
			fallback:   false,
			raster:     fakeRasterizer{pages: 1},
			engine:     &fakeEngine{text: strings.Repeat("d", 100)},
			wantReason: apperror.ReasonScannedPdfSuspected,
		},
		{
			name:     "recovers text",
			fallback: true,
			raster:   fakeRasterizer{pages: 2},
			engine: &fakeEngine{texts: map[string]string{
				"page-001.png": strings.Repeat("e", 40),
				"page-002.png": strings.Repeat("f", 40),
			}},
			wantMethod: MethodPDFOCR,
		},
		{
			name:       "ocr still too short",
			fallback:   true,
			raster:     fakeRasterizer{pages: 1},
			engine:     &fakeEngine{text: "blurry"},
			wantReason: apperror.ReasonScannedPdfSuspected,
		},
		{
			name:       "rasterize fails",
			fallback:   true,
			raster:     fakeRasterizer{err: errors.New("mupdf: cannot open")},
			engine:     &fakeEngine{},
			wantReason: apperror.ReasonScannedPdfSuspected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tempUpload(t, "scan.pdf")
			ex := New(Config{OCRFallback: tt.fallback}, &fakeFactory{engine: tt.engine}, pages("tiny"), discard).
				WithRasterizer(tt.raster)

			res, err := ex.Extract(context.Background(), PDFUpload{File{Path: path}})
			assertRemoved(t, path)

			if tt.wantReason != apperror.ReasonNone {
				assert.Equal(t, tt.wantReason, apperror.ReasonOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantMethod, res.Method)
			assert.Equal(t, strings.Repeat("e", 40)+"\n"+strings.Repeat("f", 40), res.Text)
			assert.Equal(t, 2, res.Pages)
			assert.True(t, tt.engine.closed)

			for _, img := range tt.engine.seen {
				assertRemoved(t, img)
			}
		})
	}
}

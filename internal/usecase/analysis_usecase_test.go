package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fadilmartias/resume-analyzer/internal/apperror"
	"github.com/fadilmartias/resume-analyzer/internal/dto"
	"github.com/fadilmartias/resume-analyzer/internal/model"
	"github.com/fadilmartias/resume-analyzer/internal/normalizer"
	"github.com/fadilmartias/resume-analyzer/internal/repository"
	"github.com/fadilmartias/resume-analyzer/internal/service"
	"github.com/fadilmartias/resume-analyzer/internal/shareid"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type fakeCompleter struct {
	resp  string
	err   error
	calls []service.CompletionRequest
}

func (f *fakeCompleter) Complete(_ context.Context, req service.CompletionRequest) (string, error) {
	f.calls = append(f.calls, req)
	return f.resp, f.err
}

type fakeStore struct {
	records    map[string]*model.AnalysisRecord
	createErrs []error
	findErr    error
	creates    int
	finds      int
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: make(map[string]*model.AnalysisRecord)}
}

func (s *fakeStore) Create(_ context.Context, rec *model.AnalysisRecord) error {
	s.creates++
	if len(s.createErrs) > 0 {
		err := s.createErrs[0]
		s.createErrs = s.createErrs[1:]
		if err != nil {
			return err
		}
	}
	rec.ID = uint(s.creates)
	rec.CreatedAt = time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	cp := *rec
	s.records[rec.UniqueID] = &cp
	return nil
}

func (s *fakeStore) FindByUniqueID(_ context.Context, id string) (*model.AnalysisRecord, error) {
	s.finds++
	if s.findErr != nil {
		return nil, s.findErr
	}
	rec, ok := s.records[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return rec, nil
}

const goodCompletion = "```json\n" + `{
  "overallScore": 15,
  "summary": "Strong backend profile with clear impact.",
  "strengths": ["Go expertise", "", "Led migrations"],
  "weaknesses": ["No summary section"],
  "improvements": ["Add metrics"],
  "keywordSuggestions": ["kubernetes", "grpc"],
  "categories": {"skills": 12, "content": -3}
}` + "\n```"

func newUsecase(store AnalysisStore, completer service.Completer, opts AnalysisOptions) *AnalysisUsecase {
	if opts.ShareBaseURL == "" {
		opts.ShareBaseURL = "https://resume.example.com/analysis"
	}
	return NewAnalysisUsecase(store, completer, opts, discard)
}

func resume(n int) string {
	return strings.Repeat("r", n)
}

func TestAnalyzeInputGate(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr bool
	}{
		{"empty", "", true},
		{"99 chars", resume(99), true},
		{"99 chars padded", "   " + resume(99) + "\n\n", true},
		{"exactly 100", resume(100), false},
		{"100 padded", "\t" + resume(100) + "  ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			completer := &fakeCompleter{resp: goodCompletion}
			uc := newUsecase(newFakeStore(), completer, AnalysisOptions{})

			_, err := uc.Analyze(context.Background(), dto.AnalyzeRequest{ResumeText: tt.text})
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, apperror.KindInvalidInput, apperror.KindOf(err))
				assert.Empty(t, completer.calls)
				return
			}
			require.NoError(t, err)
			assert.Len(t, completer.calls, 1)
		})
	}
}

func TestAnalyzeTruncatesBeforeInference(t *testing.T) {
	completer := &fakeCompleter{resp: goodCompletion}
	store := newFakeStore()
	uc := newUsecase(store, completer, AnalysisOptions{})

	out, err := uc.Analyze(context.Background(), dto.AnalyzeRequest{ResumeText: strings.Repeat("ж", 60000)})
	require.NoError(t, err)

	require.Len(t, completer.calls, 1)
	assert.Equal(t, MaxAnalyzedChars, strings.Count(completer.calls[0].Prompt, "ж"))
	assert.Equal(t, MaxAnalyzedChars, utf8.RuneCountInString(store.records[out.ID].ResumeText))
}

func TestAnalyzeEndToEnd(t *testing.T) {
	completer := &fakeCompleter{resp: goodCompletion}
	store := newFakeStore()
	uc := newUsecase(store, completer, AnalysisOptions{Model: "gemini-2.5-flash", MaxTokens: 2048, Temperature: 0.3})

	text := resume(150)
	out, err := uc.Analyze(context.Background(), dto.AnalyzeRequest{
		ResumeText: text,
		Metadata:   map[string]any{"filename": "cv.pdf", "processingMethod": "pdf-text"},
	})
	require.NoError(t, err)

	assert.True(t, shareid.Valid(out.ID), out.ID)
	assert.Equal(t, "https://resume.example.com/analysis/"+out.ID, out.ShareURL)
	assert.Contains(t, out.ShareURL, out.ID)

	a := out.Analysis
	assert.Equal(t, 10, a.OverallScore)
	assert.Equal(t, []string{"Go expertise", "Led migrations"}, a.Strengths)
	assert.Equal(t, 10, a.Categories.Skills)
	assert.Equal(t, 0, a.Categories.Content)
	assert.Equal(t, normalizer.DefaultCategoryScore, a.Categories.Formatting)
	assert.LessOrEqual(t, len(a.KeywordSuggestions), normalizer.MaxKeywordSuggestions)
	assert.Equal(t, "cv.pdf", out.Metadata["filename"])

	req := completer.calls[0]
	assert.Equal(t, "gemini-2.5-flash", req.Model)
	assert.Equal(t, 2048, req.MaxTokens)
	assert.InDelta(t, 0.3, req.Temperature, 0.0001)
	assert.Contains(t, req.Prompt, text)

	stored := store.records[out.ID]
	require.NotNil(t, stored)
	assert.Equal(t, text, stored.ResumeText)
	assert.Equal(t, a, stored.Analysis.Data())
}

func TestAnalyzeGarbageCompletionStoresDefault(t *testing.T) {
	uc := newUsecase(newFakeStore(), &fakeCompleter{resp: "I am unable to help with that."}, AnalysisOptions{})

	out, err := uc.Analyze(context.Background(), dto.AnalyzeRequest{ResumeText: resume(200)})
	require.NoError(t, err)
	assert.Equal(t, normalizer.Default(), out.Analysis)
}

func TestAnalyzeInferenceFailure(t *testing.T) {
	store := newFakeStore()
	uc := newUsecase(store, &fakeCompleter{err: errors.New("401 API key not valid")}, AnalysisOptions{})

	_, err := uc.Analyze(context.Background(), dto.AnalyzeRequest{ResumeText: resume(200)})

	require.Error(t, err)
	assert.Equal(t, apperror.KindAnalysisFailed, apperror.KindOf(err))
	assert.True(t, apperror.Is(err, apperror.KindInferenceUnavailable))
	assert.Zero(t, store.creates)

	var appErr *apperror.Error
	require.True(t, errors.As(err, &appErr))
	assert.NotContains(t, appErr.Message, "API key")
}

func TestAnalyzeRetriesOnIDCollision(t *testing.T) {
	store := newFakeStore()
	store.createErrs = []error{fmt.Errorf("%w: deadbeefdeadbeef", repository.ErrDuplicateID)}
	uc := newUsecase(store, &fakeCompleter{resp: goodCompletion}, AnalysisOptions{})

	ids := []string{"deadbeefdeadbeef", "0123456789abcdef"}
	uc.newID = func() (string, error) {
		id := ids[0]
		ids = ids[1:]
		return id, nil
	}

	out, err := uc.Analyze(context.Background(), dto.AnalyzeRequest{ResumeText: resume(200)})
	require.NoError(t, err)
	assert.Equal(t, 2, store.creates)
	assert.Equal(t, "0123456789abcdef", out.ID)
}

func TestAnalyzeGivesUpAfterRepeatedCollisions(t *testing.T) {
	store := newFakeStore()
	for i := 0; i < maxIDAttempts; i++ {
		store.createErrs = append(store.createErrs, repository.ErrDuplicateID)
	}
	uc := newUsecase(store, &fakeCompleter{resp: goodCompletion}, AnalysisOptions{})

	_, err := uc.Analyze(context.Background(), dto.AnalyzeRequest{ResumeText: resume(200)})

	assert.Equal(t, apperror.KindAnalysisFailed, apperror.KindOf(err))
	assert.True(t, apperror.Is(err, apperror.KindPersistenceFailure))
	assert.Equal(t, maxIDAttempts, store.creates)
}

func TestAnalyzeStoreFailureIsNotRetried(t *testing.T) {
	store := newFakeStore()
	store.createErrs = []error{errors.New("connection refused")}
	uc := newUsecase(store, &fakeCompleter{resp: goodCompletion}, AnalysisOptions{})

	_, err := uc.Analyze(context.Background(), dto.AnalyzeRequest{ResumeText: resume(200)})

	assert.Equal(t, apperror.KindAnalysisFailed, apperror.KindOf(err))
	assert.True(t, apperror.Is(err, apperror.KindPersistenceFailure))
	assert.Equal(t, 1, store.creates)
}

func TestAnalyzeStoredTextLimit(t *testing.T) {
	store := newFakeStore()
	completer := &fakeCompleter{resp: goodCompletion}
	uc := newUsecase(store, completer, AnalysisOptions{StoredTextLimit: 120})

	text := resume(300)
	out, err := uc.Analyze(context.Background(), dto.AnalyzeRequest{ResumeText: text})
	require.NoError(t, err)

	assert.Len(t, store.records[out.ID].ResumeText, 120)
	assert.Contains(t, completer.calls[0].Prompt, text)
}

func TestGetValidatesIDBeforeLookup(t *testing.T) {
	for _, id := range []string{"xyz", "deadbeef", "DEADBEEFDEADBEEF", "deadbeefdeadbeef/../x", ""} {
		t.Run(id, func(t *testing.T) {
			store := newFakeStore()
			uc := newUsecase(store, &fakeCompleter{}, AnalysisOptions{})

			_, err := uc.Get(context.Background(), id)
			assert.Equal(t, apperror.KindInvalidInput, apperror.KindOf(err))
			assert.Zero(t, store.finds)
		})
	}
}

func TestGet(t *testing.T) {
	store := newFakeStore()
	uc := newUsecase(store, &fakeCompleter{resp: goodCompletion}, AnalysisOptions{})

	_, err := uc.Get(context.Background(), "deadbeefdeadbeef")
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
	assert.Equal(t, 1, store.finds)

	created, err := uc.Analyze(context.Background(), dto.AnalyzeRequest{ResumeText: resume(200)})
	require.NoError(t, err)

	got, err := uc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, created.ShareURL, got.ShareURL)
	assert.Equal(t, created.Analysis, got.Analysis)
}

func TestGetStoreFailure(t *testing.T) {
	store := newFakeStore()
	store.findErr = errors.New("too many connections")
	uc := newUsecase(store, &fakeCompleter{}, AnalysisOptions{})

	_, err := uc.Get(context.Background(), "deadbeefdeadbeef")
	assert.Equal(t, apperror.KindPersistenceFailure, apperror.KindOf(err))
}

func TestBuildAnalysisPrompt(t *testing.T) {
	p := BuildAnalysisPrompt("RESUME BODY")

	assert.Contains(t, p, "RESUME BODY")
	assert.Contains(t, p, `"keywordSuggestions"`)
	assert.Contains(t, p, `"maxItems": 10`)
}

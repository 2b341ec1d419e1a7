package usecase

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fadilmartias/resume-analyzer/internal/apperror"
	"github.com/fadilmartias/resume-analyzer/internal/dto"
	"github.com/fadilmartias/resume-analyzer/internal/model"
	"github.com/fadilmartias/resume-analyzer/internal/normalizer"
	"github.com/fadilmartias/resume-analyzer/internal/repository"
	"github.com/fadilmartias/resume-analyzer/internal/service"
	"github.com/fadilmartias/resume-analyzer/internal/shareid"
	"gorm.io/datatypes"
)

const (
	MinResumeChars   = 100
	MaxAnalyzedChars = 50000

	// maxIDAttempts bounds inserts when a generated id is already taken.
	maxIDAttempts = 3
)

const genericFailure = "We could not analyze your resume right now. Please try again in a few minutes."

// AnalysisStore persists analyses. Create must report a taken unique id as
// repository.ErrDuplicateID and FindByUniqueID a missing one as
// repository.ErrNotFound.
type AnalysisStore interface {
	Create(ctx context.Context, rec *model.AnalysisRecord) error
	FindByUniqueID(ctx context.Context, uniqueID string) (*model.AnalysisRecord, error)
}

type AnalysisOptions struct {
	Model        string
	MaxTokens    int
	Temperature  float32
	ShareBaseURL string
	// StoredTextLimit caps the persisted resume text. 0 stores it in full.
	StoredTextLimit int
}

type AnalysisUsecase struct {
	store     AnalysisStore
	completer service.Completer
	opts      AnalysisOptions
	newID     func() (string, error)
	logger    *slog.Logger
}

func NewAnalysisUsecase(store AnalysisStore, completer service.Completer, opts AnalysisOptions, logger *slog.Logger) *AnalysisUsecase {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisUsecase{
		store:     store,
		completer: completer,
		opts:      opts,
		newID:     shareid.New,
		logger:    logger,
	}
}

// Analyze gates and truncates the resume text, asks the model for feedback,
// normalizes it and stores the record. Any failure past the input gate is
// returned as KindAnalysisFailed wrapping the original class.
func (uc *AnalysisUsecase) Analyze(ctx context.Context, req dto.AnalyzeRequest) (*dto.AnalysisDTO, error) {
	text := strings.TrimSpace(req.ResumeText)
	if n := utf8.RuneCountInString(text); n < MinResumeChars {
		return nil, apperror.InvalidInput("resume text must be at least 100 characters")
	}
	text = truncateRunes(text, MaxAnalyzedChars)

	start := time.Now()
	raw, err := uc.completer.Complete(ctx, service.CompletionRequest{
		Prompt:      BuildAnalysisPrompt(text),
		Model:       uc.opts.Model,
		MaxTokens:   uc.opts.MaxTokens,
		Temperature: uc.opts.Temperature,
	})
	if err != nil {
		return nil, uc.fail(apperror.New(apperror.KindInferenceUnavailable, "inference service unavailable", err))
	}
	uc.logger.Info("analysis.completed", "chars", utf8.RuneCountInString(text), "duration_ms", time.Since(start).Milliseconds())

	if cerr := normalizer.Conforms(raw); cerr != nil {
		uc.logger.Debug("analysis.schema_drift", "error", cerr)
	}
	analysis := normalizer.Normalize(raw)

	stored := text
	if uc.opts.StoredTextLimit > 0 {
		stored = truncateRunes(stored, uc.opts.StoredTextLimit)
	}
	rec := &model.AnalysisRecord{
		ResumeText: stored,
		Analysis:   datatypes.NewJSONType(analysis),
		Metadata:   datatypes.JSONMap(req.Metadata),
	}
	if err := uc.persist(ctx, rec); err != nil {
		return nil, uc.fail(err)
	}

	out, err := uc.toDTO(rec)
	if err != nil {
		return nil, uc.fail(err)
	}
	uc.logger.Info("analysis.stored", "id", rec.UniqueID, "overall_score", analysis.OverallScore)
	return out, nil
}

// persist assigns a fresh id and inserts rec, drawing a new id when the
// previous one is taken.
func (uc *AnalysisUsecase) persist(ctx context.Context, rec *model.AnalysisRecord) error {
	var lastErr error
	for attempt := 1; attempt <= maxIDAttempts; attempt++ {
		id, err := uc.newID()
		if err != nil {
			return apperror.New(apperror.KindPersistenceFailure, "could not generate an id", err)
		}
		rec.ID = 0
		rec.UniqueID = id

		err = uc.store.Create(ctx, rec)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrDuplicateID) {
			return apperror.New(apperror.KindPersistenceFailure, "could not save the analysis", err)
		}
		uc.logger.Warn("analysis.id_collision", "id", id, "attempt", attempt)
		lastErr = err
	}
	return apperror.New(apperror.KindPersistenceFailure, "could not allocate a unique id", lastErr)
}

// Get loads a shared analysis. Malformed ids never reach the store.
func (uc *AnalysisUsecase) Get(ctx context.Context, id string) (*dto.AnalysisDTO, error) {
	rec, err := uc.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return uc.toDTO(rec)
}

func (uc *AnalysisUsecase) find(ctx context.Context, id string) (*model.AnalysisRecord, error) {
	if !shareid.Valid(id) {
		return nil, apperror.InvalidInput("invalid analysis id")
	}
	rec, err := uc.store.FindByUniqueID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.New(apperror.KindNotFound, "analysis not found", nil)
	}
	if err != nil {
		uc.logger.Error("analysis.lookup_failed", "id", id, "error", err)
		return nil, apperror.New(apperror.KindPersistenceFailure, "could not load the analysis", err)
	}
	return rec, nil
}

func (uc *AnalysisUsecase) ShareURL(id string) (string, error) {
	return url.JoinPath(uc.opts.ShareBaseURL, id)
}

func (uc *AnalysisUsecase) toDTO(rec *model.AnalysisRecord) (*dto.AnalysisDTO, error) {
	link, err := uc.ShareURL(rec.UniqueID)
	if err != nil {
		return nil, apperror.New(apperror.KindAnalysisFailed, "invalid share base url", err)
	}
	return &dto.AnalysisDTO{
		ID:        rec.UniqueID,
		ShareURL:  link,
		Analysis:  rec.Analysis.Data(),
		Metadata:  rec.Metadata,
		CreatedAt: rec.CreatedAt,
	}, nil
}

func (uc *AnalysisUsecase) fail(cause error) error {
	uc.logger.Error("analysis.failed",
		"kind", apperror.KindOf(cause),
		"error", cause,
	)
	if apperror.KindOf(cause) == apperror.KindAnalysisFailed {
		return cause
	}
	return apperror.New(apperror.KindAnalysisFailed, genericFailure, cause)
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}

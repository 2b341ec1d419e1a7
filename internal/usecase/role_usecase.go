package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/fadilmartias/resume-analyzer/internal/apperror"
	"github.com/fadilmartias/resume-analyzer/internal/dto"
	"github.com/fadilmartias/resume-analyzer/internal/model"
	"github.com/fadilmartias/resume-analyzer/internal/repository"
	"github.com/fadilmartias/resume-analyzer/internal/service"
	"github.com/pgvector/pgvector-go"
)

const summaryPreviewChars = 240

type RoleCatalog interface {
	SearchJobs(ctx context.Context, embedding pgvector.Vector, topK int) ([]model.Job, error)
	UpsertJob(ctx context.Context, job *model.Job) error
	FindJobByTitle(ctx context.Context, title string) (*model.Job, error)
}

type RoleUsecase struct {
	analyses *AnalysisUsecase
	catalog  RoleCatalog
	embedder service.Embedder
	limit    int
	logger   *slog.Logger
}

func NewRoleUsecase(analyses *AnalysisUsecase, catalog RoleCatalog, embedder service.Embedder, limit int, logger *slog.Logger) *RoleUsecase {
	if logger == nil {
		logger = slog.Default()
	}
	if limit <= 0 {
		limit = 5
	}
	return &RoleUsecase{analyses: analyses, catalog: catalog, embedder: embedder, limit: limit, logger: logger}
}

// SuggestRoles returns the catalogue roles closest to a stored resume. The
// stored analysis is only read.
func (uc *RoleUsecase) SuggestRoles(ctx context.Context, id string) ([]dto.RoleSuggestionDTO, error) {
	rec, err := uc.analyses.find(ctx, id)
	if err != nil {
		return nil, err
	}

	vec, err := uc.embedder.GenerateEmbedding(ctx, rec.ResumeText)
	if err != nil {
		uc.logger.Error("roles.embedding_failed", "id", id, "error", err)
		return nil, apperror.New(apperror.KindInferenceUnavailable, "role suggestions are unavailable right now", err)
	}

	jobs, err := uc.catalog.SearchJobs(ctx, pgvector.NewVector(vec), uc.limit)
	if err != nil {
		uc.logger.Error("roles.search_failed", "id", id, "error", err)
		return nil, apperror.New(apperror.KindPersistenceFailure, "could not search the role catalogue", err)
	}

	out := make([]dto.RoleSuggestionDTO, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, dto.RoleSuggestionDTO{
			Title:    j.Title,
			Summary:  truncateRunes(strings.TrimSpace(j.Content), summaryPreviewChars),
			Distance: j.Distance,
		})
	}
	return out, nil
}

type RoleSeed struct {
	Title   string
	Content string
}

// SeedRoles embeds and stores roles. Titles already in the catalogue are
// skipped unless force is set. It returns how many roles were written.
func (uc *RoleUsecase) SeedRoles(ctx context.Context, roles []RoleSeed, force bool) (int, error) {
	written := 0
	for _, r := range roles {
		if !force {
			_, err := uc.catalog.FindJobByTitle(ctx, r.Title)
			if err == nil {
				uc.logger.Info("roles.seed_skipped", "title", r.Title)
				continue
			}
			if !errors.Is(err, repository.ErrNotFound) {
				return written, fmt.Errorf("lookup %q: %w", r.Title, err)
			}
		}

		vec, err := uc.embedder.GenerateEmbedding(ctx, r.Title+"\n\n"+r.Content)
		if err != nil {
			return written, fmt.Errorf("embed %q: %w", r.Title, err)
		}
		job := &model.Job{Title: r.Title, Content: r.Content, Embedding: pgvector.NewVector(vec)}
		if err := uc.catalog.UpsertJob(ctx, job); err != nil {
			return written, fmt.Errorf("store %q: %w", r.Title, err)
		}
		written++
		uc.logger.Info("roles.seeded", "title", r.Title, "dims", len(vec))
	}
	return written, nil
}

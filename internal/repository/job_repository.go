package repository

import (
	"context"
	"errors"

	"github.com/fadilmartias/resume-analyzer/internal/model"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type JobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db}
}

// SearchJobs returns the topK catalogue entries nearest to embedding by L2
// distance.
func (r *JobRepository) SearchJobs(ctx context.Context, embedding pgvector.Vector, topK int) ([]model.Job, error) {
	var jobs []model.Job
	err := r.db.WithContext(ctx).Raw(`
        SELECT id, title, content, created_at, updated_at, embedding <-> ? AS distance
        FROM jobs
        ORDER BY embedding <-> ?
        LIMIT ?
    `, embedding, embedding, topK).Scan(&jobs).Error
	return jobs, err
}

// UpsertJob inserts job or replaces the content and embedding of the entry
// with the same title.
func (r *JobRepository) UpsertJob(ctx context.Context, job *model.Job) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "title"}},
		DoUpdates: clause.AssignmentColumns([]string{"content", "embedding", "updated_at"}),
	}).Create(job).Error
}

func (r *JobRepository) FindJobByTitle(ctx context.Context, title string) (*model.Job, error) {
	var j model.Job
	err := r.db.WithContext(ctx).First(&j, "title = ?", title).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &j, nil
}

func (r *JobRepository) CountJobs(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Job{}).Count(&n).Error
	return n, err
}

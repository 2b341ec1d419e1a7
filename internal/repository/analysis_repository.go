package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/fadilmartias/resume-analyzer/internal/model"
	"gorm.io/gorm"
)

var (
	ErrNotFound    = errors.New("record not found")
	ErrDuplicateID = errors.New("unique id already in use")
)

type AnalysisRepository struct {
	db *gorm.DB
}

func NewAnalysisRepository(db *gorm.DB) *AnalysisRepository {
	return &AnalysisRepository{db}
}

// Create inserts rec. A taken unique id is reported as ErrDuplicateID, which
// requires the connection to be opened with TranslateError.
func (r *AnalysisRepository) Create(ctx context.Context, rec *model.AnalysisRecord) error {
	err := r.db.WithContext(ctx).Create(rec).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %s", ErrDuplicateID, rec.UniqueID)
	}
	return err
}

func (r *AnalysisRepository) FindByUniqueID(ctx context.Context, uniqueID string) (*model.AnalysisRecord, error) {
	var rec model.AnalysisRecord
	err := r.db.WithContext(ctx).First(&rec, "unique_id = ?", uniqueID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

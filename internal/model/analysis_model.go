package model

import (
	"time"

	"github.com/fadilmartias/resume-analyzer/internal/normalizer"
	"gorm.io/datatypes"
)

// AnalysisRecord is written once per analysis and never updated.
type AnalysisRecord struct {
	ID         uint                                    `gorm:"primaryKey" json:"-"`
	UniqueID   string                                  `gorm:"type:char(16);uniqueIndex;not null" json:"id"`
	ResumeText string                                  `gorm:"type:text;not null" json:"resume_text"`
	Analysis   datatypes.JSONType[normalizer.Analysis] `gorm:"type:jsonb;not null" json:"analysis"`
	Metadata   datatypes.JSONMap                       `gorm:"type:jsonb" json:"metadata"`
	CreatedAt  time.Time                               `json:"created_at"`
}

func (a *AnalysisRecord) TableName() string {
	return "analyses"
}

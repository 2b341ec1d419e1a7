package dto

import (
	"time"

	"github.com/fadilmartias/resume-analyzer/internal/normalizer"
)

type AnalyzeRequest struct {
	ResumeText string         `json:"resumeText"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

type AnalysisDTO struct {
	ID        string              `json:"id"`
	ShareURL  string              `json:"shareUrl"`
	Analysis  normalizer.Analysis `json:"analysis"`
	Metadata  map[string]any      `json:"metadata,omitempty"`
	CreatedAt time.Time           `json:"createdAt"`
}

type RoleSuggestionDTO struct {
	Title    string  `json:"title"`
	Summary  string  `json:"summary"`
	Distance float64 `json:"distance"`
}

package usecase

import (
	"fmt"

	"github.com/fadilmartias/resume-analyzer/internal/normalizer"
)

const analysisPromptTemplate = `You are an experienced technical recruiter and career coach. Review the resume below the way a hiring manager would and give honest, specific feedback.

Respond with ONLY a JSON object, no markdown fences and no commentary. The object must match this JSON Schema:
%s

Guidance:
- overallScore and every categories value are integers from %d to %d.
- summary is at most %d characters.
- strengths, weaknesses and improvements have at most %d entries each; keywordSuggestions at most %d.
- Every list entry is a short, concrete sentence or keyword tied to this resume.

Resume:
"""
%s
"""`

// BuildAnalysisPrompt embeds resumeText and the expected output schema in
// the fixed analysis prompt.
func BuildAnalysisPrompt(resumeText string) string {
	return fmt.Sprintf(analysisPromptTemplate,
		normalizer.SchemaJSON(),
		normalizer.MinScore, normalizer.MaxScore,
		normalizer.MaxSummaryChars,
		normalizer.MaxStrengths, normalizer.MaxKeywordSuggestions,
		resumeText,
	)
}

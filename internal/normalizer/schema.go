package normalizer

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Schema returns the JSON Schema (draft 2020-12 subset) the model is asked to
// follow. It is embedded in the prompt and used by Conforms.
func Schema() map[string]any {
	scoreProp := map[string]any{"type": "integer", "minimum": MinScore, "maximum": MaxScore}
	list := func(max int) map[string]any {
		return map[string]any{
			"type":     "array",
			"maxItems": max,
			"items":    map[string]any{"type": "string", "minLength": 1},
		}
	}

	categoryProps := make(map[string]any, len(CategoryKeys))
	for _, k := range CategoryKeys {
		categoryProps[k] = scoreProp
	}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"overallScore":       scoreProp,
			"summary":            map[string]any{"type": "string", "minLength": 1, "maxLength": MaxSummaryChars},
			"strengths":          list(MaxStrengths),
			"weaknesses":         list(MaxWeaknesses),
			"improvements":       list(MaxImprovements),
			"keywordSuggestions": list(MaxKeywordSuggestions),
			"categories": map[string]any{
				"type":       "object",
				"properties": categoryProps,
				"required":   CategoryKeys,
			},
		},
		"required": []string{
			"overallScore", "summary", "strengths", "weaknesses",
			"improvements", "keywordSuggestions", "categories",
		},
	}
}

// SchemaJSON is Schema rendered as indented JSON.
func SchemaJSON() string {
	b, _ := json.MarshalIndent(Schema(), "", "  ")
	return string(b)
}

var (
	compiledOnce sync.Once
	compiled     *jsonschema.Schema
	compileErr   error
)

func compiledSchema() (*jsonschema.Schema, error) {
	compiledOnce.Do(func() {
		compiled, compileErr = jsonschema.CompileString("analysis.json", SchemaJSON())
	})
	return compiled, compileErr
}

// Conforms reports whether the JSON candidate inside raw matches Schema
// exactly. It is diagnostic only: Normalize accepts non-conforming input.
func Conforms(raw string) error {
	schema, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal([]byte(Candidate(raw)), &v); err != nil {
		return fmt.Errorf("decode completion: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("completion does not match schema: %w", err)
	}
	return nil
}

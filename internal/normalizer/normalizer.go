// Package normalizer turns an untrusted model completion into a bounded,
// fully populated resume analysis. Normalize never fails: anything it cannot
// use is replaced by a default, field by field.
package normalizer

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/tidwall/gjson"
)

const (
	MinScore = 0
	MaxScore = 10

	DefaultOverallScore  = 7
	DefaultCategoryScore = 7

	MaxSummaryChars       = 500
	MaxStrengths          = 5
	MaxWeaknesses         = 5
	MaxImprovements       = 5
	MaxKeywordSuggestions = 10
)

// CategoryKeys are the fixed keys of Analysis.Categories, in output order.
var CategoryKeys = []string{"formatting", "content", "skills", "experience", "achievements"}

type Categories struct {
	Formatting   int `json:"formatting"`
	Content      int `json:"content"`
	Skills       int `json:"skills"`
	Experience   int `json:"experience"`
	Achievements int `json:"achievements"`
}

type Analysis struct {
	OverallScore       int        `json:"overallScore"`
	Summary            string     `json:"summary"`
	Strengths          []string   `json:"strengths"`
	Weaknesses         []string   `json:"weaknesses"`
	Improvements       []string   `json:"improvements"`
	KeywordSuggestions []string   `json:"keywordSuggestions"`
	Categories         Categories `json:"categories"`
}

var (
	defaultSummary = "Your resume shows a solid foundation. Review the suggestions below to sharpen how your experience and skills come across to recruiters."

	defaultStrengths = []string{
		"Clear presentation of professional experience",
		"Relevant skills listed for target roles",
		"Consistent structure across sections",
	}
	defaultWeaknesses = []string{
		"Several achievements lack measurable results",
		"Summary section could be more targeted",
	}
	defaultImprovements = []string{
		"Quantify accomplishments with numbers and outcomes",
		"Tailor the summary to the roles you are applying for",
		"Start bullet points with strong action verbs",
	}
	defaultKeywords = []string{
		"leadership",
		"project management",
		"cross-functional collaboration",
		"data analysis",
		"stakeholder communication",
	}
)

// Default returns the fallback analysis used when a completion cannot be parsed.
func Default() Analysis {
	return Analysis{
		OverallScore:       DefaultOverallScore,
		Summary:            defaultSummary,
		Strengths:          clone(defaultStrengths),
		Weaknesses:         clone(defaultWeaknesses),
		Improvements:       clone(defaultImprovements),
		KeywordSuggestions: clone(defaultKeywords),
		Categories: Categories{
			Formatting:   DefaultCategoryScore,
			Content:      DefaultCategoryScore,
			Skills:       DefaultCategoryScore,
			Experience:   DefaultCategoryScore,
			Achievements: DefaultCategoryScore,
		},
	}
}

var (
	reFence  = regexp.MustCompile("```[A-Za-z0-9_-]*")
	reObject = regexp.MustCompile(`(?s)\{.*\}`)
)

// Candidate strips markdown fences and returns the greedy first-{ to last-}
// span of raw, or the whole cleaned string when there is none.
func Candidate(raw string) string {
	cleaned := strings.TrimSpace(raw)
	if strings.Contains(cleaned, "```") {
		cleaned = strings.TrimSpace(reFence.ReplaceAllString(cleaned, ""))
	}
	if obj := reObject.FindString(cleaned); obj != "" {
		return obj
	}
	return cleaned
}

// Normalize parses raw and coerces every field independently.
func Normalize(raw string) Analysis {
	candidate := Candidate(raw)
	if !gjson.Valid(candidate) {
		return Default()
	}
	root := gjson.Parse(candidate)
	categories := root.Get("categories")

	return Analysis{
		OverallScore:       score(root.Get("overallScore"), DefaultOverallScore),
		Summary:            summary(root.Get("summary")),
		Strengths:          stringList(root.Get("strengths"), defaultStrengths, MaxStrengths),
		Weaknesses:         stringList(root.Get("weaknesses"), defaultWeaknesses, MaxWeaknesses),
		Improvements:       stringList(root.Get("improvements"), defaultImprovements, MaxImprovements),
		KeywordSuggestions: stringList(root.Get("keywordSuggestions"), defaultKeywords, MaxKeywordSuggestions),
		Categories: Categories{
			Formatting:   score(categories.Get("formatting"), DefaultCategoryScore),
			Content:      score(categories.Get("content"), DefaultCategoryScore),
			Skills:       score(categories.Get("skills"), DefaultCategoryScore),
			Experience:   score(categories.Get("experience"), DefaultCategoryScore),
			Achievements: score(categories.Get("achievements"), DefaultCategoryScore),
		},
	}
}

// score accepts JSON numbers and numeric strings, rounds, and clamps to
// [MinScore, MaxScore]. Anything else yields def.
func score(r gjson.Result, def int) int {
	var f float64
	switch r.Type {
	case gjson.Number:
		f = r.Num
	case gjson.String:
		v, err := strconv.ParseFloat(strings.TrimSpace(r.Str), 64)
		if err != nil {
			return def
		}
		f = v
	default:
		return def
	}
	if math.IsNaN(f) {
		return def
	}
	f = math.Max(MinScore, math.Min(MaxScore, f))
	return int(math.Round(f))
}

func summary(r gjson.Result) string {
	if r.Type != gjson.String {
		return defaultSummary
	}
	s := strings.TrimSpace(r.Str)
	if s == "" {
		return defaultSummary
	}
	if utf8.RuneCountInString(s) > MaxSummaryChars {
		s = strings.TrimSpace(string([]rune(s)[:MaxSummaryChars]))
	}
	return s
}

// stringList takes the array (or def when r is not one), cuts it to max
// entries, then keeps only non-blank strings.
func stringList(r gjson.Result, def []string, max int) []string {
	if !r.IsArray() {
		return clone(def)
	}
	items := r.Array()
	if len(items) > max {
		items = items[:max]
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item.Type != gjson.String {
			continue
		}
		if s := strings.TrimSpace(item.Str); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func clone(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}

package evaluator

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/spigell/resume-matcher/internal/jsonmap"
)

const (
	// DefaultLevel is sent when no level is chosen.
	DefaultLevel = "general"
	// OverallImpactKey is the score key that, when present, is the overall score.
	OverallImpactKey = "overall_impact"
	// SourceFallback marks results produced by the keyword-based code path.
	SourceFallback = "fallback"
	// MethodSemantic marks keyword matches found by embedding similarity.
	MethodSemantic = "semantic"
)

// EvaluationRequest is the form submitted for scoring.
type EvaluationRequest struct {
	JobTitle       string `json:"job_title"`
	JobDescription string `json:"job_description"`
	ResumeText     string `json:"resume_text"`
	InternLevel    string `json:"intern_level"`
}

// Result is the evaluation returned by the API.
type Result struct {
	Scores          jsonmap.Map[float64] `json:"scores"`
	MissingKeywords []string             `json:"missing_keywords"`
	KeywordMatches  []KeywordMatch       `json:"keyword_matches"`
	Suggestions     []string             `json:"suggestions"`
	QualityGates    *QualityGates        `json:"quality_gates,omitempty"`
	Summary         string               `json:"summary"`
	Source          string               `json:"source,omitempty"`
	InternLevel     string               `json:"intern_level,omitempty"`

	// Raw is the exact body the server sent.
	Raw json.RawMessage `json:"-"`
}

type KeywordMatch struct {
	Label         string `json:"label"`
	Method        string `json:"method"`
	MatchedPhrase string `json:"matched_phrase,omitempty"`
}

type QualityGates struct {
	Warnings []string `json:"warnings"`
}

func (r EvaluationRequest) fields() []formField {
	level := strings.TrimSpace(r.InternLevel)
	if level == "" {
		level = DefaultLevel
	}

	return []formField{
		{key: "job_title", value: r.JobTitle},
		{key: "job_description", value: r.JobDescription},
		{key: "resume_text", value: r.ResumeText},
		{key: "intern_level", value: level},
	}
}

// Evaluate posts the request to the evaluation endpoint.
func (c *Client) Evaluate(ctx context.Context, req EvaluationRequest) (*Result, error) {
	var result Result
	raw, err := c.postForm(ctx, "evaluate", c.url(evaluatePath), req.fields(), nil, &result)
	if err != nil {
		return nil, err
	}

	result.Raw = raw

	return &result, nil
}

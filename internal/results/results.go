// Package results turns an evaluation result into a display model. It holds no
// I/O; internal/render writes the model out.
package results

import (
	"fmt"
	"math"
	"strings"

	"github.com/spigell/resume-matcher/internal/catalog"
	"github.com/spigell/resume-matcher/internal/evaluator"
)

type Band string

const (
	BandHigh   Band = "high"
	BandMedium Band = "medium"
	BandLow    Band = "low"
)

const (
	ColorHigh   = "#10b981"
	ColorMedium = "#f59e0b"
	ColorLow    = "#ef4444"

	ChartMax = 100
)

const (
	NoMissingKeywords = "No missing keywords detected."
	NoKeywordMatches  = "No strong matches detected yet."
	NoSuggestions     = "No suggestions available."
	NoQualityWarnings = "No quality warnings detected."
	FallbackNotice    = "AI service unavailable; showing keyword-based fallback."

	methodSemanticLabel = "Semantic similarity"
	methodExactLabel    = "Exact match"
)

type View struct {
	Overall int
	// CircleDegrees is how much of the score circle is filled.
	CircleDegrees float64
	Categories    []Category
	Chart         Chart

	MissingKeywords List
	KeywordMatches  []Match
	// MatchesPlaceholder is set when there are no keyword matches.
	MatchesPlaceholder string
	Suggestions        List
	QualityWarnings    List

	Summary        string
	FallbackBanner string
	ShowFallback   bool
	Comparison     Comparison
}

type Category struct {
	Key   string
	Label string
	Value float64
	// Width is the progress bar width in percent, clamped to [0, 100].
	Width float64
	Band  Band
}

type Chart struct {
	Labels []string
	Values []float64
	Colors []string
	Max    float64
}

// List is a rendered list. When Items is empty Placeholder is shown instead.
type List struct {
	Items       []string
	Placeholder string
}

func (l List) Empty() bool { return len(l.Items) == 0 }

type Match struct {
	Label   string
	Tooltip string
}

type Comparison struct {
	Target int
	Delta  int
	Ahead  bool
	Text   string
}

// Build is a pure function of r and the target score.
func Build(r *evaluator.Result, target int) View {
	if r == nil {
		r = &evaluator.Result{}
	}

	overall := OverallScore(r)
	view := View{
		Overall:       overall,
		CircleDegrees: float64(clampInt(overall, 0, 100)) / 100 * 360,
		Chart:         Chart{Max: ChartMax},
		Summary:       r.Summary,
		Comparison:    Compare(overall, target),
	}

	r.Scores.Range(func(key string, value float64) bool {
		c := Category{
			Key:   key,
			Label: catalog.FormatCategory(key),
			Value: value,
			Width: math.Max(0, math.Min(100, value)),
			Band:  BandFor(value),
		}
		view.Categories = append(view.Categories, c)
		view.Chart.Labels = append(view.Chart.Labels, c.Label)
		view.Chart.Values = append(view.Chart.Values, value)
		view.Chart.Colors = append(view.Chart.Colors, c.Band.Color())
		return true
	})

	view.MissingKeywords = newList(r.MissingKeywords, NoMissingKeywords)
	view.Suggestions = newList(r.Suggestions, NoSuggestions)

	var warnings []string
	if r.QualityGates != nil {
		warnings = r.QualityGates.Warnings
	}
	view.QualityWarnings = newList(warnings, NoQualityWarnings)

	for _, m := range r.KeywordMatches {
		view.KeywordMatches = append(view.KeywordMatches, Match{Label: m.Label, Tooltip: tooltip(m)})
	}
	if len(view.KeywordMatches) == 0 {
		view.MatchesPlaceholder = NoKeywordMatches
	}

	if r.Source == evaluator.SourceFallback {
		view.ShowFallback = true
		view.FallbackBanner = FallbackNotice
	}

	return view
}

// OverallScore is the overall_impact score when present, else the rounded mean
// of every score. An empty score map yields 0.
func OverallScore(r *evaluator.Result) int {
	if r == nil {
		return 0
	}

	if v, ok := r.Scores.Get(evaluator.OverallImpactKey); ok {
		return roundHalfUp(v)
	}

	values := r.Scores.Values()
	if len(values) == 0 {
		return 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}

	return roundHalfUp(sum / float64(len(values)))
}

func BandFor(score float64) Band {
	switch {
	case score >= 80:
		return BandHigh
	case score >= 60:
		return BandMedium
	default:
		return BandLow
	}
}

func (b Band) Color() string {
	switch b {
	case BandHigh:
		return ColorHigh
	case BandMedium:
		return ColorMedium
	default:
		return ColorLow
	}
}

// Compare reports how far overall is from target. Reaching the target counts as ahead.
func Compare(overall, target int) Comparison {
	delta := overall - target
	status := "ahead"
	if delta < 0 {
		status = "behind"
	}

	abs := delta
	if abs < 0 {
		abs = -abs
	}

	return Comparison{
		Target: target,
		Delta:  delta,
		Ahead:  delta >= 0,
		Text:   fmt.Sprintf("You are %d points %s of your target.", abs, status),
	}
}

func tooltip(m evaluator.KeywordMatch) string {
	method := methodExactLabel
	if m.Method == evaluator.MethodSemantic {
		method = methodSemanticLabel
	}

	phrase := strings.TrimSpace(m.MatchedPhrase)
	if phrase == "" {
		phrase = m.Label
	}

	return fmt.Sprintf("%s\nPhrase: %s", method, phrase)
}

func newList(items []string, placeholder string) List {
	l := List{Items: make([]string, 0, len(items))}
	l.Items = append(l.Items, items...)
	if len(l.Items) == 0 {
		l.Placeholder = placeholder
	}
	return l
}

// roundHalfUp matches Math.round for the non-negative scores the API returns.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Package insights derives the level panel of a job template: which level is
// active, what it requires and which bonus signals the role rewards.
package insights

import (
	"github.com/spigell/resume-matcher/internal/catalog"
	"github.com/spigell/resume-matcher/internal/evaluator"
)

// View is the display model of the insights panel.
type View struct {
	// Visible is false when the template has no levels; nothing else is set then.
	Visible           bool
	TemplateKey       string
	Levels            catalog.Selector
	ActiveLevel       string
	Requirements      []string
	Responsibilities  []string
	BonusSignals      []string
	ShowLevelSelector bool
}

// Render builds the panel for t. levelOverride is used when it names one of
// t's levels; otherwise the first level is active. Every list is rebuilt from
// scratch, so equal arguments give equal views.
func Render(t *evaluator.Template, levelOverride string) View {
	if t == nil || t.Levels.Len() == 0 {
		return View{Visible: false}
	}

	keys := t.Levels.Keys()
	active := keys[0]
	if t.Levels.Has(levelOverride) {
		active = levelOverride
	}

	options := make([]catalog.Option, 0, len(keys))
	for _, k := range keys {
		options = append(options, catalog.Option{Value: k, Label: catalog.FormatKey(k)})
	}

	profile, _ := t.Levels.Get(active)

	return View{
		Visible:           true,
		TemplateKey:       t.Key,
		Levels:            catalog.Selector{Options: options, Value: active},
		ActiveLevel:       active,
		Requirements:      clone(profile.Requirements),
		Responsibilities:  clone(profile.Responsibilities),
		BonusSignals:      clone(t.BonusSignals),
		ShowLevelSelector: len(keys) > 1 || len(t.BonusSignals) > 0,
	}
}

func clone(items []string) []string {
	out := make([]string, 0, len(items))
	return append(out, items...)
}

// Package render writes catalog, insights and result display models to a
// terminal. All computation happens in the models; this package only formats.
package render

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/termenv"
	"github.com/olekukonko/tablewriter"

	"github.com/spigell/resume-matcher/internal/catalog"
	"github.com/spigell/resume-matcher/internal/evaluator"
	"github.com/spigell/resume-matcher/internal/insights"
	"github.com/spigell/resume-matcher/internal/results"
)

const (
	defaultWidth = 80
	gaugeWidth   = 30
	chartWidth   = 30
	labelWidth   = 22

	barFull  = "█"
	barEmpty = "░"
	rule     = "─────────────────────────────────────────────"
)

type Terminal struct {
	w        io.Writer
	width    int
	noColor  bool
	renderer *lipgloss.Renderer
}

// New returns a Terminal writing to w. A width of zero or less means 80
// columns. With noColor every style is rendered as plain text.
func New(w io.Writer, width int, noColor bool) *Terminal {
	if width <= 0 {
		width = defaultWidth
	}

	var opts []termenv.OutputOption
	if noColor {
		opts = append(opts, termenv.WithProfile(termenv.Ascii))
	}

	return &Terminal{
		w:        w,
		width:    width,
		noColor:  noColor,
		renderer: lipgloss.NewRenderer(w, opts...),
	}
}

func (t *Terminal) paint(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if t.noColor {
		c.DisableColor()
	}
	return c
}

func (t *Terminal) heading(s string) {
	fmt.Fprintln(t.w)
	t.paint(color.Bold).Fprintln(t.w, s)
}

func (t *Terminal) wrap(s string, margin uint) string {
	wrapped := wordwrap.String(strings.TrimSpace(s), t.width-int(margin))
	return indent.String(wrapped, margin)
}

func (t *Terminal) newTable(header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(t.w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetBorder(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)
	return table
}

// Catalog lists the templates of sel. The selected one is marked with an asterisk.
func (t *Terminal) Catalog(sel catalog.Selector) {
	t.heading("Job Templates")

	choices := sel.Choices()
	if len(choices) == 0 {
		t.paint(color.Faint).Fprintln(t.w, "  No templates loaded.")
		return
	}

	if sel.Placeholder != "" {
		t.paint(color.Faint).Fprintf(t.w, "  %s\n", sel.Placeholder)
	}
	fmt.Fprintln(t.w)

	table := t.newTable([]string{"", "Key", "Title"})
	for _, o := range choices {
		mark := ""
		if o.Value == sel.Value {
			mark = "*"
		}
		table.Append([]string{mark, t.paint(color.FgCyan).Sprint(o.Value), o.Label})
	}
	table.Render()
}

// Template prints the template header followed by its level insights.
func (t *Terminal) Template(tmpl *evaluator.Template, view insights.View) {
	if tmpl == nil {
		return
	}

	title := strings.TrimSpace(tmpl.Title)
	if title == "" {
		title = catalog.FormatKey(tmpl.Key)
	}
	t.heading(fmt.Sprintf("Template: %s", title))
	fmt.Fprintf(t.w, "  %s: %s\n", t.paint(color.Bold).Sprint("Key"), tmpl.Key)

	if desc := strings.TrimSpace(tmpl.Description); desc != "" {
		fmt.Fprintf(t.w, "  %s:\n", t.paint(color.Bold).Sprint("Description"))
		fmt.Fprintln(t.w, t.wrap(desc, 4))
	}

	t.Insights(view)
}

func (t *Terminal) Insights(view insights.View) {
	if !view.Visible {
		t.paint(color.Faint).Fprintln(t.w, "  No level insights for this template.")
		return
	}

	t.heading("Level Insights")

	if view.ShowLevelSelector {
		labels := make([]string, 0, len(view.Levels.Options))
		for _, o := range view.Levels.Options {
			label := o.Label
			if o.Value == view.ActiveLevel {
				label = t.paint(color.FgGreen, color.Bold).Sprintf("[%s]", o.Label)
			}
			labels = append(labels, label)
		}
		fmt.Fprintf(t.w, "  Levels: %s\n", strings.Join(labels, "  "))
	} else {
		fmt.Fprintf(t.w, "  Level: %s\n", catalog.FormatKey(view.ActiveLevel))
	}

	t.list("Requirements", view.Requirements, "None listed.")
	t.list("Responsibilities", view.Responsibilities, "None listed.")
	if len(view.BonusSignals) > 0 {
		t.list("Bonus Signals", view.BonusSignals, "")
	}
}

func (t *Terminal) list(title string, items []string, placeholder string) {
	fmt.Fprintf(t.w, "\n  %s\n", t.paint(color.Bold).Sprint(title))
	if len(items) == 0 {
		t.paint(color.Faint).Fprintf(t.w, "    %s\n", placeholder)
		return
	}
	for _, item := range items {
		fmt.Fprintf(t.w, "    • %s\n", item)
	}
}

// Results prints a full evaluation view.
func (t *Terminal) Results(view results.View) {
	if view.ShowFallback {
		t.banner(view.FallbackBanner)
	}

	t.heading("Overall Score")
	fmt.Fprintf(t.w, "  %s %s\n", t.gauge(view), t.paint(color.Bold).Sprintf("%d/100", view.Overall))
	if view.Comparison.Target > 0 {
		t.Comparison(view.Comparison)
	}

	t.heading("Category Scores")
	if len(view.Categories) == 0 {
		t.paint(color.Faint).Fprintln(t.w, "  No category scores.")
	} else {
		t.chart(view.Chart)
	}

	t.heading("Missing Keywords")
	t.items(view.MissingKeywords)

	t.heading("Keyword Matches")
	if len(view.KeywordMatches) == 0 {
		t.paint(color.Faint).Fprintf(t.w, "  %s\n", view.MatchesPlaceholder)
	} else {
		table := t.newTable([]string{"Keyword", "Method", "Phrase"})
		for _, m := range view.KeywordMatches {
			method, phrase, _ := strings.Cut(m.Tooltip, "\n")
			table.Append([]string{m.Label, method, strings.TrimPrefix(phrase, "Phrase: ")})
		}
		table.Render()
	}

	t.heading("Suggestions")
	t.items(view.Suggestions)

	t.heading("Quality Warnings")
	t.items(view.QualityWarnings)

	if summary := strings.TrimSpace(view.Summary); summary != "" {
		t.heading("Summary")
		fmt.Fprintln(t.w, t.wrap(summary, 2))
	}
	fmt.Fprintln(t.w)
}

// Comparison prints how the overall score relates to the target: green when
// ahead, red when behind.
func (t *Terminal) Comparison(c results.Comparison) {
	attr := color.FgGreen
	if !c.Ahead {
		attr = color.FgRed
	}
	fmt.Fprintf(t.w, "  %s\n", t.paint(attr).Sprint(c.Text))
}

func (t *Terminal) items(l results.List) {
	if l.Empty() {
		t.paint(color.Faint).Fprintf(t.w, "  %s\n", l.Placeholder)
		return
	}
	for _, item := range l.Items {
		fmt.Fprintf(t.w, "  • %s\n", item)
	}
}

func (t *Terminal) gauge(view results.View) string {
	filled := int(math.Round(view.CircleDegrees / 360 * gaugeWidth))
	bar := strings.Repeat(barFull, filled) + strings.Repeat(barEmpty, gaugeWidth-filled)

	band := results.BandFor(float64(view.Overall))
	return t.renderer.NewStyle().Foreground(lipgloss.Color(band.Color())).Render(bar)
}

func (t *Terminal) chart(c results.Chart) {
	top := c.Max
	if top <= 0 {
		top = results.ChartMax
	}

	labelStyle := t.renderer.NewStyle().Width(labelWidth)
	for i, label := range c.Labels {
		value := c.Values[i]
		filled := int(math.Round(math.Max(0, math.Min(value, top)) / top * chartWidth))
		bar := strings.Repeat(barFull, filled) + strings.Repeat(barEmpty, chartWidth-filled)

		fmt.Fprintf(t.w, "  %s %s %s\n",
			labelStyle.Render(label),
			t.renderer.NewStyle().Foreground(lipgloss.Color(c.Colors[i])).Render(bar),
			formatScore(value),
		)
	}
}

func (t *Terminal) banner(text string) {
	style := t.renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(results.ColorMedium)).
		Foreground(lipgloss.Color(results.ColorMedium)).
		Padding(0, 1)
	fmt.Fprintln(t.w, style.Render(text))
}

// Answer prints a chat answer. Answers from the local assistant are labelled.
func (t *Terminal) Answer(text, source string) {
	title := "Answer"
	if source != "" && source != "remote" {
		title = fmt.Sprintf("Answer (%s)", source)
	}
	t.heading(title)
	fmt.Fprintln(t.w, t.paint(color.FgHiBlack).Sprint(rule))
	fmt.Fprintln(t.w, t.wrap(text, 2))
	fmt.Fprintln(t.w, t.paint(color.FgHiBlack).Sprint(rule))
}

// Status prints the API status. A nil status means the probe failed.
func (t *Terminal) Status(apiURL string, status *evaluator.Status) {
	t.heading("API Status")
	fmt.Fprintf(t.w, "  %s: %s\n", t.paint(color.Bold).Sprint("URL"), apiURL)

	if status == nil {
		fmt.Fprintf(t.w, "  %s: %s\n", t.paint(color.Bold).Sprint("Status"), t.paint(color.FgRed).Sprint("unavailable"))
		return
	}

	state := status.Status
	if state == "" {
		state = "unknown"
	}
	fmt.Fprintf(t.w, "  %s: %s\n", t.paint(color.Bold).Sprint("Status"), t.paint(color.FgGreen).Sprint(state))
	if status.Version != "" {
		fmt.Fprintf(t.w, "  %s: %s\n", t.paint(color.Bold).Sprint("Version"), status.Version)
	}

	keys := make([]string, 0, len(status.Raw))
	for k := range status.Raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(t.w, "  %s: %v\n", t.paint(color.Bold).Sprint(k), status.Raw[k])
	}
}

// Error prints err. Validation errors show only their message.
func (t *Terminal) Error(err error) {
	if err == nil {
		return
	}

	msg := err.Error()
	var validation *evaluator.ValidationError
	if errors.As(err, &validation) {
		msg = validation.Message
	}

	fmt.Fprintf(t.w, "%s %s\n", t.paint(color.FgRed, color.Bold).Sprint("✗"), msg)
}

func formatScore(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%d", int(v))
	}
	return fmt.Sprintf("%.1f", v)
}

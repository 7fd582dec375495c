package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/session"
)

const (
	PromptSelectTemplate = "Select a job template"
	PromptSelectLevel    = "Select a level"
	PromptEditTitle      = "Edit job title"
	PromptEditDesc       = "Edit job description"
	PromptUploadResume   = "Upload resume (PDF or DOCX)"
	PromptResumeText     = "Load resume from a text file"
	PromptEvaluate       = "Evaluate"
	PromptAsk            = "Ask a question"
	PromptTarget         = "Set target score"
	PromptShowResults    = "Show results"
	PromptStartOver      = "Start over"
	PromptBack           = "back"
	PromptExit           = "Exit"
)

var errExit = errors.New("exit requested")

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run an interactive matching session",
	Run: func(_ *cobra.Command, _ []string) {
		run()
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

// run is the interactive session: the input panel until an evaluation
// succeeds, then the results panel until the user starts over.
func run() {
	ctx := context.Background()
	e := newEnv(ctx)

	e.logger.Info("starting the resume-matcher", zap.String("version", version))

	go e.session.Probe(ctx)

	if err := e.session.LoadCatalog(ctx); err != nil {
		e.out.Error(err)
	}

	for {
		var items []string
		label := "Job details"
		if e.session.State() == session.StateResults {
			label = "Results"
			items = []string{PromptAsk, PromptTarget, PromptShowResults, PromptStartOver, PromptExit}
		} else {
			items = []string{
				PromptSelectTemplate, PromptSelectLevel, PromptEditTitle, PromptEditDesc,
				PromptUploadResume, PromptResumeText, PromptEvaluate, PromptExit,
			}
		}

		prompt := promptui.Select{Label: formLabel(label, e.session.Form()), Items: items, Size: len(items)}
		_, action, err := prompt.Run()
		if err != nil {
			e.logger.Info("exiting", zap.Error(err))
			return
		}

		if err := handleAction(ctx, action, e); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			if isPromptAbort(err) {
				continue
			}
			e.out.Error(err)
		}
	}
}

func handleAction(ctx context.Context, action string, e *env) error {
	switch action {
	case PromptSelectTemplate:
		return selectTemplate(ctx, e)
	case PromptSelectLevel:
		return selectLevel(e)
	case PromptEditTitle:
		title, err := ask("Job title", e.session.Form().JobTitle, nil)
		if err != nil {
			return err
		}
		e.session.SetJob(title, e.session.Form().JobDescription)
		return nil
	case PromptEditDesc:
		desc, err := ask("Job description", e.session.Form().JobDescription, nil)
		if err != nil {
			return err
		}
		e.session.SetJob(e.session.Form().JobTitle, desc)
		return nil
	case PromptUploadResume:
		path, err := ask("Resume file", "", nil)
		if err != nil {
			return err
		}
		upload, err := e.session.UploadResume(ctx, path)
		if err != nil {
			return err
		}
		e.logger.Info("resume uploaded", zap.String("file", upload.Filename), zap.Int("characters", len(upload.Content)))
		return nil
	case PromptResumeText:
		path, err := ask("Resume text file", "", nil)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		e.session.SetResumeText(string(data))
		return nil
	case PromptEvaluate:
		eval, err := e.session.Submit(ctx)
		if err != nil {
			return err
		}
		e.out.Results(eval.View)
		return nil
	case PromptAsk:
		question, err := ask("Question", "", nil)
		if err != nil {
			return err
		}
		answer, err := e.session.Ask(ctx, question)
		if err != nil {
			return err
		}
		e.out.Answer(answer.Text, answer.Source)
		return nil
	case PromptTarget:
		value, err := ask("Target score", "", validateScore)
		if err != nil {
			return err
		}
		target, _ := strconv.Atoi(value)
		e.out.Comparison(e.session.SetTarget(target))
		return nil
	case PromptShowResults:
		if last, ok := e.session.Last(); ok {
			e.out.Results(last.View)
		}
		return nil
	case PromptStartOver:
		e.session.Reset()
		return nil
	case PromptExit:
		e.logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func selectTemplate(ctx context.Context, e *env) error {
	sel := e.session.Templates()
	choices := sel.Choices()
	if len(choices) == 0 {
		if err := e.session.LoadCatalog(ctx); err != nil {
			return err
		}
		sel = e.session.Templates()
		choices = sel.Choices()
	}

	items := make([]string, 0, len(choices)+1)
	for _, o := range choices {
		items = append(items, fmt.Sprintf("%s (%s)", o.Label, o.Value))
	}

	label := sel.Placeholder
	if label == "" {
		label = PromptSelectTemplate
	}

	prompt := promptui.Select{Label: label, Items: append(items, PromptBack), Size: 10}
	i, selected, err := prompt.Run()
	if err != nil {
		return err
	}
	if selected == PromptBack {
		return nil
	}

	view, err := e.session.SelectTemplate(ctx, choices[i].Value)
	if err != nil {
		return err
	}

	e.out.Template(e.session.Template(), view)
	return nil
}

func selectLevel(e *env) error {
	view := e.session.Insights()
	if !view.Visible {
		level, err := ask("Level", e.session.Form().Level, nil)
		if err != nil {
			return err
		}
		e.session.SelectLevel(level)
		return nil
	}

	options := view.Levels.Options
	items := make([]string, 0, len(options)+1)
	for _, o := range options {
		items = append(items, o.Label)
	}

	prompt := promptui.Select{Label: PromptSelectLevel, Items: append(items, PromptBack)}
	i, selected, err := prompt.Run()
	if err != nil {
		return err
	}
	if selected == PromptBack {
		return nil
	}

	e.out.Insights(e.session.SelectLevel(options[i].Value))
	return nil
}

func ask(label, def string, validate promptui.ValidateFunc) (string, error) {
	prompt := promptui.Prompt{
		Label:     label,
		Default:   def,
		AllowEdit: def != "",
		Validate:  validate,
	}

	value, err := prompt.Run()
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(value), nil
}

func validateScore(input string) error {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return errors.New("enter a whole number")
	}
	if n < 0 || n > 100 {
		return errors.New("enter a score between 0 and 100")
	}
	return nil
}

func isPromptAbort(err error) bool {
	return errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrAbort) || errors.Is(err, promptui.ErrEOF)
}

func formLabel(panel string, form session.Form) string {
	resume := "no resume"
	if strings.TrimSpace(form.ResumeText) != "" {
		resume = fmt.Sprintf("resume %d chars", len([]rune(form.ResumeText)))
	}

	title := form.JobTitle
	if strings.TrimSpace(title) == "" {
		title = "no title"
	}

	return fmt.Sprintf("%s [%s, %s, %s]", panel, title, form.Level, resume)
}

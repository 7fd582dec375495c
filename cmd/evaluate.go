package cmd

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Score a resume against a job and ask follow-up questions",
	Run: func(cmd *cobra.Command, _ []string) {
		evaluate(cmd)
	},
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().StringP("title", "t", "", "job title (default is the template title)")
	evaluateCmd.Flags().String("description", "", "job description (default is the template description)")
	evaluateCmd.Flags().StringP("resume", "r", "", "resume file to upload (PDF or DOCX)")
	evaluateCmd.Flags().String("resume-text-file", "", "plain text file with the resume")
	evaluateCmd.Flags().String("template", "", "job template key to fill the job fields from")
	evaluateCmd.Flags().StringP("level", "l", "", "level to evaluate against (default is general)")
	evaluateCmd.Flags().Int("target", 0, "target overall score to compare with")
	evaluateCmd.Flags().StringArrayP("question", "q", nil, "follow-up question about the result, may be repeated")

	evaluateCmd.MarkFlagsMutuallyExclusive("resume", "resume-text-file")
	evaluateCmd.MarkFlagsOneRequired("resume", "resume-text-file")

	viper.BindPFlag("results.target-score", evaluateCmd.Flags().Lookup("target"))
}

func evaluate(cmd *cobra.Command) {
	ctx := context.Background()
	e := newEnv(ctx)
	flags := cmd.Flags()

	e.session.Probe(ctx)

	if key, _ := flags.GetString("template"); key != "" {
		if _, err := e.session.SelectTemplate(ctx, key); err != nil {
			e.logger.Fatal("getting template", zap.String("template", key), zap.Error(err))
		}
	}

	form := e.session.Form()
	title, _ := flags.GetString("title")
	description, _ := flags.GetString("description")
	if strings.TrimSpace(title) == "" {
		title = form.JobTitle
	}
	if strings.TrimSpace(description) == "" {
		description = form.JobDescription
	}
	e.session.SetJob(title, description)

	if level, _ := flags.GetString("level"); level != "" {
		e.session.SelectLevel(level)
	}

	if err := loadResume(ctx, cmd, e); err != nil {
		e.out.Error(err)
		e.logger.Fatal("loading resume", zap.Error(err))
	}

	eval, err := e.session.Submit(ctx)
	if err != nil {
		e.out.Error(err)
		e.logger.Fatal("evaluating resume", zap.Error(err))
	}

	e.out.Results(eval.View)

	questions, _ := flags.GetStringArray("question")
	for _, q := range questions {
		answer, err := e.session.Ask(ctx, q)
		if err != nil {
			e.out.Error(err)
			continue
		}
		e.out.Answer(answer.Text, answer.Source)
	}
}

func loadResume(ctx context.Context, cmd *cobra.Command, e *env) error {
	if path, _ := cmd.Flags().GetString("resume"); path != "" {
		upload, err := e.session.UploadResume(ctx, path)
		if err != nil {
			return err
		}
		if upload.Message != "" {
			e.logger.Info(upload.Message, zap.String("file", upload.Filename))
		}
		return nil
	}

	path, _ := cmd.Flags().GetString("resume-text-file")
	if path == "" {
		return errors.New("either --resume or --resume-text-file is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	e.session.SetResumeText(string(data))

	return nil
}

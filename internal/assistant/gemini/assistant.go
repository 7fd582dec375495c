package gemini

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/assistant"
	"github.com/spigell/resume-matcher/internal/logger"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// Assistant answers follow-up questions with Gemini.
type Assistant struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

//go:embed prompt.md
var promptTemplate string

const defaultMaxLogLength = 200

var _ assistant.Answerer = (*Assistant)(nil)

func NewAssistant(generator contentGenerator, logger *zap.Logger, maxLogLength int) *Assistant {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Assistant{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

func (a *Assistant) Answer(ctx context.Context, q assistant.Question) (string, error) {
	if strings.TrimSpace(q.Question) == "" {
		return "", errors.New("question must not be empty")
	}

	prompt := buildPrompt(q)

	a.logger.Debug("gemini generate content request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("question_preview", logger.Preview(q.Question, a.maxLogLen)),
	)

	raw, err := a.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return "", err
	}

	a.logger.Debug("gemini generate content response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.Preview(raw, a.maxLogLen)),
	)

	return strings.TrimSpace(raw), nil
}

func buildPrompt(q assistant.Question) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Evaluation:\n{{EVALUATION_JSON}}\n\nQuestion:\n{{QUESTION}}\n\nAnswer:"
	}

	replacer := strings.NewReplacer(
		"{{JOB_TITLE}}", orNone(q.JobTitle),
		"{{JOB_DESCRIPTION}}", orNone(q.JobDescription),
		"{{RESUME_TEXT}}", orNone(q.ResumeText),
		"{{EVALUATION_JSON}}", orNone(q.EvaluationJSON),
		"{{QUESTION}}", strings.TrimSpace(q.Question),
	)
	return replacer.Replace(template)
}

func orNone(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return "none"
	}
	return s
}

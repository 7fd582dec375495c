package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/resume-matcher/internal/assistant"
)

type stubGenerator struct {
	response   string
	err        error
	lastPrompt string
}

func (s *stubGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	s.lastPrompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func TestAssistantAnswer(t *testing.T) {
	stub := &stubGenerator{response: "  Add measurable impact.  "}
	a := NewAssistant(stub, zap.NewNop(), 0)

	answer, err := a.Answer(context.Background(), assistant.Question{
		Question:       "How do I improve?",
		JobTitle:       "Backend Engineer",
		EvaluationJSON: `{"scores": {"a": 50}}`,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if answer != "Add measurable impact." {
		t.Fatalf("unexpected answer %q", answer)
	}

	for _, want := range []string{"How do I improve?", "Backend Engineer", `{"scores": {"a": 50}}`} {
		if !strings.Contains(stub.lastPrompt, want) {
			t.Fatalf("expected prompt to contain %q", want)
		}
	}

	if !strings.Contains(stub.lastPrompt, "Resume:\nnone") {
		t.Fatalf("expected placeholder for empty resume, got:\n%s", stub.lastPrompt)
	}
	if strings.Contains(stub.lastPrompt, "{{") {
		t.Fatalf("expected every placeholder to be replaced")
	}
}

func TestAssistantRejectsEmptyQuestion(t *testing.T) {
	stub := &stubGenerator{}
	a := NewAssistant(stub, nil, 0)

	if _, err := a.Answer(context.Background(), assistant.Question{Question: " "}); err == nil {
		t.Fatalf("expected error for empty question")
	}
	if stub.lastPrompt != "" {
		t.Fatalf("generator must not be called")
	}
}

func TestAssistantPropagatesGeneratorError(t *testing.T) {
	boom := errors.New("quota exceeded")
	a := NewAssistant(&stubGenerator{err: boom}, zap.NewNop(), 0)

	if _, err := a.Answer(context.Background(), assistant.Question{Question: "why?"}); !errors.Is(err, boom) {
		t.Fatalf("expected generator error, got %v", err)
	}
}

func TestAssistantLogsScrubbedPreview(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)
	a := NewAssistant(&stubGenerator{response: "ok"}, zap.New(core), 50)

	if _, err := a.Answer(context.Background(), assistant.Question{Question: "Should I list me@example.com?"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries := observed.FilterMessage("gemini generate content request").All()
	if len(entries) != 1 {
		t.Fatalf("expected one request log entry, got %d", len(entries))
	}
	if preview := entries[0].ContextMap()["question_preview"]; preview != "Should I list [email]?" {
		t.Fatalf("unexpected preview %q", preview)
	}
}

func TestNewGeneratorRequiresKey(t *testing.T) {
	if _, err := NewGenerator(context.Background(), "  ", ""); err == nil {
		t.Fatalf("expected error for empty api key")
	}
}

func TestNilGenerator(t *testing.T) {
	var g *Generator
	if g.Model() != "" {
		t.Fatalf("expected empty model for nil generator")
	}
	if _, err := g.GenerateContent(context.Background(), "hi"); err == nil {
		t.Fatalf("expected error for nil generator")
	}
}

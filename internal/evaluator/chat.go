package evaluator

import (
	"context"
	"strings"
)

// ChatRequest carries a follow-up question with the context of the last evaluation.
type ChatRequest struct {
	Question       string
	JobTitle       string
	JobDescription string
	ResumeText     string
	// EvaluationJSON is the evaluation result as returned by the server.
	EvaluationJSON string
}

type ChatResponse struct {
	Answer string `json:"answer"`
}

// Chat asks the remote agent a question about the last evaluation.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if strings.TrimSpace(req.Question) == "" {
		return nil, &ValidationError{Field: "question", Message: "Please enter a question."}
	}

	fields := []formField{
		{key: "question", value: strings.TrimSpace(req.Question)},
		{key: "job_title", value: req.JobTitle},
		{key: "job_description", value: req.JobDescription},
		{key: "resume_text", value: req.ResumeText},
		{key: "evaluation_json", value: req.EvaluationJSON},
	}

	var resp ChatResponse
	if _, err := c.postForm(ctx, "chat", c.url(chatPath), fields, nil, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

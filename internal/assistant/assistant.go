// Package assistant answers follow-up questions about an evaluation without the
// remote chat endpoint.
package assistant

import "context"

// Question is a follow-up question together with the evaluation it is about.
type Question struct {
	Question       string
	JobTitle       string
	JobDescription string
	ResumeText     string
	EvaluationJSON string
}

type Answerer interface {
	Answer(ctx context.Context, q Question) (string, error)
}

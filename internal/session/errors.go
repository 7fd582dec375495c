package session

import (
	"errors"
	"fmt"
)

// ErrSuperseded is returned for a response that arrived after a newer submit or a reset.
var ErrSuperseded = errors.New("evaluation superseded by a newer request")

// ErrCatalogLoading is returned when a template is picked while the catalog is reloading.
var ErrCatalogLoading = errors.New("template catalog is loading")

// EvaluationError is a failed evaluation request. Session state is left as it was.
type EvaluationError struct {
	Err error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluation failed: %s", e.Err)
}

func (e *EvaluationError) Unwrap() error { return e.Err }

// ChatError is a failed follow-up question. Detail is what the user is shown.
type ChatError struct {
	Detail string
	Err    error
}

func (e *ChatError) Error() string { return e.Detail + " Please try again." }

func (e *ChatError) Unwrap() error { return e.Err }

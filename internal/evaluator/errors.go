package evaluator

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyCatalog is returned when the catalog endpoint answers with zero templates.
var ErrEmptyCatalog = errors.New("no templates returned from API")

// NetworkError describes a rejected request or a non-success HTTP status.
type NetworkError struct {
	Op         string
	StatusCode int
	Status     string
	// Detail is the server-provided reason, when the body carried one.
	Detail string
	Err    error
}

func (e *NetworkError) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)

	switch {
	case e.Err != nil:
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	case e.Status != "":
		b.WriteString(": bad status: ")
		b.WriteString(e.Status)
	case e.StatusCode != 0:
		fmt.Fprintf(&b, ": bad status: %d", e.StatusCode)
	}

	if e.Detail != "" {
		b.WriteString(" (")
		b.WriteString(e.Detail)
		b.WriteString(")")
	}

	return b.String()
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ValidationError is a local guard failure. No request was sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

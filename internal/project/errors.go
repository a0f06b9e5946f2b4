package project

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("project validation failed")
	// ErrMalformed reports input that is not a JSON object at all.
	ErrMalformed = errors.New("malformed project document")
	// ErrUnsupportedVersion reports a version field other than CurrentVersion.
	ErrUnsupportedVersion = errors.New("unsupported project version")

	ErrRoundNotFound = errors.New("round not found")
	ErrRowNotFound   = errors.New("row not found")
	ErrLastRound     = errors.New("cannot remove the last round")
	ErrInvalidStatus = errors.New("invalid status")
)

// FieldError describes one structural problem at a JSON path such as
// "rounds[0].rows[2].status".
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (e FieldError) String() string {
	if e.Path == "" {
		return e.Message
	}

	return e.Path + ": " + e.Message
}

// ValidationError lists every structural problem found in a document.
type ValidationError struct {
	Errors []FieldError `json:"errors"`
	// Cause is an optional more specific sentinel, e.g. ErrUnsupportedVersion.
	Cause error `json:"-"`
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		msgs = append(msgs, fe.String())
	}

	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(msgs, "; "))
}

func (e *ValidationError) Unwrap() []error {
	if e.Cause != nil {
		return []error{ErrValidation, e.Cause}
	}

	return []error{ErrValidation}
}

func (e *ValidationError) add(path, message string) {
	e.Errors = append(e.Errors, FieldError{Path: path, Message: message})
}

func (e *ValidationError) orNil() error {
	if len(e.Errors) == 0 {
		return nil
	}

	return e
}

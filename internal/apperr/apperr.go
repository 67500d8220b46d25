package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for caller-side classification via errors.Is.
var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
)

// NotFound builds an error that matches ErrNotFound.
func NotFound(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotFound)
}

// InvalidArgument builds an error that matches ErrInvalidArgument.
func InvalidArgument(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalidArgument)
}

// ValidationErrors is the accumulated, user-facing outcome of a bulk
// validation pass. Each entry is already row-numbered and ready to display.
type ValidationErrors []string

func (v ValidationErrors) Error() string {
	return strings.Join(v, "; ")
}

// AsValidation extracts a ValidationErrors from an error chain, if present.
func AsValidation(err error) (ValidationErrors, bool) {
	var v ValidationErrors
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}

// ExternalError marks a failure of an outside collaborator (storage batch,
// mail relay, LLM API). Never retried automatically.
type ExternalError struct {
	Op  string
	Err error
}

func (e *ExternalError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ExternalError) Unwrap() error {
	return e.Err
}

// External wraps err as an ExternalError for the given operation.
func External(op string, err error) error {
	return &ExternalError{Op: op, Err: err}
}

// IsExternal reports whether err carries an ExternalError.
func IsExternal(err error) bool {
	var e *ExternalError
	return errors.As(err, &e)
}

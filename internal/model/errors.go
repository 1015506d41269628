package model

import (
	"errors"
	"fmt"
)

// Failure classes. Wrapped errors are matched with errors.Is.
var (
	ErrValidation = errors.New("validation failed")
	ErrAuth       = errors.New("authentication failed")
	ErrPublish    = errors.New("publish failed")
	ErrUpload     = errors.New("upload failed")
	ErrFetch      = errors.New("fetch failed")
	ErrNotFound   = errors.New("not found")
)

// Invalid returns an ErrValidation carrying a formatted reason.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// PublishError reports which step of a publish failed.
type PublishError struct {
	Step string
	Path string
	Err  error
}

func (e *PublishError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("publish %s (%s): %v", e.Step, e.Path, e.Err)
	}
	return fmt.Sprintf("publish %s: %v", e.Step, e.Err)
}

// Unwrap exposes both ErrPublish and the underlying cause.
func (e *PublishError) Unwrap() []error {
	return []error{ErrPublish, e.Err}
}

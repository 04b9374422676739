package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when a project does not exist.
	ErrNotFound = errors.New("project not found")

	// ErrUnauthorized is returned when the role matrix denies an action.
	// Never retried; surfaced to the caller as a denial.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrStoreUnavailable wraps transient backend failures. Callers may
	// retry the whole operation; the core does not retry on its own.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// ValidationError marks caller-correctable input problems (empty title,
// unresolved required assignment).
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Msg)
}

// PartialUploadFailure reports the file names that failed inside an
// otherwise successful create/update. It is a warning carried alongside
// the result, not an operation failure.
type PartialUploadFailure struct {
	FailedNames []string
}

func (e *PartialUploadFailure) Error() string {
	return fmt.Sprintf("failed to upload: %s", strings.Join(e.FailedNames, ", "))
}

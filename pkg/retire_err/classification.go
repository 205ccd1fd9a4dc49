// pkg/retire_err/classification.go
//
// Error classification with exit codes. Every fatal path of an erasure
// session ends up here so the process exit contract stays in one place.

package retire_err

import (
	"fmt"
	"strings"

	cerr "github.com/cockroachdb/errors"
)

// ErrorCategory classifies errors for appropriate handling
type ErrorCategory int

const (
	// CategorySystem - OS or tooling issues (exit 1)
	CategorySystem ErrorCategory = iota
	// CategoryValidation - bad flags or configuration (exit 2)
	CategoryValidation
	// CategoryPrecondition - not privileged, firmware password, confirmation declined (exit 2)
	CategoryPrecondition
	// CategoryDiscovery - disk enumeration unreliable (exit 3)
	CategoryDiscovery
	// CategoryErasure - the session completed with a failed verdict (exit 1)
	CategoryErasure
	// CategoryInternal - bugs in retire itself (exit 4)
	CategoryInternal
)

// Exit codes surfaced to the caller of the binary.
const (
	ExitOK           = 0
	ExitFailed       = 1
	ExitPrecondition = 2
	ExitDiscovery    = 3
	ExitInternal     = 4
)

// ClassifiedError wraps an error with category and remediation info
type ClassifiedError struct {
	Category    ErrorCategory
	Message     string
	Cause       error
	Remediation []string
}

// Error implements the error interface
func (e *ClassifiedError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Message)

	if e.Cause != nil && e.Cause.Error() != e.Message {
		sb.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	if len(e.Remediation) > 0 {
		sb.WriteString("\n\nHow to fix:")
		for i, step := range e.Remediation {
			sb.WriteString(fmt.Sprintf("\n  %d. %s", i+1, step))
		}
	}

	return sb.String()
}

// Unwrap returns the underlying error
func (e *ClassifiedError) Unwrap() error {
	return e.Cause
}

// ExitCode returns the appropriate exit code for this error category
func (e *ClassifiedError) ExitCode() int {
	switch e.Category {
	case CategoryValidation, CategoryPrecondition:
		return ExitPrecondition
	case CategoryDiscovery:
		return ExitDiscovery
	case CategoryInternal:
		return ExitInternal
	default:
		return ExitFailed
	}
}

// GetExitCode extracts the process exit code from any error.
// Returns 0 for nil, the category code for classified or marked errors, 1 otherwise.
func GetExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var classified *ClassifiedError
	if cerr.As(err, &classified) {
		return classified.ExitCode()
	}

	switch {
	case cerr.Is(err, ErrPrecondition):
		return ExitPrecondition
	case cerr.Is(err, ErrDiscovery):
		return ExitDiscovery
	case cerr.IsAssertionFailure(err):
		return ExitInternal
	default:
		return ExitFailed
	}
}

// NewValidationError creates an error for flag or configuration failures
func NewValidationError(message string, cause error, remediation ...string) error {
	return &ClassifiedError{
		Category:    CategoryValidation,
		Message:     message,
		Cause:       cause,
		Remediation: remediation,
	}
}

// NewErasureFailedError reports a session that ran to completion with a failed verdict.
func NewErasureFailedError(sessionID string, failedDisks []string) error {
	return &ClassifiedError{
		Category: CategoryErasure,
		Message: fmt.Sprintf("erasure session %s failed for disk(s): %s",
			sessionID, strings.Join(failedDisks, ", ")),
		Remediation: []string{
			"Review the completion record in the journal directory",
			"Do not surplus this machine until every internal disk verifies clean",
		},
	}
}

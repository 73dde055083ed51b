// Package ruleerror defines the typed errors raised around rule storage,
// validation and batch processing. The resolution engine itself never fails.
package ruleerror

import (
	"errors"
	"fmt"
)

// ErrRuleNotFound is matched by NotFoundError through errors.Is.
var ErrRuleNotFound = errors.New("analytical rule not found")

// ValidationError reports a data-quality defect on a rule record.
type ValidationError struct {
	RuleID string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("rule %q is invalid: %s", e.RuleID, e.Reason)
	}
	return fmt.Sprintf("rule %q is invalid on %s: %s", e.RuleID, e.Field, e.Reason)
}

// NotFoundError indicates a rule id that does not exist in the backend.
type NotFoundError struct {
	RuleID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("analytical rule %q not found", e.RuleID)
}

// Is lets errors.Is(err, ErrRuleNotFound) match any NotFoundError.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrRuleNotFound
}

// StoreError wraps a failure of a rule or line backend.
type StoreError struct {
	Backend   string
	Operation string
	Err       error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s store: %s failed: %v", e.Backend, e.Operation, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// LineError locates a failure on a specific line of a batch input file.
type LineError struct {
	FilePath string
	Line     int
	Err      error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.FilePath, e.Line, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

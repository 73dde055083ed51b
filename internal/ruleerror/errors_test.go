package ruleerror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError(t *testing.T) {
	err := &ValidationError{RuleID: "R1", Field: "partner_id", Reason: "empty string"}
	assert.Equal(t, `rule "R1" is invalid on partner_id: empty string`, err.Error())

	noField := &ValidationError{RuleID: "R2", Reason: "no conditions"}
	assert.Equal(t, `rule "R2" is invalid: no conditions`, noField.Error())
}

func TestNotFoundError_IsSentinel(t *testing.T) {
	err := fmt.Errorf("confirm: %w", &NotFoundError{RuleID: "R9"})

	assert.True(t, errors.Is(err, ErrRuleNotFound))

	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "R9", nf.RuleID)
}

func TestStoreError_Unwrap(t *testing.T) {
	inner := errors.New("connection refused")
	err := &StoreError{Backend: "postgres", Operation: "list rules", Err: inner}

	assert.Equal(t, "postgres store: list rules failed: connection refused", err.Error())
	assert.ErrorIs(t, err, inner)
}

func TestLineError_Unwrap(t *testing.T) {
	inner := errors.New("invalid amount")
	err := &LineError{FilePath: "lines.csv", Line: 3, Err: inner}

	assert.Equal(t, "lines.csv:3: invalid amount", err.Error())
	assert.ErrorIs(t, err, inner)
}

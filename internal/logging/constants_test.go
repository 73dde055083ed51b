package logging

import (
	"testing"
)

func TestConstants(t *testing.T) {
	if FieldRuleID == "" {
		t.Error("FieldRuleID constant should not be empty")
	}
	if FieldSource == "" {
		t.Error("FieldSource constant should not be empty")
	}
	if FieldAnalyticalAccount == "" {
		t.Error("FieldAnalyticalAccount constant should not be empty")
	}
	if FieldInputFile == "" {
		t.Error("FieldInputFile constant should not be empty")
	}
}

package validation

import (
	"os"
	"path/filepath"
	"testing"

	"fjacquet/budget-analytics/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *string { return &s }

func reasons(t *testing.T, rule models.Rule) []string {
	t.Helper()
	var out []string
	for _, finding := range ValidateRule(rule) {
		out = append(out, finding.Field+": "+finding.Reason)
	}
	return out
}

func TestValidateRule(t *testing.T) {
	tests := []struct {
		name   string
		rule   models.Rule
		expect []string
	}{
		{
			name: "valid rule",
			rule: models.Rule{ID: "R1", Status: models.RuleStatusConfirmed, Priority: 1, AnalyticalAccountID: "CC", PartnerID: ptr("P1")},
		},
		{
			name: "priority left at zero on a rule with conditions",
			rule: models.Rule{ID: "R1", Status: models.RuleStatusDraft, AnalyticalAccountID: "CC", PartnerID: ptr("P1")},
			expect: []string{
				"priority: stored priority 0 differs from condition count 1",
			},
		},
		{
			name: "draft rule without conditions keeps priority zero",
			rule: models.Rule{ID: "R1", Status: models.RuleStatusDraft, AnalyticalAccountID: "CC"},
		},
		{
			name: "empty string condition",
			rule: models.Rule{ID: "R1", Status: models.RuleStatusDraft, Priority: 1, AnalyticalAccountID: "CC", PartnerID: ptr(""), ProductID: ptr("X1")},
			expect: []string{
				"partner_id: empty string is ambiguous; omit the field to leave it unconstrained",
			},
		},
		{
			name: "inert confirmed rule",
			rule: models.Rule{ID: "R1", Status: models.RuleStatusConfirmed, AnalyticalAccountID: "CC"},
			expect: []string{
				": confirmed rule has no conditions and can never match",
			},
		},
		{
			name: "stale priority",
			rule: models.Rule{ID: "R1", Status: models.RuleStatusConfirmed, Priority: 3, AnalyticalAccountID: "CC", ProductID: ptr("X1")},
			expect: []string{
				"priority: stored priority 3 differs from condition count 1",
			},
		},
		{
			name: "missing identity",
			rule: models.Rule{Priority: 1, ProductID: ptr("X1")},
			expect: []string{
				"analytical_account_id: must not be empty",
				"id: must not be empty",
				"status: missing or unknown status",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, reasons(t, tt.rule))
		})
	}
}

func TestValidateRules_DuplicateIDs(t *testing.T) {
	rules := []models.Rule{
		{ID: "R1", Status: models.RuleStatusDraft, Priority: 1, AnalyticalAccountID: "CC", PartnerID: ptr("P1")},
		{ID: "R1", Status: models.RuleStatusDraft, Priority: 1, AnalyticalAccountID: "CC", PartnerID: ptr("P2")},
	}

	findings := ValidateRules(rules)
	require.Len(t, findings, 1)
	assert.Equal(t, "R1", findings[0].RuleID)
	assert.Equal(t, "duplicate id", findings[0].Reason)
}

func TestIsValidInputFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "lines.csv")
	require.NoError(t, os.WriteFile(file, []byte("line_id\n"), 0600))

	assert.NoError(t, IsValidInputFile(file))
	assert.Error(t, IsValidInputFile(filepath.Join(dir, "missing.csv")))
	assert.Error(t, IsValidInputFile(dir))
}

func TestIsValidReportFormat(t *testing.T) {
	assert.NoError(t, IsValidReportFormat("csv"))
	assert.NoError(t, IsValidReportFormat("json"))
	assert.NoError(t, IsValidReportFormat("xlsx"))
	assert.Error(t, IsValidReportFormat("pdf"))
}

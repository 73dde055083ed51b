// Package validation reports data-quality defects in rule catalogues and
// input files. Findings never change how the engine resolves lines.
package validation

import (
	"fmt"
	"os"
	"sort"

	"fjacquet/budget-analytics/internal/analytic"
	"fjacquet/budget-analytics/internal/models"
	"fjacquet/budget-analytics/internal/ruleerror"
)

// ValidateRule returns every defect found on a single rule.
func ValidateRule(rule models.Rule) []*ruleerror.ValidationError {
	var findings []*ruleerror.ValidationError
	add := func(field, reason string) {
		findings = append(findings, &ruleerror.ValidationError{RuleID: rule.ID, Field: field, Reason: reason})
	}

	if rule.ID == "" {
		add("id", "must not be empty")
	}
	if rule.AnalyticalAccountID == "" {
		add("analytical_account_id", "must not be empty")
	}
	if !rule.Status.IsValid() {
		add("status", "missing or unknown status")
	}

	for field, value := range map[string]*string{
		"partner_tag_id":      rule.PartnerTagID,
		"partner_id":          rule.PartnerID,
		"product_category_id": rule.ProductCategoryID,
		"product_id":          rule.ProductID,
	} {
		if value != nil && *value == "" {
			add(field, "empty string is ambiguous; omit the field to leave it unconstrained")
		}
	}

	count := analytic.ConditionCount(rule)
	if count == 0 && rule.IsConfirmed() {
		add("", "confirmed rule has no conditions and can never match")
	}
	if rule.Priority != count {
		add("priority", fmt.Sprintf("stored priority %d differs from condition count %d", rule.Priority, count))
	}

	sortFindings(findings)
	return findings
}

// ValidateRules validates every rule and flags duplicate ids.
func ValidateRules(rules []models.Rule) []*ruleerror.ValidationError {
	var findings []*ruleerror.ValidationError
	seen := make(map[string]bool, len(rules))
	for _, rule := range rules {
		findings = append(findings, ValidateRule(rule)...)
		if rule.ID == "" {
			continue
		}
		if seen[rule.ID] {
			findings = append(findings, &ruleerror.ValidationError{RuleID: rule.ID, Field: "id", Reason: "duplicate id"})
		}
		seen[rule.ID] = true
	}
	return findings
}

// IsValidInputFile checks that path exists and is a regular file.
func IsValidInputFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("input file does not exist: %s", path)
	}
	if err != nil {
		return fmt.Errorf("error checking input file %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("input path %s is not a regular file", path)
	}
	return nil
}

// IsValidReportFormat checks if the given export format is supported.
func IsValidReportFormat(format string) error {
	switch format {
	case "csv", "json", "xlsx":
		return nil
	default:
		return fmt.Errorf("unsupported report format: %s. Supported formats are 'csv', 'json', 'xlsx'", format)
	}
}

// sortFindings orders findings of one rule by field so output is stable
// despite map iteration.
func sortFindings(findings []*ruleerror.ValidationError) {
	sort.SliceStable(findings, func(i, j int) bool {
		return findings[i].Field < findings[j].Field
	})
}

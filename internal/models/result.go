// Package models provides the data structures used throughout the application.
package models

import (
	"fmt"
	"strings"
)

// MatchSource records which policy tier produced an analytical account.
type MatchSource string

const (
	SourceManual         MatchSource = "MANUAL"
	SourceAutoRule       MatchSource = "AUTO_RULE"
	SourceProductDefault MatchSource = "PRODUCT_DEFAULT"
	SourceNone           MatchSource = "NONE"
)

// AllMatchSources lists the sources in cascade order.
func AllMatchSources() []MatchSource {
	return []MatchSource{SourceManual, SourceAutoRule, SourceProductDefault, SourceNone}
}

// ParseMatchSource converts a source name (case-insensitive) into a MatchSource.
func ParseMatchSource(value string) (MatchSource, error) {
	normalized := MatchSource(strings.ToUpper(strings.TrimSpace(value)))
	for _, source := range AllMatchSources() {
		if source == normalized {
			return source, nil
		}
	}
	return "", fmt.Errorf("unknown match source %q", value)
}

// RuleMatchResult is the outcome of resolving one transaction line.
// RuleID, RuleName and MatchedFields are only populated for SourceAutoRule.
type RuleMatchResult struct {
	AnalyticalAccountID *string     `json:"analyticalAccountId"`
	Source              MatchSource `json:"source"`
	RuleID              string      `json:"ruleId,omitempty"`
	RuleName            string      `json:"ruleName,omitempty"`
	MatchedFields       int         `json:"matchedFields,omitempty"`
}

// HasAccount reports whether an analytical account was resolved.
func (r RuleMatchResult) HasAccount() bool {
	return r.AnalyticalAccountID != nil
}

// AccountOrEmpty returns the resolved account id or "".
func (r RuleMatchResult) AccountOrEmpty() string {
	return StringValue(r.AnalyticalAccountID)
}

package models

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// RuleStatus is the lifecycle state of an analytical rule.
// Only confirmed rules take part in automatic matching.
type RuleStatus int

const (
	RuleStatusDraft RuleStatus = iota + 1
	RuleStatusConfirmed
	RuleStatusCancelled
)

var ruleStatusNames = map[RuleStatus]string{
	RuleStatusDraft:     "DRAFT",
	RuleStatusConfirmed: "CONFIRMED",
	RuleStatusCancelled: "CANCELLED",
}

// AllRuleStatuses lists every known status in lifecycle order.
func AllRuleStatuses() []RuleStatus {
	return []RuleStatus{RuleStatusDraft, RuleStatusConfirmed, RuleStatusCancelled}
}

// String returns the upper-case wire name of the status.
func (s RuleStatus) String() string {
	if name, ok := ruleStatusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("RuleStatus(%d)", int(s))
}

// IsValid reports whether s is one of the declared statuses.
func (s RuleStatus) IsValid() bool {
	_, ok := ruleStatusNames[s]
	return ok
}

// ParseRuleStatus converts a status name (case-insensitive) into a RuleStatus.
func ParseRuleStatus(value string) (RuleStatus, error) {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	for _, status := range AllRuleStatuses() {
		if status.String() == normalized {
			return status, nil
		}
	}
	return 0, fmt.Errorf("unknown rule status %q", value)
}

// MarshalText implements encoding.TextMarshaler.
func (s RuleStatus) MarshalText() ([]byte, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("cannot marshal invalid rule status %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Unknown statuses are
// rejected so that a typo never silently disables a rule.
func (s *RuleStatus) UnmarshalText(text []byte) error {
	status, err := ParseRuleStatus(string(text))
	if err != nil {
		return err
	}
	*s = status
	return nil
}

// Rule is a configured condition set mapped to an analytical account.
//
// Condition fields are optional; a nil pointer means the rule places no
// constraint on that field.
type Rule struct {
	ID                  string     `yaml:"id" json:"id"`
	Name                string     `yaml:"name" json:"name"`
	Status              RuleStatus `yaml:"status" json:"status"`
	Priority            int        `yaml:"priority" json:"priority"`
	AnalyticalAccountID string     `yaml:"analytical_account_id" json:"analyticalAccountId"`

	PartnerTagID      *string `yaml:"partner_tag_id,omitempty" json:"partnerTagId,omitempty"`
	PartnerID         *string `yaml:"partner_id,omitempty" json:"partnerId,omitempty"`
	ProductCategoryID *string `yaml:"product_category_id,omitempty" json:"productCategoryId,omitempty"`
	ProductID         *string `yaml:"product_id,omitempty" json:"productId,omitempty"`
}

// IsConfirmed reports whether the rule participates in automatic matching.
func (r Rule) IsConfirmed() bool {
	return r.Status == RuleStatusConfirmed
}

// RulesConfig is the document layout of the YAML rule catalogue.
type RulesConfig struct {
	Rules []Rule `yaml:"rules"`
}

// MarshalJSON keeps the status readable in API payloads and cache snapshots.
func (s RuleStatus) MarshalJSON() ([]byte, error) {
	text, err := s.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(text))
}

// UnmarshalJSON accepts the status name as a JSON string.
func (s *RuleStatus) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return fmt.Errorf("rule status must be a string: %w", err)
	}
	return s.UnmarshalText([]byte(name))
}

// MarshalYAML writes the status as its upper-case name.
func (s RuleStatus) MarshalYAML() (interface{}, error) {
	text, err := s.MarshalText()
	if err != nil {
		return nil, err
	}
	return string(text), nil
}

// UnmarshalYAML parses a scalar status name.
func (s *RuleStatus) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: rule status must be a scalar", node.Line)
	}
	return s.UnmarshalText([]byte(node.Value))
}

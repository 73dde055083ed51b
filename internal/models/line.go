package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// TransactionLineContext carries the classification signals of one invoice,
// bill or purchase order line.
type TransactionLineContext struct {
	PartnerID                         *string  `json:"partnerId,omitempty"`
	PartnerTags                       []string `json:"partnerTags,omitempty"`
	ProductID                         *string  `json:"productId,omitempty"`
	ProductCategoryID                 *string  `json:"productCategoryId,omitempty"`
	ManualAnalyticalAccountID         *string  `json:"manualAnalyticalAccountId,omitempty"`
	ProductDefaultAnalyticalAccountID *string  `json:"productDefaultAnalyticalAccountId,omitempty"`
}

// HasPartnerTag reports whether tag is attached to the line's partner.
func (c TransactionLineContext) HasPartnerTag(tag string) bool {
	for _, t := range c.PartnerTags {
		if t == tag {
			return true
		}
	}
	return false
}

// TransactionLine is a persisted line awaiting or carrying classification.
type TransactionLine struct {
	ID                  string
	Context             TransactionLineContext
	Amount              decimal.Decimal
	AnalyticalAccountID *string
}

// StringPtr returns a pointer to a trimmed copy of value, or nil when the
// value is blank. Callers use it to normalise raw input before resolution.
func StringPtr(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// StringValue dereferences p, returning "" for nil.
func StringValue(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// SplitTags parses a separator-delimited tag list, dropping blanks.
func SplitTags(raw string, sep string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, sep)
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

package analytic

import "fjacquet/budget-analytics/internal/models"

// condition is one optional constraint of a rule, evaluated against a line.
type condition struct {
	name    string
	value   func(models.Rule) *string
	matches func(models.TransactionLineContext, string) bool
}

// conditions are evaluated in this order: partner tag, partner, product
// category, product.
var conditions = []condition{
	{
		name:  "partner_tag_id",
		value: func(r models.Rule) *string { return r.PartnerTagID },
		matches: func(c models.TransactionLineContext, want string) bool {
			return c.HasPartnerTag(want)
		},
	},
	{
		name:  "partner_id",
		value: func(r models.Rule) *string { return r.PartnerID },
		matches: func(c models.TransactionLineContext, want string) bool {
			return equalsPresent(c.PartnerID, want)
		},
	},
	{
		name:  "product_category_id",
		value: func(r models.Rule) *string { return r.ProductCategoryID },
		matches: func(c models.TransactionLineContext, want string) bool {
			return equalsPresent(c.ProductCategoryID, want)
		},
	},
	{
		name:  "product_id",
		value: func(r models.Rule) *string { return r.ProductID },
		matches: func(c models.TransactionLineContext, want string) bool {
			return equalsPresent(c.ProductID, want)
		},
	},
}

// present returns the value of p when it is set and non-empty.
func present(p *string) (string, bool) {
	if p == nil || *p == "" {
		return "", false
	}
	return *p, true
}

func equalsPresent(p *string, want string) bool {
	got, ok := present(p)
	return ok && got == want
}

// ConditionCount is the specificity of a rule: how many of its condition
// fields are set.
func ConditionCount(rule models.Rule) int {
	count := 0
	for _, cond := range conditions {
		if _, ok := present(cond.value(rule)); ok {
			count++
		}
	}
	return count
}

// MatchCount counts the rule conditions satisfied by line. A single unmet
// condition disqualifies the whole rule and yields 0.
func MatchCount(line models.TransactionLineContext, rule models.Rule) int {
	matched := 0
	for _, cond := range conditions {
		want, ok := present(cond.value(rule))
		if !ok {
			continue
		}
		if !cond.matches(line, want) {
			return 0
		}
		matched++
	}
	return matched
}

// IsFullMatch reports whether every declared condition of rule holds for line.
// Rules without conditions never match.
func IsFullMatch(line models.TransactionLineContext, rule models.Rule) bool {
	count := ConditionCount(rule)
	return count > 0 && MatchCount(line, rule) == count
}

// ConditionNames lists the condition fields set on rule, in evaluation order.
func ConditionNames(rule models.Rule) []string {
	names := make([]string, 0, len(conditions))
	for _, cond := range conditions {
		if _, ok := present(cond.value(rule)); ok {
			names = append(names, cond.name)
		}
	}
	return names
}

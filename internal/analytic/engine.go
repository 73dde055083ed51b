// Package analytic assigns analytical (cost-center) accounts to transaction
// lines. Resolution walks a fixed cascade:
//  1. a manual account chosen by the user
//  2. the most specific confirmed rule fully matching the line
//  3. the product's default analytical account
//  4. no account
//
// Resolve is pure: it performs no I/O, keeps no state and is safe to call
// from any number of goroutines.
package analytic

import "fjacquet/budget-analytics/internal/models"

// Resolve classifies one line against a rule snapshot. rules may contain any
// status in any order; it is never modified.
func Resolve(line models.TransactionLineContext, rules []models.Rule) models.RuleMatchResult {
	result, _ := resolveWith(defaultTiers, line, rules)
	return result
}

// resolveWith returns the result and the name of the tier that produced it.
func resolveWith(tiers []Tier, line models.TransactionLineContext, rules []models.Rule) (models.RuleMatchResult, string) {
	for _, tier := range tiers {
		if result, ok := tier.Resolve(line, rules); ok {
			return result, tier.Name()
		}
	}
	return models.RuleMatchResult{Source: models.SourceNone}, "None"
}

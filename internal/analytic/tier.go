package analytic

import "fjacquet/budget-analytics/internal/models"

// Tier is one step of the resolution cascade. A tier returns false when it
// has nothing to say about the line, letting the next tier try.
type Tier interface {
	Resolve(line models.TransactionLineContext, rules []models.Rule) (models.RuleMatchResult, bool)

	// Name returns the name of this tier for logging and debugging purposes.
	Name() string
}

// ManualTier honours an account chosen explicitly by a user.
type ManualTier struct{}

func (ManualTier) Name() string { return "Manual" }

func (ManualTier) Resolve(line models.TransactionLineContext, _ []models.Rule) (models.RuleMatchResult, bool) {
	account, ok := present(line.ManualAnalyticalAccountID)
	if !ok {
		return models.RuleMatchResult{}, false
	}
	return models.RuleMatchResult{
		AnalyticalAccountID: &account,
		Source:              models.SourceManual,
	}, true
}

// RuleTier selects the most specific confirmed rule that fully matches the
// line. On equal specificity the rule that comes first in the input wins.
type RuleTier struct{}

func (RuleTier) Name() string { return "AutoRule" }

func (RuleTier) Resolve(line models.TransactionLineContext, rules []models.Rule) (models.RuleMatchResult, bool) {
	best := -1
	bestCount := 0
	for i := range rules {
		rule := &rules[i]
		if !rule.IsConfirmed() {
			continue
		}
		count := ConditionCount(*rule)
		if count <= bestCount || !IsFullMatch(line, *rule) {
			continue
		}
		best, bestCount = i, count
	}
	if best < 0 {
		return models.RuleMatchResult{}, false
	}

	winner := rules[best]
	account := winner.AnalyticalAccountID
	return models.RuleMatchResult{
		AnalyticalAccountID: &account,
		Source:              models.SourceAutoRule,
		RuleID:              winner.ID,
		RuleName:            winner.Name,
		MatchedFields:       bestCount,
	}, true
}

// ProductDefaultTier falls back to the account configured on the product.
type ProductDefaultTier struct{}

func (ProductDefaultTier) Name() string { return "ProductDefault" }

func (ProductDefaultTier) Resolve(line models.TransactionLineContext, _ []models.Rule) (models.RuleMatchResult, bool) {
	account, ok := present(line.ProductDefaultAnalyticalAccountID)
	if !ok {
		return models.RuleMatchResult{}, false
	}
	return models.RuleMatchResult{
		AnalyticalAccountID: &account,
		Source:              models.SourceProductDefault,
	}, true
}

var defaultTiers = []Tier{ManualTier{}, RuleTier{}, ProductDefaultTier{}}

// DefaultTiers returns the cascade in evaluation order.
func DefaultTiers() []Tier {
	tiers := make([]Tier, len(defaultTiers))
	copy(tiers, defaultTiers)
	return tiers
}

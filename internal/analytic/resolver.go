package analytic

import (
	"sync"

	"fjacquet/budget-analytics/internal/logging"
	"fjacquet/budget-analytics/internal/models"
)

// Resolver wraps Resolve with structured logging and running statistics.
// Logging never changes the outcome of a resolution.
type Resolver struct {
	logger logging.Logger
	tiers  []Tier

	mu    sync.Mutex
	stats models.ResolutionStats
}

// NewResolver creates a Resolver using the default cascade.
func NewResolver(logger logging.Logger) *Resolver {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Resolver{
		logger: logger,
		tiers:  defaultTiers,
	}
}

// Resolve classifies one line and records the outcome.
func (r *Resolver) Resolve(line models.TransactionLineContext, rules []models.Rule) models.RuleMatchResult {
	result, tier := resolveWith(r.tiers, line, rules)

	r.mu.Lock()
	r.stats.Record(result)
	r.mu.Unlock()

	fields := []logging.Field{
		{Key: "tier", Value: tier},
		{Key: logging.FieldSource, Value: string(result.Source)},
		{Key: logging.FieldAnalyticalAccount, Value: result.AccountOrEmpty()},
	}
	if result.Source == models.SourceAutoRule {
		fields = append(fields,
			logging.Field{Key: logging.FieldRuleID, Value: result.RuleID},
			logging.Field{Key: logging.FieldRuleName, Value: result.RuleName},
			logging.Field{Key: logging.FieldMatchedFields, Value: result.MatchedFields},
		)
	}
	r.logger.WithFields(fields...).Debug("Transaction line resolved")

	return result
}

// ResolveAll classifies lines against one rule snapshot, preserving order.
func (r *Resolver) ResolveAll(lines []models.TransactionLineContext, rules []models.Rule) []models.RuleMatchResult {
	results := make([]models.RuleMatchResult, len(lines))
	for i, line := range lines {
		results[i] = r.Resolve(line, rules)
	}
	return results
}

// Stats returns a snapshot of the counters accumulated so far.
func (r *Resolver) Stats() models.ResolutionStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}


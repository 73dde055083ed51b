// Package jobs runs scheduled reclassification of unassigned transaction lines.
package jobs

import (
	"context"
	"fmt"
	"time"

	"fjacquet/budget-analytics/internal/analytic"
	"fjacquet/budget-analytics/internal/logging"
	"fjacquet/budget-analytics/internal/models"
	"fjacquet/budget-analytics/internal/store"
)

// DefaultBatchSize is the page size used when none is configured.
const DefaultBatchSize = 500

// LineStore pages through unassigned lines and stamps resolutions.
type LineStore interface {
	ListUnassigned(ctx context.Context, afterID string, limit int) ([]models.TransactionLine, error)
	AssignAnalyticalAccount(ctx context.Context, lineID string, result models.RuleMatchResult) (bool, error)
}

// RunSummary describes one reclassification pass.
type RunSummary struct {
	Stats    models.ResolutionStats
	Updated  int
	Duration time.Duration
}

// Processor resolves unassigned lines against one rule snapshot per run.
type Processor struct {
	rules     store.RuleSource
	lines     LineStore
	batchSize int
	logger    logging.Logger
}

// NewProcessor creates a Processor. batchSize <= 0 uses DefaultBatchSize.
func NewProcessor(rules store.RuleSource, lines LineStore, batchSize int, logger logging.Logger) *Processor {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Processor{
		rules:     rules,
		lines:     lines,
		batchSize: batchSize,
		logger:    logger.WithField("component", "ReclassificationJob"),
	}
}

// ProcessUnassigned loads the rules once, then walks every unassigned line
// in id order. Lines resolving to NONE stay unassigned and are retried on
// the next run.
func (p *Processor) ProcessUnassigned(ctx context.Context) (RunSummary, error) {
	start := time.Now()
	var summary RunSummary

	rules, err := p.rules.ListRules(ctx)
	if err != nil {
		return summary, fmt.Errorf("failed to load rules: %w", err)
	}

	resolver := analytic.NewResolver(p.logger)
	afterID := ""
	for {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		page, err := p.lines.ListUnassigned(ctx, afterID, p.batchSize)
		if err != nil {
			return summary, fmt.Errorf("failed to list unassigned lines: %w", err)
		}
		if len(page) == 0 {
			break
		}

		for _, line := range page {
			result := resolver.Resolve(line.Context, rules)
			if !result.HasAccount() {
				continue
			}
			updated, err := p.lines.AssignAnalyticalAccount(ctx, line.ID, result)
			if err != nil {
				return summary, fmt.Errorf("failed to assign line %s: %w", line.ID, err)
			}
			if updated {
				summary.Updated++
			}
		}

		afterID = page[len(page)-1].ID
		if len(page) < p.batchSize {
			break
		}
	}

	summary.Stats = resolver.Stats()
	summary.Duration = time.Since(start)
	summary.Stats.LogSummary(p.logger, "scheduler")
	p.logger.WithFields(
		logging.Field{Key: "updated", Value: summary.Updated},
		logging.Field{Key: logging.FieldDuration, Value: summary.Duration.String()},
	).Info("Reclassification run completed")
	return summary, nil
}

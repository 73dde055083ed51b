package store

import (
	"context"

	"fjacquet/budget-analytics/internal/models"
)

// RuleSource supplies rule snapshots to the resolver. Rules are returned in
// stored order with every status; filtering is the engine's job.
type RuleSource interface {
	ListRules(ctx context.Context) ([]models.Rule, error)
}

// RuleRepository is a RuleSource that can also manage rule records.
type RuleRepository interface {
	RuleSource
	GetRule(ctx context.Context, id string) (models.Rule, error)
	CreateRule(ctx context.Context, rule models.Rule) (models.Rule, error)
	UpdateStatus(ctx context.Context, id string, status models.RuleStatus) error
	DeleteRule(ctx context.Context, id string) error
}

package pgstore

import (
	"context"
	"errors"

	"fjacquet/budget-analytics/internal/models"
	"fjacquet/budget-analytics/internal/ruleerror"
	"fjacquet/budget-analytics/internal/store"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const ruleColumns = `id, name, status, priority, analytical_account_id,
	partner_tag_id, partner_id, product_category_id, product_id`

// uniqueViolation is the SQLSTATE for a duplicate key.
const uniqueViolation = "23505"

// RuleRepository stores rules in the analytic_rules table. Listing order is
// insertion order, which is the tie-break order of the engine.
type RuleRepository struct {
	pool *pgxpool.Pool
}

// NewRuleRepository creates a repository on an open pool.
func NewRuleRepository(pool *pgxpool.Pool) *RuleRepository {
	return &RuleRepository{pool: pool}
}

// ListRules returns every rule ordered by position then id.
func (r *RuleRepository) ListRules(ctx context.Context) ([]models.Rule, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+ruleColumns+` FROM analytic_rules ORDER BY position, id`)
	if err != nil {
		return nil, storeError("list rules", err)
	}
	defer rows.Close()

	rules := []models.Rule{}
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, storeError("scan rule", err)
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("list rules", err)
	}
	return rules, nil
}

// GetRule returns one rule by id.
func (r *RuleRepository) GetRule(ctx context.Context, id string) (models.Rule, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+ruleColumns+` FROM analytic_rules WHERE id = $1`, id)
	rule, err := scanRule(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Rule{}, &ruleerror.NotFoundError{RuleID: id}
	}
	if err != nil {
		return models.Rule{}, storeError("get rule", err)
	}
	return rule, nil
}

// CreateRule inserts a rule at the end of the listing order. An empty id is
// replaced by a generated UUID and an invalid status defaults to draft.
func (r *RuleRepository) CreateRule(ctx context.Context, rule models.Rule) (models.Rule, error) {
	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}
	if !rule.Status.IsValid() {
		rule.Status = models.RuleStatusDraft
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO analytic_rules (id, name, status, priority, analytical_account_id,
			partner_tag_id, partner_id, product_category_id, product_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		rule.ID, rule.Name, rule.Status.String(), rule.Priority, rule.AnalyticalAccountID,
		rule.PartnerTagID, rule.PartnerID, rule.ProductCategoryID, rule.ProductID,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return models.Rule{}, &ruleerror.ValidationError{RuleID: rule.ID, Field: "id", Reason: "already exists"}
	}
	if err != nil {
		return models.Rule{}, storeError("create rule", err)
	}
	return rule, nil
}

// UpdateStatus moves a rule to a new lifecycle status.
func (r *RuleRepository) UpdateStatus(ctx context.Context, id string, status models.RuleStatus) error {
	text, err := status.MarshalText()
	if err != nil {
		return &ruleerror.ValidationError{RuleID: id, Field: "status", Reason: err.Error()}
	}
	tag, err := r.pool.Exec(ctx, `UPDATE analytic_rules SET status = $2 WHERE id = $1`, id, string(text))
	if err != nil {
		return storeError("update status", err)
	}
	if tag.RowsAffected() == 0 {
		return &ruleerror.NotFoundError{RuleID: id}
	}
	return nil
}

// DeleteRule removes a rule.
func (r *RuleRepository) DeleteRule(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM analytic_rules WHERE id = $1`, id)
	if err != nil {
		return storeError("delete rule", err)
	}
	if tag.RowsAffected() == 0 {
		return &ruleerror.NotFoundError{RuleID: id}
	}
	return nil
}

func scanRule(row pgx.Row) (models.Rule, error) {
	var rule models.Rule
	var status string
	err := row.Scan(
		&rule.ID, &rule.Name, &status, &rule.Priority, &rule.AnalyticalAccountID,
		&rule.PartnerTagID, &rule.PartnerID, &rule.ProductCategoryID, &rule.ProductID,
	)
	if err != nil {
		return models.Rule{}, err
	}
	if err := rule.Status.UnmarshalText([]byte(status)); err != nil {
		return models.Rule{}, err
	}
	return rule, nil
}

func storeError(operation string, err error) error {
	return &ruleerror.StoreError{Backend: backendPostgres, Operation: operation, Err: err}
}

var _ store.RuleRepository = (*RuleRepository)(nil)

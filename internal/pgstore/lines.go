package pgstore

import (
	"context"
	"time"

	"fjacquet/budget-analytics/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// LineRepository reads and stamps transaction lines.
type LineRepository struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewLineRepository creates a repository on an open pool.
func NewLineRepository(pool *pgxpool.Pool) *LineRepository {
	return &LineRepository{pool: pool, now: time.Now}
}

// ListUnassigned returns up to limit lines without an analytical account
// whose id sorts after afterID. Pass "" to start from the beginning.
func (r *LineRepository) ListUnassigned(ctx context.Context, afterID string, limit int) ([]models.TransactionLine, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, partner_id, partner_tags, product_id, product_category_id,
			manual_analytical_account_id, product_default_analytical_account_id, amount::text
		FROM transaction_lines
		WHERE analytical_account_id IS NULL AND id > $1
		ORDER BY id
		LIMIT $2`, afterID, limit)
	if err != nil {
		return nil, storeError("list unassigned lines", err)
	}
	defer rows.Close()

	var lines []models.TransactionLine
	for rows.Next() {
		var line models.TransactionLine
		var amount string
		c := &line.Context
		if err := rows.Scan(
			&line.ID, &c.PartnerID, &c.PartnerTags, &c.ProductID, &c.ProductCategoryID,
			&c.ManualAnalyticalAccountID, &c.ProductDefaultAnalyticalAccountID, &amount,
		); err != nil {
			return nil, storeError("scan line", err)
		}
		if line.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, storeError("parse amount of line "+line.ID, err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("list unassigned lines", err)
	}
	return lines, nil
}

// AssignAnalyticalAccount stamps a resolution onto a line. Lines that
// gained an account in the meantime are left untouched; the return value
// reports whether the line was updated.
func (r *LineRepository) AssignAnalyticalAccount(ctx context.Context, lineID string, result models.RuleMatchResult) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE transaction_lines
		SET analytical_account_id = $2, analytic_source = $3, analytic_rule_id = NULLIF($4, ''), classified_at = $5
		WHERE id = $1 AND analytical_account_id IS NULL`,
		lineID, result.AnalyticalAccountID, string(result.Source), result.RuleID, r.now().UTC())
	if err != nil {
		return false, storeError("assign analytical account", err)
	}
	return tag.RowsAffected() == 1, nil
}

// InsertLine adds a line, mostly for seeding and tests.
func (r *LineRepository) InsertLine(ctx context.Context, line models.TransactionLine) error {
	tags := line.Context.PartnerTags
	if tags == nil {
		tags = []string{}
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO transaction_lines (id, partner_id, partner_tags, product_id, product_category_id,
			manual_analytical_account_id, product_default_analytical_account_id, amount, analytical_account_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::numeric, $9)`,
		line.ID, line.Context.PartnerID, tags, line.Context.ProductID, line.Context.ProductCategoryID,
		line.Context.ManualAnalyticalAccountID, line.Context.ProductDefaultAnalyticalAccountID,
		line.Amount.String(), line.AnalyticalAccountID,
	)
	if err != nil {
		return storeError("insert line", err)
	}
	return nil
}

// GetLine returns a line with its current account.
func (r *LineRepository) GetLine(ctx context.Context, lineID string) (models.TransactionLine, error) {
	var line models.TransactionLine
	var amount string
	c := &line.Context
	err := r.pool.QueryRow(ctx, `
		SELECT id, partner_id, partner_tags, product_id, product_category_id,
			manual_analytical_account_id, product_default_analytical_account_id, amount::text, analytical_account_id
		FROM transaction_lines WHERE id = $1`, lineID).Scan(
		&line.ID, &c.PartnerID, &c.PartnerTags, &c.ProductID, &c.ProductCategoryID,
		&c.ManualAnalyticalAccountID, &c.ProductDefaultAnalyticalAccountID, &amount, &line.AnalyticalAccountID,
	)
	if err != nil {
		return models.TransactionLine{}, storeError("get line "+lineID, err)
	}
	if line.Amount, err = decimal.NewFromString(amount); err != nil {
		return models.TransactionLine{}, storeError("parse amount of line "+lineID, err)
	}
	return line, nil
}

package common

import (
	"strings"

	"fjacquet/budget-analytics/internal/currencyutils"
	"fjacquet/budget-analytics/internal/models"

	"github.com/shopspring/decimal"
)

// LineRow is one transaction line in a batch input file.
type LineRow struct {
	LineID                  string `csv:"line_id"`
	PartnerID               string `csv:"partner_id"`
	PartnerTags             string `csv:"partner_tags"`
	ProductID               string `csv:"product_id"`
	ProductCategoryID       string `csv:"product_category_id"`
	ManualAccountID         string `csv:"manual_account_id"`
	ProductDefaultAccountID string `csv:"product_default_account_id"`
	Amount                  string `csv:"amount"`
}

// ToLine normalises a raw row: blank cells become absent values and the
// tag list is split on tagSeparator. A blank amount is zero.
func (r LineRow) ToLine(tagSeparator string) (models.TransactionLine, error) {
	amount, err := ParseAmount(r.Amount)
	if err != nil {
		return models.TransactionLine{}, err
	}

	return models.TransactionLine{
		ID:     strings.TrimSpace(r.LineID),
		Amount: amount,
		Context: models.TransactionLineContext{
			PartnerID:                         models.StringPtr(r.PartnerID),
			PartnerTags:                       models.SplitTags(r.PartnerTags, tagSeparator),
			ProductID:                         models.StringPtr(r.ProductID),
			ProductCategoryID:                 models.StringPtr(r.ProductCategoryID),
			ManualAnalyticalAccountID:         models.StringPtr(r.ManualAccountID),
			ProductDefaultAnalyticalAccountID: models.StringPtr(r.ProductDefaultAccountID),
		},
	}, nil
}

// ParseAmount parses an amount cell. A blank cell is zero.
func ParseAmount(raw string) (decimal.Decimal, error) {
	return currencyutils.ParseAmount(raw)
}

// ResultRow is one resolved line in a batch output file.
type ResultRow struct {
	LineID              string `csv:"line_id"`
	AnalyticalAccountID string `csv:"analytical_account_id"`
	Source              string `csv:"source"`
	RuleID              string `csv:"rule_id"`
	RuleName            string `csv:"rule_name"`
	MatchedFields       int    `csv:"matched_fields"`
	Amount              string `csv:"amount"`
}

// NewResultRow flattens a line and its resolution for CSV output.
func NewResultRow(line models.TransactionLine, result models.RuleMatchResult) ResultRow {
	return ResultRow{
		LineID:              line.ID,
		AnalyticalAccountID: result.AccountOrEmpty(),
		Source:              string(result.Source),
		RuleID:              result.RuleID,
		RuleName:            result.RuleName,
		MatchedFields:       result.MatchedFields,
		Amount:              currencyutils.FormatAmount(line.Amount),
	}
}

// Result rebuilds the RuleMatchResult carried by a row.
func (r ResultRow) Result() (models.RuleMatchResult, error) {
	source, err := models.ParseMatchSource(r.Source)
	if err != nil {
		return models.RuleMatchResult{}, err
	}
	return models.RuleMatchResult{
		AnalyticalAccountID: models.StringPtr(r.AnalyticalAccountID),
		Source:              source,
		RuleID:              r.RuleID,
		RuleName:            r.RuleName,
		MatchedFields:       r.MatchedFields,
	}, nil
}

// Package report aggregates resolution results into per-account and
// per-source totals and exports them.
package report

import (
	"sort"

	"fjacquet/budget-analytics/internal/models"

	"github.com/shopspring/decimal"
)

// UnassignedLabel names the bucket of lines that resolved to no account.
const UnassignedLabel = "(unassigned)"

// Entry is one resolved line as seen by the summary.
type Entry struct {
	Result models.RuleMatchResult
	Amount decimal.Decimal
}

// AccountTotal is the amount and line count booked to one analytical account.
type AccountTotal struct {
	AccountID string          `json:"accountId"`
	Lines     int             `json:"lines"`
	Amount    decimal.Decimal `json:"amount"`
}

// SourceTotal is the amount and line count produced by one cascade tier.
type SourceTotal struct {
	Source models.MatchSource `json:"source"`
	Lines  int                `json:"lines"`
	Amount decimal.Decimal    `json:"amount"`
}

// Summary is the aggregated view of a resolution run.
type Summary struct {
	Lines    int             `json:"lines"`
	Total    decimal.Decimal `json:"total"`
	Accounts []AccountTotal  `json:"accounts"`
	Sources  []SourceTotal   `json:"sources"`
}

// Summarize groups entries by account and by source. Accounts are sorted by
// id with the unassigned bucket last; sources follow cascade order and are
// always all present.
func Summarize(entries []Entry) Summary {
	summary := Summary{Total: decimal.Zero}

	byAccount := make(map[string]*AccountTotal)
	bySource := make(map[models.MatchSource]*SourceTotal)
	for _, source := range models.AllMatchSources() {
		bySource[source] = &SourceTotal{Source: source, Amount: decimal.Zero}
	}

	for _, entry := range entries {
		summary.Lines++
		summary.Total = summary.Total.Add(entry.Amount)

		key := entry.Result.AccountOrEmpty()
		if key == "" {
			key = UnassignedLabel
		}
		account, ok := byAccount[key]
		if !ok {
			account = &AccountTotal{AccountID: key, Amount: decimal.Zero}
			byAccount[key] = account
		}
		account.Lines++
		account.Amount = account.Amount.Add(entry.Amount)

		source, ok := bySource[entry.Result.Source]
		if !ok {
			source = bySource[models.SourceNone]
		}
		source.Lines++
		source.Amount = source.Amount.Add(entry.Amount)
	}

	for _, account := range byAccount {
		summary.Accounts = append(summary.Accounts, *account)
	}
	sort.Slice(summary.Accounts, func(i, j int) bool {
		a, b := summary.Accounts[i].AccountID, summary.Accounts[j].AccountID
		if (a == UnassignedLabel) != (b == UnassignedLabel) {
			return b == UnassignedLabel
		}
		return a < b
	})

	for _, source := range models.AllMatchSources() {
		summary.Sources = append(summary.Sources, *bySource[source])
	}
	return summary
}

package models

import (
	"fjacquet/budget-analytics/internal/logging"
)

// ResolutionStats tracks how many lines each tier of the cascade classified.
type ResolutionStats struct {
	Total          int // Total number of lines resolved
	Manual         int // Lines kept on a user-chosen account
	AutoRule       int // Lines classified by a confirmed rule
	ProductDefault int // Lines that fell back to the product default
	Unassigned     int // Lines left without an analytical account
}

// Record counts one result against its source.
func (rs *ResolutionStats) Record(result RuleMatchResult) {
	rs.Total++
	switch result.Source {
	case SourceManual:
		rs.Manual++
	case SourceAutoRule:
		rs.AutoRule++
	case SourceProductDefault:
		rs.ProductDefault++
	default:
		rs.Unassigned++
	}
}

// Merge adds the counters of other into rs.
func (rs *ResolutionStats) Merge(other ResolutionStats) {
	rs.Total += other.Total
	rs.Manual += other.Manual
	rs.AutoRule += other.AutoRule
	rs.ProductDefault += other.ProductDefault
	rs.Unassigned += other.Unassigned
}

// Assigned returns the number of lines that received an account.
func (rs ResolutionStats) Assigned() int {
	return rs.Manual + rs.AutoRule + rs.ProductDefault
}

// GetCoverageRate returns the share of assigned lines as a percentage.
func (rs ResolutionStats) GetCoverageRate() float64 {
	if rs.Total == 0 {
		return 0.0
	}
	return float64(rs.Assigned()) / float64(rs.Total) * 100.0
}

// LogSummary logs a summary of resolution statistics
func (rs ResolutionStats) LogSummary(logger logging.Logger, origin string) {
	if logger == nil {
		return
	}

	logger.Info("Analytical resolution summary",
		logging.Field{Key: "origin", Value: origin},
		logging.Field{Key: "total_lines", Value: rs.Total},
		logging.Field{Key: "manual", Value: rs.Manual},
		logging.Field{Key: "auto_rule", Value: rs.AutoRule},
		logging.Field{Key: "product_default", Value: rs.ProductDefault},
		logging.Field{Key: "unassigned", Value: rs.Unassigned},
		logging.Field{Key: "coverage_rate", Value: rs.GetCoverageRate()},
	)
}

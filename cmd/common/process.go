// Package common contains shared functionality for command handlers
package common

import (
	"context"
	"fmt"
	"time"

	"fjacquet/budget-analytics/internal/analytic"
	csvio "fjacquet/budget-analytics/internal/common"
	"fjacquet/budget-analytics/internal/config"
	"fjacquet/budget-analytics/internal/logging"
	"fjacquet/budget-analytics/internal/models"
	"fjacquet/budget-analytics/internal/report"
	"fjacquet/budget-analytics/internal/ruleerror"
	"fjacquet/budget-analytics/internal/store"
)

// FileOptions describes the layout of batch CSV files.
type FileOptions struct {
	Delimiter    rune
	TagSeparator string
}

// DefaultFileOptions matches the configuration defaults.
func DefaultFileOptions() FileOptions {
	return FileOptions{Delimiter: ',', TagSeparator: ";"}
}

// BatchResult is the outcome of resolving one input file.
type BatchResult struct {
	InputFile string
	StartedAt time.Time
	Stats     models.ResolutionStats
	Entries   []report.Entry
}

// ResolveFile reads transaction lines from inputFile, resolves every line
// against a single rule snapshot and writes the results to outputFile.
// Nothing is written when any input row is malformed.
func ResolveFile(ctx context.Context, source store.RuleSource, resolver *analytic.Resolver, inputFile, outputFile string, opts FileOptions, log logging.Logger) (BatchResult, error) {
	result := BatchResult{InputFile: inputFile, StartedAt: time.Now()}
	log = log.WithField(logging.FieldInputFile, inputFile)

	rows, err := csvio.ReadCSVFile[csvio.LineRow](inputFile, opts.Delimiter)
	if err != nil {
		return result, err
	}

	lines := make([]models.TransactionLine, 0, len(rows))
	for i, row := range rows {
		line, err := row.ToLine(opts.TagSeparator)
		if err != nil {
			// +2: header line and 1-based numbering
			return result, &ruleerror.LineError{FilePath: inputFile, Line: i + 2, Err: err}
		}
		lines = append(lines, line)
	}

	rules, err := source.ListRules(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to load rules: %w", err)
	}
	log.Debug("Rule snapshot loaded", logging.Field{Key: logging.FieldCount, Value: len(rules)})

	output := make([]csvio.ResultRow, 0, len(lines))
	result.Entries = make([]report.Entry, 0, len(lines))
	for _, line := range lines {
		match := resolver.Resolve(line.Context, rules)
		result.Stats.Record(match)
		result.Entries = append(result.Entries, report.Entry{Result: match, Amount: line.Amount})
		output = append(output, csvio.NewResultRow(line, match))
	}

	if err := csvio.WriteCSVFile(outputFile, output, opts.Delimiter); err != nil {
		return result, err
	}

	result.Stats.LogSummary(log, inputFile)
	log.Info("Resolution completed", logging.Field{Key: logging.FieldOutputFile, Value: outputFile})
	return result, nil
}

// ReadResults loads a results file written by ResolveFile back into
// report entries.
func ReadResults(resultsFile string, opts FileOptions) ([]report.Entry, error) {
	rows, err := csvio.ReadCSVFile[csvio.ResultRow](resultsFile, opts.Delimiter)
	if err != nil {
		return nil, err
	}

	entries := make([]report.Entry, 0, len(rows))
	for i, row := range rows {
		match, err := row.Result()
		if err != nil {
			return nil, &ruleerror.LineError{FilePath: resultsFile, Line: i + 2, Err: err}
		}
		amount, err := csvio.ParseAmount(row.Amount)
		if err != nil {
			return nil, &ruleerror.LineError{FilePath: resultsFile, Line: i + 2, Err: err}
		}
		entries = append(entries, report.Entry{Result: match, Amount: amount})
	}
	return entries, nil
}

// OptionsFromConfig builds FileOptions from the csv configuration section.
func OptionsFromConfig(cfg *config.Config) FileOptions {
	opts := DefaultFileOptions()
	if cfg == nil {
		return opts
	}
	if cfg.CSV.Delimiter != "" {
		opts.Delimiter = rune(cfg.CSV.Delimiter[0])
	}
	if cfg.CSV.TagSeparator != "" {
		opts.TagSeparator = cfg.CSV.TagSeparator
	}
	return opts
}

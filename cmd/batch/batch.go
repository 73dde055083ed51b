// Package batch resolves analytical accounts for CSV files of transaction lines
package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fjacquet/budget-analytics/cmd/common"
	"fjacquet/budget-analytics/cmd/root"
	"fjacquet/budget-analytics/internal/container"
	"fjacquet/budget-analytics/internal/history"
	"fjacquet/budget-analytics/internal/logging"
	"fjacquet/budget-analytics/internal/models"
	"fjacquet/budget-analytics/internal/report"
	"fjacquet/budget-analytics/internal/validation"

	"github.com/spf13/cobra"
)

var (
	reportFile   string
	reportFormat string
)

// Cmd represents the batch command
var Cmd = &cobra.Command{
	Use:   "batch",
	Short: "Batch resolve analytical accounts for transaction line files",
	Long: `Batch resolve analytical accounts for a CSV file, or for every CSV file of a
directory, of transaction lines.

Input columns: line_id, partner_id, partner_tags, product_id,
product_category_id, manual_account_id, product_default_account_id, amount.
Every file is resolved against one snapshot of the rules.

Example:
  budget-analytics batch -i lines.csv -o results.csv --report summary.xlsx
  budget-analytics batch -i input_dir/ -o output_dir/`,
	RunE: batchFunc,
}

func init() {
	Cmd.Flags().StringVar(&reportFile, "report", "", "Write a per-account summary to this file")
	Cmd.Flags().StringVar(&reportFormat, "report-format", "", "Summary format: csv, json or xlsx (default: from the report file extension)")
}

func batchFunc(cmd *cobra.Command, args []string) error {
	appContainer := root.GetContainer()
	if appContainer == nil {
		return fmt.Errorf("container not initialized")
	}
	_, err := Run(cmd.Context(), appContainer, root.SharedFlags.Input, root.SharedFlags.Output, reportFile, reportFormat)
	return err
}

// Run resolves input into output and returns the counters over every file.
// A directory input resolves every CSV file it contains into the output
// directory.
func Run(ctx context.Context, c *container.Container, input, output, summaryFile, summaryFormat string) (models.ResolutionStats, error) {
	var total models.ResolutionStats
	logger := c.GetLogger()
	if input == "" || output == "" {
		return total, fmt.Errorf("input and output must be specified")
	}

	if summaryFile != "" {
		if summaryFormat == "" {
			summaryFormat = strings.TrimPrefix(strings.ToLower(filepath.Ext(summaryFile)), ".")
		}
		if err := validation.IsValidReportFormat(summaryFormat); err != nil {
			return total, err
		}
	}

	jobs, err := planFiles(input, output)
	if err != nil {
		return total, err
	}

	opts := common.OptionsFromConfig(c.GetConfig())
	var entries []report.Entry
	for _, job := range jobs {
		result, err := common.ResolveFile(ctx, c.GetRuleSource(), c.GetResolver(), job.input, job.output, opts, logger)
		if err != nil {
			return total, err
		}
		entries = append(entries, result.Entries...)
		total.Merge(result.Stats)
		recordRun(ctx, c.GetHistory(), result, logger)
	}

	if len(jobs) > 1 {
		total.LogSummary(logger, input)
	}
	logger.Info(fmt.Sprintf("Batch processing completed. %d file(s) resolved.", len(jobs)))

	if summaryFile != "" {
		return total, c.GetReportGenerator().WriteReport(summaryFile, report.Summarize(entries), summaryFormat)
	}
	return total, nil
}

const resolvedSuffix = "-resolved.csv"

type fileJob struct {
	input  string
	output string
}

func planFiles(input, output string) ([]fileJob, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, fmt.Errorf("input does not exist: %s", input)
	}
	if !info.IsDir() {
		if err := validation.IsValidInputFile(input); err != nil {
			return nil, err
		}
		return []fileJob{{input: input, output: output}}, nil
	}

	if err := os.MkdirAll(output, 0750); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	entries, err := os.ReadDir(input)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory: %w", err)
	}

	var jobs []fileJob
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(name), ".csv") {
			continue
		}
		// Results of an earlier run into the same directory.
		if strings.HasSuffix(strings.ToLower(name), resolvedSuffix) {
			continue
		}
		base := strings.TrimSuffix(name, filepath.Ext(name))
		jobs = append(jobs, fileJob{
			input:  filepath.Join(input, name),
			output: filepath.Join(output, base+resolvedSuffix),
		})
	}
	if len(jobs) == 0 {
		return nil, fmt.Errorf("no CSV files found in %s", input)
	}
	return jobs, nil
}

func recordRun(ctx context.Context, store *history.Store, result common.BatchResult, logger logging.Logger) {
	if store == nil {
		return
	}
	run, err := store.Record(ctx, history.Run{
		StartedAt: result.StartedAt,
		InputFile: result.InputFile,
		Stats:     result.Stats,
	})
	if err != nil {
		logger.WithError(err).Warn("Failed to record run history")
		return
	}
	logger.Debug("Run recorded", logging.Field{Key: "run_id", Value: run.ID})
}

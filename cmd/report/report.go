// Package report summarizes resolution results and run history
package report

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"fjacquet/budget-analytics/cmd/common"
	"fjacquet/budget-analytics/cmd/root"
	"fjacquet/budget-analytics/internal/container"
	"fjacquet/budget-analytics/internal/history"
	reporting "fjacquet/budget-analytics/internal/report"
	"fjacquet/budget-analytics/internal/validation"

	"github.com/spf13/cobra"
)

var (
	format   string
	runLimit int
)

// Cmd represents the report command
var Cmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize a results file per analytical account and source",
	Long: `Summarize a results file written by the batch command. Amounts and line
counts are totalled per analytical account and per resolution source.

Example:
  budget-analytics report -i results.csv -o summary.xlsx
  budget-analytics report -i results.csv -o summary.json --format json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := root.GetContainer()
		if c == nil {
			return fmt.Errorf("container not initialized")
		}
		return Summarize(c, root.SharedFlags.Input, root.SharedFlags.Output, format)
	},
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent batch runs from the history database",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := root.GetContainer()
		if c == nil {
			return fmt.Errorf("container not initialized")
		}
		if c.GetHistory() == nil {
			return fmt.Errorf("run history is disabled (set history.enabled)")
		}
		return ListRuns(cmd.Context(), c.GetHistory(), runLimit, cmd.OutOrStdout())
	},
}

func init() {
	Cmd.Flags().StringVar(&format, "format", "", "Output format: csv, json or xlsx (default: from the output extension)")
	runsCmd.Flags().IntVar(&runLimit, "limit", 10, "Number of runs to show")
	Cmd.AddCommand(runsCmd)
}

// Summarize reads resultsFile and writes its summary to output.
func Summarize(c *container.Container, resultsFile, output, outputFormat string) error {
	if resultsFile == "" || output == "" {
		return fmt.Errorf("input and output must be specified")
	}
	if err := validation.IsValidInputFile(resultsFile); err != nil {
		return err
	}
	if outputFormat == "" {
		outputFormat = strings.TrimPrefix(strings.ToLower(filepath.Ext(output)), ".")
	}
	if err := validation.IsValidReportFormat(outputFormat); err != nil {
		return err
	}

	entries, err := common.ReadResults(resultsFile, common.OptionsFromConfig(c.GetConfig()))
	if err != nil {
		return err
	}
	return c.GetReportGenerator().WriteReport(output, reporting.Summarize(entries), outputFormat)
}

// ListRuns prints the most recent runs as a table.
func ListRuns(ctx context.Context, store *history.Store, limit int, out io.Writer) error {
	runs, err := store.Recent(ctx, limit)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "STARTED\tINPUT\tTOTAL\tMANUAL\tAUTO_RULE\tPRODUCT_DEFAULT\tNONE\tCOVERAGE")
	for _, run := range runs {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\t%d\t%.1f%%\n",
			run.StartedAt.Local().Format(time.DateTime), run.InputFile,
			run.Stats.Total, run.Stats.Manual, run.Stats.AutoRule, run.Stats.ProductDefault, run.Stats.Unassigned,
			run.Stats.GetCoverageRate())
	}
	return w.Flush()
}

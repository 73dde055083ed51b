package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"fjacquet/budget-analytics/internal/common"
	"fjacquet/budget-analytics/internal/currencyutils"
	"fjacquet/budget-analytics/internal/logging"
)

// summaryRow is the flat CSV rendering of a Summary.
type summaryRow struct {
	Section string `csv:"section"`
	Key     string `csv:"key"`
	Lines   int    `csv:"lines"`
	Amount  string `csv:"amount"`
}

// ReportGenerator renders resolution summaries in various formats.
type ReportGenerator struct {
	logger    logging.Logger
	delimiter rune
}

// NewReportGenerator creates a new instance of ReportGenerator.
func NewReportGenerator(logger logging.Logger) *ReportGenerator {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &ReportGenerator{
		logger:    logger.WithField("component", "ReportGenerator"),
		delimiter: ',',
	}
}

// WithDelimiter sets the separator used for CSV output.
func (g *ReportGenerator) WithDelimiter(delimiter rune) *ReportGenerator {
	g.delimiter = delimiter
	return g
}

// GenerateReport renders a summary as json or csv.
func (g *ReportGenerator) GenerateReport(summary Summary, format string) ([]byte, error) {
	switch format {
	case "json":
		return g.generateJSONReport(summary)
	case "csv":
		return g.generateCSVReport(summary)
	default:
		return nil, fmt.Errorf("unsupported report format: %s", format)
	}
}

// WriteReport writes a summary to path. xlsx goes through the spreadsheet
// writer, the other formats through GenerateReport.
func (g *ReportGenerator) WriteReport(path string, summary Summary, format string) error {
	if format == "xlsx" {
		if err := WriteXLSX(path, summary); err != nil {
			g.logger.WithError(err).Error("Failed to write XLSX report")
			return err
		}
	} else {
		content, err := g.GenerateReport(summary, format)
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, content, 0600); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}

	g.logger.WithFields(
		logging.Field{Key: logging.FieldOutputFile, Value: path},
		logging.Field{Key: logging.FieldCount, Value: summary.Lines},
	).Info("Report written")
	return nil
}

func (g *ReportGenerator) generateJSONReport(summary Summary) ([]byte, error) {
	jsonReport, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		g.logger.WithError(err).Error("Failed to marshal JSON report")
		return nil, fmt.Errorf("failed to marshal JSON report: %w", err)
	}
	return jsonReport, nil
}

func (g *ReportGenerator) generateCSVReport(summary Summary) ([]byte, error) {
	rows := make([]summaryRow, 0, len(summary.Accounts)+len(summary.Sources)+1)
	for _, account := range summary.Accounts {
		rows = append(rows, summaryRow{Section: "account", Key: account.AccountID, Lines: account.Lines, Amount: currencyutils.FormatAmount(account.Amount)})
	}
	for _, source := range summary.Sources {
		rows = append(rows, summaryRow{Section: "source", Key: string(source.Source), Lines: source.Lines, Amount: currencyutils.FormatAmount(source.Amount)})
	}
	rows = append(rows, summaryRow{Section: "total", Key: "all", Lines: summary.Lines, Amount: currencyutils.FormatAmount(summary.Total)})

	var buf bytes.Buffer
	if err := common.WriteCSV(&buf, rows, g.delimiter); err != nil {
		g.logger.WithError(err).Error("Failed to marshal CSV report")
		return nil, err
	}
	return buf.Bytes(), nil
}

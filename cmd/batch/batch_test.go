package batch

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"fjacquet/budget-analytics/internal/config"
	"fjacquet/budget-analytics/internal/container"
	"fjacquet/budget-analytics/internal/history"
	"fjacquet/budget-analytics/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const linesCSV = `line_id,partner_id,partner_tags,product_id,product_category_id,manual_account_id,product_default_account_id,amount
L1,P1,marketing,X,,,,100.00
L2,P2,,Y,,,CC-DEF,20.50
`

func newContainer(t *testing.T, withHistory bool) *container.Container {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{}
	cfg.Log.Level = "error"
	cfg.Log.Format = "text"
	cfg.CSV.Delimiter = ","
	cfg.CSV.TagSeparator = ";"
	cfg.Rules.Backend = config.BackendYAML
	cfg.Rules.File = filepath.Join(dir, "rules.yaml")
	if withHistory {
		cfg.History.Enabled = true
		cfg.History.Path = history.MemoryPath
	}

	c, err := container.NewContainer(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	tag := "marketing"
	_, err = c.GetRuleRepository().CreateRule(context.Background(), models.Rule{
		ID: "R1", Name: "Marketing", Status: models.RuleStatusConfirmed, AnalyticalAccountID: "CC-MKT", PartnerTagID: &tag,
	})
	require.NoError(t, err)
	return c
}

func TestBatchCommand_Metadata(t *testing.T) {
	assert.Equal(t, "batch", Cmd.Use)
	assert.Contains(t, Cmd.Short, "Batch resolve")
	assert.Contains(t, Cmd.Long, "Example")
	assert.NotNil(t, Cmd.RunE)
	assert.NotNil(t, Cmd.Flags().Lookup("report"))
}

func TestRun_SingleFileWithReportAndHistory(t *testing.T) {
	c := newContainer(t, true)
	dir := t.TempDir()
	input := filepath.Join(dir, "lines.csv")
	output := filepath.Join(dir, "results.csv")
	summary := filepath.Join(dir, "summary.xlsx")
	require.NoError(t, os.WriteFile(input, []byte(linesCSV), 0600))

	stats, err := Run(context.Background(), c, input, output, summary, "")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)

	content, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(content), "L1,CC-MKT,AUTO_RULE,R1,Marketing,1,100.00")
	assert.Contains(t, string(content), "L2,CC-DEF,PRODUCT_DEFAULT")

	f, err := excelize.OpenFile(summary)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	rows, err := f.GetRows("Accounts")
	require.NoError(t, err)
	assert.Len(t, rows, 4)

	runs, err := c.GetHistory().Recent(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, input, runs[0].InputFile)
	assert.Equal(t, 2, runs[0].Stats.Total)
}

func TestRun_Directory(t *testing.T) {
	c := newContainer(t, false)
	inputDir := t.TempDir()
	outputDir := filepath.Join(t.TempDir(), "out")
	require.NoError(t, os.WriteFile(filepath.Join(inputDir, "jan.csv"), []byte(linesCSV), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(inputDir, "feb.CSV"), []byte(linesCSV), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(inputDir, "notes.txt"), []byte("skip"), 0600))

	stats, err := Run(context.Background(), c, inputDir, outputDir, "", "")
	require.NoError(t, err)
	assert.Equal(t, models.ResolutionStats{Total: 4, AutoRule: 2, ProductDefault: 2}, stats)

	assert.FileExists(t, filepath.Join(outputDir, "jan-resolved.csv"))
	assert.FileExists(t, filepath.Join(outputDir, "feb-resolved.csv"))
	assert.NoFileExists(t, filepath.Join(outputDir, "notes-resolved.csv"))
}

func TestRun_DirectoryRerunInPlace(t *testing.T) {
	c := newContainer(t, false)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "jan.csv"), []byte(linesCSV), 0600))

	_, err := Run(context.Background(), c, dir, dir, "", "")
	require.NoError(t, err)
	require.FileExists(t, filepath.Join(dir, "jan-resolved.csv"))

	stats, err := Run(context.Background(), c, dir, dir, "", "")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.NoFileExists(t, filepath.Join(dir, "jan-resolved-resolved.csv"))
}

func TestRun_Errors(t *testing.T) {
	c := newContainer(t, false)
	dir := t.TempDir()
	input := filepath.Join(dir, "lines.csv")
	require.NoError(t, os.WriteFile(input, []byte(linesCSV), 0600))

	tests := []struct {
		name, input, output, summary string
	}{
		{name: "missing input flag", input: "", output: "out.csv"},
		{name: "missing input file", input: filepath.Join(dir, "missing.csv"), output: filepath.Join(dir, "o.csv")},
		{name: "unknown report format", input: input, output: filepath.Join(dir, "o.csv"), summary: filepath.Join(dir, "s.pdf")},
		{name: "empty directory", input: t.TempDir(), output: filepath.Join(dir, "out")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Run(context.Background(), c, tt.input, tt.output, tt.summary, "")
			assert.Error(t, err)
		})
	}
}

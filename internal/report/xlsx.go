package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	accountsSheet = "Accounts"
	sourcesSheet  = "Sources"
)

// WriteXLSX saves the summary as a workbook with an "Accounts" and a
// "Sources" sheet. Each sheet ends with a total row.
func WriteXLSX(path string, summary Summary) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", accountsSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(sourcesSheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	accountRows := [][]interface{}{{"Analytical account", "Lines", "Amount"}}
	for _, account := range summary.Accounts {
		accountRows = append(accountRows, []interface{}{account.AccountID, account.Lines, account.Amount.InexactFloat64()})
	}
	accountRows = append(accountRows, []interface{}{"Total", summary.Lines, summary.Total.InexactFloat64()})

	sourceRows := [][]interface{}{{"Source", "Lines", "Amount"}}
	for _, source := range summary.Sources {
		sourceRows = append(sourceRows, []interface{}{string(source.Source), source.Lines, source.Amount.InexactFloat64()})
	}
	sourceRows = append(sourceRows, []interface{}{"Total", summary.Lines, summary.Total.InexactFloat64()})

	if err := writeRows(f, accountsSheet, accountRows); err != nil {
		return err
	}
	if err := writeRows(f, sourcesSheet, sourceRows); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := row
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

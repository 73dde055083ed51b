// Package common provides the CSV plumbing shared by the batch commands.
package common

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"
)

// ReadCSV decodes delimiter-separated rows from r into a slice of TRow.
func ReadCSV[TRow any](r io.Reader, delimiter rune) ([]TRow, error) {
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.TrimLeadingSpace = true

	var rows []TRow
	if err := gocsv.UnmarshalCSV(reader, &rows); err != nil {
		return nil, fmt.Errorf("error parsing CSV: %w", err)
	}
	return rows, nil
}

// ReadCSVFile reads a CSV file into a slice of TRow.
func ReadCSVFile[TRow any](filePath string, delimiter rune) ([]TRow, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("error opening CSV file: %w", err)
	}
	defer file.Close()

	rows, err := ReadCSV[TRow](file, delimiter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}
	return rows, nil
}

// WriteCSV encodes rows to w with a header line.
func WriteCSV[TRow any](w io.Writer, rows []TRow, delimiter rune) error {
	writer := csv.NewWriter(w)
	writer.Comma = delimiter

	if err := gocsv.MarshalCSV(&rows, gocsv.NewSafeCSVWriter(writer)); err != nil {
		return fmt.Errorf("error writing CSV: %w", err)
	}
	writer.Flush()
	return writer.Error()
}

// WriteCSVFile writes rows to filePath, creating or truncating it.
func WriteCSVFile[TRow any](filePath string, rows []TRow, delimiter rune) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("error creating CSV file: %w", err)
	}

	if err := WriteCSV(file, rows, delimiter); err != nil {
		_ = file.Close()
		return fmt.Errorf("%s: %w", filePath, err)
	}
	return file.Close()
}

package core

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ExportFileName is the base name offered to browsers for downloads.
const ExportFileName = "user_data"

// ExportCSV writes every profile as one CSV row under ExportHeader.
// Returns the number of data rows written.
func (s *Service) ExportCSV(ctx context.Context, w io.Writer) (int, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeader()); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}

	n, err := StreamRecords(ctx, s.db, func(r Record) error {
		return cw.Write(ExportRow(r))
	})
	if err != nil {
		return n, fmt.Errorf("export csv: %w", err)
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return n, fmt.Errorf("flush csv: %w", err)
	}
	return n, nil
}

// ExportXLSX writes the same rows as ExportCSV into a single-sheet workbook.
func (s *Service) ExportXLSX(ctx context.Context, w io.Writer) (int, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return 0, fmt.Errorf("open stream writer: %w", err)
	}

	rowNum := 1
	writeRow := func(cells []string) error {
		cell, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(cells))
		for i, c := range cells {
			values[i] = c
		}
		rowNum++
		return sw.SetRow(cell, values)
	}

	if err := writeRow(ExportHeader()); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}
	n, err := StreamRecords(ctx, s.db, func(r Record) error {
		return writeRow(ExportRow(r))
	})
	if err != nil {
		return n, fmt.Errorf("export xlsx: %w", err)
	}

	if err := sw.Flush(); err != nil {
		return n, fmt.Errorf("flush sheet: %w", err)
	}
	if err := f.Write(w); err != nil {
		return n, fmt.Errorf("write workbook: %w", err)
	}
	return n, nil
}

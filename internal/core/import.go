package core

// import.go loads records from a CSV file produced by ExportCSV (or written
// by hand with the same header names).
//
// The whole file is one transaction: the first row that fails validation or
// insertion aborts the import, nothing is kept, and the returned *ImportError
// names the CSV line. Each attempt is logged to import_log afterwards.

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/JonMunkholm/customers/internal/logging"
	"github.com/google/uuid"
)

// ImportCSV parses r and creates one record per data row.
// fileName is only used for logging.
func (s *Service) ImportCSV(ctx context.Context, fileName string, r io.Reader) (*ImportResult, error) {
	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	ctx, cancel := context.WithTimeout(ctx, s.importTimeout)
	defer cancel()

	log := logging.WithFields(ctx, "file", fileName)
	id := uuid.New()

	records, importErr := s.importRows(ctx, WrapImportReader(r))

	entry := ImportLogEntry{ID: id, FileName: fileName, Rows: len(records), Status: ImportStatusCompleted}
	if importErr != nil {
		entry.Rows = 0
		entry.Status = ImportStatusFailed
		entry.Error = importErr.Error()
	}
	// The log row is written even when the import context has expired.
	if err := InsertImportLog(context.WithoutCancel(ctx), s.db, entry); err != nil {
		log.Warn("failed to record import", "import_id", id, "error", err)
	}

	if importErr != nil {
		log.Warn("import failed", "import_id", id, "error", importErr)
		return nil, importErr
	}

	summaries := make([]Summary, len(records))
	for i, rec := range records {
		summaries[i] = rec.Summary()
	}
	log.Info("import completed", "import_id", id, "rows", len(records))

	return &ImportResult{
		ID:       id.String(),
		FileName: fileName,
		Imported: len(records),
		Records:  summaries,
	}, nil
}

func (s *Service) importRows(ctx context.Context, r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx := MakeHeaderIndex(header)
	if _, ok := idx["name"]; !ok {
		return nil, ErrMissingNameColumn
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var records []Record
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			line := 0
			if errors.As(err, &pe) {
				line = pe.Line
			}
			return nil, &ImportError{Line: line, Err: err}
		}
		line, _ := cr.FieldPos(0)

		if isBlankRow(row) {
			continue
		}

		cleaned, err := ValidateImport(ImportValues(row, idx))
		if err != nil {
			return nil, &ImportError{Line: line, Err: err}
		}
		rec := Decode(cleaned)
		if err := InsertRecord(ctx, tx, &rec); err != nil {
			return nil, &ImportError{Line: line, Err: err}
		}
		records = append(records, rec)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return records, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

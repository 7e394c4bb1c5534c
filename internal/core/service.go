package core

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/JonMunkholm/customers/internal/config"
	"github.com/JonMunkholm/customers/internal/logging"
)

// DefaultImportTimeout bounds a single import when configuration leaves it unset.
const DefaultImportTimeout = 5 * time.Minute

// Service provides the record operations used by the web layer.
type Service struct {
	db            DB
	limiter       *ImportLimiter
	importTimeout time.Duration
}

// NewService creates a Service backed by db.
func NewService(db DB, cfg *config.Config) *Service {
	timeout := cfg.Import.Timeout
	if timeout <= 0 {
		timeout = DefaultImportTimeout
	}
	return &Service{
		db:            db,
		limiter:       NewImportLimiter(cfg.Import.MaxConcurrent, cfg.Import.MaxWaitTime),
		importTimeout: timeout,
	}
}

// CreateRecord validates the submitted values and stores the profile, its
// address and its shipping/tax row in one transaction. Validation failures
// return *ValidationError without touching the database; a duplicate
// account number returns *ConflictError.
func (s *Service) CreateRecord(ctx context.Context, v Values) (*Record, error) {
	cleaned, err := Validate(v)
	if err != nil {
		return nil, err
	}
	rec := Decode(cleaned)

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := InsertRecord(ctx, tx, &rec); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	logging.FromContext(ctx).Info("record created",
		"profile_id", rec.Profile.ID,
		"name", rec.Profile.Name,
	)
	return &rec, nil
}

// ListSummaries returns the listing rows for the page and JSON API.
func (s *Service) ListSummaries(ctx context.Context, q SummaryQuery) ([]Summary, error) {
	return ListSummaries(ctx, s.db, q)
}

// Ping checks database connectivity.
func (s *Service) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// ImportsActive returns the number of imports currently running.
func (s *Service) ImportsActive() int {
	return s.limiter.Active()
}

// WaitForImports blocks until running imports finish or ctx ends.
// Used during graceful shutdown.
func (s *Service) WaitForImports(ctx context.Context) error {
	active := s.limiter.Active()
	if active == 0 {
		return nil
	}
	slog.Info("waiting for imports to complete", "active", active)
	return s.limiter.WaitForDrain(ctx)
}

package core

import (
	"context"
	"fmt"
)

// schemaStatements create the tables when they are missing. They are safe to
// run on every start; existing tables are never altered.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS profiles (
		id                    BIGSERIAL PRIMARY KEY,
		name                  TEXT NOT NULL,
		mobile                TEXT NOT NULL DEFAULT '',
		email                 TEXT NOT NULL DEFAULT '',
		group_name            TEXT NOT NULL DEFAULT '',
		status                TEXT NOT NULL DEFAULT '',
		active                BOOLEAN NOT NULL DEFAULT TRUE,
		credit_limit          NUMERIC(10,2),
		number                TEXT,
		payment_terms         TEXT NOT NULL DEFAULT '',
		salesman              TEXT NOT NULL DEFAULT '',
		default_priority      INTEGER,
		alert_notes           TEXT NOT NULL DEFAULT '',
		quickbooks_class_name TEXT NOT NULL DEFAULT '',
		issuable_status       TEXT NOT NULL DEFAULT '',
		created_at            TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT profiles_number_key UNIQUE (number)
	)`,
	`CREATE TABLE IF NOT EXISTS addresses (
		id              BIGSERIAL PRIMARY KEY,
		profile_id      BIGINT NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
		address_name    TEXT NOT NULL DEFAULT '',
		address_contact TEXT NOT NULL DEFAULT '',
		address_type    TEXT NOT NULL DEFAULT '',
		is_default      BOOLEAN NOT NULL DEFAULT FALSE,
		address         TEXT NOT NULL DEFAULT '',
		city            TEXT NOT NULL DEFAULT '',
		state           TEXT NOT NULL DEFAULT '',
		zip             TEXT NOT NULL DEFAULT '',
		country         TEXT NOT NULL DEFAULT '',
		fax             TEXT NOT NULL DEFAULT '',
		pager           TEXT NOT NULL DEFAULT '',
		web             TEXT NOT NULL DEFAULT '',
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS addresses_profile_id_idx ON addresses (profile_id, id)`,
	`CREATE TABLE IF NOT EXISTS shipping_tax (
		id                BIGSERIAL PRIMARY KEY,
		profile_id        BIGINT NOT NULL UNIQUE REFERENCES profiles(id) ON DELETE CASCADE,
		tax_rate          NUMERIC(5,3),
		tax_exempt        BOOLEAN NOT NULL DEFAULT FALSE,
		tax_exempt_number TEXT NOT NULL DEFAULT '',
		url               TEXT NOT NULL DEFAULT '',
		carrier_name      TEXT NOT NULL DEFAULT '',
		carrier_service   TEXT NOT NULL DEFAULT '',
		shipping_terms    TEXT NOT NULL DEFAULT '',
		to_be_emailed     BOOLEAN NOT NULL DEFAULT FALSE,
		to_be_printed     BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE TABLE IF NOT EXISTS import_log (
		id            UUID PRIMARY KEY,
		file_name     TEXT NOT NULL,
		rows_imported INTEGER NOT NULL DEFAULT 0,
		status        TEXT NOT NULL,
		error         TEXT NOT NULL DEFAULT '',
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

// EnsureSchema creates any missing tables.
func EnsureSchema(ctx context.Context, db DBTX) error {
	for i, stmt := range schemaStatements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i+1, err)
		}
	}
	return nil
}

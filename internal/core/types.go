// Package core provides the business logic for customer record management.
// This package has no UI dependencies and can be used by any frontend.
package core

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the interface for database operations.
// Satisfied by *pgxpool.Pool, pgx.Tx and pgxmock pools.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// DB is a DBTX that can also open transactions and report liveness.
type DB interface {
	DBTX
	Begin(context.Context) (pgx.Tx, error)
	Ping(context.Context) error
}

// FieldType represents the expected data type of a flat field.
type FieldType int

const (
	FieldText FieldType = iota
	FieldEmail
	FieldURL
	FieldDecimal
	FieldInteger
	FieldBool
	FieldEnum
	FieldTextArea
)

// Entity identifies which table a flat field is stored in.
type Entity int

const (
	EntityFormOnly Entity = iota // accepted from the form, never persisted
	EntityProfile
	EntityAddress
	EntityShipping
)

// Values is the flat field set keyed by form field name.
// It is the shape shared by form submissions, JSON payloads and CSV rows.
type Values map[string]string

// Get returns the trimmed value for a field, or "" when absent.
func (v Values) Get(name string) string {
	return strings.TrimSpace(v[name])
}

// HeaderIndex maps column names (lowercase) to their position in the CSV row.
type HeaderIndex map[string]int

// SummaryQuery narrows and orders the profile listing.
type SummaryQuery struct {
	Search     string // matched against name, email, mobile and account number
	SortByName bool   // default order is creation order
}

// ImportResult contains the final result of a CSV import.
type ImportResult struct {
	ID       string
	FileName string
	Imported int
	Records  []Summary
}

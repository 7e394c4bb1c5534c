package core

// store.go holds the SQL for records. Every function takes a DBTX so callers
// decide whether it runs on the pool or inside a transaction.

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

const pgUniqueViolation = "23505"

// uniqueConstraints attributes unique violations to a form field.
var uniqueConstraints = map[string]struct {
	Field   string
	Message string
}{
	"profiles_number_key": {Field: "Number", Message: "Account Number already exists."},
}

const insertProfileSQL = `
INSERT INTO profiles (
	name, mobile, email, group_name, status, active, credit_limit, number,
	payment_terms, salesman, default_priority, alert_notes,
	quickbooks_class_name, issuable_status
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
RETURNING id, created_at`

const insertAddressSQL = `
INSERT INTO addresses (
	profile_id, address_name, address_contact, address_type, is_default,
	address, city, state, zip, country, fax, pager, web
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
RETURNING id`

const insertShippingTaxSQL = `
INSERT INTO shipping_tax (
	profile_id, tax_rate, tax_exempt, tax_exempt_number, url, carrier_name,
	carrier_service, shipping_terms, to_be_emailed, to_be_printed
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING id`

// primaryAddressJoin picks each profile's first-created address.
const primaryAddressJoin = `
LEFT JOIN LATERAL (
	SELECT * FROM addresses WHERE profile_id = p.id ORDER BY id LIMIT 1
) a ON TRUE`

const selectRecordsSQL = `
SELECT
	p.id, p.name, p.mobile, p.email, p.group_name, p.status, p.active,
	p.credit_limit, p.number, p.payment_terms, p.salesman, p.default_priority,
	p.alert_notes, p.quickbooks_class_name, p.issuable_status, p.created_at,
	a.id, a.address_name, a.address_contact, a.address_type, a.is_default,
	a.address, a.city, a.state, a.zip, a.country, a.fax, a.pager, a.web,
	st.id, st.tax_rate, st.tax_exempt, st.tax_exempt_number, st.url,
	st.carrier_name, st.carrier_service, st.shipping_terms, st.to_be_emailed,
	st.to_be_printed
FROM profiles p` + primaryAddressJoin + `
LEFT JOIN shipping_tax st ON st.profile_id = p.id
ORDER BY p.id`

const selectSummariesSQL = `
SELECT
	p.id, p.name, COALESCE(a.address, ''), COALESCE(a.city, ''),
	COALESCE(a.state, ''), COALESCE(a.zip, ''), COALESCE(a.address_contact, ''),
	p.mobile, p.email
FROM profiles p` + primaryAddressJoin

const insertImportLogSQL = `
INSERT INTO import_log (id, file_name, rows_imported, status, error)
VALUES ($1, $2, $3, $4, $5)`

// InsertRecord writes the profile, then its address, then its shipping row,
// filling in generated ids. Run it inside a transaction.
func InsertRecord(ctx context.Context, db DBTX, r *Record) error {
	p := &r.Profile
	err := db.QueryRow(ctx, insertProfileSQL,
		p.Name, p.Mobile, p.Email, p.Group, p.Status, p.Active,
		ToPgNumeric(p.CreditLimit), p.Number, p.PaymentTerms, p.Salesman,
		p.DefaultPriority, p.AlertNotes, p.QuickBooksClassName, p.IssuableStatus,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert profile: %w", translatePgError(err))
	}

	if a := r.Address; a != nil {
		a.ProfileID = p.ID
		err = db.QueryRow(ctx, insertAddressSQL,
			a.ProfileID, a.AddressName, a.AddressContact, a.AddressType, a.IsDefault,
			a.Address, a.City, a.State, a.Zip, a.Country, a.Fax, a.Pager, a.Web,
		).Scan(&a.ID)
		if err != nil {
			return fmt.Errorf("insert address: %w", translatePgError(err))
		}
	}

	if st := r.ShippingTax; st != nil {
		st.ProfileID = p.ID
		err = db.QueryRow(ctx, insertShippingTaxSQL,
			st.ProfileID, ToPgNumeric(st.TaxRate), st.TaxExempt, st.TaxExemptNumber,
			st.URL, st.CarrierName, st.CarrierService, st.ShippingTerms,
			st.ToBeEmailed, st.ToBePrinted,
		).Scan(&st.ID)
		if err != nil {
			return fmt.Errorf("insert shipping_tax: %w", translatePgError(err))
		}
	}

	return nil
}

// StreamRecords calls fn for every profile in id order, joined with its
// primary address and shipping row. It returns the number of records seen.
func StreamRecords(ctx context.Context, db DBTX, fn func(Record) error) (int, error) {
	rows, err := db.Query(ctx, selectRecordsSQL)
	if err != nil {
		return 0, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return count, err
		}
		if err := fn(rec); err != nil {
			return count, err
		}
		count++
	}
	if err := rows.Err(); err != nil {
		return count, fmt.Errorf("iterate records: %w", err)
	}
	return count, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (Record, error) {
	var (
		rec         Record
		creditLimit pgtype.Numeric

		addrID                                            pgtype.Int8
		addrName, addrContact, addrType                   pgtype.Text
		addrIsDefault                                     pgtype.Bool
		addrLine, city, state, zip, country, fax, pager   pgtype.Text
		web                                               pgtype.Text
		stID                                              pgtype.Int8
		taxRate                                           pgtype.Numeric
		taxExempt, toBeEmailed, toBePrinted               pgtype.Bool
		taxExemptNumber, stURL, carrier, service, shTerms pgtype.Text
	)

	p := &rec.Profile
	err := row.Scan(
		&p.ID, &p.Name, &p.Mobile, &p.Email, &p.Group, &p.Status, &p.Active,
		&creditLimit, &p.Number, &p.PaymentTerms, &p.Salesman, &p.DefaultPriority,
		&p.AlertNotes, &p.QuickBooksClassName, &p.IssuableStatus, &p.CreatedAt,
		&addrID, &addrName, &addrContact, &addrType, &addrIsDefault,
		&addrLine, &city, &state, &zip, &country, &fax, &pager, &web,
		&stID, &taxRate, &taxExempt, &taxExemptNumber, &stURL,
		&carrier, &service, &shTerms, &toBeEmailed, &toBePrinted,
	)
	if err != nil {
		return Record{}, fmt.Errorf("scan record: %w", err)
	}
	p.CreditLimit = FromPgNumeric(creditLimit)

	if addrID.Valid {
		rec.Address = &Address{
			ID:             addrID.Int64,
			ProfileID:      p.ID,
			AddressName:    addrName.String,
			AddressContact: addrContact.String,
			AddressType:    addrType.String,
			IsDefault:      addrIsDefault.Bool,
			Address:        addrLine.String,
			City:           city.String,
			State:          state.String,
			Zip:            zip.String,
			Country:        country.String,
			Fax:            fax.String,
			Pager:          pager.String,
			Web:            web.String,
		}
	}

	if stID.Valid {
		rec.ShippingTax = &ShippingTax{
			ID:              stID.Int64,
			ProfileID:       p.ID,
			TaxRate:         FromPgNumeric(taxRate),
			TaxExempt:       taxExempt.Bool,
			TaxExemptNumber: taxExemptNumber.String,
			URL:             stURL.String,
			CarrierName:     carrier.String,
			CarrierService:  service.String,
			ShippingTerms:   shTerms.String,
			ToBeEmailed:     toBeEmailed.Bool,
			ToBePrinted:     toBePrinted.Bool,
		}
	}

	return rec, nil
}

// ListSummaries returns the listing rows, optionally filtered and sorted.
func ListSummaries(ctx context.Context, db DBTX, q SummaryQuery) ([]Summary, error) {
	var (
		query strings.Builder
		args  []any
	)
	query.WriteString(selectSummariesSQL)

	if search := strings.TrimSpace(q.Search); search != "" {
		args = append(args, "%"+escapeLike(search)+"%")
		query.WriteString(`
WHERE p.name ILIKE $1 OR p.email ILIKE $1 OR p.mobile ILIKE $1 OR p.number ILIKE $1`)
	}
	if q.SortByName {
		query.WriteString("\nORDER BY p.name, p.id")
	} else {
		query.WriteString("\nORDER BY p.id")
	}

	rows, err := db.Query(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query summaries: %w", err)
	}
	defer rows.Close()

	summaries := []Summary{}
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.ID, &s.LocationName, &s.Address, &s.City, &s.State,
			&s.Zip, &s.ContactPerson, &s.Phone, &s.Email); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate summaries: %w", err)
	}
	return summaries, nil
}

// ImportLogEntry is one row of import_log.
type ImportLogEntry struct {
	ID       uuid.UUID
	FileName string
	Rows     int
	Status   string
	Error    string
}

// Import log statuses.
const (
	ImportStatusCompleted = "completed"
	ImportStatusFailed    = "failed"
)

// InsertImportLog records an import attempt.
func InsertImportLog(ctx context.Context, db DBTX, e ImportLogEntry) error {
	_, err := db.Exec(ctx, insertImportLogSQL,
		pgtype.UUID{Bytes: e.ID, Valid: true}, e.FileName, int32(e.Rows), e.Status, e.Error)
	if err != nil {
		return fmt.Errorf("insert import_log: %w", err)
	}
	return nil
}

// translatePgError turns known unique violations into a ConflictError.
// Other errors are returned unchanged.
func translatePgError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolation {
		return err
	}
	target, ok := uniqueConstraints[pgErr.ConstraintName]
	if !ok {
		return err
	}
	return &ConflictError{
		Field:      target.Field,
		Constraint: pgErr.ConstraintName,
		Message:    target.Message,
		Err:        err,
	}
}

// escapeLike escapes LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

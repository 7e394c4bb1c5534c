package core

// convert.go provides conversions between raw field text, Go domain values
// and pgx parameter types.
//
// Booleans accept checkbox conventions and CSV cells lose Excel formula
// prefixes. Numbers are strict. The ToPg* helpers return values with
// Valid=false for blank input so the database stores NULL.

import (
	"errors"
	"math/big"
	"regexp"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// numericRegex matches a plain decimal.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)$`)

var errNotNumeric = errors.New("not a number")

// ToPgText converts a string to pgtype.Text.
// Returns invalid if the string is empty or only whitespace.
func ToPgText(s string) pgtype.Text {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

// ParseDecimal parses a decimal in plain notation: an optional sign, digits
// and at most one '.'. Currency symbols, separators and accounting
// parentheses are rejected.
func ParseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if !numericRegex.MatchString(s) {
		return decimal.Decimal{}, errNotNumeric
	}
	return decimal.NewFromString(s)
}

// ToNullDecimal parses s into a NullDecimal.
// Blank or unparseable input yields Valid=false.
func ToNullDecimal(s string) decimal.NullDecimal {
	if strings.TrimSpace(s) == "" {
		return decimal.NullDecimal{}
	}
	d, err := ParseDecimal(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

// DecimalDigits reports the total and fractional digit counts of d, counted
// the way NUMERIC(p,s) columns count them. Trailing zeros are significant.
func DecimalDigits(d decimal.Decimal) (digits, decimals int) {
	coef := new(big.Int).Abs(d.Coefficient()).String()
	exp := int(d.Exponent())
	switch {
	case exp >= 0:
		return len(coef) + exp, 0
	case -exp > len(coef):
		return -exp, -exp
	default:
		return len(coef), -exp
	}
}

// ToPgNumeric converts a NullDecimal into a pgx numeric parameter.
func ToPgNumeric(d decimal.NullDecimal) pgtype.Numeric {
	if !d.Valid {
		return pgtype.Numeric{Valid: false}
	}
	return pgtype.Numeric{Int: d.Decimal.Coefficient(), Exp: d.Decimal.Exponent(), Valid: true}
}

// FromPgNumeric converts a scanned numeric back into a NullDecimal.
// NaN and infinities have no decimal representation and map to NULL.
func FromPgNumeric(n pgtype.Numeric) decimal.NullDecimal {
	if !n.Valid || n.NaN || n.InfinityModifier != pgtype.Finite || n.Int == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: decimal.NewFromBigInt(n.Int, n.Exp), Valid: true}
}

// FormatNullDecimal renders d as plain text, or "" when NULL.
func FormatNullDecimal(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}

// ParseInt4 parses a whole number into pgtype.Int4.
func ParseInt4(s string) (pgtype.Int4, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Int4{Valid: false}, nil
	}
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return pgtype.Int4{Valid: false}, err
	}
	return pgtype.Int4{Int32: int32(n), Valid: true}, nil
}

// FormatInt4 renders n as text, or "" when NULL.
func FormatInt4(n pgtype.Int4) string {
	if !n.Valid {
		return ""
	}
	return strconv.FormatInt(int64(n.Int32), 10)
}

// ParseCheckbox interprets a form boolean.
// Accepts the usual checkbox encodings; ok is false for blank or unknown input.
func ParseCheckbox(s string) (value, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", "true", "t", "yes", "y", "1":
		return true, true
	case "off", "false", "f", "no", "n", "0":
		return false, true
	default:
		return false, false
	}
}

// FormatBool renders a boolean the way exported files spell it.
func FormatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

// MakeHeaderIndex creates a HeaderIndex from a CSV header row.
// Keys are lowercased for case-insensitive matching.
func MakeHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, h := range header {
		key := strings.ToLower(CleanCell(h))
		if _, dup := idx[key]; dup {
			continue // first occurrence wins
		}
		idx[key] = i
	}
	return idx
}

// CleanCell removes common CSV artifacts from a cell value:
// surrounding whitespace, an Excel formula prefix (="...") and stray quotes.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	return strings.Trim(s, `"'`)
}

package core

// validation.go checks the flat field set before any entity is built.
//
// Validate walks FieldSpecs in form order and collects every problem per
// field, so the caller can show them all at once. On success it returns the
// cleaned values: trimmed text, canonical booleans ("True"/"False"),
// canonical enum labels and scheme-qualified URLs. Blank numeric inputs are
// removed from the cleaned set so Decode treats them as absent.

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

const (
	msgRequired      = "This field is required."
	msgEmail         = "Enter a valid email address."
	msgURL           = "Enter a valid URL."
	msgNumber        = "Enter a number."
	msgWholeNumber   = "Enter a whole number."
	msgBool          = "Enter True or False."
	msgMaxLength     = "Ensure this value has at most %d characters (it has %d)."
	msgMaxDigits     = "Ensure that there are no more than %d digits in total."
	msgDecimalPlaces = "Ensure that there are no more than %d decimal places."
	msgWholeDigits   = "Ensure that there are no more than %d digits before the decimal point."
	msgChoice        = "Select a valid choice. %s is not one of the available choices."
)

var validate = validator.New()

// allowedURLSchemes mirrors what browsers and mail clients treat as links.
var allowedURLSchemes = map[string]bool{"http": true, "https": true, "ftp": true, "ftps": true}

// FieldErrors maps a field name to its ordered validation messages.
type FieldErrors map[string][]string

func (fe FieldErrors) add(field, msg string) {
	fe[field] = append(fe[field], msg)
}

// Validate checks values submitted through the web form.
func Validate(v Values) (Values, error) {
	return validateValues(v, false)
}

// ValidateImport checks values read from an import row. Only Name is
// required; everything else is checked as in Validate when present.
func ValidateImport(v Values) (Values, error) {
	return validateValues(v, true)
}

func validateValues(v Values, importMode bool) (Values, error) {
	errs := make(FieldErrors)
	cleaned := make(Values, len(v))

	for _, f := range FieldSpecs {
		raw := v.Get(f.Name)
		required := f.Required && (!importMode || f.Name == "Name")

		if raw == "" {
			if required {
				errs.add(f.Name, msgRequired)
			}
			if f.Type != FieldDecimal && f.Type != FieldInteger && f.Type != FieldBool {
				cleaned[f.Name] = ""
			}
			continue
		}

		if out, ok := cleanField(f, raw, errs); ok {
			cleaned[f.Name] = out
		}
	}

	if len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}
	return cleaned, nil
}

// cleanField validates one non-blank value and returns its cleaned form.
func cleanField(f FieldSpec, raw string, errs FieldErrors) (string, bool) {
	switch f.Type {
	case FieldBool:
		b, ok := ParseCheckbox(raw)
		if !ok {
			errs.add(f.Name, msgBool)
			return "", false
		}
		return FormatBool(b), true

	case FieldDecimal:
		d, err := ParseDecimal(raw)
		if err != nil {
			errs.add(f.Name, msgNumber)
			return "", false
		}
		digits, decimals := DecimalDigits(d)
		whole := digits - decimals
		ok := true
		if digits > f.MaxDigits {
			errs.add(f.Name, fmt.Sprintf(msgMaxDigits, f.MaxDigits))
			ok = false
		}
		if decimals > f.DecimalPlaces {
			errs.add(f.Name, fmt.Sprintf(msgDecimalPlaces, f.DecimalPlaces))
			ok = false
		}
		if ok && whole > f.MaxDigits-f.DecimalPlaces {
			errs.add(f.Name, fmt.Sprintf(msgWholeDigits, f.MaxDigits-f.DecimalPlaces))
			ok = false
		}
		return d.String(), ok

	case FieldInteger:
		n, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			errs.add(f.Name, msgWholeNumber)
			return "", false
		}
		return strconv.FormatInt(n, 10), true
	}

	out := raw
	ok := true
	if f.MaxLength > 0 {
		if n := utf8.RuneCountInString(raw); n > f.MaxLength {
			errs.add(f.Name, fmt.Sprintf(msgMaxLength, f.MaxLength, n))
			ok = false
		}
	}

	switch f.Type {
	case FieldEmail:
		if validate.Var(raw, "email") != nil {
			errs.add(f.Name, msgEmail)
			ok = false
		}
	case FieldURL:
		out = withDefaultScheme(raw)
		if !validURL(out) {
			errs.add(f.Name, msgURL)
			ok = false
		}
	case FieldEnum:
		out = canonicalChoice(raw, f.Choices)
		if !slices.Contains(f.Choices, out) {
			errs.add(f.Name, fmt.Sprintf(msgChoice, raw))
			ok = false
		}
	}
	return out, ok
}

// withDefaultScheme prefixes scheme-less input with http://, the way
// browsers complete a typed address.
func withDefaultScheme(s string) string {
	if strings.Contains(s, "://") {
		return s
	}
	return "http://" + s
}

func validURL(s string) bool {
	if validate.Var(s, "url") != nil {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return allowedURLSchemes[strings.ToLower(u.Scheme)] && u.Host != ""
}

package core

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"testing"
)

// validForm is the minimum a web submission needs.
func validForm() Values {
	return Values{
		"Name":    "Acme",
		"Address": "1 Main St",
		"City":    "Springfield",
		"State":   "IL",
		"Zip":     "62701",
		"Country": "USA",
	}
}

func with(v Values, kv ...string) Values {
	out := make(Values, len(v)+len(kv)/2)
	for k, val := range v {
		out[k] = val
	}
	for i := 0; i+1 < len(kv); i += 2 {
		out[kv[i]] = kv[i+1]
	}
	return out
}

func fieldErrors(t *testing.T, err error) FieldErrors {
	t.Helper()
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	return ve.Fields
}

func TestValidate_Scenario(t *testing.T) {
	// Name, address lines and a blank priority: the record is accepted and
	// the priority falls back to its default.
	in := with(validForm(), "DefaultPriority", "", "CreditLimit", "", "Email", "")

	cleaned, err := Validate(in)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if _, ok := cleaned["DefaultPriority"]; ok {
		t.Error("blank DefaultPriority should be absent after validation")
	}
	if _, ok := cleaned["CreditLimit"]; ok {
		t.Error("blank CreditLimit should be absent after validation")
	}

	r := Decode(cleaned)
	if r.Profile.DefaultPriority.Int32 != 5 || !r.Profile.DefaultPriority.Valid {
		t.Errorf("DefaultPriority = %+v, want 5", r.Profile.DefaultPriority)
	}
	if !r.Profile.Active {
		t.Error("Active should default to true")
	}
	if r.Address.City != "Springfield" || r.Address.AddressName != "" {
		t.Errorf("address = %+v", r.Address)
	}
}

func TestValidate_Required(t *testing.T) {
	_, err := Validate(Values{"Name": "  "})
	fe := fieldErrors(t, err)

	for _, name := range []string{"Name", "Address", "City", "State", "Zip", "Country"} {
		if !slices.Equal(fe[name], []string{msgRequired}) {
			t.Errorf("%s errors = %v, want required", name, fe[name])
		}
	}
	if _, ok := fe["AddressName"]; ok {
		t.Error("AddressName should be optional")
	}
	if _, ok := fe["Email"]; ok {
		t.Error("Email should be optional")
	}
}

func TestValidate_FieldRules(t *testing.T) {
	tests := []struct {
		name    string
		field   string
		value   string
		wantErr string // empty means valid
		wantOut string // cleaned value when valid
	}{
		{"email ok", "Email", "a@acme.test", "", "a@acme.test"},
		{"email bad", "Email", "not-an-email", msgEmail, ""},
		{"web gets scheme", "Web", "acme.test", "", "http://acme.test"},
		{"web https", "Web", "https://acme.test/contact", "", "https://acme.test/contact"},
		{"url bad scheme", "URL", "mailto://acme.test", msgURL, ""},
		{"url garbage", "URL", "http://", msgURL, ""},
		{"credit limit ok", "CreditLimit", "12345678.90", "", "12345678.9"},
		{"credit limit negative", "CreditLimit", "-250.5", "", "-250.5"},
		{"credit limit thousands separator", "CreditLimit", "1,000", msgNumber, ""},
		{"credit limit dollar", "CreditLimit", "$10", msgNumber, ""},
		{"credit limit accounting negative", "CreditLimit", "(3)", msgNumber, ""},
		{"tax rate decimal comma", "TaxRate", "1,5", msgNumber, ""},
		{"tax rate euro", "TaxRate", "1€", msgNumber, ""},
		{"tax rate parenthesised", "TaxRate", "(3)", msgNumber, ""},
		{"credit limit not a number", "CreditLimit", "lots", msgNumber, ""},
		{"credit limit too many places", "CreditLimit", "1.234", fmt.Sprintf(msgDecimalPlaces, 2), ""},
		{"credit limit too many digits", "CreditLimit", "12345678901", fmt.Sprintf(msgMaxDigits, 10), ""},
		{"credit limit too many whole digits", "CreditLimit", "123456789.1", fmt.Sprintf(msgWholeDigits, 8), ""},
		{"tax rate ok", "TaxRate", "8.125", "", "8.125"},
		{"tax rate whole digits", "TaxRate", "123.5", fmt.Sprintf(msgWholeDigits, 2), ""},
		{"priority ok", "DefaultPriority", "10", "", "10"},
		{"priority fraction", "DefaultPriority", "1.5", msgWholeNumber, ""},
		{"priority overflow", "DefaultPriority", "9999999999", msgWholeNumber, ""},
		{"address type canonical", "AddressType", "home", "", "Home"},
		{"address type unknown", "AddressType", "Castle", fmt.Sprintf(msgChoice, "Castle"), ""},
		{"checkbox on", "TaxExempt", "on", "", "True"},
		{"checkbox 0", "Active", "0", "", "False"},
		{"checkbox junk", "Active", "perhaps", msgBool, ""},
		{"mobile too long", "Mobile", strings.Repeat("5", 21), fmt.Sprintf(msgMaxLength, 20, 21), ""},
		{"number at limit", "Number", strings.Repeat("A", 50), "", strings.Repeat("A", 50)},
		{"name multibyte at limit", "Name", strings.Repeat("é", 255), "", strings.Repeat("é", 255)},
		{"form-only main too long", "Main", strings.Repeat("1", 21), fmt.Sprintf(msgMaxLength, 20, 21), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleaned, err := Validate(with(validForm(), tt.field, tt.value))
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate: %v", err)
				}
				if cleaned[tt.field] != tt.wantOut {
					t.Errorf("cleaned %s = %q, want %q", tt.field, cleaned[tt.field], tt.wantOut)
				}
				return
			}
			fe := fieldErrors(t, err)
			if !slices.Contains(fe[tt.field], tt.wantErr) {
				t.Errorf("%s errors = %v, want %q", tt.field, fe[tt.field], tt.wantErr)
			}
			if len(fe) != 1 {
				t.Errorf("unexpected extra errors: %v", fe)
			}
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	_, err := Validate(with(validForm(), "Email", "bad", "CreditLimit", "x", "AddressType", "Castle"))
	fe := fieldErrors(t, err)

	if len(fe) != 3 {
		t.Fatalf("got %d failing fields, want 3: %v", len(fe), fe)
	}
	msg := err.Error()
	// Error text lists fields in form order.
	iType, iEmail, iCredit := strings.Index(msg, "AddressType"), strings.Index(msg, "Email"), strings.Index(msg, "CreditLimit")
	if !(iType < iEmail && iEmail < iCredit) {
		t.Errorf("error text not in form order: %s", msg)
	}
}

func TestValidateImport(t *testing.T) {
	cleaned, err := ValidateImport(Values{"Name": "Acme"})
	if err != nil {
		t.Fatalf("ValidateImport: %v", err)
	}
	if cleaned["Name"] != "Acme" {
		t.Errorf("Name = %q", cleaned["Name"])
	}

	_, err = ValidateImport(Values{"City": "Springfield"})
	fe := fieldErrors(t, err)
	if len(fe) != 1 || fe["Name"] == nil {
		t.Errorf("import without Name: %v", fe)
	}

	_, err = ValidateImport(Values{"Name": "Acme", "Email": "nope"})
	fe = fieldErrors(t, err)
	if fe["Email"] == nil {
		t.Errorf("import should still check email: %v", fe)
	}
}

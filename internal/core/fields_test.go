package core

import (
	"slices"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

func TestFormFieldOrder(t *testing.T) {
	want := []string{
		"Name",
		"AddressName", "AddressContact", "AddressType", "IsDefault", "Address", "City", "State", "Zip", "Country",
		"Residential", "Main", "Home", "Work", "Mobile", "Fax", "Email", "Pager", "Web", "Other",
		"Group", "CreditLimit", "Status", "Active",
		"TaxRate", "Salesman", "DefaultPriority", "Number", "PaymentTerms", "TaxExempt", "TaxExemptNumber",
		"URL", "CarrierName", "CarrierService", "ShippingTerms",
		"AlertNotes", "QuickBooksClassName", "ToBeEmailed", "ToBePrinted", "IssuableStatus",
	}
	if got := FormFieldOrder(); !slices.Equal(got, want) {
		t.Errorf("FormFieldOrder() =\n%v\nwant\n%v", got, want)
	}
}

func TestFieldSpecs_FormOnly(t *testing.T) {
	formOnly := []string{"Residential", "Main", "Home", "Work", "Other"}
	for _, f := range FieldSpecs {
		wantFormOnly := slices.Contains(formOnly, f.Name)
		if f.Persisted() == wantFormOnly {
			t.Errorf("%s: Persisted() = %v", f.Name, f.Persisted())
		}
		if f.Persisted() && (f.get == nil || f.set == nil) {
			t.Errorf("%s: persisted field without accessors", f.Name)
		}
	}
}

func TestLookupField(t *testing.T) {
	f, ok := LookupField("CreditLimit")
	if !ok {
		t.Fatal("CreditLimit not found")
	}
	if f.Type != FieldDecimal || f.MaxDigits != 10 || f.DecimalPlaces != 2 {
		t.Errorf("CreditLimit spec = %+v", f)
	}
	if _, ok := LookupField("Nope"); ok {
		t.Error("LookupField(Nope) should fail")
	}
}

func TestDecode_Defaults(t *testing.T) {
	r := Decode(Values{"Name": "Acme"})

	if r.Address == nil || r.ShippingTax == nil {
		t.Fatal("Decode must always allocate Address and ShippingTax")
	}
	if !r.Profile.Active {
		t.Error("Active should default to true")
	}
	if r.Address.IsDefault || r.ShippingTax.TaxExempt || r.ShippingTax.ToBeEmailed || r.ShippingTax.ToBePrinted {
		t.Error("boolean flags other than Active should default to false")
	}
	if r.Profile.DefaultPriority != (pgtype.Int4{Int32: 5, Valid: true}) {
		t.Errorf("DefaultPriority = %+v, want 5", r.Profile.DefaultPriority)
	}
	if r.Profile.CreditLimit.Valid || r.ShippingTax.TaxRate.Valid {
		t.Error("CreditLimit and TaxRate should be NULL")
	}
	if r.Profile.Number.Valid {
		t.Error("blank Number should be NULL")
	}
}

func TestDecode_Values(t *testing.T) {
	r := Decode(Values{
		"Name":            " Acme ",
		"AddressType":     "work",
		"IsDefault":       "True",
		"Address":         "1 Main St",
		"CreditLimit":     "1500.50",
		"TaxRate":         "8.25",
		"DefaultPriority": "2",
		"Number":          "ACC-1",
		"Active":          "False",
		"Residential":     "True",
		"Main":            "555-0100",
	})

	if r.Profile.Name != "Acme" {
		t.Errorf("Name = %q", r.Profile.Name)
	}
	if r.Address.AddressType != "Work" {
		t.Errorf("AddressType = %q, want canonical Work", r.Address.AddressType)
	}
	if !r.Address.IsDefault {
		t.Error("IsDefault should be true")
	}
	if r.Profile.Active {
		t.Error("Active should be false")
	}
	if !r.Profile.CreditLimit.Valid || !r.Profile.CreditLimit.Decimal.Equal(decimal.RequireFromString("1500.5")) {
		t.Errorf("CreditLimit = %v", r.Profile.CreditLimit)
	}
	if got := FormatNullDecimal(r.ShippingTax.TaxRate); got != "8.25" {
		t.Errorf("TaxRate = %q", got)
	}
	if r.Profile.DefaultPriority.Int32 != 2 {
		t.Errorf("DefaultPriority = %+v", r.Profile.DefaultPriority)
	}
	if r.Profile.Number.String != "ACC-1" {
		t.Errorf("Number = %+v", r.Profile.Number)
	}
}

func TestFlatten_RoundTrip(t *testing.T) {
	in := Values{
		"Name":            "Acme",
		"AddressName":     "HQ",
		"AddressType":     "Main",
		"IsDefault":       "True",
		"Address":         "1 Main St",
		"City":            "Springfield",
		"Web":             "http://acme.test",
		"CreditLimit":     "99.99",
		"Active":          "True",
		"TaxRate":         "0.125",
		"DefaultPriority": "3",
		"Number":          "ACC-9",
		"TaxExempt":       "False",
		"CarrierName":     "UPS",
	}
	out := Flatten(Decode(in))

	for k, want := range in {
		if out[k] != want {
			t.Errorf("%s = %q, want %q", k, out[k], want)
		}
	}
	for _, name := range []string{"Residential", "Main", "Home", "Work", "Other"} {
		if _, ok := out[name]; ok {
			t.Errorf("form-only field %s should not be flattened", name)
		}
	}
}

func TestFlatten_MissingChildren(t *testing.T) {
	out := Flatten(Record{Profile: Profile{Name: "Lonely", Active: true}})

	if out["City"] != "" || out["TaxRate"] != "" {
		t.Errorf("missing rows should flatten to blank text, got City=%q TaxRate=%q", out["City"], out["TaxRate"])
	}
	if out["IsDefault"] != "False" || out["TaxExempt"] != "False" {
		t.Errorf("missing rows should flatten booleans to False, got %q %q", out["IsDefault"], out["TaxExempt"])
	}
}

func TestExportHeader(t *testing.T) {
	want := "Name,Group,Account Number,Mobile,Email,Status,Credit Limit,Payment Terms,Salesman,Priority," +
		"Alert Notes,Address Name,Address Contact,Address Type,Address,City,State,Zip,Country,Tax Rate," +
		"Tax Exempt,Tax Exempt Number,URL,Carrier,Shipping Terms,Is Default,Active"
	if got := strings.Join(ExportHeader(), ","); got != want {
		t.Errorf("ExportHeader() =\n%s\nwant\n%s", got, want)
	}
}

func TestExportRow(t *testing.T) {
	r := Decode(Values{
		"Name":        "Acme",
		"Address":     "1 Main St",
		"City":        "Springfield",
		"CreditLimit": "250",
		"CarrierName": "FedEx",
		"IsDefault":   "True",
	})
	row := ExportRow(r)
	if len(row) != len(ExportHeader()) {
		t.Fatalf("row has %d cells, header %d", len(row), len(ExportHeader()))
	}

	byHeader := make(map[string]string, len(row))
	for i, h := range ExportHeader() {
		byHeader[h] = row[i]
	}
	checks := map[string]string{
		"Name":           "Acme",
		"Account Number": "",
		"Credit Limit":   "250",
		"Priority":       "5",
		"Carrier":        "FedEx",
		"Tax Rate":       "",
		"Tax Exempt":     "False",
		"Is Default":     "True",
		"Active":         "True",
	}
	for h, want := range checks {
		if byHeader[h] != want {
			t.Errorf("%s = %q, want %q", h, byHeader[h], want)
		}
	}
}

func TestExportRow_NoChildren(t *testing.T) {
	row := ExportRow(Record{Profile: Profile{Name: "Solo"}})
	for i, h := range ExportHeader() {
		switch h {
		case "Name":
			if row[i] != "Solo" {
				t.Errorf("Name = %q", row[i])
			}
		case "Tax Exempt", "Is Default", "Active":
			if row[i] != "False" {
				t.Errorf("%s = %q, want False", h, row[i])
			}
		default:
			if row[i] != "" {
				t.Errorf("%s = %q, want empty", h, row[i])
			}
		}
	}
}

func TestImportValues(t *testing.T) {
	header := []string{"NAME", "Tax Exempt", "Is Default", "Priority", "City", "Unknown"}
	idx := MakeHeaderIndex(header)

	tests := []struct {
		name string
		row  []string
		want Values
	}{
		{
			name: "exact True only",
			row:  []string{"Acme", "True", "yes", "7", " Springfield ", "x"},
			want: Values{"Name": "Acme", "TaxExempt": "True", "IsDefault": "False", "DefaultPriority": "7", "City": "Springfield"},
		},
		{
			name: "lower-case true is false",
			row:  []string{"Acme", "true", "", "", "", ""},
			want: Values{"Name": "Acme", "TaxExempt": "False", "IsDefault": "False", "DefaultPriority": "", "City": ""},
		},
		{
			name: "short row leaves trailing columns absent",
			row:  []string{"Acme", "True"},
			want: Values{"Name": "Acme", "TaxExempt": "True"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ImportValues(tt.row, idx)
			if len(got) != len(tt.want) {
				t.Fatalf("ImportValues() = %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("%s = %q, want %q", k, got[k], v)
				}
			}
			if _, ok := got["Active"]; ok {
				t.Error("missing Active column must stay absent")
			}
		})
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	orig := Decode(Values{
		"Name":            "Acme",
		"Group":           "Wholesale",
		"Number":          "ACC-1",
		"CreditLimit":     "1000.5",
		"DefaultPriority": "1",
		"AddressType":     "Home",
		"Address":         "1 Main St",
		"TaxRate":         "7.5",
		"TaxExempt":       "True",
		"Active":          "False",
	})

	idx := MakeHeaderIndex(ExportHeader())
	cleaned, err := ValidateImport(ImportValues(ExportRow(orig), idx))
	if err != nil {
		t.Fatalf("ValidateImport: %v", err)
	}
	back := Decode(cleaned)

	a, b := Flatten(orig), Flatten(back)
	for _, h := range exportColumns {
		if a[h.Field] != b[h.Field] {
			t.Errorf("%s: %q became %q", h.Field, a[h.Field], b[h.Field])
		}
	}
}

func TestRecordSummary(t *testing.T) {
	r := Record{
		Profile: Profile{ID: 4, Name: "Acme", Mobile: "555", Email: "a@acme.test"},
		Address: &Address{Address: "1 Main St", City: "Springfield", State: "IL", Zip: "62701", AddressContact: "Wile"},
	}
	want := Summary{
		ID: 4, LocationName: "Acme", Address: "1 Main St", City: "Springfield",
		State: "IL", Zip: "62701", ContactPerson: "Wile", Phone: "555", Email: "a@acme.test",
	}
	if got := r.Summary(); got != want {
		t.Errorf("Summary() = %+v, want %+v", got, want)
	}

	if got := (Record{Profile: Profile{ID: 5, Name: "Solo"}}).Summary(); got.Address != "" || got.LocationName != "Solo" {
		t.Errorf("Summary() without address = %+v", got)
	}
}

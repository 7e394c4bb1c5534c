package core

import (
	"strings"
)

// FieldSpec describes one flat field: how it is rendered, validated,
// stored and exchanged in CSV files.
type FieldSpec struct {
	Name          string // form key
	Label         string
	Entity        Entity
	Type          FieldType
	Required      bool
	MaxLength     int
	MaxDigits     int
	DecimalPlaces int
	Choices       []string
	Default       string // applied by Decode when the value is blank or absent
	Help          string

	get func(*Record) string
	set func(*Record, string)
}

// Persisted reports whether the field has a column.
func (f FieldSpec) Persisted() bool {
	return f.Entity != EntityFormOnly
}

func profileText(get func(*Profile) *string) (func(*Record) string, func(*Record, string)) {
	return func(r *Record) string { return *get(&r.Profile) },
		func(r *Record, v string) { *get(&r.Profile) = v }
}

func addressText(get func(*Address) *string) (func(*Record) string, func(*Record, string)) {
	return func(r *Record) string {
			if r.Address == nil {
				return ""
			}
			return *get(r.Address)
		}, func(r *Record, v string) {
			*get(r.address()) = v
		}
}

func shippingText(get func(*ShippingTax) *string) (func(*Record) string, func(*Record, string)) {
	return func(r *Record) string {
			if r.ShippingTax == nil {
				return ""
			}
			return *get(r.ShippingTax)
		}, func(r *Record, v string) {
			*get(r.shipping()) = v
		}
}

func addressBool(get func(*Address) *bool) (func(*Record) string, func(*Record, string)) {
	return func(r *Record) string {
			if r.Address == nil {
				return FormatBool(false)
			}
			return FormatBool(*get(r.Address))
		}, func(r *Record, v string) {
			b, _ := ParseCheckbox(v)
			*get(r.address()) = b
		}
}

func shippingBool(get func(*ShippingTax) *bool) (func(*Record) string, func(*Record, string)) {
	return func(r *Record) string {
			if r.ShippingTax == nil {
				return FormatBool(false)
			}
			return FormatBool(*get(r.ShippingTax))
		}, func(r *Record, v string) {
			b, _ := ParseCheckbox(v)
			*get(r.shipping()) = b
		}
}

func (r *Record) address() *Address {
	if r.Address == nil {
		r.Address = &Address{}
	}
	return r.Address
}

func (r *Record) shipping() *ShippingTax {
	if r.ShippingTax == nil {
		r.ShippingTax = &ShippingTax{}
	}
	return r.ShippingTax
}

func textField(name, label string, entity Entity, maxLen int, required bool,
	get func(*Record) string, set func(*Record, string)) FieldSpec {
	return FieldSpec{Name: name, Label: label, Entity: entity, Type: FieldText,
		MaxLength: maxLen, Required: required, get: get, set: set}
}

func withType(f FieldSpec, t FieldType) FieldSpec {
	f.Type = t
	return f
}

func formOnly(name, label string, t FieldType, maxLen int) FieldSpec {
	return FieldSpec{Name: name, Label: label, Entity: EntityFormOnly, Type: t, MaxLength: maxLen}
}

// FieldSpecs is the ordered list of every flat field. Form rendering, the
// mapper, export and import all read it.
var FieldSpecs = buildFieldSpecs()

func buildFieldSpecs() []FieldSpec {
	var specs []FieldSpec
	add := func(f FieldSpec) { specs = append(specs, f) }

	g, s := profileText(func(p *Profile) *string { return &p.Name })
	add(textField("Name", "Name", EntityProfile, 255, true, g, s))

	// Address
	g, s = addressText(func(a *Address) *string { return &a.AddressName })
	f := textField("AddressName", "Address name", EntityAddress, 255, false, g, s)
	f.Help = "e.g., 'Primary Shipping', 'Billing'"
	add(f)
	g, s = addressText(func(a *Address) *string { return &a.AddressContact })
	add(textField("AddressContact", "Address contact", EntityAddress, 255, false, g, s))
	g, s = addressText(func(a *Address) *string { return &a.AddressType })
	f = withType(textField("AddressType", "Address type", EntityAddress, 50, false, g, s), FieldEnum)
	f.Choices = AddressTypes
	add(f)
	g, s = addressBool(func(a *Address) *bool { return &a.IsDefault })
	add(FieldSpec{Name: "IsDefault", Label: "Is default", Entity: EntityAddress, Type: FieldBool,
		Default: "False", get: g, set: s})
	g, s = addressText(func(a *Address) *string { return &a.Address })
	add(textField("Address", "Address", EntityAddress, 255, true, g, s))
	g, s = addressText(func(a *Address) *string { return &a.City })
	add(textField("City", "City", EntityAddress, 100, true, g, s))
	g, s = addressText(func(a *Address) *string { return &a.State })
	add(textField("State", "State", EntityAddress, 100, true, g, s))
	g, s = addressText(func(a *Address) *string { return &a.Zip })
	add(textField("Zip", "Zip", EntityAddress, 20, true, g, s))
	g, s = addressText(func(a *Address) *string { return &a.Country })
	add(textField("Country", "Country", EntityAddress, 100, true, g, s))

	// Contact
	add(formOnly("Residential", "Residential", FieldBool, 0))
	add(formOnly("Main", "Main", FieldText, 20))
	add(formOnly("Home", "Home", FieldText, 20))
	add(formOnly("Work", "Work", FieldText, 20))
	g, s = profileText(func(p *Profile) *string { return &p.Mobile })
	add(textField("Mobile", "Mobile", EntityProfile, 20, false, g, s))
	g, s = addressText(func(a *Address) *string { return &a.Fax })
	add(textField("Fax", "Fax", EntityAddress, 20, false, g, s))
	g, s = profileText(func(p *Profile) *string { return &p.Email })
	add(withType(textField("Email", "Email", EntityProfile, 254, false, g, s), FieldEmail))
	g, s = addressText(func(a *Address) *string { return &a.Pager })
	add(textField("Pager", "Pager", EntityAddress, 20, false, g, s))
	g, s = addressText(func(a *Address) *string { return &a.Web })
	add(withType(textField("Web", "Web", EntityAddress, 200, false, g, s), FieldURL))
	add(formOnly("Other", "Other", FieldText, 100))

	// Profile
	g, s = profileText(func(p *Profile) *string { return &p.Group })
	add(textField("Group", "Group", EntityProfile, 100, false, g, s))
	add(FieldSpec{Name: "CreditLimit", Label: "Credit limit", Entity: EntityProfile, Type: FieldDecimal,
		MaxDigits: 10, DecimalPlaces: 2,
		get: func(r *Record) string { return FormatNullDecimal(r.Profile.CreditLimit) },
		set: func(r *Record, v string) { r.Profile.CreditLimit = ToNullDecimal(v) }})
	g, s = profileText(func(p *Profile) *string { return &p.Status })
	f = textField("Status", "Status", EntityProfile, 100, false, g, s)
	f.Help = "e.g., 'Normal'"
	add(f)
	add(FieldSpec{Name: "Active", Label: "Active", Entity: EntityProfile, Type: FieldBool, Default: "True",
		get: func(r *Record) string { return FormatBool(r.Profile.Active) },
		set: func(r *Record, v string) { r.Profile.Active, _ = ParseCheckbox(v) }})

	// Shipping and tax
	add(FieldSpec{Name: "TaxRate", Label: "Tax rate", Entity: EntityShipping, Type: FieldDecimal,
		MaxDigits: 5, DecimalPlaces: 3,
		get: func(r *Record) string {
			if r.ShippingTax == nil {
				return ""
			}
			return FormatNullDecimal(r.ShippingTax.TaxRate)
		},
		set: func(r *Record, v string) { r.shipping().TaxRate = ToNullDecimal(v) }})
	g, s = profileText(func(p *Profile) *string { return &p.Salesman })
	add(textField("Salesman", "Salesman", EntityProfile, 150, false, g, s))
	add(FieldSpec{Name: "DefaultPriority", Label: "Default priority", Entity: EntityProfile, Type: FieldInteger,
		Default: "5",
		get:     func(r *Record) string { return FormatInt4(r.Profile.DefaultPriority) },
		set:     func(r *Record, v string) { r.Profile.DefaultPriority, _ = ParseInt4(v) }})
	add(FieldSpec{Name: "Number", Label: "Account number", Entity: EntityProfile, Type: FieldText, MaxLength: 50,
		get: func(r *Record) string { return r.Profile.Number.String },
		set: func(r *Record, v string) { r.Profile.Number = ToPgText(v) }})
	g, s = profileText(func(p *Profile) *string { return &p.PaymentTerms })
	add(textField("PaymentTerms", "Payment terms", EntityProfile, 100, false, g, s))
	g, s = shippingBool(func(t *ShippingTax) *bool { return &t.TaxExempt })
	add(FieldSpec{Name: "TaxExempt", Label: "Tax exempt", Entity: EntityShipping, Type: FieldBool,
		Default: "False", get: g, set: s})
	g, s = shippingText(func(t *ShippingTax) *string { return &t.TaxExemptNumber })
	add(textField("TaxExemptNumber", "Tax exempt number", EntityShipping, 100, false, g, s))
	g, s = shippingText(func(t *ShippingTax) *string { return &t.URL })
	add(withType(textField("URL", "URL", EntityShipping, 200, false, g, s), FieldURL))
	g, s = shippingText(func(t *ShippingTax) *string { return &t.CarrierName })
	add(textField("CarrierName", "Carrier name", EntityShipping, 100, false, g, s))
	g, s = shippingText(func(t *ShippingTax) *string { return &t.CarrierService })
	add(textField("CarrierService", "Carrier service", EntityShipping, 100, false, g, s))
	g, s = shippingText(func(t *ShippingTax) *string { return &t.ShippingTerms })
	add(textField("ShippingTerms", "Shipping terms", EntityShipping, 100, false, g, s))

	// Notes and settings
	g, s = profileText(func(p *Profile) *string { return &p.AlertNotes })
	add(withType(textField("AlertNotes", "Alert notes", EntityProfile, 0, false, g, s), FieldTextArea))
	g, s = profileText(func(p *Profile) *string { return &p.QuickBooksClassName })
	add(textField("QuickBooksClassName", "QuickBooks class name", EntityProfile, 255, false, g, s))
	g, s = shippingBool(func(t *ShippingTax) *bool { return &t.ToBeEmailed })
	add(FieldSpec{Name: "ToBeEmailed", Label: "To be emailed", Entity: EntityShipping, Type: FieldBool,
		Default: "False", get: g, set: s})
	g, s = shippingBool(func(t *ShippingTax) *bool { return &t.ToBePrinted })
	add(FieldSpec{Name: "ToBePrinted", Label: "To be printed", Entity: EntityShipping, Type: FieldBool,
		Default: "False", get: g, set: s})
	g, s = profileText(func(p *Profile) *string { return &p.IssuableStatus })
	add(textField("IssuableStatus", "Issuable status", EntityProfile, 50, false, g, s))

	return specs
}

var fieldIndex = func() map[string]int {
	m := make(map[string]int, len(FieldSpecs))
	for i, f := range FieldSpecs {
		m[f.Name] = i
	}
	return m
}()

// LookupField returns the spec for a form key.
func LookupField(name string) (FieldSpec, bool) {
	i, ok := fieldIndex[name]
	if !ok {
		return FieldSpec{}, false
	}
	return FieldSpecs[i], true
}

// FormFieldOrder returns the form keys in rendering order.
func FormFieldOrder() []string {
	names := make([]string, len(FieldSpecs))
	for i, f := range FieldSpecs {
		names[i] = f.Name
	}
	return names
}

// Decode builds the record triple from flat values.
// Blank or absent fields take the field default. Address and ShippingTax
// are always allocated.
func Decode(v Values) Record {
	r := Record{Address: &Address{}, ShippingTax: &ShippingTax{}}
	for _, f := range FieldSpecs {
		if f.set == nil {
			continue
		}
		raw := v.Get(f.Name)
		if raw == "" {
			raw = f.Default
		}
		f.set(&r, raw)
	}
	if r.Address.AddressType != "" {
		r.Address.AddressType = canonicalChoice(r.Address.AddressType, AddressTypes)
	}
	return r
}

// Flatten is the inverse of Decode for persisted fields.
// Missing Address or ShippingTax rows flatten to blank text and False.
func Flatten(r Record) Values {
	v := make(Values, len(FieldSpecs))
	for _, f := range FieldSpecs {
		if f.get == nil {
			continue
		}
		v[f.Name] = f.get(&r)
	}
	return v
}

// exportColumns is the published CSV column order.
// Header names differ from form keys; import matches on these headers.
var exportColumns = []struct {
	Header string
	Field  string
}{
	{"Name", "Name"},
	{"Group", "Group"},
	{"Account Number", "Number"},
	{"Mobile", "Mobile"},
	{"Email", "Email"},
	{"Status", "Status"},
	{"Credit Limit", "CreditLimit"},
	{"Payment Terms", "PaymentTerms"},
	{"Salesman", "Salesman"},
	{"Priority", "DefaultPriority"},
	{"Alert Notes", "AlertNotes"},
	{"Address Name", "AddressName"},
	{"Address Contact", "AddressContact"},
	{"Address Type", "AddressType"},
	{"Address", "Address"},
	{"City", "City"},
	{"State", "State"},
	{"Zip", "Zip"},
	{"Country", "Country"},
	{"Tax Rate", "TaxRate"},
	{"Tax Exempt", "TaxExempt"},
	{"Tax Exempt Number", "TaxExemptNumber"},
	{"URL", "URL"},
	{"Carrier", "CarrierName"},
	{"Shipping Terms", "ShippingTerms"},
	{"Is Default", "IsDefault"},
	{"Active", "Active"},
}

// ExportHeader returns the CSV header row.
func ExportHeader() []string {
	h := make([]string, len(exportColumns))
	for i, c := range exportColumns {
		h[i] = c.Header
	}
	return h
}

// ExportRow renders one record in ExportHeader order.
func ExportRow(r Record) []string {
	row := make([]string, len(exportColumns))
	for i, c := range exportColumns {
		f, _ := LookupField(c.Field)
		row[i] = f.get(&r)
	}
	return row
}

// ImportValues maps a CSV row back to flat values using the export headers.
// Boolean cells count as true only when they read exactly "True". Columns
// missing from the file are left absent so Decode applies defaults.
func ImportValues(row []string, idx HeaderIndex) Values {
	v := make(Values, len(exportColumns))
	for _, c := range exportColumns {
		pos, ok := idx[strings.ToLower(c.Header)]
		if !ok || pos >= len(row) {
			continue
		}
		cell := strings.TrimSpace(row[pos])
		f, _ := LookupField(c.Field)
		if f.Type == FieldBool {
			cell = FormatBool(cell == "True")
		}
		v[c.Field] = cell
	}
	return v
}

func canonicalChoice(s string, choices []string) string {
	for _, c := range choices {
		if strings.EqualFold(s, c) {
			return c
		}
	}
	return s
}

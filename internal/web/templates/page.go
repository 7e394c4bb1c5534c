// Package templates renders the HTML pages as templ components.
package templates

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/JonMunkholm/customers/internal/core"
	"github.com/a-h/templ"
)

// PageData is everything the index page needs.
type PageData struct {
	Fields  []core.FieldSpec
	Records []core.Summary
}

// section headings, keyed by the first field of each group.
var sections = map[string]string{
	"Name":        "Profile",
	"AddressName": "Address",
	"Residential": "Contact",
	"Group":       "Account",
	"TaxRate":     "Shipping and tax",
	"AlertNotes":  "Notes and settings",
}

var summaryColumns = []struct{ Key, Label string }{
	{"LocationName", "Location name"},
	{"Address", "Address"},
	{"City", "City"},
	{"State", "State"},
	{"Zip", "Zip"},
	{"ContactPerson", "Contact person"},
	{"Phone", "Phone"},
	{"Email", "Email"},
}

const pageHead = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Customers</title>
<style>
body{font-family:system-ui,sans-serif;margin:2rem;color:#222}
fieldset{border:1px solid #ddd;margin-bottom:1rem;display:grid;grid-template-columns:repeat(auto-fill,minmax(16rem,1fr));gap:.5rem 1rem}
label{display:flex;flex-direction:column;font-size:.9rem}
label.check{flex-direction:row;gap:.4rem;align-items:center}
.error{color:#b00020;font-size:.8rem}
.help{color:#666;font-size:.75rem}
#message{margin:1rem 0;font-weight:600}
table{border-collapse:collapse;width:100%;margin-top:1rem}
th,td{border:1px solid #ddd;padding:.3rem .5rem;text-align:left}
</style>
</head>
<body>
<h1>Customers</h1>
<div id="message" role="status"></div>
`

// Page renders the customer form, the bulk data controls and the record
// table. The listing is embedded as JSON and drawn by the page script.
func Page(data PageData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		records := data.Records
		if records == nil {
			records = []core.Summary{}
		}
		return templ.Join(
			templ.Raw(pageHead),
			customerForm(data.Fields),
			importForm(),
			recordTable(),
			templ.JSONScript("initial-data", records),
			templ.Raw("<script>"+pageScript+"</script>\n</body>\n</html>\n"),
		).Render(ctx, w)
	})
}

func write(w io.Writer, parts ...string) error {
	for _, p := range parts {
		if _, err := io.WriteString(w, p); err != nil {
			return err
		}
	}
	return nil
}

type fieldGroup struct {
	Title  string
	Fields []core.FieldSpec
}

// groupFields splits the ordered fields into the page's fieldsets.
func groupFields(fields []core.FieldSpec) []fieldGroup {
	var groups []fieldGroup
	for _, f := range fields {
		if title, ok := sections[f.Name]; ok || len(groups) == 0 {
			groups = append(groups, fieldGroup{Title: title})
		}
		last := &groups[len(groups)-1]
		last.Fields = append(last.Fields, f)
	}
	return groups
}

func customerForm(fields []core.FieldSpec) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := write(w, `<form id="customer-form" method="post" action="/" novalidate>`, "\n"); err != nil {
			return err
		}
		for _, g := range groupFields(fields) {
			if err := fieldSet(g).Render(ctx, w); err != nil {
				return err
			}
		}
		return write(w, `<button type="submit">Save customer</button>`, "\n</form>\n")
	})
}

func fieldSet(g fieldGroup) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := write(w, "<fieldset>"); err != nil {
			return err
		}
		if g.Title != "" {
			if err := write(w, "<legend>", templ.EscapeString(g.Title), "</legend>"); err != nil {
				return err
			}
		}
		if err := write(w, "\n"); err != nil {
			return err
		}
		for _, f := range g.Fields {
			if err := fieldInput(f).Render(ctx, w); err != nil {
				return err
			}
		}
		return write(w, "</fieldset>\n")
	})
}

// fieldInput renders one labelled control. Every non-checkbox control
// carries an error slot the page script fills from the JSON response.
func fieldInput(f core.FieldSpec) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		name := templ.EscapeString(f.Name)
		label := templ.EscapeString(f.Label)
		if f.Required {
			label += " *"
		}
		attrs := inputAttrs(f)

		var err error
		switch f.Type {
		case core.FieldBool:
			checked := ""
			if f.Default == "True" {
				checked = " checked"
			}
			return write(w, `<label class="check"><input type="checkbox"`, attrs, checked, "> ", label, "</label>\n")
		case core.FieldEnum:
			err = writeSelect(w, label, attrs, f.Choices)
		case core.FieldTextArea:
			err = write(w, "<label>", label, `<textarea rows="3"`, attrs, "></textarea>")
		default:
			err = write(w, "<label>", label, `<input type="`, inputType(f.Type), `"`, attrs, stepAttr(f), valueAttr(f), ">")
		}
		if err != nil {
			return err
		}

		if f.Help != "" {
			if err := write(w, `<span class="help">`, templ.EscapeString(f.Help), "</span>"); err != nil {
				return err
			}
		}
		return write(w, `<span class="error" data-error-for="`, name, `"></span></label>`, "\n")
	})
}

func writeSelect(w io.Writer, label, attrs string, choices []string) error {
	if err := write(w, "<label>", label, "<select", attrs, `><option value="">---------</option>`); err != nil {
		return err
	}
	for _, c := range choices {
		c = templ.EscapeString(c)
		if err := write(w, `<option value="`, c, `">`, c, "</option>"); err != nil {
			return err
		}
	}
	return write(w, "</select>")
}

func inputAttrs(f core.FieldSpec) string {
	name := templ.EscapeString(f.Name)
	attrs := ` name="` + name + `" id="f-` + name + `"`
	if f.Required {
		attrs += " required"
	}
	if f.MaxLength > 0 {
		attrs += ` maxlength="` + strconv.Itoa(f.MaxLength) + `"`
	}
	return attrs
}

func inputType(t core.FieldType) string {
	switch t {
	case core.FieldEmail:
		return "email"
	case core.FieldURL:
		return "url"
	case core.FieldDecimal, core.FieldInteger:
		return "number"
	default:
		return "text"
	}
}

func stepAttr(f core.FieldSpec) string {
	switch {
	case f.Type == core.FieldInteger:
		return ` step="1"`
	case f.Type == core.FieldDecimal && f.DecimalPlaces > 0:
		return ` step="0.` + strings.Repeat("0", f.DecimalPlaces-1) + `1"`
	}
	return ""
}

func valueAttr(f core.FieldSpec) string {
	if f.Default == "" {
		return ""
	}
	return ` value="` + templ.EscapeString(f.Default) + `"`
}

func importForm() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return write(w, `<h2>Bulk data</h2>
<p><a href="/export_csv/">Export CSV</a> · <a href="/export_xlsx/">Export Excel</a></p>
<form id="import-form" method="post" action="/import_csv/" enctype="multipart/form-data">
<input type="file" name="csv_file" accept=".csv,text/csv" required>
<button type="submit">Import CSV</button>
</form>
`)
	})
}

// recordTable renders the empty listing; rows are added client side.
func recordTable() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := write(w, "<h2>Records</h2>\n", `<table id="records"><thead><tr>`); err != nil {
			return err
		}
		for _, c := range summaryColumns {
			if err := write(w, "<th>", templ.EscapeString(c.Label), "</th>"); err != nil {
				return err
			}
		}
		return write(w, "</tr></thead><tbody></tbody></table>\n")
	})
}

// ErrorPage renders a minimal HTML error for non-script clients.
func ErrorPage(status int, message, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return write(w,
			"<!DOCTYPE html>\n<html><head><title>Error ", strconv.Itoa(status), "</title></head><body>",
			"<h1>", templ.EscapeString(message), "</h1>",
			"<p>Code: ", templ.EscapeString(code), "</p>",
			`<p><a href="/">Back</a></p></body></html>`, "\n")
	})
}

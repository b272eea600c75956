// Package report runs the read-only SQL reports over the loaded healthcare
// and doctors tables. Each report prints as a table and is saved next to
// the others as <name>_results.csv.
package report

import (
	"bytes"
	"embed"
	"fmt"
	"sort"
	"text/template"

	"healthetl/internal/schema"
)

//go:embed sql/*.sql
var sqlFS embed.FS

var templates = template.Must(template.New("report").ParseFS(sqlFS, "sql/*.sql"))

// Params carries the user-supplied values of parameterized reports.
type Params struct {
	Condition string
}

// Definition describes one report.
type Definition struct {
	Name  string
	Title string
	// Args returns the positional bind arguments; nil for static reports.
	Args func(Params) []any
}

var catalog = []Definition{
	{Name: "group_by", Title: "Average billing per medical condition"},
	{Name: "having", Title: "Conditions with average billing above 20000"},
	{Name: "inner_join", Title: "Patients per condition and known doctor"},
	{Name: "left_join", Title: "Patients per condition and doctor, specialty when known"},
	{Name: "right_join", Title: "Every doctor with their patients per condition"},
	{Name: "full_join", Title: "Patients and doctors, matched or not"},
	{Name: "self_join", Title: "Patient pairs sharing a condition"},
	{Name: "union", Title: "Everyone by name, patient or doctor"},
	{Name: "exists", Title: "Doctors with at least one patient"},
	{Name: "any_all", Title: "Patients billed above any Arthritis patient"},
	{Name: "case", Title: "Billing category per patient"},
	{Name: "comments", Title: "Patients with billing above 20000"},
	{Name: "operators", Title: "High-billing Smiths with Diabetes or Hypertension"},
	{Name: "null_functions", Title: "Patients with condition, Unknown when missing"},
	{
		Name:  "by_condition",
		Title: "Patients with a given condition",
		Args:  func(p Params) []any { return []any{p.Condition} },
	},
}

// List returns every report definition ordered by name.
func List() []Definition {
	out := make([]Definition, len(catalog))
	copy(out, catalog)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Names returns the report names in catalog order.
func Names() []string {
	names := make([]string, len(catalog))
	for i, d := range catalog {
		names[i] = d.Name
	}
	return names
}

// Lookup finds a report by name.
func Lookup(name string) (Definition, bool) {
	for _, d := range catalog {
		if d.Name == name {
			return d, true
		}
	}
	return Definition{}, false
}

type tables struct {
	Healthcare string
	Doctors    string
}

// SQL renders the query text of d against the tables of c. Placeholders are
// '?' and must be rebound for the target driver.
func (d Definition) SQL(c schema.Contract) (string, error) {
	var buf bytes.Buffer
	err := templates.ExecuteTemplate(&buf, d.Name+".sql", tables{
		Healthcare: c.Table,
		Doctors:    schema.DoctorsTable,
	})
	if err != nil {
		return "", fmt.Errorf("render %s: %w", d.Name, err)
	}
	return buf.String(), nil
}

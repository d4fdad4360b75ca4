package domain

import "strings"

// RowRef points back at the extracted line a result was produced from.
type RowRef struct {
	SourceFile string `json:"source_file"`
	Line       int    `json:"line"`
}

// Row is one table line extracted upstream from a scanned PDF: raw text per
// named column. Rows are never mutated after construction.
type Row struct {
	ref    RowRef
	values map[string]string
}

func NewRow(ref RowRef, values map[string]string) Row {
	copied := make(map[string]string, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return Row{ref: ref, values: copied}
}

func (r Row) Ref() RowRef { return r.ref }

func (r Row) Value(field string) (string, bool) {
	v, ok := r.values[field]
	return v, ok
}

func (r Row) Fields() []string {
	out := make([]string, 0, len(r.values))
	for k := range r.values {
		out = append(out, k)
	}
	return out
}

// NormalizedRow is a Row after trimming and amount validation. Columns whose
// raw value was empty or whitespace-only are absent here, so extraction rules
// can tell "field absent" from "field matched nothing".
type NormalizedRow struct {
	ref    RowRef
	values map[string]string
	amount float64
}

func NewNormalizedRow(ref RowRef, values map[string]string, amount float64) NormalizedRow {
	return NormalizedRow{ref: ref, values: values, amount: amount}
}

func (r NormalizedRow) Ref() RowRef { return r.ref }

// Value returns the trimmed column value; ok is false for absent columns.
func (r NormalizedRow) Value(field string) (string, bool) {
	v, ok := r.values[field]
	return v, ok
}

// Amount is the designated amount column parsed as a decimal number.
func (r NormalizedRow) Amount() float64 { return r.amount }

// Absent reports whether a raw value normalizes to the absent marker.
func Absent(raw string) bool {
	return strings.TrimSpace(raw) == ""
}

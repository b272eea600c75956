// Package records holds the loosely typed row representation that flows
// between the reader and the cleaning steps.
package records

import "strings"

// Record is a single row keyed by column name. Values are nil (missing),
// string, float64, int64 or time.Time depending on how far the row has
// progressed through cleaning.
type Record map[string]any

// String returns the value for key as a trimmed string and whether it was
// present and non-empty.
func (r Record) String(key string) (string, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

// Missing reports whether key is absent, nil, or an all-space string.
func (r Record) Missing(key string) bool {
	v, ok := r[key]
	if !ok || v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

// Clone returns a shallow copy of r.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Batch is one bounded slice of rows produced by a reader.
type Batch struct {
	// Seq is the 0-based batch index within the run.
	Seq int
	// Records are the rows that survived parsing.
	Records []Record
	// Skipped counts malformed lines dropped while filling this batch.
	Skipped int
}

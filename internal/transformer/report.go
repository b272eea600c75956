package transformer

import (
	"sort"

	"github.com/rs/zerolog"
)

// Report counts what the cleaner recovered from in one batch (or, after
// Merge, in a whole run). Map keys are target column names, except
// Repaired which is keyed by repair kind.
type Report struct {
	Rows       int
	Duplicates int
	// Dropped counts rows that had neither date and no batch median to
	// fall back on.
	Dropped    int
	Imputed    map[string]int
	Coerced    map[string]int
	Normalized map[string]int
	Repaired   map[string]int
}

// NewReport returns an empty report.
func NewReport() *Report {
	return &Report{
		Imputed:    map[string]int{},
		Coerced:    map[string]int{},
		Normalized: map[string]int{},
		Repaired:   map[string]int{},
	}
}

// Merge adds o into r.
func (r *Report) Merge(o *Report) {
	if o == nil {
		return
	}
	r.Rows += o.Rows
	r.Duplicates += o.Duplicates
	r.Dropped += o.Dropped
	merge := func(dst *map[string]int, src map[string]int) {
		if *dst == nil {
			*dst = map[string]int{}
		}
		for k, v := range src {
			(*dst)[k] += v
		}
	}
	merge(&r.Imputed, o.Imputed)
	merge(&r.Coerced, o.Coerced)
	merge(&r.Normalized, o.Normalized)
	merge(&r.Repaired, o.Repaired)
}

// Total sums the values of m.
func Total(m map[string]int) int {
	n := 0
	for _, v := range m {
		n += v
	}
	return n
}

// Dict renders m as a zerolog dictionary with sorted keys.
func Dict(m map[string]int) *zerolog.Event {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	d := zerolog.Dict()
	for _, k := range keys {
		d.Int(k, m[k])
	}
	return d
}

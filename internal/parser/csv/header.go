package csv

import (
	"fmt"
	"strings"
)

const utf8BOM = "\uFEFF"

// CleanHeader trims every header cell, strips a UTF-8 BOM from the first
// one and applies headerMap (raw header -> canonical header). It returns a
// new slice. Keys of headerMap match case-insensitively since config
// loaders may lowercase them.
func CleanHeader(raw []string, headerMap map[string]string) []string {
	out := make([]string, len(raw))
	for i, h := range raw {
		if i == 0 {
			h = strings.TrimPrefix(h, utf8BOM)
		}
		h = strings.TrimSpace(h)
		if mapped, ok := lookupHeader(headerMap, h); ok {
			h = mapped
		}
		out[i] = h
	}
	return out
}

func lookupHeader(m map[string]string, h string) (string, bool) {
	if v, ok := m[h]; ok {
		return v, true
	}
	for k, v := range m {
		if strings.EqualFold(k, h) {
			return v, true
		}
	}
	return "", false
}

// missingColumns returns the required names absent from header, in the
// order of required.
func missingColumns(header, required []string) []string {
	have := make(map[string]struct{}, len(header))
	for _, h := range header {
		have[h] = struct{}{}
	}
	var missing []string
	for _, r := range required {
		if _, ok := have[r]; !ok {
			missing = append(missing, r)
		}
	}
	return missing
}

// HeaderError reports required columns absent from the input header.
type HeaderError struct {
	Missing []string
}

func (e *HeaderError) Error() string {
	return fmt.Sprintf("header is missing required columns: %s", strings.Join(e.Missing, ", "))
}

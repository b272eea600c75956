package builtin

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/zeebo/xxh3"

	"healthetl/internal/schema"
	"healthetl/internal/transformer"
	"healthetl/pkg/records"
)

// Dedupe policies.
const (
	DedupeExact = "exact"
	DedupeKey   = "key"
)

// KeyColumns form the business key of the "key" policy.
var KeyColumns = []string{"Name", "Age", "Date of Admission", "Doctor"}

// DeDup drops rows whose fingerprint was already seen in the batch and
// keeps the first occurrence. The fingerprint is the 128-bit xxh3 hash of
// the key values joined by the unit separator.
//
// Policy "key" (default) keys on KeyColumns, "exact" on every source
// column. It runs on raw rows, before any imputation.
type DeDup struct {
	Policy string
}

func (DeDup) Name() string { return "dedup" }

func (d DeDup) columns() ([]string, error) {
	switch strings.ToLower(strings.TrimSpace(d.Policy)) {
	case "", DedupeKey:
		return KeyColumns, nil
	case DedupeExact:
		return schema.Healthcare().SourceHeaders(), nil
	default:
		return nil, fmt.Errorf("unknown dedupe policy %q", d.Policy)
	}
}

func (d DeDup) Apply(ctx context.Context, in []records.Record, rep *transformer.Report) ([]records.Record, error) {
	cols, err := d.columns()
	if err != nil {
		return nil, err
	}

	seen := make(map[xxh3.Uint128]struct{}, len(in))
	out := in[:0]
	var buf []byte
	for _, r := range in {
		buf = buf[:0]
		for i, c := range cols {
			if i > 0 {
				buf = append(buf, 0x1f)
			}
			buf = append(buf, fingerprintValue(r[c])...)
		}
		h := xxh3.Hash128(buf)
		if _, dup := seen[h]; dup {
			rep.Duplicates++
			continue
		}
		seen[h] = struct{}{}
		out = append(out, r)
	}

	if dropped := len(in) - len(out); dropped > 0 {
		zerolog.Ctx(ctx).Info().Int("duplicates", dropped).Msg("removed duplicate rows")
	}
	return out, nil
}

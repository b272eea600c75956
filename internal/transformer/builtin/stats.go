package builtin

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
)

// number reads v as a float64. Strings are trimmed and parsed; NaN and
// infinities are rejected.
func number(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case int64:
		f = float64(n)
	case int:
		f = float64(n)
	case string:
		p, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = p
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// integer is number rounded half away from zero. Values that do not fit in
// an int64 are rejected.
func integer(v any) (float64, bool) {
	f, ok := number(v)
	if !ok {
		return 0, false
	}
	f = math.Round(f)
	if f < math.MinInt64 || f >= -math.MinInt64 {
		return 0, false
	}
	return f, true
}

// median returns the middle value of vals (mean of the two middle values
// for an even count).
func median(vals []float64) (float64, bool) {
	if len(vals) == 0 {
		return 0, false
	}
	s := slices.Clone(vals)
	slices.Sort(s)
	mid := len(s) / 2
	if len(s)%2 == 1 {
		return s[mid], true
	}
	return (s[mid-1] + s[mid]) / 2, true
}

// medianDate is median for dates: halfway between the two middle dates for
// an even count, truncated to the day.
func medianDate(ts []time.Time) (time.Time, bool) {
	if len(ts) == 0 {
		return time.Time{}, false
	}
	s := slices.Clone(ts)
	slices.SortFunc(s, func(a, b time.Time) int { return a.Compare(b) })
	mid := len(s) / 2
	if len(s)%2 == 1 {
		return day(s[mid]), true
	}
	lower, upper := s[mid-1], s[mid]
	return day(lower.Add(upper.Sub(lower) / 2)), true
}

// mode returns the most frequent value; ties go to the lexicographically
// smallest.
func mode(vals []string) (string, bool) {
	if len(vals) == 0 {
		return "", false
	}
	counts := lo.CountValues(vals)
	keys := lo.Keys(counts)
	slices.Sort(keys)
	best := keys[0]
	for _, k := range keys[1:] {
		if counts[k] > counts[best] {
			best = k
		}
	}
	return best, true
}

// day truncates t to midnight UTC of its calendar date.
func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// fingerprintValue renders v for hashing; nil is "\x00".
func fingerprintValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "\x00"
	case string:
		return x
	case time.Time:
		return x.Format("2006-01-02")
	default:
		return fmt.Sprint(x)
	}
}

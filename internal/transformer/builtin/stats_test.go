package builtin

import (
	"math"
	"testing"
	"time"
)

func TestMedian(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   []float64
		want float64
		ok   bool
	}{
		{nil, 0, false},
		{[]float64{3}, 3, true},
		{[]float64{30000, 15000.20}, 22500.10, true},
		{[]float64{5, 1, 3}, 3, true},
	}
	for _, tt := range tests {
		got, ok := median(tt.in)
		if ok != tt.ok || !approx(got, tt.want) {
			t.Errorf("median(%v) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestMedianDate(t *testing.T) {
	t.Parallel()

	got, ok := medianDate([]time.Time{date(2024, 1, 10), date(2024, 1, 1)})
	if !ok || !got.Equal(date(2024, 1, 5)) {
		t.Fatalf("even median = %v, want 2024-01-05 (midpoint truncated)", got)
	}
	got, _ = medianDate([]time.Time{date(2024, 3, 1), date(2024, 1, 1), date(2024, 2, 1)})
	if !got.Equal(date(2024, 2, 1)) {
		t.Fatalf("odd median = %v", got)
	}
	if _, ok := medianDate(nil); ok {
		t.Fatalf("empty median reported ok")
	}
}

func TestMode(t *testing.T) {
	t.Parallel()

	if got, _ := mode([]string{"b", "a", "b", "a", "c"}); got != "a" {
		t.Fatalf("tie should pick smallest, got %q", got)
	}
	if got, _ := mode([]string{"x", "y", "y"}); got != "y" {
		t.Fatalf("mode = %q, want y", got)
	}
	if _, ok := mode(nil); ok {
		t.Fatalf("empty mode reported ok")
	}
}

func TestInteger(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   any
		want float64
		ok   bool
	}{
		{"30.5", 31, true},
		{"-2.5", -3, true},
		{int64(math.MaxInt32), math.MaxInt32, true},
		{"-9.2e18", -9.2e18, true},
		{"9.3e18", 0, false},
		{"1e300", 0, false},
		{"-1e300", 0, false},
		{"abc", 0, false},
	}
	for _, tt := range tests {
		if got, ok := integer(tt.in); ok != tt.ok || got != tt.want {
			t.Errorf("integer(%#v) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestNumber(t *testing.T) {
	t.Parallel()

	for _, in := range []any{" 42 ", 42.0, int64(42), 42} {
		if got, ok := number(in); !ok || got != 42 {
			t.Errorf("number(%#v) = %v, %v", in, got, ok)
		}
	}
	for _, in := range []any{"abc", "NaN", nil, true} {
		if _, ok := number(in); ok {
			t.Errorf("number(%#v) accepted", in)
		}
	}
}

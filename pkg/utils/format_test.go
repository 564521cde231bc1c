package utils

import "testing"

func TestFormatCurrency(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "0.00"},
		{1.5, "1.50"},
		{999.999, "1,000.00"},
		{1234.56, "1,234.56"},
		{100000, "100,000.00"},
		{1234567.89, "1,234,567.89"},
		{-1234.5, "-1,234.50"},
	}
	for _, tc := range cases {
		if got := FormatCurrency(tc.in); got != tc.want {
			t.Errorf("FormatCurrency(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	if got := FormatPercent(12.345); got != "+12.35%" {
		t.Errorf("positive = %q", got)
	}
	if got := FormatPercent(-3.2); got != "-3.20%" {
		t.Errorf("negative = %q", got)
	}
	if got := FormatPercent(0); got != "0.00%" {
		t.Errorf("zero = %q", got)
	}
}

package core

import "testing"

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out int64
	}{
		{"25000", 25000},
		{"Rp 25.000", 25000},
		{"1,234,567", 1234567},
		{"abc", 0},
		{"", 0},
		{"-500", 500}, // sign is stripped, never negative
		{"12.34", 1234},
		{"  8000  ", 8000},
	}
	for _, tc := range cases {
		if got := ParseAmount(tc.in); got != tc.out {
			t.Fatalf("ParseAmount(%q) = %d, want %d", tc.in, got, tc.out)
		}
	}
}

func TestParseQuantity(t *testing.T) {
	if got := ParseQuantity("2.5"); got.String() != "2.5" {
		t.Fatalf("ParseQuantity(2.5) = %s", got)
	}
	if got := ParseQuantity("-1"); !got.IsZero() {
		t.Fatalf("negative quantity should parse as zero, got %s", got)
	}
	if got := ParseQuantity("banyak"); !got.IsZero() {
		t.Fatalf("invalid quantity should parse as zero, got %s", got)
	}
}

func TestFormatAmount(t *testing.T) {
	cases := []struct {
		v    int64
		code string
		out  string
	}{
		{25000, "IDR", "Rp25.000"},
		{1234567, "IDR", "Rp1.234.567"},
		{0, "IDR", "Rp0"},
		{-50000, "IDR", "-Rp50.000"},
		{1000, "USD", "$1,000"},
		{999, "SGD", "S$999"},
		{1000000, "JPY", "¥1,000,000"},
		// Unknown code falls back to the default currency.
		{5000, "EUR", "Rp5.000"},
		{5000, "", "Rp5.000"},
	}
	for _, tc := range cases {
		if got := FormatAmount(tc.v, tc.code); got != tc.out {
			t.Fatalf("FormatAmount(%d, %q) = %q, want %q", tc.v, tc.code, got, tc.out)
		}
	}
}

func TestCurrencyFor(t *testing.T) {
	if c := CurrencyFor("aud"); c.Code != "AUD" {
		t.Fatalf("lookup should be case-insensitive, got %s", c.Code)
	}
	if c := CurrencyFor("XXX"); c.Code != DefaultCurrencyCode {
		t.Fatalf("unknown code should fall back to %s, got %s", DefaultCurrencyCode, c.Code)
	}
}

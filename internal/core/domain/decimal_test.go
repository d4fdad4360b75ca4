package domain

import "testing"

func TestParseDecimal(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"1234.56", 1234.56},
		{"1234,56", 1234.56},
		{"-123.4", -123.4},
		{"+12", 12},
		{"1 234,56", 1234.56},
		{"12 345 678,90", 12345678.90},
		{"1.234,56", 1234.56},
		{"0,01", 0.01},
	}
	for _, tc := range cases {
		got, err := ParseDecimal(tc.in)
		if err != nil {
			t.Fatalf("ParseDecimal(%q) error = %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseDecimal(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestParseDecimalRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "abc", "12,34 EUR", "--5", "1,2,3", "12..5"} {
		if _, err := ParseDecimal(in); err == nil {
			t.Fatalf("ParseDecimal(%q) should fail", in)
		}
	}
}

func TestValidDecimalTrimsInput(t *testing.T) {
	if !ValidDecimal("  1234,56  ") {
		t.Fatal("padded amount should validate")
	}
	if ValidDecimal("n/a") {
		t.Fatal("non-numeric value should not validate")
	}
}

func TestParseDateLayouts(t *testing.T) {
	cases := []string{"15/03/2024", "15-03-2024", "2024-03-15", "15.03.2024", "15 03 2024"}
	for _, in := range cases {
		d, err := ParseDate(in)
		if err != nil {
			t.Fatalf("ParseDate(%q) error = %v", in, err)
		}
		if d.Year() != 2024 || int(d.Month()) != 3 || d.Day() != 15 {
			t.Fatalf("ParseDate(%q) = %v", in, d)
		}
	}
	if _, err := ParseDate("mars 2024"); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

package format

import "testing"

func TestFormatCurrency(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"10000", "R$ 10.000,00"},
		{"1234.5", "R$ 1.234,50"},
		{"R$ 12.345,67", "R$ 12.345,67"},
		{"12345,67", "R$ 12.345,67"},
		{"0", "R$ 0,00"},
		{"", "R$ 0,00"},
		{"não é número", "R$ 0,00"},
		{"-1234.5", "R$ -1.234,50"},
	}
	for _, tc := range cases {
		if got := FormatCurrency(tc.in); got != tc.want {
			t.Errorf("FormatCurrency(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseCurrency(t *testing.T) {
	if got := ParseCurrency("R$ 12.345,67"); got != "12345.67" {
		t.Fatalf("ParseCurrency = %q, want %q", got, "12345.67")
	}
	if got := ParseCurrency(""); got != "" {
		t.Fatalf("ParseCurrency(\"\") = %q, want empty", got)
	}
}

func TestRoundTrip(t *testing.T) {
	got := ParseCurrency(FormatCurrency("1234.5"))
	if got != "1234.50" {
		t.Fatalf("round trip = %q, want %q", got, "1234.50")
	}
}

func TestAmount(t *testing.T) {
	if v, ok := Amount("R$ 10.000,00"); !ok || v != 10000 {
		t.Fatalf("Amount formatted = %v %v", v, ok)
	}
	if v, ok := Amount("1234.5"); !ok || v != 1234.5 {
		t.Fatalf("Amount plain = %v %v", v, ok)
	}
	if _, ok := Amount("sem valor"); ok {
		t.Fatal("Amount should fail on non-numeric input")
	}
}

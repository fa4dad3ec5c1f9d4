// Package format renders and parses the pt-BR currency strings stored on
// process records ("R$ 12.345,67").
package format

import (
	"strconv"
	"strings"
)

const zeroCurrency = "R$ 0,00"

// FormatCurrency normalizes an amount into the stored BRL representation.
// It accepts a plain decimal string ("1234.5"), an already formatted value
// ("R$ 1.234,50") or anything in between; input that does not yield a
// number formats as the zero amount.
func FormatCurrency(value string) string {
	v, ok := Amount(value)
	if !ok {
		return zeroCurrency
	}
	return FormatAmount(v)
}

// FormatAmount renders a numeric amount as BRL with two decimal places,
// thousands separated by '.' and ',' as the decimal separator.
func FormatAmount(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	s := strconv.FormatFloat(v, 'f', 2, 64)
	intPart, decPart, _ := strings.Cut(s, ".")

	var sb strings.Builder
	if neg {
		sb.WriteString("R$ -")
	} else {
		sb.WriteString("R$ ")
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			sb.WriteByte('.')
		}
		sb.WriteRune(r)
	}
	sb.WriteByte(',')
	sb.WriteString(decPart)
	return sb.String()
}

// ParseCurrency strips the currency symbol and grouping from a formatted
// value, yielding a plain numeric string suitable for an input control.
// "R$ 12.345,67" becomes "12345.67"; empty input stays empty.
func ParseCurrency(value string) string {
	if value == "" {
		return ""
	}
	return strings.ReplaceAll(stripToDigits(value), ",", ".")
}

// Amount parses either a plain decimal string or a formatted BRL value
// into a number. The second result reports whether a number was found.
func Amount(value string) (float64, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, false
	}
	// A string that is already a plain decimal ("1234.5") is taken at face
	// value; stripping its '.' as a grouping separator would read 12345.
	if v, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return v, true
	}
	normalized := strings.ReplaceAll(stripToDigits(trimmed), ",", ".")
	v, err := strconv.ParseFloat(normalized, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// stripToDigits keeps digits, the decimal comma and the minus sign,
// dropping the symbol and the '.' grouping separators.
func stripToDigits(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == ',' || r == '-' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

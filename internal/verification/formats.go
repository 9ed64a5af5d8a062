package verification

import (
	"fmt"
	"strconv"
	"strings"
)

// formatThousands renders 1234567.5 as "1,234,567.5".
func formatThousands(v float64, decimals int) string {
	s := strconv.FormatFloat(v, 'f', decimals, 64)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart := s
	fracPart := ""
	if idx := strings.Index(s, "."); idx >= 0 {
		intPart = s[:idx]
		fracPart = s[idx:]
	}
	var b strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}
	out := b.String() + fracPart
	if neg {
		out = "-" + out
	}
	return out
}

// amountFormats are the textual renderings under which a currency amount is
// accepted in prose: "$1,234", "$1,234.00" and the raw digits.
func amountFormats(amount float64) []string {
	return []string{
		"$" + formatThousands(amount, -1),
		"$" + formatThousands(amount, 2),
		strconv.FormatFloat(amount, 'f', -1, 64),
	}
}

// rateFormats accepts an annual rate given as a fraction (0.065) under
// "6.500%", "6.50%", "6.5%" and the bare trimmed decimal "6.5".
func rateFormats(annualRate float64) []string {
	pct := annualRate * 100
	bare := strconv.FormatFloat(pct, 'f', -1, 64)
	return []string{
		fmt.Sprintf("%.3f%%", pct),
		fmt.Sprintf("%.2f%%", pct),
		bare + "%",
		bare,
	}
}

// termFormats accepts "36 months", "36-month" and, for whole years,
// "3 years" / "3-year" (singular for one year).
func termFormats(termMonths int) []string {
	out := []string{
		fmt.Sprintf("%d months", termMonths),
		fmt.Sprintf("%d-month", termMonths),
	}
	if termMonths == 1 {
		out = append(out, "1 month")
	}
	if termMonths > 0 && termMonths%12 == 0 {
		years := termMonths / 12
		if years == 1 {
			out = append(out, "1 year", "1-year")
		} else {
			out = append(out, fmt.Sprintf("%d years", years), fmt.Sprintf("%d-year", years))
		}
	}
	return out
}

// thresholdFormats accepts a covenant threshold as a plain number ("1.25"),
// a coverage multiple ("1.25x") or a percentage rendering.
func thresholdFormats(value float64, isPercent bool) []string {
	bare := strconv.FormatFloat(value, 'f', -1, 64)
	out := []string{bare, bare + "x", fmt.Sprintf("%.2f", value)}
	if isPercent {
		pct := strconv.FormatFloat(value*100, 'f', -1, 64)
		out = append(out, pct+"%", fmt.Sprintf("%.1f%%", value*100))
	} else {
		out = append(out, bare+"%")
	}
	return out
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if n == "" {
			continue
		}
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}

package cart

import (
	"fmt"
	"strings"
)

// FormatMoney renders integer cents as a display amount with the configured
// currency symbol and thousands grouping, e.g. 123456 -> "$1,234.56".
func FormatMoney(cents int64, symbol string) string {
	negative := cents < 0
	if negative {
		cents = -cents
	}
	units := cents / 100
	frac := cents % 100

	digits := fmt.Sprintf("%d", units)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}

	sign := ""
	if negative {
		sign = "-"
	}
	return fmt.Sprintf("%s%s%s.%02d", sign, symbol, b.String(), frac)
}

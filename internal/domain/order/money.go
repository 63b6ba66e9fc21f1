package order

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// FormatAmount renders an amount in minor units, e.g. "USD 1,249.00"
func FormatAmount(amount int64, currency string) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s %s%s.%02d", currency, sign, humanize.Comma(amount/100), amount%100)
}

package utils

import (
	"fmt"
	"math"
)

// FormatCurrencyIDR memformat nilai float64 ke format Rupiah.
// Contoh: 15000.50 -> "Rp 15.000,50"
func FormatCurrencyIDR(amount float64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	integer := math.Floor(amount)
	decimal := amount - integer

	integerStr := ""
	intTemp := integer

	if intTemp == 0 {
		integerStr = "0"
	}

	// Format bagian integer dengan pemisah ribuan
	for intTemp > 0 {
		remainder := int(math.Mod(intTemp, 1000))

		if intTemp >= 1000 {
			integerStr = fmt.Sprintf(".%03d%s", remainder, integerStr)
		} else {
			integerStr = fmt.Sprintf("%d%s", remainder, integerStr)
		}

		intTemp = math.Floor(intTemp / 1000)
	}

	sign := ""
	if negative {
		sign = "-"
	}

	if decimal > 0 {
		decimal = math.Round(decimal*100) / 100
		decimalStr := fmt.Sprintf("%02.0f", decimal*100)
		return fmt.Sprintf("%sRp %s,%s", sign, integerStr, decimalStr)
	}

	return fmt.Sprintf("%sRp %s", sign, integerStr)
}

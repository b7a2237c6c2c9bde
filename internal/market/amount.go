package market

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// FormatAmount renders a base-unit amount with the given number of
// decimal places, e.g. FormatAmount(1500000, 6) == "1.500000".
func FormatAmount(amount uint64, decimals int32) string {
	if decimals <= 0 {
		return decimal.NewFromBigInt(new(big.Int).SetUint64(amount), 0).String()
	}
	return decimal.NewFromBigInt(new(big.Int).SetUint64(amount), -decimals).StringFixed(decimals)
}

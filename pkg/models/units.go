package models

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// BaseUnitDecimals is the number of fractional digits in one whole token.
const BaseUnitDecimals = 18

// ToBaseUnits converts a token-denominated amount into integer base units.
// Digits beyond the base-unit precision are truncated, never rounded up.
func ToBaseUnits(amount decimal.Decimal) *big.Int {
	return amount.Shift(BaseUnitDecimals).Truncate(0).BigInt()
}

// FromBaseUnits converts integer base units back into a token-denominated amount.
func FromBaseUnits(units *big.Int) decimal.Decimal {
	if units == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(units, -BaseUnitDecimals)
}

// FormatBaseUnits renders base units as a token amount string for display.
func FormatBaseUnits(units *big.Int) string {
	return FromBaseUnits(units).String()
}

package utils

import (
	"errors"
	"math/big"

	"github.com/shopspring/decimal"
)

// MaxDecimals bounds the exponent accepted by FormatBigInt. ERC-20 decimals are a uint8,
// but anything above this is not a real token.
const MaxDecimals = 77

// FormatBigInt converts an integer amount in base units into an exact decimal string,
// scaling by 10^decimals. Trailing zeros are dropped.
// Example: amount=1234500000000000000, decimals=18 => "1.2345"
func FormatBigInt(amount *big.Int, decimals uint8) (string, error) {
	if amount == nil {
		return "", errors.New("amount is nil")
	}
	if decimals > MaxDecimals {
		return "", errors.New("decimals out of range")
	}
	if decimals == 0 {
		return amount.String(), nil
	}
	return decimal.NewFromBigInt(amount, -int32(decimals)).String(), nil
}

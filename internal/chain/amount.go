package chain

import (
	"math/big"
	"strings"

	stationerr "github.com/mrz1836/stationkey/pkg/errors"
)

// ErrInvalidAmount indicates a malformed decimal amount.
var ErrInvalidAmount = stationerr.WithSuggestion(stationerr.ErrInvalidInput,
	"amounts must be non-negative decimal numbers")

// ParseDecimalAmount parses a decimal amount string to big.Int with the given decimal places.
// For example, "1.5" with 6 decimals returns 1500000. Extra precision is truncated.
//
//nolint:gocognit,gocyclo // Decimal parsing requires sequential validation steps
func ParseDecimalAmount(amount string, decimalPlaces int) (*big.Int, error) {
	if amount == "" || strings.HasPrefix(amount, "-") {
		return nil, ErrInvalidAmount
	}

	parts := strings.Split(amount, ".")
	if len(parts) > 2 {
		return nil, ErrInvalidAmount
	}

	intPart := parts[0]
	decPart := ""
	if len(parts) == 2 {
		decPart = parts[1]
	}

	if intPart == "" {
		intPart = "0"
	}
	intVal, ok := new(big.Int).SetString(intPart, 10)
	if !ok {
		return nil, ErrInvalidAmount
	}

	multiplier := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimalPlaces)), nil)
	result := new(big.Int).Mul(intVal, multiplier)

	if decPart != "" {
		for _, c := range decPart {
			if c < '0' || c > '9' {
				return nil, ErrInvalidAmount
			}
		}

		for len(decPart) < decimalPlaces {
			decPart += "0"
		}
		decPart = decPart[:decimalPlaces]

		if decPart != "" {
			decVal, ok := new(big.Int).SetString(decPart, 10)
			if !ok {
				return nil, ErrInvalidAmount
			}
			result = result.Add(result, decVal)
		}
	}

	return result, nil
}

// FormatDecimalAmount converts a base-unit amount to a human-readable string.
// Trailing zeros after the decimal point are removed.
// For example, 1500000 with 6 decimals returns "1.5".
func FormatDecimalAmount(amount *big.Int, decimalPlaces int) string {
	if amount == nil {
		return "0"
	}
	if decimalPlaces == 0 {
		return amount.String()
	}

	str := amount.String()
	for len(str) <= decimalPlaces {
		str = "0" + str
	}

	decimalPos := len(str) - decimalPlaces
	result := strings.TrimRight(str[:decimalPos]+"."+str[decimalPos:], "0")
	return strings.TrimSuffix(result, ".")
}

// gasPriceScale is the fixed-point precision used for gas prices.
const gasPriceScale = 18

// FeeAmount returns ceil(gasPrice * gasLimit) in base units.
func FeeAmount(gasPrice string, gasLimit uint64) (*big.Int, error) {
	price, err := ParseDecimalAmount(gasPrice, gasPriceScale)
	if err != nil {
		return nil, err
	}

	total := new(big.Int).Mul(price, new(big.Int).SetUint64(gasLimit))
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(gasPriceScale), nil)

	quo, rem := new(big.Int).QuoRem(total, scale, new(big.Int))
	if rem.Sign() > 0 {
		quo.Add(quo, big.NewInt(1))
	}
	return quo, nil
}

// DefaultFee returns the fee amount for the chain's default gas price and limit.
func (i Info) DefaultFee() (*big.Int, error) {
	return FeeAmount(i.GasPrice, i.GasLimit)
}

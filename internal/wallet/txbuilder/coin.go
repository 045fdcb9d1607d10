package txbuilder

import (
	"regexp"
	"strconv"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/pkg/errors"
	"github/chapool/side-transfer/internal/wallet/txerr"
)

// canonical non-negative decimal, no sign and no leading zeros
var decimalPattern = regexp.MustCompile(`^(0|[1-9][0-9]*)$`)

// ParseCoin validates denom and amount and returns the coin
func ParseCoin(field string, denom string, amount string) (sdk.Coin, error) {
	if err := sdk.ValidateDenom(denom); err != nil {
		return sdk.Coin{}, &txerr.EncodingError{Field: field + " denom", Value: denom, Err: err}
	}

	if !decimalPattern.MatchString(amount) {
		return sdk.Coin{}, &txerr.EncodingError{Field: field, Value: amount, Err: errors.New("not a non-negative decimal integer")}
	}

	amt, ok := math.NewIntFromString(amount)
	if !ok {
		return sdk.Coin{}, &txerr.EncodingError{Field: field, Value: amount, Err: errors.New("out of range")}
	}

	return sdk.Coin{Denom: denom, Amount: amt}, nil
}

// ParseGasLimit parses a decimal gas limit
func ParseGasLimit(gasLimit string) (uint64, error) {
	if !decimalPattern.MatchString(gasLimit) {
		return 0, &txerr.EncodingError{Field: "gas_limit", Value: gasLimit, Err: errors.New("not a non-negative decimal integer")}
	}

	gas, err := strconv.ParseUint(gasLimit, 10, 64)
	if err != nil {
		return 0, &txerr.EncodingError{Field: "gas_limit", Value: gasLimit, Err: err}
	}

	return gas, nil
}

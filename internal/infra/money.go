package infra

import (
	"fmt"
	"math/big"

	"github.com/jackc/pgx/v5/pgtype"
)

// Money columns are numeric(15,0) holding integer minor units (cents), so
// payout math never touches floating point. These helpers convert between
// the pgtype representation and int64 cents at the storage boundary.

// NumericToMoney converts a pgtype.Numeric to int64 cents. Returns an error
// if the value is NULL or overflows int64; a fractional exponent truncates.
func NumericToMoney(n pgtype.Numeric) (int64, error) {
	if !n.Valid {
		return 0, fmt.Errorf("money value is NULL")
	}

	// pgtype.Numeric stores value as Int * 10^Exp.
	cents := new(big.Int).Set(n.Int)
	if n.Exp > 0 {
		mul := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n.Exp)), nil)
		cents.Mul(cents, mul)
	} else if n.Exp < 0 {
		// numeric(15,0) columns never carry fractional digits; truncate
		// if one shows up anyway.
		div := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(-n.Exp)), nil)
		cents.Div(cents, div)
	}

	if !cents.IsInt64() {
		return 0, fmt.Errorf("money value %s overflows int64", cents.String())
	}
	return cents.Int64(), nil
}

// MoneyToNumeric converts int64 cents to pgtype.Numeric for writing.
func MoneyToNumeric(cents int64) pgtype.Numeric {
	return pgtype.Numeric{
		Int:              big.NewInt(cents),
		Exp:              0,
		NaN:              false,
		InfinityModifier: pgtype.Finite,
		Valid:            true,
	}
}

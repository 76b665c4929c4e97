package fixedmath

import (
	"errors"
	"math/big"

	"github.com/holiman/uint256"
)

var (
	// ErrDivideByZero is returned when the denominator of a mul-div is zero.
	ErrDivideByZero = errors.New("fixedmath: divide by zero")
	// ErrOverflow is returned when an operand or the final quotient does not
	// fit in 256 bits. The 512-bit intermediate product never overflows.
	ErrOverflow = errors.New("fixedmath: result overflows 256 bits")
	// ErrNegative is returned for negative operands; all protocol amounts are
	// unsigned.
	ErrNegative = errors.New("fixedmath: negative operand")
)

// FullMulDiv computes floor(a*b/denominator) using a 512-bit intermediate
// product, so the multiplication itself cannot overflow as long as both
// operands fit in 256 bits. The quotient must also fit in 256 bits.
func FullMulDiv(a, b, denominator *big.Int) (*big.Int, error) {
	x, y, d, err := toUint256(a, b, denominator)
	if err != nil {
		return nil, err
	}
	if d.IsZero() {
		return nil, ErrDivideByZero
	}
	q, overflow := new(uint256.Int).MulDivOverflow(x, y, d)
	if overflow {
		return nil, ErrOverflow
	}
	return q.ToBig(), nil
}

// FullMulDivUp is FullMulDiv rounding the quotient up instead of down.
func FullMulDivUp(a, b, denominator *big.Int) (*big.Int, error) {
	x, y, d, err := toUint256(a, b, denominator)
	if err != nil {
		return nil, err
	}
	if d.IsZero() {
		return nil, ErrDivideByZero
	}
	q, overflow := new(uint256.Int).MulDivOverflow(x, y, d)
	if overflow {
		return nil, ErrOverflow
	}
	rem := new(uint256.Int).MulMod(x, y, d)
	if !rem.IsZero() {
		var carry bool
		q, carry = new(uint256.Int).AddOverflow(q, uint256.NewInt(1))
		if carry {
			return nil, ErrOverflow
		}
	}
	return q.ToBig(), nil
}

// Pow10 returns 10^exp as a big integer. Decimal exponents in the protocol
// are bounded by token decimals, so exp never exceeds 77 in practice.
func Pow10(exp uint8) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(exp)), nil)
}

func toUint256(a, b, d *big.Int) (*uint256.Int, *uint256.Int, *uint256.Int, error) {
	x, err := fromBig(a)
	if err != nil {
		return nil, nil, nil, err
	}
	y, err := fromBig(b)
	if err != nil {
		return nil, nil, nil, err
	}
	den, err := fromBig(d)
	if err != nil {
		return nil, nil, nil, err
	}
	return x, y, den, nil
}

func fromBig(v *big.Int) (*uint256.Int, error) {
	if v == nil {
		return new(uint256.Int), nil
	}
	if v.Sign() < 0 {
		return nil, ErrNegative
	}
	out, overflow := uint256.FromBig(v)
	if overflow {
		return nil, ErrOverflow
	}
	return out, nil
}

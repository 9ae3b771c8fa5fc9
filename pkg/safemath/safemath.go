// Package safemath provides checked 64-bit unsigned arithmetic and the
// percentage/basis-point helpers every other core package builds fee and
// reward math on. No primitive +, -, *, / on token amounts is permitted
// outside this package.
//
// Go has no checked-arithmetic builtins, so each operation here detects
// overflow/underflow from the inputs directly rather than relying on a
// trap.
package safemath

import (
	"math/big"

	"github.com/goldminingco/GMC-Token-sub001/pkg/coreerr"
)

// Add returns a+b, or ErrArithmeticOverflow if the sum would wrap.
func Add(a, b uint64) (uint64, error) {
	sum := a + b
	if sum < a {
		return 0, coreerr.ErrArithmeticOverflow
	}
	return sum, nil
}

// Sub returns a-b, or ErrArithmeticOverflow if b > a (underflow).
func Sub(a, b uint64) (uint64, error) {
	if b > a {
		return 0, coreerr.ErrArithmeticOverflow
	}
	return a - b, nil
}

// Mul returns a*b, or ErrArithmeticOverflow if the product would wrap.
func Mul(a, b uint64) (uint64, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	product := a * b
	if product/a != b {
		return 0, coreerr.ErrArithmeticOverflow
	}
	return product, nil
}

// Div returns a/b (truncated toward zero), or ErrDivideByZero if b == 0.
func Div(a, b uint64) (uint64, error) {
	if b == 0 {
		return 0, coreerr.ErrDivideByZero
	}
	return a / b, nil
}

// Percentage computes amount*pct/100 via checked ops. pct must be in [0,100].
func Percentage(amount, pct uint64) (uint64, error) {
	if pct > 100 {
		return 0, coreerr.ErrInvalidAmount
	}
	product, err := Mul(amount, pct)
	if err != nil {
		return 0, err
	}
	return Div(product, 100)
}

// BasisPoints computes amount*bp/10000 via checked ops. bp must be in [0,10000].
func BasisPoints(amount, bp uint64) (uint64, error) {
	if bp > 10000 {
		return 0, coreerr.ErrInvalidAmount
	}
	product, err := Mul(amount, bp)
	if err != nil {
		return 0, err
	}
	return Div(product, 10000)
}

// SplitLastResidual splits total into len(fractionsBp) parts by basis-point
// weight, except the LAST part, which is computed as total minus the sum of
// the other parts. This guarantees exact conservation: no dust is
// gained or lost to rounding, at the cost of the last recipient absorbing
// the truncation remainder.
//
// fractionsBp must sum to <= 10000; the caller is responsible for ordering
// fractionsBp so the residual lands on the intended destination (the lowest-
// priority split).
func SplitLastResidual(total uint64, fractionsBp []uint64) ([]uint64, error) {
	if len(fractionsBp) == 0 {
		return nil, coreerr.ErrInvalidAmount
	}
	parts := make([]uint64, len(fractionsBp))
	var sum uint64
	for i := 0; i < len(fractionsBp)-1; i++ {
		part, err := BasisPoints(total, fractionsBp[i])
		if err != nil {
			return nil, err
		}
		parts[i] = part
		sum, err = Add(sum, part)
		if err != nil {
			return nil, err
		}
	}
	last, err := Sub(total, sum)
	if err != nil {
		return nil, err
	}
	parts[len(parts)-1] = last
	return parts, nil
}

// SplitProportional divides total among len(weights) recipients in
// proportion to their weight, flooring each share independently: part[i] =
// (total*weight[i])/sum(weights). Unlike SplitLastResidual, nothing
// absorbs the remainder — callers get back the leftover explicitly, so sum
// of parts is <= total, never more. This is the ranking engine's payout
// rule: the residual stays in the pool for the next cycle, as opposed to
// the fee engine's exact-conservation rule.
//
// The product uses math/big to avoid overflowing before the division,
// since total and an individual weight can each be large.
func SplitProportional(total uint64, weights []uint64) (parts []uint64, residual uint64, err error) {
	if len(weights) == 0 {
		return nil, 0, coreerr.ErrInvalidAmount
	}
	var weightSum uint64
	for _, w := range weights {
		weightSum, err = Add(weightSum, w)
		if err != nil {
			return nil, 0, err
		}
	}
	parts = make([]uint64, len(weights))
	if weightSum == 0 {
		return parts, total, nil
	}

	var distributed uint64
	bigTotal := new(big.Int).SetUint64(total)
	bigWeightSum := new(big.Int).SetUint64(weightSum)
	for i, w := range weights {
		if w == 0 {
			continue
		}
		product := new(big.Int).Mul(bigTotal, new(big.Int).SetUint64(w))
		quotient := new(big.Int).Div(product, bigWeightSum)
		if !quotient.IsUint64() {
			return nil, 0, coreerr.ErrArithmeticOverflow
		}
		share := quotient.Uint64()
		parts[i] = share
		distributed, err = Add(distributed, share)
		if err != nil {
			return nil, 0, err
		}
	}

	residual, err = Sub(total, distributed)
	if err != nil {
		return nil, 0, err
	}
	return parts, residual, nil
}

package safemath

import (
	"errors"
	"math"
	"testing"

	"github.com/goldminingco/GMC-Token-sub001/pkg/coreerr"
)

func TestAdd(t *testing.T) {
	sum, err := Add(100, 200)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum != 300 {
		t.Errorf("expected 300, got %d", sum)
	}

	if _, err := Add(math.MaxUint64, 1); !errors.Is(err, coreerr.ErrArithmeticOverflow) {
		t.Errorf("expected ErrArithmeticOverflow, got %v", err)
	}
}

func TestSub(t *testing.T) {
	diff, err := Sub(300, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff != 200 {
		t.Errorf("expected 200, got %d", diff)
	}

	if _, err := Sub(0, 1); !errors.Is(err, coreerr.ErrArithmeticOverflow) {
		t.Errorf("expected ErrArithmeticOverflow, got %v", err)
	}
}

func TestMul(t *testing.T) {
	product, err := Mul(10, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if product != 200 {
		t.Errorf("expected 200, got %d", product)
	}

	if _, err := Mul(math.MaxUint64, 2); !errors.Is(err, coreerr.ErrArithmeticOverflow) {
		t.Errorf("expected ErrArithmeticOverflow, got %v", err)
	}

	if v, err := Mul(0, math.MaxUint64); err != nil || v != 0 {
		t.Errorf("expected 0, nil, got %d, %v", v, err)
	}
}

func TestDiv(t *testing.T) {
	quot, err := Div(100, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quot != 10 {
		t.Errorf("expected 10, got %d", quot)
	}

	if _, err := Div(100, 0); !errors.Is(err, coreerr.ErrDivideByZero) {
		t.Errorf("expected ErrDivideByZero, got %v", err)
	}
}

func TestPercentage(t *testing.T) {
	v, err := Percentage(1000, 40)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 400 {
		t.Errorf("expected 400, got %d", v)
	}

	if _, err := Percentage(1000, 101); !errors.Is(err, coreerr.ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount for pct>100, got %v", err)
	}
}

func TestBasisPoints(t *testing.T) {
	v, err := BasisPoints(1_000_000_000, 50) // 0.5%
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 5_000_000 {
		t.Errorf("expected 5_000_000, got %d", v)
	}

	if _, err := BasisPoints(100, 10001); !errors.Is(err, coreerr.ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount for bp>10000, got %v", err)
	}
}

// TestSplitLastResidualConservation: splits must sum exactly to the input
// across a spread of amounts, including ones that don't divide evenly by
// the basis-point weights.
func TestSplitLastResidualConservation(t *testing.T) {
	weights := []uint64{5000, 4000, 1000} // 50/40/10, last absorbs residual
	amounts := []uint64{0, 1, 3, 7, 999, 1_000_000_001, 123456789}

	for _, amount := range amounts {
		parts, err := SplitLastResidual(amount, weights)
		if err != nil {
			t.Fatalf("amount %d: unexpected error: %v", amount, err)
		}
		var sum uint64
		for _, p := range parts {
			sum += p
		}
		if sum != amount {
			t.Errorf("amount %d: parts sum to %d, want %d (parts=%v)", amount, sum, amount, parts)
		}
	}
}

func TestSplitLastResidualEmpty(t *testing.T) {
	if _, err := SplitLastResidual(100, nil); !errors.Is(err, coreerr.ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestSplitProportionalFlooringLeavesResidual(t *testing.T) {
	parts, residual, err := SplitProportional(100, []uint64{1, 1, 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var sum uint64
	for _, p := range parts {
		sum += p
	}
	if sum+residual != 100 {
		t.Errorf("parts+residual = %d, want 100 (parts=%v, residual=%d)", sum+residual, parts, residual)
	}
	if residual == 0 {
		t.Errorf("expected a nonzero truncation residual for 100 split three ways, got 0")
	}
	for _, p := range parts {
		if p != 33 {
			t.Errorf("expected each part to floor to 33, got %d (parts=%v)", p, parts)
		}
	}
}

func TestSplitProportionalByScore(t *testing.T) {
	parts, residual, err := SplitProportional(1000, []uint64{50, 30, 20})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []uint64{500, 300, 200}
	for i, p := range parts {
		if p != want[i] {
			t.Errorf("parts[%d] = %d, want %d", i, p, want[i])
		}
	}
	if residual != 0 {
		t.Errorf("residual = %d, want 0 for an evenly-divisible split", residual)
	}
}

func TestSplitProportionalZeroWeightSum(t *testing.T) {
	parts, residual, err := SplitProportional(500, []uint64{0, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if residual != 500 {
		t.Errorf("residual = %d, want 500 when all weights are zero", residual)
	}
	for _, p := range parts {
		if p != 0 {
			t.Errorf("expected zero parts, got %v", parts)
		}
	}
}

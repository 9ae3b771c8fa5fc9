package guard

import (
	"errors"
	"testing"

	"github.com/goldminingco/GMC-Token-sub001/pkg/coreerr"
)

func TestReentrancyDetectsDoubleEntry(t *testing.T) {
	r := NewReentrancy()
	if err := r.Enter("pos-1"); err != nil {
		t.Fatalf("first Enter: %v", err)
	}
	if err := r.Enter("pos-1"); !errors.Is(err, coreerr.ErrReentrancyDetected) {
		t.Fatalf("second Enter err = %v, want ErrReentrancyDetected", err)
	}
	r.Exit("pos-1")
	if err := r.Enter("pos-1"); err != nil {
		t.Fatalf("Enter after Exit: %v", err)
	}
}

func TestReentrancyKeysAreIndependent(t *testing.T) {
	r := NewReentrancy()
	if err := r.Enter("a"); err != nil {
		t.Fatalf("Enter a: %v", err)
	}
	if err := r.Enter("b"); err != nil {
		t.Fatalf("Enter b should not be blocked by a: %v", err)
	}
}

func TestComputeBudgetAdmitsWithinBurst(t *testing.T) {
	b := NewComputeBudget(1, 5)
	for i := 0; i < 5; i++ {
		if err := b.Admit(); err != nil {
			t.Fatalf("Admit %d: %v", i, err)
		}
	}
	if err := b.Admit(); !errors.Is(err, coreerr.ErrComputeUnitLimitExceeded) {
		t.Fatalf("6th Admit err = %v, want ErrComputeUnitLimitExceeded", err)
	}
}

func TestComputeBudgetAdmitNRejectsOversizedWalk(t *testing.T) {
	b := NewComputeBudget(1, 46656)
	if err := b.AdmitN(46656); err != nil {
		t.Fatalf("AdmitN at exactly burst: %v", err)
	}
	b2 := NewComputeBudget(1, 46656)
	if err := b2.AdmitN(46657); !errors.Is(err, coreerr.ErrComputeUnitLimitExceeded) {
		t.Fatalf("AdmitN over burst err = %v, want ErrComputeUnitLimitExceeded", err)
	}
}

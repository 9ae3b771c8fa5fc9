// Package guard implements two host-visible safety rails: a per-operation
// reentrancy guard, and a compute-unit ceiling enforced as a token-bucket
// rate limiter. The
// orchestration layer acquires one of each before dispatching a mutating
// operation to ledger/fees/staking/ranking, and releases the reentrancy
// guard on every exit path.
package guard

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/goldminingco/GMC-Token-sub001/pkg/coreerr"
)

// Reentrancy is a per-account (or per-position) busy flag. It is not safe
// for concurrent use by multiple goroutines against the same key without
// external synchronization; the core's single-threaded, per-transaction
// execution model means the host never calls into it concurrently for the
// same key in practice.
type Reentrancy struct {
	busy map[string]bool
}

// NewReentrancy returns an empty guard.
func NewReentrancy() *Reentrancy {
	return &Reentrancy{busy: map[string]bool{}}
}

// Enter acquires the guard for key, failing ReentrancyDetected if it is
// already held. Callers must defer Exit(key) immediately after a
// successful Enter, on every return path.
func (r *Reentrancy) Enter(key string) error {
	if r.busy[key] {
		return coreerr.ErrReentrancyDetected
	}
	r.busy[key] = true
	return nil
}

// Exit releases the guard for key. Safe to call even if Enter was never
// called for key (a no-op in that case).
func (r *Reentrancy) Exit(key string) {
	delete(r.busy, key)
}

// ComputeBudget is a token-bucket standing in for the host's
// per-operation compute-unit ceiling: operations that would exceed the
// available burst fail ComputeUnitLimitExceeded up front, before any
// state mutation, rather than aborting partway through.
type ComputeBudget struct {
	limiter *rate.Limiter
}

// NewComputeBudget returns a budget refilling at opsPerSecond, with a burst
// capacity of burst operations.
func NewComputeBudget(opsPerSecond float64, burst int) *ComputeBudget {
	return &ComputeBudget{limiter: rate.NewLimiter(rate.Limit(opsPerSecond), burst)}
}

// Admit consumes one unit of budget for a single operation, or
// ComputeUnitLimitExceeded if none is immediately available. It never
// blocks: the core's concurrency model has no suspension points, so an
// operation either proceeds now or fails now.
func (b *ComputeBudget) Admit() error {
	if !b.limiter.Allow() {
		return coreerr.ErrComputeUnitLimitExceeded
	}
	return nil
}

// AdmitN consumes n units of budget in one call, for operations whose cost
// scales with input size (the affiliate traversal's visit count, notably).
// n must fit within the limiter's burst or this always fails; callers
// should size NewComputeBudget's burst to the largest single operation's
// worst case (6^6 = 46,656 for the affiliate walk).
func (b *ComputeBudget) AdmitN(n int) error {
	if !b.limiter.AllowN(time.Now(), n) {
		return coreerr.ErrComputeUnitLimitExceeded
	}
	return nil
}

// Wait blocks until either budget is available or ctx is done, for
// non-core callers (e.g. a batch job) that are allowed to suspend. The
// core itself never calls this: no suspension points are allowed inside
// an operation.
func (b *ComputeBudget) Wait(ctx context.Context) error {
	if err := b.limiter.Wait(ctx); err != nil {
		return coreerr.ErrComputeUnitLimitExceeded
	}
	return nil
}

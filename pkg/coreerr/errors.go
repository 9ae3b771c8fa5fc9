// Package coreerr defines the stable wire error codes the core surfaces
// to its host. Errors are opaque sentinels; the core never synthesizes
// user-facing strings.
package coreerr

import "errors"

var (
	ErrInvalidAmount             = errors.New("invalid_amount")
	ErrInsufficientFunds         = errors.New("insufficient_funds")
	ErrUninitializedAccount      = errors.New("uninitialized_account")
	ErrAccountAlreadyInitialized = errors.New("account_already_initialized")
	ErrMissingRequiredSignature  = errors.New("missing_required_signature")
	ErrArithmeticOverflow        = errors.New("arithmetic_overflow")
	ErrDivideByZero              = errors.New("divide_by_zero")
	ErrLockNotExpired            = errors.New("lock_not_expired")
	ErrCircularReferenceDetected = errors.New("circular_reference_detected")
	ErrReentrancyDetected        = errors.New("reentrancy_detected")
	ErrComputeUnitLimitExceeded  = errors.New("compute_unit_limit_exceeded")
	ErrUnauthorized              = errors.New("unauthorized")

	// ErrBurnFloorReached is informational: a burn was clamped at the supply
	// floor rather than rejected outright.
	ErrBurnFloorReached = errors.New("burn_floor_reached")
)

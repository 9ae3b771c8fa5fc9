// Package host declares the three capabilities the core depends on but
// does not implement: an authenticated caller identity, a monotonic clock,
// and a secondary-asset (USDT) ledger. Core packages accept these as
// explicit parameters, never as ambient or global state.
package host

// Identity is an opaque authenticated principal (a wallet/account owner,
// the program admin, and so on). The host is responsible for verifying the
// signature that backs any Identity handed to the core.
type Identity [32]byte

// ZeroIdentity is the identity's zero value, used as a sentinel for "no
// principal" (e.g. an unset affiliate parent).
var ZeroIdentity = Identity{}

// Clock returns monotonic wall-clock time, in seconds since epoch, as
// observed by the host. The core never calls time.Now() directly.
type Clock interface {
	Now() int64
}

// SecondaryLedger is the host's USDT-denominated asset ledger. All USDT
// fees are charged through it. Amounts are in USDT base units
// (10^6 per USDT).
type SecondaryLedger interface {
	// Balance returns the current USDT balance of id.
	Balance(id Identity) (uint64, error)
	// DebitTo moves amount USDT base units out of id's balance to dest.
	// Implementations must be atomic: either the whole debit succeeds or
	// none of it does.
	DebitTo(id Identity, dest Identity, amount uint64) error
}

// Caller carries the authenticated identity the host attached to the
// current operation, and whether a signature was actually verified. Core
// operations that require a specific signer (owner, admin) check this
// before mutating state.
type Caller struct {
	ID     Identity
	Signer bool
}

package staking

import (
	"math/big"

	"github.com/goldminingco/GMC-Token-sub001/pkg/coreerr"
	"github.com/goldminingco/GMC-Token-sub001/pkg/host"
)

// boostMultiplierBase is the fixed-point unit for BurnBoostMultiplier: a
// position with no burn-boost sits at this value (1.0x).
const boostMultiplierBase = 10000

// State is a position's lifecycle state. Positions move Active -> Closed
// on Unstake; Claim and BurnForBoost leave them Active.
type State int

const (
	StateActive State = iota
	StateClosed
)

// Position is a user's stake in one pool.
type Position struct {
	Owner       host.Identity
	PoolID      PoolID
	Principal   uint64
	StartTs     int64
	LastClaimTs int64

	// BurnBoostMultiplier is fixed-point in 1e4 units (10000 == 1.0x),
	// monotonically non-decreasing over the position's lifetime.
	BurnBoostMultiplier uint64

	// AccumulatedBurnForBoost is the cumulative GMC burned against this
	// position via BurnForBoost, kept for auditing.
	AccumulatedBurnForBoost uint64

	State State
}

// EffectiveAPYBp computes the position's current effective APY: base +
// burn-boost contribution + affiliate-boost contribution, capped at the
// pool's max APY.
//
// burnBoostContribution is ratio-based: burn_ratio = accumulated_burn /
// principal; contribution = burn_ratio * (max_apy - base_apy), saturated
// at (max_apy - base_apy).
//
// affiliateBoostContribution follows the same ratio shape, from
// descendantPower / principal, capped at 50% of (max_apy - base_apy).
func (p *Position) EffectiveAPYBp(pool Pool, descendantPower uint64) (uint64, error) {
	diff := pool.MaxAPYBp - pool.BaseAPYBp

	burnContribution, err := saturatingRatioContribution(p.AccumulatedBurnForBoost, p.Principal, diff, diff)
	if err != nil {
		return 0, err
	}

	affiliateCap := diff / 2
	affiliateContribution, err := saturatingRatioContribution(descendantPower, p.Principal, diff, affiliateCap)
	if err != nil {
		return 0, err
	}

	total := pool.BaseAPYBp + burnContribution + affiliateContribution
	if total > pool.MaxAPYBp {
		total = pool.MaxAPYBp
	}
	return total, nil
}

// saturatingRatioContribution computes (numerator/denominator)*scale,
// capped at cap. denominator == 0 yields 0 (an empty/just-created position
// contributes nothing). Uses math/big for the intermediate product, since
// numerator (accumulated burn, or affiliate descendant power) can be large
// enough that numerator*scale overflows a uint64 well before the final,
// small (<=28000) result would.
func saturatingRatioContribution(numerator, denominator, scale, cap uint64) (uint64, error) {
	if denominator == 0 || numerator == 0 {
		return 0, nil
	}

	product := new(big.Int).Mul(big.NewInt(0).SetUint64(numerator), big.NewInt(0).SetUint64(scale))
	quotient := new(big.Int).Div(product, big.NewInt(0).SetUint64(denominator))

	if !quotient.IsUint64() {
		return 0, coreerr.ErrArithmeticOverflow
	}
	contribution := quotient.Uint64()
	if contribution > cap {
		contribution = cap
	}
	return contribution, nil
}

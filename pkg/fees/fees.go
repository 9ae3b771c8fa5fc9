// Package fees computes, but never applies, every fee split in the
// protocol. Callers (ledger.Transfer, staking.Claim/Stake/
// BurnForBoost/Unstake) apply the returned amounts themselves against the
// ledger and the host's secondary-asset ledger; this package never touches
// balances.
//
// All splits use safemath.SplitLastResidual so the parts sum exactly to
// the input fee: the last-listed destination absorbs the truncation
// remainder.
package fees

import "github.com/goldminingco/GMC-Token-sub001/pkg/safemath"

// GMC/USDT base-unit scale.
const (
	GMCBaseUnitsPerGMC   = 1_000_000_000
	USDTBaseUnitsPerUSDT = 1_000_000
)

// TransferSplit is the burn/staking/ranking decomposition of a transfer fee.
type TransferSplit struct {
	Burn    uint64
	Staking uint64
	Ranking uint64
}

// Total returns Burn+Staking+Ranking.
func (s TransferSplit) Total() uint64 {
	return s.Burn + s.Staking + s.Ranking
}

// TeamSplit is the team/staking/ranking decomposition used by the interest
// withdrawal fee, the USDT withdrawal fee, and the stake-entry fee.
type TeamSplit struct {
	Team    uint64
	Staking uint64
	Ranking uint64
}

// Total returns Team+Staking+Ranking.
func (s TeamSplit) Total() uint64 {
	return s.Team + s.Staking + s.Ranking
}

const (
	transferFeeBp = 50 // 0.5% of gross amount

	interestWithdrawalFeeBp = 100 // 1% of claimed interest
	usdtWithdrawalFeeBp     = 30  // 0.3% of USDT amount

	flexibleCancellationPenaltyBp = 250 // 2.5% of principal

	burnForBoostFixedUSDT = 800_000  // $0.80
	burnForBoostExtraBp   = 1000     // 10% of the burn amount, added to the burn
)

// transferSplitBp is 50/40/10 of the computed transfer fee (burn/staking/
// ranking); the last entry absorbs the rounding residual.
var transferSplitBp = []uint64{5000, 4000, 1000}

// teamSplitBp is the 40/40/20 team/staking/ranking split shared by the
// interest-withdrawal fee, the USDT withdrawal fee, and the stake-entry
// fee, in team/staking_fund/ranking_fund order.
var teamSplitBp = []uint64{4000, 4000, 2000}

// TransferFee computes the 0.5% transfer fee on amount and its burn/
// staking/ranking decomposition. Fails ArithmeticOverflow (via safemath)
// only on arithmetic overflow — zero amount is valid here and yields a zero fee;
// ledger.Transfer is responsible for rejecting a zero transfer amount
// outright.
func TransferFee(amount uint64) (total uint64, split TransferSplit, err error) {
	total, err = safemath.BasisPoints(amount, transferFeeBp)
	if err != nil {
		return 0, TransferSplit{}, err
	}
	parts, err := safemath.SplitLastResidual(total, transferSplitBp)
	if err != nil {
		return 0, TransferSplit{}, err
	}
	return total, TransferSplit{Burn: parts[0], Staking: parts[1], Ranking: parts[2]}, nil
}

// InterestWithdrawalFee computes the 1% fee on claimed interest and its
// team/staking/ranking decomposition.
func InterestWithdrawalFee(interest uint64) (total uint64, split TeamSplit, err error) {
	return teamSplitFee(interest, interestWithdrawalFeeBp)
}

// USDTWithdrawalFee computes the 0.3% fee on a USDT withdrawal amount and
// its team/staking/ranking decomposition, in USDT base units.
func USDTWithdrawalFee(usdtAmount uint64) (total uint64, split TeamSplit, err error) {
	return teamSplitFee(usdtAmount, usdtWithdrawalFeeBp)
}

func teamSplitFee(amount, feeBp uint64) (uint64, TeamSplit, error) {
	total, err := safemath.BasisPoints(amount, feeBp)
	if err != nil {
		return 0, TeamSplit{}, err
	}
	parts, err := safemath.SplitLastResidual(total, teamSplitBp)
	if err != nil {
		return 0, TeamSplit{}, err
	}
	return total, TeamSplit{Team: parts[0], Staking: parts[1], Ranking: parts[2]}, nil
}

// FlexibleCancellationPenalty computes the 2.5% principal penalty charged
// on early exit from the flexible pool. The whole penalty is retained by
// the protocol and routed to staking_fund (no further split applies).
func FlexibleCancellationPenalty(principal uint64) (uint64, error) {
	return safemath.BasisPoints(principal, flexibleCancellationPenaltyBp)
}

// StakeEntryTier identifies one of the four USDT entry-fee tiers, keyed by
// the amount of GMC (in whole tokens) being staked.
type StakeEntryTier int

const (
	TierUnder1000 StakeEntryTier = iota + 1
	Tier1000To4999
	Tier5000To9999
	Tier10000AndAbove
)

// StakeEntryFee returns the tier and USDT fee (with team/staking/ranking
// split) for staking gmcAmount base units of GMC.
func StakeEntryFee(gmcAmount uint64) (tier StakeEntryTier, total uint64, split TeamSplit, err error) {
	wholeGMC := gmcAmount / GMCBaseUnitsPerGMC
	var usdtFee uint64
	switch {
	case wholeGMC >= 10000:
		tier, usdtFee = Tier10000AndAbove, 10*USDTBaseUnitsPerUSDT
	case wholeGMC >= 5000:
		tier, usdtFee = Tier5000To9999, 5*USDTBaseUnitsPerUSDT
	case wholeGMC >= 1000:
		tier, usdtFee = Tier1000To4999, 5*USDTBaseUnitsPerUSDT/2 // $2.50
	default:
		tier, usdtFee = TierUnder1000, 1*USDTBaseUnitsPerUSDT
	}

	parts, err := safemath.SplitLastResidual(usdtFee, teamSplitBp)
	if err != nil {
		return 0, 0, TeamSplit{}, err
	}
	return tier, usdtFee, TeamSplit{Team: parts[0], Staking: parts[1], Ranking: parts[2]}, nil
}

// BurnForBoostFee returns the fixed USDT fee and the total GMC that must be
// burned (the requested amount plus 10%) for a burn-for-boost call.
func BurnForBoostFee(burnAmount uint64) (usdtFee uint64, totalBurn uint64, err error) {
	extra, err := safemath.BasisPoints(burnAmount, burnForBoostExtraBp)
	if err != nil {
		return 0, 0, err
	}
	totalBurn, err = safemath.Add(burnAmount, extra)
	if err != nil {
		return 0, 0, err
	}
	return burnForBoostFixedUSDT, totalBurn, nil
}

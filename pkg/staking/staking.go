package staking

import (
	"math/big"

	"github.com/goldminingco/GMC-Token-sub001/pkg/coreerr"
	"github.com/goldminingco/GMC-Token-sub001/pkg/fees"
	"github.com/goldminingco/GMC-Token-sub001/pkg/host"
	"github.com/goldminingco/GMC-Token-sub001/pkg/ledger"
	"github.com/goldminingco/GMC-Token-sub001/pkg/safemath"
)

// errPositionClosed reports an operation attempted against a Closed
// position. There is no dedicated wire code for this case; it
// falls under the "validation" error category (section 7), so it reuses
// ErrInvalidAmount.
var errPositionClosed = coreerr.ErrInvalidAmount

const secondsPerYear = int64(365 * secondsPerDay)

// Stake debits amount GMC from userToken straight into vault (the GMC leg
// is fee-exempt) and charges the tiered USDT entry fee via usdt, split
// team/staking/ranking. Both legs are validated before either is mutated,
// but full cross-operation atomicity is the host's responsibility.
func Stake(
	gs *ledger.GlobalState,
	userToken, vault *ledger.TokenAccount,
	usdt host.SecondaryLedger,
	wallets ledger.EcosystemWallets,
	user host.Identity,
	poolID PoolID,
	amount uint64,
	now int64,
) (*Position, error) {
	_, ok := Pools[poolID]
	if !ok {
		return nil, coreerr.ErrInvalidAmount
	}
	if amount == 0 {
		return nil, coreerr.ErrInvalidAmount
	}
	if !userToken.IsInitialized || !vault.IsInitialized {
		return nil, coreerr.ErrUninitializedAccount
	}
	if userToken.Balance < amount {
		return nil, coreerr.ErrInsufficientFunds
	}

	_, usdtTotal, split, err := fees.StakeEntryFee(amount)
	if err != nil {
		return nil, err
	}
	usdtBalance, err := usdt.Balance(user)
	if err != nil {
		return nil, err
	}
	if usdtBalance < usdtTotal {
		return nil, coreerr.ErrInsufficientFunds
	}

	if err := ledger.Withdraw(userToken, amount); err != nil {
		return nil, err
	}
	if err := ledger.Deposit(vault, amount); err != nil {
		return nil, err
	}

	if split.Team > 0 {
		if err := usdt.DebitTo(user, wallets.Team, split.Team); err != nil {
			return nil, err
		}
	}
	if split.Staking > 0 {
		if err := usdt.DebitTo(user, wallets.StakingFund, split.Staking); err != nil {
			return nil, err
		}
	}
	if split.Ranking > 0 {
		if err := usdt.DebitTo(user, wallets.RankingFund, split.Ranking); err != nil {
			return nil, err
		}
	}

	return &Position{
		Owner:               user,
		PoolID:              poolID,
		Principal:           amount,
		StartTs:             now,
		LastClaimTs:         now,
		BurnBoostMultiplier: boostMultiplierBase,
		State:               StateActive,
	}, nil
}

// AccruedInterest computes the simple-interest-per-segment reward accrued
// on pos since its last claim, at the effective APY implied by now. APY
// changes only take effect from the next claim onward.
// interest = principal * effective_apy_bp * elapsed_seconds / (10000 *
// 365 * 86400), computed in math/big to avoid intermediate overflow before
// the final division brings the result back into uint64 range.
func AccruedInterest(pos *Position, pool Pool, descendantPower uint64, now int64) (uint64, uint64, error) {
	apyBp, err := pos.EffectiveAPYBp(pool, descendantPower)
	if err != nil {
		return 0, 0, err
	}
	elapsed := now - pos.LastClaimTs
	if elapsed <= 0 {
		return 0, apyBp, nil
	}

	numerator := new(big.Int).SetUint64(pos.Principal)
	numerator.Mul(numerator, new(big.Int).SetUint64(apyBp))
	numerator.Mul(numerator, big.NewInt(elapsed))

	denominator := big.NewInt(10000 * secondsPerYear)
	quotient := new(big.Int).Div(numerator, denominator)

	if !quotient.IsUint64() {
		return 0, 0, coreerr.ErrArithmeticOverflow
	}
	return quotient.Uint64(), apyBp, nil
}

// Claim computes interest accrued since pos.LastClaimTs at the effective
// APY, applies the 1% interest-withdrawal fee, and credits the net amount
// to userToken. Because total_supply is fixed after Initialize and minting
// is a one-way-revocable authority, rewards are not minted: gross interest
// is debited from stakingFund (the pool funded by the staking share of
// every transfer fee) and the fee's own team/staking/ranking split is
// credited back out from there.
func Claim(
	pos *Position,
	pool Pool,
	userToken, stakingFund, teamAcct, rankingAcct *ledger.TokenAccount,
	graph AffiliateGraph,
	now int64,
) (uint64, error) {
	if pos.State != StateActive {
		return 0, errPositionClosed
	}

	descendantPower, err := AggregateDescendantPower(graph, pos.Owner)
	if err != nil {
		return 0, err
	}

	interest, _, err := AccruedInterest(pos, pool, descendantPower, now)
	if err != nil {
		return 0, err
	}
	if interest == 0 {
		if now > pos.LastClaimTs {
			pos.LastClaimTs = now
		}
		return 0, nil
	}

	fee, split, err := fees.InterestWithdrawalFee(interest)
	if err != nil {
		return 0, err
	}
	net, err := safemath.Sub(interest, fee)
	if err != nil {
		return 0, err
	}

	if stakingFund.Balance < interest {
		return 0, coreerr.ErrInsufficientFunds
	}

	if err := ledger.Withdraw(stakingFund, interest); err != nil {
		return 0, err
	}
	if err := ledger.Deposit(userToken, net); err != nil {
		return 0, err
	}
	if split.Team > 0 {
		if err := ledger.Deposit(teamAcct, split.Team); err != nil {
			return 0, err
		}
	}
	if split.Staking > 0 {
		if err := ledger.Deposit(stakingFund, split.Staking); err != nil {
			return 0, err
		}
	}
	if split.Ranking > 0 {
		if err := ledger.Deposit(rankingAcct, split.Ranking); err != nil {
			return 0, err
		}
	}

	pos.LastClaimTs = now
	return net, nil
}

// boostSaturationRatioBp is the burn-ratio (in basis points of principal)
// at which burn_boost_contribution has fully saturated the pool's APY
// ceiling; BurnBoostMultiplier is capped at boostMultiplierBase plus this
// value so the multiplier stays monotonic and bounded without reference
// to a pool.
const boostSaturationRatioBp = 10000

// BurnForBoost burns burnAmount+10% GMC from userToken via gs, charges
// the fixed $0.80 USDT fee (routed entirely to staking_fund), and raises
// pos's burn-boost multiplier. The multiplier never decreases.
func BurnForBoost(
	gs *ledger.GlobalState,
	pos *Position,
	userToken, stakingFundGMC *ledger.TokenAccount,
	usdt host.SecondaryLedger,
	stakingFundUSDT host.Identity,
	burnAmount uint64,
) error {
	if pos.State != StateActive {
		return errPositionClosed
	}
	if burnAmount == 0 {
		return coreerr.ErrInvalidAmount
	}

	usdtFee, totalBurn, err := fees.BurnForBoostFee(burnAmount)
	if err != nil {
		return err
	}
	if userToken.Balance < totalBurn {
		return coreerr.ErrInsufficientFunds
	}
	usdtBalance, err := usdt.Balance(pos.Owner)
	if err != nil {
		return err
	}
	if usdtBalance < usdtFee {
		return coreerr.ErrInsufficientFunds
	}

	if err := ledger.Withdraw(userToken, totalBurn); err != nil {
		return err
	}
	if _, _, err := ledger.BurnWithRedirect(gs, stakingFundGMC, totalBurn); err != nil {
		return err
	}
	if err := usdt.DebitTo(pos.Owner, stakingFundUSDT, usdtFee); err != nil {
		return err
	}

	newAccumulated, err := safemath.Add(pos.AccumulatedBurnForBoost, burnAmount)
	if err != nil {
		return err
	}
	pos.AccumulatedBurnForBoost = newAccumulated

	ratioBp, err := saturatingRatioContribution(newAccumulated, pos.Principal, boostSaturationRatioBp, boostSaturationRatioBp)
	if err != nil {
		return err
	}
	newMultiplier := boostMultiplierBase + ratioBp
	if newMultiplier > pos.BurnBoostMultiplier {
		pos.BurnBoostMultiplier = newMultiplier
	}

	return nil
}

// UnstakeResult reports how an Unstake credited the owner.
type UnstakeResult struct {
	NetInterest       uint64
	PrincipalReturned uint64
	Penalty           uint64
}

// TotalCredited returns NetInterest+PrincipalReturned.
func (r UnstakeResult) TotalCredited() uint64 {
	return r.NetInterest + r.PrincipalReturned
}

// Unstake closes pos. A long_term position fails LockNotExpired (with no
// state change at all) until 365 days have elapsed since StartTs; a
// flexible position may exit any time for a 2.5% principal penalty routed
// to stakingFund. Either path triggers a final Claim before returning
// principal.
func Unstake(
	pos *Position,
	pool Pool,
	userToken, vault, stakingFund, teamAcct, rankingAcct *ledger.TokenAccount,
	graph AffiliateGraph,
	now int64,
) (UnstakeResult, error) {
	if pos.State != StateActive {
		return UnstakeResult{}, errPositionClosed
	}

	if pool.ID == PoolLongTerm {
		if now-pos.StartTs < pool.LockSeconds {
			return UnstakeResult{}, coreerr.ErrLockNotExpired
		}
	}

	netInterest, err := Claim(pos, pool, userToken, stakingFund, teamAcct, rankingAcct, graph, now)
	if err != nil {
		return UnstakeResult{}, err
	}

	principal := pos.Principal
	var penalty uint64
	if pool.EarlyExit == EarlyExitPenalty {
		penalty, err = fees.FlexibleCancellationPenalty(principal)
		if err != nil {
			return UnstakeResult{}, err
		}
	}

	principalReturn, err := safemath.Sub(principal, penalty)
	if err != nil {
		return UnstakeResult{}, err
	}

	if err := ledger.Withdraw(vault, principal); err != nil {
		return UnstakeResult{}, err
	}
	if err := ledger.Deposit(userToken, principalReturn); err != nil {
		return UnstakeResult{}, err
	}
	if penalty > 0 {
		if err := ledger.Deposit(stakingFund, penalty); err != nil {
			return UnstakeResult{}, err
		}
	}

	pos.Principal = 0
	pos.State = StateClosed

	return UnstakeResult{NetInterest: netInterest, PrincipalReturned: principalReturn, Penalty: penalty}, nil
}

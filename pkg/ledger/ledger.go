// Package ledger owns the global supply and per-account balance
// accounting, and the conservation invariant every other component's
// mutations must preserve: circulating + burned == total_supply.
package ledger

import (
	"github.com/goldminingco/GMC-Token-sub001/pkg/coreerr"
	"github.com/goldminingco/GMC-Token-sub001/pkg/fees"
	"github.com/goldminingco/GMC-Token-sub001/pkg/host"
	"github.com/goldminingco/GMC-Token-sub001/pkg/safemath"
)

// MinSupplyFloor is the 12,000,000 GMC floor on circulating_supply. Burns
// never take circulating below it.
const MinSupplyFloor = 12_000_000 * fees.GMCBaseUnitsPerGMC

// maxTransferAmount precludes fee-calc overflow: amount*10000 must not
// overflow a uint64.
const maxTransferAmount = ^uint64(0) / 10000

// EcosystemWallets names the seven fee/allocation destinations.
type EcosystemWallets struct {
	Team        host.Identity
	Treasury    host.Identity
	Marketing   host.Identity
	Airdrop     host.Identity
	Presale     host.Identity
	StakingFund host.Identity
	RankingFund host.Identity
}

// GlobalState is the singleton ledger record.
type GlobalState struct {
	TotalSupply          uint64
	CirculatingSupply    uint64
	BurnedSupply         uint64
	Admin                host.Identity
	Wallets              EcosystemWallets
	BurnStopped          bool
	MintAuthorityRevoked bool
	IsInitialized        bool
}

// TokenAccount is a per-holder balance record.
type TokenAccount struct {
	Owner         host.Identity
	Balance       uint64
	IsInitialized bool
}

// TransferResult reports how a Transfer's fee was routed. Transfer has
// already credited the staking/ranking portions to their funds; the caller
// uses the result to emit activity events.
type TransferResult struct {
	NetAmount uint64
	Fee       fees.TransferSplit
	// BurnRedirectedToStaking is non-zero when the burn floor was hit mid-
	// transfer and the would-be burn portion was routed to staking_fund
	// instead, mirroring Burn's floor semantics on the fee path.
	BurnRedirectedToStaking uint64
}

// Initialize performs the one-shot genesis setup. Fails
// AccountAlreadyInitialized if called twice.
func Initialize(gs *GlobalState, admin host.Identity, initialSupply uint64, wallets EcosystemWallets) error {
	if gs.IsInitialized {
		return coreerr.ErrAccountAlreadyInitialized
	}
	if initialSupply == 0 {
		return coreerr.ErrInvalidAmount
	}
	gs.TotalSupply = initialSupply
	gs.CirculatingSupply = initialSupply
	gs.BurnedSupply = 0
	gs.Admin = admin
	gs.Wallets = wallets
	gs.BurnStopped = false
	gs.MintAuthorityRevoked = false
	gs.IsInitialized = true
	return nil
}

// RevokeMintAuthority latches MintAuthorityRevoked true. One-way: calling
// it again is a no-op, not an error, since the end state is the same.
func RevokeMintAuthority(gs *GlobalState) {
	gs.MintAuthorityRevoked = true
}

// validateTransferAmount applies Transfer's amount checks: non-zero and
// no larger than maxTransferAmount.
func validateTransferAmount(amount uint64) error {
	if amount == 0 {
		return coreerr.ErrInvalidAmount
	}
	if amount > maxTransferAmount {
		return coreerr.ErrInvalidAmount
	}
	return nil
}

// Transfer debits amount from from.Balance, credits (amount - fee) to
// to.Balance, and performs the full fee routing FE prescribes within the
// same atomic call: the burn portion is destroyed via Burn (or redirected
// to stakingFund if the floor has been reached), and the staking/ranking
// portions are credited directly to stakingFund and rankingFund. All four
// accounts must already be initialized; from != to is not required, and
// from/to may coincide with stakingFund or rankingFund.
func Transfer(gs *GlobalState, from, to, stakingFund, rankingFund *TokenAccount, amount uint64) (TransferResult, error) {
	if err := validateTransferAmount(amount); err != nil {
		return TransferResult{}, err
	}
	for _, acct := range []*TokenAccount{from, to, stakingFund, rankingFund} {
		if !acct.IsInitialized {
			return TransferResult{}, coreerr.ErrUninitializedAccount
		}
	}
	if from.Balance < amount {
		return TransferResult{}, coreerr.ErrInsufficientFunds
	}

	totalFee, split, err := fees.TransferFee(amount)
	if err != nil {
		return TransferResult{}, err
	}

	netAmount, err := safemath.Sub(amount, totalFee)
	if err != nil {
		return TransferResult{}, err
	}

	newFromBalance, err := safemath.Sub(from.Balance, amount)
	if err != nil {
		return TransferResult{}, err
	}
	newToBalance, err := safemath.Add(to.Balance, netAmount)
	if err != nil {
		return TransferResult{}, err
	}

	from.Balance = newFromBalance
	to.Balance = newToBalance

	result := TransferResult{NetAmount: netAmount, Fee: split}

	if split.Burn > 0 {
		_, redirected, burnErr := BurnWithRedirect(gs, stakingFund, split.Burn)
		if burnErr != nil {
			return TransferResult{}, burnErr
		}
		result.BurnRedirectedToStaking = redirected
	}
	if split.Staking > 0 {
		if err := Deposit(stakingFund, split.Staking); err != nil {
			return TransferResult{}, err
		}
	}
	if split.Ranking > 0 {
		if err := Deposit(rankingFund, split.Ranking); err != nil {
			return TransferResult{}, err
		}
	}

	return result, nil
}

// Burn deducts amount from circulating supply and adds it to burned
// supply, clamped at MinSupplyFloor. If amount would push circulating
// below the floor, only the portion down to the floor is burned; the
// residual is returned to the caller to redirect to staking_fund, and
// BurnStopped latches true. Returns (burned, redirectedToStaking, error).
func Burn(gs *GlobalState, amount uint64) (burned uint64, redirectedToStaking uint64, err error) {
	if amount == 0 {
		return 0, 0, coreerr.ErrInvalidAmount
	}
	if gs.BurnStopped {
		return 0, amount, nil
	}

	room, err := safemath.Sub(gs.CirculatingSupply, MinSupplyFloor)
	if err != nil {
		// Circulating already at or below the floor defensively; treat as
		// no room.
		room = 0
	}

	toBurn := amount
	residual := uint64(0)
	if amount > room {
		toBurn = room
		residual = amount - room
		gs.BurnStopped = true
	}

	if toBurn > 0 {
		newCirculating, subErr := safemath.Sub(gs.CirculatingSupply, toBurn)
		if subErr != nil {
			return 0, 0, subErr
		}
		newBurned, addErr := safemath.Add(gs.BurnedSupply, toBurn)
		if addErr != nil {
			return 0, 0, addErr
		}
		gs.CirculatingSupply = newCirculating
		gs.BurnedSupply = newBurned
	}

	return toBurn, residual, nil
}

// BurnWithRedirect calls Burn and, if the floor was hit, deposits the
// residual into stakingFund, so the call never destroys value; it is only
// ever prevented from destroying it.
// This is what both Transfer's burn leg and the standalone Burn operation
// use.
func BurnWithRedirect(gs *GlobalState, stakingFund *TokenAccount, amount uint64) (burned uint64, redirected uint64, err error) {
	burned, redirected, err = Burn(gs, amount)
	if err != nil {
		return 0, 0, err
	}
	if redirected > 0 {
		if depErr := Deposit(stakingFund, redirected); depErr != nil {
			return 0, 0, depErr
		}
	}
	return burned, redirected, nil
}

// Deposit credits amount to dest via a plain balance credit (no fee — this
// is an internal ledger primitive, not a user-facing Transfer). Transfer's
// fee legs, burn redirects, staking and distribution payouts all use it;
// it performs no authorization check of its own.
func Deposit(dest *TokenAccount, amount uint64) error {
	if amount == 0 {
		return coreerr.ErrInvalidAmount
	}
	if !dest.IsInitialized {
		return coreerr.ErrUninitializedAccount
	}
	newBalance, err := safemath.Add(dest.Balance, amount)
	if err != nil {
		return err
	}
	dest.Balance = newBalance
	return nil
}

// Withdraw debits amount from src, via a plain balance debit. It performs
// no authorization check of its own.
func Withdraw(src *TokenAccount, amount uint64) error {
	if amount == 0 {
		return coreerr.ErrInvalidAmount
	}
	if !src.IsInitialized {
		return coreerr.ErrUninitializedAccount
	}
	if src.Balance < amount {
		return coreerr.ErrInsufficientFunds
	}
	newBalance, err := safemath.Sub(src.Balance, amount)
	if err != nil {
		return err
	}
	src.Balance = newBalance
	return nil
}

// CheckConservation reports whether circulating + burned ==
// total_supply.
func CheckConservation(gs *GlobalState) bool {
	total, err := safemath.Add(gs.CirculatingSupply, gs.BurnedSupply)
	if err != nil {
		return false
	}
	return total == gs.TotalSupply
}

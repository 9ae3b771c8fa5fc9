package ledger

import (
	"errors"
	"testing"

	"github.com/goldminingco/GMC-Token-sub001/pkg/coreerr"
	"github.com/goldminingco/GMC-Token-sub001/pkg/fees"
	"github.com/goldminingco/GMC-Token-sub001/pkg/host"
)

const gmc = fees.GMCBaseUnitsPerGMC

func newInitialized(owner host.Identity, balance uint64) *TokenAccount {
	return &TokenAccount{Owner: owner, Balance: balance, IsInitialized: true}
}

func TestInitializeOnceOnly(t *testing.T) {
	gs := &GlobalState{}
	wallets := EcosystemWallets{}
	if err := Initialize(gs, host.Identity{1}, 100_000_000*gmc, wallets); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !CheckConservation(gs) {
		t.Errorf("conservation violated right after Initialize")
	}
	if err := Initialize(gs, host.Identity{1}, 100_000_000*gmc, wallets); !errors.Is(err, coreerr.ErrAccountAlreadyInitialized) {
		t.Errorf("expected ErrAccountAlreadyInitialized on second call, got %v", err)
	}
}

// TestTransferFeeScenario: 1000 GMC transfer pays a 5 GMC fee split
// 2.5/2/0.5 across burn, staking_fund, and ranking_fund.
func TestTransferFeeScenario(t *testing.T) {
	gs := &GlobalState{
		TotalSupply:       100_000_000 * gmc,
		CirculatingSupply: 100_000_000 * gmc,
		IsInitialized:     true,
	}
	a := newInitialized(host.Identity{1}, 1000*gmc)
	b := newInitialized(host.Identity{2}, 0)
	stakingFund := newInitialized(host.Identity{3}, 0)
	rankingFund := newInitialized(host.Identity{4}, 0)

	result, err := Transfer(gs, a, b, stakingFund, rankingFund, 1000*gmc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if a.Balance != 0 {
		t.Errorf("A balance = %d, want 0", a.Balance)
	}
	if b.Balance != 995*gmc {
		t.Errorf("B balance = %d, want 995 GMC", b.Balance)
	}
	if result.Fee.Burn != 5*gmc/2 {
		t.Errorf("burn = %d, want 2.5 GMC", result.Fee.Burn)
	}
	if stakingFund.Balance != 2*gmc {
		t.Errorf("staking_fund = %d, want 2 GMC", stakingFund.Balance)
	}
	if rankingFund.Balance != gmc/2 {
		t.Errorf("ranking_fund = %d, want 0.5 GMC", rankingFund.Balance)
	}
	if !CheckConservation(gs) {
		t.Errorf("conservation violated after transfer")
	}
}

// TestBurnFloorScenario: a burn that would cross the supply floor stops
// at the floor, redirects the rest to staking_fund, and latches
// BurnStopped.
func TestBurnFloorScenario(t *testing.T) {
	gs := &GlobalState{
		TotalSupply:       MinSupplyFloor + gmc/10,
		CirculatingSupply: MinSupplyFloor + gmc/10,
		IsInitialized:     true,
	}
	stakingFund := newInitialized(host.Identity{3}, 0)

	burned, redirected, err := BurnWithRedirect(gs, stakingFund, gmc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if burned != gmc/10 {
		t.Errorf("burned = %d, want 0.1 GMC", burned)
	}
	if redirected != gmc-gmc/10 {
		t.Errorf("redirected = %d, want 0.9 GMC", redirected)
	}
	if !gs.BurnStopped {
		t.Errorf("expected BurnStopped true")
	}
	if gs.CirculatingSupply != MinSupplyFloor {
		t.Errorf("circulating = %d, want floor %d", gs.CirculatingSupply, MinSupplyFloor)
	}
	if stakingFund.Balance != gmc-gmc/10 {
		t.Errorf("staking_fund = %d, want 0.9 GMC", stakingFund.Balance)
	}
	if !CheckConservation(gs) {
		t.Errorf("conservation violated at burn floor")
	}

	// Subsequent burns route entirely to staking_fund.
	burned2, redirected2, err := BurnWithRedirect(gs, stakingFund, gmc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if burned2 != 0 || redirected2 != gmc {
		t.Errorf("post-floor burn = (%d,%d), want (0,%d)", burned2, redirected2, gmc)
	}
}

func TestTransferInsufficientFunds(t *testing.T) {
	gs := &GlobalState{CirculatingSupply: 1000 * gmc, TotalSupply: 1000 * gmc, IsInitialized: true}
	a := newInitialized(host.Identity{1}, 10*gmc)
	b := newInitialized(host.Identity{2}, 0)
	sf := newInitialized(host.Identity{3}, 0)
	rf := newInitialized(host.Identity{4}, 0)

	if _, err := Transfer(gs, a, b, sf, rf, 100*gmc); !errors.Is(err, coreerr.ErrInsufficientFunds) {
		t.Errorf("expected ErrInsufficientFunds, got %v", err)
	}
}

func TestTransferUninitializedAccount(t *testing.T) {
	gs := &GlobalState{CirculatingSupply: 1000 * gmc, TotalSupply: 1000 * gmc, IsInitialized: true}
	a := newInitialized(host.Identity{1}, 10*gmc)
	b := &TokenAccount{Owner: host.Identity{2}}
	sf := newInitialized(host.Identity{3}, 0)
	rf := newInitialized(host.Identity{4}, 0)

	if _, err := Transfer(gs, a, b, sf, rf, gmc); !errors.Is(err, coreerr.ErrUninitializedAccount) {
		t.Errorf("expected ErrUninitializedAccount, got %v", err)
	}
}

func TestTransferZeroAmountRejected(t *testing.T) {
	gs := &GlobalState{CirculatingSupply: 1000 * gmc, TotalSupply: 1000 * gmc, IsInitialized: true}
	a := newInitialized(host.Identity{1}, 10*gmc)
	b := newInitialized(host.Identity{2}, 0)
	sf := newInitialized(host.Identity{3}, 0)
	rf := newInitialized(host.Identity{4}, 0)

	if _, err := Transfer(gs, a, b, sf, rf, 0); !errors.Is(err, coreerr.ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestDepositWithdraw(t *testing.T) {
	acct := newInitialized(host.Identity{1}, 100)
	if err := Deposit(acct, 50); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if acct.Balance != 150 {
		t.Errorf("balance = %d, want 150", acct.Balance)
	}
	if err := Withdraw(acct, 200); !errors.Is(err, coreerr.ErrInsufficientFunds) {
		t.Errorf("expected ErrInsufficientFunds, got %v", err)
	}
	if err := Withdraw(acct, 150); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if acct.Balance != 0 {
		t.Errorf("balance = %d, want 0", acct.Balance)
	}
}

// TestConservationProperty: for a spread of transfer amounts,
// circulating+burned == total_supply always holds after the call.
func TestConservationProperty(t *testing.T) {
	amounts := []uint64{gmc, 3 * gmc, 17 * gmc, 1000 * gmc, 12345 * gmc}

	for _, amount := range amounts {
		gs := &GlobalState{
			TotalSupply:       1_000_000 * gmc,
			CirculatingSupply: 1_000_000 * gmc,
			IsInitialized:     true,
		}
		a := newInitialized(host.Identity{1}, amount)
		b := newInitialized(host.Identity{2}, 0)
		sf := newInitialized(host.Identity{3}, 0)
		rf := newInitialized(host.Identity{4}, 0)

		if _, err := Transfer(gs, a, b, sf, rf, amount); err != nil {
			t.Fatalf("amount %d: unexpected error: %v", amount, err)
		}
		if !CheckConservation(gs) {
			t.Errorf("amount %d: conservation violated: circulating=%d burned=%d total=%d",
				amount, gs.CirculatingSupply, gs.BurnedSupply, gs.TotalSupply)
		}
	}
}

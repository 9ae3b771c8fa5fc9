package fees

import "testing"

// TestTransferFeeSplit: a 1000 GMC transfer should yield fee=5 GMC, split
// burn=2.5/staking=2/ranking=0.5.
func TestTransferFeeSplit(t *testing.T) {
	amount := uint64(1000) * GMCBaseUnitsPerGMC
	total, split, err := TransferFee(amount)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantTotal := uint64(5) * GMCBaseUnitsPerGMC
	if total != wantTotal {
		t.Errorf("total fee = %d, want %d", total, wantTotal)
	}

	wantBurn := uint64(5) * GMCBaseUnitsPerGMC / 2     // 2.5 GMC
	wantStaking := uint64(2) * GMCBaseUnitsPerGMC      // 2 GMC
	wantRanking := uint64(5) * GMCBaseUnitsPerGMC / 10 // 0.5 GMC

	if split.Burn != wantBurn {
		t.Errorf("burn = %d, want %d", split.Burn, wantBurn)
	}
	if split.Staking != wantStaking {
		t.Errorf("staking = %d, want %d", split.Staking, wantStaking)
	}
	if split.Ranking != wantRanking {
		t.Errorf("ranking = %d, want %d", split.Ranking, wantRanking)
	}
	if split.Total() != total {
		t.Errorf("split total = %d, want %d", split.Total(), total)
	}
}

func TestStakeEntryFeeTiers(t *testing.T) {
	cases := []struct {
		gmc      uint64
		wantTier StakeEntryTier
		wantUSDT uint64
	}{
		{500 * GMCBaseUnitsPerGMC, TierUnder1000, 1_000_000},
		{1500 * GMCBaseUnitsPerGMC, Tier1000To4999, 2_500_000},
		{7000 * GMCBaseUnitsPerGMC, Tier5000To9999, 5_000_000},
		{50000 * GMCBaseUnitsPerGMC, Tier10000AndAbove, 10_000_000},
	}

	for _, c := range cases {
		tier, total, split, err := StakeEntryFee(c.gmc)
		if err != nil {
			t.Fatalf("gmc=%d: unexpected error: %v", c.gmc, err)
		}
		if tier != c.wantTier {
			t.Errorf("gmc=%d: tier = %d, want %d", c.gmc, tier, c.wantTier)
		}
		if total != c.wantUSDT {
			t.Errorf("gmc=%d: usdt fee = %d, want %d", c.gmc, total, c.wantUSDT)
		}
		if split.Total() != total {
			t.Errorf("gmc=%d: split total %d != fee %d", c.gmc, split.Total(), total)
		}
	}
}

// TestStakeEntryFeeTier2Scenario: staking 1500 GMC costs $2.50 split
// 1.0/1.0/0.5 team/staking/ranking.
func TestStakeEntryFeeTier2Scenario(t *testing.T) {
	_, total, split, err := StakeEntryFee(1500 * GMCBaseUnitsPerGMC)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 2_500_000 {
		t.Fatalf("total = %d, want 2_500_000", total)
	}
	if split.Team != 1_000_000 || split.Staking != 1_000_000 || split.Ranking != 500_000 {
		t.Errorf("split = %+v, want team=1_000_000 staking=1_000_000 ranking=500_000", split)
	}
}

func TestBurnForBoostFee(t *testing.T) {
	usdtFee, totalBurn, err := BurnForBoostFee(100 * GMCBaseUnitsPerGMC)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if usdtFee != 800_000 {
		t.Errorf("usdt fee = %d, want 800_000", usdtFee)
	}
	wantBurn := uint64(110) * GMCBaseUnitsPerGMC
	if totalBurn != wantBurn {
		t.Errorf("total burn = %d, want %d", totalBurn, wantBurn)
	}
}

func TestFlexibleCancellationPenalty(t *testing.T) {
	penalty, err := FlexibleCancellationPenalty(1000 * GMCBaseUnitsPerGMC)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := uint64(25) * GMCBaseUnitsPerGMC
	if penalty != want {
		t.Errorf("penalty = %d, want %d", penalty, want)
	}
}

// TestConservationAcrossSplits fuzzes a spread of amounts through every
// split-producing fee function to confirm the parts sum exactly to the
// computed total regardless of rounding.
func TestConservationAcrossSplits(t *testing.T) {
	amounts := []uint64{0, 1, 7, 999, 1_000_000_001, 123456789, 999999999999}

	for _, a := range amounts {
		if total, split, err := TransferFee(a); err == nil && split.Total() != total {
			t.Errorf("TransferFee(%d): split totals %d, want %d", a, split.Total(), total)
		}
		if total, split, err := InterestWithdrawalFee(a); err == nil && split.Total() != total {
			t.Errorf("InterestWithdrawalFee(%d): split totals %d, want %d", a, split.Total(), total)
		}
		if total, split, err := USDTWithdrawalFee(a); err == nil && split.Total() != total {
			t.Errorf("USDTWithdrawalFee(%d): split totals %d, want %d", a, split.Total(), total)
		}
	}
}

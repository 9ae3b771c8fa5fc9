// gmc-demo walks through the GMC deflationary ledger's full operation set
// against an in-memory store: genesis, a fee-bearing transfer, staking in
// both pools with burn-boost and affiliate-boost, early and on-time
// unstaking, and the monthly/annual ranking distributions.
//
// Run: go run ./cmd/gmc-demo
package main

import (
	"fmt"

	"github.com/goldminingco/GMC-Token-sub001/internal/logger"
	"github.com/goldminingco/GMC-Token-sub001/pkg/engine"
	"github.com/goldminingco/GMC-Token-sub001/pkg/fees"
	"github.com/goldminingco/GMC-Token-sub001/pkg/host"
	"github.com/goldminingco/GMC-Token-sub001/pkg/hostadapter/memstate"
	"github.com/goldminingco/GMC-Token-sub001/pkg/ledger"
	"github.com/goldminingco/GMC-Token-sub001/pkg/ranking"
	"github.com/goldminingco/GMC-Token-sub001/pkg/staking"
)

// demoEvents logs every event the engine emits, so each demo section's
// side effects are visible inline.
type demoEvents struct {
	log *logger.Logger
}

func (d *demoEvents) Activity(kind ranking.ActivityKind, user host.Identity, value uint64) {
	d.log.WithFields(logger.Fields{
		"kind":  activityName(kind),
		"user":  shortID(user),
		"value": value,
	}).Debug("activity recorded")
}

func (d *demoEvents) Distribution(kind string, winners []host.Identity, amounts []uint64, poolAfter uint64) {
	var total uint64
	for _, a := range amounts {
		total += a
	}
	d.log.WithFields(logger.Fields{
		"kind":       kind,
		"winners":    len(winners),
		"total_paid": total,
		"pool_after": poolAfter,
	}).Info("distribution settled")
}

func activityName(kind ranking.ActivityKind) string {
	switch kind {
	case ranking.ActivityTransfer:
		return "transfer"
	case ranking.ActivityBurn:
		return "burn"
	case ranking.ActivityReferral:
		return "referral"
	default:
		return "unknown"
	}
}

// identity derives a demo identity from a short label, so log lines stay
// readable without needing real key material.
func identity(label string) host.Identity {
	var id host.Identity
	copy(id[:], label)
	return id
}

func shortID(id host.Identity) string {
	return fmt.Sprintf("%x", id[:4])
}

// signerCaller builds the host.Caller a real host would attach after
// verifying id's signature over the submitted operation.
func signerCaller(id host.Identity) host.Caller {
	return host.Caller{ID: id, Signer: true}
}

func main() {
	log := logger.NewLogger("info")

	log.Info("===========================================================")
	log.Info("  GMC Token Ledger Demo")
	log.Info("  Deflationary supply, two-pool staking, ranking payouts")
	log.Info("===========================================================")
	log.Info("")

	admin := identity("admin")
	wallets := ledger.EcosystemWallets{
		Team:        identity("team"),
		Treasury:    identity("treasury"),
		Marketing:   identity("marketing"),
		Airdrop:     identity("airdrop"),
		Presale:     identity("presale"),
		StakingFund: identity("staking_fund"),
		RankingFund: identity("ranking_fund"),
	}

	store := memstate.NewStore()
	for _, w := range []host.Identity{
		admin, wallets.Team, wallets.Treasury, wallets.Marketing,
		wallets.Airdrop, wallets.Presale, wallets.StakingFund, wallets.RankingFund,
	} {
		store.Account(w)
	}

	clock := memstate.NewClock(1_700_000_000)
	usdt := memstate.NewUSDTLedger()
	events := &demoEvents{log: log}
	eng := engine.New(store, usdt, clock, 100, 1000, events, log)

	// ==================== DEMO 1: Genesis ====================

	log.Info("DEMO 1: Genesis")
	log.Info("-----------------------------------------------------------")

	initialSupply := 100_000_000 * uint64(fees.GMCBaseUnitsPerGMC)
	if err := eng.Initialize(admin, initialSupply, wallets); err != nil {
		log.WithError(err).Fatal("genesis Initialize failed")
	}
	adminAcct, _ := store.LoadAccount(admin)
	adminAcct.Balance = initialSupply
	store.SaveAccount(adminAcct)

	if err := eng.RevokeMintAuthority(signerCaller(admin)); err != nil {
		log.WithError(err).Fatal("RevokeMintAuthority failed")
	}
	log.WithFields(logger.Fields{
		"initial_supply_gmc": initialSupply / fees.GMCBaseUnitsPerGMC,
	}).Info("ledger initialized, mint authority revoked: supply is fixed forever")
	log.Info("")

	// ==================== DEMO 2: Transfer ====================

	log.Info("DEMO 2: Fee-bearing transfer")
	log.Info("-----------------------------------------------------------")

	alice := identity("alice")
	bob := identity("bob")
	store.Account(alice)
	store.Account(bob)

	aliceFunding := uint64(10_000) * fees.GMCBaseUnitsPerGMC
	result, err := eng.Transfer(signerCaller(admin), admin, alice, aliceFunding)
	if err != nil {
		log.WithError(err).Fatal("funding transfer failed")
	}
	log.WithFields(logger.Fields{
		"gross":        aliceFunding,
		"net_to_alice": result.NetAmount,
		"burn":         result.Fee.Burn,
		"staking_fund": result.Fee.Staking,
		"ranking_fund": result.Fee.Ranking,
	}).Info("admin -> alice")

	transferAmount := uint64(1_000) * fees.GMCBaseUnitsPerGMC
	result, err = eng.Transfer(signerCaller(alice), alice, bob, transferAmount)
	if err != nil {
		log.WithError(err).Fatal("alice -> bob transfer failed")
	}
	log.WithFields(logger.Fields{
		"gross":        transferAmount,
		"net_to_bob":   result.NetAmount,
		"burn":         result.Fee.Burn,
		"staking_fund": result.Fee.Staking,
		"ranking_fund": result.Fee.Ranking,
	}).Info("alice -> bob")
	log.Info("")

	// ==================== DEMO 3: Staking ====================

	log.Info("DEMO 3: Staking (long-term and flexible pools)")
	log.Info("-----------------------------------------------------------")

	for _, pool := range []staking.PoolID{staking.PoolLongTerm, staking.PoolFlexible} {
		p, err := eng.InitializePool(pool)
		if err != nil {
			log.WithError(err).Fatal("InitializePool failed")
		}
		log.WithFields(logger.Fields{
			"pool_id":     p.ID,
			"lock_days":   p.LockSeconds / 86400,
			"base_apy_bp": p.BaseAPYBp,
			"max_apy_bp":  p.MaxAPYBp,
		}).Info("pool ready")
	}

	usdt.Credit(alice, 1_000*fees.USDTBaseUnitsPerUSDT)
	usdt.Credit(bob, 1_000*fees.USDTBaseUnitsPerUSDT)

	longTermStake := uint64(2_000) * fees.GMCBaseUnitsPerGMC
	posLong, err := eng.Stake(signerCaller(alice), alice, staking.PoolLongTerm, longTermStake)
	if err != nil {
		log.WithError(err).Fatal("alice long-term Stake failed")
	}
	log.WithFields(logger.Fields{
		"principal": posLong.Principal,
		"pool":      posLong.PoolID,
	}).Info("alice staked into the long-term pool")

	flexStake := uint64(500) * fees.GMCBaseUnitsPerGMC
	posFlex, err := eng.Stake(signerCaller(bob), bob, staking.PoolFlexible, flexStake)
	if err != nil {
		log.WithError(err).Fatal("bob flexible Stake failed")
	}
	log.WithFields(logger.Fields{
		"principal": posFlex.Principal,
		"pool":      posFlex.PoolID,
	}).Info("bob staked into the flexible pool")
	log.Info("")

	// ==================== DEMO 4: Referral and burn-for-boost ====================

	log.Info("DEMO 4: Affiliate referral and burn-for-boost")
	log.Info("-----------------------------------------------------------")

	if err := eng.RegisterReferral(signerCaller(alice), alice, bob); err != nil {
		log.WithError(err).Fatal("RegisterReferral failed")
	}
	log.Info("alice registered bob as a referral: alice's affiliate-boost APY now reflects bob's staking power")

	// keep the staking fund solvent enough to cover the interest these
	// demo positions will claim below
	if _, err := eng.Transfer(signerCaller(admin), admin, wallets.StakingFund, 100_000*fees.GMCBaseUnitsPerGMC); err != nil {
		log.WithError(err).Fatal("staking fund top-up failed")
	}

	boostBurn := uint64(100) * fees.GMCBaseUnitsPerGMC
	if err := eng.BurnForBoost(signerCaller(alice), alice, staking.PoolLongTerm, boostBurn); err != nil {
		log.WithError(err).Fatal("BurnForBoost failed")
	}
	posLong, _ = store.LoadPosition(alice, staking.PoolLongTerm)
	log.WithFields(logger.Fields{
		"burned":                boostBurn,
		"burn_boost_multiplier": posLong.BurnBoostMultiplier,
	}).Info("alice burned GMC to raise her long-term APY multiplier")
	log.Info("")

	// ==================== DEMO 5: Claim and unstake ====================

	log.Info("DEMO 5: Interest claims and unstaking")
	log.Info("-----------------------------------------------------------")

	clock.Advance(30 * 86400)

	claimedFlex, err := eng.Claim(signerCaller(bob), bob, staking.PoolFlexible)
	if err != nil {
		log.WithError(err).Fatal("bob Claim failed")
	}
	log.WithFields(logger.Fields{"claimed": claimedFlex}).Info("bob claimed flexible-pool interest after 30 days")

	flexResult, err := eng.Unstake(signerCaller(bob), bob, staking.PoolFlexible)
	if err != nil {
		log.WithError(err).Fatal("bob Unstake failed")
	}
	log.WithFields(logger.Fields{
		"principal_returned": flexResult.PrincipalReturned,
		"penalty":            flexResult.Penalty,
		"total_credited":     flexResult.TotalCredited(),
	}).Info("bob exited the flexible pool early, paying its 2.5% penalty")

	if _, err := eng.Unstake(signerCaller(alice), alice, staking.PoolLongTerm); err == nil {
		log.Fatal("expected alice's long-term unstake to fail before the 365-day lock elapses")
	} else {
		log.WithField("reason", err).Info("alice's long-term unstake correctly rejected before lock expiry")
	}

	clock.Advance(335 * 86400) // total elapsed now reaches the 365-day lock
	claimedLong, err := eng.Claim(signerCaller(alice), alice, staking.PoolLongTerm)
	if err != nil {
		log.WithError(err).Fatal("alice Claim failed")
	}
	log.WithFields(logger.Fields{"claimed": claimedLong}).Info("alice claimed long-term interest after 365 days")

	longResult, err := eng.Unstake(signerCaller(alice), alice, staking.PoolLongTerm)
	if err != nil {
		log.WithError(err).Fatal("alice Unstake failed")
	}
	log.WithFields(logger.Fields{
		"principal_returned": longResult.PrincipalReturned,
		"penalty":            longResult.Penalty,
		"total_credited":     longResult.TotalCredited(),
	}).Info("alice exited the long-term pool on schedule, no penalty")
	log.Info("")

	// ==================== DEMO 6: Ranking distributions ====================

	log.Info("DEMO 6: Monthly and annual ranking distributions")
	log.Info("-----------------------------------------------------------")

	adminCaller := host.Caller{ID: admin, Signer: true}
	if err := eng.UpdateTop20Holders(adminCaller, []host.Identity{admin}); err != nil {
		log.WithError(err).Fatal("UpdateTop20Holders failed")
	}
	log.Info("top-20 holder snapshot recorded (admin excluded from leaderboard payouts)")

	rf, _ := store.LoadAccount(wallets.RankingFund)
	log.WithField("ranking_fund_balance", rf.Balance).Info("ranking_fund accrued fees from the transfers and burns above")

	monthlyReport, err := eng.DistributeMonthly(adminCaller)
	if err != nil {
		log.WithError(err).Fatal("DistributeMonthly failed")
	}
	log.WithFields(logger.Fields{
		"total_paid":        monthlyReport.TotalPaid,
		"residual_retained": monthlyReport.ResidualRetained,
		"by_tx_count":       len(monthlyReport.ByTxCount),
		"by_referral_count": len(monthlyReport.ByReferralCount),
		"by_burn_volume":    len(monthlyReport.ByBurnVolume),
	}).Info("monthly leaderboard distribution settled")

	clock.Advance(365 * 86400)
	annualReport, err := eng.DistributeAnnual(adminCaller)
	if err != nil {
		log.WithError(err).Fatal("DistributeAnnual failed")
	}
	log.WithFields(logger.Fields{
		"total_paid":        annualReport.TotalPaid,
		"residual_retained": annualReport.ResidualRetained,
		"winners":           len(annualReport.Winners),
	}).Info("annual top-burner distribution settled")
	log.Info("")

	// ==================== DEMO 7: Final supply snapshot ====================

	log.Info("DEMO 7: Final supply snapshot")
	log.Info("-----------------------------------------------------------")

	gs, _ := store.LoadGlobalState()
	log.WithFields(logger.Fields{
		"total_supply":       gs.TotalSupply,
		"circulating_supply": gs.CirculatingSupply,
		"burned_supply":      gs.BurnedSupply,
		"burn_stopped":       gs.BurnStopped,
		"conserved":          ledger.CheckConservation(gs),
	}).Info("final state")

	log.Info("")
	log.Info("Demo complete.")
}

package engine

import (
	"testing"

	"github.com/goldminingco/GMC-Token-sub001/internal/logger"
	"github.com/goldminingco/GMC-Token-sub001/pkg/host"
	"github.com/goldminingco/GMC-Token-sub001/pkg/hostadapter/memstate"
	"github.com/goldminingco/GMC-Token-sub001/pkg/ledger"
	"github.com/goldminingco/GMC-Token-sub001/pkg/ranking"
	"github.com/goldminingco/GMC-Token-sub001/pkg/staking"
)

func identity(b byte) host.Identity {
	var id host.Identity
	id[0] = b
	return id
}

// recorder is a no-op Events sink that counts calls, for assertions that an
// operation fired the expected side effects without caring about payloads.
type recorder struct {
	activities    int
	distributions int
}

func (r *recorder) Activity(kind ranking.ActivityKind, user host.Identity, value uint64) {
	r.activities++
}

func (r *recorder) Distribution(kind string, winners []host.Identity, amounts []uint64, poolAfter uint64) {
	r.distributions++
}

var (
	admin       = identity(1)
	team        = identity(2)
	treasury    = identity(3)
	marketing   = identity(4)
	airdrop     = identity(5)
	presale     = identity(6)
	stakingFund = identity(7)
	rankingFund = identity(8)
)

func wallets() ledger.EcosystemWallets {
	return ledger.EcosystemWallets{
		Team:        team,
		Treasury:    treasury,
		Marketing:   marketing,
		Airdrop:     airdrop,
		Presale:     presale,
		StakingFund: stakingFund,
		RankingFund: rankingFund,
	}
}

// newTestEngine wires a fresh Engine against a memstate.Store, with every
// ecosystem wallet pre-initialized to a zero balance and genesis already run
// for 1_000_000_000 base units.
func newTestEngine(t *testing.T, clockSeconds int64) (*Engine, *memstate.Store, *memstate.USDTLedger, *memstate.Clock, *recorder) {
	t.Helper()
	store := memstate.NewStore()
	for _, w := range []host.Identity{admin, team, treasury, marketing, airdrop, presale, stakingFund, rankingFund} {
		store.Account(w)
	}
	clock := memstate.NewClock(clockSeconds)
	usdt := memstate.NewUSDTLedger()
	rec := &recorder{}
	eng := New(store, usdt, clock, 1000, 100000, rec, logger.NewLogger("error"))

	if err := eng.Initialize(admin, 1_000_000_000, wallets()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	adminAcct, _ := store.LoadAccount(admin)
	adminAcct.Balance = 1_000_000_000
	if err := store.SaveAccount(adminAcct); err != nil {
		t.Fatalf("SaveAccount: %v", err)
	}

	return eng, store, usdt, clock, rec
}

func TestInitializeIsOneShot(t *testing.T) {
	eng, _, _, _, _ := newTestEngine(t, 0)
	if err := eng.Initialize(admin, 500, wallets()); err == nil {
		t.Fatalf("expected second Initialize to fail")
	}
}

func TestTransferRequiresSignerMatchingFrom(t *testing.T) {
	eng, store, _, _, _ := newTestEngine(t, 0)
	bob := identity(20)
	store.Account(bob)

	if _, err := eng.Transfer(host.Caller{ID: identity(99), Signer: true}, admin, bob, 100_000); err == nil {
		t.Fatalf("expected MissingRequiredSignature for a caller that isn't from or admin")
	}
	if _, err := eng.Transfer(host.Caller{ID: admin, Signer: false}, admin, bob, 100_000); err == nil {
		t.Fatalf("expected MissingRequiredSignature when Signer is false")
	}
}

func TestTransferAppliesFeeAndRecordsActivity(t *testing.T) {
	eng, store, _, _, rec := newTestEngine(t, 0)
	bob := identity(20)
	store.Account(bob)

	result, err := eng.Transfer(host.Caller{ID: admin, Signer: true}, admin, bob, 100_000)
	if err != nil {
		t.Fatalf("Transfer: %v", err)
	}
	if result.NetAmount == 0 || result.NetAmount >= 100_000 {
		t.Errorf("NetAmount = %d, want a fee-reduced amount under 100000", result.NetAmount)
	}
	bobAcct, _ := store.LoadAccount(bob)
	if bobAcct.Balance != result.NetAmount {
		t.Errorf("bob balance = %d, want %d", bobAcct.Balance, result.NetAmount)
	}
	if rec.activities == 0 {
		t.Errorf("expected at least one activity event recorded")
	}
}

func TestStakeClaimUnstakeFlexibleRoundTrip(t *testing.T) {
	eng, store, usdt, clock, _ := newTestEngine(t, 1_000_000)
	alice := identity(30)
	store.Account(alice)
	usdt.Credit(alice, 1_000_000_000)

	aliceAcct, _ := store.LoadAccount(alice)
	aliceAcct.Balance = 10_000_000
	store.SaveAccount(aliceAcct)

	if _, err := eng.InitializePool(staking.PoolFlexible); err != nil {
		t.Fatalf("InitializePool: %v", err)
	}

	if _, err := eng.Stake(host.Caller{ID: identity(99), Signer: true}, alice, staking.PoolFlexible, 1_000_000); err == nil {
		t.Fatalf("expected MissingRequiredSignature for a caller that isn't alice")
	}
	pos, err := eng.Stake(host.Caller{ID: alice, Signer: true}, alice, staking.PoolFlexible, 1_000_000)
	if err != nil {
		t.Fatalf("Stake: %v", err)
	}
	if pos.Principal != 1_000_000 {
		t.Fatalf("Principal = %d, want 1000000", pos.Principal)
	}

	// fund staking_fund so Claim/Unstake has interest to pay out of
	sf, _ := store.LoadAccount(stakingFund)
	sf.Balance += 10_000_000
	store.SaveAccount(sf)

	clock.Advance(30 * 86400)
	if _, err := eng.Claim(host.Caller{ID: alice, Signer: true}, alice, staking.PoolFlexible); err != nil {
		t.Fatalf("Claim: %v", err)
	}

	result, err := eng.Unstake(host.Caller{ID: alice, Signer: true}, alice, staking.PoolFlexible)
	if err != nil {
		t.Fatalf("Unstake: %v", err)
	}
	if result.Penalty == 0 {
		t.Errorf("expected a nonzero early-exit penalty on the flexible pool")
	}
	if result.PrincipalReturned == 0 {
		t.Errorf("expected a nonzero principal return")
	}
}

func TestLongTermUnstakeBeforeLockFails(t *testing.T) {
	eng, store, usdt, _, _ := newTestEngine(t, 0)
	carol := identity(40)
	store.Account(carol)
	usdt.Credit(carol, 1_000_000_000)

	carolAcct, _ := store.LoadAccount(carol)
	carolAcct.Balance = 10_000_000
	store.SaveAccount(carolAcct)

	if _, err := eng.Stake(host.Caller{ID: carol, Signer: true}, carol, staking.PoolLongTerm, 1_000_000); err != nil {
		t.Fatalf("Stake: %v", err)
	}
	if _, err := eng.Unstake(host.Caller{ID: carol, Signer: true}, carol, staking.PoolLongTerm); err == nil {
		t.Fatalf("expected LockNotExpired error")
	}
}

func TestRegisterReferralRecordsActivity(t *testing.T) {
	eng, store, _, _, rec := newTestEngine(t, 0)
	referrer, referee := identity(50), identity(51)
	store.Account(referrer)
	store.Account(referee)

	if err := eng.RegisterReferral(host.Caller{ID: identity(99), Signer: true}, referrer, referee); err == nil {
		t.Fatalf("expected MissingRequiredSignature for a caller that isn't referrer")
	}
	if err := eng.RegisterReferral(host.Caller{ID: referrer, Signer: true}, referrer, referee); err != nil {
		t.Fatalf("RegisterReferral: %v", err)
	}
	children, err := store.Children(referrer)
	if err != nil || len(children) != 1 || children[0] != referee {
		t.Fatalf("Children(referrer) = %v, %v", children, err)
	}
	if rec.activities == 0 {
		t.Errorf("expected a referral activity event")
	}
}

func TestDistributeMonthlyRequiresAdmin(t *testing.T) {
	eng, store, _, _, _ := newTestEngine(t, 0)
	rf, _ := store.LoadAccount(rankingFund)
	rf.Balance = 1_000_000
	store.SaveAccount(rf)

	_, err := eng.DistributeMonthly(host.Caller{ID: identity(99), Signer: true})
	if err == nil {
		t.Fatalf("expected Unauthorized for a non-admin caller")
	}

	report, err := eng.DistributeMonthly(host.Caller{ID: admin, Signer: true})
	if err != nil {
		t.Fatalf("DistributeMonthly: %v", err)
	}
	if report.TotalPaid != 0 {
		t.Errorf("TotalPaid = %d, want 0 with no recorded activity", report.TotalPaid)
	}
}

func TestDistributeMonthlyDerivesAccruedFromFundBalance(t *testing.T) {
	eng, store, _, _, _ := newTestEngine(t, 0)
	alice := identity(60)
	store.Account(alice)
	if err := eng.RegisterReferral(host.Caller{ID: admin, Signer: true}, admin, alice); err != nil {
		t.Fatalf("RegisterReferral: %v", err)
	}
	if _, err := eng.Transfer(host.Caller{ID: admin, Signer: true}, admin, alice, 100_000); err != nil {
		t.Fatalf("Transfer: %v", err)
	}

	rf, _ := store.LoadAccount(rankingFund)
	balanceBefore := rf.Balance

	report, err := eng.DistributeMonthly(host.Caller{ID: admin, Signer: true})
	if err != nil {
		t.Fatalf("DistributeMonthly: %v", err)
	}

	rfAfter, _ := store.LoadAccount(rankingFund)
	if balanceBefore-rfAfter.Balance != report.TotalPaid {
		t.Errorf("ranking_fund debited by %d, want exactly TotalPaid=%d", balanceBefore-rfAfter.Balance, report.TotalPaid)
	}
	if report.TotalPaid > balanceBefore {
		t.Errorf("TotalPaid %d exceeds pre-distribution ranking_fund balance %d", report.TotalPaid, balanceBefore)
	}
}

func TestDeposit(t *testing.T) {
	eng, store, _, _, _ := newTestEngine(t, 0)
	donor := identity(70)
	store.Account(donor)
	donorAcct, _ := store.LoadAccount(donor)
	donorAcct.Balance = 1_000_000
	store.SaveAccount(donorAcct)

	if _, err := eng.Deposit(host.Caller{ID: identity(99), Signer: true}, donor, 500_000); err == nil {
		t.Fatalf("expected Unauthorized for a non-admin caller")
	}

	treasuryAcct, _ := store.LoadAccount(treasury)
	treasuryBefore := treasuryAcct.Balance
	result, err := eng.Deposit(host.Caller{ID: admin, Signer: true}, donor, 500_000)
	if err != nil {
		t.Fatalf("Deposit: %v", err)
	}
	treasuryAfter, _ := store.LoadAccount(treasury)
	if treasuryAfter.Balance-treasuryBefore != result.NetAmount {
		t.Errorf("treasury credited %d, want NetAmount=%d", treasuryAfter.Balance-treasuryBefore, result.NetAmount)
	}
}

func TestWithdraw(t *testing.T) {
	eng, store, _, _, _ := newTestEngine(t, 0)
	treasuryAcct, _ := store.LoadAccount(treasury)
	treasuryAcct.Balance = 1_000_000
	store.SaveAccount(treasuryAcct)
	dest := identity(71)
	store.Account(dest)

	if _, err := eng.Withdraw(host.Caller{ID: identity(99), Signer: true}, dest, 500_000); err == nil {
		t.Fatalf("expected Unauthorized for a non-admin caller")
	}

	result, err := eng.Withdraw(host.Caller{ID: admin, Signer: true}, dest, 500_000)
	if err != nil {
		t.Fatalf("Withdraw: %v", err)
	}
	destAcct, _ := store.LoadAccount(dest)
	if destAcct.Balance != result.NetAmount {
		t.Errorf("dest balance = %d, want NetAmount=%d", destAcct.Balance, result.NetAmount)
	}
}

func TestWithdrawUSDTChargesWithdrawalFee(t *testing.T) {
	eng, _, usdt, _, _ := newTestEngine(t, 0)
	dest := identity(80)
	usdt.Credit(treasury, 10_000_000) // $10 of custody

	if _, err := eng.WithdrawUSDT(host.Caller{ID: identity(99), Signer: true}, dest, 1_000_000); err == nil {
		t.Fatalf("expected Unauthorized for a non-admin caller")
	}

	net, err := eng.WithdrawUSDT(host.Caller{ID: admin, Signer: true}, dest, 1_000_000)
	if err != nil {
		t.Fatalf("WithdrawUSDT: %v", err)
	}
	// 0.3% fee on $1.00 = 3000 base units; net = 997000.
	if net != 997_000 {
		t.Errorf("net = %d, want 997000", net)
	}
	destBal, _ := usdt.Balance(dest)
	if destBal != net {
		t.Errorf("dest usdt balance = %d, want %d", destBal, net)
	}
	teamBal, _ := usdt.Balance(team)
	stakingBal, _ := usdt.Balance(stakingFund)
	rankingBal, _ := usdt.Balance(rankingFund)
	if teamBal+stakingBal+rankingBal != 3_000 {
		t.Errorf("fee legs total %d, want 3000", teamBal+stakingBal+rankingBal)
	}
}

func TestRevokeMintAuthorityLatches(t *testing.T) {
	eng, store, _, _, _ := newTestEngine(t, 0)

	if err := eng.RevokeMintAuthority(host.Caller{ID: identity(99), Signer: true}); err == nil {
		t.Fatalf("expected Unauthorized for a non-admin caller")
	}
	if err := eng.RevokeMintAuthority(host.Caller{ID: admin, Signer: true}); err != nil {
		t.Fatalf("RevokeMintAuthority: %v", err)
	}
	gs, _ := store.LoadGlobalState()
	if !gs.MintAuthorityRevoked {
		t.Errorf("MintAuthorityRevoked not latched")
	}
	// idempotent: a second call is a no-op, not an error
	if err := eng.RevokeMintAuthority(host.Caller{ID: admin, Signer: true}); err != nil {
		t.Fatalf("second RevokeMintAuthority: %v", err)
	}
}

func TestUpdateTop20HoldersRequiresAdmin(t *testing.T) {
	eng, _, _, _, _ := newTestEngine(t, 0)
	if err := eng.UpdateTop20Holders(host.Caller{ID: identity(7), Signer: true}, []host.Identity{identity(1)}); err == nil {
		t.Fatalf("expected Unauthorized for a non-admin caller")
	}
	if err := eng.UpdateTop20Holders(host.Caller{ID: admin, Signer: true}, []host.Identity{identity(1)}); err != nil {
		t.Fatalf("UpdateTop20Holders: %v", err)
	}
}

// Package engine is the orchestration layer the instruction set is
// dispatched through: it wires pkg/ledger, pkg/fees (via ledger and
// staking), pkg/staking, pkg/ranking, and pkg/guard against one storage
// Backend. Each operation loads the accounts it touches, runs the pure
// core functions, and saves what changed.
//
// Every mutating method acquires the reentrancy guard for its operation
// key before touching the Backend and releases it on every return path.
// The key is the operation name plus the identity it acts on, or the
// caller's identity for admin operations that act on no single account.
package engine

import (
	"encoding/hex"
	"fmt"

	"github.com/goldminingco/GMC-Token-sub001/internal/logger"
	"github.com/goldminingco/GMC-Token-sub001/pkg/coreerr"
	"github.com/goldminingco/GMC-Token-sub001/pkg/fees"
	"github.com/goldminingco/GMC-Token-sub001/pkg/guard"
	"github.com/goldminingco/GMC-Token-sub001/pkg/host"
	"github.com/goldminingco/GMC-Token-sub001/pkg/ledger"
	"github.com/goldminingco/GMC-Token-sub001/pkg/ranking"
	"github.com/goldminingco/GMC-Token-sub001/pkg/safemath"
	"github.com/goldminingco/GMC-Token-sub001/pkg/staking"
)

// Backend is everything the engine needs from a storage adapter: both
// pkg/hostadapter/sqlstate.Store and pkg/hostadapter/memstate.Store satisfy
// it without modification.
type Backend interface {
	LoadGlobalState() (*ledger.GlobalState, error)
	SaveGlobalState(*ledger.GlobalState) error
	LoadAccount(owner host.Identity) (*ledger.TokenAccount, error)
	SaveAccount(*ledger.TokenAccount) error
	LoadPosition(owner host.Identity, poolID staking.PoolID) (*staking.Position, error)
	SavePosition(*staking.Position) error
	LoadRankingState() (*ranking.State, error)
	SaveRankingState(*ranking.State) error
	staking.AffiliateGraph
}

// Events receives a notification for every ranking-relevant side effect an
// operation produces, so cmd/gmctokend can fan it out over pkg/streaming
// and pkg/metrics without the engine importing either. A nil Events is a
// valid no-op sink.
type Events interface {
	Activity(kind ranking.ActivityKind, user host.Identity, value uint64)
	Distribution(kind string, winners []host.Identity, amounts []uint64, poolAfter uint64)
}

// Engine dispatches the full instruction set against a Backend.
type Engine struct {
	store  Backend
	usdt   host.SecondaryLedger
	clock  host.Clock
	guard  *guard.Reentrancy
	budget *guard.ComputeBudget
	events Events
	log    *logger.Logger
}

// New builds an Engine. opsPerSecond/burst size pkg/guard's ComputeBudget,
// which every guarded operation charges one token on entry, however much
// affiliate traversal that operation then performs.
func New(store Backend, usdt host.SecondaryLedger, clock host.Clock, opsPerSecond float64, burst int, events Events, log *logger.Logger) *Engine {
	return &Engine{
		store:  store,
		usdt:   usdt,
		clock:  clock,
		guard:  guard.NewReentrancy(),
		budget: guard.NewComputeBudget(opsPerSecond, burst),
		events: events,
		log:    log,
	}
}

func opKey(op string, id host.Identity) string {
	return op + ":" + hex.EncodeToString(id[:])
}

func (e *Engine) enter(op string, id host.Identity) error {
	if err := e.budget.Admit(); err != nil {
		return err
	}
	return e.guard.Enter(opKey(op, id))
}

func (e *Engine) exit(op string, id host.Identity) {
	e.guard.Exit(opKey(op, id))
}

func (e *Engine) emitActivity(kind ranking.ActivityKind, user host.Identity, value uint64) {
	if e.events != nil {
		e.events.Activity(kind, user, value)
	}
}

func (e *Engine) debugf(format string, args ...interface{}) {
	if e.log != nil {
		e.log.Debug(fmt.Sprintf(format, args...))
	}
}

// Initialize performs the one-shot genesis setup.
func (e *Engine) Initialize(admin host.Identity, initialSupply uint64, wallets ledger.EcosystemWallets) error {
	if err := e.enter("Initialize", admin); err != nil {
		return err
	}
	defer e.exit("Initialize", admin)

	gs, err := e.store.LoadGlobalState()
	if err != nil {
		return err
	}
	if err := ledger.Initialize(gs, admin, initialSupply, wallets); err != nil {
		return err
	}
	e.debugf("Initialize: admin=%x supply=%d", admin[:4], initialSupply)
	return e.store.SaveGlobalState(gs)
}

// requireAdmin fails Unauthorized unless caller matches gs.Admin.
func requireAdmin(gs *ledger.GlobalState, caller host.Caller) error {
	if !caller.Signer || caller.ID != gs.Admin {
		return coreerr.ErrUnauthorized
	}
	return nil
}

// requireOwner fails MissingRequiredSignature unless caller is a verified
// signer matching owner exactly. Every owner-gated operation runs this
// before touching state.
func requireOwner(caller host.Caller, owner host.Identity) error {
	if !caller.Signer || caller.ID != owner {
		return coreerr.ErrMissingRequiredSignature
	}
	return nil
}

// requireOwnerOrAdmin fails MissingRequiredSignature unless caller is a
// verified signer matching owner or gs.Admin. The admin branch lets
// Deposit/Withdraw's already admin-authenticated caller route a Transfer
// on behalf of an external account.
func requireOwnerOrAdmin(gs *ledger.GlobalState, caller host.Caller, owner host.Identity) error {
	if !caller.Signer {
		return coreerr.ErrMissingRequiredSignature
	}
	if caller.ID != owner && caller.ID != gs.Admin {
		return coreerr.ErrMissingRequiredSignature
	}
	return nil
}

// Transfer moves amount GMC from -> to, applying FE's transfer fee split,
// and records a transfer activity event for RE. caller must be a verified
// signer matching from (or gs.Admin, for Deposit/Withdraw's internal use).
func (e *Engine) Transfer(caller host.Caller, from, to host.Identity, amount uint64) (ledger.TransferResult, error) {
	if err := e.enter("Transfer", from); err != nil {
		return ledger.TransferResult{}, err
	}
	defer e.exit("Transfer", from)

	gs, err := e.store.LoadGlobalState()
	if err != nil {
		return ledger.TransferResult{}, err
	}
	if err := requireOwnerOrAdmin(gs, caller, from); err != nil {
		return ledger.TransferResult{}, err
	}
	fromAcct, err := e.store.LoadAccount(from)
	if err != nil {
		return ledger.TransferResult{}, err
	}
	toAcct, err := e.store.LoadAccount(to)
	if err != nil {
		return ledger.TransferResult{}, err
	}
	stakingFund, err := e.store.LoadAccount(gs.Wallets.StakingFund)
	if err != nil {
		return ledger.TransferResult{}, err
	}
	rankingFund, err := e.store.LoadAccount(gs.Wallets.RankingFund)
	if err != nil {
		return ledger.TransferResult{}, err
	}

	result, err := ledger.Transfer(gs, fromAcct, toAcct, stakingFund, rankingFund, amount)
	if err != nil {
		return ledger.TransferResult{}, err
	}

	for _, a := range []*ledger.TokenAccount{fromAcct, toAcct, stakingFund, rankingFund} {
		if err := e.store.SaveAccount(a); err != nil {
			return ledger.TransferResult{}, err
		}
	}
	if err := e.store.SaveGlobalState(gs); err != nil {
		return ledger.TransferResult{}, err
	}

	rs, err := e.store.LoadRankingState()
	if err != nil {
		return ledger.TransferResult{}, err
	}
	if err := ranking.RecordActivity(rs, ranking.ActivityTransfer, from, 0); err != nil {
		return ledger.TransferResult{}, err
	}
	if result.Fee.Burn > 0 {
		if err := ranking.RecordActivity(rs, ranking.ActivityBurn, from, result.Fee.Burn); err != nil {
			return ledger.TransferResult{}, err
		}
	}
	if err := e.store.SaveRankingState(rs); err != nil {
		return ledger.TransferResult{}, err
	}

	e.emitActivity(ranking.ActivityTransfer, from, amount)
	e.debugf("Transfer: from=%x to=%x amount=%d fee=%d", from[:4], to[:4], amount, result.Fee.Total())
	return result, nil
}

// Burn performs the standalone, admin-gated Burn operation: amount is
// destroyed straight out of src's balance and out of circulating supply,
// clamped at the floor.
func (e *Engine) Burn(caller host.Caller, src host.Identity, amount uint64) (burned uint64, err error) {
	if err := e.enter("Burn", src); err != nil {
		return 0, err
	}
	defer e.exit("Burn", src)

	gs, err := e.store.LoadGlobalState()
	if err != nil {
		return 0, err
	}
	if err := requireAdmin(gs, caller); err != nil {
		return 0, err
	}
	srcAcct, err := e.store.LoadAccount(src)
	if err != nil {
		return 0, err
	}
	stakingFund, err := e.store.LoadAccount(gs.Wallets.StakingFund)
	if err != nil {
		return 0, err
	}

	if err := ledger.Withdraw(srcAcct, amount); err != nil {
		return 0, err
	}
	burned, _, err = ledger.BurnWithRedirect(gs, stakingFund, amount)
	if err != nil {
		return 0, err
	}

	if err := e.store.SaveAccount(srcAcct); err != nil {
		return 0, err
	}
	if err := e.store.SaveAccount(stakingFund); err != nil {
		return 0, err
	}
	if err := e.store.SaveGlobalState(gs); err != nil {
		return 0, err
	}

	rs, err := e.store.LoadRankingState()
	if err != nil {
		return 0, err
	}
	if err := ranking.RecordActivity(rs, ranking.ActivityBurn, src, burned); err != nil {
		return 0, err
	}
	if err := e.store.SaveRankingState(rs); err != nil {
		return 0, err
	}

	e.emitActivity(ranking.ActivityBurn, src, burned)
	return burned, nil
}

// Deposit moves amount into the treasury wallet from src (admin-gated),
// routed through Transfer so the standard fee split still applies.
func (e *Engine) Deposit(caller host.Caller, src host.Identity, amount uint64) (ledger.TransferResult, error) {
	if err := e.enter("Deposit", src); err != nil {
		return ledger.TransferResult{}, err
	}
	defer e.exit("Deposit", src)

	gs, err := e.store.LoadGlobalState()
	if err != nil {
		return ledger.TransferResult{}, err
	}
	if err := requireAdmin(gs, caller); err != nil {
		return ledger.TransferResult{}, err
	}
	return e.Transfer(caller, src, gs.Wallets.Treasury, amount)
}

// Withdraw moves amount out of the treasury wallet to dest (admin-gated),
// routed through Transfer.
func (e *Engine) Withdraw(caller host.Caller, dest host.Identity, amount uint64) (ledger.TransferResult, error) {
	if err := e.enter("Withdraw", dest); err != nil {
		return ledger.TransferResult{}, err
	}
	defer e.exit("Withdraw", dest)

	gs, err := e.store.LoadGlobalState()
	if err != nil {
		return ledger.TransferResult{}, err
	}
	if err := requireAdmin(gs, caller); err != nil {
		return ledger.TransferResult{}, err
	}
	return e.Transfer(caller, gs.Wallets.Treasury, dest, amount)
}

// WithdrawUSDT pays amount USDT out of the treasury wallet's USDT custody
// to dest (admin-gated), charging the 0.3% withdrawal fee split
// team/staking/ranking in USDT. Returns the net amount credited to dest.
func (e *Engine) WithdrawUSDT(caller host.Caller, dest host.Identity, amount uint64) (uint64, error) {
	if err := e.enter("WithdrawUSDT", dest); err != nil {
		return 0, err
	}
	defer e.exit("WithdrawUSDT", dest)

	gs, err := e.store.LoadGlobalState()
	if err != nil {
		return 0, err
	}
	if err := requireAdmin(gs, caller); err != nil {
		return 0, err
	}

	total, split, err := fees.USDTWithdrawalFee(amount)
	if err != nil {
		return 0, err
	}
	net, err := safemath.Sub(amount, total)
	if err != nil {
		return 0, err
	}
	if net == 0 {
		return 0, coreerr.ErrInvalidAmount
	}

	treasury := gs.Wallets.Treasury
	balance, err := e.usdt.Balance(treasury)
	if err != nil {
		return 0, err
	}
	if balance < amount {
		return 0, coreerr.ErrInsufficientFunds
	}

	if err := e.usdt.DebitTo(treasury, dest, net); err != nil {
		return 0, err
	}
	for _, leg := range []struct {
		to     host.Identity
		amount uint64
	}{
		{gs.Wallets.Team, split.Team},
		{gs.Wallets.StakingFund, split.Staking},
		{gs.Wallets.RankingFund, split.Ranking},
	} {
		if leg.amount == 0 {
			continue
		}
		if err := e.usdt.DebitTo(treasury, leg.to, leg.amount); err != nil {
			return 0, err
		}
	}

	e.debugf("WithdrawUSDT: dest=%x amount=%d fee=%d", dest[:4], amount, total)
	return net, nil
}

// RevokeMintAuthority latches the one-way mint revocation flag
// (admin-gated). Calling it again once latched is a no-op.
func (e *Engine) RevokeMintAuthority(caller host.Caller) error {
	if err := e.enter("RevokeMintAuthority", caller.ID); err != nil {
		return err
	}
	defer e.exit("RevokeMintAuthority", caller.ID)

	gs, err := e.store.LoadGlobalState()
	if err != nil {
		return err
	}
	if err := requireAdmin(gs, caller); err != nil {
		return err
	}
	ledger.RevokeMintAuthority(gs)
	return e.store.SaveGlobalState(gs)
}

// InitializePool validates that poolID names one of the two canonical
// pools. The pool economics themselves are not admin-configurable: both
// pools' APY ranges, lock duration, and penalty are protocol constants,
// not genesis parameters. This operation exists so a host can confirm a
// pool_id is valid before accepting Stake calls against it.
func (e *Engine) InitializePool(poolID staking.PoolID) (staking.Pool, error) {
	pool, ok := staking.Pools[poolID]
	if !ok {
		return staking.Pool{}, coreerr.ErrInvalidAmount
	}
	return pool, nil
}

// Stake opens a new position for user in poolID. caller must be a verified
// signer matching user.
func (e *Engine) Stake(caller host.Caller, user host.Identity, poolID staking.PoolID, amount uint64) (*staking.Position, error) {
	if err := e.enter("Stake", user); err != nil {
		return nil, err
	}
	defer e.exit("Stake", user)
	if err := requireOwner(caller, user); err != nil {
		return nil, err
	}

	gs, err := e.store.LoadGlobalState()
	if err != nil {
		return nil, err
	}
	userToken, err := e.store.LoadAccount(user)
	if err != nil {
		return nil, err
	}
	vault, err := e.store.LoadAccount(gs.Wallets.StakingFund)
	if err != nil {
		return nil, err
	}

	pos, err := staking.Stake(gs, userToken, vault, e.usdt, gs.Wallets, user, poolID, amount, e.clock.Now())
	if err != nil {
		return nil, err
	}

	if err := e.store.SaveAccount(userToken); err != nil {
		return nil, err
	}
	if err := e.store.SaveAccount(vault); err != nil {
		return nil, err
	}
	if err := e.store.SavePosition(pos); err != nil {
		return nil, err
	}
	return pos, nil
}

func (e *Engine) loadStakeLegs(owner host.Identity, poolID staking.PoolID, gs *ledger.GlobalState) (*staking.Position, staking.Pool, *ledger.TokenAccount, *ledger.TokenAccount, *ledger.TokenAccount, *ledger.TokenAccount, error) {
	pool, ok := staking.Pools[poolID]
	if !ok {
		return nil, staking.Pool{}, nil, nil, nil, nil, coreerr.ErrInvalidAmount
	}
	pos, err := e.store.LoadPosition(owner, poolID)
	if err != nil {
		return nil, staking.Pool{}, nil, nil, nil, nil, err
	}
	if pos == nil {
		return nil, staking.Pool{}, nil, nil, nil, nil, coreerr.ErrUninitializedAccount
	}
	userToken, err := e.store.LoadAccount(owner)
	if err != nil {
		return nil, staking.Pool{}, nil, nil, nil, nil, err
	}
	stakingFund, err := e.store.LoadAccount(gs.Wallets.StakingFund)
	if err != nil {
		return nil, staking.Pool{}, nil, nil, nil, nil, err
	}
	teamAcct, err := e.store.LoadAccount(gs.Wallets.Team)
	if err != nil {
		return nil, staking.Pool{}, nil, nil, nil, nil, err
	}
	rankingAcct, err := e.store.LoadAccount(gs.Wallets.RankingFund)
	if err != nil {
		return nil, staking.Pool{}, nil, nil, nil, nil, err
	}
	return pos, pool, userToken, stakingFund, teamAcct, rankingAcct, nil
}

// Claim pays out pos's accrued interest to its owner. caller must be a
// verified signer matching owner.
func (e *Engine) Claim(caller host.Caller, owner host.Identity, poolID staking.PoolID) (uint64, error) {
	if err := e.enter("Claim", owner); err != nil {
		return 0, err
	}
	defer e.exit("Claim", owner)
	if err := requireOwner(caller, owner); err != nil {
		return 0, err
	}

	gs, err := e.store.LoadGlobalState()
	if err != nil {
		return 0, err
	}
	pos, pool, userToken, stakingFund, teamAcct, rankingAcct, err := e.loadStakeLegs(owner, poolID, gs)
	if err != nil {
		return 0, err
	}

	net, err := staking.Claim(pos, pool, userToken, stakingFund, teamAcct, rankingAcct, e.store, e.clock.Now())
	if err != nil {
		return 0, err
	}

	for _, a := range []*ledger.TokenAccount{userToken, stakingFund, teamAcct, rankingAcct} {
		if err := e.store.SaveAccount(a); err != nil {
			return 0, err
		}
	}
	if err := e.store.SavePosition(pos); err != nil {
		return 0, err
	}
	return net, nil
}

// BurnForBoost raises pos's burn-boost multiplier at the cost of burning
// extra GMC and a fixed USDT fee, and records a burn activity event. caller
// must be a verified signer matching owner.
func (e *Engine) BurnForBoost(caller host.Caller, owner host.Identity, poolID staking.PoolID, burnAmount uint64) error {
	if err := e.enter("BurnForBoost", owner); err != nil {
		return err
	}
	defer e.exit("BurnForBoost", owner)
	if err := requireOwner(caller, owner); err != nil {
		return err
	}

	gs, err := e.store.LoadGlobalState()
	if err != nil {
		return err
	}
	pos, err := e.store.LoadPosition(owner, poolID)
	if err != nil {
		return err
	}
	if pos == nil {
		return coreerr.ErrUninitializedAccount
	}
	userToken, err := e.store.LoadAccount(owner)
	if err != nil {
		return err
	}
	stakingFundGMC, err := e.store.LoadAccount(gs.Wallets.StakingFund)
	if err != nil {
		return err
	}

	if err := staking.BurnForBoost(gs, pos, userToken, stakingFundGMC, e.usdt, gs.Wallets.StakingFund, burnAmount); err != nil {
		return err
	}

	if err := e.store.SaveAccount(userToken); err != nil {
		return err
	}
	if err := e.store.SaveAccount(stakingFundGMC); err != nil {
		return err
	}
	if err := e.store.SaveGlobalState(gs); err != nil {
		return err
	}
	if err := e.store.SavePosition(pos); err != nil {
		return err
	}

	rs, err := e.store.LoadRankingState()
	if err != nil {
		return err
	}
	if err := ranking.RecordActivity(rs, ranking.ActivityBurn, owner, burnAmount); err != nil {
		return err
	}
	if err := e.store.SaveRankingState(rs); err != nil {
		return err
	}

	e.emitActivity(ranking.ActivityBurn, owner, burnAmount)
	return nil
}

// Unstake closes pos, per pool's lock/penalty rules. caller must be a
// verified signer matching owner.
func (e *Engine) Unstake(caller host.Caller, owner host.Identity, poolID staking.PoolID) (staking.UnstakeResult, error) {
	if err := e.enter("Unstake", owner); err != nil {
		return staking.UnstakeResult{}, err
	}
	defer e.exit("Unstake", owner)
	if err := requireOwner(caller, owner); err != nil {
		return staking.UnstakeResult{}, err
	}

	gs, err := e.store.LoadGlobalState()
	if err != nil {
		return staking.UnstakeResult{}, err
	}
	pos, pool, userToken, stakingFund, teamAcct, rankingAcct, err := e.loadStakeLegs(owner, poolID, gs)
	if err != nil {
		return staking.UnstakeResult{}, err
	}
	vault := stakingFund

	result, err := staking.Unstake(pos, pool, userToken, vault, stakingFund, teamAcct, rankingAcct, e.store, e.clock.Now())
	if err != nil {
		return staking.UnstakeResult{}, err
	}

	for _, a := range []*ledger.TokenAccount{userToken, vault, stakingFund, teamAcct, rankingAcct} {
		if err := e.store.SaveAccount(a); err != nil {
			return staking.UnstakeResult{}, err
		}
	}
	if err := e.store.SavePosition(pos); err != nil {
		return staking.UnstakeResult{}, err
	}
	return result, nil
}

// RegisterReferral attaches referee under referrer in the affiliate graph
// and records a referral activity event. caller must be a verified signer
// matching referrer, the identity whose affiliate subtree is being
// mutated.
func (e *Engine) RegisterReferral(caller host.Caller, referrer, referee host.Identity) error {
	if err := e.enter("RegisterReferral", referee); err != nil {
		return err
	}
	defer e.exit("RegisterReferral", referee)
	if err := requireOwner(caller, referrer); err != nil {
		return err
	}

	if err := staking.RegisterReferral(e.store, referrer, referee); err != nil {
		return err
	}

	rs, err := e.store.LoadRankingState()
	if err != nil {
		return err
	}
	if err := ranking.RecordActivity(rs, ranking.ActivityReferral, referrer, 0); err != nil {
		return err
	}
	if err := e.store.SaveRankingState(rs); err != nil {
		return err
	}

	e.emitActivity(ranking.ActivityReferral, referrer, 0)
	return nil
}

// UpdateTop20Holders replaces the excluded-holder snapshot (admin-gated).
func (e *Engine) UpdateTop20Holders(caller host.Caller, holders []host.Identity) error {
	if err := e.enter("UpdateTop20Holders", caller.ID); err != nil {
		return err
	}
	defer e.exit("UpdateTop20Holders", caller.ID)

	gs, err := e.store.LoadGlobalState()
	if err != nil {
		return err
	}
	if err := requireAdmin(gs, caller); err != nil {
		return err
	}

	rs, err := e.store.LoadRankingState()
	if err != nil {
		return err
	}
	ranking.UpdateTop20Holders(rs, holders)
	return e.store.SaveRankingState(rs)
}

// distributionPayFunc returns a ranking.PayoutFunc crediting amount to id's
// TokenAccount out of src, the way DistributeMonthly/Annual need: the
// ranking_fund balance is the pool being paid out of. Every winner's
// account is mutated only in memory and buffered in dests — nothing is
// saved to the backend until the whole distribution (every leaderboard)
// has succeeded, so a failure partway through never leaves a winner's
// credit persisted without src's matching debit.
func (e *Engine) distributionPayFunc(src *ledger.TokenAccount, dests map[host.Identity]*ledger.TokenAccount) ranking.PayoutFunc {
	return func(id host.Identity, amount uint64) error {
		dest, ok := dests[id]
		if !ok {
			loaded, err := e.store.LoadAccount(id)
			if err != nil {
				return err
			}
			dest = loaded
			dests[id] = dest
		}
		if err := ledger.Withdraw(src, amount); err != nil {
			return err
		}
		return ledger.Deposit(dest, amount)
	}
}

// commitDistribution persists src and every buffered winner account
// together, once the distribution that produced them has fully succeeded.
func (e *Engine) commitDistribution(src *ledger.TokenAccount, dests map[host.Identity]*ledger.TokenAccount) error {
	if err := e.store.SaveAccount(src); err != nil {
		return err
	}
	for _, dest := range dests {
		if err := e.store.SaveAccount(dest); err != nil {
			return err
		}
	}
	return nil
}

// DistributeMonthly runs the monthly leaderboard payout. accrued is derived
// from ranking_fund's own balance rather than trusted from the caller: it
// is whatever sits in the fund beyond what MonthlyPool/AnnualPool already
// account for, so a distribution can never pay out more than the fund
// actually holds.
func (e *Engine) DistributeMonthly(caller host.Caller) (ranking.MonthlyDistributionReport, error) {
	if err := e.enter("DistributeMonthly", caller.ID); err != nil {
		return ranking.MonthlyDistributionReport{}, err
	}
	defer e.exit("DistributeMonthly", caller.ID)

	gs, err := e.store.LoadGlobalState()
	if err != nil {
		return ranking.MonthlyDistributionReport{}, err
	}
	if err := requireAdmin(gs, caller); err != nil {
		return ranking.MonthlyDistributionReport{}, err
	}
	rankingFund, err := e.store.LoadAccount(gs.Wallets.RankingFund)
	if err != nil {
		return ranking.MonthlyDistributionReport{}, err
	}
	rs, err := e.store.LoadRankingState()
	if err != nil {
		return ranking.MonthlyDistributionReport{}, err
	}

	committed, err := safemath.Add(rs.MonthlyPool, rs.AnnualPool)
	if err != nil {
		return ranking.MonthlyDistributionReport{}, err
	}
	accrued, err := safemath.Sub(rankingFund.Balance, committed)
	if err != nil {
		return ranking.MonthlyDistributionReport{}, err
	}

	dests := map[host.Identity]*ledger.TokenAccount{}
	report, err := ranking.DistributeMonthly(rs, accrued, e.clock.Now(), e.distributionPayFunc(rankingFund, dests))
	if err != nil {
		return ranking.MonthlyDistributionReport{}, err
	}

	if err := e.commitDistribution(rankingFund, dests); err != nil {
		return ranking.MonthlyDistributionReport{}, err
	}
	if err := e.store.SaveRankingState(rs); err != nil {
		return ranking.MonthlyDistributionReport{}, err
	}

	if e.events != nil {
		all := append(append(append([]ranking.Payout{}, report.ByTxCount...), report.ByReferralCount...), report.ByBurnVolume...)
		ids := make([]host.Identity, len(all))
		amounts := make([]uint64, len(all))
		for i, p := range all {
			ids[i], amounts[i] = p.ID, p.Amount
		}
		e.events.Distribution("monthly", ids, amounts, rs.MonthlyPool)
	}
	return report, nil
}

// DistributeAnnual runs the annual top-burner payout out of ranking_fund.
func (e *Engine) DistributeAnnual(caller host.Caller) (ranking.AnnualDistributionReport, error) {
	if err := e.enter("DistributeAnnual", caller.ID); err != nil {
		return ranking.AnnualDistributionReport{}, err
	}
	defer e.exit("DistributeAnnual", caller.ID)

	gs, err := e.store.LoadGlobalState()
	if err != nil {
		return ranking.AnnualDistributionReport{}, err
	}
	if err := requireAdmin(gs, caller); err != nil {
		return ranking.AnnualDistributionReport{}, err
	}
	rankingFund, err := e.store.LoadAccount(gs.Wallets.RankingFund)
	if err != nil {
		return ranking.AnnualDistributionReport{}, err
	}
	rs, err := e.store.LoadRankingState()
	if err != nil {
		return ranking.AnnualDistributionReport{}, err
	}

	dests := map[host.Identity]*ledger.TokenAccount{}
	report, err := ranking.DistributeAnnual(rs, e.clock.Now(), e.distributionPayFunc(rankingFund, dests))
	if err != nil {
		return ranking.AnnualDistributionReport{}, err
	}

	if err := e.commitDistribution(rankingFund, dests); err != nil {
		return ranking.AnnualDistributionReport{}, err
	}
	if err := e.store.SaveRankingState(rs); err != nil {
		return ranking.AnnualDistributionReport{}, err
	}

	if e.events != nil {
		ids := make([]host.Identity, len(report.Winners))
		amounts := make([]uint64, len(report.Winners))
		for i, p := range report.Winners {
			ids[i], amounts[i] = p.ID, p.Amount
		}
		e.events.Distribution("annual", ids, amounts, rs.AnnualPool)
	}
	return report, nil
}

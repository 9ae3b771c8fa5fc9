// Package memstate is an in-memory implementation of every host capability
// and persisted record the core needs (pkg/host, pkg/ledger, pkg/staking,
// pkg/ranking), for unit tests and the demo CLI where a real sqlite
// database would be unnecessary ceremony. It is the map-backed test double
// standing next to pkg/hostadapter/sqlstate's real backend.
package memstate

import (
	"sync"

	"github.com/goldminingco/GMC-Token-sub001/pkg/coreerr"
	"github.com/goldminingco/GMC-Token-sub001/pkg/host"
	"github.com/goldminingco/GMC-Token-sub001/pkg/ledger"
	"github.com/goldminingco/GMC-Token-sub001/pkg/ranking"
	"github.com/goldminingco/GMC-Token-sub001/pkg/staking"
)

// Clock is a settable host.Clock for deterministic tests and demos; it
// never calls time.Now() itself, since the core must never depend on wall
// time it didn't receive as an explicit parameter.
type Clock struct {
	seconds int64
}

// NewClock returns a Clock fixed at seconds.
func NewClock(seconds int64) *Clock { return &Clock{seconds: seconds} }

// Now returns the clock's current value.
func (c *Clock) Now() int64 { return c.seconds }

// Advance moves the clock forward by delta seconds.
func (c *Clock) Advance(delta int64) { c.seconds += delta }

// USDTLedger is an in-memory host.SecondaryLedger.
type USDTLedger struct {
	mu       sync.Mutex
	balances map[host.Identity]uint64
}

// NewUSDTLedger returns an empty ledger.
func NewUSDTLedger() *USDTLedger {
	return &USDTLedger{balances: map[host.Identity]uint64{}}
}

// Credit adds amount USDT base units to id's balance (test/demo setup
// helper; not part of host.SecondaryLedger).
func (l *USDTLedger) Credit(id host.Identity, amount uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[id] += amount
}

// Balance implements host.SecondaryLedger.
func (l *USDTLedger) Balance(id host.Identity) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[id], nil
}

// DebitTo implements host.SecondaryLedger.
func (l *USDTLedger) DebitTo(id, dest host.Identity, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.balances[id] < amount {
		return coreerr.ErrInsufficientFunds
	}
	l.balances[id] -= amount
	l.balances[dest] += amount
	return nil
}

// Store bundles an in-memory GlobalState, the per-identity TokenAccounts,
// per-(owner,pool) StakePositions, the referral graph, and the ranking
// state behind one type, mirroring sqlstate.Store's surface without a
// database underneath: one struct implements every Reader and
// staking.AffiliateGraph method the orchestration layer needs, so either
// backend can be swapped in unmodified.
type Store struct {
	mu        sync.Mutex
	Global    *ledger.GlobalState
	Accounts  map[host.Identity]*ledger.TokenAccount
	Positions map[host.Identity]map[staking.PoolID]*staking.Position
	Ranking   *ranking.State

	parent   map[host.Identity]host.Identity
	children map[host.Identity][]host.Identity
}

// NewStore returns an empty Store with a zero-value GlobalState and a
// fresh ranking.State.
func NewStore() *Store {
	return &Store{
		Global:    &ledger.GlobalState{},
		Accounts:  map[host.Identity]*ledger.TokenAccount{},
		Positions: map[host.Identity]map[staking.PoolID]*staking.Position{},
		Ranking:   ranking.NewState(),
		parent:    map[host.Identity]host.Identity{},
		children:  map[host.Identity][]host.Identity{},
	}
}

// Account returns owner's TokenAccount, creating an initialized zero
// balance one if it doesn't exist yet (the demo CLI's convenience; a real
// host would require an explicit account-creation step).
func (s *Store) Account(owner host.Identity) *ledger.TokenAccount {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.Accounts[owner]
	if !ok {
		acct = &ledger.TokenAccount{Owner: owner, IsInitialized: true}
		s.Accounts[owner] = acct
	}
	return acct
}

// Position returns owner's position in poolID, or nil if none exists.
func (s *Store) Position(owner host.Identity, poolID staking.PoolID) *staking.Position {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Positions[owner][poolID]
}

// PutPosition records pos under its (Owner, PoolID) key.
func (s *Store) PutPosition(pos *staking.Position) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byPool, ok := s.Positions[pos.Owner]
	if !ok {
		byPool = map[staking.PoolID]*staking.Position{}
		s.Positions[pos.Owner] = byPool
	}
	byPool[pos.PoolID] = pos
}

// LoadGlobalState implements pkg/engine's Backend interface, giving this
// store the same error-returning read surface as sqlstate.Store so the
// orchestration layer and pkg/api can run against either backend
// interchangeably.
func (s *Store) LoadGlobalState() (*ledger.GlobalState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Global, nil
}

// SaveGlobalState implements pkg/engine's Backend interface. Since
// LoadGlobalState already hands back the live pointer, mutations have
// already taken effect; this reassigns s.Global in case the caller built a
// new GlobalState rather than mutating the loaded one (Initialize does
// neither, but the interface contract must hold regardless).
func (s *Store) SaveGlobalState(gs *ledger.GlobalState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Global = gs
	return nil
}

// LoadAccount implements pkg/engine's Backend interface. Unlike Account, it
// does not auto-create a missing account.
func (s *Store) LoadAccount(owner host.Identity) (*ledger.TokenAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.Accounts[owner]
	if !ok {
		return nil, coreerr.ErrUninitializedAccount
	}
	return acct, nil
}

// SaveAccount implements pkg/engine's Backend interface, upserting acct by
// its Owner.
func (s *Store) SaveAccount(acct *ledger.TokenAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Accounts[acct.Owner] = acct
	return nil
}

// LoadPosition implements pkg/engine's Backend interface.
func (s *Store) LoadPosition(owner host.Identity, poolID staking.PoolID) (*staking.Position, error) {
	return s.Position(owner, poolID), nil
}

// SavePosition implements pkg/engine's Backend interface.
func (s *Store) SavePosition(pos *staking.Position) error {
	s.PutPosition(pos)
	return nil
}

// LoadRankingState implements pkg/engine's Backend interface.
func (s *Store) LoadRankingState() (*ranking.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Ranking, nil
}

// SaveRankingState implements pkg/engine's Backend interface.
func (s *Store) SaveRankingState(rs *ranking.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Ranking = rs
	return nil
}

// StakingPower implements staking.AffiliateGraph by summing the principal
// of every Active position id holds across both pools — computed live from
// Positions, the same live-query approach sqlstate.Store's SQL SUM takes,
// so a Stake/Unstake that mutates Positions is reflected immediately with
// no separate bookkeeping call required.
func (s *Store) StakingPower(id host.Identity) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total uint64
	for _, pos := range s.Positions[id] {
		if pos.State == staking.StateActive {
			total += pos.Principal
		}
	}
	return total, nil
}

// Children implements staking.AffiliateGraph.
func (s *Store) Children(id host.Identity) ([]host.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]host.Identity(nil), s.children[id]...), nil
}

// Parent implements staking.AffiliateGraph.
func (s *Store) Parent(id host.Identity) (host.Identity, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.parent[id]
	return p, ok, nil
}

// AddChild implements staking.AffiliateGraph.
func (s *Store) AddChild(referrer, referee host.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.children[referrer] = append(s.children[referrer], referee)
	s.parent[referee] = referrer
	return nil
}

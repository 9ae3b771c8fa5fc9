// Package sqlstate is the sqlite-backed persistence adapter for the core's
// four record types: GlobalState (one record), per-identity TokenAccount,
// per-position StakePosition, and RankingState (one record). Schema setup
// is "CREATE TABLE IF NOT EXISTS" on open, over the `mattn/go-sqlite3`
// driver.
package sqlstate

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/goldminingco/GMC-Token-sub001/pkg/host"
	"github.com/goldminingco/GMC-Token-sub001/pkg/ledger"
	"github.com/goldminingco/GMC-Token-sub001/pkg/ranking"
	"github.com/goldminingco/GMC-Token-sub001/pkg/staking"
)

// Store wraps a sqlite-backed *sql.DB with the load/save operations the
// orchestration layer needs around each core operation.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the sqlite database at path and
// ensures the schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS global_state (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			total_supply INTEGER NOT NULL,
			circulating_supply INTEGER NOT NULL,
			burned_supply INTEGER NOT NULL,
			admin BLOB NOT NULL,
			team_wallet BLOB NOT NULL,
			treasury_wallet BLOB NOT NULL,
			marketing_wallet BLOB NOT NULL,
			airdrop_wallet BLOB NOT NULL,
			presale_wallet BLOB NOT NULL,
			staking_fund_wallet BLOB NOT NULL,
			ranking_fund_wallet BLOB NOT NULL,
			burn_stopped INTEGER NOT NULL DEFAULT 0,
			mint_authority_revoked INTEGER NOT NULL DEFAULT 0,
			is_initialized INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS token_accounts (
			owner BLOB PRIMARY KEY,
			balance INTEGER NOT NULL DEFAULT 0,
			is_initialized INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS stake_positions (
			owner BLOB NOT NULL,
			pool_id INTEGER NOT NULL,
			principal INTEGER NOT NULL,
			start_ts INTEGER NOT NULL,
			last_claim_ts INTEGER NOT NULL,
			burn_boost_multiplier INTEGER NOT NULL,
			accumulated_burn_for_boost INTEGER NOT NULL,
			state INTEGER NOT NULL,
			PRIMARY KEY (owner, pool_id)
		)`,
		`CREATE TABLE IF NOT EXISTS affiliate_edges (
			referee BLOB PRIMARY KEY,
			referrer BLOB NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_affiliate_referrer ON affiliate_edges(referrer)`,
		`CREATE TABLE IF NOT EXISTS ranking_monthly (
			owner BLOB PRIMARY KEY,
			tx_count INTEGER NOT NULL DEFAULT 0,
			referral_count INTEGER NOT NULL DEFAULT 0,
			burn_volume INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS ranking_annual (
			owner BLOB PRIMARY KEY,
			burn_volume INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS ranking_top20 (
			owner BLOB PRIMARY KEY
		)`,
		`CREATE TABLE IF NOT EXISTS ranking_meta (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			monthly_pool INTEGER NOT NULL DEFAULT 0,
			annual_pool INTEGER NOT NULL DEFAULT 0,
			last_monthly_distribution_ts INTEGER NOT NULL DEFAULT 0,
			last_annual_distribution_ts INTEGER NOT NULL DEFAULT 0
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// LoadGlobalState reads the singleton GlobalState row, returning a zero
// value (IsInitialized == false) if it doesn't exist yet.
func (s *Store) LoadGlobalState() (*ledger.GlobalState, error) {
	row := s.db.QueryRow(`SELECT total_supply, circulating_supply, burned_supply, admin,
		team_wallet, treasury_wallet, marketing_wallet, airdrop_wallet, presale_wallet,
		staking_fund_wallet, ranking_fund_wallet, burn_stopped, mint_authority_revoked,
		is_initialized FROM global_state WHERE id = 1`)

	gs := &ledger.GlobalState{}
	var admin, team, treasury, marketing, airdrop, presale, stakingFund, rankingFund []byte
	var burnStopped, mintRevoked, isInit int
	err := row.Scan(&gs.TotalSupply, &gs.CirculatingSupply, &gs.BurnedSupply, &admin,
		&team, &treasury, &marketing, &airdrop, &presale, &stakingFund, &rankingFund,
		&burnStopped, &mintRevoked, &isInit)
	if err == sql.ErrNoRows {
		return gs, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load global state: %w", err)
	}

	copy(gs.Admin[:], admin)
	copy(gs.Wallets.Team[:], team)
	copy(gs.Wallets.Treasury[:], treasury)
	copy(gs.Wallets.Marketing[:], marketing)
	copy(gs.Wallets.Airdrop[:], airdrop)
	copy(gs.Wallets.Presale[:], presale)
	copy(gs.Wallets.StakingFund[:], stakingFund)
	copy(gs.Wallets.RankingFund[:], rankingFund)
	gs.BurnStopped = burnStopped != 0
	gs.MintAuthorityRevoked = mintRevoked != 0
	gs.IsInitialized = isInit != 0
	return gs, nil
}

// SaveGlobalState upserts the singleton GlobalState row.
func (s *Store) SaveGlobalState(gs *ledger.GlobalState) error {
	_, err := s.db.Exec(`INSERT INTO global_state
		(id, total_supply, circulating_supply, burned_supply, admin, team_wallet,
		 treasury_wallet, marketing_wallet, airdrop_wallet, presale_wallet,
		 staking_fund_wallet, ranking_fund_wallet, burn_stopped, mint_authority_revoked,
		 is_initialized)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			total_supply=excluded.total_supply,
			circulating_supply=excluded.circulating_supply,
			burned_supply=excluded.burned_supply,
			admin=excluded.admin,
			team_wallet=excluded.team_wallet,
			treasury_wallet=excluded.treasury_wallet,
			marketing_wallet=excluded.marketing_wallet,
			airdrop_wallet=excluded.airdrop_wallet,
			presale_wallet=excluded.presale_wallet,
			staking_fund_wallet=excluded.staking_fund_wallet,
			ranking_fund_wallet=excluded.ranking_fund_wallet,
			burn_stopped=excluded.burn_stopped,
			mint_authority_revoked=excluded.mint_authority_revoked,
			is_initialized=excluded.is_initialized`,
		gs.TotalSupply, gs.CirculatingSupply, gs.BurnedSupply, gs.Admin[:],
		gs.Wallets.Team[:], gs.Wallets.Treasury[:], gs.Wallets.Marketing[:],
		gs.Wallets.Airdrop[:], gs.Wallets.Presale[:], gs.Wallets.StakingFund[:],
		gs.Wallets.RankingFund[:], boolToInt(gs.BurnStopped), boolToInt(gs.MintAuthorityRevoked),
		boolToInt(gs.IsInitialized))
	if err != nil {
		return fmt.Errorf("save global state: %w", err)
	}
	return nil
}

// LoadAccount reads one TokenAccount row, returning a zero (uninitialized)
// account if owner has none yet.
func (s *Store) LoadAccount(owner host.Identity) (*ledger.TokenAccount, error) {
	row := s.db.QueryRow(`SELECT balance, is_initialized FROM token_accounts WHERE owner = ?`, owner[:])
	acct := &ledger.TokenAccount{Owner: owner}
	var isInit int
	err := row.Scan(&acct.Balance, &isInit)
	if err == sql.ErrNoRows {
		return acct, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load account: %w", err)
	}
	acct.IsInitialized = isInit != 0
	return acct, nil
}

// SaveAccount upserts one TokenAccount row.
func (s *Store) SaveAccount(acct *ledger.TokenAccount) error {
	_, err := s.db.Exec(`INSERT INTO token_accounts (owner, balance, is_initialized)
		VALUES (?, ?, ?)
		ON CONFLICT(owner) DO UPDATE SET balance=excluded.balance, is_initialized=excluded.is_initialized`,
		acct.Owner[:], acct.Balance, boolToInt(acct.IsInitialized))
	if err != nil {
		return fmt.Errorf("save account: %w", err)
	}
	return nil
}

// LoadPosition reads one StakePosition row, or nil if owner has none in
// poolID.
func (s *Store) LoadPosition(owner host.Identity, poolID staking.PoolID) (*staking.Position, error) {
	row := s.db.QueryRow(`SELECT principal, start_ts, last_claim_ts, burn_boost_multiplier,
		accumulated_burn_for_boost, state FROM stake_positions WHERE owner = ? AND pool_id = ?`,
		owner[:], int(poolID))
	pos := &staking.Position{Owner: owner, PoolID: poolID}
	var state int
	err := row.Scan(&pos.Principal, &pos.StartTs, &pos.LastClaimTs, &pos.BurnBoostMultiplier,
		&pos.AccumulatedBurnForBoost, &state)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load position: %w", err)
	}
	pos.State = staking.State(state)
	return pos, nil
}

// SavePosition upserts one StakePosition row.
func (s *Store) SavePosition(pos *staking.Position) error {
	_, err := s.db.Exec(`INSERT INTO stake_positions
		(owner, pool_id, principal, start_ts, last_claim_ts, burn_boost_multiplier,
		 accumulated_burn_for_boost, state)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(owner, pool_id) DO UPDATE SET
			principal=excluded.principal,
			start_ts=excluded.start_ts,
			last_claim_ts=excluded.last_claim_ts,
			burn_boost_multiplier=excluded.burn_boost_multiplier,
			accumulated_burn_for_boost=excluded.accumulated_burn_for_boost,
			state=excluded.state`,
		pos.Owner[:], int(pos.PoolID), pos.Principal, pos.StartTs, pos.LastClaimTs,
		pos.BurnBoostMultiplier, pos.AccumulatedBurnForBoost, int(pos.State))
	if err != nil {
		return fmt.Errorf("save position: %w", err)
	}
	return nil
}

// StakingPower sums the principal of every Active position owned by id,
// across both pools (staking.AffiliateGraph's definition of "staking
// power").
func (s *Store) StakingPower(id host.Identity) (uint64, error) {
	row := s.db.QueryRow(`SELECT COALESCE(SUM(principal), 0) FROM stake_positions
		WHERE owner = ? AND state = ?`, id[:], int(staking.StateActive))
	var total uint64
	if err := row.Scan(&total); err != nil {
		return 0, fmt.Errorf("sum staking power: %w", err)
	}
	return total, nil
}

// TotalStakedPrincipal sums the principal of every Active position in
// poolID, across all owners. Used for the staked-principal gauge at daemon
// startup.
func (s *Store) TotalStakedPrincipal(poolID staking.PoolID) (uint64, error) {
	row := s.db.QueryRow(`SELECT COALESCE(SUM(principal), 0) FROM stake_positions
		WHERE pool_id = ? AND state = ?`, int(poolID), int(staking.StateActive))
	var total uint64
	if err := row.Scan(&total); err != nil {
		return 0, fmt.Errorf("sum staked principal: %w", err)
	}
	return total, nil
}

// Children returns id's direct referrals (staking.AffiliateGraph).
func (s *Store) Children(id host.Identity) ([]host.Identity, error) {
	rows, err := s.db.Query(`SELECT referee FROM affiliate_edges WHERE referrer = ?`, id[:])
	if err != nil {
		return nil, fmt.Errorf("load children: %w", err)
	}
	defer rows.Close()

	var children []host.Identity
	for rows.Next() {
		var refereeBytes []byte
		if err := rows.Scan(&refereeBytes); err != nil {
			return nil, fmt.Errorf("scan child: %w", err)
		}
		var child host.Identity
		copy(child[:], refereeBytes)
		children = append(children, child)
	}
	return children, rows.Err()
}

// Parent returns id's referrer, if any (staking.AffiliateGraph).
func (s *Store) Parent(id host.Identity) (host.Identity, bool, error) {
	row := s.db.QueryRow(`SELECT referrer FROM affiliate_edges WHERE referee = ?`, id[:])
	var parentBytes []byte
	err := row.Scan(&parentBytes)
	if err == sql.ErrNoRows {
		return host.Identity{}, false, nil
	}
	if err != nil {
		return host.Identity{}, false, fmt.Errorf("load parent: %w", err)
	}
	var parent host.Identity
	copy(parent[:], parentBytes)
	return parent, true, nil
}

// AddChild records referee as referrer's direct child (staking.AffiliateGraph).
func (s *Store) AddChild(referrer, referee host.Identity) error {
	_, err := s.db.Exec(`INSERT INTO affiliate_edges (referee, referrer) VALUES (?, ?)`,
		referee[:], referrer[:])
	if err != nil {
		return fmt.Errorf("add affiliate edge: %w", err)
	}
	return nil
}

// LoadRankingState reconstructs a full ranking.State from its tables.
func (s *Store) LoadRankingState() (*ranking.State, error) {
	rs := ranking.NewState()

	rows, err := s.db.Query(`SELECT owner, tx_count, referral_count, burn_volume FROM ranking_monthly`)
	if err != nil {
		return nil, fmt.Errorf("load monthly counters: %w", err)
	}
	for rows.Next() {
		var ownerBytes []byte
		c := &ranking.UserCounters{}
		if err := rows.Scan(&ownerBytes, &c.TxCount, &c.ReferralCount, &c.BurnVolume); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan monthly counters: %w", err)
		}
		var owner host.Identity
		copy(owner[:], ownerBytes)
		rs.Monthly[owner] = c
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	annualRows, err := s.db.Query(`SELECT owner, burn_volume FROM ranking_annual`)
	if err != nil {
		return nil, fmt.Errorf("load annual counters: %w", err)
	}
	for annualRows.Next() {
		var ownerBytes []byte
		var volume uint64
		if err := annualRows.Scan(&ownerBytes, &volume); err != nil {
			annualRows.Close()
			return nil, fmt.Errorf("scan annual counters: %w", err)
		}
		var owner host.Identity
		copy(owner[:], ownerBytes)
		rs.Annual[owner] = volume
	}
	annualRows.Close()
	if err := annualRows.Err(); err != nil {
		return nil, err
	}

	top20Rows, err := s.db.Query(`SELECT owner FROM ranking_top20`)
	if err != nil {
		return nil, fmt.Errorf("load top20 holders: %w", err)
	}
	for top20Rows.Next() {
		var ownerBytes []byte
		if err := top20Rows.Scan(&ownerBytes); err != nil {
			top20Rows.Close()
			return nil, fmt.Errorf("scan top20 holder: %w", err)
		}
		var owner host.Identity
		copy(owner[:], ownerBytes)
		rs.Top20Holders[owner] = true
	}
	top20Rows.Close()
	if err := top20Rows.Err(); err != nil {
		return nil, err
	}

	row := s.db.QueryRow(`SELECT monthly_pool, annual_pool, last_monthly_distribution_ts,
		last_annual_distribution_ts FROM ranking_meta WHERE id = 1`)
	err = row.Scan(&rs.MonthlyPool, &rs.AnnualPool, &rs.LastMonthlyDistributionTs, &rs.LastAnnualDistributionTs)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("load ranking meta: %w", err)
	}

	return rs, nil
}

// SaveRankingState replaces every ranking table's contents with s.
func (s *Store) SaveRankingState(rs *ranking.State) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin ranking save: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM ranking_monthly`); err != nil {
		tx.Rollback()
		return fmt.Errorf("clear monthly counters: %w", err)
	}
	for owner, c := range rs.Monthly {
		if _, err := tx.Exec(`INSERT INTO ranking_monthly (owner, tx_count, referral_count, burn_volume)
			VALUES (?, ?, ?, ?)`, owner[:], c.TxCount, c.ReferralCount, c.BurnVolume); err != nil {
			tx.Rollback()
			return fmt.Errorf("save monthly counters: %w", err)
		}
	}

	if _, err := tx.Exec(`DELETE FROM ranking_annual`); err != nil {
		tx.Rollback()
		return fmt.Errorf("clear annual counters: %w", err)
	}
	for owner, volume := range rs.Annual {
		if _, err := tx.Exec(`INSERT INTO ranking_annual (owner, burn_volume) VALUES (?, ?)`,
			owner[:], volume); err != nil {
			tx.Rollback()
			return fmt.Errorf("save annual counters: %w", err)
		}
	}

	if _, err := tx.Exec(`DELETE FROM ranking_top20`); err != nil {
		tx.Rollback()
		return fmt.Errorf("clear top20 holders: %w", err)
	}
	for owner := range rs.Top20Holders {
		if _, err := tx.Exec(`INSERT INTO ranking_top20 (owner) VALUES (?)`, owner[:]); err != nil {
			tx.Rollback()
			return fmt.Errorf("save top20 holder: %w", err)
		}
	}

	_, err = tx.Exec(`INSERT INTO ranking_meta (id, monthly_pool, annual_pool,
		last_monthly_distribution_ts, last_annual_distribution_ts)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			monthly_pool=excluded.monthly_pool,
			annual_pool=excluded.annual_pool,
			last_monthly_distribution_ts=excluded.last_monthly_distribution_ts,
			last_annual_distribution_ts=excluded.last_annual_distribution_ts`,
		rs.MonthlyPool, rs.AnnualPool, rs.LastMonthlyDistributionTs, rs.LastAnnualDistributionTs)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("save ranking meta: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit ranking save: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

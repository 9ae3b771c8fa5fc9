// Package ranking tracks per-identity activity counters and runs the
// monthly/annual leaderboard payouts funded by the ranking fee stream. It
// consumes activity events emitted by the fee engine (transfers) and the
// staking engine (burn-for-boost, referral registration) but never calls
// into those packages itself — the caller (the operation orchestrator)
// dispatches RecordActivity after each op it completes.
package ranking

import (
	"sort"

	"github.com/goldminingco/GMC-Token-sub001/pkg/coreerr"
	"github.com/goldminingco/GMC-Token-sub001/pkg/host"
	"github.com/goldminingco/GMC-Token-sub001/pkg/safemath"
)

const secondsPerDay = 86400

// monthlyDistributionIntervalSeconds and annualDistributionIntervalSeconds
// are the minimum elapsed time before DistributeMonthly/DistributeAnnual
// may run again.
const (
	monthlyDistributionIntervalSeconds = 30 * secondsPerDay
	annualDistributionIntervalSeconds  = 365 * secondsPerDay
)

// monthlyAccrualSplitBp is the 90/10 monthly/annual split of ranking_fund
// revenue accrued since the last monthly distribution.
var monthlyAccrualSplitBp = []uint64{9000, 1000}

// topN sizes for each leaderboard.
const (
	monthlyLeaderboardSize = 7
	annualLeaderboardSize  = 12
)

// errTooEarly reports a distribution attempted before its interval has
// elapsed. There is no dedicated wire code for this; it is a validation
// failure, so it reuses InvalidAmount.
var errTooEarly = coreerr.ErrInvalidAmount

// ActivityKind identifies the event that moved a counter.
type ActivityKind int

const (
	ActivityTransfer ActivityKind = iota
	ActivityBurn
	ActivityReferral
)

// UserCounters holds one identity's rolling monthly activity.
type UserCounters struct {
	TxCount       uint64
	ReferralCount uint64
	BurnVolume    uint64
}

// State is the ranking record: one per-ledger singleton, persisted by
// the host.
type State struct {
	Monthly map[host.Identity]*UserCounters
	Annual  map[host.Identity]uint64 // burn_volume accumulated for the year

	MonthlyPool uint64
	AnnualPool  uint64

	LastMonthlyDistributionTs int64
	LastAnnualDistributionTs  int64

	// Top20Holders snapshots the identities excluded from every
	// leaderboard, limiting whale capture of the prize pools.
	Top20Holders map[host.Identity]bool
}

// NewState returns an empty, ready-to-use RankingState.
func NewState() *State {
	return &State{
		Monthly:      map[host.Identity]*UserCounters{},
		Annual:       map[host.Identity]uint64{},
		Top20Holders: map[host.Identity]bool{},
	}
}

func (s *State) monthlyCounters(id host.Identity) *UserCounters {
	c, ok := s.Monthly[id]
	if !ok {
		c = &UserCounters{}
		s.Monthly[id] = c
	}
	return c
}

// RecordActivity applies one activity event to s. Transfers increment
// tx_count by 1; burns (from either the transfer fee's burn leg or
// BurnForBoost) add value to both the monthly and annual burn_volume
// accumulators; referral registrations increment referral_count by 1.
func RecordActivity(s *State, kind ActivityKind, user host.Identity, value uint64) error {
	switch kind {
	case ActivityTransfer:
		c := s.monthlyCounters(user)
		next, err := safemath.Add(c.TxCount, 1)
		if err != nil {
			return err
		}
		c.TxCount = next
	case ActivityReferral:
		c := s.monthlyCounters(user)
		next, err := safemath.Add(c.ReferralCount, 1)
		if err != nil {
			return err
		}
		c.ReferralCount = next
	case ActivityBurn:
		c := s.monthlyCounters(user)
		next, err := safemath.Add(c.BurnVolume, value)
		if err != nil {
			return err
		}
		c.BurnVolume = next

		annualNext, err := safemath.Add(s.Annual[user], value)
		if err != nil {
			return err
		}
		s.Annual[user] = annualNext
	default:
		return coreerr.ErrInvalidAmount
	}
	return nil
}

// UpdateTop20Holders replaces the excluded-holder snapshot. The caller is
// responsible for admin-gating it.
func UpdateTop20Holders(s *State, holders []host.Identity) {
	snapshot := make(map[host.Identity]bool, len(holders))
	for _, h := range holders {
		snapshot[h] = true
	}
	s.Top20Holders = snapshot
}

// scoreEntry pairs an identity with the metric it's being ranked by.
type scoreEntry struct {
	id    host.Identity
	score uint64
}

// topN returns the highest-scoring n entries, excluding any identity in
// excluded, sorted descending by score. Ties are ordered by ascending
// identity bytes, so the result is deterministic; tied winners get equal
// proportional shares anyway.
func topN(scores map[host.Identity]uint64, excluded map[host.Identity]bool, n int) []scoreEntry {
	entries := make([]scoreEntry, 0, len(scores))
	for id, score := range scores {
		if score == 0 || excluded[id] {
			continue
		}
		entries = append(entries, scoreEntry{id: id, score: score})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].score != entries[j].score {
			return entries[i].score > entries[j].score
		}
		return string(entries[i].id[:]) < string(entries[j].id[:])
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

// Payout is one identity's share of a distribution.
type Payout struct {
	ID     host.Identity
	Amount uint64
}

// PayoutFunc credits amount to id; the orchestration layer supplies one
// backed by ledger.Deposit against the identity's TokenAccount.
type PayoutFunc func(id host.Identity, amount uint64) error

// MonthlyDistributionReport summarizes one DistributeMonthly call.
type MonthlyDistributionReport struct {
	ByTxCount       []Payout
	ByReferralCount []Payout
	ByBurnVolume    []Payout
	TotalPaid       uint64
	ResidualRetained uint64
}

// DistributeMonthly runs the monthly distribution. accrued is the
// ranking_fund revenue collected since the last distribution; 90% of it is
// folded into s.MonthlyPool (the remaining 10% into s.AnnualPool) before
// the three top-7 leaderboards are paid out of the pool. Per-winner shares
// are floored (safemath.SplitProportional); any truncation leftover, plus
// the pool balance beyond what the three leaderboard thirds could
// floor-divide, stays in s.MonthlyPool for the next cycle.
func DistributeMonthly(s *State, accrued uint64, now int64, pay PayoutFunc) (MonthlyDistributionReport, error) {
	if s.LastMonthlyDistributionTs != 0 && now-s.LastMonthlyDistributionTs < monthlyDistributionIntervalSeconds {
		return MonthlyDistributionReport{}, errTooEarly
	}

	accrualSplit, err := safemath.SplitLastResidual(accrued, monthlyAccrualSplitBp)
	if err != nil {
		return MonthlyDistributionReport{}, err
	}
	monthlyAdd, annualAdd := accrualSplit[0], accrualSplit[1]

	monthlyPool, err := safemath.Add(s.MonthlyPool, monthlyAdd)
	if err != nil {
		return MonthlyDistributionReport{}, err
	}
	annualPool, err := safemath.Add(s.AnnualPool, annualAdd)
	if err != nil {
		return MonthlyDistributionReport{}, err
	}
	s.MonthlyPool = monthlyPool
	s.AnnualPool = annualPool

	share, err := safemath.Div(s.MonthlyPool, 3)
	if err != nil {
		return MonthlyDistributionReport{}, err
	}

	txScores := map[host.Identity]uint64{}
	referralScores := map[host.Identity]uint64{}
	burnScores := map[host.Identity]uint64{}
	for id, c := range s.Monthly {
		txScores[id] = c.TxCount
		referralScores[id] = c.ReferralCount
		burnScores[id] = c.BurnVolume
	}

	report := MonthlyDistributionReport{}
	var totalPaid uint64

	leaderboards := []struct {
		scores map[host.Identity]uint64
		dest   *[]Payout
	}{
		{txScores, &report.ByTxCount},
		{referralScores, &report.ByReferralCount},
		{burnScores, &report.ByBurnVolume},
	}
	for _, lb := range leaderboards {
		winners := topN(lb.scores, s.Top20Holders, monthlyLeaderboardSize)
		paid, err := payWinners(winners, share, pay)
		if err != nil {
			return MonthlyDistributionReport{}, err
		}
		*lb.dest = paid
		for _, p := range paid {
			totalPaid, err = safemath.Add(totalPaid, p.Amount)
			if err != nil {
				return MonthlyDistributionReport{}, err
			}
		}
	}

	remaining, err := safemath.Sub(s.MonthlyPool, totalPaid)
	if err != nil {
		return MonthlyDistributionReport{}, err
	}
	s.MonthlyPool = remaining
	s.Monthly = map[host.Identity]*UserCounters{}
	s.LastMonthlyDistributionTs = now

	report.TotalPaid = totalPaid
	report.ResidualRetained = remaining
	return report, nil
}

// AnnualDistributionReport summarizes one DistributeAnnual call.
type AnnualDistributionReport struct {
	Winners          []Payout
	TotalPaid        uint64
	ResidualRetained uint64
}

// DistributeAnnual runs the annual distribution: the top-12
// burners of the year (excluding top20_holders) split s.AnnualPool
// proportionally to their annual burn_volume, floored per winner; the
// leftover stays in s.AnnualPool.
func DistributeAnnual(s *State, now int64, pay PayoutFunc) (AnnualDistributionReport, error) {
	if s.LastAnnualDistributionTs != 0 && now-s.LastAnnualDistributionTs < annualDistributionIntervalSeconds {
		return AnnualDistributionReport{}, errTooEarly
	}

	winners := topN(s.Annual, s.Top20Holders, annualLeaderboardSize)
	paid, err := payWinners(winners, s.AnnualPool, pay)
	if err != nil {
		return AnnualDistributionReport{}, err
	}

	var totalPaid uint64
	for _, p := range paid {
		totalPaid, err = safemath.Add(totalPaid, p.Amount)
		if err != nil {
			return AnnualDistributionReport{}, err
		}
	}

	remaining, err := safemath.Sub(s.AnnualPool, totalPaid)
	if err != nil {
		return AnnualDistributionReport{}, err
	}
	s.AnnualPool = remaining
	s.Annual = map[host.Identity]uint64{}
	s.LastAnnualDistributionTs = now

	return AnnualDistributionReport{Winners: paid, TotalPaid: totalPaid, ResidualRetained: remaining}, nil
}

// payWinners splits share among winners proportionally to their score
// (safemath.SplitProportional) and invokes pay for every nonzero amount.
func payWinners(winners []scoreEntry, share uint64, pay PayoutFunc) ([]Payout, error) {
	if len(winners) == 0 {
		return nil, nil
	}
	scores := make([]uint64, len(winners))
	for i, w := range winners {
		scores[i] = w.score
	}
	amounts, _, err := safemath.SplitProportional(share, scores)
	if err != nil {
		return nil, err
	}

	payouts := make([]Payout, 0, len(winners))
	for i, w := range winners {
		if amounts[i] == 0 {
			continue
		}
		if pay != nil {
			if err := pay(w.id, amounts[i]); err != nil {
				return nil, err
			}
		}
		payouts = append(payouts, Payout{ID: w.id, Amount: amounts[i]})
	}
	return payouts, nil
}

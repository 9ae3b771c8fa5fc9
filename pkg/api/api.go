// Package api is the daemon's HTTP surface: read-only state inspection
// (account balances, stake positions, the ranking leaderboard snapshot) plus
// the full mutating instruction set, dispatched through pkg/engine and built
// with github.com/gin-gonic/gin, accepting submitted transactions over REST
// rather than a wallet-signed on-chain transport. Every mutating request
// body carries a dedicated "caller" identity alongside the operation's
// target account(s) (the owner-gated ops mirror the admin-gated ones'
// "admin" field, mirroring an account-references-plus-signer-flag wire
// model), and every handler builds a host.Caller{Signer: true} from it
// before dispatching through pkg/engine, which rejects a caller that doesn't
// match the required authority. Real signature verification backing that
// Signer flag is still the host's responsibility (pkg/host's doc comment):
// this HTTP server trusts the hex identity supplied in the "caller" field as
// already-authenticated, the way a gateway in front of a signed-transaction
// chain trusts whatever signature scheme fronts it.
package api

import (
	"context"
	"encoding/hex"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/goldminingco/GMC-Token-sub001/internal/logger"
	"github.com/goldminingco/GMC-Token-sub001/pkg/host"
	"github.com/goldminingco/GMC-Token-sub001/pkg/ledger"
	"github.com/goldminingco/GMC-Token-sub001/pkg/ranking"
	"github.com/goldminingco/GMC-Token-sub001/pkg/staking"
)

// Reader is the read surface this API needs from a host adapter. Both
// pkg/hostadapter/sqlstate.Store and pkg/hostadapter/memstate.Store satisfy
// it, so the server can run against either backend unmodified.
type Reader interface {
	LoadGlobalState() (*ledger.GlobalState, error)
	LoadAccount(owner host.Identity) (*ledger.TokenAccount, error)
	LoadPosition(owner host.Identity, poolID staking.PoolID) (*staking.Position, error)
	LoadRankingState() (*ranking.State, error)
}

// Dispatcher is the mutating surface this API needs from an orchestration
// layer; *pkg/engine.Engine satisfies it.
type Dispatcher interface {
	Transfer(caller host.Caller, from, to host.Identity, amount uint64) (ledger.TransferResult, error)
	Burn(caller host.Caller, src host.Identity, amount uint64) (uint64, error)
	Stake(caller host.Caller, user host.Identity, poolID staking.PoolID, amount uint64) (*staking.Position, error)
	Claim(caller host.Caller, owner host.Identity, poolID staking.PoolID) (uint64, error)
	BurnForBoost(caller host.Caller, owner host.Identity, poolID staking.PoolID, burnAmount uint64) error
	Unstake(caller host.Caller, owner host.Identity, poolID staking.PoolID) (staking.UnstakeResult, error)
	RegisterReferral(caller host.Caller, referrer, referee host.Identity) error
	UpdateTop20Holders(caller host.Caller, holders []host.Identity) error
	DistributeMonthly(caller host.Caller) (ranking.MonthlyDistributionReport, error)
	DistributeAnnual(caller host.Caller) (ranking.AnnualDistributionReport, error)
	Deposit(caller host.Caller, src host.Identity, amount uint64) (ledger.TransferResult, error)
	Withdraw(caller host.Caller, dest host.Identity, amount uint64) (ledger.TransferResult, error)
	WithdrawUSDT(caller host.Caller, dest host.Identity, amount uint64) (uint64, error)
	RevokeMintAuthority(caller host.Caller) error
}

// Server wraps a gin.Engine bound to a Reader and, optionally, a Dispatcher.
type Server struct {
	reader Reader
	engine Dispatcher
	log    *logger.Logger
	srv    *http.Server
}

// NewServer builds a Server listening on port, reading state from reader and
// dispatching mutating instructions through eng. eng may be nil, in which
// case only the read-only routes are registered (used by tests that only
// exercise inspection).
func NewServer(port int, reader Reader, eng Dispatcher, log *logger.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	s := &Server{reader: reader, engine: eng, log: log}

	r.GET("/healthz", s.handleHealthz)
	r.GET("/v1/supply", s.handleSupply)
	r.GET("/v1/accounts/:identity", s.handleAccount)
	r.GET("/v1/positions/:identity/:pool", s.handlePosition)
	r.GET("/v1/ranking", s.handleRanking)

	if eng != nil {
		r.POST("/v1/transfer", s.handleTransfer)
		r.POST("/v1/burn", s.handleBurn)
		r.POST("/v1/stake", s.handleStake)
		r.POST("/v1/claim", s.handleClaim)
		r.POST("/v1/unstake", s.handleUnstake)
		r.POST("/v1/burn-for-boost", s.handleBurnForBoost)
		r.POST("/v1/referrals", s.handleRegisterReferral)
		r.POST("/v1/admin/top20-holders", s.handleUpdateTop20Holders)
		r.POST("/v1/admin/distribute-monthly", s.handleDistributeMonthly)
		r.POST("/v1/admin/distribute-annual", s.handleDistributeAnnual)
		r.POST("/v1/admin/treasury/deposit", s.handleTreasuryDeposit)
		r.POST("/v1/admin/treasury/withdraw", s.handleTreasuryWithdraw)
		r.POST("/v1/admin/treasury/withdraw-usdt", s.handleTreasuryWithdrawUSDT)
		r.POST("/v1/admin/revoke-mint", s.handleRevokeMintAuthority)
	}

	s.srv = &http.Server{Addr: ":" + strconv.Itoa(port), Handler: r}
	return s
}

// Start blocks serving until the server is shut down.
func (s *Server) Start() error {
	return s.srv.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleSupply(c *gin.Context) {
	gs, err := s.reader.LoadGlobalState()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total_supply":           gs.TotalSupply,
		"circulating_supply":     gs.CirculatingSupply,
		"burned_supply":          gs.BurnedSupply,
		"burn_stopped":           gs.BurnStopped,
		"mint_authority_revoked": gs.MintAuthorityRevoked,
		"is_initialized":         gs.IsInitialized,
	})
}

func parseIdentity(c *gin.Context, param string) (host.Identity, bool) {
	raw, err := hex.DecodeString(c.Param(param))
	if err != nil || len(raw) != 32 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "identity must be 64 hex characters"})
		return host.Identity{}, false
	}
	var id host.Identity
	copy(id[:], raw)
	return id, true
}

// decodeIdentityField hex-decodes one field from a mutating request's JSON
// body, writing a 400 response and returning ok=false on failure.
func decodeIdentityField(c *gin.Context, name, value string) (host.Identity, bool) {
	raw, err := hex.DecodeString(value)
	if err != nil || len(raw) != 32 {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be 64 hex characters"})
		return host.Identity{}, false
	}
	var id host.Identity
	copy(id[:], raw)
	return id, true
}

func (s *Server) handleAccount(c *gin.Context) {
	id, ok := parseIdentity(c, "identity")
	if !ok {
		return
	}
	acct, err := s.reader.LoadAccount(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"owner":          hex.EncodeToString(acct.Owner[:]),
		"balance":        acct.Balance,
		"is_initialized": acct.IsInitialized,
	})
}

func (s *Server) handlePosition(c *gin.Context) {
	id, ok := parseIdentity(c, "identity")
	if !ok {
		return
	}
	poolNum, err := strconv.Atoi(c.Param("pool"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pool must be a small integer (1=long_term, 2=flexible)"})
		return
	}
	pos, err := s.reader.LoadPosition(id, staking.PoolID(poolNum))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if pos == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no position in this pool"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"owner":                      hex.EncodeToString(pos.Owner[:]),
		"pool_id":                    pos.PoolID,
		"principal":                  pos.Principal,
		"start_ts":                   pos.StartTs,
		"last_claim_ts":              pos.LastClaimTs,
		"burn_boost_multiplier":      pos.BurnBoostMultiplier,
		"accumulated_burn_for_boost": pos.AccumulatedBurnForBoost,
		"state":                      pos.State,
	})
}

func (s *Server) handleRanking(c *gin.Context) {
	rs, err := s.reader.LoadRankingState()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"monthly_pool":                 rs.MonthlyPool,
		"annual_pool":                  rs.AnnualPool,
		"last_monthly_distribution_ts": rs.LastMonthlyDistributionTs,
		"last_annual_distribution_ts":  rs.LastAnnualDistributionTs,
		"tracked_monthly_identities":   len(rs.Monthly),
		"tracked_annual_identities":    len(rs.Annual),
		"top20_holder_count":           len(rs.Top20Holders),
	})
}

type transferRequest struct {
	Caller string `json:"caller"`
	From   string `json:"from"`
	To     string `json:"to"`
	Amount uint64 `json:"amount"`
}

func (s *Server) handleTransfer(c *gin.Context) {
	var req transferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	caller, ok := decodeIdentityField(c, "caller", req.Caller)
	if !ok {
		return
	}
	from, ok := decodeIdentityField(c, "from", req.From)
	if !ok {
		return
	}
	to, ok := decodeIdentityField(c, "to", req.To)
	if !ok {
		return
	}
	result, err := s.engine.Transfer(host.Caller{ID: caller, Signer: true}, from, to, req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"net_amount":      result.NetAmount,
		"fee_burn":        result.Fee.Burn,
		"fee_staking":     result.Fee.Staking,
		"fee_ranking":     result.Fee.Ranking,
		"burn_redirected": result.BurnRedirectedToStaking,
	})
}

type burnRequest struct {
	Admin  string `json:"admin"`
	Src    string `json:"src"`
	Amount uint64 `json:"amount"`
}

func (s *Server) handleBurn(c *gin.Context) {
	var req burnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	admin, ok := decodeIdentityField(c, "admin", req.Admin)
	if !ok {
		return
	}
	src, ok := decodeIdentityField(c, "src", req.Src)
	if !ok {
		return
	}
	burned, err := s.engine.Burn(host.Caller{ID: admin, Signer: true}, src, req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"burned": burned})
}

type stakeRequest struct {
	Caller string `json:"caller"`
	User   string `json:"user"`
	PoolID uint8  `json:"pool_id"`
	Amount uint64 `json:"amount"`
}

func (s *Server) handleStake(c *gin.Context) {
	var req stakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	caller, ok := decodeIdentityField(c, "caller", req.Caller)
	if !ok {
		return
	}
	user, ok := decodeIdentityField(c, "user", req.User)
	if !ok {
		return
	}
	pos, err := s.engine.Stake(host.Caller{ID: caller, Signer: true}, user, staking.PoolID(req.PoolID), req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"principal": pos.Principal, "start_ts": pos.StartTs})
}

type positionRequest struct {
	Caller string `json:"caller"`
	User   string `json:"user"`
	PoolID uint8  `json:"pool_id"`
}

func (s *Server) handleClaim(c *gin.Context) {
	var req positionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	caller, ok := decodeIdentityField(c, "caller", req.Caller)
	if !ok {
		return
	}
	user, ok := decodeIdentityField(c, "user", req.User)
	if !ok {
		return
	}
	net, err := s.engine.Claim(host.Caller{ID: caller, Signer: true}, user, staking.PoolID(req.PoolID))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"net_interest": net})
}

func (s *Server) handleUnstake(c *gin.Context) {
	var req positionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	caller, ok := decodeIdentityField(c, "caller", req.Caller)
	if !ok {
		return
	}
	user, ok := decodeIdentityField(c, "user", req.User)
	if !ok {
		return
	}
	result, err := s.engine.Unstake(host.Caller{ID: caller, Signer: true}, user, staking.PoolID(req.PoolID))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"net_interest":       result.NetInterest,
		"principal_returned": result.PrincipalReturned,
		"penalty":            result.Penalty,
	})
}

type burnForBoostRequest struct {
	Caller     string `json:"caller"`
	User       string `json:"user"`
	PoolID     uint8  `json:"pool_id"`
	BurnAmount uint64 `json:"burn_amount"`
}

func (s *Server) handleBurnForBoost(c *gin.Context) {
	var req burnForBoostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	caller, ok := decodeIdentityField(c, "caller", req.Caller)
	if !ok {
		return
	}
	user, ok := decodeIdentityField(c, "user", req.User)
	if !ok {
		return
	}
	if err := s.engine.BurnForBoost(host.Caller{ID: caller, Signer: true}, user, staking.PoolID(req.PoolID), req.BurnAmount); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type referralRequest struct {
	Caller   string `json:"caller"`
	Referrer string `json:"referrer"`
	Referee  string `json:"referee"`
}

func (s *Server) handleRegisterReferral(c *gin.Context) {
	var req referralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	caller, ok := decodeIdentityField(c, "caller", req.Caller)
	if !ok {
		return
	}
	referrer, ok := decodeIdentityField(c, "referrer", req.Referrer)
	if !ok {
		return
	}
	referee, ok := decodeIdentityField(c, "referee", req.Referee)
	if !ok {
		return
	}
	if err := s.engine.RegisterReferral(host.Caller{ID: caller, Signer: true}, referrer, referee); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type top20HoldersRequest struct {
	Admin   string   `json:"admin"`
	Holders []string `json:"holders"`
}

func (s *Server) handleUpdateTop20Holders(c *gin.Context) {
	var req top20HoldersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	admin, ok := decodeIdentityField(c, "admin", req.Admin)
	if !ok {
		return
	}
	holders := make([]host.Identity, len(req.Holders))
	for i, h := range req.Holders {
		id, ok := decodeIdentityField(c, "holders", h)
		if !ok {
			return
		}
		holders[i] = id
	}
	if err := s.engine.UpdateTop20Holders(host.Caller{ID: admin, Signer: true}, holders); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type distributeMonthlyRequest struct {
	Admin string `json:"admin"`
}

func (s *Server) handleDistributeMonthly(c *gin.Context) {
	var req distributeMonthlyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	admin, ok := decodeIdentityField(c, "admin", req.Admin)
	if !ok {
		return
	}
	report, err := s.engine.DistributeMonthly(host.Caller{ID: admin, Signer: true})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total_paid":        report.TotalPaid,
		"residual_retained": report.ResidualRetained,
	})
}

type treasuryTransferRequest struct {
	Admin        string `json:"admin"`
	Counterparty string `json:"counterparty"`
	Amount       uint64 `json:"amount"`
}

func (s *Server) handleTreasuryDeposit(c *gin.Context) {
	var req treasuryTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	admin, ok := decodeIdentityField(c, "admin", req.Admin)
	if !ok {
		return
	}
	src, ok := decodeIdentityField(c, "counterparty", req.Counterparty)
	if !ok {
		return
	}
	result, err := s.engine.Deposit(host.Caller{ID: admin, Signer: true}, src, req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"net_amount":      result.NetAmount,
		"fee_burn":        result.Fee.Burn,
		"fee_staking":     result.Fee.Staking,
		"fee_ranking":     result.Fee.Ranking,
		"burn_redirected": result.BurnRedirectedToStaking,
	})
}

func (s *Server) handleTreasuryWithdraw(c *gin.Context) {
	var req treasuryTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	admin, ok := decodeIdentityField(c, "admin", req.Admin)
	if !ok {
		return
	}
	dest, ok := decodeIdentityField(c, "counterparty", req.Counterparty)
	if !ok {
		return
	}
	result, err := s.engine.Withdraw(host.Caller{ID: admin, Signer: true}, dest, req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"net_amount":      result.NetAmount,
		"fee_burn":        result.Fee.Burn,
		"fee_staking":     result.Fee.Staking,
		"fee_ranking":     result.Fee.Ranking,
		"burn_redirected": result.BurnRedirectedToStaking,
	})
}

func (s *Server) handleTreasuryWithdrawUSDT(c *gin.Context) {
	var req treasuryTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	admin, ok := decodeIdentityField(c, "admin", req.Admin)
	if !ok {
		return
	}
	dest, ok := decodeIdentityField(c, "counterparty", req.Counterparty)
	if !ok {
		return
	}
	net, err := s.engine.WithdrawUSDT(host.Caller{ID: admin, Signer: true}, dest, req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"net_amount": net})
}

type revokeMintRequest struct {
	Admin string `json:"admin"`
}

func (s *Server) handleRevokeMintAuthority(c *gin.Context) {
	var req revokeMintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	admin, ok := decodeIdentityField(c, "admin", req.Admin)
	if !ok {
		return
	}
	if err := s.engine.RevokeMintAuthority(host.Caller{ID: admin, Signer: true}); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type distributeAnnualRequest struct {
	Admin string `json:"admin"`
}

func (s *Server) handleDistributeAnnual(c *gin.Context) {
	var req distributeAnnualRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	admin, ok := decodeIdentityField(c, "admin", req.Admin)
	if !ok {
		return
	}
	report, err := s.engine.DistributeAnnual(host.Caller{ID: admin, Signer: true})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total_paid":        report.TotalPaid,
		"residual_retained": report.ResidualRetained,
	})
}

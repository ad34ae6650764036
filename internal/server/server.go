package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/0xtarunkm/star-fee-distribution/internal/custody"
	"github.com/0xtarunkm/star-fee-distribution/internal/distribution"
	"github.com/0xtarunkm/star-fee-distribution/internal/domain"
	"github.com/0xtarunkm/star-fee-distribution/internal/ledger"
	"github.com/0xtarunkm/star-fee-distribution/internal/observability"
	"github.com/0xtarunkm/star-fee-distribution/internal/position"
)

// Server exposes the ledger and crank operations over HTTP.
type Server struct {
	router  *chi.Mux
	ledger  *ledger.Service
	engine  *distribution.Engine
	creator custody.PositionCreator
	logger  *slog.Logger
	srv     *http.Server
}

// NewServer creates the HTTP server bound to bind:port.
func NewServer(
	bind string,
	port int,
	ledgerSvc *ledger.Service,
	engine *distribution.Engine,
	creator custody.PositionCreator,
	logger *slog.Logger,
) *Server {
	s := &Server{
		router:  chi.NewRouter(),
		ledger:  ledgerSvc,
		engine:  engine,
		creator: creator,
		logger:  logger,
	}

	s.setupRoutes()

	s.srv = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", bind, port),
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/config", s.handleInitConfig)
		r.Get("/config", s.handleGetConfig)
		r.Post("/position", s.handleCreatePosition)

		r.Post("/deposit", s.handleDeposit)
		r.Post("/withdraw", s.handleWithdraw)
		r.Get("/depositors/{investor}", s.handleGetDepositor)
		r.Get("/vault", s.handleGetVaultStats)

		r.Route("/crank", func(r chi.Router) {
			r.Get("/", s.handleGetCrankState)
			r.Post("/claim-fees", s.handleClaimFees)
			r.Post("/start-day", s.handleStartDay)
			r.Post("/pages", s.handleProcessPage)
			r.Post("/distribute", s.handleDistribute)
			r.Post("/close-day", s.handleCloseDay)
		})
	})

	s.router.Get("/health", s.handleHealth)
	s.router.Method(http.MethodGet, "/metrics", observability.Handler())
}

// Router returns the underlying handler, for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start begins serving. Blocks until the listener fails or Shutdown runs.
func (s *Server) Start() error {
	s.logger.Info("http server listening", "addr", s.srv.Addr)
	return s.srv.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// initConfigRequest mirrors the one-time policy configuration.
type initConfigRequest struct {
	Y0Allocation        uint64 `json:"y0_allocation"`
	InvestorFeeShareBps uint16 `json:"investor_fee_share_bps"`
	MinPayoutLamports   uint64 `json:"min_payout_lamports"`
	DailyCapLamports    uint64 `json:"daily_cap_lamports"`
	CreatorWallet       string `json:"creator_wallet"`
	QuoteMint           string `json:"quote_mint"`
}

func (s *Server) handleInitConfig(w http.ResponseWriter, r *http.Request) {
	var req initConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON body")
		return
	}

	cfg := &domain.DistributionConfig{
		Y0Allocation:        req.Y0Allocation,
		InvestorFeeShareBps: req.InvestorFeeShareBps,
		MinPayoutLamports:   req.MinPayoutLamports,
		DailyCapLamports:    req.DailyCapLamports,
		CreatorWallet:       req.CreatorWallet,
		QuoteMint:           req.QuoteMint,
	}

	if err := s.engine.InitializeConfig(r.Context(), cfg); err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, configResponseFrom(cfg))
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.engine.QueryConfig(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, configResponseFrom(cfg))
}

// createPositionRequest describes the honorary quote-only position.
type createPositionRequest struct {
	Position       string `json:"position"`
	BaseWeightBps  uint16 `json:"base_weight_bps"`
	QuoteWeightBps uint16 `json:"quote_weight_bps"`
	LowerTick      int32  `json:"lower_tick"`
	UpperTick      int32  `json:"upper_tick"`
	FeeTierBps     uint16 `json:"fee_tier_bps"`
}

func (s *Server) handleCreatePosition(w http.ResponseWriter, r *http.Request) {
	var req createPositionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON body")
		return
	}

	spec := position.Spec{
		Position:       req.Position,
		BaseWeightBps:  req.BaseWeightBps,
		QuoteWeightBps: req.QuoteWeightBps,
		LowerTick:      req.LowerTick,
		UpperTick:      req.UpperTick,
		FeeTierBps:     req.FeeTierBps,
	}

	if err := position.Create(r.Context(), s.creator, spec); err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, map[string]string{"position": req.Position})
}

// movementRequest is the shared deposit/withdraw body.
type movementRequest struct {
	Investor   string `json:"investor"`
	SolAmount  uint64 `json:"sol_amount"`
	UsdcAmount uint64 `json:"usdc_amount"`
}

func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	var req movementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON body")
		return
	}
	if req.Investor == "" {
		s.writeError(w, http.StatusBadRequest, "missing_investor", "investor is required")
		return
	}

	record, err := s.ledger.Deposit(r.Context(), req.Investor, req.SolAmount, req.UsdcAmount)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, depositorResponseFrom(record, 0))
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	var req movementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON body")
		return
	}
	if req.Investor == "" {
		s.writeError(w, http.StatusBadRequest, "missing_investor", "investor is required")
		return
	}

	record, err := s.ledger.Withdraw(r.Context(), req.Investor, req.SolAmount, req.UsdcAmount)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, depositorResponseFrom(record, 0))
}

func (s *Server) handleGetDepositor(w http.ResponseWriter, r *http.Request) {
	investor := chi.URLParam(r, "investor")
	if investor == "" {
		s.writeError(w, http.StatusBadRequest, "missing_investor", "investor is required")
		return
	}

	view, err := s.ledger.QueryDepositor(r.Context(), investor)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, depositorResponseFrom(view.Record, view.ShareOfVaultBps))
}

func (s *Server) handleGetVaultStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.ledger.QueryVaultStats(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, vaultStatsResponseFrom(stats))
}

func (s *Server) handleGetCrankState(w http.ResponseWriter, r *http.Request) {
	state, err := s.engine.QueryCrankState(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, crankStateResponseFrom(state))
}

type claimFeesRequest struct {
	Position string `json:"position"`
}

func (s *Server) handleClaimFees(w http.ResponseWriter, r *http.Request) {
	var req claimFeesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON body")
		return
	}
	if req.Position == "" {
		s.writeError(w, http.StatusBadRequest, "missing_position", "position is required")
		return
	}

	result, err := s.engine.ClaimFees(r.Context(), req.Position)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]uint64{
		"base_claimed":  result.BaseClaimed,
		"quote_claimed": result.QuoteClaimed,
	})
}

func (s *Server) handleStartDay(w http.ResponseWriter, r *http.Request) {
	state, err := s.engine.StartOrContinueDay(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, crankStateResponseFrom(state))
}

type processPageRequest struct {
	PageIndex      uint32 `json:"page_index"`
	InvestorsCount uint32 `json:"investors_count"`
	IsFinalPage    bool   `json:"is_final_page"`
}

func (s *Server) handleProcessPage(w http.ResponseWriter, r *http.Request) {
	var req processPageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON body")
		return
	}

	state, err := s.engine.ProcessPage(r.Context(), req.PageIndex, req.InvestorsCount, req.IsFinalPage)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, crankStateResponseFrom(state))
}

type distributeRequest struct {
	Investor string `json:"investor"`
}

func (s *Server) handleDistribute(w http.ResponseWriter, r *http.Request) {
	var req distributeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON body")
		return
	}
	if req.Investor == "" {
		s.writeError(w, http.StatusBadRequest, "missing_investor", "investor is required")
		return
	}

	payout, err := s.engine.DistributeToInvestor(r.Context(), req.Investor)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"investor":    payout.Investor,
		"calculated":  payout.Calculated,
		"transferred": payout.Transferred,
		"withheld":    payout.Withheld,
	})
}

type closeDayRequest struct {
	CreatorWallet string `json:"creator_wallet"`
}

func (s *Server) handleCloseDay(w http.ResponseWriter, r *http.Request) {
	var req closeDayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON body")
		return
	}

	remainder, err := s.engine.CloseDay(r.Context(), req.CreatorWallet)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]uint64{"creator_remainder": remainder})
}

// writeJSON writes a JSON response.
func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

// writeError writes an error response with an explicit code.
func (s *Server) writeError(w http.ResponseWriter, status int, code, message string) {
	s.writeJSON(w, status, errorResponse{Error: message, Code: code})
}

// writeDomainError maps a domain error onto status and code.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	status, code := errorStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "code", code, "error", err)
	}
	s.writeError(w, status, code, err.Error())
}

package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/radieske/duel-wager/internal/duel"
	"github.com/radieske/duel-wager/internal/duel/dto"
)

// Server expõe o engine de partidas via REST e o feed ao vivo via /ws
type Server struct {
	log    *zap.Logger
	engine *duel.Engine
	ws     http.HandlerFunc
}

// NewServer recebe o handler do WebSocket; nil desliga a rota /ws
func NewServer(log *zap.Logger, e *duel.Engine, ws http.HandlerFunc) *Server {
	return &Server{log: log, engine: e, ws: ws}
}

// Router retorna o roteador HTTP com os endpoints REST
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/v1/users/{id}", s.profile)            // Saldo e inventário
	r.Post("/v1/wallet/deposit", s.deposit)       // Credita stars
	r.Post("/v1/inventory/grant", s.grant)        // Ajusta inventário
	r.Post("/v1/matches", s.challenge)            // Abre partida com a primeira aposta
	r.Get("/v1/matches/{id}", s.getMatch)         // Partida e apostas
	r.Post("/v1/matches/{id}/bets", s.join)       // Segunda aposta
	r.Post("/v1/matches/{id}/resolve", s.resolve) // Liquida
	r.Post("/v1/fight", s.fight)                  // Luta contra a casa
	if s.ws != nil {
		r.Get("/ws", s.ws)
	}
	return r
}

func (s *Server) profile(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, err := s.engine.Profile(r.Context(), id, r.URL.Query().Get("username"))
	if err != nil {
		s.fail(w, err)
		return
	}
	resp := dto.ProfileResponse{OK: true, UserID: p.User.ID, Username: p.User.Username, Stars: p.User.Stars, Gifts: []dto.Gift{}}
	for _, h := range p.Gifts {
		resp.Gifts = append(resp.Gifts, dto.Gift{Code: h.Code, Title: h.Title, Value: h.Value, Qty: h.Qty})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) deposit(w http.ResponseWriter, r *http.Request) {
	var req dto.DepositRequest
	if !decode(w, r, &req) {
		return
	}
	bal, err := s.engine.Ledger().Credit(r.Context(), req.UserID, req.Amount)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.BalanceResponse{OK: true, UserID: req.UserID, Balance: bal})
}

func (s *Server) grant(w http.ResponseWriter, r *http.Request) {
	var req dto.GrantRequest
	if !decode(w, r, &req) {
		return
	}
	qty, err := s.engine.Ledger().AdjustInventory(r.Context(), req.UserID, req.Code, req.Qty)
	if err != nil {
		s.fail(w, err)
		return
	}
	it, _ := s.engine.Catalog().Lookup(req.Code)
	writeJSON(w, http.StatusOK, dto.InventoryResponse{OK: true, UserID: req.UserID, Code: it.Code, Qty: qty})
}

func (s *Server) challenge(w http.ResponseWriter, r *http.Request) {
	var req dto.StakeRequest
	if !decode(w, r, &req) {
		return
	}
	currency, stake, err := parseStake(req)
	if err != nil {
		s.fail(w, err)
		return
	}
	if _, err := s.engine.EnsureUser(r.Context(), req.UserID, req.Username); err != nil {
		s.fail(w, err)
		return
	}
	m, bet, err := s.engine.Challenge(r.Context(), req.UserID, currency, stake)
	if err != nil {
		s.fail(w, err)
		return
	}
	b := toBet(bet)
	writeJSON(w, http.StatusCreated, dto.MatchResponse{OK: true, Match: toMatch(m, nil), Bet: &b})
}

func (s *Server) join(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req dto.StakeRequest
	if !decode(w, r, &req) {
		return
	}
	view, err := s.engine.Match(r.Context(), id)
	if err != nil {
		s.fail(w, err)
		return
	}
	req.Currency = string(view.Match.Currency)
	_, stake, err := parseStake(req)
	if err != nil {
		s.fail(w, err)
		return
	}
	if _, err := s.engine.EnsureUser(r.Context(), req.UserID, req.Username); err != nil {
		s.fail(w, err)
		return
	}
	bet, m, err := s.engine.PlaceBet(r.Context(), id, req.UserID, stake)
	if err != nil {
		s.fail(w, err)
		return
	}
	b := toBet(bet)
	writeJSON(w, http.StatusCreated, dto.MatchResponse{OK: true, Match: toMatch(m, nil), Bet: &b})
}

func (s *Server) getMatch(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	v, err := s.engine.Match(r.Context(), id)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.MatchResponse{OK: true, Match: toMatch(v.Match, v.Bets)})
}

func (s *Server) resolve(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	st, err := s.engine.Resolve(r.Context(), id)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSettlement(st))
}

func (s *Server) fight(w http.ResponseWriter, r *http.Request) {
	var req dto.StakeRequest
	if !decode(w, r, &req) {
		return
	}
	currency, stake, err := parseStake(req)
	if err != nil {
		s.fail(w, err)
		return
	}
	if _, err := s.engine.EnsureUser(r.Context(), req.UserID, req.Username); err != nil {
		s.fail(w, err)
		return
	}
	res, err := s.engine.FightHouse(r.Context(), req.UserID, currency, stake)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.FightResponse{
		SettlementResponse: toSettlement(res.Settlement),
		Won:                res.Won,
		UserBet:            toBet(res.UserBet),
		HouseBet:           toBet(res.HouseBet),
	})
}

// fail traduz o erro para status HTTP e mensagem ao usuário.
// Erros de storage nunca saem crus.
func (s *Server) fail(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", zap.Error(err))
	}
	writeJSON(w, status, dto.ErrorResponse{OK: false, Error: duel.Reason(err), Code: duel.Code(err)})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, duel.ErrInvalidStake), errors.Is(err, duel.ErrInvalidAmount), errors.Is(err, duel.ErrUnknownItem):
		return http.StatusBadRequest
	case errors.Is(err, duel.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, duel.ErrMatchNotFound), errors.Is(err, duel.ErrUserNotFound):
		return http.StatusNotFound
	case duel.IsContractViolation(err):
		return http.StatusInternalServerError
	case duel.Code(err) != "internal":
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func parseStake(req dto.StakeRequest) (duel.Currency, duel.Stake, error) {
	currency, err := duel.ParseCurrency(req.Currency)
	if err != nil {
		return "", duel.Stake{}, err
	}
	if currency == duel.CurrencyGifts {
		items, err := duel.ParseItems(req.Gifts)
		if err != nil {
			return "", duel.Stake{}, err
		}
		return currency, duel.Stake{Stars: req.Amount, Items: items}, nil
	}
	if req.Gifts != "" {
		return "", duel.Stake{}, duel.ErrInvalidStake
	}
	return currency, duel.StarsStake(req.Amount), nil
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "invalid id", Code: "bad_request"})
		return 0, false
	}
	return id, true
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "bad json", Code: "bad_request"})
		return false
	}
	return true
}

// writeJSON serializa a resposta em JSON e define o status HTTP
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func toBet(b duel.Bet) dto.Bet {
	return dto.Bet{ID: b.ID, UserID: b.UserID, Stars: b.Stars, Gifts: b.Items.String(), Value: b.Value}
}

func toMatch(m duel.Match, bets []duel.Bet) dto.Match {
	out := dto.Match{
		ID:         m.ID,
		Status:     string(m.Status),
		Currency:   string(m.Currency),
		Pool:       m.Pool,
		CreatedAt:  m.CreatedAt,
		ResolvedAt: m.ResolvedAt,
		WinnerID:   m.WinnerID,
	}
	if m.Status == duel.StatusResolved {
		out.Commission = &dto.Commission{Kind: string(m.Commission.Kind), Code: m.Commission.Code, Value: m.Commission.Value}
		out.Payout = m.Payout
	}
	for _, b := range bets {
		out.Bets = append(out.Bets, toBet(b))
	}
	return out
}

func toSettlement(s duel.Settlement) dto.SettlementResponse {
	return dto.SettlementResponse{
		OK:         true,
		MatchID:    s.Match.ID,
		WinnerID:   s.WinnerID,
		Pool:       s.Pool,
		Commission: dto.Commission{Kind: string(s.Commission.Kind), Code: s.Commission.Code, Value: s.Commission.Value},
		Payout:     s.Payout,
	}
}

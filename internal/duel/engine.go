package duel

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/radieske/duel-wager/pkg/contracts/events"
)

// Options configura um Engine. Store e Catalog são obrigatórios.
type Options struct {
	Store     Store
	Catalog   *Catalog
	Guard     RateGuard
	Rand      Source
	Log       *zap.Logger
	Publisher Publisher
	Observer  Observer
	Now       func() time.Time

	StarterBonus int64
	// CommissionBps é aplicado como veio; 0 desliga a comissão em stars
	CommissionBps int64
	HouseUserID   int64
}

// Engine conduz o ciclo de vida da partida: abre, aposta, trava, resolve e liquida.
type Engine struct {
	store    Store
	catalog  *Catalog
	ledger   *Ledger
	resolver *Resolver
	guard    RateGuard
	rand     Source
	log      *zap.Logger
	pub      Publisher
	obs      Observer
	now      func() time.Time
	house    int64
}

// NewEngine preenche as opções não informadas com os padrões do processo.
func NewEngine(o Options) *Engine {
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Log == nil {
		o.Log = zap.NewNop()
	}
	if o.Guard == nil {
		o.Guard = NewMemoryGuard(DefaultCooldown, o.Now)
	}
	if o.Rand == nil {
		o.Rand = NewSource(o.Now().UnixNano())
	}
	if o.Publisher == nil {
		o.Publisher = Publishers(nil)
	}
	if o.Observer == nil {
		o.Observer = nopObserver{}
	}
	return &Engine{
		store:    o.Store,
		catalog:  o.Catalog,
		ledger:   NewLedger(o.Store, o.Catalog, o.StarterBonus, o.Now),
		resolver: &Resolver{Catalog: o.Catalog, Rand: o.Rand, CommissionBps: o.CommissionBps},
		guard:    o.Guard,
		rand:     o.Rand,
		log:      o.Log,
		pub:      o.Publisher,
		obs:      o.Observer,
		now:      o.Now,
		house:    o.HouseUserID,
	}
}

// Ledger expõe o componente de saldo e inventário.
func (e *Engine) Ledger() *Ledger { return e.ledger }

// Catalog expõe o catálogo de itens.
func (e *Engine) Catalog() *Catalog { return e.catalog }

// OpenMatch cria uma partida OPEN sem apostas.
func (e *Engine) OpenMatch(ctx context.Context, currency Currency) (Match, error) {
	if currency != CurrencyStars && currency != CurrencyGifts {
		return Match{}, fmt.Errorf("%w: unknown currency %q", ErrInvalidStake, currency)
	}
	var m Match
	err := e.store.InTx(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		m, err = tx.CreateMatch(ctx, currency, e.now())
		return err
	})
	if err != nil {
		return Match{}, fmt.Errorf("open match: %w", err)
	}
	e.log.Info("match opened", zap.Int64("matchId", m.ID), zap.String("currency", string(currency)))
	return m, nil
}

// PlaceBet aposta numa partida OPEN. A segunda aposta aceita trava a partida.
func (e *Engine) PlaceBet(ctx context.Context, matchID, userID int64, stake Stake) (Bet, Match, error) {
	var (
		bet Bet
		m   Match
	)
	err := e.store.InTx(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		if m, err = tx.LockMatch(ctx, matchID); err != nil {
			return err
		}
		bet, err = e.placeBet(ctx, tx, &m, userID, stake)
		return err
	})
	if err != nil {
		e.rejected(userID, matchID, err)
		return Bet{}, Match{}, err
	}
	e.placed(ctx, m, bet)
	return bet, m, nil
}

// Challenge abre uma partida e registra a primeira aposta do chamador na mesma
// transação, sujeito ao RateGuard por usuário. Só consome a janela do guard
// quando a partida é gravada.
func (e *Engine) Challenge(ctx context.Context, userID int64, currency Currency, stake Stake) (Match, Bet, error) {
	if currency != CurrencyStars && currency != CurrencyGifts {
		err := fmt.Errorf("%w: unknown currency %q", ErrInvalidStake, currency)
		e.rejected(userID, 0, err)
		return Match{}, Bet{}, err
	}
	if _, err := e.validateStake(currency, stake); err != nil {
		e.rejected(userID, 0, err)
		return Match{}, Bet{}, err
	}

	ok, err := e.guard.Allow(ctx, userID)
	if err != nil {
		return Match{}, Bet{}, fmt.Errorf("rate guard: %w", err)
	}
	if !ok {
		e.rejected(userID, 0, ErrRateLimited)
		return Match{}, Bet{}, ErrRateLimited
	}

	var (
		m   Match
		bet Bet
	)
	err = e.store.InTx(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		if m, err = tx.CreateMatch(ctx, currency, e.now()); err != nil {
			return err
		}
		bet, err = e.placeBet(ctx, tx, &m, userID, stake)
		return err
	})
	if err != nil {
		if rerr := e.guard.Release(ctx, userID); rerr != nil {
			e.log.Warn("rate guard release", zap.Int64("userId", userID), zap.Error(rerr))
		}
		e.rejected(userID, 0, err)
		return Match{}, Bet{}, err
	}
	e.log.Info("match opened", zap.Int64("matchId", m.ID), zap.String("currency", string(currency)), zap.Int64("userId", userID))
	e.placed(ctx, m, bet)
	return m, bet, nil
}

// placeBet roda dentro da transação do chamador com m já bloqueada.
func (e *Engine) placeBet(ctx context.Context, tx Tx, m *Match, userID int64, stake Stake) (Bet, error) {
	if m.Status != StatusOpen {
		return Bet{}, fmt.Errorf("%w: match %d is %s", ErrMatchNotOpen, m.ID, m.Status)
	}
	stake, err := e.validateStake(m.Currency, stake)
	if err != nil {
		return Bet{}, err
	}
	if _, err := e.ledger.ensure(ctx, tx, userID, ""); err != nil {
		return Bet{}, err
	}

	bets, err := tx.Bets(ctx, m.ID)
	if err != nil {
		return Bet{}, fmt.Errorf("load bets: %w", err)
	}
	for _, b := range bets {
		if b.UserID == userID {
			return Bet{}, fmt.Errorf("%w: user %d on match %d", ErrDuplicateBettor, userID, m.ID)
		}
	}
	if len(bets) >= 2 {
		return Bet{}, fmt.Errorf("%w: match %d already has %d bets", ErrMatchNotOpen, m.ID, len(bets))
	}

	bet := Bet{MatchID: m.ID, UserID: userID, CreatedAt: e.now()}
	if len(stake.Items) == 0 {
		if _, err := debit(ctx, tx, userID, stake.Stars); err != nil {
			return Bet{}, err
		}
		bet.Stars = stake.Stars
		bet.Value = stake.Stars
	} else {
		// Verifica todos os códigos antes de deduzir qualquer um
		for _, iq := range stake.Items {
			have, err := tx.ItemQty(ctx, userID, iq.Code)
			if err != nil {
				return Bet{}, fmt.Errorf("inventory %s: %w", iq.Code, err)
			}
			if have < iq.Qty {
				return Bet{}, fmt.Errorf("%w: %s have %d need %d", ErrInsufficientInventory, iq.Code, have, iq.Qty)
			}
		}
		for _, iq := range stake.Items {
			if _, err := e.ledger.adjust(ctx, tx, userID, iq.Code, -iq.Qty); err != nil {
				return Bet{}, err
			}
		}
		value, err := e.catalog.Value(stake.Items)
		if err != nil {
			return Bet{}, err
		}
		bet.Items = stake.Items
		bet.Value = value
	}

	if bet, err = tx.InsertBet(ctx, bet); err != nil {
		return Bet{}, fmt.Errorf("insert bet: %w", err)
	}
	m.Pool += bet.Value
	if len(bets)+1 == 2 {
		m.Status = StatusLocked
	}
	if err := tx.UpdateMatch(ctx, *m); err != nil {
		return Bet{}, fmt.Errorf("update match: %w", err)
	}
	return bet, nil
}

func (e *Engine) validateStake(currency Currency, stake Stake) (Stake, error) {
	switch currency {
	case CurrencyStars:
		if len(stake.Items) > 0 {
			return Stake{}, fmt.Errorf("%w: stars match takes stars only", ErrInvalidStake)
		}
		if stake.Stars <= 0 {
			return Stake{}, fmt.Errorf("%w: amount must be positive", ErrInvalidStake)
		}
		return stake, nil
	case CurrencyGifts:
		if stake.Stars != 0 {
			return Stake{}, fmt.Errorf("%w: gifts match takes gifts only", ErrInvalidStake)
		}
		if len(stake.Items) == 0 {
			return Stake{}, fmt.Errorf("%w: no gifts staked", ErrInvalidStake)
		}
		for _, iq := range stake.Items {
			if iq.Qty <= 0 {
				return Stake{}, fmt.Errorf("%w: quantity of %s must be positive", ErrInvalidStake, iq.Code)
			}
			if _, ok := e.catalog.Lookup(iq.Code); !ok {
				return Stake{}, fmt.Errorf("%w: %w: %s", ErrInvalidStake, ErrUnknownItem, iq.Code)
			}
		}
		return Stake{Items: stake.Items.Normalize()}, nil
	}
	return Stake{}, fmt.Errorf("%w: match currency %q", ErrInvalidMatchState, currency)
}

// MatchView é uma partida com suas apostas.
type MatchView struct {
	Match Match
	Bets  []Bet
}

// Match carrega uma partida e suas apostas.
func (e *Engine) Match(ctx context.Context, id int64) (MatchView, error) {
	var v MatchView
	err := e.store.InTx(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		if v.Match, err = tx.LockMatch(ctx, id); err != nil {
			return err
		}
		v.Bets, err = tx.Bets(ctx, id)
		return err
	})
	return v, err
}

// Holding é uma linha de inventário com a entrada do catálogo.
type Holding struct {
	Item
	Qty int64
}

// Profile é o saldo do usuário e o inventário não vazio.
type Profile struct {
	User  User
	Gifts []Holding
}

// EnsureUser cria o usuário na primeira referência.
func (e *Engine) EnsureUser(ctx context.Context, userID int64, username string) (User, error) {
	return e.ledger.EnsureUser(ctx, userID, username)
}

// Profile carrega saldo e inventário, criando o usuário se necessário.
func (e *Engine) Profile(ctx context.Context, userID int64, username string) (Profile, error) {
	var p Profile
	err := e.store.InTx(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		if p.User, err = e.ledger.ensure(ctx, tx, userID, username); err != nil {
			return err
		}
		inv, err := tx.Inventory(ctx, userID)
		if err != nil {
			return err
		}
		for _, row := range inv {
			it, ok := e.catalog.Lookup(row.Code)
			if !ok || row.Qty == 0 {
				continue
			}
			p.Gifts = append(p.Gifts, Holding{Item: it, Qty: row.Qty})
		}
		return nil
	})
	return p, err
}

func (e *Engine) placed(ctx context.Context, m Match, b Bet) {
	e.obs.BetPlaced(string(m.Currency))
	e.log.Info("bet placed",
		zap.Int64("matchId", m.ID),
		zap.Int64("betId", b.ID),
		zap.Int64("userId", b.UserID),
		zap.Int64("value", b.Value),
		zap.String("status", string(m.Status)),
	)
	err := e.pub.PublishBetPlaced(ctx, events.BetPlaced{
		EventID:     uuid.NewString(),
		MatchID:     m.ID,
		BetID:       b.ID,
		UserID:      b.UserID,
		Currency:    string(m.Currency),
		Stars:       b.Stars,
		Gifts:       b.Items.String(),
		ValueStars:  b.Value,
		MatchStatus: string(m.Status),
		PoolStars:   m.Pool,
		TsUnixMs:    e.now().UnixMilli(),
	})
	if err != nil {
		e.log.Warn("publish bet_placed", zap.Int64("matchId", m.ID), zap.Error(err))
	}
}

func (e *Engine) rejected(userID, matchID int64, err error) {
	code := Code(err)
	e.obs.BetRejected(code)
	fields := []zap.Field{zap.Int64("userId", userID), zap.Int64("matchId", matchID), zap.String("code", code), zap.Error(err)}
	switch {
	case IsContractViolation(err):
		e.log.Error("contract violation", fields...)
	case code == "internal":
		e.log.Error("bet failed", fields...)
	default:
		e.log.Warn("bet rejected", fields...)
	}
}

package duel

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// FightResult é uma luta contra a casa vista pelo lado do desafiante.
type FightResult struct {
	Settlement
	UserBet  Bet
	HouseBet Bet
	Won      bool
}

// FightHouse desafia a casa: o stake do chamador abre a partida, a casa
// cobre e a partida é resolvida na hora.
//
// Em partidas de stars a casa aposta entre 80% e 120% do valor do chamador
// (mínimo 1). Em partidas de gifts aposta duas unidades do item mais barato
// do catálogo. A casa recebe exatamente o seu stake antes de apostar.
func (e *Engine) FightHouse(ctx context.Context, userID int64, currency Currency, stake Stake) (FightResult, error) {
	if userID == e.house {
		return FightResult{}, fmt.Errorf("%w: the house cannot fight itself", ErrDuplicateBettor)
	}
	m, userBet, err := e.Challenge(ctx, userID, currency, stake)
	if err != nil {
		return FightResult{}, err
	}

	var (
		houseBet Bet
		locked   Match
		s        Settlement
	)
	err = e.store.InTx(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		if locked, err = tx.LockMatch(ctx, m.ID); err != nil {
			return err
		}
		houseStake, err := e.fundHouse(ctx, tx, m.Currency, userBet)
		if err != nil {
			return err
		}
		if houseBet, err = e.placeBet(ctx, tx, &locked, e.house, houseStake); err != nil {
			return fmt.Errorf("house bet: %w", err)
		}
		s, err = e.settle(ctx, tx, m.ID)
		return err
	})
	if err != nil {
		e.log.Error("house fight failed", zap.Int64("matchId", m.ID), zap.Int64("userId", userID), zap.Error(err))
		// Devolve o stake do chamador; se alguém já cobriu a partida ela segue travada
		if _, cerr := e.CancelMatch(ctx, m.ID); cerr != nil {
			e.log.Error("house fight cancel", zap.Int64("matchId", m.ID), zap.Error(cerr))
		}
		return FightResult{}, err
	}
	e.placed(ctx, locked, houseBet)
	e.resolved(ctx, s)

	return FightResult{
		Settlement: s,
		UserBet:    userBet,
		HouseBet:   houseBet,
		Won:        s.WinnerID == userID,
	}, nil
}

func (e *Engine) fundHouse(ctx context.Context, tx Tx, currency Currency, userBet Bet) (Stake, error) {
	if _, err := e.ledger.ensure(ctx, tx, e.house, "house"); err != nil {
		return Stake{}, err
	}
	if currency == CurrencyGifts {
		cheap := e.catalog.Cheapest()
		if _, err := e.ledger.adjust(ctx, tx, e.house, cheap.Code, 2); err != nil {
			return Stake{}, fmt.Errorf("fund house: %w", err)
		}
		return ItemsStake(Items{{Code: cheap.Code, Qty: 2}}), nil
	}

	k := int64(e.rand.Float64() * 41)
	if k > 40 {
		k = 40
	}
	amount := userBet.Stars * (80 + k) / 100
	if amount < 1 {
		amount = 1
	}
	if _, err := credit(ctx, tx, e.house, amount); err != nil {
		return Stake{}, fmt.Errorf("fund house: %w", err)
	}
	return StarsStake(amount), nil
}

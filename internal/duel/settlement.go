package duel

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/radieske/duel-wager/pkg/contracts/events"
)

// Resolve liquida a partida: sorteia o vencedor, paga e marca como RESOLVED
// numa única transação. Uma segunda chamada falha com ErrAlreadyResolved.
func (e *Engine) Resolve(ctx context.Context, matchID int64) (Settlement, error) {
	var s Settlement
	err := e.store.InTx(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		s, err = e.settle(ctx, tx, matchID)
		return err
	})
	if err != nil {
		switch {
		case IsContractViolation(err):
			e.log.Error("resolve contract violation", zap.Int64("matchId", matchID), zap.Error(err))
		case errors.Is(err, ErrAlreadyResolved), errors.Is(err, ErrMatchNotFound):
			e.log.Warn("resolve rejected", zap.Int64("matchId", matchID), zap.Error(err))
		default:
			e.log.Error("resolve failed", zap.Int64("matchId", matchID), zap.Error(err))
		}
		return Settlement{}, err
	}
	e.resolved(ctx, s)
	return s, nil
}

func (e *Engine) settle(ctx context.Context, tx Tx, matchID int64) (Settlement, error) {
	m, err := tx.LockMatch(ctx, matchID)
	if err != nil {
		return Settlement{}, err
	}
	if m.Status == StatusResolved {
		return Settlement{}, fmt.Errorf("%w: match %d", ErrAlreadyResolved, m.ID)
	}
	bets, err := tx.Bets(ctx, m.ID)
	if err != nil {
		return Settlement{}, fmt.Errorf("load bets: %w", err)
	}
	out, err := e.resolver.Resolve(m, bets)
	if err != nil {
		return Settlement{}, err
	}

	if out.Payout > 0 {
		if _, err := credit(ctx, tx, out.WinnerID, out.Payout); err != nil {
			return Settlement{}, fmt.Errorf("pay winner %d: %w", out.WinnerID, err)
		}
	}

	now := e.now()
	winner := out.WinnerID
	m.Status = StatusResolved
	m.ResolvedAt = &now
	m.WinnerID = &winner
	m.Pool = out.Pool
	m.Commission = out.Commission
	m.Payout = out.Payout
	if err := tx.UpdateMatch(ctx, m); err != nil {
		return Settlement{}, fmt.Errorf("update match: %w", err)
	}
	return Settlement{Match: m, Bets: bets, Outcome: out}, nil
}

// CancelMatch devolve as apostas de uma partida ainda OPEN e a marca como
// CANCELED. Partidas já travadas só saem por Resolve.
func (e *Engine) CancelMatch(ctx context.Context, matchID int64) (Match, error) {
	var m Match
	err := e.store.InTx(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		m, err = e.cancel(ctx, tx, matchID)
		return err
	})
	if err != nil {
		e.log.Warn("cancel rejected", zap.Int64("matchId", matchID), zap.Error(err))
		return Match{}, err
	}
	e.log.Info("match canceled", zap.Int64("matchId", m.ID), zap.Int64("pool", m.Pool))
	return m, nil
}

func (e *Engine) cancel(ctx context.Context, tx Tx, matchID int64) (Match, error) {
	m, err := tx.LockMatch(ctx, matchID)
	if err != nil {
		return Match{}, err
	}
	switch m.Status {
	case StatusOpen:
	case StatusResolved:
		return Match{}, fmt.Errorf("%w: match %d", ErrAlreadyResolved, m.ID)
	default:
		return Match{}, fmt.Errorf("%w: match %d is %s", ErrMatchNotOpen, m.ID, m.Status)
	}
	bets, err := tx.Bets(ctx, m.ID)
	if err != nil {
		return Match{}, fmt.Errorf("load bets: %w", err)
	}
	for _, b := range bets {
		if len(b.Items) == 0 {
			if _, err := credit(ctx, tx, b.UserID, b.Stars); err != nil {
				return Match{}, fmt.Errorf("refund %d: %w", b.UserID, err)
			}
			continue
		}
		for _, iq := range b.Items {
			if _, err := e.ledger.adjust(ctx, tx, b.UserID, iq.Code, iq.Qty); err != nil {
				return Match{}, fmt.Errorf("refund %d: %w", b.UserID, err)
			}
		}
	}
	m.Status = StatusCanceled
	if err := tx.UpdateMatch(ctx, m); err != nil {
		return Match{}, fmt.Errorf("update match: %w", err)
	}
	return m, nil
}

func (e *Engine) resolved(ctx context.Context, s Settlement) {
	e.obs.MatchResolved(string(s.Match.Currency), string(s.Commission.Kind), s.Commission.Value, s.Payout)
	e.log.Info("match resolved",
		zap.Int64("matchId", s.Match.ID),
		zap.Int64("winnerId", s.WinnerID),
		zap.Int64("pool", s.Pool),
		zap.String("commissionKind", string(s.Commission.Kind)),
		zap.Int64("commission", s.Commission.Value),
		zap.Int64("payout", s.Payout),
	)
	err := e.pub.PublishMatchResolved(ctx, events.MatchResolved{
		EventID:         uuid.NewString(),
		MatchID:         s.Match.ID,
		Currency:        string(s.Match.Currency),
		PoolStars:       s.Pool,
		CommissionStars: s.Commission.Value,
		CommissionKind:  string(s.Commission.Kind),
		CommissionGift:  s.Commission.Code,
		PayoutStars:     s.Payout,
		WinnerID:        s.WinnerID,
		Bettors:         s.Bettors(),
		ResolvedAt:      *s.Match.ResolvedAt,
	})
	if err != nil {
		e.log.Warn("publish match_resolved", zap.Int64("matchId", s.Match.ID), zap.Error(err))
	}
}

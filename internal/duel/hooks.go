package duel

import (
	"context"
	"errors"

	"github.com/radieske/duel-wager/pkg/contracts/events"
)

// Publisher recebe eventos já commitados. Falhas nunca desfazem um commit.
type Publisher interface {
	PublishBetPlaced(ctx context.Context, e events.BetPlaced) error
	PublishMatchResolved(ctx context.Context, e events.MatchResolved) error
}

// Publishers repassa para todos os publishers e junta os erros.
type Publishers []Publisher

func (ps Publishers) PublishBetPlaced(ctx context.Context, e events.BetPlaced) error {
	var errs []error
	for _, p := range ps {
		errs = append(errs, p.PublishBetPlaced(ctx, e))
	}
	return errors.Join(errs...)
}

func (ps Publishers) PublishMatchResolved(ctx context.Context, e events.MatchResolved) error {
	var errs []error
	for _, p := range ps {
		errs = append(errs, p.PublishMatchResolved(ctx, e))
	}
	return errors.Join(errs...)
}

// Observer é notificado da atividade do engine (métricas).
type Observer interface {
	BetPlaced(currency string)
	BetRejected(code string)
	MatchResolved(currency, commissionKind string, commission, payout int64)
}

type nopObserver struct{}

func (nopObserver) BetPlaced(string)                           {}
func (nopObserver) BetRejected(string)                         {}
func (nopObserver) MatchResolved(string, string, int64, int64) {}

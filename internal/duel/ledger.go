package duel

import (
	"context"
	"fmt"
	"time"
)

// DefaultStarterBonus é creditado uma vez quando o usuário aparece pela primeira vez.
const DefaultStarterBonus int64 = 100

// Ledger controla saldos de stars e inventários de itens.
type Ledger struct {
	store   Store
	catalog *Catalog
	bonus   int64
	now     func() time.Time
}

// NewLedger cria um ledger sobre o store.
func NewLedger(store Store, catalog *Catalog, bonus int64, now func() time.Time) *Ledger {
	if now == nil {
		now = time.Now
	}
	return &Ledger{store: store, catalog: catalog, bonus: bonus, now: now}
}

// EnsureUser retorna o usuário, criando com o bônus inicial na primeira referência.
func (l *Ledger) EnsureUser(ctx context.Context, userID int64, username string) (User, error) {
	var u User
	err := l.store.InTx(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		u, err = l.ensure(ctx, tx, userID, username)
		return err
	})
	return u, err
}

// Credit soma amount stars e retorna o novo saldo.
func (l *Ledger) Credit(ctx context.Context, userID, amount int64) (int64, error) {
	var bal int64
	err := l.store.InTx(ctx, func(ctx context.Context, tx Tx) error {
		if _, err := l.ensure(ctx, tx, userID, ""); err != nil {
			return err
		}
		var err error
		bal, err = credit(ctx, tx, userID, amount)
		return err
	})
	return bal, err
}

// Debit remove amount stars; com saldo insuficiente falha com ErrInsufficientFunds
// e nada muda.
func (l *Ledger) Debit(ctx context.Context, userID, amount int64) (int64, error) {
	var bal int64
	err := l.store.InTx(ctx, func(ctx context.Context, tx Tx) error {
		if _, err := l.ensure(ctx, tx, userID, ""); err != nil {
			return err
		}
		var err error
		bal, err = debit(ctx, tx, userID, amount)
		return err
	})
	return bal, err
}

// AdjustInventory aplica um delta com sinal na quantidade do código.
func (l *Ledger) AdjustInventory(ctx context.Context, userID int64, code string, delta int64) (int64, error) {
	var qty int64
	err := l.store.InTx(ctx, func(ctx context.Context, tx Tx) error {
		if _, err := l.ensure(ctx, tx, userID, ""); err != nil {
			return err
		}
		var err error
		qty, err = l.adjust(ctx, tx, userID, code, delta)
		return err
	})
	return qty, err
}

func (l *Ledger) ensure(ctx context.Context, tx Tx, userID int64, username string) (User, error) {
	u, _, err := tx.EnsureUser(ctx, userID, username, l.bonus, l.now())
	if err != nil {
		return User{}, fmt.Errorf("ensure user %d: %w", userID, err)
	}
	return u, nil
}

func (l *Ledger) adjust(ctx context.Context, tx Tx, userID int64, code string, delta int64) (int64, error) {
	it, ok := l.catalog.Lookup(code)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownItem, code)
	}
	if delta == 0 {
		return tx.ItemQty(ctx, userID, it.Code)
	}
	qty, err := tx.AddItems(ctx, userID, it.Code, delta)
	if err != nil {
		return 0, fmt.Errorf("adjust %s by %d: %w", it.Code, delta, err)
	}
	return qty, nil
}

func credit(ctx context.Context, tx Tx, userID, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	bal, err := tx.AddStars(ctx, userID, amount)
	if err != nil {
		return 0, fmt.Errorf("credit %d: %w", amount, err)
	}
	return bal, nil
}

func debit(ctx context.Context, tx Tx, userID, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	bal, err := tx.AddStars(ctx, userID, -amount)
	if err != nil {
		return 0, fmt.Errorf("debit %d: %w", amount, err)
	}
	return bal, nil
}

package duel

import (
	"context"
	"time"
)

// Store controla as transações. Toda mutação deste pacote roda dentro de InTx
// e fn inteira ou commita ou deixa o storage intacto.
type Store interface {
	InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	Items(ctx context.Context) ([]Item, error)
}

// Tx é a visão de uma transação no storage. AddStars e AddItems devem rejeitar
// resultados negativos de forma atômica, e LockMatch deve serializar
// transações concorrentes na mesma partida.
type Tx interface {
	EnsureUser(ctx context.Context, id int64, username string, bonus int64, now time.Time) (User, bool, error)
	User(ctx context.Context, id int64) (User, error)
	AddStars(ctx context.Context, userID, delta int64) (int64, error)
	ItemQty(ctx context.Context, userID int64, code string) (int64, error)
	AddItems(ctx context.Context, userID int64, code string, delta int64) (int64, error)
	Inventory(ctx context.Context, userID int64) ([]InventoryItem, error)

	CreateMatch(ctx context.Context, currency Currency, now time.Time) (Match, error)
	LockMatch(ctx context.Context, id int64) (Match, error)
	UpdateMatch(ctx context.Context, m Match) error
	Bets(ctx context.Context, matchID int64) ([]Bet, error)
	InsertBet(ctx context.Context, b Bet) (Bet, error)
}

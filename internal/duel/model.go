package duel

import (
	"fmt"
	"strings"
	"time"
)

// Currency é a moeda em que a partida é jogada.
type Currency string

const (
	CurrencyStars Currency = "STARS"
	CurrencyGifts Currency = "GIFTS"
)

// ParseCurrency aceita "stars" ou "gifts" em qualquer caixa.
func ParseCurrency(s string) (Currency, error) {
	switch Currency(strings.ToUpper(strings.TrimSpace(s))) {
	case CurrencyStars:
		return CurrencyStars, nil
	case CurrencyGifts:
		return CurrencyGifts, nil
	}
	return "", fmt.Errorf("%w: unknown currency %q", ErrInvalidStake, s)
}

// Status é o estado da partida.
type Status string

const (
	StatusOpen     Status = "OPEN"
	StatusLocked   Status = "LOCKED"
	StatusResolved Status = "RESOLVED"
	StatusCanceled Status = "CANCELED"
)

// User é identificado pela identidade externa do chamador.
type User struct {
	ID        int64
	Username  string
	Stars     int64
	CreatedAt time.Time
}

// Item é uma entrada do catálogo. Value é o valor em stars de uma unidade.
type Item struct {
	Code  string
	Title string
	Value int64
}

// InventoryItem é a quantidade de um item de um usuário.
type InventoryItem struct {
	UserID int64
	Code   string
	Qty    int64
}

// Match é uma aposta entre duas partes.
type Match struct {
	ID         int64
	Status     Status
	Currency   Currency
	CreatedAt  time.Time
	ResolvedAt *time.Time
	WinnerID   *int64
	Pool       int64

	// Preenchidos na resolução
	Commission Commission
	Payout     int64
}

// Bet é um lado da partida. Value é o equivalente em stars fixado na aposta.
type Bet struct {
	ID        int64
	MatchID   int64
	UserID    int64
	Stars     int64
	Items     Items
	Value     int64
	CreatedAt time.Time
}

// Stake é o que o apostador compromete: Stars ou Items, nunca os dois.
type Stake struct {
	Stars int64
	Items Items
}

// StarsStake monta um stake em moeda.
func StarsStake(amount int64) Stake { return Stake{Stars: amount} }

// ItemsStake monta um stake em itens.
func ItemsStake(items Items) Stake { return Stake{Items: items} }

func (s Stake) String() string {
	if len(s.Items) > 0 {
		return s.Items.String()
	}
	return fmt.Sprintf("%d stars", s.Stars)
}

// CommissionKind indica se a comissão foi em stars ou em uma unidade de item.
type CommissionKind string

const (
	CommissionStars CommissionKind = "stars"
	CommissionItem  CommissionKind = "item"
)

// Commission é o valor retirado do pool antes do pagamento.
// Code só é preenchido na comissão em item.
type Commission struct {
	Kind  CommissionKind
	Code  string
	Value int64
}

// Outcome é a decisão do resolver para uma partida completa.
type Outcome struct {
	WinnerID   int64
	Pool       int64
	Commission Commission
	Payout     int64
}

// Settlement é a partida resolvida com o seu resultado.
type Settlement struct {
	Match Match
	Bets  []Bet
	Outcome
}

// Bettors retorna os ids dos apostadores na ordem das apostas.
func (s Settlement) Bettors() []int64 {
	ids := make([]int64, 0, len(s.Bets))
	for _, b := range s.Bets {
		ids = append(ids, b.UserID)
	}
	return ids
}

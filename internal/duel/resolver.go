package duel

import "fmt"

// DefaultCommissionBps é 5% em basis points.
const DefaultCommissionBps int64 = 500

// Resolver escolhe o vencedor de uma partida completa e calcula a comissão.
// Não acessa o storage.
type Resolver struct {
	Catalog       *Catalog
	Rand          Source
	CommissionBps int64
}

// Resolve exige m OPEN ou LOCKED com exatamente duas apostas.
//
// O sorteio é uniforme em [0, pool): abaixo do valor da primeira aposta vence
// o primeiro apostador, qualquer outro valor vence o segundo. Um sorteio
// exatamente na fronteira fica com o segundo, assim como qualquer sorteio
// num pool zero.
//
// Comissão = floor(pool × bps / 10000) stars. Em partidas de gifts, se a
// unidade do item mais barato do pool vale mais que isso, uma unidade inteira
// é retirada no lugar e o seu valor vira a comissão.
func (r *Resolver) Resolve(m Match, bets []Bet) (Outcome, error) {
	switch m.Status {
	case StatusOpen, StatusLocked:
	case StatusResolved:
		return Outcome{}, ErrAlreadyResolved
	default:
		return Outcome{}, fmt.Errorf("%w: match %d is %s", ErrInvalidMatchState, m.ID, m.Status)
	}
	if len(bets) != 2 {
		return Outcome{}, fmt.Errorf("%w: match %d has %d bets, need 2", ErrInvalidMatchState, m.ID, len(bets))
	}

	b1, b2 := bets[0], bets[1]
	pool := b1.Value + b2.Value

	draw := r.Rand.Float64() * float64(pool)
	winner := b2
	if draw < float64(b1.Value) {
		winner = b1
	}

	commission := Commission{Kind: CommissionStars, Value: pool * r.CommissionBps / 10000}
	if m.Currency == CurrencyGifts {
		pooled := b1.Items.Merge(b2.Items)
		if it, ok := r.Catalog.cheapestIn(pooled); ok && it.Value > commission.Value {
			commission = Commission{Kind: CommissionItem, Code: it.Code, Value: it.Value}
		}
	}

	return Outcome{
		WinnerID:   winner.UserID,
		Pool:       pool,
		Commission: commission,
		Payout:     pool - commission.Value,
	}, nil
}

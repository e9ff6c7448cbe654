package duel

import "errors"

var (
	ErrInvalidStake          = errors.New("invalid stake")
	ErrInvalidAmount         = errors.New("amount must be positive")
	ErrInsufficientFunds     = errors.New("insufficient funds")
	ErrInsufficientInventory = errors.New("insufficient inventory")
	ErrUnknownItem           = errors.New("unknown item")
	ErrDuplicateBettor       = errors.New("user already bet on this match")
	ErrMatchNotOpen          = errors.New("match is not open for bets")
	ErrAlreadyResolved       = errors.New("match already resolved")
	ErrRateLimited           = errors.New("rate limited")
	ErrMatchNotFound         = errors.New("match not found")
	ErrUserNotFound          = errors.New("user not found")

	// ErrInvalidMatchState é quebra de contrato do chamador (ex.: resolver uma
	// partida sem exatamente duas apostas), não erro do usuário.
	ErrInvalidMatchState = errors.New("invalid match state")
)

// IsContractViolation indica se err é falha de contrato de programação.
func IsContractViolation(err error) bool {
	return errors.Is(err, ErrInvalidMatchState)
}

type errorInfo struct {
	err    error
	code   string
	reason string
}

// A ordem importa: erros de stake que embrulham ErrUnknownItem saem como invalid stake.
var taxonomy = []errorInfo{
	{ErrInvalidStake, "invalid_stake", "Invalid stake."},
	{ErrInvalidAmount, "invalid_amount", "Amount must be greater than zero."},
	{ErrUnknownItem, "unknown_item", "This gift does not exist."},
	{ErrInsufficientFunds, "insufficient_funds", "Not enough stars."},
	{ErrInsufficientInventory, "insufficient_inventory", "Not enough gifts."},
	{ErrDuplicateBettor, "duplicate_bettor", "You already placed a bet on this match."},
	{ErrMatchNotOpen, "match_not_open", "Match is not available for bets."},
	{ErrAlreadyResolved, "already_resolved", "Match is already finished."},
	{ErrRateLimited, "rate_limited", "Too often. Wait a few seconds."},
	{ErrMatchNotFound, "match_not_found", "Match not found."},
	{ErrUserNotFound, "user_not_found", "User not found."},
	{ErrInvalidMatchState, "invalid_match_state", "Match cannot be resolved."},
}

// Code retorna um código estável para err, "internal" se desconhecido.
func Code(err error) string {
	for _, e := range taxonomy {
		if errors.Is(err, e.err) {
			return e.code
		}
	}
	return "internal"
}

// Reason retorna a mensagem exibida ao usuário para err.
func Reason(err error) string {
	for _, e := range taxonomy {
		if errors.Is(err, e.err) {
			return e.reason
		}
	}
	return "Internal error. Try again later."
}

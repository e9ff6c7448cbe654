package dto

import "time"

type ErrorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
	Code  string `json:"code"`
}

type Gift struct {
	Code  string `json:"code"`
	Title string `json:"title"`
	Value int64  `json:"value"`
	Qty   int64  `json:"qty"`
}

type ProfileResponse struct {
	OK       bool   `json:"ok"`
	UserID   int64  `json:"userId"`
	Username string `json:"username,omitempty"`
	Stars    int64  `json:"stars"`
	Gifts    []Gift `json:"gifts"`
}

type BalanceResponse struct {
	OK      bool  `json:"ok"`
	UserID  int64 `json:"userId"`
	Balance int64 `json:"balance"`
}

type InventoryResponse struct {
	OK     bool   `json:"ok"`
	UserID int64  `json:"userId"`
	Code   string `json:"code"`
	Qty    int64  `json:"qty"`
}

type Bet struct {
	ID     int64  `json:"id"`
	UserID int64  `json:"userId"`
	Stars  int64  `json:"stars,omitempty"`
	Gifts  string `json:"gifts,omitempty"`
	Value  int64  `json:"value"`
}

type Commission struct {
	Kind  string `json:"kind"` // stars | item
	Code  string `json:"code,omitempty"`
	Value int64  `json:"value"`
}

type Match struct {
	ID         int64       `json:"id"`
	Status     string      `json:"status"`
	Currency   string      `json:"currency"`
	Pool       int64       `json:"pool"`
	CreatedAt  time.Time   `json:"createdAt"`
	ResolvedAt *time.Time  `json:"resolvedAt,omitempty"`
	WinnerID   *int64      `json:"winnerId,omitempty"`
	Commission *Commission `json:"commission,omitempty"`
	Payout     int64       `json:"payout,omitempty"`
	Bets       []Bet       `json:"bets,omitempty"`
}

type MatchResponse struct {
	OK    bool  `json:"ok"`
	Match Match `json:"match"`
	Bet   *Bet  `json:"bet,omitempty"`
}

type SettlementResponse struct {
	OK         bool       `json:"ok"`
	MatchID    int64      `json:"matchId"`
	WinnerID   int64      `json:"winnerId"`
	Pool       int64      `json:"pool"`
	Commission Commission `json:"commission"`
	Payout     int64      `json:"payout"`
}

type FightResponse struct {
	SettlementResponse
	Won      bool `json:"won"`
	UserBet  Bet  `json:"userBet"`
	HouseBet Bet  `json:"houseBet"`
}

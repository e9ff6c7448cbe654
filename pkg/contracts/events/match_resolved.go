package events

import "time"

// MatchResolved é emitido depois que a liquidação é commitada.
type MatchResolved struct {
	EventID         string    `json:"event_id"`
	MatchID         int64     `json:"match_id"`
	Currency        string    `json:"currency"`
	PoolStars       int64     `json:"pool_stars"`
	CommissionStars int64     `json:"commission_stars"`
	CommissionKind  string    `json:"commission_kind"` // "stars" | "item"
	CommissionGift  string    `json:"commission_gift,omitempty"`
	PayoutStars     int64     `json:"payout_stars"`
	WinnerID        int64     `json:"winner_id"`
	Bettors         []int64   `json:"bettors"`
	ResolvedAt      time.Time `json:"resolved_at"`
}

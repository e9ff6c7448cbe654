package events

// BetPlaced é emitido depois que a aposta é commitada.
type BetPlaced struct {
	EventID     string `json:"event_id"`
	MatchID     int64  `json:"match_id"`
	BetID       int64  `json:"bet_id"`
	UserID      int64  `json:"user_id"`
	Currency    string `json:"currency"`
	Stars       int64  `json:"stars,omitempty"`
	Gifts       string `json:"gifts,omitempty"` // formato "CODE:QTY,..."
	ValueStars  int64  `json:"value_stars"`
	MatchStatus string `json:"match_status"` // LOCKED quando foi a segunda aposta
	PoolStars   int64  `json:"pool_stars"`
	TsUnixMs    int64  `json:"ts_unix_ms"`
}

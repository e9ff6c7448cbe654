package events

// MatchUpdate embrulha um evento para o feed ao vivo. Type é "bet_placed" ou
// "match_resolved"; Payload traz o evento correspondente.
type MatchUpdate struct {
	Type    string `json:"type"`
	MatchID int64  `json:"match_id"`
	Payload any    `json:"payload"`
}

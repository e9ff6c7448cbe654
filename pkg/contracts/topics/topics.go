package topics

const (
	// Partidas
	BetPlaced     = "duel_bet_placed"
	MatchResolved = "duel_match_resolved"

	// Canal Redis pub/sub do feed ao vivo
	MatchFeed = "duel_match_feed"
)

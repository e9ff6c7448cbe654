package dto

// StakeRequest abre (POST /v1/matches), cobre (POST /v1/matches/{id}/bets)
// ou desafia a casa (POST /v1/fight).
// Em partidas STARS usa Amount; em GIFTS usa Gifts no formato "ROSE:2,BOX:1".
type StakeRequest struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username,omitempty"`
	Currency string `json:"currency,omitempty"` // STARS | GIFTS (ignorado ao cobrir)
	Amount   int64  `json:"amount,omitempty"`
	Gifts    string `json:"gifts,omitempty"`
}

type DepositRequest struct {
	UserID int64 `json:"userId"`
	Amount int64 `json:"amount"`
}

type GrantRequest struct {
	UserID int64  `json:"userId"`
	Code   string `json:"code"`
	Qty    int64  `json:"qty"` // pode ser negativo
}

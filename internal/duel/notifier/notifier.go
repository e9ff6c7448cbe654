package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gopkg.in/telebot.v3"

	"github.com/radieske/duel-wager/internal/shared/kafka"
	"github.com/radieske/duel-wager/pkg/contracts/events"
)

// Sender é o subconjunto de *telebot.Bot usado para mensagens diretas
type Sender interface {
	Send(to telebot.Recipient, what interface{}, opts ...interface{}) (*telebot.Message, error)
}

// Notifier consome match_resolved e avisa cada apostador do resultado.
// A casa nunca recebe mensagem.
type Notifier struct {
	reader  kafka.MessageReader
	sender  Sender
	log     *zap.Logger
	houseID int64
	backoff time.Duration
}

func New(r kafka.MessageReader, s Sender, log *zap.Logger, houseID int64) *Notifier {
	return &Notifier{reader: r, sender: s, log: log, houseID: houseID, backoff: time.Second}
}

// Run processa mensagens até o contexto ser cancelado
func (n *Notifier) Run(ctx context.Context) error {
	for {
		_, value, err := kafka.ReadNext(ctx, n.reader)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			n.log.Warn("kafka read", zap.Error(err))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(n.backoff):
			}
			continue
		}
		var ev events.MatchResolved
		if err := json.Unmarshal(value, &ev); err != nil {
			n.log.Error("unmarshal match_resolved", zap.Error(err))
			continue
		}
		n.notify(ev)
	}
}

func (n *Notifier) notify(ev events.MatchResolved) {
	for _, id := range ev.Bettors {
		if id == n.houseID {
			continue
		}
		if _, err := n.sender.Send(&telebot.User{ID: id}, Message(ev, id)); err != nil {
			// Usuário que bloqueou o bot não deve travar o consumo
			n.log.Warn("notify bettor", zap.Int64("matchId", ev.MatchID), zap.Int64("userId", id), zap.Error(err))
		}
	}
}

// Message monta o texto do resultado para um apostador
func Message(ev events.MatchResolved, userID int64) string {
	result := "Defeat 😔"
	if ev.WinnerID == userID {
		result = fmt.Sprintf("🎉 Victory! +%d⭐️", ev.PayoutStars)
	}
	text := fmt.Sprintf("Match #%d finished. Pool: %d⭐️, commission: %d⭐️.", ev.MatchID, ev.PoolStars, ev.CommissionStars)
	if ev.CommissionKind == "item" && ev.CommissionGift != "" {
		text += fmt.Sprintf(" Commission taken as gift %s.", ev.CommissionGift)
	}
	return text + "\nResult: " + result
}

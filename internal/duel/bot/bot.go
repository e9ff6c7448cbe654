package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/telebot.v3"

	"github.com/radieske/duel-wager/internal/duel"
)

// DefaultFightStake é a aposta do /fight sem argumento
const DefaultFightStake int64 = 10

// starterGifts é o que o /gifts entrega para quem ainda não tem nenhum
var starterGifts = duel.ItemQty{Code: "ROSE", Qty: 3}

// Commands implementa os comandos do bot sobre o engine. Cada comando
// devolve o texto da resposta para poder ser testado sem o Telegram.
type Commands struct {
	engine    *duel.Engine
	log       *zap.Logger
	webAppURL string
}

func NewCommands(e *duel.Engine, log *zap.Logger, webAppURL string) *Commands {
	return &Commands{engine: e, log: log, webAppURL: webAppURL}
}

// Register liga os comandos ao bot
func (c *Commands) Register(b *telebot.Bot) {
	b.Handle("/start", c.handle("start", c.Start))
	b.Handle("/balance", c.handle("balance", c.Balance))
	b.Handle("/addstars", c.handle("addstars", c.AddStars))
	b.Handle("/gifts", c.handle("gifts", c.Gifts))
	b.Handle("/fight", c.handle("fight", c.Fight))
	b.Handle("/mini", c.Mini)
}

type command func(ctx context.Context, userID int64, username string, args []string) (string, error)

func (c *Commands) handle(name string, cmd command) telebot.HandlerFunc {
	return func(tc telebot.Context) error {
		sender := tc.Sender()
		if sender == nil {
			return nil
		}
		c.log.Debug("bot command", zap.String("command", name), zap.Int64("userId", sender.ID))

		text, err := cmd(context.Background(), sender.ID, sender.Username, tc.Args())
		if err != nil {
			if duel.Code(err) == "internal" {
				c.log.Error("bot command failed", zap.String("command", name), zap.Int64("userId", sender.ID), zap.Error(err))
			}
			return tc.Send(duel.Reason(err))
		}
		return tc.Send(text)
	}
}

func (c *Commands) Start(ctx context.Context, userID int64, username string, _ []string) (string, error) {
	if _, err := c.engine.EnsureUser(ctx, userID, username); err != nil {
		return "", err
	}
	return "Hi! This is a PvP duel bot.\n" +
		"Commands:\n" +
		"/balance - your balance\n" +
		"/fight [amount|CODE:QTY,...] - quick fight against the bot\n" +
		"/addstars 50 - give yourself stars (testing)\n" +
		"/gifts - your gifts\n" +
		"/mini - open the mini app", nil
}

func (c *Commands) Balance(ctx context.Context, userID int64, username string, _ []string) (string, error) {
	p, err := c.engine.Profile(ctx, userID, username)
	if err != nil {
		return "", err
	}
	gifts := make([]string, 0, len(p.Gifts))
	for _, h := range p.Gifts {
		gifts = append(gifts, fmt.Sprintf("%s x%d", h.Title, h.Qty))
	}
	list := strings.Join(gifts, ", ")
	if list == "" {
		list = "none"
	}
	return fmt.Sprintf("⭐️ Stars: %d\n🎁 Gifts: %s", p.User.Stars, list), nil
}

func (c *Commands) AddStars(ctx context.Context, userID int64, username string, args []string) (string, error) {
	if len(args) == 0 {
		return "Specify an amount: /addstars 50", nil
	}
	amount, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return "Specify an amount: /addstars 50", nil
	}
	if _, err := c.engine.EnsureUser(ctx, userID, username); err != nil {
		return "", err
	}
	bal, err := c.engine.Ledger().Credit(ctx, userID, amount)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Added %d⭐️. Current balance: %d", amount, bal), nil
}

func (c *Commands) Gifts(ctx context.Context, userID int64, username string, _ []string) (string, error) {
	p, err := c.engine.Profile(ctx, userID, username)
	if err != nil {
		return "", err
	}
	if len(p.Gifts) == 0 {
		if _, err := c.engine.Ledger().AdjustInventory(ctx, userID, starterGifts.Code, starterGifts.Qty); err != nil {
			return "", err
		}
		return fmt.Sprintf("No gifts yet. Here are %s x%d to test with.", starterGifts.Code, starterGifts.Qty), nil
	}
	lines := make([]string, 0, len(p.Gifts))
	for _, h := range p.Gifts {
		lines = append(lines, fmt.Sprintf("%s (%s) x%d (⭐️%d)", h.Title, h.Code, h.Qty, h.Value))
	}
	return "Your gifts:\n" + strings.Join(lines, "\n"), nil
}

// Fight aceita "/fight", "/fight 25" ou "/fight ROSE:2,BOX:1"
func (c *Commands) Fight(ctx context.Context, userID int64, username string, args []string) (string, error) {
	currency, stake, err := parseFightArgs(args)
	if err != nil {
		return "", err
	}
	if _, err := c.engine.EnsureUser(ctx, userID, username); err != nil {
		return "", err
	}
	res, err := c.engine.FightHouse(ctx, userID, currency, stake)
	if err != nil {
		return "", err
	}
	return FormatFight(res), nil
}

func (c *Commands) Mini(tc telebot.Context) error {
	btn := telebot.InlineButton{Text: "Open duel app", WebApp: &telebot.WebApp{URL: c.webAppURL}}
	return tc.Send("Open the mini app:", &telebot.ReplyMarkup{
		InlineKeyboard: [][]telebot.InlineButton{{btn}},
	})
}

func parseFightArgs(args []string) (duel.Currency, duel.Stake, error) {
	if len(args) == 0 {
		return duel.CurrencyStars, duel.StarsStake(DefaultFightStake), nil
	}
	arg := strings.Join(args, "")
	if strings.Contains(arg, ":") {
		items, err := duel.ParseItems(arg)
		if err != nil {
			return "", duel.Stake{}, err
		}
		return duel.CurrencyGifts, duel.ItemsStake(items), nil
	}
	amount, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return "", duel.Stake{}, errors.Join(duel.ErrInvalidStake, err)
	}
	return duel.CurrencyStars, duel.StarsStake(amount), nil
}

// FormatFight descreve o resultado do ponto de vista do desafiante
func FormatFight(res duel.FightResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Match #%d: you staked %s, opponent %s.\n",
		res.Match.ID, stakeText(res.UserBet), stakeText(res.HouseBet))
	fmt.Fprintf(&b, "Pool: %d⭐️, commission: %d⭐️.", res.Pool, res.Commission.Value)
	if res.Commission.Kind == duel.CommissionItem {
		fmt.Fprintf(&b, " Commission taken as gift %s (⭐️%d).", res.Commission.Code, res.Commission.Value)
	}
	if res.Won {
		fmt.Fprintf(&b, "\nResult: 🎉 Victory! +%d⭐️", res.Payout)
	} else {
		b.WriteString("\nResult: Defeat 😔")
	}
	return b.String()
}

func stakeText(b duel.Bet) string {
	if len(b.Items) > 0 {
		return fmt.Sprintf("%s (⭐️%d)", b.Items, b.Value)
	}
	return fmt.Sprintf("%d⭐️", b.Stars)
}

package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/radieske/duel-wager/internal/duel"
)

type tx struct {
	tx *sql.Tx
	d  dialect
}

func (t *tx) exec(ctx context.Context, q string, args ...any) (sql.Result, error) {
	return t.tx.ExecContext(ctx, t.d.rebind(q), args...)
}

func (t *tx) queryRow(ctx context.Context, q string, args ...any) *sql.Row {
	return t.tx.QueryRowContext(ctx, t.d.rebind(q), args...)
}

// EnsureUser cria o usuário com bonus stars se ainda não existir.
// created indica se a linha foi inserida agora.
func (t *tx) EnsureUser(ctx context.Context, id int64, username string, bonus int64, now time.Time) (duel.User, bool, error) {
	res, err := t.exec(ctx,
		`INSERT INTO users(id, username, stars, created_at) VALUES(?,?,?,?) ON CONFLICT (id) DO NOTHING`,
		id, username, bonus, now.UnixMilli())
	if err != nil {
		return duel.User{}, false, fmt.Errorf("insert user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return duel.User{}, false, err
	}
	created := n == 1

	if !created && username != "" {
		if _, err := t.exec(ctx, `UPDATE users SET username = ? WHERE id = ? AND username <> ?`, username, id, username); err != nil {
			return duel.User{}, false, fmt.Errorf("update username: %w", err)
		}
	}
	u, err := t.User(ctx, id)
	return u, created, err
}

func (t *tx) User(ctx context.Context, id int64) (duel.User, error) {
	var (
		u  duel.User
		ms int64
	)
	err := t.queryRow(ctx, `SELECT id, username, stars, created_at FROM users WHERE id = ?`, id).
		Scan(&u.ID, &u.Username, &u.Stars, &ms)
	if errors.Is(err, sql.ErrNoRows) {
		return duel.User{}, fmt.Errorf("%w: %d", duel.ErrUserNotFound, id)
	}
	if err != nil {
		return duel.User{}, err
	}
	u.CreatedAt = time.UnixMilli(ms)
	return u, nil
}

// AddStars aplica delta só se o saldo resultante não ficar negativo
func (t *tx) AddStars(ctx context.Context, userID, delta int64) (int64, error) {
	var bal int64
	err := t.queryRow(ctx,
		`UPDATE users SET stars = stars + ? WHERE id = ? AND stars + ? >= 0 RETURNING stars`,
		delta, userID, delta).Scan(&bal)
	if errors.Is(err, sql.ErrNoRows) {
		if _, uerr := t.User(ctx, userID); uerr != nil {
			return 0, uerr
		}
		return 0, duel.ErrInsufficientFunds
	}
	if err != nil {
		return 0, err
	}
	return bal, nil
}

func (t *tx) ItemQty(ctx context.Context, userID int64, code string) (int64, error) {
	var qty int64
	err := t.queryRow(ctx, `SELECT qty FROM inventory WHERE user_id = ? AND code = ?`, userID, code).Scan(&qty)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return qty, err
}

// AddItems cria a linha no primeiro delta positivo; delta negativo só passa
// se houver quantidade suficiente.
func (t *tx) AddItems(ctx context.Context, userID int64, code string, delta int64) (int64, error) {
	var qty int64
	if delta > 0 {
		err := t.queryRow(ctx,
			`INSERT INTO inventory(user_id, code, qty) VALUES(?,?,?)
			 ON CONFLICT (user_id, code) DO UPDATE SET qty = inventory.qty + excluded.qty
			 RETURNING qty`,
			userID, code, delta).Scan(&qty)
		return qty, err
	}

	err := t.queryRow(ctx,
		`UPDATE inventory SET qty = qty + ? WHERE user_id = ? AND code = ? AND qty + ? >= 0 RETURNING qty`,
		delta, userID, code, delta).Scan(&qty)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, duel.ErrInsufficientInventory
	}
	return qty, err
}

func (t *tx) Inventory(ctx context.Context, userID int64) ([]duel.InventoryItem, error) {
	rows, err := t.tx.QueryContext(ctx, t.d.rebind(
		`SELECT i.code, i.qty FROM inventory i JOIN items c ON c.code = i.code
		 WHERE i.user_id = ? AND i.qty > 0 ORDER BY c.seq, i.code`), userID)
	if err != nil {
		return nil, fmt.Errorf("query inventory: %w", err)
	}
	defer rows.Close()

	var out []duel.InventoryItem
	for rows.Next() {
		it := duel.InventoryItem{UserID: userID}
		if err := rows.Scan(&it.Code, &it.Qty); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (t *tx) CreateMatch(ctx context.Context, currency duel.Currency, now time.Time) (duel.Match, error) {
	m := duel.Match{Status: duel.StatusOpen, Currency: currency, CreatedAt: time.UnixMilli(now.UnixMilli())}
	err := t.queryRow(ctx,
		`INSERT INTO matches(status, currency, created_at) VALUES(?,?,?) RETURNING id`,
		string(m.Status), string(currency), now.UnixMilli()).Scan(&m.ID)
	if err != nil {
		return duel.Match{}, fmt.Errorf("insert match: %w", err)
	}
	return m, nil
}

const matchColumns = `id, status, currency, created_at, resolved_at, winner_id, pool,
	commission, commission_kind, commission_code, payout`

// LockMatch lê a partida com lock de linha (no-op no SQLite)
func (t *tx) LockMatch(ctx context.Context, id int64) (duel.Match, error) {
	var (
		m                    duel.Match
		status, currency     string
		kind                 string
		createdMs            int64
		resolvedMs, winnerID sql.NullInt64
	)
	err := t.queryRow(ctx, `SELECT `+matchColumns+` FROM matches WHERE id = ?`+t.d.forUpdate, id).Scan(
		&m.ID, &status, &currency, &createdMs, &resolvedMs, &winnerID, &m.Pool,
		&m.Commission.Value, &kind, &m.Commission.Code, &m.Payout)
	if errors.Is(err, sql.ErrNoRows) {
		return duel.Match{}, fmt.Errorf("%w: %d", duel.ErrMatchNotFound, id)
	}
	if err != nil {
		return duel.Match{}, fmt.Errorf("select match: %w", err)
	}
	m.Status = duel.Status(status)
	m.Currency = duel.Currency(currency)
	m.Commission.Kind = duel.CommissionKind(kind)
	m.CreatedAt = time.UnixMilli(createdMs)
	if resolvedMs.Valid {
		ts := time.UnixMilli(resolvedMs.Int64)
		m.ResolvedAt = &ts
	}
	if winnerID.Valid {
		w := winnerID.Int64
		m.WinnerID = &w
	}
	return m, nil
}

func (t *tx) UpdateMatch(ctx context.Context, m duel.Match) error {
	var resolved, winner sql.NullInt64
	if m.ResolvedAt != nil {
		resolved = sql.NullInt64{Int64: m.ResolvedAt.UnixMilli(), Valid: true}
	}
	if m.WinnerID != nil {
		winner = sql.NullInt64{Int64: *m.WinnerID, Valid: true}
	}
	res, err := t.exec(ctx,
		`UPDATE matches SET status = ?, resolved_at = ?, winner_id = ?, pool = ?,
		 commission = ?, commission_kind = ?, commission_code = ?, payout = ?
		 WHERE id = ?`,
		string(m.Status), resolved, winner, m.Pool,
		m.Commission.Value, string(m.Commission.Kind), m.Commission.Code, m.Payout, m.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %d", duel.ErrMatchNotFound, m.ID)
	}
	return nil
}

func (t *tx) Bets(ctx context.Context, matchID int64) ([]duel.Bet, error) {
	rows, err := t.tx.QueryContext(ctx, t.d.rebind(
		`SELECT id, match_id, user_id, stars, items, value, created_at FROM bets WHERE match_id = ? ORDER BY id`), matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []duel.Bet
	for rows.Next() {
		var (
			b     duel.Bet
			items string
			ms    int64
		)
		if err := rows.Scan(&b.ID, &b.MatchID, &b.UserID, &b.Stars, &items, &b.Value, &ms); err != nil {
			return nil, err
		}
		if b.Items, err = duel.ParseItems(items); err != nil {
			return nil, fmt.Errorf("bet %d items: %w", b.ID, err)
		}
		b.CreatedAt = time.UnixMilli(ms)
		out = append(out, b)
	}
	return out, rows.Err()
}

func (t *tx) InsertBet(ctx context.Context, b duel.Bet) (duel.Bet, error) {
	err := t.queryRow(ctx,
		`INSERT INTO bets(match_id, user_id, stars, items, value, created_at) VALUES(?,?,?,?,?,?) RETURNING id`,
		b.MatchID, b.UserID, b.Stars, b.Items.String(), b.Value, b.CreatedAt.UnixMilli()).Scan(&b.ID)
	if err != nil {
		return duel.Bet{}, err
	}
	return b, nil
}

package repo

import (
	"context"
	"fmt"

	"github.com/radieske/duel-wager/internal/duel"
)

func (s *Store) schema() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGINT PRIMARY KEY,
			username TEXT NOT NULL DEFAULT '',
			stars BIGINT NOT NULL DEFAULT 0 CHECK (stars >= 0),
			created_at BIGINT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS items (
			code TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			value BIGINT NOT NULL CHECK (value >= 0),
			seq INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS inventory (
			user_id BIGINT NOT NULL REFERENCES users(id),
			code TEXT NOT NULL REFERENCES items(code),
			qty BIGINT NOT NULL DEFAULT 0 CHECK (qty >= 0),
			PRIMARY KEY (user_id, code)
		)`,
		`CREATE TABLE IF NOT EXISTS matches (
			id ` + s.d.serial + `,
			status TEXT NOT NULL,
			currency TEXT NOT NULL,
			created_at BIGINT NOT NULL,
			resolved_at BIGINT,
			winner_id BIGINT,
			pool BIGINT NOT NULL DEFAULT 0,
			commission BIGINT NOT NULL DEFAULT 0,
			commission_kind TEXT NOT NULL DEFAULT '',
			commission_code TEXT NOT NULL DEFAULT '',
			payout BIGINT NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS bets (
			id ` + s.d.serial + `,
			match_id BIGINT NOT NULL REFERENCES matches(id),
			user_id BIGINT NOT NULL REFERENCES users(id),
			stars BIGINT NOT NULL DEFAULT 0,
			items TEXT NOT NULL DEFAULT '',
			value BIGINT NOT NULL,
			created_at BIGINT NOT NULL,
			UNIQUE (match_id, user_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_bets_match ON bets(match_id)`,
	}
}

// Migrate cria as tabelas e semeia o catálogo. Itens já existentes não são
// alterados, então valores de bets antigas continuam válidos.
func (s *Store) Migrate(ctx context.Context, seed []duel.Item) error {
	for _, stmt := range s.schema() {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	for i, it := range seed {
		if _, err := s.db.ExecContext(ctx, s.d.rebind(
			`INSERT INTO items(code, title, value, seq) VALUES(?,?,?,?) ON CONFLICT (code) DO NOTHING`),
			it.Code, it.Title, it.Value, i); err != nil {
			return fmt.Errorf("seed item %s: %w", it.Code, err)
		}
	}
	return nil
}

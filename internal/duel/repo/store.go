package repo

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/radieske/duel-wager/internal/duel"
)

type dialect struct {
	name      string
	serial    string
	forUpdate string
	numbered  bool
}

var (
	postgres = dialect{name: "postgres", serial: "BIGSERIAL PRIMARY KEY", forUpdate: " FOR UPDATE", numbered: true}
	sqlite   = dialect{name: "sqlite", serial: "INTEGER PRIMARY KEY AUTOINCREMENT"}
)

// rebind troca os placeholders "?" por "$n" no Postgres
func (d dialect) rebind(q string) string {
	if !d.numbered {
		return q
	}
	var b strings.Builder
	b.Grow(len(q) + 8)
	n := 0
	for i := 0; i < len(q); i++ {
		if q[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(q[i])
	}
	return b.String()
}

// Store implementa duel.Store sobre database/sql
type Store struct {
	db *sql.DB
	d  dialect
}

// NewPostgres usa locks de linha (FOR UPDATE) para serializar partidas
func NewPostgres(db *sql.DB) *Store { return &Store{db: db, d: postgres} }

// NewSQLite espera um *sql.DB com uma única conexão (ver db.OpenSQLite),
// o que serializa as transações.
func NewSQLite(db *sql.DB) *Store { return &Store{db: db, d: sqlite} }

// Dialect retorna "postgres" ou "sqlite"
func (s *Store) Dialect() string { return s.d.name }

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// InTx executa fn numa transação; qualquer erro faz rollback
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, tx duel.Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(ctx, &tx{tx: sqlTx, d: s.d}); err != nil {
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Items lê o catálogo na ordem de seed
func (s *Store) Items(ctx context.Context) ([]duel.Item, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT code, title, value FROM items ORDER BY seq, code`)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	var out []duel.Item
	for rows.Next() {
		var it duel.Item
		if err := rows.Scan(&it.Code, &it.Title, &it.Value); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

package duel

import (
	"context"
	"sync"
	"time"
)

// DefaultCooldown é o intervalo mínimo entre duas partidas iniciadas pelo mesmo usuário.
const DefaultCooldown = 10 * time.Second

// RateGuard limita a criação de partidas. Allow verifica e registra num passo só,
// então duas chamadas concorrentes dentro da janela não passam juntas.
// Release desfaz a marca de um Allow cuja partida não chegou a ser gravada.
type RateGuard interface {
	Allow(ctx context.Context, userID int64) (bool, error)
	Release(ctx context.Context, userID int64) error
}

// MemoryGuard é um RateGuard local ao processo.
type MemoryGuard struct {
	mu     sync.Mutex
	window time.Duration
	now    func() time.Time
	last   map[int64]time.Time
}

// NewMemoryGuard cria um guard com a janela informada; now pode ser nil.
func NewMemoryGuard(window time.Duration, now func() time.Time) *MemoryGuard {
	if now == nil {
		now = time.Now
	}
	return &MemoryGuard{window: window, now: now, last: make(map[int64]time.Time)}
}

func (g *MemoryGuard) Allow(_ context.Context, userID int64) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if t, ok := g.last[userID]; ok && now.Sub(t) < g.window {
		return false, nil
	}
	g.last[userID] = now
	if len(g.last) > 4096 {
		g.prune(now)
	}
	return true, nil
}

func (g *MemoryGuard) Release(_ context.Context, userID int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.last, userID)
	return nil
}

func (g *MemoryGuard) prune(now time.Time) {
	for id, t := range g.last {
		if now.Sub(t) >= g.window {
			delete(g.last, id)
		}
	}
}

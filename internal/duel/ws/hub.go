package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/radieske/duel-wager/pkg/contracts/events"
)

const writeWait = 5 * time.Second

// AllMatches é a chave de assinatura do feed completo
const AllMatches int64 = 0

// client serializa as escritas de uma conexão (gorilla não aceita escritas concorrentes)
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) write(b []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, b)
}

// Hub gerencia conexões WebSocket e assinaturas por partida
type Hub struct {
	upgrader websocket.Upgrader
	log      *zap.Logger
	mu       sync.RWMutex
	// matchID -> set de clientes
	subs map[int64]map[*client]struct{}
}

// NewHub cria uma instância de Hub com política customizada de origem (CORS)
func NewHub(allowOrigin func(r *http.Request) bool, log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		upgrader: websocket.Upgrader{CheckOrigin: allowOrigin},
		log:      log,
		subs:     make(map[int64]map[*client]struct{}),
	}
}

// HandleWS gerencia o ciclo de vida de uma conexão WebSocket
// Permite subscribe/unsubscribe em partidas e responde a pings
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()
	c := &client{conn: conn}

	for {
		var msg ClientMsg
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		switch msg.Type {
		case "subscribe":
			h.subscribe(c, msg.MatchID)
		case "unsubscribe":
			h.unsubscribe(c, msg.MatchID)
		case "ping":
			_ = c.write([]byte(`{"type":"pong"}`))
		}
	}
	// Remove a conexão de todas as assinaturas ao desconectar
	h.mu.Lock()
	for id, set := range h.subs {
		delete(set, c)
		if len(set) == 0 {
			delete(h.subs, id)
		}
	}
	h.mu.Unlock()
}

func (h *Hub) subscribe(c *client, matchID int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[matchID]; !ok {
		h.subs[matchID] = make(map[*client]struct{})
	}
	h.subs[matchID][c] = struct{}{}
}

func (h *Hub) unsubscribe(c *client, matchID int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.subs[matchID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.subs, matchID)
		}
	}
}

// Broadcast envia a atualização para quem assina a partida e para o feed completo
func (h *Hub) Broadcast(update events.MatchUpdate) {
	h.mu.RLock()
	targets := make([]*client, 0, len(h.subs[update.MatchID])+len(h.subs[AllMatches]))
	for c := range h.subs[update.MatchID] {
		targets = append(targets, c)
	}
	if update.MatchID != AllMatches {
		for c := range h.subs[AllMatches] {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()
	if len(targets) == 0 {
		return
	}

	b, err := json.Marshal(update)
	if err != nil {
		h.log.Error("ws marshal update", zap.Error(err))
		return
	}
	seen := make(map[*client]struct{}, len(targets))
	for _, c := range targets {
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		if err := c.write(b); err != nil {
			h.log.Warn("ws write failed", zap.Int64("matchId", update.MatchID), zap.Error(err))
		}
	}
}

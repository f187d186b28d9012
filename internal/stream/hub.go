// Package stream pushes battle snapshots to websocket spectators and feeds
// their orders back into the battle.
package stream

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/Garsondee/Battle-Sense/internal/game"
)

const sendBuffer = 64

// Hub fans encoded snapshots out to every connected client. Run owns the
// client set; everything else talks to it over channels.
type Hub struct {
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}
	count      atomic.Int64
	logger     *slog.Logger

	mu    sync.RWMutex
	intro []byte // full snapshot (with ground) sent to new clients
}

// NewHub creates a hub. Call Run before serving clients.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 8),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run serves registrations and broadcasts until ctx is done, then closes
// every client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
			}
			close(h.done)
			return

		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.count.Store(int64(len(h.clients)))
			if intro := h.introFrame(); intro != nil {
				c.send <- intro
			}
			h.logger.Info("spectator connected", "remote", c.remote, "clients", len(h.clients))

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				h.drop(c)
				h.logger.Info("spectator disconnected", "remote", c.remote, "clients", len(h.clients))
			}

		case frame := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- frame:
				default:
					h.logger.Warn("spectator too slow, dropping", "remote", c.remote)
					h.drop(c)
				}
			}
		}
	}
}

func (h *Hub) drop(c *Client) {
	delete(h.clients, c)
	close(c.send)
	h.count.Store(int64(len(h.clients)))
}

// Clients returns the number of connected spectators.
func (h *Hub) Clients() int { return int(h.count.Load()) }

// SetIntro encodes s as the first frame every new client receives. Pass a
// snapshot taken with its ground grid.
func (h *Hub) SetIntro(s game.Snapshot) error {
	b, err := msgpack.Marshal(&s)
	if err != nil {
		return fmt.Errorf("encode intro: %w", err)
	}
	h.mu.Lock()
	h.intro = b
	h.mu.Unlock()
	return nil
}

func (h *Hub) introFrame() []byte {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.intro
}

// Broadcast encodes s and queues it for every client. A frame is dropped
// rather than blocking the tick loop when the hub is backed up.
func (h *Hub) Broadcast(s game.Snapshot) error {
	b, err := msgpack.Marshal(&s)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	select {
	case h.broadcast <- b:
	default:
		h.logger.Warn("broadcast queue full, frame dropped", "tick", s.Tick)
	}
	return nil
}

package stream

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Garsondee/Battle-Sense/internal/game"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	maxMessage = 4096
)

// OrderSink accepts orders from the network. *game.Battle satisfies it.
type OrderSink interface {
	Enqueue(o game.Order)
}

// Client is one websocket spectator.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	remote string
}

// A nil CheckOrigin rejects cross-origin handshakes.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

// Handler upgrades requests to websocket spectators registered with h.
// Orders they send are decoded, stamped with side as their issuer and passed
// to sink, so a connection only ever commands that side. A nil sink or
// SideNone makes the stream read-only.
func Handler(h *Hub, sink OrderSink, side game.Side) http.Handler {
	if side == game.SideNone {
		sink = nil
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.logger.Warn("websocket upgrade", "err", err)
			return
		}
		c := &Client{hub: h, conn: conn, send: make(chan []byte, sendBuffer), remote: r.RemoteAddr}
		select {
		case h.register <- c:
		case <-h.done:
			_ = conn.Close()
			return
		}
		go c.writePump()
		go c.readPump(sink, side)
	})
}

func (c *Client) readPump(sink OrderSink, side game.Side) {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessage)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		if sink == nil {
			continue
		}
		o, err := DecodeOrder(msg)
		if err != nil {
			c.hub.logger.Warn("bad order", "remote", c.remote, "err", err)
			continue
		}
		o.Issuer = side
		sink.Enqueue(o)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// OrderMessage is the JSON form of an order sent by a client.
//
//	{"type":"move","unit":3,"x":10,"y":4}
//	{"type":"attack","unit":3,"target_building":12}
//	{"type":"retreat","side":"attacker"}
type OrderMessage struct {
	Type           string `json:"type"`
	Unit           int    `json:"unit,omitempty"`
	X              int    `json:"x,omitempty"`
	Y              int    `json:"y,omitempty"`
	TargetUnit     int    `json:"target_unit,omitempty"`
	TargetBuilding int    `json:"target_building,omitempty"`
	Enable         bool   `json:"enable,omitempty"`
	Side           string `json:"side,omitempty"`
}

var orderKinds = map[string]game.OrderKind{
	game.OrderMove.String():    game.OrderMove,
	game.OrderAttack.String():  game.OrderAttack,
	game.OrderStop.String():    game.OrderStop,
	game.OrderGuard.String():   game.OrderGuard,
	game.OrderSpecial.String(): game.OrderSpecial,
	game.OrderRetreat.String(): game.OrderRetreat,
}

// DecodeOrder parses a JSON order message.
func DecodeOrder(b []byte) (game.Order, error) {
	var m OrderMessage
	if err := json.Unmarshal(b, &m); err != nil {
		return game.Order{}, fmt.Errorf("decode order: %w", err)
	}
	kind, ok := orderKinds[m.Type]
	if !ok {
		return game.Order{}, fmt.Errorf("decode order: unknown type %q", m.Type)
	}
	o := game.Order{
		Kind:           kind,
		Unit:           m.Unit,
		X:              m.X,
		Y:              m.Y,
		TargetUnit:     m.TargetUnit,
		TargetBuilding: m.TargetBuilding,
		Enable:         m.Enable,
	}
	if kind == game.OrderRetreat {
		switch m.Side {
		case game.SideAttacker.String():
			o.Side = game.SideAttacker
		case game.SideDefender.String():
			o.Side = game.SideDefender
		default:
			return game.Order{}, fmt.Errorf("decode order: retreat needs a side, got %q", m.Side)
		}
	} else if m.Unit == 0 {
		return game.Order{}, fmt.Errorf("decode order: %s needs a unit", m.Type)
	}
	return o, nil
}

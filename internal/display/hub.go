package display

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"PriceBoard/internal/logger"
	"PriceBoard/internal/model"
)

const (
	sendBuffer   = 64
	writeTimeout = 10 * time.Second
	pingInterval = 30 * time.Second
	pongTimeout  = 2 * pingInterval
)

// Message is one render command on the wire.
type Message struct {
	Type    string          `json:"type"`
	Frame   *Frame          `json:"frame,omitempty"`
	Payload json.RawMessage `json:"payload"`
}

// State is the latest content of each view. Chart holds the last init
// command followed by the appends since.
type State struct {
	Ticker *Message  `json:"ticker,omitempty"`
	Grid   *Message  `json:"grid,omitempty"`
	Chart  []Message `json:"chart,omitempty"`
	Ledger *Message  `json:"ledger,omitempty"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub broadcasts render commands to websocket clients. New clients first
// receive the current State so views show the last rendered content. With
// no clients connected every render only updates State.
type Hub struct {
	mu         sync.Mutex
	clients    map[*client]struct{}
	state      State
	chartLimit int
	upgrader   websocket.Upgrader
	log        *zap.Logger
}

// NewHub creates a hub that keeps at most chartLimit chart appends for late
// joiners.
func NewHub(chartLimit int, log *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*client]struct{}),
		chartLimit: chartLimit,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		log: logger.OrNop(log),
	}
}

func (h *Hub) RenderTicker(f Frame, items []model.TickerItem) error {
	msg, err := newMessage("ticker", &f, items)
	if err != nil {
		return err
	}
	h.mu.Lock()
	h.state.Ticker = &msg
	h.mu.Unlock()
	return h.broadcast(msg)
}

func (h *Hub) RenderGrid(f Frame, cells []model.GridCell) error {
	msg, err := newMessage("grid", &f, cells)
	if err != nil {
		return err
	}
	h.mu.Lock()
	h.state.Grid = &msg
	h.mu.Unlock()
	return h.broadcast(msg)
}

func (h *Hub) RenderChart(f Frame, cmd model.ChartCommand) error {
	msg, err := newMessage("chart", &f, cmd)
	if err != nil {
		return err
	}
	h.mu.Lock()
	if cmd.Action == model.ChartInit {
		h.state.Chart = []Message{msg}
	} else if len(h.state.Chart) > 0 {
		h.state.Chart = append(h.state.Chart, msg)
		if extra := len(h.state.Chart) - 1 - h.chartLimit; extra > 0 {
			// Keep the init command, drop the oldest appends.
			h.state.Chart = append(h.state.Chart[:1], h.state.Chart[1+extra:]...)
		}
	}
	h.mu.Unlock()
	return h.broadcast(msg)
}

func (h *Hub) RenderLedger(f Frame, view model.LedgerView) error {
	msg, err := newMessage("ledger", &f, view)
	if err != nil {
		return err
	}
	h.mu.Lock()
	h.state.Ledger = &msg
	h.mu.Unlock()
	return h.broadcast(msg)
}

// ClearFlash tells clients a grid cell's flash has expired. The stored grid
// is updated too so late joiners do not see a stale highlight.
func (h *Hub) ClearFlash(symbol string) error {
	msg, err := newMessage("clear_flash", nil, map[string]string{"symbol": symbol})
	if err != nil {
		return err
	}
	h.mu.Lock()
	if h.state.Grid != nil {
		var cells []model.GridCell
		if err := json.Unmarshal(h.state.Grid.Payload, &cells); err == nil {
			for i := range cells {
				if cells[i].Symbol == symbol {
					cells[i].Flash = model.FlashNone
				}
			}
			if raw, err := json.Marshal(cells); err == nil {
				grid := *h.state.Grid
				grid.Payload = raw
				h.state.Grid = &grid
			}
		}
	}
	h.mu.Unlock()
	return h.broadcast(msg)
}

// State returns a copy of the latest view content.
func (h *Hub) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	s := h.state
	s.Chart = append([]Message(nil), h.state.Chart...)
	return s
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeWS upgrades the request and streams render commands until the
// client goes away.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	for _, msg := range h.replayLocked() {
		if raw, err := json.Marshal(msg); err == nil {
			select {
			case c.send <- raw:
			default:
			}
		}
	}
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()

	h.log.Info("display client connected", zap.String("remote", r.RemoteAddr), zap.Int("clients", n))
	go h.writePump(c)
	h.readPump(c)
}

func (h *Hub) replayLocked() []Message {
	var out []Message
	for _, m := range []*Message{h.state.Ticker, h.state.Grid, h.state.Ledger} {
		if m != nil {
			out = append(out, *m)
		}
	}
	return append(out, h.state.Chart...)
}

func (h *Hub) broadcast(msg Message) error {
	raw, err := json.Marshal(msg)
	if err != nil {
		return errors.Wrapf(err, "marshal %s", msg.Type)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- raw:
		default:
			// Slow client: drop it rather than stall the tick.
			h.removeLocked(c)
		}
	}
	return nil
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

// readPump discards inbound messages and detects disconnects.
func (h *Hub) readPump(c *client) {
	defer func() {
		h.remove(c)
		c.conn.Close()
		h.log.Info("display client disconnected")
	}()
	c.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case raw, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, raw); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func newMessage(kind string, f *Frame, payload any) (Message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, errors.Wrapf(err, "marshal %s", kind)
	}
	return Message{Type: kind, Frame: f, Payload: raw}, nil
}

// Package hub pushes scan results to websocket clients.
package hub

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"SignalScan/internal/domain/models"
	drepo "SignalScan/internal/domain/repository"
	"SignalScan/pkg/logger"
)

const (
	EventConnected   = "connected"
	EventSubscribed  = "subscribed"
	EventNewSignals  = "new_signals"
	EventPumpDump    = "pump_dump"
	EventCacheUpdate = "cache_update"
	EventValidations = "validations"
)

// Envelope is every frame the hub writes.
type Envelope struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin:     func(r *http.Request) bool { return true },
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

// Hub tracks connected clients and fans events out to them. A client whose
// send buffer is full is dropped rather than slowing the scan loop.
type Hub struct {
	mu       sync.RWMutex
	clients  map[*Client]struct{}
	version  func() uint64
	exchange string
	log      *logger.Logger
	closed   bool
}

var _ drepo.SignalSink = (*Hub)(nil)

// New returns a hub. version reports the current snapshot version for the
// connected event.
func New(log *logger.Logger, exchange string, version func() uint64) *Hub {
	if version == nil {
		version = func() uint64 { return 0 }
	}
	return &Hub{
		clients:  make(map[*Client]struct{}),
		version:  version,
		exchange: exchange,
		log:      log.With("hub"),
	}
}

// ServeWS upgrades the request and serves the client until it disconnects.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	c := newClient(h, conn, uuid.NewString())
	if !h.add(c) {
		_ = conn.Close()
		return nil
	}
	c.enqueue(EventConnected, map[string]interface{}{
		"status":    "ok",
		"client_id": c.id,
		"exchange":  h.exchange,
		"version":   h.version(),
	})
	go c.writePump()
	c.readPump()
	return nil
}

func (h *Hub) add(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	h.log.Debug("client connected", logger.String("client", c.id), logger.Int("clients", len(h.clients)))
	return true
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	n := len(h.clients)
	h.mu.Unlock()
	h.log.Debug("client disconnected", logger.String("client", c.id), logger.Int("clients", n))
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()
	for _, c := range clients {
		h.remove(c)
	}
}

// broadcast encodes once per distinct payload and offers it to every client
// accepted by filter.
func (h *Hub) broadcast(event string, data interface{}, filter func(*Client) bool) error {
	msg, err := json.Marshal(Envelope{Event: event, Data: data})
	if err != nil {
		return err
	}
	var slow []*Client
	h.mu.RLock()
	for c := range h.clients {
		if filter != nil && !filter(c) {
			continue
		}
		select {
		case c.send <- msg:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.log.Warn("dropping slow client", logger.String("client", c.id))
		h.remove(c)
	}
	return nil
}

// PublishSignals sends new_signals. Subscribed clients get only the
// symbols they asked for.
func (h *Hub) PublishSignals(_ context.Context, records []models.SignalRecord) error {
	if len(records) == 0 {
		return nil
	}
	if err := h.broadcast(EventNewSignals, records, (*Client).unfiltered); err != nil {
		return err
	}

	bySymbol := make(map[string][]models.SignalRecord)
	for _, r := range records {
		bySymbol[r.Symbol] = append(bySymbol[r.Symbol], r)
	}
	for symbol, recs := range bySymbol {
		if err := h.broadcast(EventNewSignals, recs, func(c *Client) bool { return c.subscribed(symbol) }); err != nil {
			return err
		}
	}
	return nil
}

func (h *Hub) PublishAlerts(_ context.Context, alerts []models.PumpDumpAlert) error {
	if len(alerts) == 0 {
		return nil
	}
	return h.broadcast(EventPumpDump, alerts, nil)
}

func (h *Hub) PublishSnapshot(_ context.Context, snap *models.Snapshot) error {
	return h.broadcast(EventCacheUpdate, snap, nil)
}

func (h *Hub) PublishObservations(_ context.Context, obs []models.Observation) error {
	if len(obs) == 0 {
		return nil
	}
	return h.broadcast(EventValidations, obs, nil)
}

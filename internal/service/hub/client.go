package hub

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"SignalScan/pkg/util"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	sendBuffer = 64
	readLimit  = 4096
)

// Client is one websocket peer.
type Client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	mu   sync.RWMutex
	subs map[string]struct{}
}

type inbound struct {
	Type   string `json:"type"`
	Symbol string `json:"symbol"`
}

func newClient(h *Hub, conn *websocket.Conn, id string) *Client {
	return &Client{
		id:   id,
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBuffer),
		subs: make(map[string]struct{}),
	}
}

// unfiltered reports whether the client takes every symbol.
func (c *Client) unfiltered() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.subs) == 0
}

func (c *Client) subscribed(symbol string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.subs[symbol]
	return ok
}

// enqueue is used for replies to this client only.
func (c *Client) enqueue(event string, data interface{}) {
	msg, err := json.Marshal(Envelope{Event: event, Data: data})
	if err != nil {
		return
	}
	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	if _, ok := c.hub.clients[c]; !ok {
		return
	}
	select {
	case c.send <- msg:
	default:
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.remove(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(readLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg inbound
		if json.Unmarshal(raw, &msg) != nil {
			continue
		}
		switch strings.ToLower(msg.Type) {
		case "subscribe":
			symbol := util.NormalizeSymbol(msg.Symbol)
			if symbol == "" {
				continue
			}
			c.mu.Lock()
			c.subs[symbol] = struct{}{}
			c.mu.Unlock()
			c.enqueue(EventSubscribed, map[string]string{"symbol": symbol})
		case "unsubscribe":
			symbol := util.NormalizeSymbol(msg.Symbol)
			c.mu.Lock()
			delete(c.subs, symbol)
			c.mu.Unlock()
		}
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
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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

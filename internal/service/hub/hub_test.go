package hub

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"SignalScan/internal/domain/models"
	"SignalScan/pkg/logger"
)

type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func startHub(t *testing.T) (*Hub, string) {
	t.Helper()
	h := New(logger.Nop(), "bybit", func() uint64 { return 7 })
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = h.ServeWS(w, r)
	}))
	t.Cleanup(func() {
		h.Close()
		srv.Close()
	})
	return h, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var f frame
	if err := conn.ReadJSON(&f); err != nil {
		t.Fatalf("read: %v", err)
	}
	return f
}

func record(symbol string) models.SignalRecord {
	return models.NewSignalRecord(&models.TrendStopSignal{SignalBase: models.SignalBase{
		Symbol:    symbol,
		Kind:      models.KindUTBotBuy,
		Direction: models.Buy,
		Price:     100,
		Strength:  80,
	}})
}

func TestConnectedEventCarriesVersion(t *testing.T) {
	_, url := startHub(t)
	conn := dial(t, url)

	f := readFrame(t, conn)
	if f.Event != EventConnected {
		t.Fatalf("first event = %q", f.Event)
	}
	var data struct {
		Version  uint64 `json:"version"`
		Exchange string `json:"exchange"`
	}
	_ = json.Unmarshal(f.Data, &data)
	if data.Version != 7 || data.Exchange != "bybit" {
		t.Fatalf("unexpected connected payload: %s", f.Data)
	}
}

func TestSubscribeFiltersSignals(t *testing.T) {
	h, url := startHub(t)
	all := dial(t, url)
	eth := dial(t, url)
	readFrame(t, all)
	readFrame(t, eth)

	if err := eth.WriteJSON(map[string]string{"type": "subscribe", "symbol": "eth_usdt"}); err != nil {
		t.Fatal(err)
	}
	if f := readFrame(t, eth); f.Event != EventSubscribed || !strings.Contains(string(f.Data), "ETHUSDT") {
		t.Fatalf("unexpected ack: %s %s", f.Event, f.Data)
	}

	if err := h.PublishSignals(context.Background(), []models.SignalRecord{record("BTCUSDT"), record("ETHUSDT")}); err != nil {
		t.Fatal(err)
	}

	var got []models.SignalRecord
	f := readFrame(t, all)
	if f.Event != EventNewSignals {
		t.Fatalf("all: event %q", f.Event)
	}
	_ = json.Unmarshal(f.Data, &got)
	if len(got) != 2 {
		t.Fatalf("unsubscribed client should get every signal, got %d", len(got))
	}

	f = readFrame(t, eth)
	got = nil
	_ = json.Unmarshal(f.Data, &got)
	if f.Event != EventNewSignals || len(got) != 1 || got[0].Symbol != "ETHUSDT" {
		t.Fatalf("subscribed client got %s %s", f.Event, f.Data)
	}
}

func TestPublishSnapshotAndAlerts(t *testing.T) {
	h, url := startHub(t)
	conn := dial(t, url)
	readFrame(t, conn)

	_ = h.PublishSnapshot(context.Background(), &models.Snapshot{Version: 3})
	_ = h.PublishAlerts(context.Background(), []models.PumpDumpAlert{{Symbol: "BTCUSDT", Kind: models.AlertPump}})

	if f := readFrame(t, conn); f.Event != EventCacheUpdate {
		t.Fatalf("event = %q, want cache_update", f.Event)
	}
	if f := readFrame(t, conn); f.Event != EventPumpDump {
		t.Fatalf("event = %q, want pump_dump", f.Event)
	}
	if h.ClientCount() != 1 {
		t.Fatalf("client count = %d", h.ClientCount())
	}
}

package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaiso/knxpanel/internal/bridge"
	"github.com/shaiso/knxpanel/internal/knx"
	"github.com/shaiso/knxpanel/internal/telemetry"
	"github.com/shaiso/knxpanel/internal/wsapi"
)

// --- HTTP Client Tests ---

func TestClient_ListPanels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/panels", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[{"url_path":"knx_ui","component_name":"custom","title":"KNX UI","icon":"mdi:earth","require_admin":true}],"total":1}`))
	}))
	defer srv.Close()

	panels, err := NewClient(srv.URL).ListPanels()
	require.NoError(t, err)
	require.Len(t, panels, 1)
	assert.Equal(t, "knx_ui", panels[0].URLPath)
	assert.True(t, panels[0].RequireAdmin)
}

func TestClient_ListTelegrams_Limit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "7", r.URL.Query().Get("limit"))
		w.Write([]byte(`{"data":[{"destination_address":"1/2/3","payload":"0x01","source_address":"1.1.1","direction":"incoming","timestamp":"t"}],"total":1}`))
	}))
	defer srv.Close()

	telegrams, err := NewClient(srv.URL).ListTelegrams(7)
	require.NoError(t, err)
	require.Len(t, telegrams, 1)
	assert.Equal(t, "0x01", telegrams[0].Payload)
}

func TestClient_ErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":{"code":"NOT_FOUND","message":"panel not found"}}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).GetPanel("missing")
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND: panel not found", err.Error())
}

func TestClient_ErrorWithoutEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).ListPanels()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 502")
}

// --- WebSocket Client Tests ---

func newBridgeServer(t *testing.T) (*httptest.Server, *knx.TelegramQueue) {
	t.Helper()

	queue := knx.NewTelegramQueue(16, telemetry.Discard())
	addr, err := knx.ParseIndividualAddress("1.1.1")
	require.NoError(t, err)

	gw := knx.NewGateway(knx.GatewayConfig{Version: "2.0", IndividualAddress: addr, Queue: queue})
	gw.AttachLink(knx.LinkFunc(func() bool { return true }))

	registry := wsapi.NewRegistry()
	require.NoError(t, bridge.New(bridge.Config{Gateway: gw, Logger: telemetry.Discard()}).Register(registry))

	mux := http.NewServeMux()
	mux.Handle("GET /api/websocket", wsapi.NewServer(wsapi.ServerConfig{Registry: registry, Logger: telemetry.Discard()}))

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go queue.Run(ctx)

	return srv, queue
}

func TestWSClient_Info(t *testing.T) {
	srv, _ := newBridgeServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ws, err := DialWS(ctx, srv.URL)
	require.NoError(t, err)
	defer ws.Close()

	info, err := ws.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, InfoResponse{Version: "2.0", Connected: true, CurrentAddress: "1.1.1"}, *info)
}

func TestWSClient_GroupMonitorInfo(t *testing.T) {
	srv, _ := newBridgeServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ws, err := DialWS(ctx, srv.URL)
	require.NoError(t, err)
	defer ws.Close()

	// История не настроена — пустой список
	info, err := ws.GroupMonitorInfo(ctx)
	require.NoError(t, err)
	assert.False(t, info.ProjectLoaded)
	assert.Empty(t, info.RecentTelegrams)
}

func TestWSClient_SubscribeTelegrams(t *testing.T) {
	srv, queue := newBridgeServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ws, err := DialWS(ctx, srv.URL)
	require.NoError(t, err)

	received := make(chan TelegramResponse, 1)
	done := make(chan error, 1)
	subCtx, stop := context.WithCancel(ctx)
	go func() {
		done <- ws.SubscribeTelegrams(subCtx, func(t TelegramResponse) { received <- t })
	}()

	require.Eventually(t, func() bool { return queue.Len() == 1 }, 2*time.Second, 10*time.Millisecond)

	dst, _ := knx.ParseGroupAddress("1/2/3")
	src, _ := knx.ParseIndividualAddress("1.1.5")
	require.NoError(t, queue.Put(knx.Telegram{
		DestinationAddress: dst,
		SourceAddress:      src,
		Payload:            knx.Payload{APCI: knx.GroupValueWrite, Data: []byte{0x01}},
		Direction:          knx.DirectionIncoming,
		Timestamp:          time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}))

	select {
	case got := <-received:
		assert.Equal(t, TelegramResponse{
			DestinationAddress: "1/2/3",
			Payload:            "0x01",
			SourceAddress:      "1.1.5",
			Direction:          "incoming",
			Timestamp:          "2024-05-01T10:00:00Z",
		}, got)
	case <-ctx.Done():
		t.Fatal("telegram not received")
	}

	stop()
	require.NoError(t, <-done)

	// Закрытие соединения снимает callback на сервере
	require.Eventually(t, func() bool { return queue.Len() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestWSURL(t *testing.T) {
	assert.Equal(t, "ws://localhost:8123/api/websocket", wsURL("http://localhost:8123/", "/api/websocket"))
	assert.Equal(t, "wss://knx.example/api/websocket", wsURL("https://knx.example", "/api/websocket"))
}

// --- Output Tests ---

func TestOutput_Table(t *testing.T) {
	var out, errOut bytes.Buffer
	o := NewOutputTo(false, &out, &errOut)

	o.Print([]string{"A", "BB"}, [][]string{{"1", "2"}}, nil)
	o.Success("done")

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "A  BB", lines[0])
	assert.Equal(t, "-  --", lines[1])
	assert.Equal(t, "done\n", errOut.String())
}

func TestOutput_StreamJSON(t *testing.T) {
	var out bytes.Buffer
	o := NewOutputTo(true, &out, &bytes.Buffer{})

	o.Stream(nil, TelegramResponse{Payload: "0x01"})
	o.Stream(nil, TelegramResponse{Payload: "0x02"})

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], `"payload":"0x02"`)
}

// --- Publish Tests ---

func TestPublishOptions_Telegram(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	tg, err := PublishOptions{
		Destination: "1/2/3",
		Source:      "1.1.250",
		APCI:        "GroupValueWrite",
		Data:        "0x0c",
		Direction:   "outgoing",
	}.Telegram(now)
	require.NoError(t, err)

	assert.Equal(t, "0x0c", tg.Payload.String())
	assert.Equal(t, knx.DirectionOutgoing, tg.Direction)
	assert.True(t, tg.Timestamp.Equal(now))

	_, err = PublishOptions{Destination: "bad", Source: "1.1.1"}.Telegram(now)
	assert.ErrorIs(t, err, knx.ErrInvalidAddress)
}

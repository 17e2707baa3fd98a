package mqtt

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shaiso/knxpanel/internal/knx"
	"github.com/shaiso/knxpanel/internal/telemetry"
)

// fakeMessage — минимальная реализация paho.Message.
type fakeMessage struct {
	topic   string
	payload []byte
}

func (m fakeMessage) Duplicate() bool   { return false }
func (m fakeMessage) Qos() byte         { return 0 }
func (m fakeMessage) Retained() bool    { return false }
func (m fakeMessage) Topic() string     { return m.topic }
func (m fakeMessage) MessageID() uint16 { return 1 }
func (m fakeMessage) Payload() []byte   { return m.payload }
func (m fakeMessage) Ack()              {}

func newTestClient(queueSize int) (*Client, *knx.TelegramQueue) {
	queue := knx.NewTelegramQueue(queueSize, telemetry.Discard())
	c := NewClient(Config{Queue: queue, Logger: telemetry.Discard()})
	c.now = func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC) }
	return c, queue
}

// --- Config Tests ---

func TestNewClient_Defaults(t *testing.T) {
	c, _ := newTestClient(1)

	if c.cfg.Broker != DefaultBroker {
		t.Errorf("Broker = %s, want %s", c.cfg.Broker, DefaultBroker)
	}
	if c.cfg.Topic != DefaultTopic {
		t.Errorf("Topic = %s, want %s", c.cfg.Topic, DefaultTopic)
	}
	if c.cfg.ClientID == "" {
		t.Error("ClientID should be generated")
	}
	if c.IsConnected() {
		t.Error("IsConnected() = true before Connect")
	}
}

// --- Handler Tests ---

func TestHandlePayload(t *testing.T) {
	c, queue := newTestClient(4)

	got := make(chan knx.Telegram, 1)
	queue.RegisterTelegramCallback(func(t knx.Telegram) { got <- t })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go queue.Run(ctx)

	err := c.handlePayload([]byte(`{"destination_address":"1/2/3","source_address":"1.1.1","apci":"GroupValueRead"}`))
	if err != nil {
		t.Fatalf("handlePayload() error = %v", err)
	}

	select {
	case tg := <-got:
		if tg.DestinationAddress.String() != "1/2/3" {
			t.Errorf("destination = %s, want 1/2/3", tg.DestinationAddress)
		}
		if tg.Payload.APCI != knx.GroupValueRead {
			t.Errorf("apci = %s, want %s", tg.Payload.APCI, knx.GroupValueRead)
		}
	case <-time.After(time.Second):
		t.Fatal("telegram not dispatched")
	}
}

func TestHandlePayload_Invalid(t *testing.T) {
	c, _ := newTestClient(1)

	tests := []struct {
		name    string
		payload string
	}{
		{"not json", `{`},
		{"bad source", `{"destination_address":"1/2/3","source_address":"99.1.1"}`},
		{"bad apci", `{"destination_address":"1/2/3","source_address":"1.1.1","apci":"Restart"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := c.handlePayload([]byte(tt.payload)); err == nil {
				t.Error("handlePayload() should fail")
			}
		})
	}
}

func TestHandlePayload_QueueFull(t *testing.T) {
	c, _ := newTestClient(1)
	payload := []byte(`{"destination_address":"1/2/3","source_address":"1.1.1"}`)

	if err := c.handlePayload(payload); err != nil {
		t.Fatalf("first handlePayload() error = %v", err)
	}
	if err := c.handlePayload(payload); !errors.Is(err, knx.ErrQueueFull) {
		t.Errorf("second handlePayload() error = %v, want ErrQueueFull", err)
	}
}

func TestMessageHandler_DropsInvalid(t *testing.T) {
	c, queue := newTestClient(1)

	c.messageHandler(nil, fakeMessage{topic: "knx/telegram/1/2/3", payload: []byte(`garbage`)})

	// Невалидное сообщение не занимает место в очереди
	if err := queue.Put(knx.Telegram{}); err != nil {
		t.Errorf("queue should be empty, Put() error = %v", err)
	}
}

package wsapi

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaiso/knxpanel/internal/telemetry"
)

// drain читает все сообщения, уже лежащие в очереди соединения.
func drain(t *testing.T, conn *Connection) []map[string]any {
	t.Helper()
	var out []map[string]any
	for {
		select {
		case data, ok := <-conn.Outgoing():
			if !ok {
				return out
			}
			var m map[string]any
			require.NoError(t, json.Unmarshal(data, &m))
			out = append(out, m)
		default:
			return out
		}
	}
}

func TestConnection_SendResultOmitsNilResult(t *testing.T) {
	conn := NewConnection(telemetry.Discard(), 4)

	require.True(t, conn.SendResult(7, nil))

	data := <-conn.Outgoing()
	assert.JSONEq(t, `{"id":7,"type":"result","success":true}`, string(data))
}

func TestConnection_SendError(t *testing.T) {
	conn := NewConnection(telemetry.Discard(), 4)

	conn.SendError(3, ErrCodeNotFound, "nope")

	data := <-conn.Outgoing()
	assert.JSONEq(t, `{"id":3,"type":"result","success":false,"error":{"code":"not_found","message":"nope"}}`, string(data))
}

func TestConnection_DropWhenFull(t *testing.T) {
	conn := NewConnection(telemetry.Discard(), 1)

	assert.True(t, conn.SendEvent(1, "a"))
	assert.False(t, conn.SendEvent(1, "b"), "second message must be dropped")

	msgs := drain(t, conn)
	require.Len(t, msgs, 1)
	assert.Equal(t, "a", msgs[0]["event"])
}

func TestConnection_UnsubscribeOnce(t *testing.T) {
	conn := NewConnection(telemetry.Discard(), 4)

	calls := 0
	conn.Subscribe(5, func() { calls++ })
	assert.Equal(t, 1, conn.Subscriptions())

	assert.True(t, conn.Unsubscribe(5))
	assert.False(t, conn.Unsubscribe(5), "second unsubscribe is a no-op")
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, conn.Subscriptions())

	// Close после отписки не вызывает unsub повторно
	conn.Close()
	assert.Equal(t, 1, calls)
}

func TestConnection_CloseCancelsAll(t *testing.T) {
	conn := NewConnection(telemetry.Discard(), 4)

	var a, b int
	conn.Subscribe(1, func() { a++ })
	conn.Subscribe(2, func() { b++ })

	conn.Close()
	conn.Close()

	assert.Equal(t, 1, a)
	assert.Equal(t, 1, b)
	assert.False(t, conn.SendResult(3, nil), "send after close must fail")

	_, ok := <-conn.Outgoing()
	assert.False(t, ok, "outgoing must be closed")
}

func TestConnection_SubscribeAfterClose(t *testing.T) {
	conn := NewConnection(telemetry.Discard(), 4)
	conn.Close()

	calls := 0
	conn.Subscribe(1, func() { calls++ })

	assert.Equal(t, 1, calls, "subscription on a closed connection is cancelled immediately")
	assert.Equal(t, 0, conn.Subscriptions())
}

func TestConnection_SubscribeReplacesSameID(t *testing.T) {
	conn := NewConnection(telemetry.Discard(), 4)

	var first, second int
	conn.Subscribe(1, func() { first++ })
	conn.Subscribe(1, func() { second++ })

	assert.Equal(t, 1, first)
	assert.Equal(t, 0, second)
	assert.Equal(t, 1, conn.Subscriptions())
}

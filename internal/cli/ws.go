package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

// Команды командного канала панели.
const (
	commandInfo               = "panel/info"
	commandSubscribeTelegrams = "panel/subscribe_telegrams"
	commandGroupMonitorInfo   = "panel/group_monitor_info"
)

// wsMessage — входящее сообщение канала: result или event.
type wsMessage struct {
	ID      int             `json:"id"`
	Type    string          `json:"type"`
	Success bool            `json:"success"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
	Event json.RawMessage `json:"event,omitempty"`
}

// WSClient — клиент командного канала /api/websocket.
// Не потокобезопасен: команды выполняются последовательно.
type WSClient struct {
	conn   *websocket.Conn
	nextID int
}

// DialWS подключается к командному каналу сервера.
// Схема берётся из baseURL: https → wss, http → ws.
func DialWS(ctx context.Context, baseURL string) (*WSClient, error) {
	conn, _, err := websocket.Dial(ctx, wsURL(baseURL, "/api/websocket"), nil)
	if err != nil {
		return nil, fmt.Errorf("dial websocket: %w", err)
	}
	return &WSClient{conn: conn}, nil
}

func wsURL(baseURL, path string) string {
	u := strings.TrimRight(baseURL, "/") + path

	if strings.HasPrefix(u, "https://") {
		return "wss://" + u[len("https://"):]
	}
	if strings.HasPrefix(u, "http://") {
		return "ws://" + u[len("http://"):]
	}
	return u
}

// Close закрывает соединение.
func (c *WSClient) Close() error {
	return c.conn.Close(websocket.StatusNormalClosure, "")
}

// Info запрашивает состояние шлюза.
func (c *WSClient) Info(ctx context.Context) (*InfoResponse, error) {
	var info InfoResponse
	if err := c.call(ctx, commandInfo, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// GroupMonitorInfo запрашивает последние телеграммы.
func (c *WSClient) GroupMonitorInfo(ctx context.Context) (*GroupMonitorInfoResponse, error) {
	var info GroupMonitorInfoResponse
	if err := c.call(ctx, commandGroupMonitorInfo, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// SubscribeTelegrams подписывается на телеграммы и вызывает fn для каждой
// до отмены ctx. Отмена закрывает соединение, сервер снимает подписку сам.
func (c *WSClient) SubscribeTelegrams(ctx context.Context, fn func(TelegramResponse)) error {
	id, err := c.send(ctx, commandSubscribeTelegrams)
	if err != nil {
		return err
	}

	if _, err := c.waitResult(ctx, id); err != nil {
		return err
	}

	for {
		var msg wsMessage
		if err := wsjson.Read(ctx, c.conn, &msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read event: %w", err)
		}

		if msg.Type != "event" || msg.ID != id {
			continue
		}

		var t TelegramResponse
		if err := json.Unmarshal(msg.Event, &t); err != nil {
			return fmt.Errorf("decode event: %w", err)
		}
		fn(t)
	}
}

// call отправляет команду и разбирает result в v.
func (c *WSClient) call(ctx context.Context, msgType string, v any) error {
	id, err := c.send(ctx, msgType)
	if err != nil {
		return err
	}

	result, err := c.waitResult(ctx, id)
	if err != nil {
		return err
	}
	if v == nil || len(result) == 0 {
		return nil
	}
	return json.Unmarshal(result, v)
}

func (c *WSClient) send(ctx context.Context, msgType string) (int, error) {
	c.nextID++
	id := c.nextID

	if err := wsjson.Write(ctx, c.conn, map[string]any{"id": id, "type": msgType}); err != nil {
		return 0, fmt.Errorf("send %s: %w", msgType, err)
	}
	return id, nil
}

// waitResult читает сообщения до result с нужным id.
func (c *WSClient) waitResult(ctx context.Context, id int) (json.RawMessage, error) {
	for {
		var msg wsMessage
		if err := wsjson.Read(ctx, c.conn, &msg); err != nil {
			return nil, fmt.Errorf("read result: %w", err)
		}

		if msg.Type != "result" || msg.ID != id {
			continue
		}

		if !msg.Success {
			if msg.Error == nil {
				return nil, errors.New("command failed")
			}
			return nil, fmt.Errorf("%s: %s", msg.Error.Code, msg.Error.Message)
		}
		return msg.Result, nil
	}
}

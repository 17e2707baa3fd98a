package wsapi

import (
	"encoding/json"
	"fmt"
)

// Типы исходящих сообщений.
const (
	TypeResult = "result"
	TypeEvent  = "event"
	TypePong   = "pong"
)

// ErrorCode — код ошибки в ответе на команду.
type ErrorCode string

const (
	ErrCodeInvalidFormat  ErrorCode = "invalid_format"
	ErrCodeUnknownCommand ErrorCode = "unknown_command"
	ErrCodeIDReuse        ErrorCode = "id_reuse"
	ErrCodeNotFound       ErrorCode = "not_found"
	ErrCodeUnknownError   ErrorCode = "unknown_error"
)

// Message — входящая команда клиента.
type Message struct {
	ID   int    `json:"id"`
	Type string `json:"type"`

	// Raw — исходный JSON команды, для разбора дополнительных полей.
	Raw json.RawMessage `json:"-"`
}

// Decode разбирает дополнительные поля команды в v.
func (m Message) Decode(v any) error {
	if err := json.Unmarshal(m.Raw, v); err != nil {
		return fmt.Errorf("decode %s: %w", m.Type, err)
	}
	return nil
}

// ResultMessage — ответ на команду.
type ResultMessage struct {
	ID      int          `json:"id"`
	Type    string       `json:"type"`
	Success bool         `json:"success"`
	Result  any          `json:"result,omitempty"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

// ErrorDetail — детали ошибки.
type ErrorDetail struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// EventMessage — событие подписки.
type EventMessage struct {
	ID    int    `json:"id"`
	Type  string `json:"type"`
	Event any    `json:"event"`
}

// PongMessage — ответ на ping.
type PongMessage struct {
	ID   int    `json:"id"`
	Type string `json:"type"`
}

// NewResult создаёт успешный ответ. При result == nil поле result не выводится.
func NewResult(id int, result any) ResultMessage {
	return ResultMessage{ID: id, Type: TypeResult, Success: true, Result: result}
}

// NewError создаёт ответ с ошибкой.
func NewError(id int, code ErrorCode, message string) ResultMessage {
	return ResultMessage{
		ID:      id,
		Type:    TypeResult,
		Success: false,
		Error:   &ErrorDetail{Code: code, Message: message},
	}
}

// NewEvent создаёт событие подписки.
func NewEvent(id int, event any) EventMessage {
	return EventMessage{ID: id, Type: TypeEvent, Event: event}
}

// parseMessage разбирает входящую команду. id обязателен, type — непустой.
func parseMessage(data []byte) (Message, error) {
	var head struct {
		ID   *int    `json:"id"`
		Type *string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return Message{}, fmt.Errorf("malformed message: %w", err)
	}
	if head.ID == nil {
		return Message{}, fmt.Errorf("message has no id")
	}
	if head.Type == nil || *head.Type == "" {
		return Message{ID: *head.ID}, fmt.Errorf("message has no type")
	}

	return Message{ID: *head.ID, Type: *head.Type, Raw: data}, nil
}

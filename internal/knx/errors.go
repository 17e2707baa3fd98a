package knx

import "errors"

var (
	// ErrInvalidAddress — строка не является корректным KNX-адресом.
	ErrInvalidAddress = errors.New("invalid knx address")

	// ErrInvalidPayload — данные телеграммы не удалось разобрать.
	ErrInvalidPayload = errors.New("invalid telegram payload")

	// ErrQueueFull — очередь телеграмм переполнена, телеграмма отброшена.
	ErrQueueFull = errors.New("telegram queue full")
)

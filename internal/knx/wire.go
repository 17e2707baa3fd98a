package knx

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// WireTelegram — JSON-представление телеграммы в feed'ах.
//
// Пример:
//
//	{"destination_address":"1/2/3","source_address":"1.1.1",
//	 "apci":"GroupValueWrite","data":"0x01","direction":"incoming",
//	 "timestamp":"2024-05-01T10:00:00Z"}
type WireTelegram struct {
	DestinationAddress string    `json:"destination_address"`
	SourceAddress      string    `json:"source_address"`
	APCI               APCI      `json:"apci,omitempty"`
	Data               string    `json:"data,omitempty"`
	Direction          Direction `json:"direction,omitempty"`
	Timestamp          time.Time `json:"timestamp,omitempty"`
}

// NewWireTelegram переводит телеграмму в wire-формат.
func NewWireTelegram(t Telegram) WireTelegram {
	return WireTelegram{
		DestinationAddress: t.DestinationAddress.String(),
		SourceAddress:      t.SourceAddress.String(),
		APCI:               t.Payload.APCI,
		Data:               t.Payload.String(),
		Direction:          t.Direction,
		Timestamp:          t.Timestamp,
	}
}

// Telegram разбирает wire-телеграмму.
//
// Пустые поля заполняются значениями по умолчанию: APCI — GroupValueWrite,
// направление — incoming, время — now().
func (w WireTelegram) Telegram(now func() time.Time) (Telegram, error) {
	dst, err := ParseGroupAddress(w.DestinationAddress)
	if err != nil {
		return Telegram{}, fmt.Errorf("destination: %w", err)
	}

	src, err := ParseIndividualAddress(w.SourceAddress)
	if err != nil {
		return Telegram{}, fmt.Errorf("source: %w", err)
	}

	data, err := ParseData(w.Data)
	if err != nil {
		return Telegram{}, err
	}

	apci := w.APCI
	if apci == "" {
		apci = GroupValueWrite
	}
	if !apci.Valid() {
		return Telegram{}, fmt.Errorf("%w: unknown apci %q", ErrInvalidPayload, apci)
	}

	direction := w.Direction
	switch direction {
	case "":
		direction = DirectionIncoming
	case DirectionIncoming, DirectionOutgoing:
	default:
		return Telegram{}, fmt.Errorf("%w: unknown direction %q", ErrInvalidPayload, direction)
	}

	ts := w.Timestamp
	if ts.IsZero() {
		ts = now()
	}

	return Telegram{
		DestinationAddress: dst,
		SourceAddress:      src,
		Payload:            Payload{APCI: apci, Data: data},
		Direction:          direction,
		Timestamp:          ts,
	}, nil
}

// ParseData разбирает hex-строку с необязательным префиксом 0x.
func ParseData(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "0x"), "0X")
	if s == "" {
		return nil, nil
	}
	if len(s)%2 == 1 {
		s = "0" + s
	}

	data, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return data, nil
}

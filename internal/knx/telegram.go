package knx

import (
	"encoding/hex"
	"time"
)

// Direction — направление телеграммы относительно шлюза.
type Direction string

const (
	// DirectionIncoming — телеграмма получена с шины.
	DirectionIncoming Direction = "incoming"

	// DirectionOutgoing — телеграмма отправлена на шину.
	DirectionOutgoing Direction = "outgoing"
)

// APCI — тип прикладной службы группового обмена.
type APCI string

const (
	GroupValueRead     APCI = "GroupValueRead"
	GroupValueResponse APCI = "GroupValueResponse"
	GroupValueWrite    APCI = "GroupValueWrite"
)

// Valid проверяет, что APCI известен.
func (a APCI) Valid() bool {
	switch a {
	case GroupValueRead, GroupValueResponse, GroupValueWrite:
		return true
	default:
		return false
	}
}

// Payload — полезная нагрузка телеграммы.
type Payload struct {
	APCI APCI
	Data []byte
}

// String возвращает данные в виде "0x0102". Для чтения без данных — пустая строка.
func (p Payload) String() string {
	if len(p.Data) == 0 {
		return ""
	}
	return "0x" + hex.EncodeToString(p.Data)
}

// Telegram — одно сообщение KNX-шины.
type Telegram struct {
	DestinationAddress GroupAddress
	SourceAddress      IndividualAddress
	Payload            Payload
	Direction          Direction
	Timestamp          time.Time
}

// TelegramDict — отображение телеграммы для UI: все поля строковые.
type TelegramDict struct {
	DestinationAddress string `json:"destination_address"`
	Payload            string `json:"payload"`
	SourceAddress      string `json:"source_address"`
	Direction          string `json:"direction"`
	Timestamp          string `json:"timestamp"`
}

// Dict проецирует телеграмму в TelegramDict без какой-либо валидации.
func (t Telegram) Dict() TelegramDict {
	return TelegramDict{
		DestinationAddress: t.DestinationAddress.String(),
		Payload:            t.Payload.String(),
		SourceAddress:      t.SourceAddress.String(),
		Direction:          string(t.Direction),
		Timestamp:          t.Timestamp.UTC().Format(time.RFC3339Nano),
	}
}

package mq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shaiso/knxpanel/internal/knx"
)

// TelegramHandler возвращает Handler, который разбирает телеграмму
// и кладёт её в очередь шлюза.
//
// Неизвестный тип, битый payload и переполненная очередь отбрасывают
// сообщение: повторная доставка устаревшей телеграммы не нужна.
func TelegramHandler(queue *knx.TelegramQueue, logger *slog.Logger) Handler {
	return func(ctx context.Context, d *Delivery) error {
		t, err := DecodeTelegram(&d.Message, time.Now)
		if err != nil {
			return err
		}

		if err := queue.Put(t); err != nil {
			if errors.Is(err, knx.ErrQueueFull) {
				return fmt.Errorf("%w: %v", ErrDiscard, err)
			}
			return err
		}

		logger.Debug("telegram received",
			"destination", t.DestinationAddress,
			"source", t.SourceAddress,
			"apci", t.Payload.APCI,
		)
		return nil
	}
}

// DecodeTelegram извлекает телеграмму из конверта.
func DecodeTelegram(msg *Message, now func() time.Time) (knx.Telegram, error) {
	if msg.Type != MessageTypeTelegram {
		return knx.Telegram{}, fmt.Errorf("%w: unexpected type %q", ErrDiscard, msg.Type)
	}

	wire, err := ParsePayload[knx.WireTelegram](msg)
	if err != nil {
		return knx.Telegram{}, fmt.Errorf("%w: %v", ErrDiscard, err)
	}

	t, err := wire.Telegram(now)
	if err != nil {
		return knx.Telegram{}, fmt.Errorf("%w: %v", ErrDiscard, err)
	}
	return t, nil
}

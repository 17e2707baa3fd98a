package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shaiso/knxpanel/internal/knx"
)

func TestInsertArgs(t *testing.T) {
	dst, _ := knx.NewGroupAddress(31, 7, 255)
	src, _ := knx.NewIndividualAddress(15, 15, 255)
	ts := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	args := insertArgs(knx.Telegram{
		DestinationAddress: dst,
		SourceAddress:      src,
		Payload:            knx.Payload{APCI: knx.GroupValueWrite, Data: []byte{0x01}},
		Direction:          knx.DirectionOutgoing,
		Timestamp:          ts,
	})

	if len(args) != 6 {
		t.Fatalf("expected 6 args, got %d", len(args))
	}
	// Максимальные адреса должны влезать в INTEGER без переполнения
	if args[0] != int32(0xFFFF) {
		t.Errorf("destination: expected 65535, got %v", args[0])
	}
	if args[1] != int32(0xFFFF) {
		t.Errorf("source: expected 65535, got %v", args[1])
	}
	if args[2] != "GroupValueWrite" || args[4] != "outgoing" {
		t.Errorf("unexpected apci/direction: %v %v", args[2], args[4])
	}
	if args[5] != ts {
		t.Errorf("unexpected timestamp: %v", args[5])
	}
}

type fakeRow struct {
	values []any
}

func (r fakeRow) Scan(dest ...any) error {
	*(dest[0].(*int32)) = r.values[0].(int32)
	*(dest[1].(*int32)) = r.values[1].(int32)
	*(dest[2].(*string)) = r.values[2].(string)
	*(dest[3].(*[]byte)) = r.values[3].([]byte)
	*(dest[4].(*string)) = r.values[4].(string)
	*(dest[5].(*time.Time)) = r.values[5].(time.Time)
	return nil
}

func TestScanTelegram(t *testing.T) {
	ts := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	tg, err := scanTelegram(fakeRow{values: []any{int32(2563), int32(0x1101), "GroupValueRead", []byte(nil), "incoming", ts}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	d := tg.Dict()
	if d.DestinationAddress != "1/2/3" || d.SourceAddress != "1.1.1" {
		t.Errorf("unexpected addresses: %+v", d)
	}
	if d.Payload != "" {
		t.Errorf("read without data should have empty payload, got %q", d.Payload)
	}
}

func TestRecent_InvalidLimit(t *testing.T) {
	r := &TelegramRepo{}
	if _, err := r.Recent(context.Background(), 0); !errors.Is(err, ErrInvalidLimit) {
		t.Errorf("expected ErrInvalidLimit, got %v", err)
	}
}

func TestInsertBatch_Empty(t *testing.T) {
	r := &TelegramRepo{}
	if err := r.InsertBatch(context.Background(), nil); err != nil {
		t.Errorf("empty batch should be a no-op, got %v", err)
	}
}

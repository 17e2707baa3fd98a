package knx

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

var fixedNow = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func now() time.Time { return fixedNow }

func TestWireTelegram_Defaults(t *testing.T) {
	w := WireTelegram{
		DestinationAddress: "1/2/3",
		SourceAddress:      "1.1.1",
		Data:               "0x01",
	}

	tg, err := w.Telegram(now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if tg.Payload.APCI != GroupValueWrite {
		t.Errorf("expected GroupValueWrite, got %s", tg.Payload.APCI)
	}
	if tg.Direction != DirectionIncoming {
		t.Errorf("expected incoming, got %s", tg.Direction)
	}
	if !tg.Timestamp.Equal(fixedNow) {
		t.Errorf("expected timestamp from now(), got %v", tg.Timestamp)
	}
	if tg.Payload.String() != "0x01" {
		t.Errorf("expected payload 0x01, got %s", tg.Payload)
	}
}

func TestWireTelegram_FromJSON(t *testing.T) {
	raw := `{"destination_address":"5/0/10","source_address":"1.0.7","apci":"GroupValueResponse",
		"data":"0C1A","direction":"outgoing","timestamp":"2024-01-02T03:04:05Z"}`

	var w WireTelegram
	if err := json.Unmarshal([]byte(raw), &w); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	tg, err := w.Telegram(now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	d := tg.Dict()
	if d.DestinationAddress != "5/0/10" {
		t.Errorf("destination: got %s", d.DestinationAddress)
	}
	if d.SourceAddress != "1.0.7" {
		t.Errorf("source: got %s", d.SourceAddress)
	}
	if d.Payload != "0x0c1a" {
		t.Errorf("payload: got %s", d.Payload)
	}
	if d.Direction != "outgoing" {
		t.Errorf("direction: got %s", d.Direction)
	}
	if d.Timestamp != "2024-01-02T03:04:05Z" {
		t.Errorf("timestamp: got %s", d.Timestamp)
	}
}

func TestWireTelegram_Errors(t *testing.T) {
	cases := []struct {
		name string
		w    WireTelegram
		want error
	}{
		{"bad destination", WireTelegram{DestinationAddress: "x", SourceAddress: "1.1.1"}, ErrInvalidAddress},
		{"bad source", WireTelegram{DestinationAddress: "1/1/1", SourceAddress: "1/1/1"}, ErrInvalidAddress},
		{"bad data", WireTelegram{DestinationAddress: "1/1/1", SourceAddress: "1.1.1", Data: "0xZZ"}, ErrInvalidPayload},
		{"bad apci", WireTelegram{DestinationAddress: "1/1/1", SourceAddress: "1.1.1", APCI: "Restart"}, ErrInvalidPayload},
		{"bad direction", WireTelegram{DestinationAddress: "1/1/1", SourceAddress: "1.1.1", Direction: "sideways"}, ErrInvalidPayload},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := tc.w.Telegram(now); !errors.Is(err, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestParseData(t *testing.T) {
	cases := map[string]string{
		"":     "",
		"0x01": "0x01",
		"1":    "0x01",
		"0XFF": "0xff",
		"abc":  "0x0abc",
	}
	for in, want := range cases {
		data, err := ParseData(in)
		if err != nil {
			t.Errorf("%q: unexpected error: %v", in, err)
			continue
		}
		if got := (Payload{Data: data}).String(); got != want {
			t.Errorf("%q: expected %q, got %q", in, want, got)
		}
	}
}

func TestNewWireTelegram_RoundTrip(t *testing.T) {
	dst, _ := NewGroupAddress(1, 2, 3)
	src, _ := NewIndividualAddress(1, 1, 1)
	orig := Telegram{
		DestinationAddress: dst,
		SourceAddress:      src,
		Payload:            Payload{APCI: GroupValueWrite, Data: []byte{0x01}},
		Direction:          DirectionIncoming,
		Timestamp:          fixedNow,
	}

	back, err := NewWireTelegram(orig).Telegram(now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if back.Dict() != orig.Dict() {
		t.Errorf("expected %+v, got %+v", orig.Dict(), back.Dict())
	}
}

func TestTelegramDict_TimestampInUTC(t *testing.T) {
	cet := time.FixedZone("CET", 3600)
	tg := Telegram{
		Direction: DirectionIncoming,
		Timestamp: time.Date(2024, 1, 2, 4, 4, 5, 500, cet),
	}

	if got := tg.Dict().Timestamp; got != "2024-01-02T03:04:05.0000005Z" {
		t.Errorf("timestamp: got %s", got)
	}
}

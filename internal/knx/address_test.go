package knx

import (
	"errors"
	"testing"
)

// --- IndividualAddress Tests ---

func TestParseIndividualAddress(t *testing.T) {
	addr, err := ParseIndividualAddress("1.2.3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if addr.Area() != 1 || addr.Line() != 2 || addr.Device() != 3 {
		t.Errorf("unexpected components: %d.%d.%d", addr.Area(), addr.Line(), addr.Device())
	}
	if addr != 0x1203 {
		t.Errorf("expected raw 0x1203, got %#x", uint16(addr))
	}
	if addr.String() != "1.2.3" {
		t.Errorf("expected 1.2.3, got %s", addr)
	}
}

func TestParseIndividualAddress_Invalid(t *testing.T) {
	cases := []string{"", "1.1", "1.1.1.1", "16.0.0", "1.16.0", "1.1.256", "a.b.c", "1/1/1"}
	for _, s := range cases {
		if _, err := ParseIndividualAddress(s); !errors.Is(err, ErrInvalidAddress) {
			t.Errorf("%q: expected ErrInvalidAddress, got %v", s, err)
		}
	}
}

func TestIndividualAddress_TextRoundTrip(t *testing.T) {
	var addr IndividualAddress
	if err := addr.UnmarshalText([]byte("15.15.250")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text, _ := addr.MarshalText()
	if string(text) != "15.15.250" {
		t.Errorf("expected 15.15.250, got %s", text)
	}
}

// --- GroupAddress Tests ---

func TestParseGroupAddress_Forms(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1/2/3", "1/2/3"},
		{"31/7/255", "31/7/255"},
		{"0/0/0", "0/0/0"},
		// двухуровневая: 1/515 = 1/2/3
		{"1/515", "1/2/3"},
		// свободная: 2563 = 1/2/3
		{"2563", "1/2/3"},
	}

	for _, tc := range cases {
		addr, err := ParseGroupAddress(tc.in)
		if err != nil {
			t.Errorf("%q: unexpected error: %v", tc.in, err)
			continue
		}
		if addr.String() != tc.want {
			t.Errorf("%q: expected %s, got %s", tc.in, tc.want, addr)
		}
	}
}

func TestParseGroupAddress_Invalid(t *testing.T) {
	cases := []string{"", "32/0/0", "1/8/0", "1/1/256", "1/2048", "65536", "1.2.3", "1/2/3/4"}
	for _, s := range cases {
		if _, err := ParseGroupAddress(s); !errors.Is(err, ErrInvalidAddress) {
			t.Errorf("%q: expected ErrInvalidAddress, got %v", s, err)
		}
	}
}

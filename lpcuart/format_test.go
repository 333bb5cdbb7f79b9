package lpcuart

import (
	"strings"
	"testing"

	"github.com/jangala-dev/tinygo-lpcuart/errcode"
)

func TestEncodeFormatRejects(t *testing.T) {
	cases := []struct {
		name     string
		data     uint8
		stop     uint8
		parity   Parity
		wantText string
	}{
		{"stop0", 8, 0, ParityNone, "stop bits"},
		{"stop3", 8, 3, ParityNone, "stop bits"},
		{"data4", 4, 1, ParityNone, "data bits"},
		{"data9", 9, 1, ParityNone, "data bits"},
		{"parity", 8, 1, Parity(7), "parity"},
		// Stop bits are checked before data bits.
		{"both", 9, 3, ParityNone, "stop bits"},
	}
	for _, tc := range cases {
		_, err := EncodeFormat(tc.data, tc.stop, tc.parity)
		if errcode.Of(err) != errcode.InvalidFormat {
			t.Fatalf("%s: err = %v, want %s", tc.name, err, errcode.InvalidFormat)
		}
		if !strings.Contains(err.Error(), tc.wantText) {
			t.Fatalf("%s: err = %q, want mention of %q", tc.name, err, tc.wantText)
		}
	}
}

func TestEncodeFormatBits(t *testing.T) {
	cases := []struct {
		data, stop uint8
		parity     Parity
		want       LineControl
	}{
		{8, 1, ParityNone, 0x03},
		{5, 1, ParityNone, 0x00},
		{7, 2, ParityNone, 0x06},
		{8, 1, ParityOdd, 0x0B},
		{8, 1, ParityEven, 0x1B},
		{8, 1, ParityForced1, 0x2B},
		{8, 1, ParityForced0, 0x3B},
	}
	for _, tc := range cases {
		got, err := EncodeFormat(tc.data, tc.stop, tc.parity)
		if err != nil {
			t.Fatalf("EncodeFormat(%d,%d,%d): %v", tc.data, tc.stop, tc.parity, err)
		}
		if got != tc.want {
			t.Fatalf("EncodeFormat(%d,%d,%d) = %#x, want %#x", tc.data, tc.stop, tc.parity, got, tc.want)
		}
		if got.DLAB() || got.Break() {
			t.Fatalf("EncodeFormat(%d,%d,%d) = %#x sets DLAB or break", tc.data, tc.stop, tc.parity, got)
		}
	}
}

func TestDecodeFormatInvertsEncode(t *testing.T) {
	for data := uint8(5); data <= 8; data++ {
		for stop := uint8(1); stop <= 2; stop++ {
			for p := ParityNone; p <= ParityForced0; p++ {
				lcr, err := EncodeFormat(data, stop, p)
				if err != nil {
					t.Fatalf("EncodeFormat(%d,%d,%d): %v", data, stop, p, err)
				}
				got := DecodeFormat(lcr | LCRBreak)
				want := Format{DataBits: data, StopBits: stop, Parity: p}
				if got != want {
					t.Fatalf("DecodeFormat(%#x) = %+v, want %+v", lcr, got, want)
				}
			}
		}
	}
}

package lpcuart

import (
	"github.com/jangala-dev/tinygo-lpcuart/errcode"
)

// Format is a frame format.
type Format struct {
	DataBits uint8 // 5..8
	StopBits uint8 // 1 or 2
	Parity   Parity
}

// parity (enable, select) pairs as written to LCR[3] and LCR[5:4].
var parityBits = [...]struct{ enable, sel uint8 }{
	ParityNone:    {0, 0},
	ParityOdd:     {1, 0},
	ParityEven:    {1, 1},
	ParityForced1: {1, 2},
	ParityForced0: {1, 3},
}

// EncodeFormat validates a frame format and returns its LCR encoding.
// DLAB and break are clear in the result.
func EncodeFormat(dataBits, stopBits uint8, parity Parity) (LineControl, error) {
	if stopBits != 1 && stopBits != 2 {
		return 0, errcode.New(errcode.InvalidFormat, "SetFormat", "invalid stop bits specified")
	}
	if dataBits < 5 || dataBits > 8 {
		return 0, errcode.New(errcode.InvalidFormat, "SetFormat", "invalid number of data bits, should be 5..8")
	}
	if int(parity) >= len(parityBits) {
		return 0, errcode.New(errcode.InvalidFormat, "SetFormat", "invalid serial parity setting")
	}
	p := parityBits[parity]
	return LineControl(dataBits-5) |
		LineControl(stopBits-1)<<2 |
		LineControl(p.enable)<<3 |
		LineControl(p.sel)<<lcrParitySelPos, nil
}

// DecodeFormat is the inverse of EncodeFormat.
func DecodeFormat(lcr LineControl) Format {
	f := Format{
		DataBits: lcr.WordLength() + 5,
		StopBits: 1,
		Parity:   ParityNone,
	}
	if lcr.TwoStopBits() {
		f.StopBits = 2
	}
	if lcr.ParityEnable() {
		for p, bits := range parityBits {
			if bits.enable == 1 && bits.sel == lcr.ParitySelect() {
				f.Parity = Parity(p)
				break
			}
		}
	}
	return f
}

// SetFormat validates and writes the frame format. The whole LCR is
// rewritten, so a pending break is released.
func (u *UART) SetFormat(dataBits, stopBits uint8, parity Parity) error {
	lcr, err := EncodeFormat(dataBits, stopBits, parity)
	if err != nil {
		return u.ctl.fail(err)
	}
	u.setLCR(lcr)
	return nil
}

// Format reads back the programmed frame format.
func (u *UART) Format() Format { return DecodeFormat(u.lcr()) }

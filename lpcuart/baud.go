package lpcuart

import (
	"github.com/jangala-dev/tinygo-lpcuart/errcode"
)

// ClockConfig is the baud generator setting:
//
//	baud = PCLK / (16 * Divisor * (1 + DivAddVal/MulVal))
//
// with 1 <= MulVal <= 15 and DivAddVal < MulVal.
type ClockConfig struct {
	Divisor   uint16
	MulVal    uint8
	DivAddVal uint8
}

// Baud returns the rate produced by c at the given peripheral clock.
func (c ClockConfig) Baud(clock uint32) float32 {
	if c.Divisor == 0 || c.MulVal == 0 {
		return 0
	}
	ratio := 1 + float32(c.DivAddVal)/float32(c.MulVal)
	return float32(clock) / (16 * float32(c.Divisor) * ratio)
}

// baudHitError ends the search early.
const baudHitError = float32(0.001)

// CalcClockConfig returns the divider triple closest to baud for a UART
// clocked at clock Hz. When clock is an exact multiple of 16*baud the plain
// divisor is used; otherwise DL in [base/2, base] and every valid
// MulVal/DivAddVal pair are tried in ascending order and the first candidate
// with relative error below 0.1% wins. If none gets there the best seen is
// returned. Only strictly better candidates replace the current best, so the
// result is deterministic.
//
// A rate that needs a divisor above 0xFFFF cannot be produced. The divisor
// is clamped to 0xFFFF and the result is the slowest rate the clock allows,
// even when the division is exact.
func CalcClockConfig(clock, baud uint32) (ClockConfig, error) {
	if baud == 0 {
		return ClockConfig{}, errcode.New(errcode.UnroutableBaud, "CalcClockConfig", "baud rate is zero")
	}
	step := 16 * uint64(baud)
	base := uint64(clock) / step
	if base == 0 {
		return ClockConfig{}, errcode.New(errcode.UnroutableBaud, "CalcClockConfig", "baud rate too high for clock")
	}
	if base > 0xFFFF {
		base = 0xFFFF
	}
	best := ClockConfig{Divisor: uint16(base), MulVal: 1}
	if uint64(clock)%step == 0 {
		return best, nil
	}

	target := float32(baud)
	pclk := float32(clock)
	errBest := target
	dlmax := uint16(base)
	for dlv := dlmax / 2; dlv <= dlmax; dlv++ {
		if dlv == 0 {
			continue
		}
		for mv := uint8(1); mv <= 15; mv++ {
			for dav := uint8(1); dav < mv; dav++ {
				e := relError(pclk, target, dlv, mv, dav)
				if e < errBest {
					best = ClockConfig{Divisor: dlv, MulVal: mv, DivAddVal: dav}
					errBest = e
					if e < baudHitError {
						return best, nil
					}
				}
			}
		}
		if dlv == 0xFFFF {
			break
		}
	}
	return best, nil
}

// relError is |baud - achieved| / baud for one candidate, in float32 with
// every intermediate rounded.
func relError(pclk, baud float32, dlv uint16, mv, dav uint8) float32 {
	ratio := float32(1 + float32(dav)/float32(mv))
	calc := float32(pclk / float32(16*float32(dlv)*ratio))
	e := float32((baud - calc) / baud)
	if e < 0 {
		e = -e
	}
	return e
}

// SetBaudRate programs the divisor latch and fractional divider for br using
// the current core clock.
func (u *UART) SetBaudRate(br uint32) error {
	sys := u.ctl.hw.System
	sys.SelectPCLK(u.index)

	cfg, err := CalcClockConfig(sys.CoreClock(), br)
	if err != nil {
		return u.ctl.fail(err)
	}

	// DLL/DLM share addresses with THR/IER and are only reachable with DLAB set.
	u.updateLCR(LCRDLAB, 0)
	u.bus.Store(OffsetDLM, uint32(cfg.Divisor>>8)&0xFF)
	u.bus.Store(OffsetDLL, uint32(cfg.Divisor)&0xFF)
	u.bus.Store(OffsetFDR, uint32(MakeFractionalDivider(cfg.DivAddVal, cfg.MulVal)))
	u.updateLCR(0, LCRDLAB)

	u.baud = br
	u.clkCfg = cfg
	return nil
}

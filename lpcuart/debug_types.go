//go:build lpcuartdebug

package lpcuart

import "sync/atomic"

// Stats holds counters since the last reset.
type Stats struct {
	// Vector-level
	ISRCount uint32 // vector entries
	RxEvents uint32 // RDA events handed to the handler
	TxEvents uint32 // THRE events handed to the handler
	Dropped  uint32 // events with no handler installed
	Spurious uint32 // entries with no THRE/RDA identification

	// Flow control
	RTSRaised uint32 // software RTS raised by the vector
	CTSHeld   uint32 // Writable refused because software CTS was high
	Throttled uint32 // Writable refused because 16 bytes were outstanding
}

func (u *UART) DebugReset() {
	u.stats = Stats{}
}

func (u *UART) DebugStats() Stats {
	return Stats{
		ISRCount: atomic.LoadUint32(&u.stats.ISRCount),
		RxEvents: atomic.LoadUint32(&u.stats.RxEvents),
		TxEvents: atomic.LoadUint32(&u.stats.TxEvents),
		Dropped:  atomic.LoadUint32(&u.stats.Dropped),
		Spurious: atomic.LoadUint32(&u.stats.Spurious),

		RTSRaised: atomic.LoadUint32(&u.stats.RTSRaised),
		CTSHeld:   atomic.LoadUint32(&u.stats.CTSHeld),
		Throttled: atomic.LoadUint32(&u.stats.Throttled),
	}
}

// Regs is a snapshot of the UART registers that can be read without side
// effects. IIR and RBR are left out because reading them acknowledges state.
type Regs struct {
	IER uint32
	LCR uint32
	LSR uint32
	MCR uint32 // UART1 only
	FDR uint32
	TER uint32
}

func (u *UART) DebugRegs() Regs {
	r := Regs{
		IER: u.bus.Load(OffsetIER),
		LCR: u.bus.Load(OffsetLCR),
		LSR: u.bus.Load(OffsetLSR),
		FDR: u.bus.Load(OffsetFDR),
		TER: u.bus.Load(OffsetTER),
	}
	if u.index == hwFlowUART {
		r.MCR = u.bus.Load(OffsetMCR)
	}
	return r
}

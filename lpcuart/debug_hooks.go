//go:build lpcuartdebug

package lpcuart

import "sync/atomic"

// Called at vector entry.
func (u *UART) dbgISR() {
	atomic.AddUint32(&u.stats.ISRCount, 1)
}

// Called when IIR decodes to neither THRE nor RDA.
func (u *UART) dbgSpurious() {
	atomic.AddUint32(&u.stats.Spurious, 1)
}

func (u *UART) dbgDispatch(irq IRQ) {
	if irq == RxIRQ {
		atomic.AddUint32(&u.stats.RxEvents, 1)
	} else {
		atomic.AddUint32(&u.stats.TxEvents, 1)
	}
}

func (u *UART) dbgDropped() {
	atomic.AddUint32(&u.stats.Dropped, 1)
}
func (u *UART) dbgRTSRaised() {
	atomic.AddUint32(&u.stats.RTSRaised, 1)
}
func (u *UART) dbgCTSHeld() {
	atomic.AddUint32(&u.stats.CTSHeld, 1)
}
func (u *UART) dbgThrottled() {
	atomic.AddUint32(&u.stats.Throttled, 1)
}

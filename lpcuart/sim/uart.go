// Package sim is a host model of the LPC176x parts the lpcuart driver talks
// to: 16550-compatible UART register blocks with DLAB aliasing and 16-byte
// FIFOs, GPIO lines, the NVIC and the power/clock controls. Tests and the
// lpcuart CLI use it in place of memory-mapped hardware.
//
// The "wire" side of a UART is driven explicitly: Inject places received
// characters in the RX FIFO and Shift moves characters out of the TX FIFO.
// Nothing happens on its own, so tests decide exactly when THRE and RDR
// change.
package sim

import (
	"sync"

	"github.com/jangala-dev/tinygo-lpcuart/lpcuart"
)

// UARTBlock is one simulated UART register block. It implements lpcuart.Bus.
type UARTBlock struct {
	mu sync.Mutex

	hasModem bool // MCR/MSR present (UART1)

	rx fifo
	tx fifo

	dll, dlm uint32
	ier      uint32
	lcr      uint32
	mcr      uint32
	scr      uint32
	fdr      uint32
	ter      uint32
	fcr      uint32

	threPending bool // THRE interrupt latched, cleared by IIR read or THR write
	overruns    int  // characters lost to a full FIFO
	stores      int  // register writes since reset
}

func newUARTBlock(hasModem bool) *UARTBlock {
	return &UARTBlock{hasModem: hasModem, fdr: 0x10, ter: 0x80}
}

var _ lpcuart.Bus = (*UARTBlock)(nil)

// Load implements lpcuart.Bus.
func (b *UARTBlock) Load(off uint32) uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()

	dlab := lpcuart.LineControl(b.lcr).DLAB()
	switch off {
	case lpcuart.OffsetRBR:
		if dlab {
			return b.dll
		}
		v, _ := b.rx.Get()
		return uint32(v)
	case lpcuart.OffsetIER:
		if dlab {
			return b.dlm
		}
		return b.ier
	case lpcuart.OffsetIIR:
		return uint32(b.identify())
	case lpcuart.OffsetLCR:
		return b.lcr
	case lpcuart.OffsetMCR:
		if b.hasModem {
			return b.mcr
		}
	case lpcuart.OffsetLSR:
		return uint32(b.status())
	case lpcuart.OffsetSCR:
		return b.scr
	case lpcuart.OffsetFDR:
		return b.fdr
	case lpcuart.OffsetTER:
		return b.ter
	}
	return 0
}

// Store implements lpcuart.Bus.
func (b *UARTBlock) Store(off, v uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stores++

	dlab := lpcuart.LineControl(b.lcr).DLAB()
	switch off {
	case lpcuart.OffsetTHR:
		if dlab {
			b.dll = v & 0xFF
			return
		}
		if !b.tx.Put(byte(v)) {
			b.overruns++
		}
		b.threPending = false
	case lpcuart.OffsetIER:
		if dlab {
			b.dlm = v & 0xFF
			return
		}
		was := lpcuart.IntEnable(b.ier)
		b.ier = v & 0x307
		// Enabling THRE with an empty FIFO raises the interrupt at once.
		if !was.Has(lpcuart.TxIRQ) && lpcuart.IntEnable(b.ier).Has(lpcuart.TxIRQ) && b.tx.Used() == 0 {
			b.threPending = true
		}
	case lpcuart.OffsetFCR:
		fc := lpcuart.FIFOControl(v)
		b.fcr = v &^ uint32(lpcuart.FCRRxReset|lpcuart.FCRTxReset)
		if fc&lpcuart.FCRRxReset != 0 {
			b.rx.Clear()
		}
		if fc&lpcuart.FCRTxReset != 0 {
			b.tx.Clear()
		}
	case lpcuart.OffsetLCR:
		b.lcr = v & 0xFF
	case lpcuart.OffsetMCR:
		if b.hasModem {
			b.mcr = v & 0xD3
		}
	case lpcuart.OffsetSCR:
		b.scr = v & 0xFF
	case lpcuart.OffsetFDR:
		b.fdr = v & 0xFF
	case lpcuart.OffsetTER:
		b.ter = v & 0x80
	}
}

// identify computes IIR in 16550 priority order. Reading a THRE
// identification acknowledges it.
func (b *UARTBlock) identify() lpcuart.IntIdentity {
	fifoBits := lpcuart.IntIdentity(0)
	if lpcuart.FIFOControl(b.fcr)&lpcuart.FCRFIFOEnable != 0 {
		fifoBits = 0xC0
	}
	ier := lpcuart.IntEnable(b.ier)
	switch {
	case ier.Has(lpcuart.RxIRQ) && b.rx.Used() > 0:
		return fifoBits | lpcuart.IntIdentity(lpcuart.IntIDRxData)<<1
	case ier.Has(lpcuart.TxIRQ) && b.threPending:
		b.threPending = false
		return fifoBits | lpcuart.IntIdentity(lpcuart.IntIDTxEmpty)<<1
	}
	return fifoBits | lpcuart.NoPending
}

func (b *UARTBlock) status() lpcuart.LineStatus {
	var s lpcuart.LineStatus
	if b.rx.Used() > 0 {
		s |= lpcuart.LSRDataReady
	}
	if b.tx.Used() == 0 {
		s |= lpcuart.LSRTHREmpty | lpcuart.LSRTxEmpty
	}
	return s
}

// ---------------- wire side ----------------

// Inject queues received characters and returns how many fit in the RX FIFO.
func (b *UARTBlock) Inject(p ...byte) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range p {
		if !b.rx.Put(c) {
			b.overruns++
			break
		}
		n++
	}
	return n
}

// Shift transmits up to n characters from the TX FIFO and returns them.
// Emptying the FIFO latches the THRE interrupt.
func (b *UARTBlock) Shift(n int) []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []byte
	for len(out) < n {
		c, ok := b.tx.Get()
		if !ok {
			break
		}
		out = append(out, c)
	}
	if len(out) > 0 && b.tx.Used() == 0 {
		b.threPending = true
	}
	return out
}

// Drain transmits everything in the TX FIFO.
func (b *UARTBlock) Drain() []byte { return b.Shift(int(fifoDepth)) }

// TxLen returns the number of characters waiting in the TX FIFO.
func (b *UARTBlock) TxLen() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return int(b.tx.Used())
}

// RxLen returns the number of characters waiting in the RX FIFO.
func (b *UARTBlock) RxLen() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return int(b.rx.Used())
}

// ---------------- inspection (no side effects) ----------------

// Divisor returns the DLM:DLL latch.
func (b *UARTBlock) Divisor() uint16 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return uint16(b.dlm<<8 | b.dll)
}

func (b *UARTBlock) FDR() lpcuart.FractionalDivider {
	b.mu.Lock()
	defer b.mu.Unlock()
	return lpcuart.FractionalDivider(b.fdr)
}

func (b *UARTBlock) LCR() lpcuart.LineControl {
	b.mu.Lock()
	defer b.mu.Unlock()
	return lpcuart.LineControl(b.lcr)
}

func (b *UARTBlock) IER() lpcuart.IntEnable {
	b.mu.Lock()
	defer b.mu.Unlock()
	return lpcuart.IntEnable(b.ier)
}

func (b *UARTBlock) MCR() lpcuart.ModemControl {
	b.mu.Lock()
	defer b.mu.Unlock()
	return lpcuart.ModemControl(b.mcr)
}

// FCR returns the last FIFO control value written, without the self-clearing
// reset bits.
func (b *UARTBlock) FCR() lpcuart.FIFOControl {
	b.mu.Lock()
	defer b.mu.Unlock()
	return lpcuart.FIFOControl(b.fcr)
}

// Stores returns the number of register writes seen.
func (b *UARTBlock) Stores() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stores
}

// Overruns returns the number of characters dropped on a full FIFO.
func (b *UARTBlock) Overruns() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.overruns
}

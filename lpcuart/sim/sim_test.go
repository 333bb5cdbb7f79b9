package sim

import (
	"testing"

	"github.com/jangala-dev/tinygo-lpcuart/lpcuart"
)

func TestFIFOWrapAndFull(t *testing.T) {
	var f fifo
	// Walk the counters past the uint8 wrap.
	for round := 0; round < 40; round++ {
		for i := 0; i < int(fifoDepth); i++ {
			if !f.Put(byte(round + i)) {
				t.Fatalf("round %d: Put #%d refused", round, i)
			}
		}
		if f.Put(0xFF) {
			t.Fatalf("round %d: Put accepted on full fifo", round)
		}
		for i := 0; i < int(fifoDepth); i++ {
			v, ok := f.Get()
			if !ok || v != byte(round+i) {
				t.Fatalf("round %d: Get #%d = %d,%v want %d", round, i, v, ok, byte(round+i))
			}
		}
		if _, ok := f.Get(); ok {
			t.Fatalf("round %d: Get on empty fifo", round)
		}
	}
}

func TestDivisorLatchAliasing(t *testing.T) {
	b := newUARTBlock(false)
	b.Store(lpcuart.OffsetIER, 0x01)
	b.Store(lpcuart.OffsetLCR, uint32(lpcuart.LCRDLAB|0x03))
	b.Store(lpcuart.OffsetDLL, 0x71)
	b.Store(lpcuart.OffsetDLM, 0x02)
	if got := b.Load(lpcuart.OffsetDLL); got != 0x71 {
		t.Fatalf("DLL: got %#x", got)
	}
	b.Store(lpcuart.OffsetLCR, 0x03)
	if got := b.Load(lpcuart.OffsetIER); got != 0x01 {
		t.Fatalf("IER clobbered through DLM alias: %#x", got)
	}
	if b.Divisor() != 0x0271 || b.TxLen() != 0 {
		t.Fatalf("divisor %#x, tx %d", b.Divisor(), b.TxLen())
	}
}

func TestInterruptIdentification(t *testing.T) {
	b := newUARTBlock(false)
	b.Store(lpcuart.OffsetFCR, uint32(lpcuart.FCRFIFOEnable))

	if id := lpcuart.IntIdentity(b.Load(lpcuart.OffsetIIR)); id.Pending() {
		t.Fatalf("pending with nothing enabled: %#x", id)
	}
	b.Store(lpcuart.OffsetIER, uint32(lpcuart.IERRxData|lpcuart.IERTxEmpty))
	b.Inject('a')

	// Receive outranks THRE.
	if id := lpcuart.IntIdentity(b.Load(lpcuart.OffsetIIR)); id.ID() != lpcuart.IntIDRxData {
		t.Fatalf("first IIR: %#x want RDA", id)
	}
	b.Load(lpcuart.OffsetRBR)
	if id := lpcuart.IntIdentity(b.Load(lpcuart.OffsetIIR)); id.ID() != lpcuart.IntIDTxEmpty {
		t.Fatalf("second IIR: %#x want THRE", id)
	}
	// Reading THRE acknowledges it.
	if id := lpcuart.IntIdentity(b.Load(lpcuart.OffsetIIR)); id.Pending() {
		t.Fatalf("third IIR: %#x want none", id)
	}
	if id := lpcuart.IntIdentity(b.Load(lpcuart.OffsetIIR)); id&0xC0 != 0xC0 {
		t.Fatalf("FIFO enable bits missing: %#x", id)
	}

	b.Store(lpcuart.OffsetTHR, 'z')
	if got := b.Shift(4); string(got) != "z" {
		t.Fatalf("Shift: got %q", got)
	}
	if id := lpcuart.IntIdentity(b.Load(lpcuart.OffsetIIR)); id.ID() != lpcuart.IntIDTxEmpty {
		t.Fatalf("IIR after transmit: %#x want THRE", id)
	}
}

func TestLineStatus(t *testing.T) {
	b := newUARTBlock(false)
	lsr := func() lpcuart.LineStatus { return lpcuart.LineStatus(b.Load(lpcuart.OffsetLSR)) }

	if s := lsr(); s.DataReady() || !s.THREmpty() || !s.Has(lpcuart.LSRTxEmpty) {
		t.Fatalf("idle LSR: %#x", s)
	}
	b.Inject('a')
	b.Store(lpcuart.OffsetTHR, 'b')
	if s := lsr(); !s.DataReady() || s.THREmpty() {
		t.Fatalf("busy LSR: %#x", s)
	}
}

func TestInjectOverrun(t *testing.T) {
	b := newUARTBlock(false)
	data := make([]byte, 20)
	if n := b.Inject(data...); n != int(fifoDepth) {
		t.Fatalf("Inject: accepted %d want %d", n, fifoDepth)
	}
	if b.Overruns() != 1 {
		t.Fatalf("overruns: got %d want 1", b.Overruns())
	}
}

func TestModemRegisterOnlyOnUART1(t *testing.T) {
	board := NewBoard(96000000)
	board.UART[0].Store(lpcuart.OffsetMCR, uint32(lpcuart.MCRRTSEn))
	board.UART[1].Store(lpcuart.OffsetMCR, uint32(lpcuart.MCRRTSEn))
	if board.UART[0].MCR() != 0 {
		t.Fatalf("UART0 kept an MCR value")
	}
	if !board.UART[1].MCR().Has(lpcuart.MCRRTSEn) {
		t.Fatalf("UART1 lost MCR")
	}
}

func TestNVICRaise(t *testing.T) {
	n := &NVIC{vectors: map[int]func(){}, enabled: map[int]bool{}}
	calls := 0
	n.SetVector(IRQ(1), func() { calls++ })
	if n.Raise(IRQ(1)) {
		t.Fatalf("raised while disabled")
	}
	n.Enable(IRQ(1))
	if !n.Raise(IRQ(1)) || calls != 1 {
		t.Fatalf("Raise: calls %d", calls)
	}
	n.Disable(IRQ(1))
	if n.Raise(IRQ(1)) || calls != 1 {
		t.Fatalf("raised after disable")
	}
}

func TestLineEdges(t *testing.T) {
	g := &GPIO{lines: map[lpcuart.Pin]*Line{}}
	l := g.Configure(lpcuart.P(1, 4), lpcuart.Output)
	l.Set(true)
	l.Set(true)
	l.Set(false)
	if got := g.Line(lpcuart.P(1, 4)).Edges(); got != 2 {
		t.Fatalf("edges: got %d want 2", got)
	}
	if g.Line(lpcuart.P(1, 4)).Direction() != lpcuart.Output {
		t.Fatalf("direction lost")
	}
}

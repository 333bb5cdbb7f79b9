package sim

import (
	"sync"

	"github.com/jangala-dev/tinygo-lpcuart/lpcuart"
)

// Board is a simulated LPC176x with its four UARTs.
type Board struct {
	UART   [lpcuart.NumUARTs]*UARTBlock
	System *System
	Pins   *Pins
	GPIO   *GPIO
	NVIC   *NVIC
}

// NewBoard returns a board whose core runs at clock Hz.
func NewBoard(clock uint32) *Board {
	b := &Board{
		System: &System{clock: clock},
		Pins:   &Pins{funcs: map[lpcuart.Pin]uint8{}, modes: map[lpcuart.Pin]lpcuart.PinMode{}},
		GPIO:   &GPIO{lines: map[lpcuart.Pin]*Line{}},
		NVIC:   &NVIC{vectors: map[int]func(){}, enabled: map[int]bool{}},
	}
	for i := range b.UART {
		b.UART[i] = newUARTBlock(i == 1)
	}
	return b
}

// Hardware returns the driver view of the board. fatal may be nil.
func (b *Board) Hardware(fatal func(error)) lpcuart.Hardware {
	hw := lpcuart.Hardware{
		System: b.System,
		Pins:   b.Pins,
		GPIO:   b.GPIO,
		NVIC:   b.NVIC,
		Fatal:  fatal,
	}
	for i, u := range b.UART {
		hw.UART[i] = u
	}
	return hw
}

// IRQ returns the NVIC line of UART index.
func IRQ(index int) int { return 5 + index }

// Raise signals UART index's NVIC line. The installed vector runs
// synchronously if the line is enabled; Raise reports whether it ran.
func (b *Board) Raise(index int) bool { return b.NVIC.Raise(IRQ(index)) }

// ---------------- system control ----------------

// System models PCONP, PCLKSEL and the core clock.
type System struct {
	mu      sync.Mutex
	clock   uint32
	powered [lpcuart.NumUARTs]bool
	pclk1   [lpcuart.NumUARTs]bool
}

func (s *System) PowerOn(uart int) {
	s.mu.Lock()
	s.powered[uart] = true
	s.mu.Unlock()
}

func (s *System) SelectPCLK(uart int) {
	s.mu.Lock()
	s.pclk1[uart] = true
	s.mu.Unlock()
}

func (s *System) CoreClock() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clock
}

func (s *System) SetCoreClock(hz uint32) {
	s.mu.Lock()
	s.clock = hz
	s.mu.Unlock()
}

func (s *System) Powered(uart int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.powered[uart]
}

// ---------------- pin connect block ----------------

// Pins records PINSEL functions and PINMODE settings.
type Pins struct {
	mu    sync.Mutex
	funcs map[lpcuart.Pin]uint8
	modes map[lpcuart.Pin]lpcuart.PinMode
}

func (p *Pins) SetFunction(pin lpcuart.Pin, function uint8) {
	p.mu.Lock()
	p.funcs[pin] = function
	p.mu.Unlock()
}

func (p *Pins) SetMode(pin lpcuart.Pin, mode lpcuart.PinMode) {
	p.mu.Lock()
	p.modes[pin] = mode
	p.mu.Unlock()
}

// Function returns the PINSEL value last set for pin.
func (p *Pins) Function(pin lpcuart.Pin) (uint8, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	f, ok := p.funcs[pin]
	return f, ok
}

// Mode returns the PINMODE value last set for pin.
func (p *Pins) Mode(pin lpcuart.Pin) (lpcuart.PinMode, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	m, ok := p.modes[pin]
	return m, ok
}

// RoutedCount returns how many pins have been given a function.
func (p *Pins) RoutedCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.funcs)
}

// ---------------- GPIO ----------------

// GPIO hands out simulated lines, one per pin.
type GPIO struct {
	mu    sync.Mutex
	lines map[lpcuart.Pin]*Line
}

// Configure implements lpcuart.GPIO. Reconfiguring a pin keeps its level.
func (g *GPIO) Configure(pin lpcuart.Pin, dir lpcuart.Direction) lpcuart.Line {
	l := g.Line(pin)
	l.mu.Lock()
	l.dir = dir
	l.mu.Unlock()
	return l
}

// Line returns the line for pin, creating it low and as input.
func (g *GPIO) Line(pin lpcuart.Pin) *Line {
	g.mu.Lock()
	defer g.mu.Unlock()
	l, ok := g.lines[pin]
	if !ok {
		l = &Line{}
		g.lines[pin] = l
	}
	return l
}

// Line is a simulated GPIO line. Set is used both by the driver for outputs
// and by tests to drive inputs from the outside.
type Line struct {
	mu    sync.Mutex
	level bool
	dir   lpcuart.Direction
	edges int
}

func (l *Line) Get() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

func (l *Line) Set(high bool) {
	l.mu.Lock()
	if l.level != high {
		l.edges++
	}
	l.level = high
	l.mu.Unlock()
}

func (l *Line) Direction() lpcuart.Direction {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dir
}

// Edges returns the number of level changes seen.
func (l *Line) Edges() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.edges
}

// ---------------- NVIC ----------------

// NVIC records vectors and enable state per interrupt line.
type NVIC struct {
	mu      sync.Mutex
	vectors map[int]func()
	enabled map[int]bool
}

func (n *NVIC) SetVector(irq int, handler func()) {
	n.mu.Lock()
	n.vectors[irq] = handler
	n.mu.Unlock()
}

func (n *NVIC) Enable(irq int) {
	n.mu.Lock()
	n.enabled[irq] = true
	n.mu.Unlock()
}

func (n *NVIC) Disable(irq int) {
	n.mu.Lock()
	n.enabled[irq] = false
	n.mu.Unlock()
}

func (n *NVIC) Enabled(irq int) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.enabled[irq]
}

// HasVector reports whether a handler is installed for irq.
func (n *NVIC) HasVector(irq int) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.vectors[irq] != nil
}

// Raise runs irq's vector if the line is enabled.
func (n *NVIC) Raise(irq int) bool {
	n.mu.Lock()
	h, on := n.vectors[irq], n.enabled[irq]
	n.mu.Unlock()
	if !on || h == nil {
		return false
	}
	h()
	return true
}

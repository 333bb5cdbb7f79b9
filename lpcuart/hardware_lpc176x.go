// lpcuart/hardware_lpc176x.go

//go:build tinygo && lpc176x

package lpcuart

import (
	"runtime/interrupt"
	"runtime/volatile"
	"time"
	"unsafe"
)

// CoreClockHz is the CCLK the board runs at. Boards that change the PLL set
// it before opening a UART.
var CoreClockHz uint32 = 96000000

var uartBase = [NumUARTs]uintptr{0x4000C000, 0x40010000, 0x40098000, 0x4009C000}

const (
	scBase      = 0x400FC000
	scPCONP     = scBase + 0x0C4
	scPCLKSEL0  = scBase + 0x1A8
	scPCLKSEL1  = scBase + 0x1AC
	pinselBase  = 0x4002C000
	pinmodeBase = 0x4002C040
	fioBase     = 0x2009C000
)

func reg(addr uintptr) *volatile.Register32 {
	return (*volatile.Register32)(unsafe.Pointer(addr))
}

// mmio is a UART register block.
type mmio uintptr

func (m mmio) Load(off uint32) uint32     { return reg(uintptr(m) + uintptr(off)).Get() }
func (m mmio) Store(off uint32, v uint32) { reg(uintptr(m) + uintptr(off)).Set(v) }

type sysCtl struct{}

// PCONP bits of UART0..3.
var pconpBit = [NumUARTs]uint32{3, 4, 24, 25}

// PCLKSEL register and field position of UART0..3.
var pclkSel = [NumUARTs]struct {
	addr uintptr
	pos  uint32
}{
	{scPCLKSEL0, 6},
	{scPCLKSEL0, 8},
	{scPCLKSEL1, 16},
	{scPCLKSEL1, 18},
}

func (sysCtl) PowerOn(uart int) { reg(scPCONP).SetBits(1 << pconpBit[uart]) }

func (sysCtl) SelectPCLK(uart int) {
	s := pclkSel[uart]
	reg(s.addr).ReplaceBits(1, 0x3, uint8(s.pos)) // 01: CCLK/1
}

func (sysCtl) CoreClock() uint32 { return CoreClockHz }

type pinCtl struct{}

// field returns the 2-bit PINSEL/PINMODE slot of pin relative to base.
func field(base uintptr, pin Pin) (*volatile.Register32, uint8) {
	idx := uintptr(pin.Port())*2 + uintptr(pin.Bit()>>4)
	return reg(base + idx*4), (pin.Bit() & 15) * 2
}

func (pinCtl) SetFunction(pin Pin, function uint8) {
	r, pos := field(pinselBase, pin)
	r.ReplaceBits(uint32(function), 0x3, pos)
}

func (pinCtl) SetMode(pin Pin, mode PinMode) {
	r, pos := field(pinmodeBase, pin)
	r.ReplaceBits(uint32(mode), 0x3, pos)
}

type gpioCtl struct{}

// fioLine is one FIO pin.
type fioLine struct {
	port uintptr
	mask uint32
}

func (l fioLine) Get() bool { return reg(l.port+0x14).Get()&l.mask != 0 }

func (l fioLine) Set(high bool) {
	if high {
		reg(l.port + 0x18).Set(l.mask)
	} else {
		reg(l.port + 0x1C).Set(l.mask)
	}
}

func (gpioCtl) Configure(pin Pin, dir Direction) Line {
	l := fioLine{port: fioBase + uintptr(pin.Port())*0x20, mask: 1 << pin.Bit()}
	pinCtl{}.SetFunction(pin, 0)
	if dir == Output {
		reg(l.port).SetBits(l.mask)
	} else {
		reg(l.port).ClearBits(l.mask)
	}
	return l
}

// nvicCtl keeps one interrupt.Interrupt per UART. TinyGo places the handlers
// given to interrupt.New in the vector table, so the IRQ numbers are constants.
type nvicCtl struct{}

var (
	vectorTable [NumUARTs]func()
	uartIRQ     [NumUARTs]interrupt.Interrupt
)

func init() {
	uartIRQ[0] = interrupt.New(5, func(interrupt.Interrupt) { vector(0) })
	uartIRQ[1] = interrupt.New(6, func(interrupt.Interrupt) { vector(1) })
	uartIRQ[2] = interrupt.New(7, func(interrupt.Interrupt) { vector(2) })
	uartIRQ[3] = interrupt.New(8, func(interrupt.Interrupt) { vector(3) })
}

func (nvicCtl) SetVector(irq int, handler func()) { vectorTable[irq-irqNumbers[0]] = handler }

func (nvicCtl) Enable(irq int) {
	i := uartIRQ[irq-irqNumbers[0]]
	i.SetPriority(0x80)
	i.Enable()
}

func (nvicCtl) Disable(irq int) { uartIRQ[irq-irqNumbers[0]].Disable() }

func vector(i int) {
	if h := vectorTable[i]; h != nil {
		h()
	}
}

// halt is the on-target fatal sink: configuration errors stop the program.
func halt(err error) {
	println("lpcuart fatal:", err.Error())
	for {
		time.Sleep(time.Hour)
	}
}

// Default is the controller for the chip the program runs on.
var Default = NewController(Hardware{
	UART:   [NumUARTs]Bus{mmio(uartBase[0]), mmio(uartBase[1]), mmio(uartBase[2]), mmio(uartBase[3])},
	System: sysCtl{},
	Pins:   pinCtl{},
	GPIO:   gpioCtl{},
	NVIC:   nvicCtl{},
	Fatal:  halt,
})

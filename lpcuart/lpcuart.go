// lpcuart/lpcuart.go

// Package lpcuart is an interrupt-aware driver for the four 16550-style UARTs
// of the NXP LPC176x. It programs fractional baud dividers, validates and
// writes the frame format, gates the per-instance interrupt vector between the
// application and the driver's own flow-control logic, and emulates RTS/CTS
// with GPIO lines on the instances that lack hardware flow control.
//
// The driver talks to the chip only through the interfaces in Hardware, so the
// same code runs on the target (see hardware_lpc176x.go, TinyGo) and against
// the host simulation in lpcuart/sim.
//
// Getc and Putc block without timeout, busy-waiting on the status registers.
// TryGetc/TryPutc are the non-blocking forms and GetcContext/PutcContext bound
// the wait with a context.
package lpcuart

import (
	"github.com/jangala-dev/tinygo-lpcuart/errcode"
)

// NumUARTs is the number of UART instances on the LPC176x.
const NumUARTs = 4

// DefaultBaudRate is programmed by Open before any user configuration.
const DefaultBaudRate = 9600

// NVIC interrupt numbers for UART0..UART3.
var irqNumbers = [NumUARTs]int{5, 6, 7, 8}

// Pin identifies a port pin. The zero value is NC, so Pin fields left unset
// in a Config mean "no line". P builds the others.
type Pin int16

const NC Pin = 0

// pinOffset keeps P0_0 away from the zero value.
const pinOffset = 1

// P returns the pin Pport_bit.
func P(port, bit uint8) Pin { return Pin(pinOffset + int16(port)*32 + int16(bit&31)) }

func (p Pin) Port() uint8 { return uint8((p - pinOffset) >> 5) }
func (p Pin) Bit() uint8  { return uint8((p - pinOffset) & 31) }

// Parity selects the parity bit generated and checked by the UART.
type Parity uint8

const (
	ParityNone Parity = iota
	ParityOdd
	ParityEven
	ParityForced1 // stick parity, always 1
	ParityForced0 // stick parity, always 0
)

// FlowControl selects which of RTS and CTS are active.
type FlowControl uint8

const (
	FlowControlNone FlowControl = iota
	FlowControlRTS
	FlowControlCTS
	FlowControlRTSCTS
)

func (fc FlowControl) rts() bool { return fc == FlowControlRTS || fc == FlowControlRTSCTS }
func (fc FlowControl) cts() bool { return fc == FlowControlCTS || fc == FlowControlRTSCTS }

// IRQ is an interrupt source of one UART. The value is the IER bit index.
type IRQ uint8

const (
	RxIRQ IRQ = 0 // receive data available
	TxIRQ IRQ = 1 // transmit holding register empty
)

func (irq IRQ) mask() IntEnable { return 1 << irq }

func (irq IRQ) String() string {
	switch irq {
	case RxIRQ:
		return "rx"
	case TxIRQ:
		return "tx"
	}
	return "irq?"
}

// Handler receives interrupt events for one UART. id is the opaque value
// given to SetInterruptHandler.
type Handler func(id uint32, irq IRQ)

// Direction of a GPIO line.
type Direction uint8

const (
	Input Direction = iota
	Output
)

// PinMode is the electrical mode of a pin (PINMODE).
type PinMode uint8

const (
	PullUp PinMode = iota
	Repeater
	PullNone
	PullDown
)

// ---------------- collaborators ----------------

// Bus is the register window of one UART block. Offsets are the Offset*
// constants; reads and writes have the hardware's side effects.
type Bus interface {
	Load(offset uint32) uint32
	Store(offset uint32, value uint32)
}

// SystemControl powers peripherals and reports clocks.
type SystemControl interface {
	PowerOn(uart int)
	// SelectPCLK sets the UART's peripheral clock to CCLK/1.
	SelectPCLK(uart int)
	CoreClock() uint32
}

// PinController routes pins to peripheral functions.
type PinController interface {
	SetFunction(pin Pin, function uint8)
	SetMode(pin Pin, mode PinMode)
}

// Line is one GPIO line. Get reports the level, Set drives it.
type Line interface {
	Get() bool
	Set(high bool)
}

// GPIO configures pins as plain digital lines.
type GPIO interface {
	Configure(pin Pin, dir Direction) Line
}

// InterruptController is the NVIC.
type InterruptController interface {
	SetVector(irq int, handler func())
	Enable(irq int)
	Disable(irq int)
}

// Hardware bundles the chip resources the driver needs.
type Hardware struct {
	UART   [NumUARTs]Bus
	System SystemControl
	Pins   PinController
	GPIO   GPIO
	NVIC   InterruptController

	// Fatal receives configuration errors before they are returned. On the
	// target it does not return; on the host it may be nil.
	Fatal func(error)
}

// ---------------- driver state ----------------

// owner is a set of interrupt owners.
type owner uint8

const (
	ownerAPI  owner = 1 << 0
	ownerFlow owner = 1 << 1
)

// flowState is the per-instance state shared between foreground and the
// instance's own vector. Nothing else touches it.
type flowState struct {
	swRTS     Line // nil when unset
	swCTS     Line
	rtsPin    Pin
	ctsPin    Pin
	count     uint8 // bytes written since THRE was last seen
	irqOwners [2]owner
}

// UART is one UART instance.
type UART struct {
	ctl   *Controller
	bus   Bus
	index int

	initialized bool
	flow        flowState

	handler Handler
	id      uint32

	baud   uint32
	clkCfg ClockConfig

	stats Stats
}

// Controller owns the four UART instances of one chip.
type Controller struct {
	hw      Hardware
	uarts   [NumUARTs]UART
	vectors [NumUARTs]func()
}

// NewController binds the driver to hw.
func NewController(hw Hardware) *Controller {
	c := &Controller{hw: hw}
	for i := range c.uarts {
		i := i
		c.uarts[i] = UART{ctl: c, bus: hw.UART[i], index: i}
		c.uarts[i].flow.rtsPin, c.uarts[i].flow.ctsPin = NC, NC
		c.vectors[i] = func() { c.HandleInterrupt(i) }
	}
	return c
}

// fail reports err to the fatal sink and returns it.
func (c *Controller) fail(err error) error {
	if c.hw.Fatal != nil {
		c.hw.Fatal(err)
	}
	return err
}

// UART returns instance index without configuring it.
func (c *Controller) UART(index int) *UART {
	if index < 0 || index >= NumUARTs {
		return nil
	}
	return &c.uarts[index]
}

// Open resolves the TX/RX pin pair to a UART, powers it, programs 9600 8N1,
// routes the pins and returns the instance. Either pin may be NC, not both.
// Registers are untouched when the pins do not resolve.
func (c *Controller) Open(tx, rx Pin) (*UART, error) {
	utx, okTX := peripheral(tx, pinMapTX)
	urx, okRX := peripheral(rx, pinMapRX)
	if !okTX || !okRX {
		return nil, c.fail(errcode.New(errcode.Configuration, "Open", "pin is not a UART pin"))
	}
	idx := mergePeripherals(utx, urx)
	if idx == noUART {
		return nil, c.fail(errcode.New(errcode.Configuration, "Open", "serial pinout mapping failed"))
	}
	u := &c.uarts[idx]
	if u.bus == nil {
		return nil, c.fail(errcode.New(errcode.Configuration, "Open", "no register bank for instance"))
	}

	c.hw.System.PowerOn(idx)

	// FIFOs on, RX trigger at 1 character, all interrupts masked.
	u.setFCR(FCRFIFOEnable | FCRTrigger1)
	u.setIER(0)

	if err := u.SetBaudRate(DefaultBaudRate); err != nil {
		return nil, err
	}
	if err := u.SetFormat(8, 1, ParityNone); err != nil {
		return nil, err
	}

	c.pinout(tx, pinMapTX)
	c.pinout(rx, pinMapRX)
	for _, p := range [...]Pin{tx, rx} {
		if p != NC {
			c.hw.Pins.SetMode(p, PullUp)
		}
	}

	if !u.initialized {
		u.flow = flowState{rtsPin: NC, ctsPin: NC}
		u.initialized = true
	}
	return u, nil
}

// PinoutTX routes pin to its UART TX function without touching the UART.
func (c *Controller) PinoutTX(pin Pin) error {
	if _, ok := peripheral(pin, pinMapTX); !ok || pin == NC {
		return c.fail(errcode.New(errcode.Configuration, "PinoutTX", "pin is not a UART TX pin"))
	}
	c.pinout(pin, pinMapTX)
	return nil
}

func (c *Controller) pinout(pin Pin, table []pinMap) {
	if pin == NC {
		return
	}
	if m, ok := lookup(pin, table); ok {
		c.hw.Pins.SetFunction(pin, m.function)
	}
}

// Config groups the settings applied by Configure. Zero fields take the
// defaults 9600 baud, 8 data bits, 1 stop bit, no parity, no flow control.
type Config struct {
	BaudRate uint32
	DataBits uint8
	StopBits uint8
	Parity   Parity

	FlowControl FlowControl
	RTS         Pin // receive-side flow line (driven by us), NC when unset
	CTS         Pin // transmit-side flow line (sensed by us), NC when unset
}

// Configure applies cfg: baud rate, frame format, then flow control.
func (u *UART) Configure(cfg Config) error {
	if cfg.BaudRate == 0 {
		cfg.BaudRate = DefaultBaudRate
	}
	if cfg.DataBits == 0 {
		cfg.DataBits = 8
	}
	if cfg.StopBits == 0 {
		cfg.StopBits = 1
	}
	if err := u.SetBaudRate(cfg.BaudRate); err != nil {
		return err
	}
	if err := u.SetFormat(cfg.DataBits, cfg.StopBits, cfg.Parity); err != nil {
		return err
	}
	if cfg.FlowControl == FlowControlNone {
		cfg.RTS, cfg.CTS = NC, NC
	}
	return u.SetFlowControl(cfg.FlowControl, cfg.RTS, cfg.CTS)
}

// Index returns the instance number (0..3).
func (u *UART) Index() int { return u.index }

// Baud returns the last baud rate programmed by SetBaudRate.
func (u *UART) Baud() uint32 { return u.baud }

// ClockConfig returns the divider triple programmed by the last SetBaudRate.
func (u *UART) ClockConfig() ClockConfig { return u.clkCfg }

// SetInterruptHandler installs h as this instance's event callback. Only the
// instance's own events reach it.
func (u *UART) SetInterruptHandler(h Handler, id uint32) {
	u.handler = h
	u.id = id
}

// Free detaches the interrupt handler. The instance stays configured.
func (u *UART) Free() {
	u.handler = nil
	u.id = 0
}

// ClearBuffers resets both hardware FIFOs.
func (u *UART) ClearBuffers() {
	u.setFCR(FCRFIFOEnable | FCRRxReset | FCRTxReset | FCRTrigger1)
}

// SetBreak forces the TX line low until ClearBreak.
func (u *UART) SetBreak() { u.updateLCR(LCRBreak, 0) }

func (u *UART) ClearBreak() { u.updateLCR(0, LCRBreak) }

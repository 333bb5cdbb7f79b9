// lpcuart/registers.go

package lpcuart

// Register offsets inside one LPC176x UART block. Several offsets are shared:
// offset 0x00 is RBR on read, THR on write and DLL when LCR.DLAB is set;
// 0x04 is IER, or DLM when DLAB is set; 0x08 is IIR on read and FCR on write.
const (
	OffsetRBR = 0x00
	OffsetTHR = 0x00
	OffsetDLL = 0x00
	OffsetDLM = 0x04
	OffsetIER = 0x04
	OffsetIIR = 0x08
	OffsetFCR = 0x08
	OffsetLCR = 0x0C
	OffsetMCR = 0x10 // UART1 only
	OffsetLSR = 0x14
	OffsetMSR = 0x18 // UART1 only
	OffsetSCR = 0x1C
	OffsetFDR = 0x28
	OffsetTER = 0x30
)

// ---------------- LCR ----------------

// LineControl is the LCR value.
type LineControl uint32

const (
	LCRWordLengthMask LineControl = 0x3 << 0
	LCRStopBits       LineControl = 1 << 2
	LCRParityEnable   LineControl = 1 << 3
	LCRParitySelMask  LineControl = 0x3 << 4
	LCRBreak          LineControl = 1 << 6
	LCRDLAB           LineControl = 1 << 7

	lcrParitySelPos = 4
)

// WordLength returns the encoded character length (0 = 5 bits .. 3 = 8 bits).
func (c LineControl) WordLength() uint8 { return uint8(c & LCRWordLengthMask) }

// TwoStopBits reports whether two stop bits are selected.
func (c LineControl) TwoStopBits() bool { return c&LCRStopBits != 0 }

func (c LineControl) ParityEnable() bool  { return c&LCRParityEnable != 0 }
func (c LineControl) ParitySelect() uint8 { return uint8((c & LCRParitySelMask) >> lcrParitySelPos) }
func (c LineControl) Break() bool         { return c&LCRBreak != 0 }
func (c LineControl) DLAB() bool          { return c&LCRDLAB != 0 }

// ---------------- LSR ----------------

// LineStatus is the LSR value.
type LineStatus uint32

const (
	LSRDataReady LineStatus = 1 << 0 // RDR
	LSROverrun   LineStatus = 1 << 1 // OE
	LSRParityErr LineStatus = 1 << 2 // PE
	LSRFraming   LineStatus = 1 << 3 // FE
	LSRBreak     LineStatus = 1 << 4 // BI
	LSRTHREmpty  LineStatus = 1 << 5 // THRE
	LSRTxEmpty   LineStatus = 1 << 6 // TEMT
	LSRRxError   LineStatus = 1 << 7 // RXFE
)

func (s LineStatus) Has(flag LineStatus) bool { return s&flag != 0 }

// DataReady reports that RBR holds at least one unread character.
func (s LineStatus) DataReady() bool { return s.Has(LSRDataReady) }

// THREmpty reports that the transmit holding register (and FIFO) is empty.
func (s LineStatus) THREmpty() bool { return s.Has(LSRTHREmpty) }

// ---------------- IER ----------------

// IntEnable is the IER value. Bit n enables interrupt source IRQ(n).
type IntEnable uint32

const (
	IERRxData     IntEnable = 1 << 0 // RBR interrupt
	IERTxEmpty    IntEnable = 1 << 1 // THRE interrupt
	IERLineStatus IntEnable = 1 << 2 // RX line status interrupt
)

func (e IntEnable) Has(irq IRQ) bool { return e&irq.mask() != 0 }

// With returns e with the enable bit for irq set or cleared.
func (e IntEnable) With(irq IRQ, on bool) IntEnable {
	if on {
		return e | irq.mask()
	}
	return e &^ irq.mask()
}

// ---------------- IIR ----------------

// IntIdentity is the IIR value.
type IntIdentity uint32

// Interrupt identification codes (IIR bits 3:1).
const (
	IntIDTxEmpty     uint8 = 0x1 // THRE
	IntIDRxData      uint8 = 0x2 // RDA
	IntIDLineStatus  uint8 = 0x3 // RLS
	IntIDCharTimeout uint8 = 0x6 // CTI
)

// NoPending is the IIR value when no interrupt is pending.
const NoPending IntIdentity = 1

func (i IntIdentity) Pending() bool { return i&1 == 0 }
func (i IntIdentity) ID() uint8     { return uint8((i >> 1) & 0x7) }

// ---------------- FCR ----------------

// FIFOControl is the FCR value (write-only).
type FIFOControl uint32

const (
	FCRFIFOEnable FIFOControl = 1 << 0
	FCRRxReset    FIFOControl = 1 << 1
	FCRTxReset    FIFOControl = 1 << 2
	FCRDMAMode    FIFOControl = 1 << 3

	FCRTrigger1  FIFOControl = 0 << 6
	FCRTrigger4  FIFOControl = 1 << 6
	FCRTrigger8  FIFOControl = 2 << 6
	FCRTrigger14 FIFOControl = 3 << 6
)

// ---------------- FDR ----------------

// FractionalDivider is the FDR value: DIVADDVAL in bits 3:0, MULVAL in 7:4.
type FractionalDivider uint32

func MakeFractionalDivider(divAddVal, mulVal uint8) FractionalDivider {
	return FractionalDivider(divAddVal&0xF) | FractionalDivider(mulVal&0xF)<<4
}

func (f FractionalDivider) DivAddVal() uint8 { return uint8(f & 0xF) }
func (f FractionalDivider) MulVal() uint8    { return uint8((f >> 4) & 0xF) }

// ---------------- MCR (UART1) ----------------

// ModemControl is the UART1 MCR value.
type ModemControl uint32

const (
	MCRDTR      ModemControl = 1 << 0
	MCRRTS      ModemControl = 1 << 1
	MCRLoopback ModemControl = 1 << 4
	MCRRTSEn    ModemControl = 1 << 6 // auto-RTS
	MCRCTSEn    ModemControl = 1 << 7 // auto-CTS

	MCRFlowMask = MCRRTSEn | MCRCTSEn
)

func (m ModemControl) Has(flag ModemControl) bool { return m&flag != 0 }

// ---------------- typed access ----------------

func (u *UART) lcr() LineControl     { return LineControl(u.bus.Load(OffsetLCR)) }
func (u *UART) setLCR(v LineControl) { u.bus.Store(OffsetLCR, uint32(v)) }
func (u *UART) lsr() LineStatus      { return LineStatus(u.bus.Load(OffsetLSR)) }
func (u *UART) ier() IntEnable       { return IntEnable(u.bus.Load(OffsetIER)) }
func (u *UART) setIER(v IntEnable)   { u.bus.Store(OffsetIER, uint32(v)) }
func (u *UART) iir() IntIdentity     { return IntIdentity(u.bus.Load(OffsetIIR)) }
func (u *UART) setFCR(v FIFOControl) { u.bus.Store(OffsetFCR, uint32(v)) }
func (u *UART) mcr() ModemControl    { return ModemControl(u.bus.Load(OffsetMCR)) }
func (u *UART) setMCR(v ModemControl) {
	u.bus.Store(OffsetMCR, uint32(v))
}

// updateLCR is the read-modify-write helper for LCR.
func (u *UART) updateLCR(set, clear LineControl) {
	u.setLCR((u.lcr() | set) &^ clear)
}

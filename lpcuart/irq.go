package lpcuart

// SetInterrupt enables or disables an interrupt source on behalf of the
// application. The driver's flow-control logic holds its own claim on RxIRQ,
// so disabling here never removes an Rx subscription flow control still needs.
func (u *UART) SetInterrupt(irq IRQ, enable bool) {
	u.setIRQ(ownerAPI, irq, enable)
}

// InterruptEnabled reports whether irq is enabled in IER.
func (u *UART) InterruptEnabled(irq IRQ) bool { return u.ier().Has(irq) }

// setIRQ is the dual-owner gate. Enabling always installs the vector and sets
// the IER bit. Disabling drops who's claim; the IER bit goes only once no
// owner is left for irq, and the NVIC line only once IER has neither Rx nor Tx.
func (u *UART) setIRQ(who owner, irq IRQ, enable bool) {
	if irq > TxIRQ {
		return
	}
	nvic := u.ctl.hw.NVIC
	n := irqNumbers[u.index]

	if enable {
		u.flow.irqOwners[irq] |= who
		u.setIER(u.ier().With(irq, true))
		nvic.SetVector(n, u.ctl.vectors[u.index])
		nvic.Enable(n)
		return
	}

	u.flow.irqOwners[irq] &^= who
	if u.flow.irqOwners[irq] != 0 {
		return
	}
	ier := u.ier().With(irq, false)
	u.setIER(ier)
	if !ier.Has(RxIRQ) && !ier.Has(TxIRQ) {
		nvic.Disable(n)
	}
}

// Vector returns the interrupt entry point of instance index, as installed
// with the interrupt controller, or nil for an index outside 0..3. The value
// is stable for the Controller.
func (c *Controller) Vector(index int) func() {
	if index < 0 || index >= NumUARTs {
		return nil
	}
	return c.vectors[index]
}

// HandleInterrupt services the vector of instance index: it decodes IIR into
// a TxIRQ or RxIRQ event, raises the software RTS line on receive so the peer
// pauses until Getc consumes the byte, then hands the event to the instance's
// handler. Other identifications and unknown indexes are ignored.
func (c *Controller) HandleInterrupt(index int) {
	if index < 0 || index >= NumUARTs {
		return
	}
	u := &c.uarts[index]
	u.dbgISR()

	var irq IRQ
	switch u.iir().ID() {
	case IntIDTxEmpty:
		irq = TxIRQ
	case IntIDRxData:
		irq = RxIRQ
	default:
		u.dbgSpurious()
		return
	}

	if irq == RxIRQ && u.flow.swRTS != nil {
		u.flow.swRTS.Set(true)
		u.dbgRTSRaised()
	}
	if u.handler == nil {
		u.dbgDropped()
		return
	}
	u.dbgDispatch(irq)
	u.handler(u.id, irq)
}

package lpcuart

// hwFlowUART is the only instance with auto-RTS/auto-CTS.
const hwFlowUART = 1

// SetFlowControl configures RTS/CTS. rxflow is the receive-side line this end
// drives (RTS) and txflow the transmit-side line it senses (CTS); either may
// be NC. Every call starts from a clean state: hardware flow bits cleared,
// the flow-control Rx subscription released and both software lines dropped.
//
// On UART1 with pins that route to its modem function the hardware
// auto-RTS/auto-CTS logic is used. Anywhere else the lines are emulated: CTS
// is polled by Writable, RTS is raised by the receive interrupt and lowered by
// Getc.
func (u *UART) SetFlowControl(fc FlowControl, rxflow, txflow Pin) error {
	hw := u.index == hwFlowUART

	if hw {
		u.setMCR(u.mcr() &^ MCRFlowMask)
	}
	u.setIRQ(ownerFlow, RxIRQ, false)
	u.flow.swRTS, u.flow.swCTS = nil, nil
	u.flow.rtsPin, u.flow.ctsPin = NC, NC

	if fc == FlowControlNone {
		return nil
	}

	gpio := u.ctl.hw.GPIO

	if fc.cts() && txflow != NC {
		if hw && findPeripheral(txflow, pinMapCTS) == hwFlowUART {
			u.setMCR(u.mcr() | MCRCTSEn)
			u.ctl.pinout(txflow, pinMapCTS)
		} else {
			u.flow.swCTS = gpio.Configure(txflow, Input)
			u.flow.ctsPin = txflow
		}
	}

	if fc.rts() && rxflow != NC {
		u.setFCR(FCRFIFOEnable | FCRRxReset | FCRTxReset | FCRTrigger1)
		if hw && findPeripheral(rxflow, pinMapRTS) == hwFlowUART {
			u.setMCR(u.mcr() | MCRRTSEn)
			u.ctl.pinout(rxflow, pinMapRTS)
		} else {
			line := gpio.Configure(rxflow, Output)
			line.Set(false)
			u.flow.swRTS = line
			u.flow.rtsPin = rxflow
			u.setIRQ(ownerFlow, RxIRQ, true)
		}
	}
	return nil
}

// FlowState describes the active flow control of one UART.
type FlowState struct {
	HardwareRTS bool
	HardwareCTS bool
	SoftwareRTS Pin // NC when not emulated
	SoftwareCTS Pin
}

// FlowState reports the current flow-control configuration.
func (u *UART) FlowState() FlowState {
	s := FlowState{SoftwareRTS: u.flow.rtsPin, SoftwareCTS: u.flow.ctsPin}
	if u.index == hwFlowUART {
		m := u.mcr()
		s.HardwareRTS = m.Has(MCRRTSEn)
		s.HardwareCTS = m.Has(MCRCTSEn)
	}
	return s
}

//go:build !lpcuartdebug

package lpcuart

func (u *UART) dbgISR()         {}
func (u *UART) dbgSpurious()    {}
func (u *UART) dbgDispatch(IRQ) {}
func (u *UART) dbgDropped()     {}
func (u *UART) dbgRTSRaised()   {}
func (u *UART) dbgCTSHeld()     {}
func (u *UART) dbgThrottled()   {}

// Command lpcuart is a host-side companion to the lpcuart driver: it computes
// LPC176x baud dividers and LCR values and runs loopback sessions against the
// simulated chip.
package main

func main() {
	Execute()
}

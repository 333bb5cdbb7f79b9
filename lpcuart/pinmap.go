package lpcuart

// Pins with a UART function on the LPC176x.
const (
	P0_0  Pin = pinOffset + 0*32 + 0
	P0_1  Pin = pinOffset + 0*32 + 1
	P0_2  Pin = pinOffset + 0*32 + 2
	P0_3  Pin = pinOffset + 0*32 + 3
	P0_10 Pin = pinOffset + 0*32 + 10
	P0_11 Pin = pinOffset + 0*32 + 11
	P0_15 Pin = pinOffset + 0*32 + 15
	P0_16 Pin = pinOffset + 0*32 + 16
	P0_17 Pin = pinOffset + 0*32 + 17
	P0_22 Pin = pinOffset + 0*32 + 22
	P0_25 Pin = pinOffset + 0*32 + 25
	P0_26 Pin = pinOffset + 0*32 + 26
	P2_0  Pin = pinOffset + 2*32 + 0
	P2_1  Pin = pinOffset + 2*32 + 1
	P2_2  Pin = pinOffset + 2*32 + 2
	P2_7  Pin = pinOffset + 2*32 + 7
	P2_8  Pin = pinOffset + 2*32 + 8
	P2_9  Pin = pinOffset + 2*32 + 9
	P4_28 Pin = pinOffset + 4*32 + 28
	P4_29 Pin = pinOffset + 4*32 + 29
)

// noUART is the "not connected" peripheral.
const noUART = -1

type pinMap struct {
	pin      Pin
	uart     int
	function uint8 // PINSEL value
}

var pinMapTX = []pinMap{
	{P0_0, 3, 2},
	{P0_2, 0, 1},
	{P0_10, 2, 1},
	{P0_15, 1, 1},
	{P0_25, 3, 3},
	{P2_0, 1, 2},
	{P2_8, 2, 2},
	{P4_28, 3, 3},
}

var pinMapRX = []pinMap{
	{P0_1, 3, 2},
	{P0_3, 0, 1},
	{P0_11, 2, 1},
	{P0_16, 1, 1},
	{P0_26, 3, 3},
	{P2_1, 1, 2},
	{P2_9, 2, 2},
	{P4_29, 3, 3},
}

// Only UART1 has modem lines.
var pinMapRTS = []pinMap{
	{P0_22, 1, 1},
	{P2_7, 1, 2},
}

var pinMapCTS = []pinMap{
	{P0_17, 1, 1},
	{P2_2, 1, 2},
}

func lookup(pin Pin, table []pinMap) (pinMap, bool) {
	for _, m := range table {
		if m.pin == pin {
			return m, true
		}
	}
	return pinMap{}, false
}

// peripheral resolves pin to a UART index. NC resolves to noUART; a pin that
// is missing from the table reports ok == false.
func peripheral(pin Pin, table []pinMap) (uart int, ok bool) {
	if pin == NC {
		return noUART, true
	}
	m, ok := lookup(pin, table)
	if !ok {
		return noUART, false
	}
	return m.uart, true
}

// findPeripheral is peripheral without the error distinction.
func findPeripheral(pin Pin, table []pinMap) int {
	uart, _ := peripheral(pin, table)
	return uart
}

// mergePeripherals combines the TX and RX resolutions. Disagreement and
// double NC both give noUART.
func mergePeripherals(a, b int) int {
	switch {
	case a == noUART:
		return b
	case b == noUART:
		return a
	case a == b:
		return a
	}
	return noUART
}

// lpcuart/sim/fifo.go

package sim

// fifoDepth matches the 16-byte RX and TX FIFOs of the LPC176x UARTs.
const fifoDepth uint8 = 16

// fifo is a byte ring with free-running head/tail counters.
type fifo struct {
	buf  [fifoDepth]byte
	head uint8
	tail uint8
}

// Used returns how many bytes are queued.
func (f *fifo) Used() uint8 { return f.head - f.tail }

// Put stores a byte. If the fifo is already full, it returns false.
func (f *fifo) Put(v byte) bool {
	if f.Used() == fifoDepth {
		return false
	}
	f.buf[f.head%fifoDepth] = v
	f.head++
	return true
}

// Get returns the oldest byte. If the fifo is empty, it returns (0, false).
func (f *fifo) Get() (byte, bool) {
	if f.Used() == 0 {
		return 0, false
	}
	v := f.buf[f.tail%fifoDepth]
	f.tail++
	return v, true
}

// Clear drops everything queued.
func (f *fifo) Clear() {
	f.head = 0
	f.tail = 0
}

// lpcuart/io.go

package lpcuart

import (
	"context"
	"time"

	"tinygo.org/x/drivers"

	"github.com/jangala-dev/tinygo-lpcuart/errcode"
)

// txFIFODepth is the number of bytes Putc may queue before THRE must be seen
// again. The LPC176x has no TX fill-level readback.
const txFIFODepth = 16

// pollTick is the re-check interval of the context-bounded calls.
const pollTick = 50 * time.Microsecond

var _ drivers.UART = (*UART)(nil)

// Readable reports whether a received character is waiting.
func (u *UART) Readable() bool { return u.lsr().DataReady() }

// Writable reports whether Putc can write without overrunning the peer or
// the TX FIFO. With software CTS the line must read low. Seeing THRE set
// restarts the byte count; otherwise 16 bytes since the last THRE means full.
func (u *UART) Writable() bool {
	if u.flow.swCTS != nil && u.flow.swCTS.Get() {
		u.dbgCTSHeld()
		return false
	}
	if u.lsr().THREmpty() {
		u.flow.count = 0
		return true
	}
	if u.flow.count >= txFIFODepth {
		u.dbgThrottled()
		return false
	}
	return true
}

// Getc blocks until a character arrives and returns it. It never times out.
// With software RTS the line is lowered after the read to let the peer resume.
func (u *UART) Getc() byte {
	for !u.Readable() {
		time.Sleep(0) // polite yield
	}
	return u.getc()
}

// Putc blocks until the UART can take c and writes it. It never times out.
func (u *UART) Putc(c byte) {
	for !u.Writable() {
		time.Sleep(0) // polite yield
	}
	u.putc(c)
}

func (u *UART) getc() byte {
	c := byte(u.bus.Load(OffsetRBR))
	if u.flow.swRTS != nil {
		u.flow.swRTS.Set(false)
	}
	return c
}

func (u *UART) putc(c byte) {
	u.bus.Store(OffsetTHR, uint32(c))
	u.flow.count++
}

// TryGetc returns the next character or errcode.WouldBlock when none is
// waiting.
func (u *UART) TryGetc() (byte, error) {
	if !u.Readable() {
		return 0, errcode.WouldBlock
	}
	return u.getc(), nil
}

// TryPutc writes c or returns errcode.WouldBlock when the UART cannot take it.
func (u *UART) TryPutc(c byte) error {
	if !u.Writable() {
		return errcode.WouldBlock
	}
	u.putc(c)
	return nil
}

// GetcContext is Getc bounded by ctx.
func (u *UART) GetcContext(ctx context.Context) (byte, error) {
	for {
		if c, err := u.TryGetc(); err == nil {
			return c, nil
		}
		if err := wait(ctx); err != nil {
			return 0, err
		}
	}
}

// PutcContext is Putc bounded by ctx.
func (u *UART) PutcContext(ctx context.Context, c byte) error {
	for {
		if err := u.TryPutc(c); err == nil {
			return nil
		}
		if err := wait(ctx); err != nil {
			return err
		}
	}
}

// wait sleeps one poll tick or returns the context error.
func wait(ctx context.Context) error {
	t := time.NewTimer(pollTick)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// ---------------- io and drivers.UART ----------------

// Read copies the characters that are ready into p without blocking, like
// machine.UART. It returns 0, nil when nothing is waiting.
func (u *UART) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) && u.Readable() {
		p[n] = u.getc()
		n++
	}
	return n, nil
}

// ReadByte returns errcode.WouldBlock when nothing is waiting.
func (u *UART) ReadByte() (byte, error) { return u.TryGetc() }

// Write blocks until every byte of p has been handed to the UART.
func (u *UART) Write(p []byte) (int, error) {
	for _, c := range p {
		u.Putc(c)
	}
	return len(p), nil
}

func (u *UART) WriteByte(c byte) error {
	u.Putc(c)
	return nil
}

// Buffered returns 1 when a character is waiting and 0 otherwise; the
// receive FIFO level is not visible to software.
func (u *UART) Buffered() int {
	if u.Readable() {
		return 1
	}
	return 0
}

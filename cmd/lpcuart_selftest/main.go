//go:build tinygo && lpc176x

// Command lpcuart_selftest exercises the driver on a board with UART2 TX
// (P0.10) wired to RX (P0.11) and P1.0 wired to P1.1 for flow control.
package main

import (
	"context"
	"crypto/sha1"
	"time"

	"github.com/jangala-dev/tinygo-lpcuart/errcode"
	"github.com/jangala-dev/tinygo-lpcuart/lpcuart"
)

var (
	txPin  = lpcuart.P0_10
	rxPin  = lpcuart.P0_11
	rtsPin = lpcuart.P(1, 0)
	ctsPin = lpcuart.P(1, 1)
	baud   = uint32(115200)
)

func must[T any](v T, err error) T {
	if err != nil {
		println("fatal:", err.Error())
		for {
			time.Sleep(time.Hour)
		}
	}
	return v
}

func drain(u *lpcuart.UART) {
	for {
		if _, err := u.TryGetc(); err != nil {
			return
		}
	}
}

// sendAll writes p with PutcContext so a stuck line ends at ctx.
func sendAll(ctx context.Context, u *lpcuart.UART, p []byte) error {
	for _, c := range p {
		if err := u.PutcContext(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

// recvExact reads n bytes or stops at ctx.
func recvExact(ctx context.Context, u *lpcuart.UART, n int) ([]byte, error) {
	out := make([]byte, 0, n)
	for len(out) < n {
		c, err := u.GetcContext(ctx)
		if err != nil {
			return out, err
		}
		out = append(out, c)
	}
	return out, nil
}

// echo sends msg from a goroutine and reads it back.
func echo(u *lpcuart.UART, msg []byte, timeout time.Duration) string {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	go func() { _ = sendAll(ctx, u, msg) }()
	got, err := recvExact(ctx, u, len(msg))
	if err != nil {
		return "timeout after " + itoa(len(got)) + " bytes"
	}
	if string(got) != string(msg) {
		return "mismatch"
	}
	return ""
}

func main() {
	// Give the monitor time to attach.
	time.Sleep(3 * time.Second)
	println("lpcuart self-test starting")

	u := must(lpcuart.Default.Open(txPin, rxPin))
	if err := u.SetBaudRate(baud); err != nil {
		println("SetBaudRate failed:", err.Error())
		return
	}
	cfg := u.ClockConfig()
	println("divider: DL =", cfg.Divisor, " MULVAL =", cfg.MulVal, " DIVADDVAL =", cfg.DivAddVal)
	drain(u)

	pass, fail := 0, 0
	run := func(name string, f func() string) {
		println("")
		println("[Test]", name)
		if msg := f(); msg == "" {
			println("  PASS")
			pass++
		} else {
			println("  FAIL:", msg)
			fail++
		}
	}

	run("sanity: short loopback", func() string {
		drain(u)
		return echo(u, []byte("hello, lpcuart\r\n"), time.Second)
	})

	run("non-blocking: TryGetc on idle line", func() string {
		drain(u)
		if _, err := u.TryGetc(); err != errcode.WouldBlock {
			return "expected would_block"
		}
		return ""
	})

	run("timeout: GetcContext with no data", func() string {
		drain(u)
		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer cancel()
		if _, err := u.GetcContext(ctx); err != context.DeadlineExceeded {
			return "expected deadline"
		}
		return ""
	})

	run("interrupt: Rx events reach the handler", func() string {
		drain(u)
		var events int
		u.SetInterruptHandler(func(id uint32, irq lpcuart.IRQ) {
			if id == 42 && irq == lpcuart.RxIRQ {
				events++
				u.Getc()
			}
		}, 42)
		u.SetInterrupt(lpcuart.RxIRQ, true)
		defer func() {
			u.SetInterrupt(lpcuart.RxIRQ, false)
			u.Free()
		}()
		u.Write([]byte("abc"))
		deadline := time.Now().Add(500 * time.Millisecond)
		for events < 3 && time.Now().Before(deadline) {
			time.Sleep(time.Millisecond)
		}
		if events != 3 {
			return "saw " + itoa(events) + " events"
		}
		return ""
	})

	run("format: 7E2 round trip", func() string {
		if err := u.SetFormat(7, 2, lpcuart.ParityEven); err != nil {
			return err.Error()
		}
		defer u.SetFormat(8, 1, lpcuart.ParityNone)
		drain(u)
		return echo(u, []byte("seven-bit"), time.Second)
	})

	run("format: invalid data bits rejected", func() string {
		if err := u.SetFormat(9, 1, lpcuart.ParityNone); errcode.Of(err) != errcode.InvalidFormat {
			return "expected invalid_format"
		}
		return ""
	})

	run("flow: software RTS/CTS, 1 KiB", func() string {
		if err := u.SetFlowControl(lpcuart.FlowControlRTSCTS, rtsPin, ctsPin); err != nil {
			return err.Error()
		}
		defer u.SetFlowControl(lpcuart.FlowControlNone, lpcuart.NC, lpcuart.NC)
		drain(u)
		src := make([]byte, 1024)
		for i := range src {
			src[i] = byte(i * 7)
		}
		return echo(u, src, 3*time.Second)
	})

	run("binary: 4 KiB integrity (SHA-1)", func() string {
		drain(u)
		n := 4 * 1024
		src := make([]byte, n)
		var x uint32 = 0x12345678
		for i := range src {
			x = 1664525*x + 1013904223
			src[i] = byte(x >> 24)
		}
		want := sha1.Sum(src)

		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		go func() { _ = sendAll(ctx, u, src) }()
		got, err := recvExact(ctx, u, n)
		if err != nil {
			return "timeout/short read"
		}
		if sha1.Sum(got) != want {
			return "hash mismatch"
		}
		return ""
	})

	run("baud: switch to 9600 and back", func() string {
		if err := u.SetBaudRate(9600); err != nil {
			return err.Error()
		}
		defer u.SetBaudRate(baud)
		drain(u)
		return echo(u, []byte("slow"), time.Second)
	})

	run("break: ClearBreak restores the line", func() string {
		u.SetBreak()
		time.Sleep(2 * time.Millisecond)
		u.ClearBreak()
		u.ClearBuffers()
		return echo(u, []byte("after-break"), time.Second)
	})

	println("")
	println("Summary")
	println("  passed =", pass)
	println("  failed =", fail)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

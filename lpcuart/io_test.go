package lpcuart_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"tinygo.org/x/drivers/gps"

	"github.com/jangala-dev/tinygo-lpcuart/errcode"
	"github.com/jangala-dev/tinygo-lpcuart/lpcuart"
)

func TestWritableCountsSixteenBytes(t *testing.T) {
	b, c, _ := newTestController(t)
	u := mustOpen(t, c, lpcuart.P0_2, lpcuart.P0_3)
	blk := b.UART[0]

	for i := 0; i < 16; i++ {
		if err := u.TryPutc(byte('a' + i)); err != nil {
			t.Fatalf("TryPutc #%d: %v", i, err)
		}
	}
	if u.Writable() {
		t.Fatalf("writable with 16 bytes outstanding")
	}
	if err := u.TryPutc('!'); !errors.Is(err, errcode.WouldBlock) {
		t.Fatalf("TryPutc on full FIFO: got %v want %s", err, errcode.WouldBlock)
	}

	// No fill level is visible, so freeing one slot does not help.
	blk.Shift(1)
	if u.Writable() {
		t.Fatalf("writable before THRE")
	}

	if got := blk.Drain(); len(got) != 15 {
		t.Fatalf("drained %d bytes, want 15", len(got))
	}
	if !u.Writable() {
		t.Fatalf("not writable after THRE")
	}
	if blk.Overruns() != 0 {
		t.Fatalf("TX FIFO overran %d times", blk.Overruns())
	}
}

func TestGetcBlocksUntilData(t *testing.T) {
	b, c, _ := newTestController(t)
	u := mustOpen(t, c, lpcuart.P0_2, lpcuart.P0_3)

	go func() {
		time.Sleep(10 * time.Millisecond)
		b.UART[0].Inject('z')
	}()
	if got := u.Getc(); got != 'z' {
		t.Fatalf("Getc: got %q want 'z'", got)
	}
}

func TestPutcBlocksUntilTHRE(t *testing.T) {
	b, c, _ := newTestController(t)
	u := mustOpen(t, c, lpcuart.P0_2, lpcuart.P0_3)
	blk := b.UART[0]
	for i := 0; i < 16; i++ {
		u.Putc('.')
	}

	done := make(chan struct{})
	go func() {
		u.Putc('#')
		close(done)
	}()
	select {
	case <-done:
		t.Fatalf("Putc returned with the FIFO full")
	case <-time.After(10 * time.Millisecond):
	}
	blk.Drain()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Putc did not complete after THRE")
	}
	if got := blk.Drain(); string(got) != "#" {
		t.Fatalf("wire: got %q want \"#\"", got)
	}
}

func TestTryGetc(t *testing.T) {
	b, c, _ := newTestController(t)
	u := mustOpen(t, c, lpcuart.P0_2, lpcuart.P0_3)

	if _, err := u.TryGetc(); !errors.Is(err, errcode.WouldBlock) {
		t.Fatalf("TryGetc on empty: got %v want %s", err, errcode.WouldBlock)
	}
	b.UART[0].Inject('q')
	if got, err := u.TryGetc(); err != nil || got != 'q' {
		t.Fatalf("TryGetc: got %q, %v want 'q'", got, err)
	}
}

func TestContextBoundedCalls(t *testing.T) {
	b, c, _ := newTestController(t)
	u := mustOpen(t, c, lpcuart.P0_2, lpcuart.P0_3)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()
	if _, err := u.GetcContext(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("GetcContext: got %v want deadline exceeded", err)
	}

	for i := 0; i < 16; i++ {
		u.Putc('.')
	}
	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel2()
	if err := u.PutcContext(ctx2, '#'); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("PutcContext: got %v want deadline exceeded", err)
	}
	if b.UART[0].TxLen() != 16 {
		t.Fatalf("TX FIFO: got %d want 16", b.UART[0].TxLen())
	}

	b.UART[0].Inject('r')
	if got, err := u.GetcContext(context.Background()); err != nil || got != 'r' {
		t.Fatalf("GetcContext with data: got %q, %v", got, err)
	}
}

func TestReadWrite(t *testing.T) {
	b, c, _ := newTestController(t)
	u := mustOpen(t, c, lpcuart.P0_2, lpcuart.P0_3)
	blk := b.UART[0]

	if n, err := u.Write([]byte("hello")); n != 5 || err != nil {
		t.Fatalf("Write: got %d, %v", n, err)
	}
	if got := blk.Drain(); string(got) != "hello" {
		t.Fatalf("wire: got %q want \"hello\"", got)
	}

	buf := make([]byte, 8)
	if n, err := u.Read(buf); n != 0 || err != nil {
		t.Fatalf("Read on empty: got %d, %v", n, err)
	}
	if u.Buffered() != 0 {
		t.Fatalf("Buffered on empty: %d", u.Buffered())
	}
	blk.Inject('a', 'b', 'c')
	if u.Buffered() != 1 {
		t.Fatalf("Buffered with data: %d", u.Buffered())
	}
	n, err := u.Read(buf)
	if err != nil || string(buf[:n]) != "abc" {
		t.Fatalf("Read: got %q, %v want \"abc\"", buf[:n], err)
	}

	if err := u.WriteByte('Z'); err != nil {
		t.Fatalf("WriteByte: %v", err)
	}
	blk.Inject('Y')
	if ch, err := u.ReadByte(); err != nil || ch != 'Y' {
		t.Fatalf("ReadByte: got %q, %v", ch, err)
	}
	if got := blk.Drain(); string(got) != "Z" {
		t.Fatalf("wire: got %q want \"Z\"", got)
	}
}

func TestGPSDeviceWritesThroughUART(t *testing.T) {
	b, c, _ := newTestController(t)
	u := mustOpen(t, c, lpcuart.P0_10, lpcuart.P0_11)
	dev := gps.NewUART(u)

	// Longer than the TX FIFO, so Write has to wait for the wire.
	cmd := []byte("$PUBX,40,GSV,0,0,0,0*59\r\n$PUBX,40,GLL,0,0,0,0*5C\r\n")
	done := make(chan []byte)
	go func() {
		var out []byte
		deadline := time.Now().Add(2 * time.Second)
		for len(out) < len(cmd) && time.Now().Before(deadline) {
			if got := b.UART[2].Shift(1); len(got) > 0 {
				out = append(out, got...)
				continue
			}
			time.Sleep(10 * time.Microsecond)
		}
		done <- out
	}()

	dev.WriteBytes(cmd)
	if got := <-done; string(got) != string(cmd) {
		t.Fatalf("wire got %q want %q", got, cmd)
	}
}

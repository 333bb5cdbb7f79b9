package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jangala-dev/tinygo-lpcuart/lpcuart"
	"github.com/jangala-dev/tinygo-lpcuart/lpcuart/sim"
)

func TestParseFrame(t *testing.T) {
	d, s, p, err := parseFrame("7e2")
	if err != nil || d != 7 || s != 2 || p != lpcuart.ParityEven {
		t.Fatalf("parseFrame(7e2) = %d %d %d %v", d, s, p, err)
	}
	for _, bad := range []string{"", "8N", "8X1", "N81", "8N1x"} {
		if _, _, _, err := parseFrame(bad); err == nil {
			t.Fatalf("parseFrame(%q) accepted", bad)
		}
	}
}

func TestDescribeLCR(t *testing.T) {
	lcr, err := lpcuart.EncodeFormat(8, 1, lpcuart.ParityForced1)
	if err != nil {
		t.Fatalf("EncodeFormat: %v", err)
	}
	want := "LCR=0x2B  data=8 stop=1 parity=mark"
	if got := describeLCR(lcr); got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestComputeRows(t *testing.T) {
	rows := computeRows(96000000, []uint32{9600, 115200, 10000000})
	if rows[0].Config != (lpcuart.ClockConfig{Divisor: 625, MulVal: 1}) || rows[0].ErrorPercent() != 0 {
		t.Fatalf("9600 row: %+v", rows[0])
	}
	if rows[1].Config != (lpcuart.ClockConfig{Divisor: 27, MulVal: 14, DivAddVal: 13}) {
		t.Fatalf("115200 row: %+v", rows[1])
	}
	if e := rows[1].ErrorPercent(); e < -0.1 || e > 0.1 {
		t.Fatalf("115200 error: %f%%", e)
	}
	if rows[2].Err == nil {
		t.Fatalf("10 Mbaud at 96 MHz routed")
	}
	out := renderRows(96000000, rows)
	for _, s := range []string{"115200", "625", "unroutable"} {
		if !strings.Contains(out, s) {
			t.Fatalf("table missing %q:\n%s", s, out)
		}
	}
}

func TestParseRates(t *testing.T) {
	got, err := parseRates([]string{"9600", "115200"})
	if err != nil || len(got) != 2 || got[1] != 115200 {
		t.Fatalf("parseRates = %v, %v", got, err)
	}
	if _, err := parseRates([]string{"fast"}); err == nil {
		t.Fatalf("parseRates accepted a word")
	}
}

func TestLoopback(t *testing.T) {
	data := []byte("0123456789abcdefghijklmnopqrstuvwxyz")
	for _, flow := range []bool{false, true} {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		res, err := runLoopback(ctx, loopbackConfig{Clock: 96000000, Baud: 115200, Frame: "8N1", Flow: flow}, data)
		cancel()
		if err != nil {
			t.Fatalf("flow=%v: %v", flow, err)
		}
		if !bytes.Equal(res.Received, data) {
			t.Fatalf("flow=%v: got %q want %q", flow, res.Received, data)
		}
	}
}

func TestRxPortReadWaitsForVector(t *testing.T) {
	b := sim.NewBoard(96000000)
	ctl := lpcuart.NewController(b.Hardware(nil))
	rx, err := ctl.Open(lpcuart.P0_10, lpcuart.P0_11)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := rx.Configure(lpcuart.Config{BaudRate: 115200, FlowControl: lpcuart.FlowControlRTS, RTS: flowPin, CTS: lpcuart.NC}); err != nil {
		t.Fatalf("Configure: %v", err)
	}

	entered := make(chan struct{})
	release := make(chan struct{})
	rx.SetInterruptHandler(func(id uint32, irq lpcuart.IRQ) {
		if irq == lpcuart.RxIRQ {
			close(entered)
			<-release
		}
	}, 0)

	port := &rxPort{u: rx, blk: b.UART[2], raise: func() { b.Raise(2) }}
	go port.deliver('a')
	<-entered

	got := make(chan byte, 1)
	go func() {
		c, _ := port.getc(context.Background())
		got <- c
	}()
	select {
	case c := <-got:
		t.Fatalf("read %q while the receive vector was running", c)
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	if c := <-got; c != 'a' {
		t.Fatalf("got %q want 'a'", c)
	}
	if b.GPIO.Line(flowPin).Get() {
		t.Fatalf("RTS still high with an empty RX FIFO")
	}
}

func TestLoopbackRejectsBadFrame(t *testing.T) {
	_, err := runLoopback(context.Background(), loopbackConfig{Clock: 96000000, Baud: 9600, Frame: "9N1"}, []byte("x"))
	if err == nil {
		t.Fatalf("9N1 accepted")
	}
}

func TestBaudCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"baud", "--clock", "100000000", "115200"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if s := out.String(); !strings.Contains(s, "100000000") || !strings.Contains(s, "31") {
		t.Fatalf("output:\n%s", s)
	}
}

func TestDecodeSentences(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	sentences := append([]string{"$GPGSV,3,1,09,07,14,317,22*7F"}, sampleSentences...)
	fixes, err := decodeSentences(ctx, loopbackConfig{Clock: 96000000, Baud: 9600, Frame: "8N1"}, sentences)
	if err != nil {
		t.Fatalf("decodeSentences: %v", err)
	}
	if len(fixes) != 3 {
		t.Fatalf("got %d fixes want 3", len(fixes))
	}
	if fixes[0].Err == nil {
		t.Fatalf("GSV sentence parsed")
	}
	gga := fixes[1]
	if gga.Err != nil || !gga.Fix.Valid || gga.Fix.Altitude != 255 || gga.Fix.Satellites != 13 {
		t.Fatalf("GGA: %+v", gga)
	}
	if gga.Fix.Latitude < 41.98 || gga.Fix.Latitude > 41.99 {
		t.Fatalf("GGA latitude %v", gga.Fix.Latitude)
	}
	rmc := fixes[2]
	if rmc.Err != nil || !rmc.Fix.Valid || rmc.Fix.Time.Year() != 2022 || rmc.Fix.Longitude > -114 {
		t.Fatalf("RMC: %+v", rmc)
	}
	if out := renderFixes(fixes); !strings.Contains(out, "GGA") || !strings.Contains(out, "error") {
		t.Fatalf("table:\n%s", out)
	}
}

package main

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jangala-dev/tinygo-lpcuart/lpcuart"
	"github.com/jangala-dev/tinygo-lpcuart/lpcuart/sim"
)

// Flow lines of the loopback: the receiver's RTS output and the sender's CTS
// input share one simulated pin, so the receiver throttles the sender.
var flowPin = lpcuart.P(1, 8)

// loopbackConfig describes one session. UART0 sends, UART2 receives.
type loopbackConfig struct {
	Clock uint32
	Baud  uint32
	Frame string
	Flow  bool
}

// loopbackResult summarises a session.
type loopbackResult struct {
	Received []byte
	Throttle int // RTS edges seen on the flow line
}

// runLoopback sends data from UART0 to UART2 of a simulated board. One
// goroutine writes, one reads, and a third plays the wire, moving one
// character at a time into the receiver's RX FIFO and raising its interrupt.
func runLoopback(ctx context.Context, cfg loopbackConfig, data []byte) (loopbackResult, error) {
	d, s, p, err := parseFrame(cfg.Frame)
	if err != nil {
		return loopbackResult{}, err
	}
	b := sim.NewBoard(cfg.Clock)
	ctl := lpcuart.NewController(b.Hardware(nil))

	tx, err := ctl.Open(lpcuart.P0_2, lpcuart.P0_3)
	if err != nil {
		return loopbackResult{}, err
	}
	rx, err := ctl.Open(lpcuart.P0_10, lpcuart.P0_11)
	if err != nil {
		return loopbackResult{}, err
	}

	txCfg := lpcuart.Config{BaudRate: cfg.Baud, DataBits: d, StopBits: s, Parity: p}
	rxCfg := txCfg
	if cfg.Flow {
		txCfg.FlowControl, txCfg.RTS, txCfg.CTS = lpcuart.FlowControlCTS, lpcuart.NC, flowPin
		rxCfg.FlowControl, rxCfg.RTS, rxCfg.CTS = lpcuart.FlowControlRTS, flowPin, lpcuart.NC
	}
	if err := tx.Configure(txCfg); err != nil {
		return loopbackResult{}, err
	}
	if err := rx.Configure(rxCfg); err != nil {
		return loopbackResult{}, err
	}

	port := &rxPort{u: rx, blk: b.UART[2], raise: func() { b.Raise(2) }}

	g, gctx := errgroup.WithContext(ctx)
	wireCtx, stopWire := context.WithCancel(gctx)
	defer stopWire()

	g.Go(func() error {
		wire(wireCtx, b.UART[0], port)
		return nil
	})
	g.Go(func() error {
		for _, c := range data {
			if err := tx.PutcContext(gctx, c); err != nil {
				return fmt.Errorf("send: %w", err)
			}
		}
		return nil
	})

	got := make([]byte, 0, len(data))
	g.Go(func() error {
		defer stopWire()
		for len(got) < len(data) {
			c, err := port.getc(gctx)
			if err != nil {
				return fmt.Errorf("receive after %d bytes: %w", len(got), err)
			}
			got = append(got, c)
		}
		return nil
	})

	err = g.Wait()
	res := loopbackResult{Received: got, Throttle: b.GPIO.Line(flowPin).Edges() / 2}
	return res, err
}

// rxPort is the receiving end of the wire. The UART's vector and its
// foreground reads run under one lock, as they would on a single core where
// the vector preempts the reader but never interleaves with it.
type rxPort struct {
	mu    sync.Mutex
	u     *lpcuart.UART
	blk   *sim.UARTBlock
	raise func()
}

// deliver puts c in the RX FIFO and runs the receive vector. It reports false
// when the FIFO is full.
func (p *rxPort) deliver(c byte) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.blk.RxLen() >= 16 {
		return false
	}
	p.blk.Inject(c)
	p.raise()
	return true
}

// getc polls for a character until ctx ends.
func (p *rxPort) getc(ctx context.Context) (byte, error) {
	for {
		p.mu.Lock()
		c, err := p.u.TryGetc()
		p.mu.Unlock()
		if err == nil {
			return c, nil
		}
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(20 * time.Microsecond):
		}
	}
}

// wire moves characters from the sender's TX FIFO to to until ctx ends. It
// only shifts when the receiver has room.
func wire(ctx context.Context, from *sim.UARTBlock, to *rxPort) {
	for ctx.Err() == nil {
		if to.blk.RxLen() < 16 {
			if c := from.Shift(1); len(c) > 0 {
				for !to.deliver(c[0]) && ctx.Err() == nil {
					time.Sleep(20 * time.Microsecond)
				}
				continue
			}
		}
		time.Sleep(20 * time.Microsecond)
	}
}

// loopbackCmd represents the loopback command
var loopbackCmd = &cobra.Command{
	Use:   "loopback [data]",
	Short: "Send data between two simulated UARTs",
	Long: `Open UART0 and UART2 on a simulated LPC176x, configure both the same way
and send data from UART0 to UART2 through a simulated wire.

With --flow rtscts the receiver's software RTS drives the sender's software
CTS, so the sender is held off until each character is read.

Examples:
  lpcuart loopback "hello"
  lpcuart loopback --baud 115200 --frame 7E1 --flow rtscts "hello"`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		baud, _ := cmd.Flags().GetUint32("baud")
		frame, _ := cmd.Flags().GetString("frame")
		flow, _ := cmd.Flags().GetString("flow")
		timeout, _ := cmd.Flags().GetDuration("timeout")

		data := []byte("The quick brown fox jumps over the lazy dog")
		if len(args) == 1 {
			data = []byte(args[0])
		}

		cfg := loopbackConfig{Clock: coreClock(), Baud: baud, Frame: frame}
		switch strings.ToLower(flow) {
		case "none", "":
		case "rtscts":
			cfg.Flow = true
		default:
			return fmt.Errorf("unknown flow control %q (want none or rtscts)", flow)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		res, err := runLoopback(ctx, cfg, data)
		out := cmd.OutOrStdout()
		if err != nil {
			fmt.Fprintln(out, errStyle.Render("FAIL"), err)
			return err
		}
		if !bytes.Equal(res.Received, data) {
			fmt.Fprintln(out, errStyle.Render("FAIL"), fmt.Sprintf("sent %q, received %q", data, res.Received))
			return fmt.Errorf("loopback mismatch")
		}
		fmt.Fprintln(out, okStyle.Render("OK"), fmt.Sprintf("%d bytes at %d baud %s", len(data), baud, strings.ToUpper(frame)))
		if cfg.Flow {
			fmt.Fprintf(out, "   receiver raised RTS %d times\n", res.Throttle)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loopbackCmd)

	loopbackCmd.Flags().Uint32P("baud", "b", 115200, "Baud rate")
	loopbackCmd.Flags().StringP("frame", "F", "8N1", "Frame format, e.g. 8N1, 7E2")
	loopbackCmd.Flags().StringP("flow", "f", "none", "Flow control: none, rtscts")
	loopbackCmd.Flags().DurationP("timeout", "t", 5*time.Second, "Session timeout")
}

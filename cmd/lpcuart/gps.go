package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"tinygo.org/x/drivers/gps"
)

// sampleSentences are sent when the gps command gets no arguments.
var sampleSentences = []string{
	"$GPGGA,115739.00,4158.8441367,N,09147.4416929,W,4,13,0.9,255.747,M,-32.00,M,01,0000*6E",
	"$GPRMC,203522.00,A,5109.0262308,N,11401.8407342,W,0.004,133.4,010622,0.0,E,D*2B",
}

// decodedFix is one received sentence and what the parser made of it.
type decodedFix struct {
	Sentence string
	Fix      gps.Fix
	Err      error
}

// decodeSentences sends sentences, CRLF terminated, from UART0 to UART2 of a
// simulated board and parses each received line as NMEA.
func decodeSentences(ctx context.Context, cfg loopbackConfig, sentences []string) ([]decodedFix, error) {
	payload := strings.Join(sentences, "\r\n") + "\r\n"
	res, err := runLoopback(ctx, cfg, []byte(payload))
	if err != nil {
		return nil, err
	}
	p := gps.NewParser()
	var out []decodedFix
	for _, line := range strings.Split(string(res.Received), "\r\n") {
		if line == "" {
			continue
		}
		fix, err := p.Parse(line)
		out = append(out, decodedFix{Sentence: line, Fix: fix, Err: err})
	}
	return out, nil
}

func renderFixes(fixes []decodedFix) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("TYPE", "VALID", "TIME", "LAT", "LON", "ALT", "SATS").
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return s.Bold(true)
			}
			if col > 2 {
				s = s.Align(lipgloss.Right)
			}
			return s
		})
	for _, d := range fixes {
		typ := "?"
		if len(d.Sentence) >= 6 {
			typ = d.Sentence[3:6]
		}
		if d.Err != nil {
			t.Row(typ, errStyle.Render("error"), "-", "-", "-", "-", "-")
			continue
		}
		f := d.Fix
		t.Row(
			typ,
			strconv.FormatBool(f.Valid),
			f.Time.Format(time.TimeOnly),
			fmt.Sprintf("%.6f", f.Latitude),
			fmt.Sprintf("%.6f", f.Longitude),
			strconv.Itoa(int(f.Altitude)),
			strconv.Itoa(int(f.Satellites)),
		)
	}
	return t.String()
}

// gpsCmd represents the gps command
var gpsCmd = &cobra.Command{
	Use:   "gps [sentence]...",
	Short: "Send NMEA sentences through simulated UARTs and decode the fixes",
	Long: `Send NMEA sentences from UART0 to UART2 on a simulated LPC176x, the way a
GPS receiver would feed the board, and decode each received line.

Without arguments a GGA and an RMC sample are sent.

Examples:
  lpcuart gps
  lpcuart gps --baud 9600 '$GPGLL,3751.65,S,14507.36,E,225444,A*77'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		baud, _ := cmd.Flags().GetUint32("baud")
		timeout, _ := cmd.Flags().GetDuration("timeout")

		sentences := sampleSentences
		if len(args) > 0 {
			sentences = args
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		fixes, err := decodeSentences(ctx, loopbackConfig{Clock: coreClock(), Baud: baud, Frame: "8N1"}, sentences)
		if err != nil {
			fmt.Fprintln(cmd.OutOrStdout(), errStyle.Render("FAIL"), err)
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderFixes(fixes))
		for _, d := range fixes {
			if d.Err != nil {
				fmt.Fprintln(cmd.OutOrStdout(), errStyle.Render("parse"), d.Err)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(gpsCmd)

	gpsCmd.Flags().Uint32P("baud", "b", 9600, "Baud rate")
	gpsCmd.Flags().DurationP("timeout", "t", 5*time.Second, "Session timeout")
}

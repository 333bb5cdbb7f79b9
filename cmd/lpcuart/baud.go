package main

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/jangala-dev/tinygo-lpcuart/lpcuart"
)

// standardRates are the rates listed by the table command.
var standardRates = []uint32{1200, 2400, 4800, 9600, 19200, 38400, 57600, 115200, 230400, 460800, 921600}

// divisorRow is one line of divider output.
type divisorRow struct {
	Baud   uint32
	Config lpcuart.ClockConfig
	Actual float32
	Err    error
}

// ErrorPercent is the signed deviation of Actual from Baud.
func (r divisorRow) ErrorPercent() float64 {
	if r.Baud == 0 {
		return 0
	}
	return (float64(r.Actual) - float64(r.Baud)) / float64(r.Baud) * 100
}

func computeRows(clock uint32, rates []uint32) []divisorRow {
	rows := make([]divisorRow, 0, len(rates))
	for _, br := range rates {
		cfg, err := lpcuart.CalcClockConfig(clock, br)
		rows = append(rows, divisorRow{Baud: br, Config: cfg, Actual: cfg.Baud(clock), Err: err})
	}
	return rows
}

func renderRows(clock uint32, rows []divisorRow) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("BAUD", "DL", "MULVAL", "DIVADDVAL", "ACTUAL", "ERROR").
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return s.Bold(true)
			}
			if col > 0 {
				s = s.Align(lipgloss.Right)
			}
			return s
		})
	for _, r := range rows {
		if r.Err != nil {
			t.Row(strconv.FormatUint(uint64(r.Baud), 10), "-", "-", "-", "-", errStyle.Render("unroutable"))
			continue
		}
		t.Row(
			strconv.FormatUint(uint64(r.Baud), 10),
			strconv.Itoa(int(r.Config.Divisor)),
			strconv.Itoa(int(r.Config.MulVal)),
			strconv.Itoa(int(r.Config.DivAddVal)),
			fmt.Sprintf("%.1f", r.Actual),
			fmt.Sprintf("%+.3f%%", r.ErrorPercent()),
		)
	}
	return titleStyle.Render(fmt.Sprintf("PCLK %d Hz", clock)) + "\n" + t.String()
}

func parseRates(args []string) ([]uint32, error) {
	rates := make([]uint32, 0, len(args))
	for _, a := range args {
		v, err := strconv.ParseUint(a, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid baud rate %q: %w", a, err)
		}
		rates = append(rates, uint32(v))
	}
	return rates, nil
}

// baudCmd represents the baud command
var baudCmd = &cobra.Command{
	Use:   "baud <rate>...",
	Short: "Compute divisor latch and fractional divider for baud rates",
	Long: `Compute DLM:DLL, MULVAL and DIVADDVAL for each rate at the configured clock.

Examples:
  lpcuart baud 115200
  lpcuart baud 9600 57600 --clock 100000000`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rates, err := parseRates(args)
		if err != nil {
			return err
		}
		clock := coreClock()
		fmt.Fprintln(cmd.OutOrStdout(), renderRows(clock, computeRows(clock, rates)))
		return nil
	},
}

// tableCmd represents the table command
var tableCmd = &cobra.Command{
	Use:   "table",
	Short: "List dividers for the standard baud rates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		clock := coreClock()
		fmt.Fprintln(cmd.OutOrStdout(), renderRows(clock, computeRows(clock, standardRates)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(baudCmd)
	rootCmd.AddCommand(tableCmd)
}

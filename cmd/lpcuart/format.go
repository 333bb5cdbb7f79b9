package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jangala-dev/tinygo-lpcuart/lpcuart"
)

var parityLetters = map[byte]lpcuart.Parity{
	'N': lpcuart.ParityNone,
	'O': lpcuart.ParityOdd,
	'E': lpcuart.ParityEven,
	'M': lpcuart.ParityForced1,
	'S': lpcuart.ParityForced0,
}

var parityNames = map[lpcuart.Parity]string{
	lpcuart.ParityNone:    "none",
	lpcuart.ParityOdd:     "odd",
	lpcuart.ParityEven:    "even",
	lpcuart.ParityForced1: "mark",
	lpcuart.ParityForced0: "space",
}

// parseFrame parses the usual "8N1" notation. Parity letters are N, O, E,
// M (forced 1) and S (forced 0). Range checks are left to EncodeFormat.
func parseFrame(s string) (dataBits, stopBits uint8, parity lpcuart.Parity, err error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) != 3 || s[0] < '0' || s[0] > '9' || s[2] < '0' || s[2] > '9' {
		return 0, 0, 0, fmt.Errorf("frame %q: want <data><parity><stop>, e.g. 8N1", s)
	}
	p, ok := parityLetters[s[1]]
	if !ok {
		return 0, 0, 0, fmt.Errorf("frame %q: unknown parity %q", s, s[1])
	}
	return s[0] - '0', s[2] - '0', p, nil
}

func describeLCR(lcr lpcuart.LineControl) string {
	f := lpcuart.DecodeFormat(lcr)
	return fmt.Sprintf("LCR=0x%02X  data=%d stop=%d parity=%s", uint32(lcr), f.DataBits, f.StopBits, parityNames[f.Parity])
}

// formatCmd represents the format command
var formatCmd = &cobra.Command{
	Use:   "format <frame>",
	Short: "Encode a frame format such as 8N1 into an LCR value",
	Long: `Encode a frame format into the UART line control register value.

Parity letters: N none, O odd, E even, M forced 1 (mark), S forced 0 (space).

Examples:
  lpcuart format 8N1
  lpcuart format 7E2`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, s, p, err := parseFrame(args[0])
		if err != nil {
			return err
		}
		lcr, err := lpcuart.EncodeFormat(d, s, p)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), describeLCR(lcr))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(formatCmd)
}

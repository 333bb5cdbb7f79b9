package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultClock = 96000000

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "lpcuart",
	Short: "LPC176x UART divider, format and loopback tool",
	Long: `lpcuart works out LPC176x UART register settings on the host.

The core clock comes from --clock, the LPCUART_CLOCK environment variable or
the "clock" key of a config file, in that order.

Examples:
  lpcuart baud 115200
  lpcuart table --clock 100000000
  lpcuart format 7E2
  lpcuart loopback --baud 115200 --flow rtscts "hello"`,
	SilenceUsage: true,
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml, toml or json)")
	rootCmd.PersistentFlags().Uint32("clock", defaultClock, "UART peripheral clock in Hz (PCLK = CCLK)")
	_ = viper.BindPFlag("clock", rootCmd.PersistentFlags().Lookup("clock"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "Error reading config %s: %v\n", cfgFile, err)
			os.Exit(1)
		}
	}
	viper.SetEnvPrefix("lpcuart")
	viper.AutomaticEnv()
}

// coreClock returns the configured clock in Hz.
func coreClock() uint32 {
	if c := viper.GetUint32("clock"); c != 0 {
		return c
	}
	return defaultClock
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
)

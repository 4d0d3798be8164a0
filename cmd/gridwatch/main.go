package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "gridwatch",
	Short: "gridwatch - grid load tracker for energy-aware charging",
	Long: `gridwatch ingests hourly regional grid load from the EIA API into a local
database and serves current status, recent history and battery telemetry.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

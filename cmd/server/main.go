package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	port    string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "epidash",
	Short: "Epidash: COVID-19 vs Nipah outbreak comparison dashboard API",
	Long: `Epidash ingests an OWID-style COVID-19 time series and a Nipah outbreak
table and serves the derived dashboard views (KPIs, trends, heatmap, maps)
over a JSON API.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./epidash.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging and gin debug mode")
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	rootCmd    = &cobra.Command{
		Use:   "finishline",
		Short: "Finishline - Race timing data entry console",
		Long: `Finishline records race finishes across multiple categories.
It runs per-category stopwatches, resolves bib numbers against loaded
rosters, keeps a correctable ledger of finish entries, and exports
ranked results to a spreadsheet.`,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

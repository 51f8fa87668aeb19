package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "swing-market",
	Short: "A CLI for managing the swing market analysis services",
	Long:  `Swing Market runs scheduled collection, regime classification, and event gating for the Japanese equity market.`,
}

func main() {

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Whoops. There was an error while executing your CLI '%s'", err)
		os.Exit(1)
	}
}

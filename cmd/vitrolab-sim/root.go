package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "vitrolab-sim",
	Short: "Virtual cell culture lab",
	Long:  "vitrolab-sim runs stochastic cell culture experiments and emits detector-filtered measurement rows.",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(materialsCmd)
	rootCmd.AddCommand(planCmd)
}

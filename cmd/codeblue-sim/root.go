package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "codeblue-sim",
	Short: "Code Blue training simulation toolkit",
	Long:  "codeblue-sim runs procedural patient scenarios, replays complication logs and manages the win streak.",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(streakCmd)
	rootCmd.AddCommand(dashboardCmd)
}

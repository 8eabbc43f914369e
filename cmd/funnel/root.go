package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "funnel",
	Short: "Funnel is a branching-scene engine for interactive marketing flows",
	Long: `Funnel walks visitors through an authored scene graph. Choices carry
weighted scores toward a set of paths; the highest score decides where the
visitor lands.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("content", "c", "funnel.yaml", "Path to the funnel content file")
}

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	funnel "github.com/prodyssey/vibe-cto-dot-ai-sub000"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the scene graph for consistency",
	Long:  `Crawls the graph from the entry scene and reports dangling references and unreachable scenes.`,
	Run: func(cmd *cobra.Command, args []string) {
		contentPath, _ := cmd.Flags().GetString("content")
		if !cmd.Flags().Changed("content") && len(args) > 0 {
			contentPath = args[0]
		}

		eng, err := funnel.Open(context.Background(), contentPath)
		if err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
		defer eng.Close()

		report := eng.Validate()
		for _, missing := range report.MissingTargets {
			fmt.Printf("dangling reference: %s\n", missing)
		}
		for _, orphan := range report.Unreachable {
			fmt.Printf("unreachable scene: %s\n", orphan)
		}
		if !report.OK() {
			os.Exit(1)
		}
		fmt.Println("Graph is valid! ✅")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

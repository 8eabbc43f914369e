package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	funnel "github.com/prodyssey/vibe-cto-dot-ai-sub000"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the scene graph visualization",
	Long:  `Outputs a Mermaid diagram (graph TD) of the funnel's scene graph.`,
	Run: func(cmd *cobra.Command, args []string) {
		contentPath, _ := cmd.Flags().GetString("content")
		if !cmd.Flags().Changed("content") && len(args) > 0 {
			contentPath = args[0]
		}

		eng, err := funnel.Open(context.Background(), contentPath)
		if err != nil {
			fmt.Printf("Error loading content: %v\n", err)
			os.Exit(1)
		}
		defer eng.Close()

		fmt.Print(eng.Graph(nil))
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/prodyssey/vibe-cto-dot-ai-sub000/internal/cli"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Play the funnel interactively in the terminal",
	Long:  `Walks the scene graph in the terminal. Give --session to persist progress and resume later.`,
	Run: func(cmd *cobra.Command, args []string) {
		contentPath, _ := cmd.Flags().GetString("content")
		if !cmd.Flags().Changed("content") && len(args) > 0 {
			contentPath = args[0]
		}
		sessionID, _ := cmd.Flags().GetString("session")
		playerName, _ := cmd.Flags().GetString("name")
		fresh, _ := cmd.Flags().GetBool("fresh")
		debug, _ := cmd.Flags().GetBool("debug")
		plain, _ := cmd.Flags().GetBool("plain")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		err := cli.Play(ctx, cli.PlayOptions{
			ContentPath: contentPath,
			SessionID:   sessionID,
			PlayerName:  playerName,
			Fresh:       fresh,
			Debug:       debug,
			Plain:       plain,
		})
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("session", "s", "", "Session ID to persist and resume progress")
	runCmd.Flags().String("name", "", "Visitor display name")
	runCmd.Flags().Bool("fresh", false, "Discard any saved progress for the session")
	runCmd.Flags().Bool("debug", false, "Enable debug logging")
	runCmd.Flags().Bool("plain", false, "Plain text output (no colors or markdown rendering)")

	// Make 'run' the default if no command is provided
	rootCmd.Run = runCmd.Run
}

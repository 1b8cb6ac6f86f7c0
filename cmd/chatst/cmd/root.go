package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "chatst",
	Short: "Chat presence and message routing server",
	Long: `chatst runs the real-time chat core: a WebSocket transport with
presence tracking, direct/room/broadcast message routing, and the user
and group directory API.

Use "chatst [command] --help" for more information about a specific command.`,
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

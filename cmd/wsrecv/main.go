// Wsrecv is a WebSocket server that accepts RFC 6455 connections from
// browser clients and logs every message they send.
//
// It validates the opening handshake against an origin allow-list, decodes
// frames incrementally and reassembles fragmented messages. Messages can be
// captured to JSON Lines files for later analysis.
//
// Usage:
//
//	wsrecv server [flags]
//	wsrecv send [flags] <message>...
//	wsrecv discover [flags]
//
// See 'wsrecv --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/wsrecv/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "wsrecv",
	Short: "Receive-only WebSocket server",
	Long: `A standalone WebSocket server that accepts connections from browser clients
and logs the messages they send.

The server writes the HTTP 101 response itself and parses frames with an
incremental decoder, so partial frames, coalesced frames and fragmented
messages are all handled.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "wsrecv %s\n", version.Full())
	},
}

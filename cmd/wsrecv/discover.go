package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/wsrecv/internal/discovery"
	"github.com/muurk/wsrecv/internal/ui"
)

var discoverTimeout time.Duration

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find WebSocket servers on the local network",
	Long: `Browse mDNS/DNS-SD for _websocket._tcp services and list their URLs.

Servers started with 'wsrecv server --advertise' appear here.`,
	Example: `  # Browse for 5 seconds (default)
  wsrecv discover

  # Longer browse for slow networks
  wsrecv discover --timeout 15s`,
	RunE: runDiscover,
}

func init() {
	discoverCmd.Flags().DurationVar(&discoverTimeout, "timeout", discovery.DefaultScanTimeout, "Scan timeout")
}

func runDiscover(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Browsing for %s services (timeout: %s)...\n\n", discovery.ServiceType, discoverTimeout)

	scanner := discovery.NewScanner()
	scanner.Timeout = discoverTimeout

	endpoints, err := scanner.Scan(cmd.Context())
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if len(endpoints) == 0 {
		fmt.Fprintln(out, "No servers found.")
		fmt.Fprintln(out, "\nTroubleshooting:")
		fmt.Fprintln(out, "  - Start the server with --advertise")
		fmt.Fprintln(out, "  - Check that multicast traffic is allowed on this network")
		fmt.Fprintln(out, "  - Try increasing --timeout")
		return nil
	}

	fmt.Fprintf(out, "Found %d server(s):\n\n", len(endpoints))
	for i, e := range endpoints {
		fmt.Fprintf(out, "%d. %s\n", i+1, e.Instance)
		fmt.Fprintf(out, "   URL:   %s\n", ui.EndpointStyle.Render(e.URL()))
		fmt.Fprintf(out, "   Host:  %s\n", e.Hostname)
		if len(e.Metadata) > 0 {
			fmt.Fprintf(out, "   TXT:   %v\n", e.Metadata)
		}
		fmt.Fprintln(out)
	}

	return nil
}

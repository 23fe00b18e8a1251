package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show server status",
	Args:  cobra.NoArgs,
	RunE:  runStatusCmd,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatusCmd(cmd *cobra.Command, _ []string) error {
	client := NewClient(serverURL)
	status, err := client.Status()
	if err != nil {
		return fmt.Errorf("status check failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, status)
	}

	printStatus(out, serverURL, status)
	return nil
}

func printStatus(w io.Writer, server string, s *StatusResponse) {
	fmt.Fprintf(w, "mediagrabd %s | Server: %s | Status: %s\n\n", s.Version, server, s.Status)
	fmt.Fprintf(w, "  Extractor:  %s\n", s.Extractor)
	fmt.Fprintf(w, "  Platforms:  %d\n", s.Platforms)
	if s.Cache.Enabled {
		fmt.Fprintf(w, "  Cache:      %d entries\n", s.Cache.Entries)
	} else {
		fmt.Fprintln(w, "  Cache:      disabled")
	}
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var platformsCmd = &cobra.Command{
	Use:   "platforms",
	Short: "List the domains the server accepts",
	Args:  cobra.NoArgs,
	RunE:  runPlatformsCmd,
}

func init() {
	rootCmd.AddCommand(platformsCmd)
}

func runPlatformsCmd(cmd *cobra.Command, _ []string) error {
	client := NewClient(serverURL)
	resp, err := client.Platforms()
	if err != nil {
		return fmt.Errorf("platforms failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, resp)
	}

	for _, p := range resp.Platforms {
		fmt.Fprintf(out, "%-18s %s\n", p.Domain, p.Name)
	}
	return nil
}

package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info <url>",
	Short: "List the formats a video is offered in",
	Long: `Probe a URL on the server and list the available formats.

The FORMAT column is what 'mediagrab download --format-id' expects.

Examples:
  mediagrab info https://www.youtube.com/watch?v=dQw4w9WgXcQ
  mediagrab info --json https://vimeo.com/76979871`,
	Args: cobra.ExactArgs(1),
	RunE: runInfoCmd,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfoCmd(cmd *cobra.Command, args []string) error {
	client := NewClient(serverURL)
	info, err := client.Info(args[0])
	if err != nil {
		return fmt.Errorf("info failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, info)
	}

	printInfo(out, info)
	return nil
}

func printInfo(w io.Writer, info *InfoResponse) {
	fmt.Fprintf(w, "%s\n", info.Title)
	if info.Uploader != "" {
		fmt.Fprintf(w, "  Uploader: %s\n", info.Uploader)
	}
	if info.Duration > 0 {
		fmt.Fprintf(w, "  Duration: %s\n", time.Duration(info.Duration*float64(time.Second)).Round(time.Second))
	}
	fmt.Fprintf(w, "  Platform: %s\n\n", info.Platform)

	if len(info.Offers) == 0 {
		fmt.Fprintln(w, "No downloadable formats found.")
		return
	}

	fmt.Fprintf(w, "%-18s %-8s %-10s %-10s %s\n", "QUALITY", "CATEGORY", "SIZE", "FORMAT", "NOTE")
	for _, o := range info.Offers {
		note := ""
		if o.NeedsMerge {
			note = "merged with best audio"
		}
		fmt.Fprintf(w, "%-18s %-8s %-10s %-10s %s\n", o.Quality, o.Category, o.SizeLabel, o.FormatID, note)
	}
}

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var downloadCmd = &cobra.Command{
	Use:   "download <url>",
	Short: "Download a video or its audio track",
	Long: `Ask the server to fetch a format and save the result locally.

Without --format-id the best available quality is fetched. --quality
accepts "best", "worst" or a height such as "720p".

Examples:
  mediagrab download https://youtu.be/dQw4w9WgXcQ
  mediagrab download --format-id 137 --quality 1080p https://youtu.be/dQw4w9WgXcQ
  mediagrab download --audio -o ~/Music https://youtu.be/dQw4w9WgXcQ`,
	Args: cobra.ExactArgs(1),
	RunE: runDownloadCmd,
}

func init() {
	rootCmd.AddCommand(downloadCmd)
	downloadCmd.Flags().String("format-id", "", "Format ID from 'mediagrab info'")
	downloadCmd.Flags().String("quality", "", "Quality: best, worst or <N>p")
	downloadCmd.Flags().Bool("audio", false, "Download audio only")
	downloadCmd.Flags().Bool("combined", false, "The format already carries audio")
	downloadCmd.Flags().StringP("output", "o", ".", "Directory to save into")
	downloadCmd.Flags().String("name", "", "File name (default: name suggested by the server)")
}

func runDownloadCmd(cmd *cobra.Command, args []string) error {
	formatID, _ := cmd.Flags().GetString("format-id")
	quality, _ := cmd.Flags().GetString("quality")
	audio, _ := cmd.Flags().GetBool("audio")
	combined, _ := cmd.Flags().GetBool("combined")
	outDir, _ := cmd.Flags().GetString("output")
	name, _ := cmd.Flags().GetString("name")

	req := MediaRequest{
		URL:      args[0],
		FormatID: formatID,
		Quality:  quality,
		Combined: combined,
	}
	if audio {
		req.Kind = "audio"
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	tmp, err := os.CreateTemp(outDir, ".mediagrab-*.part")
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	client := NewClient(serverURL)
	suggested, n, err := client.Download(req, tmp)
	if cerr := tmp.Close(); err == nil && cerr != nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}

	if name == "" {
		name = suggested
	}
	name = filepath.Base(name)
	if name == "." || name == string(filepath.Separator) || name == "" {
		name = "download"
	}

	dest := filepath.Join(outDir, name)
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return fmt.Errorf("save file: %w", err)
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, map[string]any{"path": dest, "bytes": n})
	}
	fmt.Fprintf(out, "Saved %s (%s)\n", dest, humanize.Bytes(uint64(n)))
	return nil
}

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vmunix/mediagrab/internal/urlcheck"
)

var checkCmd = &cobra.Command{
	Use:   "check <url>",
	Short: "Check a URL against the supported platforms (local, no server needed)",
	Long: `Check whether a URL points at a supported platform.

Runs locally with the built-in platform list; no server is contacted.

Examples:
  mediagrab check https://youtu.be/dQw4w9WgXcQ
  mediagrab check --domain odysee.com https://odysee.com/@x/y`,
	Args: cobra.ExactArgs(1),
	RunE: runCheckCmd,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringSlice("domain", nil, "Additional domain to accept (repeatable)")
}

func runCheckCmd(cmd *cobra.Command, args []string) error {
	extra, _ := cmd.Flags().GetStringSlice("domain")
	res := urlcheck.New(extra...).Check(args[0])
	out := cmd.OutOrStdout()

	if jsonOutput {
		if err := printJSON(out, ValidateResponse{
			OK:       res.OK,
			Message:  res.Message,
			URL:      res.URL,
			Platform: res.Platform,
			Domain:   res.Domain,
			Host:     res.Host,
		}); err != nil {
			return err
		}
	} else if res.OK {
		fmt.Fprintf(out, "%s (%s)\n", res.Message, res.Host)
	}

	if !res.OK {
		return errors.New(res.Message)
	}
	return nil
}

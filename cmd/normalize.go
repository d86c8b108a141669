package cmd

import (
	"fmt"
	"os"
	"strings"

	"protestlens/internal/ingest"
	"protestlens/internal/model"

	"github.com/spf13/cobra"
)

var normalizePlatform string

// normalizeFileCmd normalizes one raw export and prints what was parsed,
// for checking a field mapping against a fresh scrape.
var normalizeFileCmd = &cobra.Command{
	Use:   "normalize-file <path>",
	Short: "Debug: normalize one raw export and print the canonical posts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		platform := model.Platform(strings.ToLower(normalizePlatform))
		if !platform.Valid() {
			return fmt.Errorf("unknown platform: %s", normalizePlatform)
		}
		n, err := ingest.NewNormalizer(platform, "")
		if err != nil {
			return err
		}
		records, err := ingest.ReadFile(args[0])
		if err != nil {
			return err
		}
		res := n.Normalize(records)
		for _, p := range res.Posts {
			fmt.Fprintf(os.Stdout, "%s  @%-20s %s  #%d hashtags  %q\n",
				p.Timestamp.Format("2006-01-02 15:04"), p.Author, p.ID[:12], len(p.Hashtags), truncate(p.Text, 60))
		}
		for _, d := range res.Dropped {
			fmt.Fprintf(os.Stdout, "DROPPED %s: %v\n", d.SourceID, d.Err)
		}
		fmt.Fprintf(os.Stdout, "in=%d out=%d dropped=%d\n", res.Report.In, res.Report.Out, res.Report.Dropped)
		return nil
	},
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}

func init() {
	rootCmd.AddCommand(normalizeFileCmd)
	normalizeFileCmd.Flags().StringVarP(&normalizePlatform, "platform", "p", "twitter", "platform of the raw file (tiktok or twitter)")
}

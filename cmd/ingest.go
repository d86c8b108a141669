package cmd

import (
	"context"
	"fmt"

	"protestlens/internal/archive"
	"protestlens/internal/pipeline"

	"github.com/spf13/cobra"
)

// ingestCmd normalizes the configured inputs into the sqlite archive without
// running the analysis stages.
var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Normalize configured inputs into the archive",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if err := cfg.Validate(); err != nil {
			return err
		}
		if cfg.Archive.Path == "" {
			return &pipeline.ConfigurationError{Key: "archive.path", Reason: "required for ingest"}
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		store, err := archive.Open(cfg.Archive.Path)
		if err != nil {
			return err
		}
		defer store.Close()

		posts, err := ingestInputs(ctx, cfg, store)
		if err != nil {
			return err
		}
		total, err := store.CountPosts(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Ingested %d posts (%d archived total) into %s\n", len(posts), total, cfg.Archive.Path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

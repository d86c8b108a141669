package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"protestlens/internal/archive"
	"protestlens/internal/config"
	"protestlens/internal/export"
	"protestlens/internal/graph"
	"protestlens/internal/ingest"
	"protestlens/internal/model"
	"protestlens/internal/pipeline"
	"protestlens/internal/timeseries"

	"github.com/spf13/cobra"
)

var analyzeFromArchive bool

// analyzeCmd runs the full pipeline: ingest -> temporal signals -> influence
// graph -> aggregated CSV export.
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the full analysis pipeline and write the export table",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if err := cfg.Validate(); err != nil {
			return err
		}
		width, err := cfg.BucketWidth()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		// Stage 1: ingestion.
		var store *archive.Store
		if cfg.Archive.Path != "" {
			store, err = archive.Open(cfg.Archive.Path)
			if err != nil {
				return err
			}
			defer store.Close()
		}

		var posts []model.Post
		if analyzeFromArchive {
			if store == nil {
				return &pipeline.ConfigurationError{Key: "archive.path", Reason: "required for --from-archive"}
			}
			posts, err = store.LoadPosts(ctx)
			if err != nil {
				return err
			}
			slog.Info("analyze: loaded archive", "posts", len(posts))
		} else {
			posts, err = ingestInputs(ctx, cfg, store)
			if err != nil {
				return err
			}
		}
		if len(posts) == 0 {
			return &pipeline.EmptyInputError{Stage: "ingest"}
		}

		// Topic relevance filter, between ingestion and signal extraction.
		// The archive keeps the full corpus; only the analysis narrows.
		if tf := ingest.NewTopicFilter(cfg.Filter.Hashtags, cfg.Filter.Keywords); !tf.Empty() {
			var fReport pipeline.StageReport
			posts, fReport = tf.Apply(posts)
			slog.Info("analyze: topic filter applied",
				"in", fReport.In, "out", fReport.Out, "dropped", fReport.Dropped)
			if len(posts) == 0 {
				return &pipeline.EmptyInputError{Stage: "filter"}
			}
		}

		// Stage 2: temporal signals.
		scorer, closeScorer, err := buildScorer(cfg)
		if err != nil {
			return err
		}
		defer closeScorer()

		ex := &timeseries.Extractor{
			Scorer:      scorer,
			Width:       width,
			TopHashtags: cfg.Export.TopHashtags,
			Workers:     cfg.Workers,
		}
		buckets, scored, sigReport, err := ex.Extract(ctx, posts)
		if err != nil {
			return fmt.Errorf("signals stage (in=%d): %w", sigReport.In, err)
		}
		slog.Info("analyze: signals extracted",
			"posts", sigReport.In, "deduplicated", sigReport.Dropped, "buckets", len(buckets), "scorer", scorer.Name())

		deduped := make([]model.Post, len(scored))
		for i, s := range scored {
			deduped[i] = s.Post
		}

		// Stage 3: influence graph. A disconnected input aborts only this
		// stage; aggregation still runs, sentiment-only.
		computedAt := time.Now().UTC()
		var g *graph.Graph
		var centrality []model.CentralityScore
		g, err = graph.Build(deduped)
		if err != nil {
			var de *pipeline.DisconnectedInputError
			if !errors.As(err, &de) {
				return err
			}
			slog.Warn("analyze: graph stage skipped", "err", err)
			g = nil
		} else {
			centrality, err = g.Centrality(cfg.Graph.Metrics, computedAt)
			if err != nil {
				return err
			}
			slog.Info("analyze: graph built",
				"authors", len(g.Handles), "edges", len(g.Edges), "unresolved", g.Unresolved)
		}

		authors := graph.ClassifyRoles(ingest.Authors(deduped), deduped, g)

		// Stage 4: aggregation, with the bucket-width feedback edge.
		rows, summary := export.Aggregate(buckets, scored, authors, centrality)
		if cfg.Buckets.AutoWiden && cfg.Buckets.MinOccupancy > 0 && summary.MeanOccupancy < float64(cfg.Buckets.MinOccupancy) {
			slog.Info("analyze: widening buckets",
				"occupancy", summary.MeanOccupancy, "min", cfg.Buckets.MinOccupancy,
				"old_width", width, "new_width", 2*width)
			ex.Width = 2 * width
			buckets, scored, _, err = ex.Extract(ctx, posts)
			if err != nil {
				return err
			}
			rows, summary = export.Aggregate(buckets, scored, authors, centrality)
		}

		outPath := export.ExpandVars(cfg.Export.Path, time.Now())
		if dir := filepath.Dir(outPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
		}
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := export.WriteCSV(f, rows, cfg.Graph.Metrics); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d rows (%d authors, %d/%d non-empty buckets) to %s\n",
			summary.Rows, len(authors), summary.NonEmptyBuckets, summary.Buckets, outPath)
		return nil
	},
}

// ingestInputs normalizes every configured input file. Dropped records are
// reported per file and archived when the archive is enabled; they never
// abort the batch.
func ingestInputs(ctx context.Context, cfg config.Config, store *archive.Store) ([]model.Post, error) {
	var posts []model.Post
	for _, in := range cfg.Inputs {
		platform := model.Platform(strings.ToLower(in.Platform))
		n, err := ingest.NewNormalizer(platform, in.Mapping)
		if err != nil {
			return nil, err
		}
		records, err := ingest.ReadFile(in.Path)
		if err != nil {
			return nil, err
		}
		res := n.Normalize(records)
		slog.Info("ingest: normalized input",
			"platform", platform, "path", in.Path,
			"in", res.Report.In, "out", res.Report.Out, "dropped", res.Report.Dropped)
		for _, d := range res.Dropped {
			slog.Warn("ingest: dropped record", "platform", platform, "source_id", d.SourceID, "err", d.Err)
			if store != nil {
				if err := store.RecordDrop(ctx, platform, d.SourceID, d.Err.Field, d.Err.Reason, d.Raw); err != nil {
					slog.Warn("ingest: drop audit write failed", "err", err)
				}
			}
		}
		posts = append(posts, res.Posts...)
	}
	if store != nil && len(posts) > 0 {
		if err := store.SavePosts(ctx, posts); err != nil {
			return nil, err
		}
	}
	return posts, nil
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().BoolVar(&analyzeFromArchive, "from-archive", false, "read normalized posts from the archive instead of raw inputs")
}

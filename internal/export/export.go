// Package export merges temporal signals and graph metrics into one
// denormalized, analysis-ready table. Aggregate is a pure function of its
// inputs; writing the CSV is the only I/O and is a separate step.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"protestlens/internal/model"
	"protestlens/internal/timeseries"
)

// Row is one author-in-one-timebucket observation. Author-bucket pairs where
// the author did not post are omitted entirely, which keeps "no activity"
// distinguishable from "zero sentiment".
type Row struct {
	Author           string
	Platform         model.Platform
	Role             model.Role
	BucketStart      time.Time
	BucketEnd        time.Time
	PostCount        int     // author's posts in this bucket
	Sentiment        float64 // mean over the author's posts in this bucket
	BucketSentiment  float64 // bucket-wide mean
	// Engagement sums over the author's posts in this bucket. A count is nil
	// when no post carried it (the platform does not expose it); the CSV
	// cell stays empty rather than reading as zero engagement.
	Likes            *int
	Shares           *int
	Comments         *int
	Views            *int
	Centrality       map[string]float64 // nil when the graph stage produced nothing
	DominantHashtags []string // bucket-level
}

// Summary carries the aggregate statistics the analyze command feeds back
// into bucket-width refinement.
type Summary struct {
	Buckets         int
	NonEmptyBuckets int
	Rows            int
	// MeanOccupancy is posts per non-empty bucket; 0 when every bucket is
	// empty.
	MeanOccupancy float64
}

// Aggregate builds one row per author per bucket in which that author
// posted. centrality may be nil (graph stage aborted); rows are still
// emitted, sentiment-only.
func Aggregate(buckets []model.TimeBucket, scored []timeseries.Scored, authors []model.Author, centrality []model.CentralityScore) ([]Row, Summary) {
	roleOf := map[string]model.Role{}
	platformOf := map[string]model.Platform{}
	for _, a := range authors {
		roleOf[a.Handle] = a.Role
		platformOf[a.Handle] = a.Platform
	}

	var centOf map[string]map[string]float64
	if centrality != nil {
		centOf = map[string]map[string]float64{}
		for _, c := range centrality {
			if centOf[c.Handle] == nil {
				centOf[c.Handle] = map[string]float64{}
			}
			centOf[c.Handle][c.Metric] = c.Value
		}
	}

	type cell struct {
		count int
		sum   float64
		likes, shares, comments, views countSum
	}
	cells := map[string]map[int]*cell{} // author -> bucket index -> aggregate
	for _, s := range scored {
		i := timeseries.BucketIndex(buckets, s.Post.Timestamp)
		if i < 0 {
			continue
		}
		if cells[s.Post.Author] == nil {
			cells[s.Post.Author] = map[int]*cell{}
		}
		c := cells[s.Post.Author][i]
		if c == nil {
			c = &cell{}
			cells[s.Post.Author][i] = c
		}
		c.count++
		c.sum += s.Score
		c.likes.add(s.Post.Engagement.Likes)
		c.shares.add(s.Post.Engagement.Shares)
		c.comments.add(s.Post.Engagement.Comments)
		c.views.add(s.Post.Engagement.Views)
	}

	var rows []Row
	var postsTotal int
	nonEmpty := 0
	for _, b := range buckets {
		if b.PostCount > 0 {
			nonEmpty++
			postsTotal += b.PostCount
		}
	}

	handles := make([]string, 0, len(cells))
	for h := range cells {
		handles = append(handles, h)
	}
	sort.Strings(handles)

	for _, h := range handles {
		idxs := make([]int, 0, len(cells[h]))
		for i := range cells[h] {
			idxs = append(idxs, i)
		}
		sort.Ints(idxs)
		for _, i := range idxs {
			c := cells[h][i]
			var cent map[string]float64
			if centOf != nil {
				cent = centOf[h]
				if cent == nil {
					cent = map[string]float64{}
				}
			}
			rows = append(rows, Row{
				Author:           h,
				Platform:         platformOf[h],
				Role:             roleOf[h],
				BucketStart:      buckets[i].Start,
				BucketEnd:        buckets[i].End,
				PostCount:        c.count,
				Sentiment:        c.sum / float64(c.count),
				BucketSentiment:  buckets[i].Sentiment,
				Likes:            c.likes.value(),
				Shares:           c.shares.value(),
				Comments:         c.comments.value(),
				Views:            c.views.value(),
				Centrality:       cent,
				DominantHashtags: buckets[i].DominantHashtags,
			})
		}
	}

	s := Summary{Buckets: len(buckets), NonEmptyBuckets: nonEmpty, Rows: len(rows)}
	if nonEmpty > 0 {
		s.MeanOccupancy = float64(postsTotal) / float64(nonEmpty)
	}
	return rows, s
}

// WriteCSV writes the export table with a header row. Centrality columns
// follow the metrics argument order; rows without centrality leave those
// cells empty rather than writing zeros.
func WriteCSV(w io.Writer, rows []Row, metrics []string) error {
	cw := csv.NewWriter(w)
	header := []string{"author", "platform", "role", "bucket_start", "bucket_end", "post_count", "likes", "shares", "comments", "views", "sentiment", "bucket_sentiment"}
	header = append(header, metrics...)
	header = append(header, "dominant_hashtags")
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range rows {
		rec := []string{
			r.Author,
			string(r.Platform),
			string(r.Role),
			r.BucketStart.UTC().Format(time.RFC3339),
			r.BucketEnd.UTC().Format(time.RFC3339),
			strconv.Itoa(r.PostCount),
			formatCount(r.Likes),
			formatCount(r.Shares),
			formatCount(r.Comments),
			formatCount(r.Views),
			formatScore(r.Sentiment),
			formatScore(r.BucketSentiment),
		}
		for _, m := range metrics {
			if r.Centrality == nil {
				rec = append(rec, "")
				continue
			}
			rec = append(rec, formatScore(r.Centrality[m]))
		}
		rec = append(rec, strings.Join(r.DominantHashtags, " "))
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

func formatCount(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

// countSum sums a nullable engagement count; absent counts stay absent
// instead of collapsing to zero.
type countSum struct {
	sum  int
	seen bool
}

func (c *countSum) add(v *int) {
	if v == nil {
		return
	}
	c.sum += *v
	c.seen = true
}

func (c *countSum) value() *int {
	if !c.seen {
		return nil
	}
	n := c.sum
	return &n
}

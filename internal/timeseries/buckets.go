// Package timeseries computes time-bucketed sentiment and hashtag-evolution
// signals over the normalized post set.
package timeseries

import (
	"context"
	"sort"
	"time"

	"protestlens/internal/model"
	"protestlens/internal/pipeline"
	"protestlens/internal/sentiment"
	"protestlens/worker"
)

// Scored pairs a post with its sentiment score.
type Scored struct {
	Post  model.Post
	Score float64
}

// Extractor aggregates per-post sentiment into fixed-width time buckets. It
// only aggregates; scoring itself is the pluggable sentiment capability.
type Extractor struct {
	Scorer      sentiment.Scorer
	Width       time.Duration
	TopHashtags int
	Workers     int // 0 means NumCPU
}

// Extract scores the posts and produces a gap-free bucket sequence covering
// [min, max] of the post timestamps. Author-duplicate posts (same author,
// text and timestamp) are deduplicated first so repeats cannot inflate a
// bucket's sentiment. Returns the scored, deduplicated posts alongside the
// buckets for downstream aggregation.
func (e *Extractor) Extract(ctx context.Context, posts []model.Post) ([]model.TimeBucket, []Scored, pipeline.StageReport, error) {
	report := pipeline.StageReport{Stage: "signals", In: len(posts)}
	if len(posts) == 0 {
		return nil, nil, report, &pipeline.EmptyInputError{Stage: "signals"}
	}

	deduped := dedupe(posts)
	report.Dropped = len(posts) - len(deduped)

	// Scoring is embarrassingly parallel; the index-ordered merge keeps the
	// result deterministic.
	scores, err := worker.Map(ctx, e.Workers, deduped, func(ctx context.Context, p model.Post) (float64, error) {
		return e.Scorer.Score(ctx, p.Text)
	})
	if err != nil {
		return nil, nil, report, err
	}
	scored := make([]Scored, len(deduped))
	for i, p := range deduped {
		scored[i] = Scored{Post: p, Score: sentiment.Clamp(scores[i])}
	}

	buckets := e.bucketize(scored)
	report.Out = len(buckets)
	return buckets, scored, report, nil
}

// dedupe removes author-duplicate posts, keeping the first occurrence, then
// orders by timestamp (ID as tiebreak) so downstream iteration order is
// reproducible.
func dedupe(posts []model.Post) []model.Post {
	seen := map[string]struct{}{}
	out := make([]model.Post, 0, len(posts))
	for _, p := range posts {
		k := p.DedupKey()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.Before(out[j].Timestamp)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// BucketIndex returns which bucket of the given sequence t falls into, or -1.
func BucketIndex(buckets []model.TimeBucket, t time.Time) int {
	if len(buckets) == 0 {
		return -1
	}
	start := buckets[0].Start
	width := buckets[0].End.Sub(buckets[0].Start)
	if t.Before(start) {
		return -1
	}
	i := int(t.Sub(start) / width)
	if i >= len(buckets) {
		return -1
	}
	return i
}

type hashtagStat struct {
	tag   string
	count int
	first time.Time // earliest appearance within the bucket
}

func (e *Extractor) bucketize(scored []Scored) []model.TimeBucket {
	minTS := scored[0].Post.Timestamp
	maxTS := scored[0].Post.Timestamp
	for _, s := range scored[1:] {
		if s.Post.Timestamp.Before(minTS) {
			minTS = s.Post.Timestamp
		}
		if s.Post.Timestamp.After(maxTS) {
			maxTS = s.Post.Timestamp
		}
	}

	start := minTS.Truncate(e.Width)
	n := int(maxTS.Sub(start)/e.Width) + 1
	buckets := make([]model.TimeBucket, n)
	sums := make([]float64, n)
	tags := make([]map[string]*hashtagStat, n)
	for i := range buckets {
		buckets[i] = model.TimeBucket{
			Start: start.Add(time.Duration(i) * e.Width),
			End:   start.Add(time.Duration(i+1) * e.Width),
		}
		tags[i] = map[string]*hashtagStat{}
	}

	for _, s := range scored {
		i := int(s.Post.Timestamp.Sub(start) / e.Width)
		buckets[i].PostCount++
		sums[i] += s.Score
		for _, h := range s.Post.Hashtags {
			st, ok := tags[i][h]
			if !ok {
				tags[i][h] = &hashtagStat{tag: h, count: 1, first: s.Post.Timestamp}
				continue
			}
			st.count++
			if s.Post.Timestamp.Before(st.first) {
				st.first = s.Post.Timestamp
			}
		}
	}

	for i := range buckets {
		if buckets[i].PostCount > 0 {
			buckets[i].Sentiment = sentiment.Clamp(sums[i] / float64(buckets[i].PostCount))
		}
		buckets[i].DominantHashtags = rankHashtags(tags[i], e.TopHashtags)
	}
	return buckets
}

// rankHashtags orders by frequency descending; ties break on earliest first
// appearance within the bucket, then lexicographically.
func rankHashtags(stats map[string]*hashtagStat, top int) []string {
	if len(stats) == 0 {
		return nil
	}
	list := make([]*hashtagStat, 0, len(stats))
	for _, s := range stats {
		list = append(list, s)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].count != list[j].count {
			return list[i].count > list[j].count
		}
		if !list[i].first.Equal(list[j].first) {
			return list[i].first.Before(list[j].first)
		}
		return list[i].tag < list[j].tag
	})
	if top > 0 && len(list) > top {
		list = list[:top]
	}
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = s.tag
	}
	return out
}

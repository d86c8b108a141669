package sentiment

import (
	"context"
	"log/slog"
)

// ScoreCache is the cache surface CachedScorer needs; *storage.ScoreStore
// implements it over redis.
type ScoreCache interface {
	GetScore(ctx context.Context, scorer, text string) (float64, bool, error)
	SetScore(ctx context.Context, scorer, text string, score float64) error
}

// CachedScorer wraps a Scorer with a score cache. Cache failures are logged
// and fall through to the underlying scorer; the cache is an optimization,
// never a correctness dependency.
type CachedScorer struct {
	inner Scorer
	store ScoreCache
}

func NewCached(inner Scorer, store ScoreCache) *CachedScorer {
	return &CachedScorer{inner: inner, store: store}
}

func (c *CachedScorer) Name() string { return c.inner.Name() }

func (c *CachedScorer) Score(ctx context.Context, text string) (float64, error) {
	if v, ok, err := c.store.GetScore(ctx, c.inner.Name(), text); err != nil {
		slog.Warn("sentiment: score cache read failed", "err", err)
	} else if ok {
		return v, nil
	}
	v, err := c.inner.Score(ctx, text)
	if err != nil {
		return 0, err
	}
	if err := c.store.SetScore(ctx, c.inner.Name(), text, v); err != nil {
		slog.Warn("sentiment: score cache write failed", "err", err)
	}
	return v, nil
}

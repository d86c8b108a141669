package sentiment

import (
	"context"
	"errors"
	"testing"
)

type countingScorer struct {
	calls int
	score float64
}

func (s *countingScorer) Name() string { return "counting" }

func (s *countingScorer) Score(ctx context.Context, text string) (float64, error) {
	s.calls++
	return s.score, nil
}

type mapCache struct {
	entries map[string]float64
	failing bool
	sets    int
}

func (c *mapCache) key(scorer, text string) string { return scorer + "\x00" + text }

func (c *mapCache) GetScore(ctx context.Context, scorer, text string) (float64, bool, error) {
	if c.failing {
		return 0, false, errors.New("cache unavailable")
	}
	v, ok := c.entries[c.key(scorer, text)]
	return v, ok, nil
}

func (c *mapCache) SetScore(ctx context.Context, scorer, text string, score float64) error {
	if c.failing {
		return errors.New("cache unavailable")
	}
	c.sets++
	c.entries[c.key(scorer, text)] = score
	return nil
}

func TestCachedScorerHitSkipsInner(t *testing.T) {
	inner := &countingScorer{score: 0.7}
	cache := &mapCache{entries: map[string]float64{}}
	s := NewCached(inner, cache)
	ctx := context.Background()

	v1, err := s.Score(ctx, "ruto must go")
	if err != nil {
		t.Fatalf("first score: %v", err)
	}
	v2, err := s.Score(ctx, "ruto must go")
	if err != nil {
		t.Fatalf("second score: %v", err)
	}
	if v1 != 0.7 || v2 != 0.7 {
		t.Errorf("scores = %v, %v, want 0.7 both times", v1, v2)
	}
	if inner.calls != 1 {
		t.Errorf("inner scorer called %d times, want 1", inner.calls)
	}
	if cache.sets != 1 {
		t.Errorf("cache writes = %d, want 1", cache.sets)
	}
}

func TestCachedScorerFallsThroughOnCacheFailure(t *testing.T) {
	inner := &countingScorer{score: -0.4}
	s := NewCached(inner, &mapCache{failing: true})

	v, err := s.Score(context.Background(), "tear gas everywhere")
	if err != nil {
		t.Fatalf("score with failing cache: %v", err)
	}
	if v != -0.4 {
		t.Errorf("score = %v, want inner scorer's -0.4", v)
	}
	if inner.calls != 1 {
		t.Errorf("inner scorer called %d times, want 1", inner.calls)
	}
}

func TestCachedScorerName(t *testing.T) {
	s := NewCached(&countingScorer{}, &mapCache{entries: map[string]float64{}})
	if s.Name() != "counting" {
		t.Errorf("Name = %q, want the inner scorer's name", s.Name())
	}
}

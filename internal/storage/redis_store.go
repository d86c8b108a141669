package storage

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ScoreStore caches sentiment scores in redis so repeated pipeline runs over
// the same corpus do not re-score unchanged text. Keys are derived from the
// scorer name and a hash of the text, never from post IDs, so two posts with
// identical text share one entry.
type ScoreStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewScoreStore(rdb *redis.Client) *ScoreStore {
	return &ScoreStore{rdb: rdb, ttl: 30 * 24 * time.Hour}
}

func scoreKey(scorer, text string) string {
	sum := sha1.Sum([]byte(text))
	return fmt.Sprintf("sentiment:score:%s:%s", scorer, hex.EncodeToString(sum[:]))
}

// GetScore returns a cached score. The second return is false on a miss.
func (s *ScoreStore) GetScore(ctx context.Context, scorer, text string) (float64, bool, error) {
	res, err := s.rdb.Get(ctx, scoreKey(scorer, text)).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	v, err := strconv.ParseFloat(res, 64)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt cached score %q: %w", res, err)
	}
	return v, true, nil
}

// SetScore caches a score with the store's TTL.
func (s *ScoreStore) SetScore(ctx context.Context, scorer, text string, score float64) error {
	return s.rdb.Set(ctx, scoreKey(scorer, text), strconv.FormatFloat(score, 'f', -1, 64), s.ttl).Err()
}

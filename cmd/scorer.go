package cmd

import (
	"strings"

	"protestlens/internal/config"
	"protestlens/internal/redisclient"
	"protestlens/internal/sentiment"
	"protestlens/internal/storage"

	"github.com/redis/go-redis/v9"
)

// buildScorer assembles the configured sentiment capability, optionally
// wrapped with the redis score cache. The returned close func releases the
// redis client when one was opened.
func buildScorer(cfg config.Config) (sentiment.Scorer, func(), error) {
	var scorer sentiment.Scorer
	switch strings.ToLower(cfg.Sentiment.Scorer) {
	case "openai":
		scorer = sentiment.NewOpenAI(sentiment.OpenAIConfig{
			APIKey:  cfg.OpenAI.APIKey,
			Model:   cfg.OpenAI.Model,
			BaseURL: cfg.OpenAI.BaseURL,
		})
	default:
		if cfg.Sentiment.LexiconPath != "" {
			s, err := sentiment.NewLexiconScorerFromFile(cfg.Sentiment.LexiconPath)
			if err != nil {
				return nil, nil, err
			}
			scorer = s
		} else {
			scorer = sentiment.NewLexiconScorer()
		}
	}

	var rdb *redis.Client
	if cfg.Sentiment.Cache {
		rdb = redisclient.New(cfg.Redis)
		scorer = sentiment.NewCached(scorer, storage.NewScoreStore(rdb))
	}
	closeFn := func() {
		if rdb != nil {
			rdb.Close()
		}
	}
	return scorer, closeFn, nil
}

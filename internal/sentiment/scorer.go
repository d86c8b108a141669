// Package sentiment treats sentiment scoring as a pluggable capability: any
// implementation mapping text to a bounded score. The pipeline itself only
// aggregates scores, so the underlying lexicon or model is interchangeable.
package sentiment

import "context"

// Scorer scores a text's sentiment in [-1, 1]. Negative is hostile,
// positive is supportive, 0 is neutral or unknown.
type Scorer interface {
	Score(ctx context.Context, text string) (float64, error)
	// Name identifies the capability, used for cache keying and reports.
	Name() string
}

// Clamp bounds a score to [-1, 1]. Every Scorer implementation must return
// bounded values; Clamp is the shared enforcement point.
func Clamp(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}

package model

import "time"

// TimeBucket is a fixed-width interval with aggregated signals. Derived from
// the immutable post set; recomputed whenever the bucket width changes and
// never persisted as ground truth.
type TimeBucket struct {
	Start            time.Time `json:"start"`
	End              time.Time `json:"end"`
	Sentiment        float64   `json:"sentiment"` // mean over posts, in [-1, 1]; 0 when empty
	DominantHashtags []string  `json:"dominant_hashtags,omitempty"`
	PostCount        int       `json:"post_count"`
}

// Contains reports whether t falls inside the bucket's half-open [Start, End)
// span.
func (b TimeBucket) Contains(t time.Time) bool {
	return !t.Before(b.Start) && t.Before(b.End)
}

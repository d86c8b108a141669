package model

import "time"

// Platform identifies the social platform a record was scraped from.
type Platform string

const (
	PlatformTikTok  Platform = "tiktok"
	PlatformTwitter Platform = "twitter"
)

// Valid reports whether p is a known platform.
func (p Platform) Valid() bool {
	return p == PlatformTikTok || p == PlatformTwitter
}

// Engagement holds per-post engagement counts. Counts are nullable because
// platforms expose different subsets (e.g. TikTok has views, manual Twitter
// samples may lack shares).
type Engagement struct {
	Likes    *int `json:"likes,omitempty"`
	Shares   *int `json:"shares,omitempty"`
	Comments *int `json:"comments,omitempty"`
	Views    *int `json:"views,omitempty"`
}

// Post is the canonical, platform-agnostic representation of one social
// media post. Created once during normalization and never mutated.
type Post struct {
	ID                string     `json:"id"` // deterministic, derived from SourceID
	Platform          Platform   `json:"platform"`
	Author            string     `json:"author"` // handle, always present
	AuthorDisplayName string     `json:"author_display_name,omitempty"`
	Timestamp         time.Time  `json:"timestamp"` // UTC, always present
	Text              string     `json:"text"`
	Hashtags          []string   `json:"hashtags,omitempty"` // lowercased, deduplicated
	Mentions          []string   `json:"mentions,omitempty"` // lowercased handles, no leading @
	ReplyToHandle     string     `json:"reply_to_handle,omitempty"`
	ReshareOfHandle   string     `json:"reshare_of_handle,omitempty"`
	Engagement        Engagement `json:"engagement"`
	SourceID          string     `json:"source_id"` // raw record identifier for traceability
}

// DedupKey identifies author-duplicate posts (identical author, text and
// timestamp) for aggregation purposes.
func (p Post) DedupKey() string {
	return p.Author + "\x00" + p.Text + "\x00" + p.Timestamp.UTC().Format(time.RFC3339Nano)
}

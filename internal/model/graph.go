package model

import "time"

// InteractionKind is the kind of author-to-author interaction an edge
// records.
type InteractionKind string

const (
	InteractionMention InteractionKind = "mention"
	InteractionReply   InteractionKind = "reply"
	InteractionReshare InteractionKind = "reshare"
)

// InteractionEdge is one directed interaction between two authors, inferred
// from a single post. Multi-edges are permitted: repeated interaction is a
// signal, so edges are never deduplicated, only aggregated.
type InteractionEdge struct {
	Source    string          `json:"source"` // author handle
	Target    string          `json:"target"` // author handle
	Kind      InteractionKind `json:"kind"`
	Timestamp time.Time       `json:"timestamp"`
	PostID    string          `json:"post_id"` // originating post
}

// CentralityScore is one computed centrality value for one author. Derived;
// a recomputation supersedes earlier scores rather than merging with them.
type CentralityScore struct {
	Handle     string    `json:"handle"`
	Metric     string    `json:"metric"` // in_degree, out_degree, betweenness
	Value      float64   `json:"value"`
	ComputedAt time.Time `json:"computed_at"`
}

// Package ingest normalizes heterogeneous per-platform records into the
// canonical post schema. Record-level failures never abort a batch: the
// record is dropped and preserved, with its reason, for audit.
package ingest

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"protestlens/internal/model"
	"protestlens/internal/pipeline"
)

// Dropped is one record rejected during normalization, kept verbatim for
// audit.
type Dropped struct {
	SourceID string
	Raw      json.RawMessage
	Err      *pipeline.SchemaError
}

// Result is the outcome of normalizing one batch of raw records.
type Result struct {
	Posts   []model.Post
	Dropped []Dropped
	Report  pipeline.StageReport
}

// Normalizer maps raw platform records into canonical posts using a field
// mapping. Normalization is idempotent: the same raw input always yields a
// byte-identical post sequence, post IDs included.
type Normalizer struct {
	Platform model.Platform
	Mapping  FieldMapping
}

// NewNormalizer builds a normalizer with the built-in mapping for the
// platform, or with the overlay loaded from mappingPath when non-empty.
func NewNormalizer(p model.Platform, mappingPath string) (*Normalizer, error) {
	m, err := LoadMapping(p, mappingPath)
	if err != nil {
		return nil, err
	}
	return &Normalizer{Platform: p, Mapping: m}, nil
}

// Normalize converts raw records into canonical posts. Records missing a
// required field (author, timestamp, text) are dropped, not fatal.
func (n *Normalizer) Normalize(records []RawRecord) Result {
	res := Result{Report: pipeline.StageReport{Stage: "ingest", In: len(records)}}
	for _, rec := range records {
		post, serr := n.normalizeOne(rec)
		if serr != nil {
			raw, _ := json.Marshal(rec)
			serr.Raw = raw
			res.Dropped = append(res.Dropped, Dropped{
				SourceID: asString(lookup(rec, n.Mapping.SourceID)),
				Raw:      raw,
				Err:      serr,
			})
			continue
		}
		res.Posts = append(res.Posts, post)
	}
	res.Report.Out = len(res.Posts)
	res.Report.Dropped = len(res.Dropped)
	return res
}

func (n *Normalizer) normalizeOne(rec RawRecord) (model.Post, *pipeline.SchemaError) {
	author := strings.ToLower(asString(lookup(rec, n.Mapping.Author)))
	if author == "" {
		return model.Post{}, &pipeline.SchemaError{Field: "author", Reason: "missing author handle"}
	}
	text := asString(lookup(rec, n.Mapping.Text))
	if text == "" {
		return model.Post{}, &pipeline.SchemaError{Field: "text", Reason: "missing text content"}
	}
	tsRaw := lookup(rec, n.Mapping.Timestamp)
	if tsRaw == nil {
		return model.Post{}, &pipeline.SchemaError{Field: "timestamp", Reason: "missing timestamp"}
	}
	ts, err := parseTimestamp(tsRaw)
	if err != nil {
		return model.Post{}, &pipeline.SchemaError{Field: "timestamp", Reason: err.Error()}
	}

	sourceID := asString(lookup(rec, n.Mapping.SourceID))
	post := model.Post{
		ID:                PostID(n.Platform, sourceID, author, ts.Format("20060102T150405Z"), text),
		Platform:          n.Platform,
		Author:            author,
		AuthorDisplayName: asString(lookup(rec, n.Mapping.DisplayName)),
		Timestamp:         ts,
		Text:              text,
		Hashtags:          extractHashtags(text, entityStrings(rec, "entities.hashtags", "text")),
		Mentions:          extractMentions(text, entityStrings(rec, "entities.user_mentions", "screen_name")),
		ReplyToHandle:     strings.ToLower(asString(lookup(rec, n.Mapping.ReplyTo))),
		ReshareOfHandle:   strings.ToLower(asString(lookup(rec, n.Mapping.ReshareOf))),
		Engagement: model.Engagement{
			Likes:    asCount(lookup(rec, n.Mapping.Likes)),
			Shares:   asCount(lookup(rec, n.Mapping.Shares)),
			Comments: asCount(lookup(rec, n.Mapping.Comments)),
			Views:    asCount(lookup(rec, n.Mapping.Views)),
		},
		SourceID: sourceID,
	}
	return post, nil
}

// PostID derives a deterministic post identifier. It hashes the platform and
// source record ID; records without a source ID fall back to the post's own
// content so re-runs still agree.
func PostID(p model.Platform, sourceID string, fallback ...string) string {
	h := sha1.New()
	fmt.Fprint(h, string(p), ":")
	if sourceID != "" {
		fmt.Fprint(h, sourceID)
	} else {
		fmt.Fprint(h, strings.Join(fallback, ":"))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// entityStrings collects field values from an array of objects at the given
// path, e.g. the screen names under entities.user_mentions in classic
// Twitter exports.
func entityStrings(rec RawRecord, path, field string) []string {
	v := lookupPath(rec, path)
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, e := range arr {
		if m, ok := e.(map[string]any); ok {
			if s := asString(m[field]); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// Authors derives the author set referenced by the posts, sorted by handle.
// Roles start unclassified; downstream analysis may reassign them.
func Authors(posts []model.Post) []model.Author {
	seen := map[string]model.Author{}
	for _, p := range posts {
		a, ok := seen[p.Author]
		if !ok {
			a = model.Author{Handle: p.Author, Platform: p.Platform, Role: model.RoleUnclassified}
		}
		if a.DisplayName == "" && p.AuthorDisplayName != "" {
			a.DisplayName = p.AuthorDisplayName
		}
		seen[p.Author] = a
	}
	out := make([]model.Author, 0, len(seen))
	for _, a := range seen {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Handle < out[j].Handle })
	return out
}

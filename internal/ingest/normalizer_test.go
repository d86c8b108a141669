package ingest

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"protestlens/internal/model"
)

func tiktokRecord(id, author, iso, text string) RawRecord {
	return RawRecord{
		"id":   id,
		"text": text,
		"author": map[string]any{
			"uniqueId": author,
			"nickname": "Display " + author,
		},
		"stats": map[string]any{
			"diggCount":    float64(10),
			"commentCount": float64(2),
			"shareCount":   float64(1),
			"playCount":    float64(500),
		},
		"createTimeISO": iso,
	}
}

func TestNormalizeTikTok(t *testing.T) {
	n, err := NewNormalizer(model.PlatformTikTok, "")
	if err != nil {
		t.Fatalf("NewNormalizer: %v", err)
	}
	res := n.Normalize([]RawRecord{
		tiktokRecord("v1", "WanjikuKE", "2024-06-18T10:00:00Z", "We are outside! #RejectFinanceBill2024 #OccupyParliament @mwafrika"),
	})
	if len(res.Dropped) != 0 {
		t.Fatalf("unexpected drops: %+v", res.Dropped)
	}
	if len(res.Posts) != 1 {
		t.Fatalf("want 1 post, got %d", len(res.Posts))
	}
	p := res.Posts[0]
	if p.Author != "wanjikuke" {
		t.Errorf("author not lowercased: %q", p.Author)
	}
	if !p.Timestamp.Equal(time.Date(2024, 6, 18, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("timestamp = %v", p.Timestamp)
	}
	wantTags := []string{"occupyparliament", "rejectfinancebill2024"}
	if !reflect.DeepEqual(p.Hashtags, wantTags) {
		t.Errorf("hashtags = %v, want %v", p.Hashtags, wantTags)
	}
	if !reflect.DeepEqual(p.Mentions, []string{"mwafrika"}) {
		t.Errorf("mentions = %v", p.Mentions)
	}
	if p.Engagement.Likes == nil || *p.Engagement.Likes != 10 {
		t.Errorf("likes = %v", p.Engagement.Likes)
	}
	if p.Engagement.Views == nil || *p.Engagement.Views != 500 {
		t.Errorf("views = %v", p.Engagement.Views)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	n, err := NewNormalizer(model.PlatformTikTok, "")
	if err != nil {
		t.Fatalf("NewNormalizer: %v", err)
	}
	records := []RawRecord{
		tiktokRecord("v1", "alpha", "2024-06-18T10:00:00Z", "day one #maandamano"),
		tiktokRecord("v2", "beta", "2024-06-19T11:30:00Z", "day two #maandamano #genzkenya"),
	}
	first := n.Normalize(records)
	second := n.Normalize(records)
	if !reflect.DeepEqual(first.Posts, second.Posts) {
		t.Fatalf("normalization not idempotent:\nfirst:  %+v\nsecond: %+v", first.Posts, second.Posts)
	}
	if first.Posts[0].ID == "" || first.Posts[0].ID == first.Posts[1].ID {
		t.Fatalf("post IDs not distinct and deterministic: %q vs %q", first.Posts[0].ID, first.Posts[1].ID)
	}
}

func TestNormalizeDropsMalformed(t *testing.T) {
	n, err := NewNormalizer(model.PlatformTwitter, "")
	if err != nil {
		t.Fatalf("NewNormalizer: %v", err)
	}
	res := n.Normalize([]RawRecord{
		{"id_str": "1", "text": "ok", "user": map[string]any{"screen_name": "good"}, "created_at": "Wed Jun 19 10:00:00 +0000 2024"},
		{"id_str": "2", "text": "no author", "created_at": "Wed Jun 19 10:00:00 +0000 2024"},
		{"id_str": "3", "text": "bad time", "user": map[string]any{"screen_name": "x"}, "created_at": "not-a-date"},
		{"id_str": "4", "user": map[string]any{"screen_name": "y"}, "created_at": "Wed Jun 19 10:00:00 +0000 2024"},
	})
	if len(res.Posts) != 1 {
		t.Fatalf("want 1 post, got %d", len(res.Posts))
	}
	if len(res.Dropped) != 3 {
		t.Fatalf("want 3 drops, got %d", len(res.Dropped))
	}
	fields := map[string]bool{}
	for _, d := range res.Dropped {
		fields[d.Err.Field] = true
		if len(d.Raw) == 0 {
			t.Errorf("dropped record %s lost its raw payload", d.SourceID)
		}
	}
	for _, f := range []string{"author", "timestamp", "text"} {
		if !fields[f] {
			t.Errorf("missing drop for field %s", f)
		}
	}
	if res.Report.In != 4 || res.Report.Out != 1 || res.Report.Dropped != 3 {
		t.Errorf("report = %+v", res.Report)
	}
}

func TestNormalizeTwitterEntitiesAndMarkers(t *testing.T) {
	n, err := NewNormalizer(model.PlatformTwitter, "")
	if err != nil {
		t.Fatalf("NewNormalizer: %v", err)
	}
	res := n.Normalize([]RawRecord{{
		"id_str":     "99",
		"full_text":  "RT this thread",
		"created_at": "2024-06-25T08:00:00Z",
		"user":       map[string]any{"screen_name": "Replier", "name": "R"},
		"entities": map[string]any{
			"hashtags":      []any{map[string]any{"text": "RutoMustGo"}},
			"user_mentions": []any{map[string]any{"screen_name": "Target"}},
		},
		"in_reply_to_screen_name": "Target",
		"retweeted_status": map[string]any{
			"user": map[string]any{"screen_name": "Origin"},
		},
	}})
	if len(res.Posts) != 1 {
		t.Fatalf("want 1 post, got %d (drops: %+v)", len(res.Posts), res.Dropped)
	}
	p := res.Posts[0]
	if !reflect.DeepEqual(p.Hashtags, []string{"rutomustgo"}) {
		t.Errorf("hashtags = %v", p.Hashtags)
	}
	if !reflect.DeepEqual(p.Mentions, []string{"target"}) {
		t.Errorf("mentions = %v", p.Mentions)
	}
	if p.ReplyToHandle != "target" {
		t.Errorf("reply_to = %q", p.ReplyToHandle)
	}
	if p.ReshareOfHandle != "origin" {
		t.Errorf("reshare_of = %q", p.ReshareOfHandle)
	}
}

func TestParseTimestampFormats(t *testing.T) {
	want := time.Date(2024, 6, 25, 8, 30, 0, 0, time.UTC)
	inputs := []any{
		"2024-06-25T08:30:00Z",
		"2024-06-25T08:30:00.000Z",
		"Tue Jun 25 08:30:00 +0000 2024",
		"2024-06-25 08:30:00",
		float64(want.Unix()),
		"1719304200",
	}
	for _, in := range inputs {
		got, err := parseTimestamp(in)
		if err != nil {
			t.Errorf("parseTimestamp(%v): %v", in, err)
			continue
		}
		if !got.Equal(want) {
			t.Errorf("parseTimestamp(%v) = %v, want %v", in, got, want)
		}
	}
	if _, err := parseTimestamp("yesterday-ish"); err == nil {
		t.Errorf("expected error for unparsable timestamp")
	}
}

func TestMappingOverride(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "map.yaml")
	content := "author: handle\ntext: [body, caption]\ntimestamp: posted_at\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write mapping: %v", err)
	}
	n, err := NewNormalizer(model.PlatformTwitter, path)
	if err != nil {
		t.Fatalf("NewNormalizer: %v", err)
	}
	res := n.Normalize([]RawRecord{{
		"handle":    "custom",
		"caption":   "mapped via overlay",
		"posted_at": "2024-06-25T08:30:00Z",
	}})
	if len(res.Posts) != 1 {
		t.Fatalf("want 1 post, got %d (drops: %+v)", len(res.Posts), res.Dropped)
	}
	if res.Posts[0].Author != "custom" || res.Posts[0].Text != "mapped via overlay" {
		t.Errorf("overlay not applied: %+v", res.Posts[0])
	}
}

func TestReadFileVariants(t *testing.T) {
	tmp := t.TempDir()

	arr := filepath.Join(tmp, "arr.json")
	os.WriteFile(arr, []byte(`[{"id":"1"},{"id":"2"}]`), 0o644)
	recs, err := ReadFile(arr)
	if err != nil || len(recs) != 2 {
		t.Fatalf("array: recs=%d err=%v", len(recs), err)
	}

	wrapped := filepath.Join(tmp, "wrapped.json")
	os.WriteFile(wrapped, []byte(`{"tweets":[{"id":"1"}]}`), 0o644)
	recs, err = ReadFile(wrapped)
	if err != nil || len(recs) != 1 {
		t.Fatalf("wrapped: recs=%d err=%v", len(recs), err)
	}

	csvPath := filepath.Join(tmp, "rows.csv")
	os.WriteFile(csvPath, []byte("author_username,text,created_at\nkenyan1,hello,2024-06-20 09:00:00\n"), 0o644)
	recs, err = ReadFile(csvPath)
	if err != nil || len(recs) != 1 {
		t.Fatalf("csv: recs=%d err=%v", len(recs), err)
	}
	if recs[0]["author_username"] != "kenyan1" {
		t.Errorf("csv record = %+v", recs[0])
	}
}

func TestAuthorsDerivation(t *testing.T) {
	posts := []model.Post{
		{Author: "zeta", Platform: model.PlatformTwitter},
		{Author: "alpha", Platform: model.PlatformTikTok, AuthorDisplayName: "Alpha One"},
		{Author: "alpha", Platform: model.PlatformTikTok},
	}
	authors := Authors(posts)
	if len(authors) != 2 {
		t.Fatalf("want 2 authors, got %d", len(authors))
	}
	if authors[0].Handle != "alpha" || authors[1].Handle != "zeta" {
		t.Errorf("authors not sorted: %+v", authors)
	}
	if authors[0].DisplayName != "Alpha One" {
		t.Errorf("display name not kept: %+v", authors[0])
	}
	if authors[0].Role != model.RoleUnclassified {
		t.Errorf("role should start unclassified: %+v", authors[0])
	}
}

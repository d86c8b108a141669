package archive

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"protestlens/internal/model"
)

func intp(v int) *int { return &v }

func samplePosts() []model.Post {
	t0 := time.Date(2024, 6, 18, 10, 0, 0, 0, time.UTC)
	return []model.Post{
		{
			ID:                "id-1",
			Platform:          model.PlatformTikTok,
			Author:            "wanjiku",
			AuthorDisplayName: "Wanjiku",
			Timestamp:         t0,
			Text:              "outside parliament #occupyparliament",
			Hashtags:          []string{"occupyparliament"},
			Mentions:          []string{"mwafrika"},
			Engagement:        model.Engagement{Likes: intp(10), Views: intp(500)},
			SourceID:          "v1",
		},
		{
			ID:              "id-2",
			Platform:        model.PlatformTwitter,
			Author:          "mwafrika",
			Timestamp:       t0.Add(time.Hour),
			Text:            "replying",
			ReplyToHandle:   "wanjiku",
			ReshareOfHandle: "",
			SourceID:        "t2",
		},
	}
}

func TestArchiveRoundTrip(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "posts.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	posts := samplePosts()
	if err := store.SavePosts(ctx, posts); err != nil {
		t.Fatalf("SavePosts: %v", err)
	}
	got, err := store.LoadPosts(ctx)
	if err != nil {
		t.Fatalf("LoadPosts: %v", err)
	}
	if !reflect.DeepEqual(got, posts) {
		t.Errorf("round trip mismatch:\nwant %+v\n got %+v", posts, got)
	}
}

func TestArchiveLoadOrderSubsecond(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "posts.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	// A fractional-second timestamp must not sort before the same whole
	// second, as it would under lexicographic RFC3339 text ordering.
	t0 := time.Date(2024, 6, 25, 9, 0, 0, 0, time.UTC)
	posts := []model.Post{
		{ID: "c", Platform: model.PlatformTwitter, Author: "c", Timestamp: t0.Add(time.Second), Text: "third"},
		{ID: "b", Platform: model.PlatformTwitter, Author: "b", Timestamp: t0.Add(500 * time.Millisecond), Text: "second"},
		{ID: "a", Platform: model.PlatformTwitter, Author: "a", Timestamp: t0, Text: "first"},
	}
	ctx := context.Background()
	if err := store.SavePosts(ctx, posts); err != nil {
		t.Fatalf("SavePosts: %v", err)
	}
	got, err := store.LoadPosts(ctx)
	if err != nil {
		t.Fatalf("LoadPosts: %v", err)
	}
	for i, want := range []string{"a", "b", "c"} {
		if got[i].ID != want {
			t.Fatalf("load order[%d] = %s, want %s", i, got[i].ID, want)
		}
	}
	if !got[1].Timestamp.Equal(t0.Add(500 * time.Millisecond)) {
		t.Errorf("subsecond timestamp not preserved: %v", got[1].Timestamp)
	}
}

func TestArchiveIdempotentSave(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "posts.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	posts := samplePosts()
	for i := 0; i < 3; i++ {
		if err := store.SavePosts(ctx, posts); err != nil {
			t.Fatalf("SavePosts run %d: %v", i, err)
		}
	}
	n, err := store.CountPosts(ctx)
	if err != nil {
		t.Fatalf("CountPosts: %v", err)
	}
	if n != len(posts) {
		t.Errorf("count = %d after repeated saves, want %d", n, len(posts))
	}
}

func TestArchiveRecordDrop(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "posts.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	raw := []byte(`{"id":"bad","created_at":"???"}`)
	if err := store.RecordDrop(ctx, model.PlatformTwitter, "bad", "timestamp", "unrecognized timestamp", raw); err != nil {
		t.Fatalf("RecordDrop: %v", err)
	}
}

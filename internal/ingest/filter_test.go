package ingest

import (
	"testing"
	"time"

	"protestlens/internal/model"
)

func TestTopicFilterHashtagsAndKeywords(t *testing.T) {
	ts := time.Date(2024, 6, 25, 12, 0, 0, 0, time.UTC)
	posts := []model.Post{
		{ID: "1", Author: "amara", Text: "march today", Hashtags: []string{"rejectfinancebill2024"}, Timestamp: ts},
		{ID: "2", Author: "brian", Text: "The Finance Bill vote is tomorrow", Timestamp: ts},
		{ID: "3", Author: "cate", Text: "lunch photos", Hashtags: []string{"foodie"}, Timestamp: ts},
		{ID: "4", Author: "dedan", Text: "no tags here either", Timestamp: ts},
	}

	f := NewTopicFilter([]string{"#RejectFinanceBill2024"}, []string{"finance bill"})
	kept, report := f.Apply(posts)

	if len(kept) != 2 {
		t.Fatalf("kept %d posts, want 2", len(kept))
	}
	if kept[0].ID != "1" || kept[1].ID != "2" {
		t.Errorf("kept IDs = %s, %s; want 1, 2", kept[0].ID, kept[1].ID)
	}
	if report.In != 4 || report.Out != 2 || report.Dropped != 2 {
		t.Errorf("report = %+v, want in=4 out=2 dropped=2", report)
	}
}

func TestTopicFilterEmptyKeepsAll(t *testing.T) {
	posts := []model.Post{
		{ID: "1", Author: "amara", Text: "anything"},
		{ID: "2", Author: "brian", Text: "goes"},
	}
	f := NewTopicFilter(nil, nil)
	if !f.Empty() {
		t.Fatal("filter with no terms should report Empty")
	}
	kept, report := f.Apply(posts)
	if len(kept) != 2 || report.Dropped != 0 {
		t.Errorf("empty filter kept %d dropped %d, want all kept", len(kept), report.Dropped)
	}
}

func TestTopicFilterNormalizesTerms(t *testing.T) {
	// Config terms may carry '#' and mixed case; post hashtags are stored
	// lowercased without the prefix.
	f := NewTopicFilter([]string{"  #OccupyParliament  "}, []string{"  REJECT  "})
	if f.Match(model.Post{Text: "nothing relevant"}) {
		t.Error("unrelated post matched")
	}
	if !f.Match(model.Post{Hashtags: []string{"occupyparliament"}}) {
		t.Error("normalized hashtag did not match")
	}
	if !f.Match(model.Post{Text: "We reject this"}) {
		t.Error("case-insensitive keyword did not match")
	}
}

package ingest

import (
	"strings"

	"protestlens/internal/model"
	"protestlens/internal/pipeline"
)

// TopicFilter narrows a corpus to posts relevant to the research topic. A
// post is kept when any of its hashtags appears in the hashtag list, or its
// text contains any of the keywords, case-insensitively. An empty filter
// keeps every post.
type TopicFilter struct {
	hashtags map[string]struct{}
	keywords []string
}

// NewTopicFilter normalizes the configured terms the same way normalization
// does: hashtags lowercased with any leading '#' stripped, keywords
// lowercased.
func NewTopicFilter(hashtags, keywords []string) *TopicFilter {
	f := &TopicFilter{hashtags: map[string]struct{}{}}
	for _, h := range hashtags {
		h = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(h), "#"))
		if h != "" {
			f.hashtags[h] = struct{}{}
		}
	}
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			f.keywords = append(f.keywords, k)
		}
	}
	return f
}

// Empty reports whether the filter has no terms and therefore matches
// everything.
func (f *TopicFilter) Empty() bool {
	return len(f.hashtags) == 0 && len(f.keywords) == 0
}

// Match reports whether the post is on topic.
func (f *TopicFilter) Match(p model.Post) bool {
	if f.Empty() {
		return true
	}
	for _, h := range p.Hashtags {
		if _, ok := f.hashtags[h]; ok {
			return true
		}
	}
	text := strings.ToLower(p.Text)
	for _, k := range f.keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

// Apply returns the on-topic posts in input order, with a stage report
// counting the posts it removed.
func (f *TopicFilter) Apply(posts []model.Post) ([]model.Post, pipeline.StageReport) {
	report := pipeline.StageReport{Stage: "filter", In: len(posts)}
	if f.Empty() {
		report.Out = len(posts)
		return posts, report
	}
	kept := make([]model.Post, 0, len(posts))
	for _, p := range posts {
		if f.Match(p) {
			kept = append(kept, p)
		}
	}
	report.Out = len(kept)
	report.Dropped = report.In - report.Out
	return kept, report
}

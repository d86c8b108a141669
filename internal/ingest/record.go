package ingest

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// RawRecord is one platform-specific record as decoded from an export file:
// an arbitrary nested key-value structure.
type RawRecord map[string]any

// lookup resolves a dot path ("author.uniqueId") against the record. Returns
// the first value found along the candidate paths, or nil.
func lookup(r RawRecord, paths []string) any {
	for _, p := range paths {
		if v := lookupPath(r, p); v != nil {
			return v
		}
	}
	return nil
}

func lookupPath(r RawRecord, path string) any {
	var cur any = map[string]any(r)
	for _, seg := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur, ok = m[seg]
		if !ok {
			return nil
		}
	}
	return cur
}

// asString renders a raw value as a trimmed string. JSON numbers are
// formatted without an exponent so numeric IDs survive intact.
func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1e15 {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

// asCount renders a raw value as a nullable count. Non-numeric values yield
// nil rather than zero so absent metrics stay distinguishable from zero.
func asCount(v any) *int {
	switch t := v.(type) {
	case float64:
		n := int(t)
		return &n
	case int:
		return &t
	case int64:
		n := int(t)
		return &n
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
			return &n
		}
	}
	return nil
}

// timestampFormats covers Twitter's classic format, ISO variants and a plain
// datetime, in the order the original exports were observed to use them.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"Mon Jan 02 15:04:05 -0700 2006",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parseTimestamp normalizes a raw timestamp value to UTC. Accepts integer or
// numeric-string unix seconds and the formats above.
func parseTimestamp(v any) (time.Time, error) {
	switch t := v.(type) {
	case float64:
		if t <= 0 {
			return time.Time{}, fmt.Errorf("non-positive unix timestamp %v", t)
		}
		return time.Unix(int64(t), 0).UTC(), nil
	case int:
		return parseTimestamp(float64(t))
	case int64:
		return parseTimestamp(float64(t))
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return time.Time{}, fmt.Errorf("empty timestamp")
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return parseTimestamp(float64(n))
		}
		for _, f := range timestampFormats {
			if ts, err := time.Parse(f, s); err == nil {
				return ts.UTC(), nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
	default:
		return time.Time{}, fmt.Errorf("unsupported timestamp value %v", v)
	}
}

var (
	hashtagRe = regexp.MustCompile(`#(\w+)`)
	mentionRe = regexp.MustCompile(`@(\w+)`)
)

// extractHashtags returns the lowercased, deduplicated hashtags in text,
// sorted so normalization output is byte-identical across runs.
func extractHashtags(text string, extra []string) []string {
	set := map[string]struct{}{}
	for _, m := range hashtagRe.FindAllStringSubmatch(text, -1) {
		set[strings.ToLower(m[1])] = struct{}{}
	}
	for _, h := range extra {
		h = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(h), "#"))
		if h != "" {
			set[h] = struct{}{}
		}
	}
	return sortedKeys(set)
}

// extractMentions returns the lowercased, deduplicated @-handles in text,
// without the leading @.
func extractMentions(text string, extra []string) []string {
	set := map[string]struct{}{}
	for _, m := range mentionRe.FindAllStringSubmatch(text, -1) {
		set[strings.ToLower(m[1])] = struct{}{}
	}
	for _, h := range extra {
		h = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(h), "@"))
		if h != "" {
			set[h] = struct{}{}
		}
	}
	return sortedKeys(set)
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

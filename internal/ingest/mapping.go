package ingest

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"protestlens/internal/model"
)

// FieldMapping maps each canonical post field to an ordered list of candidate
// dot paths into the raw record. The first path that resolves to a non-empty
// value wins, which mirrors how scraper exports drift between runs.
//
// Mapping files are YAML: canonical field name -> path or list of paths.
type FieldMapping struct {
	SourceID    []string `yaml:"source_id"`
	Author      []string `yaml:"author"`
	DisplayName []string `yaml:"display_name"`
	Timestamp   []string `yaml:"timestamp"`
	Text        []string `yaml:"text"`
	Likes       []string `yaml:"likes"`
	Shares      []string `yaml:"shares"`
	Comments    []string `yaml:"comments"`
	Views       []string `yaml:"views"`
	ReplyTo     []string `yaml:"reply_to"`
	ReshareOf   []string `yaml:"reshare_of"`
}

// DefaultMapping returns the built-in mapping for a platform. TikTok paths
// follow the Apify export schema; Twitter paths cover both classic API and
// flat per-row exports.
func DefaultMapping(p model.Platform) FieldMapping {
	switch p {
	case model.PlatformTikTok:
		return FieldMapping{
			SourceID:    []string{"id"},
			Author:      []string{"author.uniqueId", "authorMeta.name"},
			DisplayName: []string{"author.nickname", "authorMeta.nickName"},
			Timestamp:   []string{"createTimeISO", "createTime"},
			Text:        []string{"text", "desc"},
			Likes:       []string{"stats.diggCount", "diggCount"},
			Shares:      []string{"stats.shareCount", "shareCount"},
			Comments:    []string{"stats.commentCount", "commentCount"},
			Views:       []string{"stats.playCount", "playCount"},
		}
	default: // twitter
		return FieldMapping{
			SourceID:    []string{"id_str", "id"},
			Author:      []string{"user.screen_name", "author.screen_name", "user.username", "author.username", "screen_name", "username", "author_username"},
			DisplayName: []string{"user.name", "author.name", "name", "author_display_name"},
			Timestamp:   []string{"created_at", "createdAt", "created_timestamp"},
			Text:        []string{"text", "full_text", "content", "tweet_text", "message"},
			Likes:       []string{"favorite_count", "favourites_count", "likes"},
			Shares:      []string{"retweet_count", "retweets"},
			Comments:    []string{"reply_count", "replies"},
			ReplyTo:     []string{"in_reply_to_screen_name"},
			ReshareOf:   []string{"retweeted_status.user.screen_name"},
		}
	}
}

// LoadMapping reads a field-mapping YAML file and overlays it on the built-in
// defaults for the platform. Fields absent from the file keep their defaults.
func LoadMapping(p model.Platform, path string) (FieldMapping, error) {
	m := DefaultMapping(p)
	if path == "" {
		return m, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return m, fmt.Errorf("read mapping %s: %w", path, err)
	}
	var raw map[string]yaml.Node
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return m, fmt.Errorf("parse mapping %s: %w", path, err)
	}
	for name, node := range raw {
		paths, err := pathsFromNode(node)
		if err != nil {
			return m, fmt.Errorf("mapping %s: field %s: %w", path, name, err)
		}
		switch name {
		case "source_id":
			m.SourceID = paths
		case "author":
			m.Author = paths
		case "display_name":
			m.DisplayName = paths
		case "timestamp":
			m.Timestamp = paths
		case "text":
			m.Text = paths
		case "likes":
			m.Likes = paths
		case "shares":
			m.Shares = paths
		case "comments":
			m.Comments = paths
		case "views":
			m.Views = paths
		case "reply_to":
			m.ReplyTo = paths
		case "reshare_of":
			m.ReshareOf = paths
		default:
			return m, fmt.Errorf("mapping %s: unknown canonical field %q", path, name)
		}
	}
	return m, nil
}

func pathsFromNode(n yaml.Node) ([]string, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		return []string{n.Value}, nil
	case yaml.SequenceNode:
		var out []string
		if err := n.Decode(&out); err != nil {
			return nil, err
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected string or list of strings")
	}
}

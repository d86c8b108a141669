package graph

import "protestlens/internal/model"

// Role classification thresholds. Deliberately coarse: roles are a reading
// aid for the exported table, not a model.
const (
	organizerMinInteractions = 3
	organizerMinTargets      = 2
	creativeMinHashtags      = 5
	documentarianMinPosts    = 3
)

// ClassifyRoles assigns a role to each author from deterministic activity
// thresholds: authors who repeatedly push content at several others are
// organizers, hashtag-diverse authors are creatives, persistent posters are
// documentarians, everyone else stays unclassified. Checks run in that
// order.
func ClassifyRoles(authors []model.Author, posts []model.Post, g *Graph) []model.Author {
	postCount := map[string]int{}
	hashtags := map[string]map[string]struct{}{}
	for _, p := range posts {
		postCount[p.Author]++
		if hashtags[p.Author] == nil {
			hashtags[p.Author] = map[string]struct{}{}
		}
		for _, h := range p.Hashtags {
			hashtags[p.Author][h] = struct{}{}
		}
	}

	outEdges := map[string]int{}
	outTargets := map[string]int{}
	if g != nil {
		for src, targets := range g.weights {
			outTargets[src] = len(targets)
			for _, w := range targets {
				outEdges[src] += w
			}
		}
	}

	out := make([]model.Author, len(authors))
	for i, a := range authors {
		switch {
		case outEdges[a.Handle] >= organizerMinInteractions && outTargets[a.Handle] >= organizerMinTargets:
			a.Role = model.RoleOrganizer
		case len(hashtags[a.Handle]) >= creativeMinHashtags:
			a.Role = model.RoleCreative
		case postCount[a.Handle] >= documentarianMinPosts:
			a.Role = model.RoleDocumentarian
		default:
			a.Role = model.RoleUnclassified
		}
		out[i] = a
	}
	return out
}

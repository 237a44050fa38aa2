package playback

import (
	"sort"

	"github.com/rasel39/gigmarket/backend/pkg/storyclient"
)

// Group is one author's active stories, treated as a single playback unit
type Group struct {
	AuthorID string
	Username string
	UserImg  string
	Stories  []storyclient.Story
}

// AllViewed reports whether every story in the group already carries the
// viewer's id. Drives the ring styling only, never filtering.
func (g Group) AllViewed(viewerID string) bool {
	for _, s := range g.Stories {
		if !s.ViewedBy(viewerID) {
			return false
		}
	}
	return len(g.Stories) > 0
}

// GroupStories groups a feed (newest first) by author. Group order follows
// first appearance in the feed; within a group stories are reordered by
// creation time ascending so playback runs chronologically.
func GroupStories(stories []storyclient.Story) []Group {
	groups := []Group{}
	index := make(map[string]int)

	for _, s := range stories {
		i, ok := index[s.AuthorID]
		if !ok {
			i = len(groups)
			index[s.AuthorID] = i
			groups = append(groups, Group{
				AuthorID: s.AuthorID,
				Username: s.Username,
				UserImg:  s.UserImg,
			})
		}
		groups[i].Stories = append(groups[i].Stories, s)
	}

	for i := range groups {
		g := groups[i]
		sort.SliceStable(g.Stories, func(a, b int) bool {
			return g.Stories[a].CreatedAt.Before(g.Stories[b].CreatedAt)
		})
	}
	return groups
}

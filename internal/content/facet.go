package content

import (
	"slices"

	"inkflow/internal/models"
)

// TagFacet returns the distinct tags of posts, sorted.
func TagFacet(posts []models.Post) []string {
	var tags []string
	for _, p := range posts {
		tags = append(tags, p.Tags...)
	}
	slices.Sort(tags)
	return slices.Compact(tags)
}

// FilterByTag keeps the posts that carry tag exactly. An empty tag keeps
// everything.
func FilterByTag(posts []models.Post, tag string) []models.Post {
	if tag == "" {
		return posts
	}
	out := make([]models.Post, 0, len(posts))
	for _, p := range posts {
		if slices.Contains(p.Tags, tag) {
			out = append(out, p)
		}
	}
	return out
}

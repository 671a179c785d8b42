// Package feedtypes provides shared type definitions used by feed generation.
package feedtypes

import "time"

// Term is a taxonomy label attached to a content item.
type Term struct {
	Name string
}

// ContentItem defines the fields the feed renderer reads from one publishable unit.
// Implementations are owned by the content layer; the renderer never mutates them.
type ContentItem interface {
	Title() string
	// Link is the item path relative to the site base URL.
	Link() string
	PublishedAt() time.Time
	// Terms are returned in display order.
	Terms() []Term
	// ImageID returns "" when the item has no image.
	ImageID() string
	// Excerpt returns "" when the item has no excerpt.
	Excerpt() string
}

// TermNames returns the names of the given terms, preserving order.
func TermNames(terms []Term) []string {
	names := make([]string, len(terms))
	for i, t := range terms {
		names[i] = t.Name
	}
	return names
}

package store

import (
	"time"

	"github.com/lepinkainen/content-feed/pkg/feedtypes"
)

// Item is a stored content item. It implements feedtypes.ContentItem.
type Item struct {
	ID          string
	ItemTitle   string
	ItemLink    string
	Published   time.Time
	ItemTerms   []feedtypes.Term
	ItemImageID string
	ItemExcerpt string
	UpdatedAt   time.Time
}

var _ feedtypes.ContentItem = (*Item)(nil)

// Title returns the item title
func (i *Item) Title() string { return i.ItemTitle }

// Link returns the item path relative to the site root
func (i *Item) Link() string { return i.ItemLink }

// PublishedAt returns the publish time in UTC
func (i *Item) PublishedAt() time.Time { return i.Published.UTC() }

// Terms returns the item's terms in stored order
func (i *Item) Terms() []feedtypes.Term { return i.ItemTerms }

// ImageID returns the featured image id or ""
func (i *Item) ImageID() string { return i.ItemImageID }

// Excerpt returns the excerpt or ""
func (i *Item) Excerpt() string { return i.ItemExcerpt }

// Image is the metadata of an uploaded image.
type Image struct {
	ID     string
	Path   string // relative to the media base URL, e.g. "2024/03/harbour.jpg"
	Alt    string
	Width  int
	Height int
}

// Stats holds row counts for the store tables.
type Stats struct {
	Items  int
	Terms  int
	Images int
}

// ContentItems converts stored items for the feed renderer, keeping order
func ContentItems(items []*Item) []feedtypes.ContentItem {
	out := make([]feedtypes.ContentItem, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out
}

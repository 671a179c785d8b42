package feed

import (
	"github.com/lepinkainen/content-feed/pkg/i18n"
)

// Rendering constants for feed items
const (
	ExcerptLength     = 90
	DescriptionLength = 40
	ImageSize         = "medium_large"
	TextDomain        = "content-feed"
	TextContext       = "rss"
	LinkKey           = "Link"
)

// Cleaner strips markup from text and truncates it to maxLength characters
type Cleaner interface {
	Clean(text string, maxLength int) string
}

// ImageTagger renders an <img> element for an image id at a named size
type ImageTagger interface {
	ImageTag(imageID, size string) (string, error)
}

// Translator looks up a localized string
type Translator interface {
	Tx(key, domain, context, locale string) (string, error)
}

// Config describes the channel a feed document is published under
type Config struct {
	Title       string
	Link        string
	Description string
	Author      string
	Language    string
}

// language returns the configured language, falling back to the default locale
func (c Config) language() string {
	if c.Language == "" {
		return i18n.DefaultLocale
	}
	return c.Language
}

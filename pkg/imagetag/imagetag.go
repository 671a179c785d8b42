// Package imagetag renders <img> markup for stored images at named sizes.
package imagetag

import (
	"errors"
	"fmt"
	"html"
	"log/slog"
	"path"
	"strings"

	"github.com/lepinkainen/content-feed/pkg/store"
)

// ErrUnknownSize is returned for a size name that is not registered.
var ErrUnknownSize = errors.New("unknown image size")

// Size names understood by the tagger
const (
	SizeThumbnail   = "thumbnail"
	SizeMedium      = "medium"
	SizeMediumLarge = "medium_large"
	SizeLarge       = "large"
)

// DefaultSizes maps size names to their maximum width in pixels.
var DefaultSizes = map[string]int{
	SizeThumbnail:   150,
	SizeMedium:      300,
	SizeMediumLarge: 768,
	SizeLarge:       1024,
}

// Source looks up image metadata by id.
type Source interface {
	Image(id string) (*store.Image, error)
}

// Tagger builds image tags against a media base URL.
type Tagger struct {
	source  Source
	baseURL string
	sizes   map[string]int
}

// NewTagger creates a tagger serving images from baseURL with the default sizes
func NewTagger(source Source, baseURL string) *Tagger {
	return &Tagger{
		source:  source,
		baseURL: strings.TrimRight(baseURL, "/"),
		sizes:   DefaultSizes,
	}
}

// ImageTag returns the <img> element for imageID scaled to size. An empty id
// or an id missing from the source yields "".
func (t *Tagger) ImageTag(imageID, size string) (string, error) {
	if imageID == "" {
		return "", nil
	}

	maxWidth, ok := t.sizes[size]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownSize, size)
	}

	img, err := t.source.Image(imageID)
	if errors.Is(err, store.ErrNotFound) {
		slog.Warn("Image not found, rendering without it", "image", imageID)
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("image tag for %s: %w", imageID, err)
	}

	src, width, height := t.variant(img, maxWidth)

	var b strings.Builder
	fmt.Fprintf(&b, `<img src="%s"`, html.EscapeString(src))
	if width > 0 && height > 0 {
		fmt.Fprintf(&b, ` width="%d" height="%d"`, width, height)
	}
	fmt.Fprintf(&b, ` alt="%s" class="size-%s" loading="lazy">`, html.EscapeString(img.Alt), size)
	return b.String(), nil
}

// variant returns the URL and dimensions of the resized file for img.
// Resized files follow the "name-WxH.ext" convention next to the original.
func (t *Tagger) variant(img *store.Image, maxWidth int) (string, int, int) {
	original := t.baseURL + "/" + strings.TrimLeft(img.Path, "/")

	if img.Width <= 0 || img.Height <= 0 || img.Width <= maxWidth {
		return original, img.Width, img.Height
	}

	height := (img.Height*maxWidth + img.Width/2) / img.Width
	ext := path.Ext(img.Path)
	name := strings.TrimSuffix(strings.TrimLeft(img.Path, "/"), ext)

	return fmt.Sprintf("%s/%s-%dx%d%s", t.baseURL, name, maxWidth, height, ext), maxWidth, height
}

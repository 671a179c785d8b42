package feed

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/gorilla/feeds"

	"github.com/lepinkainen/content-feed/pkg/feedtypes"
	"github.com/lepinkainen/content-feed/pkg/filesystem"
)

// GeneratorName is written to the channel <generator> element
const GeneratorName = "content-feed"

// Document assembles rendered items into a complete RSS 2.0 feed
type Document struct {
	config    Config
	renderer  *ItemRenderer
	templates *TemplateGenerator
	now       func() time.Time
}

type documentData struct {
	Channel   *feeds.RssFeed
	Language  string
	Generator string
	Items     []string
}

// NewDocument creates a feed document for the given channel configuration
func NewDocument(config Config, renderer *ItemRenderer) (*Document, error) {
	tg := NewTemplateGenerator()
	if err := tg.LoadNamedTemplates(FeedTemplate); err != nil {
		return nil, fmt.Errorf("failed to load feed template: %w", err)
	}

	return &Document{
		config:    config,
		renderer:  renderer,
		templates: tg,
		now:       time.Now,
	}, nil
}

// channel builds the channel header. lastBuildDate is the newest item's
// publish time, or now for an empty feed.
func (d *Document) channel(items []feedtypes.ContentItem) *feeds.RssFeed {
	updated := d.now()
	if len(items) > 0 {
		updated = items[0].PublishedAt()
		for _, item := range items[1:] {
			if item.PublishedAt().After(updated) {
				updated = item.PublishedAt()
			}
		}
	}

	f := &feeds.Feed{
		Title:       d.config.Title,
		Link:        &feeds.Link{Href: d.config.Link},
		Description: d.config.Description,
		Copyright:   d.config.Author,
		Updated:     updated.UTC(),
	}
	return (&feeds.Rss{Feed: f}).RssFeed()
}

// Render returns the full feed XML for items, in the order given
func (d *Document) Render(items []feedtypes.ContentItem) (string, error) {
	rendered := make([]string, 0, len(items))
	for _, item := range items {
		out, err := d.renderer.Render(item, d.config.Link)
		if err != nil {
			return "", err
		}
		rendered = append(rendered, out)
	}

	data := documentData{
		Channel:   d.channel(items),
		Language:  d.config.language(),
		Generator: GeneratorName,
		Items:     rendered,
	}

	out, err := d.templates.ExecuteString(FeedTemplate, data)
	if err != nil {
		return "", err
	}

	slog.Debug("Feed rendered", "items", len(rendered))
	return out, nil
}

// SaveToFile renders the feed and writes it to outputPath, creating parent directories
func (d *Document) SaveToFile(items []feedtypes.ContentItem, outputPath string) error {
	out, err := d.Render(items)
	if err != nil {
		return fmt.Errorf("failed to render feed: %w", err)
	}

	if err := filesystem.WriteFileAtomic(outputPath, []byte(out)); err != nil {
		return fmt.Errorf("failed to write feed: %w", err)
	}

	slog.Info("Feed saved", "path", outputPath, "items", len(items))
	return nil
}

// CheckWellFormed reports the first XML syntax error in doc, if any
func CheckWellFormed(doc string) error {
	dec := xml.NewDecoder(strings.NewReader(doc))
	for {
		_, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("malformed XML: %w", err)
		}
	}
}

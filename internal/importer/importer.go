// Package importer loads content items and image metadata from YAML files into the store.
package importer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/html/charset"
	"gopkg.in/yaml.v3"

	"github.com/lepinkainen/content-feed/pkg/feedtypes"
	httputil "github.com/lepinkainen/content-feed/pkg/http"
	"github.com/lepinkainen/content-feed/pkg/store"
	"github.com/lepinkainen/content-feed/pkg/urlutils"
)

// ErrInvalidEntry is returned when an item or image is missing a required field
var ErrInvalidEntry = errors.New("invalid entry")

// Sink receives imported records
type Sink interface {
	SaveItem(item *store.Item) error
	SaveImage(img *store.Image) error
}

// File is the YAML import document
type File struct {
	Images []ImageEntry `yaml:"images"`
	Items  []ItemEntry  `yaml:"items"`
}

// ImageEntry describes one image
type ImageEntry struct {
	ID     string `yaml:"id"`
	Path   string `yaml:"path"`
	Alt    string `yaml:"alt"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// ItemEntry describes one content item. ExcerptFile, when set, is read
// relative to the import file and replaces Excerpt.
type ItemEntry struct {
	ID          string    `yaml:"id"`
	Title       string    `yaml:"title"`
	Link        string    `yaml:"link"`
	Published   time.Time `yaml:"published"`
	Terms       []string  `yaml:"terms"`
	Image       string    `yaml:"image"`
	Excerpt     string    `yaml:"excerpt"`
	ExcerptFile string    `yaml:"excerpt_file"`
}

// Fetcher downloads remote import files and excerpts
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, string, error)
}

// Result summarizes an import
type Result struct {
	Images  int
	Items   int
	ItemIDs []string
}

// Importer writes parsed entries into a Sink
type Importer struct {
	sink    Sink
	fetcher Fetcher
	newID   func() string
}

// New creates an importer that saves into sink and fetches remote sources
// with the default HTTP client
func New(sink Sink) *Importer {
	return &Importer{sink: sink, fetcher: httputil.NewClient(nil), newID: uuid.NewString}
}

// ImportSource imports from an http(s) URL or a local file path
func (im *Importer) ImportSource(ctx context.Context, source string) (Result, error) {
	if isRemote(source) {
		return im.ImportURL(ctx, source)
	}
	return im.ImportFile(ctx, source)
}

// ImportURL downloads and imports a YAML document. Relative excerpt files
// resolve against the document URL.
func (im *Importer) ImportURL(ctx context.Context, url string) (Result, error) {
	data, _, err := im.fetcher.Fetch(ctx, url)
	if err != nil {
		return Result{}, fmt.Errorf("failed to fetch import file: %w", err)
	}
	return im.Import(ctx, bytes.NewReader(data), url)
}

// ImportFile imports the YAML file at path
func (im *Importer) ImportFile(ctx context.Context, path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("failed to open import file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			slog.Warn("Failed to close import file", "path", path, "error", closeErr)
		}
	}()

	return im.Import(ctx, f, filepath.Dir(path))
}

// Import reads a YAML document from r. Relative excerpt files resolve against
// base, a directory or a URL. Images are saved before items.
func (im *Importer) Import(ctx context.Context, r io.Reader, base string) (Result, error) {
	var doc File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return Result{}, fmt.Errorf("failed to parse import file: %w", err)
	}

	var result Result
	for i, entry := range doc.Images {
		img, err := entry.toImage()
		if err != nil {
			return result, fmt.Errorf("image %d: %w", i+1, err)
		}
		if err := im.sink.SaveImage(img); err != nil {
			return result, fmt.Errorf("failed to save image %s: %w", img.ID, err)
		}
		result.Images++
	}

	for i, entry := range doc.Items {
		item, err := im.toItem(ctx, entry, base)
		if err != nil {
			return result, fmt.Errorf("item %d: %w", i+1, err)
		}
		if err := im.sink.SaveItem(item); err != nil {
			return result, fmt.Errorf("failed to save item %s: %w", item.ID, err)
		}
		result.Items++
		result.ItemIDs = append(result.ItemIDs, item.ID)
	}

	slog.Info("Import complete", "images", result.Images, "items", result.Items)
	return result, nil
}

func (e ImageEntry) toImage() (*store.Image, error) {
	if e.ID == "" || e.Path == "" {
		return nil, fmt.Errorf("%w: image needs id and path", ErrInvalidEntry)
	}
	return &store.Image{ID: e.ID, Path: e.Path, Alt: e.Alt, Width: e.Width, Height: e.Height}, nil
}

func (im *Importer) toItem(ctx context.Context, e ItemEntry, base string) (*store.Item, error) {
	switch {
	case strings.TrimSpace(e.Title) == "":
		return nil, fmt.Errorf("%w: title is required", ErrInvalidEntry)
	case e.Link == "":
		return nil, fmt.Errorf("%w: link is required for %q", ErrInvalidEntry, e.Title)
	case e.Published.IsZero():
		return nil, fmt.Errorf("%w: published is required for %q", ErrInvalidEntry, e.Title)
	}

	id := e.ID
	if id == "" {
		id = im.newID()
		slog.Debug("Assigned item id", "title", e.Title, "id", id)
	}

	excerpt := e.Excerpt
	if e.ExcerptFile != "" {
		content, err := im.readExcerpt(ctx, e.ExcerptFile, base)
		if err != nil {
			return nil, err
		}
		excerpt = content
	}

	terms := make([]feedtypes.Term, 0, len(e.Terms))
	for _, name := range e.Terms {
		if name = strings.TrimSpace(name); name != "" {
			terms = append(terms, feedtypes.Term{Name: name})
		}
	}

	return &store.Item{
		ID:          id,
		ItemTitle:   e.Title,
		ItemLink:    e.Link,
		Published:   e.Published.UTC(),
		ItemTerms:   terms,
		ItemImageID: e.Image,
		ItemExcerpt: excerpt,
	}, nil
}

func isRemote(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

func (im *Importer) readExcerpt(ctx context.Context, ref, base string) (string, error) {
	if !isRemote(ref) && !isRemote(base) {
		if !filepath.IsAbs(ref) {
			ref = filepath.Join(base, ref)
		}
		return ReadHTMLFile(ref)
	}

	url := ref
	if !isRemote(ref) {
		resolved, err := urlutils.ResolveURL(base, ref)
		if err != nil {
			return "", err
		}
		url = resolved
	}

	data, contentType, err := im.fetcher.Fetch(ctx, url)
	if err != nil {
		return "", fmt.Errorf("failed to fetch excerpt: %w", err)
	}
	return DecodeHTML(bytes.NewReader(data), contentType)
}

// ReadHTMLFile reads an HTML file and converts it to UTF-8, using the charset
// declared by a byte order mark or <meta> element
func ReadHTMLFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open excerpt file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			slog.Warn("Failed to close excerpt file", "path", path, "error", closeErr)
		}
	}()

	content, err := DecodeHTML(f, "text/html")
	if err != nil {
		return "", fmt.Errorf("excerpt file %s: %w", path, err)
	}
	return content, nil
}

// DecodeHTML converts HTML from r to UTF-8. The charset comes from a byte
// order mark, the contentType parameter or a <meta> element, in that order.
func DecodeHTML(r io.Reader, contentType string) (string, error) {
	utf8Reader, err := charset.NewReader(r, contentType)
	if err != nil {
		return "", fmt.Errorf("failed to detect charset: %w", err)
	}

	data, err := io.ReadAll(utf8Reader)
	if err != nil {
		return "", fmt.Errorf("failed to read HTML: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

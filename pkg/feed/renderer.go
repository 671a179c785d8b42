package feed

import (
	"fmt"
	"html"
	"strings"

	"github.com/lepinkainen/content-feed/pkg/feedtypes"
)

// ItemRenderer turns content items into RSS <item> fragments
type ItemRenderer struct {
	cleaner    Cleaner
	images     ImageTagger
	translator Translator
	locale     string
	templates  *TemplateGenerator
}

// itemData is the view passed to the rss-item template
type itemData struct {
	Title       string
	Link        string
	GUID        string
	PubDate     string
	Categories  []string
	Content     string
	Description string
}

// NewItemRenderer creates a renderer using the given collaborators.
// An empty locale selects the default locale.
func NewItemRenderer(cleaner Cleaner, images ImageTagger, translator Translator, locale string) (*ItemRenderer, error) {
	if locale == "" {
		locale = Config{}.language()
	}

	tg := NewTemplateGenerator()
	if err := tg.LoadNamedTemplates(ItemTemplate); err != nil {
		return nil, fmt.Errorf("failed to load item template: %w", err)
	}

	return &ItemRenderer{
		cleaner:    cleaner,
		images:     images,
		translator: translator,
		locale:     locale,
		templates:  tg,
	}, nil
}

// Render returns the <item> element for item. Link and guid are both
// baseURL followed by the item's link path.
func (r *ItemRenderer) Render(item feedtypes.ContentItem, baseURL string) (string, error) {
	link := baseURL + item.Link()

	content, err := r.content(item, link)
	if err != nil {
		return "", fmt.Errorf("failed to build content for %q: %w", item.Title(), err)
	}

	data := itemData{
		Title:      item.Title(),
		Link:       link,
		GUID:       link,
		PubDate:    RSSDate(item.PublishedAt()),
		Categories: feedtypes.TermNames(item.Terms()),
		Content:    content,
	}
	if content != "" {
		data.Description = r.cleaner.Clean(content, DescriptionLength)
	}

	out, err := r.templates.ExecuteString(ItemTemplate, data)
	if err != nil {
		return "", err
	}
	return out, nil
}

// content builds the HTML body: optional linked image, optional excerpt,
// then the localized link paragraph.
func (r *ItemRenderer) content(item feedtypes.ContentItem, link string) (string, error) {
	var b strings.Builder
	href := html.EscapeString(link)

	if imageID := item.ImageID(); imageID != "" {
		tag, err := r.images.ImageTag(imageID, ImageSize)
		if err != nil {
			return "", fmt.Errorf("image %s: %w", imageID, err)
		}
		if tag != "" {
			fmt.Fprintf(&b, `<p><a href="%s">%s</a></p>`, href, tag)
		}
	}

	if excerpt := r.cleaner.Clean(item.Excerpt(), ExcerptLength); excerpt != "" {
		fmt.Fprintf(&b, "<p>%s</p>", html.EscapeString(excerpt))
	}

	label, err := r.translator.Tx(LinkKey, TextDomain, TextContext, r.locale)
	if err != nil {
		return "", fmt.Errorf("link label: %w", err)
	}
	fmt.Fprintf(&b, `<p><a href="%s">%s</a></p>`, href, html.EscapeString(label))

	return b.String(), nil
}

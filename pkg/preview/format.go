// Package preview is an interactive terminal browser for feed items built on Bubble Tea.
package preview

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/lepinkainen/content-feed/pkg/feedtypes"
	"github.com/lepinkainen/content-feed/pkg/textutil"
)

const (
	listTitleWidth = 70
	wrapWidth      = 72
	excerptPreview = 600
	rule           = "───────────────────────────────────────────────────────────────────────"
)

// ItemRenderer produces the RSS <item> fragment shown in the XML view
type ItemRenderer interface {
	Render(item feedtypes.ContentItem, baseURL string) (string, error)
}

// wrapText breaks text into lines of at most width runes at word boundaries.
// Words longer than width get a line of their own.
func wrapText(text string, width int) string {
	if width <= 0 {
		width = wrapWidth
	}

	var lines []string
	var line strings.Builder
	lineLen := 0

	for _, word := range strings.Fields(text) {
		wordLen := utf8.RuneCountInString(word)
		if lineLen > 0 && lineLen+1+wordLen > width {
			lines = append(lines, line.String())
			line.Reset()
			lineLen = 0
		}
		if lineLen > 0 {
			line.WriteByte(' ')
			lineLen++
		}
		line.WriteString(word)
		lineLen += wordLen
	}
	if lineLen > 0 {
		lines = append(lines, line.String())
	}

	return strings.Join(lines, "\n")
}

// FormatCompactListItem formats one list row
// Example: " 1. 2024-03-01 09:30  Hello  [News, Local]"
func FormatCompactListItem(index int, item feedtypes.ContentItem) string {
	title := textutil.Truncate(item.Title(), listTitleWidth)
	date := item.PublishedAt().UTC().Format("2006-01-02 15:04")

	row := fmt.Sprintf("%2d. %s  %s", index+1, date, title)
	if names := feedtypes.TermNames(item.Terms()); len(names) > 0 {
		row += "  [" + strings.Join(names, ", ") + "]"
	}
	return row
}

// FormatDetailedItem lists every field the feed renderer reads from item
func FormatDetailedItem(item feedtypes.ContentItem, baseURL string, now time.Time) string {
	var b strings.Builder

	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "Title: %s\n", item.Title())
	fmt.Fprintf(&b, "Link: %s\n", baseURL+item.Link())
	fmt.Fprintf(&b, "Published: %s (%s)\n", item.PublishedAt().UTC().Format(time.RFC1123Z), formatTimeAgo(item.PublishedAt(), now))

	if names := feedtypes.TermNames(item.Terms()); len(names) > 0 {
		fmt.Fprintf(&b, "Terms: %s\n", strings.Join(names, ", "))
	}
	if imageID := item.ImageID(); imageID != "" {
		fmt.Fprintf(&b, "Image: %s\n", imageID)
	}
	if excerpt := textutil.Clean(item.Excerpt(), excerptPreview); excerpt != "" {
		fmt.Fprintf(&b, "\nExcerpt:\n%s\n", wrapText(excerpt, wrapWidth))
	}

	b.WriteString(rule + "\n")
	return b.String()
}

// FormatXMLItem renders item with r and wraps long lines for the terminal
func FormatXMLItem(r ItemRenderer, item feedtypes.ContentItem, baseURL string) string {
	out, err := r.Render(item, baseURL)
	if err != nil {
		return fmt.Sprintf("Error rendering item: %s", err)
	}
	return wrapLongLines(out, 80)
}

// wrapLongLines hard-wraps lines longer than width, preferring to break after
// a space or a closing '>' within the last 20 columns
func wrapLongLines(text string, width int) string {
	var b strings.Builder

	for _, line := range strings.Split(text, "\n") {
		runes := []rune(line)
		for len(runes) > width {
			cut := width
			for i := width; i > width-20 && i > 0; i-- {
				if runes[i-1] == ' ' || runes[i-1] == '>' {
					cut = i
					break
				}
			}
			b.WriteString(string(runes[:cut]))
			b.WriteByte('\n')
			runes = runes[cut:]
		}
		b.WriteString(string(runes))
		b.WriteByte('\n')
	}

	return b.String()
}

// formatTimeAgo describes t relative to now
func formatTimeAgo(t, now time.Time) string {
	d := now.Sub(t)

	plural := func(n int, unit string) string {
		if n == 1 {
			return "1 " + unit + " ago"
		}
		return fmt.Sprintf("%d %ss ago", n, unit)
	}

	switch {
	case d < 0:
		return "scheduled"
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return plural(int(d.Minutes()), "minute")
	case d < 24*time.Hour:
		return plural(int(d.Hours()), "hour")
	case d < 7*24*time.Hour:
		return plural(int(d.Hours()/24), "day")
	default:
		return t.UTC().Format("2006-01-02")
	}
}

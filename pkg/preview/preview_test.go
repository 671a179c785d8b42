package preview

import (
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lepinkainen/content-feed/pkg/feedtypes"
	"github.com/lepinkainen/content-feed/pkg/store"
)

type stubRenderer struct {
	out string
	err error
}

func (s stubRenderer) Render(item feedtypes.ContentItem, baseURL string) (string, error) {
	return s.out, s.err
}

var published = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

func sampleItems() []feedtypes.ContentItem {
	return []feedtypes.ContentItem{
		&store.Item{
			ID:          "hello",
			ItemTitle:   "Hello",
			ItemLink:    "/hello",
			Published:   published,
			ItemTerms:   []feedtypes.Term{{Name: "News"}, {Name: "Local"}},
			ItemImageID: "harbour",
			ItemExcerpt: "<p>World &amp; beyond</p>",
		},
		&store.Item{ID: "plain", ItemTitle: "Plain", ItemLink: "/plain", Published: published.Add(-time.Hour)},
	}
}

func TestWrapText(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  string
	}{
		{name: "fits", text: "short text", width: 20, want: "short text"},
		{name: "wraps at words", text: "one two three four", width: 9, want: "one two\nthree\nfour"},
		{name: "long word alone", text: "a supercalifragilistic b", width: 5, want: "a\nsupercalifragilistic\nb"},
		{name: "empty", text: "   ", width: 10, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := wrapText(tt.text, tt.width); got != tt.want {
				t.Errorf("wrapText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatCompactListItem(t *testing.T) {
	items := sampleItems()

	tests := []struct {
		index int
		want  string
	}{
		{0, " 1. 2024-03-01 09:30  Hello  [News, Local]"},
		{1, " 2. 2024-03-01 08:30  Plain"},
	}

	for _, tt := range tests {
		if got := FormatCompactListItem(tt.index, items[tt.index]); got != tt.want {
			t.Errorf("FormatCompactListItem(%d) = %q, want %q", tt.index, got, tt.want)
		}
	}
}

func TestFormatDetailedItem(t *testing.T) {
	got := FormatDetailedItem(sampleItems()[0], "https://x.test", published.Add(2*time.Hour))

	for _, want := range []string{
		"Title: Hello\n",
		"Link: https://x.test/hello\n",
		"Published: Fri, 01 Mar 2024 09:30:00 +0000 (2 hours ago)\n",
		"Terms: News, Local\n",
		"Image: harbour\n",
		"Excerpt:\nWorld & beyond\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("FormatDetailedItem() missing %q\n%s", want, got)
		}
	}
}

func TestFormatXMLItem(t *testing.T) {
	item := sampleItems()[0]

	long := "<item><description>" + strings.Repeat("word ", 40) + "</description></item>"
	got := FormatXMLItem(stubRenderer{out: long}, item, "https://x.test")
	for _, line := range strings.Split(strings.TrimRight(got, "\n"), "\n") {
		if n := utf8.RuneCountInString(line); n > 80 {
			t.Errorf("line has %d runes, want <= 80: %q", n, line)
		}
	}
	if strings.ReplaceAll(got, "\n", "") != long {
		t.Errorf("wrapping changed the content")
	}

	got = FormatXMLItem(stubRenderer{err: errors.New("boom")}, item, "https://x.test")
	if got != "Error rendering item: boom" {
		t.Errorf("FormatXMLItem() = %q", got)
	}
}

func TestFormatTimeAgo(t *testing.T) {
	now := published

	tests := []struct {
		t    time.Time
		want string
	}{
		{now.Add(time.Hour), "scheduled"},
		{now.Add(-10 * time.Second), "just now"},
		{now.Add(-time.Minute), "1 minute ago"},
		{now.Add(-5 * time.Minute), "5 minutes ago"},
		{now.Add(-3 * time.Hour), "3 hours ago"},
		{now.Add(-24 * time.Hour), "1 day ago"},
		{now.Add(-30 * 24 * time.Hour), "2024-01-31"},
	}

	for _, tt := range tests {
		if got := formatTimeAgo(tt.t, now); got != tt.want {
			t.Errorf("formatTimeAgo(%v) = %q, want %q", tt.t, got, tt.want)
		}
	}
}

func press(t *testing.T, m Model, keys ...tea.KeyMsg) Model {
	t.Helper()

	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(Model)
	}
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel_Navigation(t *testing.T) {
	m := NewModel(sampleItems(), stubRenderer{out: "<item></item>"}, "https://x.test", "Example")

	m = press(t, m, runes("j"), runes("j"))
	if m.cursor != 1 {
		t.Fatalf("cursor = %d, want 1 (clamped)", m.cursor)
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyUp})
	if m.cursor != 0 {
		t.Fatalf("cursor = %d, want 0", m.cursor)
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.viewMode != DetailViewMode || m.selected != 0 {
		t.Fatalf("after enter: mode=%v selected=%d", m.viewMode, m.selected)
	}
	if !strings.Contains(m.View(), "Title: Hello") {
		t.Errorf("detail view missing title\n%s", m.View())
	}

	m = press(t, m, runes("x"))
	if m.viewMode != XMLViewMode {
		t.Fatalf("after x: mode=%v, want XML view", m.viewMode)
	}
	if !strings.Contains(m.View(), "<item></item>") {
		t.Errorf("XML view missing rendered item\n%s", m.View())
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.viewMode != ListViewMode {
		t.Fatalf("after esc: mode=%v, want list view", m.viewMode)
	}
	if !strings.Contains(m.View(), "Feed Preview - Example (2 items)") {
		t.Errorf("list header missing\n%s", m.View())
	}
}

func TestModel_Quit(t *testing.T) {
	m := NewModel(sampleItems(), stubRenderer{}, "https://x.test", "Example")

	_, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Errorf("command did not quit")
	}
}

func TestModel_VisibleRange(t *testing.T) {
	items := make([]feedtypes.ContentItem, 20)
	for i := range items {
		items[i] = &store.Item{ItemTitle: "x", Published: published}
	}

	m := NewModel(items, stubRenderer{}, "", "")
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 11})
	m = next.(Model)
	m.cursor = 19

	start, end := m.visibleRange()
	if start != 15 || end != 20 {
		t.Errorf("visibleRange() = %d, %d, want 15, 20", start, end)
	}
}

package preview

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lepinkainen/content-feed/pkg/feedtypes"
)

// ViewMode selects what the preview shows
type ViewMode int

// View modes for the preview TUI
const (
	ListViewMode ViewMode = iota
	DetailViewMode
	XMLViewMode
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("12")).Bold(true)
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Model is the Bubble Tea model for the preview
type Model struct {
	items    []feedtypes.ContentItem
	renderer ItemRenderer
	baseURL  string
	title    string
	now      func() time.Time

	cursor   int
	selected int
	viewMode ViewMode
	height   int
}

// NewModel creates a preview over items. title is shown in the list header.
func NewModel(items []feedtypes.ContentItem, renderer ItemRenderer, baseURL, title string) Model {
	return Model{
		items:    items,
		renderer: renderer,
		baseURL:  baseURL,
		title:    title,
		now:      time.Now,
		selected: -1,
		viewMode: ListViewMode,
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		key := msg.String()
		if key == "q" || key == "ctrl+c" {
			return m, tea.Quit
		}
		if m.viewMode == ListViewMode {
			return m.updateList(key), nil
		}
		return m.updateItem(key), nil
	}

	return m, nil
}

func (m Model) updateList(key string) Model {
	switch key {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case "home", "g":
		m.cursor = 0
	case "end", "G":
		m.cursor = max(len(m.items)-1, 0)
	case "enter":
		m.selected = m.cursor
		m.viewMode = DetailViewMode
	case "x":
		m.selected = m.cursor
		m.viewMode = XMLViewMode
	}
	return m
}

func (m Model) updateItem(key string) Model {
	switch key {
	case "esc", "backspace":
		m.viewMode = ListViewMode
	case "x":
		if m.viewMode == DetailViewMode {
			m.viewMode = XMLViewMode
		} else {
			m.viewMode = DetailViewMode
		}
	}
	return m
}

// View implements tea.Model
func (m Model) View() string {
	switch m.viewMode {
	case DetailViewMode:
		return m.itemView("Item", func(item feedtypes.ContentItem) string {
			return FormatDetailedItem(item, m.baseURL, m.now())
		}, "esc: back to list • x: XML view • q: quit")
	case XMLViewMode:
		return m.itemView("RSS <item>", func(item feedtypes.ContentItem) string {
			return FormatXMLItem(m.renderer, item, m.baseURL)
		}, "esc: back to list • x: detail view • q: quit")
	default:
		return m.listView()
	}
}

// visibleRange keeps the cursor roughly centred when the list is taller than the window
func (m Model) visibleRange() (int, int) {
	start, end := 0, len(m.items)
	if m.height <= 0 {
		return start, end
	}

	maxVisible := m.height - 6
	if maxVisible <= 0 || maxVisible >= len(m.items) {
		return start, end
	}

	start = max(m.cursor-maxVisible/2, 0)
	end = start + maxVisible
	if end > len(m.items) {
		end = len(m.items)
		start = end - maxVisible
	}
	return start, end
}

func (m Model) listView() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("Feed Preview - %s (%d items)", m.title, len(m.items))))
	b.WriteString("\n\n")

	start, end := m.visibleRange()
	for i := start; i < end; i++ {
		line := FormatCompactListItem(i, m.items[i])
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("→ " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(footerStyle.Render("↑/↓ or j/k: navigate • enter: details • x: XML view • q: quit"))
	return b.String()
}

func (m Model) itemView(header string, body func(feedtypes.ContentItem) string, footer string) string {
	if m.selected < 0 || m.selected >= len(m.items) {
		return "No item selected"
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n\n")
	b.WriteString(body(m.items[m.selected]))
	b.WriteString("\n")
	b.WriteString(footerStyle.Render(footer))
	return b.String()
}

// Run starts the preview in the terminal's alternate screen
func Run(items []feedtypes.ContentItem, renderer ItemRenderer, baseURL, title string) error {
	if len(items) == 0 {
		fmt.Println("No items to preview")
		return nil
	}

	p := tea.NewProgram(NewModel(items, renderer, baseURL, title), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

package feed

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"text/template"
)

// Template names shipped in the templates directory
const (
	ItemTemplate = "rss-item"
	FeedTemplate = "rss-feed"
)

// TemplateGenerator holds parsed feed templates
type TemplateGenerator struct {
	templates map[string]*template.Template
	funcMap   template.FuncMap
}

// NewTemplateGenerator creates an empty template set with the feed helper functions
func NewTemplateGenerator() *TemplateGenerator {
	return &TemplateGenerator{
		templates: make(map[string]*template.Template),
		funcMap:   TemplateFuncs(),
	}
}

// LoadTemplate parses content as the template called name
func (tg *TemplateGenerator) LoadTemplate(name, content string) error {
	tmpl, err := template.New(name).Funcs(tg.funcMap).Parse(content)
	if err != nil {
		return fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	tg.templates[name] = tmpl
	slog.Debug("Template loaded", "name", name)
	return nil
}

// LoadNamedTemplates loads name.tmpl for every name, preferring the override
// filesystem and falling back to the embedded copies
func (tg *TemplateGenerator) LoadNamedTemplates(names ...string) error {
	for _, name := range names {
		content, source, err := readTemplate(name + ".tmpl")
		if err != nil {
			return err
		}

		slog.Debug("Loading template", "name", name, "source", source)
		if err := tg.LoadTemplate(name, content); err != nil {
			return err
		}
	}
	return nil
}

// Execute renders the named template into w
func (tg *TemplateGenerator) Execute(name string, data any, w io.Writer) error {
	tmpl, exists := tg.templates[name]
	if !exists {
		return fmt.Errorf("template %s not found", name)
	}

	if err := tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	return nil
}

// ExecuteString renders the named template and returns the output
func (tg *TemplateGenerator) ExecuteString(name string, data any) (string, error) {
	var b strings.Builder
	if err := tg.Execute(name, data, &b); err != nil {
		return "", err
	}
	return b.String(), nil
}

// GetAvailableTemplates returns the loaded template names in sorted order
func (tg *TemplateGenerator) GetAvailableTemplates() []string {
	names := make([]string, 0, len(tg.templates))
	for name := range tg.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

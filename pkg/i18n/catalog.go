// Package i18n provides message lookup for feed output.
package i18n

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"

	"golang.org/x/text/language"

	"github.com/lepinkainen/content-feed/configs"
)

// ErrUnknownLocale is returned when a locale string cannot be parsed as a BCP 47 tag.
var ErrUnknownLocale = errors.New("unknown locale")

// DefaultLocale is used when no loaded catalog matches the requested locale.
const DefaultLocale = "en"

// Message is a single translated string.
type Message struct {
	Domain      string `json:"domain"`
	Context     string `json:"context"`
	Key         string `json:"key"`
	Translation string `json:"translation"`
}

type localeFile struct {
	Locale   string    `json:"locale"`
	Messages []Message `json:"messages"`
}

type messageKey struct {
	domain, context, key string
}

// Catalog holds translations for a set of locales. It is read-only after loading
// and safe for concurrent use.
type Catalog struct {
	tags     []language.Tag
	matcher  language.Matcher
	messages []map[messageKey]string
}

// DefaultCatalog loads the catalogs compiled into the binary.
func DefaultCatalog() (*Catalog, error) {
	return LoadCatalog(configs.EmbeddedConfigs, "locales", DefaultLocale)
}

// LoadCatalog reads every *.json file in dir. The catalog for defaultLocale is
// used as the fallback when no other locale matches.
func LoadCatalog(fsys fs.FS, dir, defaultLocale string) (*Catalog, error) {
	files, err := fs.Glob(fsys, path.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list locale files: %w", err)
	}

	defaultTag, err := language.Parse(defaultLocale)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLocale, defaultLocale)
	}

	c := &Catalog{}
	for _, file := range files {
		data, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, fmt.Errorf("failed to read locale file %s: %w", file, err)
		}

		var lf localeFile
		if err := json.Unmarshal(data, &lf); err != nil {
			return nil, fmt.Errorf("failed to parse locale file %s: %w", file, err)
		}

		tag, err := language.Parse(lf.Locale)
		if err != nil {
			return nil, fmt.Errorf("locale file %s: %w: %s", file, ErrUnknownLocale, lf.Locale)
		}

		c.add(tag, lf.Messages, tag == defaultTag)
		slog.Debug("Loaded locale catalog", "locale", tag, "messages", len(lf.Messages))
	}

	if len(c.tags) == 0 {
		return nil, fmt.Errorf("no locale files found in %s", dir)
	}

	c.matcher = language.NewMatcher(c.tags)
	return c, nil
}

// add registers messages for tag. The default locale is kept at index 0 because
// language.Matcher falls back to its first tag.
func (c *Catalog) add(tag language.Tag, messages []Message, isDefault bool) {
	table := make(map[messageKey]string, len(messages))
	for _, m := range messages {
		table[messageKey{m.Domain, m.Context, m.Key}] = m.Translation
	}

	if isDefault {
		c.tags = append([]language.Tag{tag}, c.tags...)
		c.messages = append([]map[messageKey]string{table}, c.messages...)
		return
	}
	c.tags = append(c.tags, tag)
	c.messages = append(c.messages, table)
}

// Locales returns the loaded locale tags, default first.
func (c *Catalog) Locales() []string {
	out := make([]string, len(c.tags))
	for i, t := range c.tags {
		out[i] = t.String()
	}
	return out
}

// Tx translates key within domain and context for locale. A missing message
// yields the key itself.
func (c *Catalog) Tx(key, domain, context, locale string) (string, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownLocale, locale)
	}

	_, index, _ := c.matcher.Match(tag)
	if translation, ok := c.messages[index][messageKey{domain, context, key}]; ok {
		return translation, nil
	}

	return key, nil
}

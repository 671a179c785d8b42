package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lepinkainen/content-feed/internal/importer"
	"github.com/lepinkainen/content-feed/pkg/feed"
	"github.com/lepinkainen/content-feed/pkg/store"
)

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func TestApp_ImportAndGenerate(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "site.yaml")
	writeTestFile(t, configPath, `
site:
  url: https://x.test/
  title: Example
  description: Example feed
feed:
  locale: fi
images:
  base_url: https://cdn.x.test/
`)

	importPath := filepath.Join(dir, "content.yaml")
	writeTestFile(t, importPath, `
images:
  - id: harbour
    path: harbour.jpg
    width: 1600
    height: 900
items:
  - id: hello
    title: Hello
    link: /hello
    published: 2024-03-01T09:30:00Z
    terms: [News]
    image: harbour
    excerpt: World
`)

	a, err := openApp(configPath, filepath.Join(dir, "content.db"), true)
	if err != nil {
		t.Fatalf("openApp() error = %v", err)
	}
	defer a.close()

	if _, err := importer.New(a.store).ImportSource(context.Background(), importPath); err != nil {
		t.Fatalf("ImportFile() error = %v", err)
	}

	items, err := a.recentItems(0)
	if err != nil {
		t.Fatalf("recentItems() error = %v", err)
	}

	outfile := filepath.Join(dir, "public", "feed.xml")
	if err := a.document.SaveToFile(store.ContentItems(items), outfile); err != nil {
		t.Fatalf("SaveToFile() error = %v", err)
	}

	data, err := os.ReadFile(outfile)
	if err != nil {
		t.Fatalf("failed to read feed: %v", err)
	}
	out := string(data)

	for _, want := range []string{
		"<language>fi</language>",
		"<link>https://x.test/hello</link>",
		`<img src="https://cdn.x.test/harbour-768x432.jpg"`,
		`<a href="https://x.test/hello">Linkki</a>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("feed missing %q\n%s", want, out)
		}
	}
	if err := feed.CheckWellFormed(out); err != nil {
		t.Errorf("feed not well-formed: %v", err)
	}
}

func TestOpenApp_RequiresSiteURL(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "site.yaml")
	writeTestFile(t, configPath, "site:\n  title: No URL\n")

	if _, err := openApp(configPath, filepath.Join(dir, "content.db"), true); err == nil {
		t.Fatal("openApp() expected validation error")
	}

	a, err := openApp(configPath, filepath.Join(dir, "content.db"), false)
	if err != nil {
		t.Fatalf("openApp() without site requirement error = %v", err)
	}
	defer a.close()

	if a.renderer != nil {
		t.Errorf("renderer should not be built without a site URL")
	}
	if err := a.invalidateFeed(); err != nil {
		t.Errorf("invalidateFeed() error = %v", err)
	}
}

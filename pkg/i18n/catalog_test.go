package i18n

import (
	"errors"
	"testing"
	"testing/fstest"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"locales/de.json": {Data: []byte(`{"locale":"de","messages":[{"domain":"d","context":"c","key":"Link","translation":"Verweis"}]}`)},
		"locales/en.json": {Data: []byte(`{"locale":"en","messages":[{"domain":"d","context":"c","key":"Link","translation":"Link"}]}`)},
	}
}

func TestCatalog_Tx(t *testing.T) {
	catalog, err := LoadCatalog(testFS(), "locales", "en")
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}

	tests := []struct {
		name    string
		key     string
		domain  string
		context string
		locale  string
		want    string
	}{
		{"exact locale", "Link", "d", "c", "de", "Verweis"},
		{"regional variant matches base", "Link", "d", "c", "de-AT", "Verweis"},
		{"default locale", "Link", "d", "c", "en", "Link"},
		{"unsupported locale falls back to default", "Link", "d", "c", "ja", "Link"},
		{"missing key returns key", "Subscribe", "d", "c", "de", "Subscribe"},
		{"context is part of the key", "Link", "d", "other", "de", "Link"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := catalog.Tx(tt.key, tt.domain, tt.context, tt.locale)
			if err != nil {
				t.Fatalf("Tx() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Tx() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCatalog_Tx_InvalidLocale(t *testing.T) {
	catalog, err := LoadCatalog(testFS(), "locales", "en")
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}

	_, err = catalog.Tx("Link", "d", "c", "not a locale!")
	if !errors.Is(err, ErrUnknownLocale) {
		t.Errorf("Tx() error = %v, want ErrUnknownLocale", err)
	}
}

func TestLoadCatalog_DefaultFirst(t *testing.T) {
	catalog, err := LoadCatalog(testFS(), "locales", "en")
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}

	locales := catalog.Locales()
	if len(locales) != 2 || locales[0] != "en" {
		t.Errorf("Locales() = %v, want en first", locales)
	}
}

func TestLoadCatalog_Errors(t *testing.T) {
	tests := []struct {
		name string
		fs   fstest.MapFS
	}{
		{"no files", fstest.MapFS{}},
		{"broken json", fstest.MapFS{"locales/en.json": {Data: []byte(`{`)}}},
		{"bad locale tag", fstest.MapFS{"locales/x.json": {Data: []byte(`{"locale":"??","messages":[]}`)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadCatalog(tt.fs, "locales", "en"); err == nil {
				t.Error("LoadCatalog() expected error")
			}
		})
	}
}

func TestDefaultCatalog(t *testing.T) {
	catalog, err := DefaultCatalog()
	if err != nil {
		t.Fatalf("DefaultCatalog() error = %v", err)
	}

	got, err := catalog.Tx("Link", "content-feed", "rss", "en")
	if err != nil {
		t.Fatalf("Tx() error = %v", err)
	}
	if got != "Link" {
		t.Errorf("Tx(Link, en) = %q, want Link", got)
	}

	got, err = catalog.Tx("Link", "content-feed", "rss", "fi")
	if err != nil {
		t.Fatalf("Tx() error = %v", err)
	}
	if got != "Linkki" {
		t.Errorf("Tx(Link, fi) = %q, want Linkki", got)
	}
}

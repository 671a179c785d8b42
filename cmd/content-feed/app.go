package main

import (
	"fmt"
	"log/slog"

	"github.com/lepinkainen/content-feed/internal/config"
	"github.com/lepinkainen/content-feed/pkg/database"
	"github.com/lepinkainen/content-feed/pkg/feed"
	"github.com/lepinkainen/content-feed/pkg/i18n"
	"github.com/lepinkainen/content-feed/pkg/imagetag"
	"github.com/lepinkainen/content-feed/pkg/store"
	"github.com/lepinkainen/content-feed/pkg/textutil"
)

const feedCacheTable = "feed_cache"

// app wires the store, renderer and feed document from the site configuration
type app struct {
	cfg      *config.Config
	store    *store.Store
	cache    *database.Cache
	renderer *feed.ItemRenderer
	document *feed.Document
}

// openApp loads configuration and opens the content store. requireSite
// validates the site settings needed to render URLs.
func openApp(configPath, databasePath string, requireSite bool) (*app, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if databasePath != "" {
		cfg.Database.Path = databasePath
	}
	if requireSite {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	s, err := store.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, store: s}
	if err := a.init(); err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

func (a *app) init() error {
	cache, err := database.NewCache(a.store.Database(), feedCacheTable)
	if err != nil {
		return err
	}
	a.cache = cache

	if a.cfg.Site.URL == "" {
		// Commands that never render only need the store
		return nil
	}

	catalog, err := i18n.DefaultCatalog()
	if err != nil {
		return fmt.Errorf("failed to load translations: %w", err)
	}

	imageBase, err := a.cfg.ImageBaseURL()
	if err != nil {
		return fmt.Errorf("invalid images.base_url: %w", err)
	}

	a.renderer, err = feed.NewItemRenderer(textutil.Cleaner{}, imagetag.NewTagger(a.store, imageBase), catalog, a.cfg.Feed.Locale)
	if err != nil {
		return err
	}

	a.document, err = feed.NewDocument(feed.Config{
		Title:       a.cfg.Site.Title,
		Link:        a.cfg.SiteURL(),
		Description: a.cfg.Site.Description,
		Author:      a.cfg.Site.Author,
		Language:    a.cfg.Feed.Locale,
	}, a.renderer)
	return err
}

// recentItems returns the newest items, using feed.limit when limit is 0
func (a *app) recentItems(limit int) ([]*store.Item, error) {
	if limit == 0 {
		limit = a.cfg.Feed.Limit
	}
	return a.store.RecentItems(limit)
}

// invalidateFeed drops cached feed documents after the content changes
func (a *app) invalidateFeed() error {
	return a.cache.Clear()
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		slog.Error("Failed to close content store", "error", err)
	}
}

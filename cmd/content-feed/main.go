// Package main provides the CLI entry point for content-feed.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	kongyaml "github.com/alecthomas/kong-yaml"

	"github.com/lepinkainen/content-feed/internal/importer"
	"github.com/lepinkainen/content-feed/pkg/preview"
	"github.com/lepinkainen/content-feed/pkg/server"
	"github.com/lepinkainen/content-feed/pkg/store"
)

// CLI structure
var CLI struct {
	Config   string `help:"Site configuration file path" default:"site.yaml"`
	Database string `help:"Content database path (overrides database.path)"`
	Debug    bool   `help:"Enable debug logging" default:"false"`

	Import struct {
		Source string `arg:"" help:"YAML file path or http(s) URL with items and images"`
	} `cmd:"import" help:"Import items and images into the content store."`

	Generate struct {
		Outfile string `help:"Output file path" short:"o" default:"feed.xml"`
		Limit   int    `help:"Maximum number of items (0 uses feed.limit)" default:"0"`
	} `cmd:"generate" help:"Write the RSS feed to a file."`

	Item struct {
		ID string `arg:"" help:"Item id"`
	} `cmd:"item" help:"Print the RSS <item> element for one item."`

	Delete struct {
		ID string `arg:"" help:"Item id"`
	} `cmd:"delete" help:"Remove an item from the content store."`

	Preview struct {
		Limit int `help:"Maximum number of items (0 uses feed.limit)" default:"0"`
		Index int `help:"Output XML for specific item index (0-based) to stdout" default:"-1"`
	} `cmd:"preview" help:"Browse feed items interactively."`

	Serve struct {
		Addr     string        `help:"Listen address" default:":8080"`
		CacheTTL time.Duration `help:"How long a rendered feed is served from cache (0 disables)" default:"5m"`
	} `cmd:"serve" help:"Serve the feed over HTTP."`

	Stats struct{} `cmd:"stats" help:"Show content store statistics."`
}

func main() {
	// Parse CLI with Kong YAML configuration file loading
	ctx := kong.Parse(&CLI,
		kong.Name("content-feed"),
		kong.Description("Publish stored content as an RSS 2.0 feed."),
		kong.Configuration(kongyaml.Loader, "config.yaml", "~/.content-feed/config.yaml"),
	)

	if CLI.Debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	} else {
		slog.SetLogLoggerLevel(slog.LevelWarn)
	}

	var err error
	switch ctx.Command() {
	case "import <source>":
		err = runImport(CLI.Import.Source)
	case "generate":
		err = runGenerate(CLI.Generate.Outfile, CLI.Generate.Limit)
	case "item <id>":
		err = runItem(CLI.Item.ID)
	case "delete <id>":
		err = runDelete(CLI.Delete.ID)
	case "preview":
		err = runPreview(CLI.Preview.Limit, CLI.Preview.Index)
	case "serve":
		err = runServe(CLI.Serve.Addr, CLI.Serve.CacheTTL)
	case "stats":
		err = runStats()
	default:
		panic(ctx.Command())
	}

	if err != nil {
		slog.Error("Command failed", "command", ctx.Command(), "error", err)
		os.Exit(1)
	}
}

func runImport(source string) error {
	a, err := openApp(CLI.Config, CLI.Database, false)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	result, err := importer.New(a.store).ImportSource(ctx, source)
	if err != nil {
		return err
	}

	if err := a.invalidateFeed(); err != nil {
		slog.Warn("Failed to clear feed cache", "error", err)
	}

	fmt.Printf("Imported %d items and %d images\n", result.Items, result.Images)
	return nil
}

func runGenerate(outfile string, limit int) error {
	a, err := openApp(CLI.Config, CLI.Database, true)
	if err != nil {
		return err
	}
	defer a.close()

	items, err := a.recentItems(limit)
	if err != nil {
		return err
	}

	return a.document.SaveToFile(store.ContentItems(items), outfile)
}

func runItem(id string) error {
	a, err := openApp(CLI.Config, CLI.Database, true)
	if err != nil {
		return err
	}
	defer a.close()

	item, err := a.store.Item(id)
	if err != nil {
		return err
	}

	out, err := a.renderer.Render(item, a.cfg.SiteURL())
	if err != nil {
		return err
	}

	fmt.Println(out)
	return nil
}

func runDelete(id string) error {
	a, err := openApp(CLI.Config, CLI.Database, false)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.store.DeleteItem(id); err != nil {
		return err
	}
	if err := a.invalidateFeed(); err != nil {
		slog.Warn("Failed to clear feed cache", "error", err)
	}

	slog.Info("Item deleted", "id", id)
	return nil
}

func runPreview(limit, index int) error {
	a, err := openApp(CLI.Config, CLI.Database, true)
	if err != nil {
		return err
	}
	defer a.close()

	items, err := a.recentItems(limit)
	if err != nil {
		return err
	}
	contentItems := store.ContentItems(items)

	// If index is specified, output XML directly to stdout
	if index >= 0 {
		if index >= len(contentItems) {
			return fmt.Errorf("index %d out of range (%d items)", index, len(contentItems))
		}
		fmt.Println(preview.FormatXMLItem(a.renderer, contentItems[index], a.cfg.SiteURL()))
		return nil
	}

	return preview.Run(contentItems, a.renderer, a.cfg.SiteURL(), a.cfg.Site.Title)
}

func runServe(addr string, cacheTTL time.Duration) error {
	a, err := openApp(CLI.Config, CLI.Database, true)
	if err != nil {
		return err
	}
	defer a.close()

	opts := server.Options{
		BaseURL:  a.cfg.SiteURL(),
		Limit:    a.cfg.Feed.Limit,
		CacheTTL: cacheTTL,
	}
	if cacheTTL > 0 {
		if err := a.cache.CleanupExpired(); err != nil {
			slog.Warn("Failed to clean feed cache", "error", err)
		}
		opts.Cache = a.cache
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	return server.New(a.store, a.document, a.renderer, opts).ListenAndServe(ctx, addr)
}

func runStats() error {
	a, err := openApp(CLI.Config, CLI.Database, false)
	if err != nil {
		return err
	}
	defer a.close()

	stats, err := a.store.Stats()
	if err != nil {
		return err
	}

	info, err := a.store.Database().Info()
	if err != nil {
		return err
	}

	fmt.Printf("Database: %s (SQLite %v, %v tables)\n", info["path"], info["sqlite_version"], info["table_count"])
	fmt.Printf("Items: %d\nTerms: %d\nImages: %d\n", stats.Items, stats.Terms, stats.Images)
	return nil
}

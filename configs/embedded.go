// Package configs provides embedded configuration files for content-feed.
package configs

import "embed"

// EmbeddedConfigs exposes embedded configuration files for read-only access.
// Message catalogs live under locales/, one JSON file per locale.
//
//go:embed locales/*.json
var EmbeddedConfigs embed.FS

package feed

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/lepinkainen/content-feed/templates"
)

// OverrideDir is the directory, relative to the working directory, searched
// for site-provided templates before the embedded copies.
const OverrideDir = "templates"

// templateSource is one filesystem that templates are read from
type templateSource struct {
	name string
	fsys fs.FS
}

var (
	overrideSource = templateSource{name: "override", fsys: os.DirFS(OverrideDir)}
	embeddedSource = templateSource{name: "embedded", fsys: templates.EmbeddedTemplates}
)

// SetTemplateOverrideFS replaces the site template filesystem. A nil
// filesystem disables overrides.
func SetTemplateOverrideFS(f fs.FS) {
	overrideSource.fsys = f
}

// SetTemplateFallbackFS replaces the embedded template filesystem.
func SetTemplateFallbackFS(f fs.FS) {
	embeddedSource.fsys = f
}

// readTemplate returns the first filename found in the override and embedded
// sources, along with the name of the source it came from
func readTemplate(filename string) (string, string, error) {
	for _, src := range []templateSource{overrideSource, embeddedSource} {
		if src.fsys == nil {
			continue
		}

		data, err := fs.ReadFile(src.fsys, filename)
		switch {
		case err == nil:
			return string(data), src.name, nil
		case errors.Is(err, fs.ErrNotExist):
			continue
		default:
			return "", "", fmt.Errorf("failed to read %s template %s: %w", src.name, filename, err)
		}
	}
	return "", "", fmt.Errorf("template %s: %w", filename, fs.ErrNotExist)
}

package theme

import (
	"embed"
	"io/fs"
	"path/filepath"
	"strings"
)

// EmbeddedThemes contains the bundled palettes.
//
//go:embed themes/*.toml
var EmbeddedThemes embed.FS

// DefaultName is the palette used when none is configured.
const DefaultName = "default"

// GetEmbedded returns a bundled palette file by name.
func GetEmbedded(name string) ([]byte, bool) {
	data, err := EmbeddedThemes.ReadFile("themes/" + name + ".toml")
	if err != nil {
		return nil, false
	}
	return data, true
}

// ListEmbedded returns the names of the bundled palettes.
func ListEmbedded() []string {
	entries, err := fs.ReadDir(EmbeddedThemes, "themes")
	if err != nil {
		return nil
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".toml" {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".toml"))
	}
	return names
}

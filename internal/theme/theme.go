package theme

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/pelletier/go-toml/v2"
)

// ErrNotFound is returned when no user or bundled palette has the name.
var ErrNotFound = errors.New("theme not found")

// maxInherits bounds inherits chains.
const maxInherits = 8

// Palette is a named set of colours, "#rrggbb" or "#rrggbbaa".
type Palette struct {
	Name    string    `toml:"-"`
	Path    string    `toml:"-"` // Empty for bundled palettes
	ModTime time.Time `toml:"-"`

	// Inherits names a palette whose colours fill the fields left empty.
	Inherits string `toml:"inherits,omitempty"`

	Foreground string `toml:"foreground"`
	Background string `toml:"background"`
	Border     string `toml:"border"`
	Urgent     string `toml:"urgent"`
}

// IsBundled reports whether the palette came from the embedded set.
func (p *Palette) IsBundled() bool {
	return p.Path == ""
}

// ThemesDir returns the user palette directory.
func ThemesDir() string {
	return filepath.Join(xdg.ConfigHome, "lmk", "themes")
}

// Load resolves name against dir, then the bundled palettes, and fills
// inherited colours. An empty name loads the default palette; an empty dir
// skips user palettes.
func Load(dir, name string) (*Palette, error) {
	if name == "" {
		name = DefaultName
	}
	return load(dir, name, make(map[string]bool))
}

func load(dir, name string, seen map[string]bool) (*Palette, error) {
	if seen[name] {
		return nil, fmt.Errorf("theme %q inherits itself", name)
	}
	if len(seen) >= maxInherits {
		return nil, fmt.Errorf("theme %q: inherits chain too long", name)
	}
	seen[name] = true

	p, err := read(dir, name)
	if err != nil {
		return nil, err
	}

	if p.Inherits != "" {
		base, err := load(dir, p.Inherits, seen)
		if err != nil {
			return nil, fmt.Errorf("theme %q: %w", name, err)
		}
		p.inherit(base)
	}
	return p, nil
}

// read loads one palette file without resolving inherits.
func read(dir, name string) (*Palette, error) {
	if strings.ContainsAny(name, `/\`) {
		return nil, fmt.Errorf("invalid theme name %q", name)
	}

	if dir != "" {
		path := filepath.Join(dir, name+".toml")
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			info, err := os.Stat(path)
			if err != nil {
				return nil, err
			}
			p, err := Parse(name, data)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			p.Path = path
			p.ModTime = info.ModTime()
			return p, nil
		case !errors.Is(err, os.ErrNotExist):
			return nil, err
		}
	}

	if data, ok := GetEmbedded(name); ok {
		return Parse(name, data)
	}
	return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
}

// Parse decodes a palette file.
func Parse(name string, data []byte) (*Palette, error) {
	p := &Palette{Name: name}
	if err := toml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("failed to parse theme: %w", err)
	}
	return p, nil
}

func (p *Palette) inherit(base *Palette) {
	for _, f := range []struct{ dst, src *string }{
		{&p.Foreground, &base.Foreground},
		{&p.Background, &base.Background},
		{&p.Border, &base.Border},
		{&p.Urgent, &base.Urgent},
	} {
		if *f.dst == "" {
			*f.dst = *f.src
		}
	}
}

// Changed reports whether a user palette file was modified since it was
// loaded. Bundled palettes never change.
func (p *Palette) Changed() (bool, error) {
	if p.IsBundled() {
		return false, nil
	}
	info, err := os.Stat(p.Path)
	if err != nil {
		return false, err
	}
	return info.ModTime().After(p.ModTime), nil
}

// Info describes an available palette.
type Info struct {
	Name      string
	Path      string
	IsDefault bool
	IsBundled bool
}

// ListAvailable lists bundled palettes followed by user palettes in dir. A
// user palette shadowing a bundled one is listed once, with its path.
func ListAvailable(dir string) ([]Info, error) {
	var themes []Info
	index := make(map[string]int)

	for _, name := range ListEmbedded() {
		index[name] = len(themes)
		themes = append(themes, Info{
			Name:      name,
			IsDefault: name == DefaultName,
			IsBundled: true,
		})
	}

	if dir == "" {
		return themes, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return themes, nil
		}
		return themes, err
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".toml" {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".toml")
		path := filepath.Join(dir, entry.Name())
		if i, ok := index[name]; ok {
			themes[i].Path = path
			themes[i].IsBundled = false
			continue
		}
		index[name] = len(themes)
		themes = append(themes, Info{Name: name, Path: path})
	}
	return themes, nil
}

package config

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/pelletier/go-toml/v2"

	"github.com/jmylchreest/lmk/internal/canvas"
	"github.com/jmylchreest/lmk/internal/display"
	"github.com/jmylchreest/lmk/internal/layout"
	"github.com/jmylchreest/lmk/internal/model"
	"github.com/jmylchreest/lmk/internal/theme"
)

// Duration is a time.Duration that can be unmarshaled from human-readable strings.
// Supports formats like "5s", "1m", "1h30m", or integer milliseconds.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML parsing.
func (d *Duration) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))

	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: must be like '5s', '1m', '1h30m' or milliseconds: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}

// MarshalText implements encoding.TextMarshaler for TOML output.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Milliseconds returns the duration in milliseconds.
func (d Duration) Milliseconds() int {
	return int(time.Duration(d).Milliseconds())
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// DaemonConfig is the configuration for lmkd.
// Loaded from $XDG_CONFIG_HOME/lmk/lmkd.toml
type DaemonConfig struct {
	Server   ServerConfig  `toml:"server"`
	Display  DisplayConfig `toml:"display"`
	Layout   LayoutConfig  `toml:"layout"`
	Fonts    FontsConfig   `toml:"fonts"`
	Colors   ColorsConfig  `toml:"colors"`
	Timeouts TimeoutConfig `toml:"timeouts"`
	Janitor  JanitorConfig `toml:"janitor"`
	Audio    AudioConfig   `toml:"audio"`
	DBus     DBusConfig    `toml:"dbus"`
}

// ServerConfig controls the HTTP request source.
type ServerConfig struct {
	Listen string `toml:"listen"` // Empty disables HTTP
}

// DisplayConfig contains placement settings.
type DisplayConfig struct {
	Position string `toml:"position"` // "top-right", "top-left", etc.
	OffsetX  int    `toml:"offset_x"` // Pixels from the horizontal screen edge
	OffsetY  int    `toml:"offset_y"` // Pixels from the vertical screen edge
	Monitor  int    `toml:"monitor"`  // 0 = first, 1+ = specific monitor
}

// LayoutConfig contains text layout settings.
type LayoutConfig struct {
	BreakLongWords bool `toml:"break_long_words"`
}

// FontsConfig selects the title and body faces.
type FontsConfig struct {
	Title FontConfig `toml:"title"`
	Body  FontConfig `toml:"body"`
	DPI   float64    `toml:"dpi"`
}

// FontConfig is a single face. An empty File uses the bundled Go Mono.
type FontConfig struct {
	File string  `toml:"file"`
	Size float64 `toml:"size"` // Points
}

// ColorsConfig selects a palette and optional per-colour overrides, hex
// "#rrggbb" or "#rrggbbaa". Empty colours come from the palette.
type ColorsConfig struct {
	Theme      string `toml:"theme"`
	ThemesDir  string `toml:"themes_dir"` // Empty uses ~/.config/lmk/themes
	Foreground string `toml:"foreground"`
	Background string `toml:"background"`
	Border     string `toml:"border"`
	Urgent     string `toml:"urgent"`
}

// TimeoutConfig holds display durations.
type TimeoutConfig struct {
	Default Duration `toml:"default"` // Used when a request has no duration
}

// JanitorConfig controls pruning of dismissed notifications.
type JanitorConfig struct {
	Interval  Duration `toml:"interval"`
	Retention Duration `toml:"retention"`
	Archive   bool     `toml:"archive"` // Append pruned notifications to the history archive
}

// AudioConfig contains audio settings.
type AudioConfig struct {
	Enabled bool        `toml:"enabled"`
	Volume  int         `toml:"volume"` // 0-100
	Sounds  SoundConfig `toml:"sounds"`
}

// SoundConfig contains per-urgency sound file paths.
type SoundConfig struct {
	Low      string `toml:"low"`
	Normal   string `toml:"normal"`
	Critical string `toml:"critical"`
}

// DBusConfig controls the session bus interfaces.
type DBusConfig struct {
	Control            bool `toml:"control"`             // Export the lmk control interface
	ClaimNotifications bool `toml:"claim_notifications"` // Own org.freedesktop.Notifications
	Monitor            bool `toml:"monitor"`             // Mirror Notify calls sent to another daemon
}

// ValidPositions returns all valid position values.
func ValidPositions() []display.Anchor {
	return []display.Anchor{
		display.AnchorTopLeft,
		display.AnchorTopRight,
		display.AnchorTopCenter,
		display.AnchorBottomLeft,
		display.AnchorBottomRight,
		display.AnchorBottomCenter,
	}
}

// DefaultDaemonConfig returns a new DaemonConfig with default values.
func DefaultDaemonConfig() *DaemonConfig {
	return &DaemonConfig{
		Server: ServerConfig{
			Listen: "127.0.0.1:8888",
		},
		Display: DisplayConfig{
			Position: string(display.AnchorTopRight),
			OffsetX:  10,
			OffsetY:  30,
		},
		Fonts: FontsConfig{
			Title: FontConfig{Size: 10},
			Body:  FontConfig{Size: 9},
			DPI:   96,
		},
		Colors: ColorsConfig{
			Theme: theme.DefaultName,
		},
		Timeouts: TimeoutConfig{
			Default: Duration(model.DefaultDurationMs * time.Millisecond),
		},
		Janitor: JanitorConfig{
			Interval:  Duration(60 * time.Second),
			Retention: Duration(60 * time.Second),
		},
		Audio: AudioConfig{
			Enabled: false,
			Volume:  80,
		},
		DBus: DBusConfig{
			Control: true,
		},
	}
}

// DaemonConfigPath returns the path to the daemon config file.
func DaemonConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "lmk", "lmkd.toml")
}

// LoadDaemonConfig loads the daemon configuration from path, or the default
// path when empty. A missing file yields the defaults.
func LoadDaemonConfig(path string) (*DaemonConfig, error) {
	if path == "" {
		path = DaemonConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultDaemonConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return ParseDaemonConfig(data)
}

// ParseDaemonConfig overlays TOML data on the defaults and validates the result.
func ParseDaemonConfig(data []byte) (*DaemonConfig, error) {
	config := DefaultDaemonConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Save writes the configuration to path, or the default path when empty.
func (c *DaemonConfig) Save(path string) error {
	if path == "" {
		path = DaemonConfigPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks if the configuration is valid.
func (c *DaemonConfig) Validate() error {
	if !slices.Contains(ValidPositions(), display.Anchor(c.Display.Position)) {
		return fmt.Errorf("invalid position %q, must be one of: %v", c.Display.Position, ValidPositions())
	}
	if c.Display.OffsetX < 0 || c.Display.OffsetY < 0 {
		return fmt.Errorf("offsets must not be negative, got %d,%d", c.Display.OffsetX, c.Display.OffsetY)
	}

	for name, f := range map[string]FontConfig{"title": c.Fonts.Title, "body": c.Fonts.Body} {
		if f.Size < 4 || f.Size > 72 {
			return fmt.Errorf("%s font size must be between 4 and 72, got %g", name, f.Size)
		}
	}
	if c.Fonts.DPI < 48 || c.Fonts.DPI > 480 {
		return fmt.Errorf("dpi must be between 48 and 480, got %g", c.Fonts.DPI)
	}

	if _, err := c.Theme(); err != nil {
		return err
	}

	if c.Timeouts.Default <= 0 {
		return fmt.Errorf("default timeout must be positive, got %s", c.Timeouts.Default.Duration())
	}
	if c.Janitor.Interval <= 0 {
		return fmt.Errorf("janitor interval must be positive, got %s", c.Janitor.Interval.Duration())
	}
	if c.Janitor.Retention < 0 {
		return fmt.Errorf("janitor retention must not be negative, got %s", c.Janitor.Retention.Duration())
	}

	if c.Audio.Volume < 0 || c.Audio.Volume > 100 {
		return fmt.Errorf("volume must be between 0 and 100, got %d", c.Audio.Volume)
	}

	if c.DBus.ClaimNotifications && c.DBus.Monitor {
		return fmt.Errorf("dbus.claim_notifications and dbus.monitor are mutually exclusive")
	}

	return nil
}

// Palette loads the configured palette with the colour overrides applied.
func (c *DaemonConfig) Palette() (*theme.Palette, error) {
	p, err := theme.Load(c.ThemesDir(), c.Colors.Theme)
	if err != nil {
		return nil, err
	}
	for _, o := range []struct{ dst, value *string }{
		{&p.Foreground, &c.Colors.Foreground},
		{&p.Background, &c.Colors.Background},
		{&p.Border, &c.Colors.Border},
		{&p.Urgent, &c.Colors.Urgent},
	} {
		if *o.value != "" {
			*o.dst = *o.value
		}
	}
	return p, nil
}

// ThemesDir returns the directory searched for user palettes.
func (c *DaemonConfig) ThemesDir() string {
	if c.Colors.ThemesDir != "" {
		return expandPath(c.Colors.ThemesDir)
	}
	return theme.ThemesDir()
}

// Theme parses the configured colours.
func (c *DaemonConfig) Theme() (display.Theme, error) {
	p, err := c.Palette()
	if err != nil {
		return display.Theme{}, err
	}
	return PaletteTheme(p)
}

// PaletteTheme parses the colours of p.
func PaletteTheme(p *theme.Palette) (display.Theme, error) {
	var t display.Theme
	for _, field := range []struct {
		name  string
		value string
		dst   *color.RGBA
	}{
		{"foreground", p.Foreground, &t.Foreground},
		{"background", p.Background, &t.Background},
		{"border", p.Border, &t.Border},
		{"urgent", p.Urgent, &t.Urgent},
	} {
		col, err := display.ParseColor(field.value)
		if err != nil {
			return display.Theme{}, fmt.Errorf("invalid %s colour: %w", field.name, err)
		}
		*field.dst = col
	}
	return t, nil
}

// DisplayOptions converts the config into controller options.
func (c *DaemonConfig) DisplayOptions() (display.Options, error) {
	theme, err := c.Theme()
	if err != nil {
		return display.Options{}, err
	}
	return display.Options{
		Placement: display.Placement{
			Anchor:  display.Anchor(c.Display.Position),
			OffsetX: c.Display.OffsetX,
			OffsetY: c.Display.OffsetY,
		},
		Theme: theme,
		Wrap:  c.WrapOptions(),
	}, nil
}

// WrapOptions returns the text wrapping options.
func (c *DaemonConfig) WrapOptions() layout.WrapOptions {
	return layout.WrapOptions{BreakWords: c.Layout.BreakLongWords}
}

// FontConfig returns the canvas font selection.
func (c *DaemonConfig) FontConfig() canvas.FontConfig {
	return canvas.FontConfig{
		Title: canvas.FontSpec{Path: expandPath(c.Fonts.Title.File), Size: c.Fonts.Title.Size},
		Body:  canvas.FontSpec{Path: expandPath(c.Fonts.Body.File), Size: c.Fonts.Body.Size},
		DPI:   c.Fonts.DPI,
	}
}

// DefaultRequest returns the request fields used when a source omits them.
func (c *DaemonConfig) DefaultRequest() model.Request {
	req := model.DefaultRequest()
	req.DurationMs = c.Timeouts.Default.Milliseconds()
	return req
}

// GetSoundForUrgency returns the sound file path for the given urgency.
// Expands ~ to home directory.
func (c *DaemonConfig) GetSoundForUrgency(urgency string) string {
	var path string
	switch urgency {
	case model.UrgencyLow:
		path = c.Audio.Sounds.Low
	case model.UrgencyCritical:
		path = c.Audio.Sounds.Critical
	default:
		path = c.Audio.Sounds.Normal
	}
	return expandPath(path)
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

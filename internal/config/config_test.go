package config

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/lmk/internal/display"
	"github.com/jmylchreest/lmk/internal/model"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "http://127.0.0.1:8888", cfg.Send.URL)
	assert.Equal(t, 5*time.Second, cfg.Send.Timeout.Duration())
	assert.Equal(t, "plain", cfg.Output.Format)
	assert.True(t, cfg.Output.Color)
	assert.Equal(t, "24h", cfg.History.Since)
	assert.Zero(t, cfg.History.Limit)
	assert.Equal(t, time.Second, cfg.Watch.Refresh.Duration())
	assert.False(t, cfg.Watch.ShowDismissed)
	assert.Empty(t, cfg.Clipboard.Command)
}

func TestLoadConfig_DefaultsWhenNoFile(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/lmk.toml")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_ParsesTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lmk.toml")

	content := `
[send]
url = "http://10.0.0.2:9999"
urgency = "low"
timeout = "2s"

[output]
format = "json"
color = false

[history]
since = "0"
limit = 20
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "http://10.0.0.2:9999", cfg.Send.URL)
	assert.Equal(t, "low", cfg.Send.Urgency)
	assert.Equal(t, 2*time.Second, cfg.Send.Timeout.Duration())
	assert.Equal(t, "json", cfg.Output.Format)
	assert.False(t, cfg.Output.Color)
	assert.Equal(t, "0", cfg.History.Since)
	assert.Equal(t, 20, cfg.History.Limit)
}

func TestLoadConfig_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lmk.toml")
	require.NoError(t, os.WriteFile(path, []byte("[send\nurl = "), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestConfig_SaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "lmk.toml")

	cfg := DefaultConfig()
	cfg.Output.Format = "yaml"
	require.NoError(t, cfg.Save(path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "yaml", loaded.Output.Format)
	assert.Equal(t, cfg.Send.Timeout, loaded.Send.Timeout)
}

func TestDuration_UnmarshalText(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{in: "5000", want: 5 * time.Second},
		{in: "0", want: 0},
		{in: "5s", want: 5 * time.Second},
		{in: "1m30s", want: 90 * time.Second},
		{in: " 250ms ", want: 250 * time.Millisecond},
		{in: "soon", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var d Duration
			err := d.UnmarshalText([]byte(tt.in))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Duration())
		})
	}
}

func TestDefaultDaemonConfig(t *testing.T) {
	cfg := DefaultDaemonConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "127.0.0.1:8888", cfg.Server.Listen)
	assert.Equal(t, "top-right", cfg.Display.Position)
	assert.Equal(t, 10, cfg.Display.OffsetX)
	assert.Equal(t, 30, cfg.Display.OffsetY)
	assert.False(t, cfg.Layout.BreakLongWords)
	assert.Equal(t, 5000, cfg.Timeouts.Default.Milliseconds())
	assert.Equal(t, time.Minute, cfg.Janitor.Interval.Duration())
	assert.Equal(t, time.Minute, cfg.Janitor.Retention.Duration())
	assert.True(t, cfg.DBus.Control)
	assert.False(t, cfg.DBus.ClaimNotifications)
}

func TestParseDaemonConfig(t *testing.T) {
	cfg, err := ParseDaemonConfig([]byte(`
[server]
listen = "0.0.0.0:9000"

[display]
position = "bottom-left"
offset_x = 4

[layout]
break_long_words = true

[colors]
urgent = "#ff8800"

[timeouts]
default = "8s"

[janitor]
interval = 1000
retention = "5m"
archive = true
`))
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9000", cfg.Server.Listen)
	assert.Equal(t, "bottom-left", cfg.Display.Position)
	assert.Equal(t, 4, cfg.Display.OffsetX)
	assert.Equal(t, 30, cfg.Display.OffsetY, "unset keys keep defaults")
	assert.True(t, cfg.Layout.BreakLongWords)
	assert.Equal(t, "#ff8800", cfg.Colors.Urgent)
	assert.Empty(t, cfg.Colors.Foreground, "unset colours come from the palette")
	assert.Equal(t, 8*time.Second, cfg.Timeouts.Default.Duration())
	assert.Equal(t, time.Second, cfg.Janitor.Interval.Duration())
	assert.Equal(t, 5*time.Minute, cfg.Janitor.Retention.Duration())
	assert.True(t, cfg.Janitor.Archive)
}

func TestDaemonConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*DaemonConfig)
	}{
		{"position", func(c *DaemonConfig) { c.Display.Position = "middle" }},
		{"offset", func(c *DaemonConfig) { c.Display.OffsetY = -1 }},
		{"title font", func(c *DaemonConfig) { c.Fonts.Title.Size = 1 }},
		{"body font", func(c *DaemonConfig) { c.Fonts.Body.Size = 200 }},
		{"dpi", func(c *DaemonConfig) { c.Fonts.DPI = 0 }},
		{"colour", func(c *DaemonConfig) { c.Colors.Border = "grey" }},
		{"theme", func(c *DaemonConfig) { c.Colors.Theme = "no-such-theme" }},
		{"default timeout", func(c *DaemonConfig) { c.Timeouts.Default = 0 }},
		{"janitor interval", func(c *DaemonConfig) { c.Janitor.Interval = 0 }},
		{"janitor retention", func(c *DaemonConfig) { c.Janitor.Retention = -1 }},
		{"volume", func(c *DaemonConfig) { c.Audio.Volume = 101 }},
		{"dbus modes", func(c *DaemonConfig) { c.DBus = DBusConfig{ClaimNotifications: true, Monitor: true} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultDaemonConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadDaemonConfig(t *testing.T) {
	cfg, err := LoadDaemonConfig("/nonexistent/lmkd.toml")
	require.NoError(t, err)
	assert.Equal(t, DefaultDaemonConfig(), cfg)

	path := filepath.Join(t.TempDir(), "lmkd.toml")
	require.NoError(t, os.WriteFile(path, []byte("[display]\nposition = \"nowhere\"\n"), 0644))
	_, err = LoadDaemonConfig(path)
	assert.ErrorContains(t, err, "invalid position")
}

func TestDaemonConfig_SaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lmk", "lmkd.toml")

	cfg := DefaultDaemonConfig()
	cfg.Display.Position = "bottom-left"
	cfg.Janitor.Retention = Duration(10 * time.Minute)
	require.NoError(t, cfg.Save(path))

	loaded, err := LoadDaemonConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestDaemonConfig_DisplayOptions(t *testing.T) {
	cfg := DefaultDaemonConfig()
	cfg.Display.Position = "bottom-center"
	cfg.Layout.BreakLongWords = true
	cfg.Colors.ThemesDir = t.TempDir()

	opts, err := cfg.DisplayOptions()
	require.NoError(t, err)

	assert.Equal(t, display.AnchorBottomCenter, opts.Placement.Anchor)
	assert.Equal(t, 10, opts.Placement.OffsetX)
	assert.Equal(t, 30, opts.Placement.OffsetY)
	assert.True(t, opts.Wrap.BreakWords)
	assert.Equal(t, color.RGBA{R: 0xff, A: 0xff}, opts.Theme.Urgent)
	assert.Equal(t, display.DefaultOptions().Theme, opts.Theme)
}

func TestDaemonConfig_FontConfig(t *testing.T) {
	cfg := DefaultDaemonConfig()
	cfg.Fonts.Title.File = "/usr/share/fonts/mono-bold.ttf"

	fonts := cfg.FontConfig()
	assert.Equal(t, "/usr/share/fonts/mono-bold.ttf", fonts.Title.Path)
	assert.Empty(t, fonts.Body.Path)
	assert.Equal(t, 10.0, fonts.Title.Size)
	assert.Equal(t, 9.0, fonts.Body.Size)
	assert.Equal(t, 96.0, fonts.DPI)
}

func TestDaemonConfig_DefaultRequest(t *testing.T) {
	cfg := DefaultDaemonConfig()
	cfg.Timeouts.Default = Duration(8 * time.Second)

	req := cfg.DefaultRequest()
	assert.Equal(t, model.DefaultTitle, req.Title)
	assert.Equal(t, model.UrgencyNormal, req.Urgency)
	assert.Equal(t, 8000, req.DurationMs)
}

func TestDaemonConfig_GetSoundForUrgency(t *testing.T) {
	cfg := DefaultDaemonConfig()
	cfg.Audio.Sounds = SoundConfig{Low: "/s/low.wav", Normal: "/s/normal.wav", Critical: "/s/critical.wav"}

	assert.Equal(t, "/s/low.wav", cfg.GetSoundForUrgency(model.UrgencyLow))
	assert.Equal(t, "/s/normal.wav", cfg.GetSoundForUrgency(model.UrgencyNormal))
	assert.Equal(t, "/s/critical.wav", cfg.GetSoundForUrgency(model.UrgencyCritical))
	assert.Equal(t, "/s/normal.wav", cfg.GetSoundForUrgency("bogus"))

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	cfg.Audio.Sounds.Low = "~/sounds/low.wav"
	assert.Equal(t, filepath.Join(home, "sounds", "low.wav"), cfg.GetSoundForUrgency(model.UrgencyLow))
}

func TestDaemonConfig_Palette(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mine.toml"),
		[]byte("inherits = \"default\"\nbackground = \"#000000\"\n"), 0644))

	cfg := DefaultDaemonConfig()
	cfg.Colors.ThemesDir = dir
	cfg.Colors.Theme = "mine"
	cfg.Colors.Urgent = "#ff8800"

	p, err := cfg.Palette()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "mine.toml"), p.Path)
	assert.Equal(t, "#000000", p.Background)
	assert.Equal(t, "#bbbbbb", p.Foreground)
	assert.Equal(t, "#ff8800", p.Urgent, "config colours override the palette")

	th, err := cfg.Theme()
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{A: 0xff}, th.Background)
	assert.Equal(t, color.RGBA{R: 0xff, G: 0x88, A: 0xff}, th.Urgent)
}

func TestDaemonConfig_BundledThemes(t *testing.T) {
	for _, name := range []string{"default", "minimal", "light", "catppuccin"} {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultDaemonConfig()
			cfg.Colors.ThemesDir = t.TempDir()
			cfg.Colors.Theme = name
			assert.NoError(t, cfg.Validate())
		})
	}
}

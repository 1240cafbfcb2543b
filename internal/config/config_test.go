package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 2*time.Second, cfg.HUD.AutoHide.Duration())
	assert.Equal(t, 150*time.Millisecond, cfg.HUD.FadeIn.Duration())
	assert.Equal(t, 350*time.Millisecond, cfg.HUD.FadeOut.Duration())
	assert.Equal(t, 1.0, cfg.HUD.Opacity)
	assert.Equal(t, 320, cfg.HUD.MinWidth)
	assert.Equal(t, "system", cfg.HUD.ColorScheme)
	assert.Equal(t, "default", cfg.HUD.Theme)
	assert.True(t, cfg.Keys.Enabled)
	assert.Equal(t, 100*time.Microsecond, cfg.Keys.DebounceWindow.Duration())
	assert.False(t, cfg.Feedback.Enabled)
	assert.Equal(t, "info", cfg.Log.Level)
	require.NoError(t, cfg.Validate())
}

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.toml")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_ParsesTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `
[hud]
auto_hide = "3s"
fade_in = 0
opacity = 0.85
color_scheme = "dark"
theme = "minimal"

[keys]
enabled = false
debounce_window = "250us"

[feedback]
enabled = true
volume = 70
frequency = 660
duration = 40

[log]
level = "debug"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 3*time.Second, cfg.HUD.AutoHide.Duration())
	assert.Equal(t, time.Duration(0), cfg.HUD.FadeIn.Duration())
	assert.Equal(t, 350*time.Millisecond, cfg.HUD.FadeOut.Duration(), "unset keys keep defaults")
	assert.Equal(t, 0.85, cfg.HUD.Opacity)
	assert.Equal(t, "dark", cfg.HUD.ColorScheme)
	assert.Equal(t, "minimal", cfg.HUD.Theme)
	assert.False(t, cfg.Keys.Enabled)
	assert.Equal(t, 250*time.Microsecond, cfg.Keys.DebounceWindow.Duration())
	assert.True(t, cfg.Feedback.Enabled)
	assert.Equal(t, 70, cfg.Feedback.Volume)
	assert.Equal(t, 660, cfg.Feedback.Frequency)
	assert.Equal(t, 40*time.Millisecond, cfg.Feedback.Duration.Duration())
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[hud\nopacity = "), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_InvalidValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[hud]\ncolor_scheme = \"sepia\"\n"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "color_scheme")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"zero auto hide", func(c *Config) { c.HUD.AutoHide = 0 }, "auto_hide"},
		{"negative fade", func(c *Config) { c.HUD.FadeOut = Duration(-time.Second) }, "fade"},
		{"opacity too low", func(c *Config) { c.HUD.Opacity = 0 }, "opacity"},
		{"opacity too high", func(c *Config) { c.HUD.Opacity = 1.5 }, "opacity"},
		{"narrow", func(c *Config) { c.HUD.MinWidth = 10 }, "min_width"},
		{"negative debounce", func(c *Config) { c.Keys.DebounceWindow = -1 }, "debounce_window"},
		{"loud", func(c *Config) { c.Feedback.Volume = 101 }, "volume"},
		{"inaudible", func(c *Config) { c.Feedback.Frequency = 5 }, "frequency"},
		{"bad level", func(c *Config) { c.Log.Level = "chatty" }, "log level"},
		{"bad sound", func(c *Config) { c.Feedback.Sound = "~/click.flac" }, "sound format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestConfig_Save(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.toml")

	cfg := DefaultConfig()
	cfg.HUD.Opacity = 0.5
	cfg.Keys.DebounceWindow = Duration(time.Millisecond)

	require.NoError(t, cfg.Save(path))

	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file should be renamed away")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestDuration_UnmarshalText(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"2s", 2 * time.Second, false},
		{"150ms", 150 * time.Millisecond, false},
		{"100µs", 100 * time.Microsecond, false},
		{"2000", 2 * time.Second, false},
		{"0", 0, false},
		{"soon", 0, true},
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

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("warn")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)

	level, err = ParseLevel(" DEBUG ")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestSoundPath(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	cfg := DefaultConfig()
	assert.Empty(t, cfg.SoundPath())

	cfg.Feedback.Sound = "~/sounds/tick.wav"
	assert.Equal(t, "/home/tester/sounds/tick.wav", cfg.SoundPath())

	cfg.Feedback.Sound = "/usr/share/sounds/tick.ogg"
	assert.Equal(t, "/usr/share/sounds/tick.ogg", cfg.SoundPath())
}

func TestConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	assert.Equal(t, "/custom/config/volume-grid/config.toml", ConfigPath())
	assert.Equal(t, "/custom/config/volume-grid/themes", ThemesDir())
}

func TestWatcher_Reloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, DefaultConfig().Save(path))

	var latest atomic.Pointer[Config]
	w, err := NewWatcher(path, func(c *Config) { latest.Store(c) }, nil)
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer func() { _ = w.Stop() }()

	// Invalid content is ignored
	require.NoError(t, os.WriteFile(path, []byte("[hud]\nopacity = 7\n"), 0644))

	cfg := DefaultConfig()
	cfg.HUD.Opacity = 0.6
	require.NoError(t, cfg.Save(path))

	require.Eventually(t, func() bool {
		c := latest.Load()
		return c != nil && c.HUD.Opacity == 0.6
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWatcher_StopIdempotent(t *testing.T) {
	w, err := NewWatcher(filepath.Join(t.TempDir(), "config.toml"), nil, nil)
	require.NoError(t, err)
	require.NoError(t, w.Start())
	require.NoError(t, w.Start())
	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
}

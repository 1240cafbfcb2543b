// Package config handles configuration file loading and parsing.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Default configuration values.
const (
	DefaultTheme          = "default"
	DefaultFeedbackVolume = 40
	DefaultFrequency      = 880
	DefaultDebounceWindow = 100 * time.Microsecond
	DefaultLogLevel       = "info"
)

// Config is the volume-grid configuration.
// Loaded from ~/.config/volume-grid/config.toml
type Config struct {
	HUD      HUDConfig      `toml:"hud"`
	Keys     KeysConfig     `toml:"keys"`
	Feedback FeedbackConfig `toml:"feedback"`
	Log      LogConfig      `toml:"log"`
}

// HUDConfig contains overlay settings.
type HUDConfig struct {
	AutoHide    Duration `toml:"auto_hide"`    // e.g. "2s" or 2000
	FadeIn      Duration `toml:"fade_in"`      // "0" disables the fade
	FadeOut     Duration `toml:"fade_out"`     // "0" disables the fade
	Opacity     float64  `toml:"opacity"`      // 0.1-1.0
	MinWidth    int      `toml:"min_width"`    // Minimum overlay width in pixels
	ColorScheme string   `toml:"color_scheme"` // "system", "light", or "dark"
	Theme       string   `toml:"theme"`        // Theme name without .css extension
}

// KeysConfig contains hardware volume key settings.
type KeysConfig struct {
	Enabled        bool     `toml:"enabled"`
	DebounceWindow Duration `toml:"debounce_window"` // e.g. "100µs"
}

// FeedbackConfig contains the key press blip settings.
type FeedbackConfig struct {
	Enabled   bool     `toml:"enabled"`
	Volume    int      `toml:"volume"`    // 0-100
	Frequency int      `toml:"frequency"` // Hz
	Duration  Duration `toml:"duration"`
	Sound     string   `toml:"sound"` // Optional wav/ogg/mp3 played instead of the tone
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level string `toml:"level"` // "debug", "info", "warn", "error"
}

// ColorScheme represents the color scheme preference.
type ColorScheme string

const (
	ColorSchemeSystem ColorScheme = "system"
	ColorSchemeLight  ColorScheme = "light"
	ColorSchemeDark   ColorScheme = "dark"
)

// ValidColorSchemes returns all valid color scheme values.
func ValidColorSchemes() []ColorScheme {
	return []ColorScheme{ColorSchemeSystem, ColorSchemeLight, ColorSchemeDark}
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		HUD: HUDConfig{
			AutoHide:    Duration(2 * time.Second),
			FadeIn:      Duration(150 * time.Millisecond),
			FadeOut:     Duration(350 * time.Millisecond),
			Opacity:     1.0,
			MinWidth:    320,
			ColorScheme: string(ColorSchemeSystem),
			Theme:       DefaultTheme,
		},
		Keys: KeysConfig{
			Enabled:        true,
			DebounceWindow: Duration(DefaultDebounceWindow),
		},
		Feedback: FeedbackConfig{
			Enabled:   false,
			Volume:    DefaultFeedbackVolume,
			Frequency: DefaultFrequency,
			Duration:  Duration(60 * time.Millisecond),
		},
		Log: LogConfig{
			Level: DefaultLogLevel,
		},
	}
}

// Dir returns the volume-grid config directory.
// Uses XDG_CONFIG_HOME if set, otherwise the platform config dir.
func Dir() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return ""
		}
		configHome = dir
	}
	return filepath.Join(configHome, "volume-grid")
}

// ConfigPath returns the path to the config file.
func ConfigPath() string {
	dir := Dir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.toml")
}

// Load reads the configuration from path, or from ConfigPath when path is
// empty. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Defaults first, file contents on top
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to path, or to ConfigPath when path is empty.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write atomically via temp file
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return os.Rename(tmpPath, path)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.HUD.AutoHide.Duration() <= 0 {
		return fmt.Errorf("auto_hide must be positive, got %s", c.HUD.AutoHide.Duration())
	}
	if c.HUD.FadeIn < 0 || c.HUD.FadeOut < 0 {
		return errors.New("fade durations must not be negative")
	}
	if c.HUD.Opacity < 0.1 || c.HUD.Opacity > 1 {
		return fmt.Errorf("opacity must be between 0.1 and 1.0, got %v", c.HUD.Opacity)
	}
	if c.HUD.MinWidth < 100 || c.HUD.MinWidth > 2000 {
		return fmt.Errorf("min_width must be between 100 and 2000, got %d", c.HUD.MinWidth)
	}
	if !slices.Contains(ValidColorSchemes(), ColorScheme(c.HUD.ColorScheme)) {
		return fmt.Errorf("invalid color_scheme %q, must be one of: %v", c.HUD.ColorScheme, ValidColorSchemes())
	}

	if c.Keys.DebounceWindow < 0 {
		return errors.New("debounce_window must not be negative")
	}

	if c.Feedback.Volume < 0 || c.Feedback.Volume > 100 {
		return fmt.Errorf("volume must be between 0 and 100, got %d", c.Feedback.Volume)
	}
	if c.Feedback.Frequency < 20 || c.Feedback.Frequency > 20000 {
		return fmt.Errorf("frequency must be between 20 and 20000, got %d", c.Feedback.Frequency)
	}

	if ext := strings.ToLower(filepath.Ext(c.Feedback.Sound)); c.Feedback.Sound != "" && ext != ".wav" && ext != ".ogg" && ext != ".mp3" {
		return fmt.Errorf("unsupported sound format %q, must be .wav, .ogg or .mp3", ext)
	}

	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}

	return nil
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

// SoundPath returns the feedback sound path with ~ expanded.
func (c *Config) SoundPath() string {
	return ExpandPath(c.Feedback.Sound)
}

// ExpandPath expands ~ to the user's home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

// ThemesDir returns the user theme directory.
func ThemesDir() string {
	dir := Dir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "themes")
}

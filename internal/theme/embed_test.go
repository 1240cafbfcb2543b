package theme

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEmbeddedTheme_Default(t *testing.T) {
	css, found := GetEmbeddedTheme("default")
	require.True(t, found, "default theme should be found")
	assert.Contains(t, css, `@import "_base.css"`)
	// Should use Adwaita variables
	assert.Contains(t, css, "@window_fg_color")
}

func TestGetEmbeddedTheme_Minimal(t *testing.T) {
	css, found := GetEmbeddedTheme("minimal")
	require.True(t, found, "minimal theme should be found")
	// Should hide icons
	assert.Contains(t, css, "-gtk-icon-size: 0")
}

func TestGetEmbeddedTheme_NotFound(t *testing.T) {
	for _, name := range []string{"nonexistent", "", "_base"} {
		css, found := GetEmbeddedTheme(name)
		assert.False(t, found, name)
		assert.Empty(t, css)
	}
}

func TestGetEmbeddedPartial(t *testing.T) {
	for _, name := range []string{"base", "_base", "_base.css", "base.css"} {
		css, found := GetEmbeddedPartial(name)
		require.True(t, found, name)
		assert.Contains(t, css, ".volume-hud")
	}

	css, found := GetEmbeddedPartial("_nonexistent.css")
	assert.False(t, found)
	assert.Empty(t, css)
}

func TestListEmbeddedThemes(t *testing.T) {
	themes := ListEmbeddedThemes()
	assert.ElementsMatch(t, BundledThemes, themes)

	for _, name := range themes {
		assert.False(t, strings.HasPrefix(name, "_"),
			"theme list should not include partials, found: %s", name)
	}
}

func TestIsEmbeddedTheme(t *testing.T) {
	tests := []struct {
		name     string
		expected bool
	}{
		{"default", true},
		{"minimal", true},
		{"catppuccin", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsEmbeddedTheme(tt.name))
		})
	}
}

func TestBundledThemes_HaveRequiredClasses(t *testing.T) {
	requiredClasses := []string{
		".volume-hud",
		".hud-device",
		".hud-status",
		".hud-icon",
		".dark",
		".light",
		".muted",
		".unsupported",
	}

	for _, themeName := range BundledThemes {
		t.Run(themeName, func(t *testing.T) {
			th := NewBundledTheme(themeName)
			for _, class := range requiredClasses {
				assert.Contains(t, th.CSS, class, "theme %s should contain %s", themeName, class)
			}
		})
	}
}

func TestBundledThemes_ValidCSS(t *testing.T) {
	for _, themeName := range BundledThemes {
		t.Run(themeName, func(t *testing.T) {
			css := NewBundledTheme(themeName).CSS

			assert.Equal(t, strings.Count(css, "{"), strings.Count(css, "}"),
				"theme %s should have balanced braces", themeName)
			assert.NotContains(t, css, "import failed")
			assert.NotContains(t, css, "{{")
		})
	}
}

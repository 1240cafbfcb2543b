package theme

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessImports_NoImports(t *testing.T) {
	css := `.volume-hud { color: red; }`
	result := ProcessImports(css, "", nil)
	assert.Equal(t, css, result)
}

func TestProcessImports_FileImport(t *testing.T) {
	// Create a temporary directory with test CSS files
	tmpDir := t.TempDir()

	// Create a partial file
	partialContent := `:root { --custom: #ff0000; }`
	partialPath := filepath.Join(tmpDir, "_custom.css")
	err := os.WriteFile(partialPath, []byte(partialContent), 0644)
	require.NoError(t, err)

	// Create main CSS that imports the partial
	mainCSS := `@import "_custom.css";
.volume-hud { color: var(--custom); }`

	result := ProcessImports(mainCSS, tmpDir, nil)

	assert.Contains(t, result, "/* imported: _custom.css */")
	assert.Contains(t, result, "--custom: #ff0000")
	assert.Contains(t, result, ".volume-hud")
}

func TestProcessImports_NestedImports(t *testing.T) {
	tmpDir := t.TempDir()

	// Create nested structure: main imports child, child imports grandchild
	grandchildContent := `.grandchild { color: blue; }`
	grandchildPath := filepath.Join(tmpDir, "_grandchild.css")
	err := os.WriteFile(grandchildPath, []byte(grandchildContent), 0644)
	require.NoError(t, err)

	childContent := `@import "_grandchild.css";
.child { color: green; }`
	childPath := filepath.Join(tmpDir, "_child.css")
	err = os.WriteFile(childPath, []byte(childContent), 0644)
	require.NoError(t, err)

	mainCSS := `@import "_child.css";
.main { color: red; }`

	result := ProcessImports(mainCSS, tmpDir, nil)

	assert.Contains(t, result, "/* imported: _child.css */")
	assert.Contains(t, result, "/* imported: _grandchild.css */")
	assert.Contains(t, result, ".grandchild")
	assert.Contains(t, result, ".child")
	assert.Contains(t, result, ".main")
}

func TestProcessImports_CircularPrevention(t *testing.T) {
	tmpDir := t.TempDir()

	// Create circular imports: a imports b, b imports a
	aContent := `@import "_b.css";
.a { color: red; }`
	aPath := filepath.Join(tmpDir, "_a.css")
	err := os.WriteFile(aPath, []byte(aContent), 0644)
	require.NoError(t, err)

	bContent := `@import "_a.css";
.b { color: blue; }`
	bPath := filepath.Join(tmpDir, "_b.css")
	err = os.WriteFile(bPath, []byte(bContent), 0644)
	require.NoError(t, err)

	// Start with a
	result := ProcessImports(`@import "_a.css";`, tmpDir, nil)

	// Should have both imports but one marked as circular
	assert.Contains(t, result, "/* imported: _a.css */")
	assert.Contains(t, result, "/* imported: _b.css */")
	assert.Contains(t, result, "/* circular import prevented: _a.css */")
}

func TestProcessImports_MissingFile(t *testing.T) {
	css := `@import "nonexistent.css";`

	result := ProcessImports(css, "/tmp", nil)

	assert.Contains(t, result, "/* import failed: nonexistent.css")
}

func TestProcessImports_FallbackToEmbedded(t *testing.T) {
	result := ProcessImports(`@import "default.css";`, "/nonexistent/path", nil)

	assert.Contains(t, result, "/* imported (embedded): default.css */")
	// The theme's own partial import is resolved as well
	assert.Contains(t, result, "/* imported (embedded): _base.css */")
	assert.Contains(t, result, "window.volume-hud-window")
	assert.Contains(t, result, "window.volume-hud-fullscreen")
}

func TestImportRegex(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`@import "file.css";`, "file.css"},
		{`@import 'file.css';`, "file.css"},
		{`@import url("file.css");`, "file.css"},
		{`@import url('file.css');`, "file.css"},
		{`@import url( "file.css" );`, "file.css"},
		{`@import "_partial.css"`, "_partial.css"}, // Without semicolon
		{`@import   "spaced.css"  ;`, "spaced.css"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			matches := importRegex.FindStringSubmatch(tt.input)
			require.Len(t, matches, 2, "should match import statement")
			assert.Equal(t, tt.expected, matches[1])
		})
	}
}

func TestNewTheme_ProcessesImports(t *testing.T) {
	tmpDir := t.TempDir()

	// Create a partial
	partialContent := `:root { --custom: #ff0000; }`
	partialPath := filepath.Join(tmpDir, "_colors.css")
	err := os.WriteFile(partialPath, []byte(partialContent), 0644)
	require.NoError(t, err)

	// Create main theme that imports the partial
	themeContent := `@import "_colors.css";
.volume-hud { color: var(--custom); }`
	themePath := filepath.Join(tmpDir, "custom.css")
	err = os.WriteFile(themePath, []byte(themeContent), 0644)
	require.NoError(t, err)

	theme, err := NewTheme("custom", themePath)
	require.NoError(t, err)

	// CSS should have processed imports
	assert.Contains(t, theme.CSS, "/* imported: _colors.css */")
	assert.Contains(t, theme.CSS, "--custom: #ff0000")
	assert.Contains(t, theme.CSS, ".volume-hud")
}

func TestTheme_Reload_ProcessesImports(t *testing.T) {
	tmpDir := t.TempDir()

	// Create initial theme
	themeContent := `.volume-hud { color: red; }`
	themePath := filepath.Join(tmpDir, "test.css")
	err := os.WriteFile(themePath, []byte(themeContent), 0644)
	require.NoError(t, err)

	theme, err := NewTheme("test", themePath)
	require.NoError(t, err)
	assert.Contains(t, theme.CSS, "color: red")

	// Create a partial
	partialContent := `:root { --new-color: blue; }`
	partialPath := filepath.Join(tmpDir, "_new.css")
	err = os.WriteFile(partialPath, []byte(partialContent), 0644)
	require.NoError(t, err)

	// Update theme to import the partial
	newContent := `@import "_new.css";
.volume-hud { color: var(--new-color); }`
	err = os.WriteFile(themePath, []byte(newContent), 0644)
	require.NoError(t, err)

	// Reload should process imports
	changed, err := theme.Reload()
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Contains(t, theme.CSS, "/* imported: _new.css */")
	assert.Contains(t, theme.CSS, "--new-color: blue")

	// A partial edit alone changes the theme
	err = os.WriteFile(partialPath, []byte(`:root { --new-color: green; }`), 0644)
	require.NoError(t, err)
	changed, err = theme.Reload()
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Contains(t, theme.CSS, "--new-color: green")

	changed, err = theme.Reload()
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestBundledTheme(t *testing.T) {
	th := NewBundledTheme("minimal")
	assert.Equal(t, "minimal", th.Name)
	assert.True(t, th.IsBundled())
	assert.False(t, th.IsDefault)
	assert.Contains(t, th.CSS, "/* imported (embedded): _base.css */")

	changed, err := th.Reload()
	require.NoError(t, err)
	assert.False(t, changed)

	fallback := NewBundledTheme("nope")
	assert.Equal(t, DefaultThemeName, fallback.Name)
	assert.True(t, fallback.IsDefault)
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	userCSS := `@import "_base.css";
.volume-hud { padding: 2px; }`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "minimal.css"), []byte(userCSS), 0644))

	user := Resolve(dir, "minimal", slog.Default())
	assert.False(t, user.IsBundled(), "user file shadows the bundled theme")
	assert.Contains(t, user.CSS, "padding: 2px")
	assert.Contains(t, user.CSS, "/* imported (embedded): _base.css */")

	bundled := Resolve(dir, "default", slog.Default())
	assert.True(t, bundled.IsBundled())

	unknown := Resolve("", "", slog.Default())
	assert.Equal(t, DefaultThemeName, unknown.Name)
}

func TestListAvailableThemes(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"minimal.css", "neon.css", "_colors.css", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(".x{}"), 0644))
	}

	themes, err := ListAvailableThemes(dir)
	require.NoError(t, err)

	byName := make(map[string]ThemeInfo)
	for _, th := range themes {
		byName[th.Name] = th
	}
	assert.Len(t, byName, 3)
	assert.True(t, byName["default"].IsBundled)
	assert.True(t, byName["default"].IsDefault)
	assert.False(t, byName["minimal"].IsBundled)
	assert.Equal(t, filepath.Join(dir, "minimal.css"), byName["minimal"].Path)
	assert.Equal(t, filepath.Join(dir, "neon.css"), byName["neon"].Path)

	themes, err = ListAvailableThemes(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Len(t, themes, len(BundledThemes))
}

func TestWatcher_HotReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.css")
	require.NoError(t, os.WriteFile(path, []byte(".volume-hud { color: red; }"), 0644))

	th, err := NewTheme("custom", path)
	require.NoError(t, err)

	got := make(chan string, 4)
	w := NewWatcher(th, nil)
	w.SetChangeCallback(func(css string) {
		select {
		case got <- css:
		default:
		}
	})
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()
	assert.True(t, w.IsRunning())

	require.NoError(t, os.WriteFile(path, []byte(".volume-hud { color: blue; }"), 0644))

	// A write may surface as truncate then write; wait for the final content
	deadline := time.After(2 * time.Second)
	for done := false; !done; {
		select {
		case css := <-got:
			done = strings.Contains(css, "color: blue")
		case <-deadline:
			t.Fatal("no reload after theme change")
		}
	}

	w.Stop()
	assert.False(t, w.IsRunning())
}

func TestWatcher_IgnoresBundled(t *testing.T) {
	w := NewWatcher(NewBundledTheme("default"), nil)
	require.NoError(t, w.Start(context.Background()))
	assert.False(t, w.IsRunning())
	w.Stop()
}

package theme

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/euxx/volume-grid-sub001/internal/config"
)

// importRegex matches @import "file.css"; or @import 'file.css'; or @import url("file.css");
var importRegex = regexp.MustCompile(`@import\s+(?:url\s*\(\s*)?["']([^"']+)["']\s*\)?;?`)

// Theme is a loaded stylesheet with its imports inlined.
type Theme struct {
	Name      string    // Theme name (without .css extension)
	Path      string    // CSS file on disk, empty for bundled themes
	CSS       string    // Processed CSS
	ModTime   time.Time // Modification time at the last load
	IsDefault bool      // True for the embedded default theme
}

// ThemesDir returns the path to the user's themes directory.
func ThemesDir() (string, error) {
	dir := config.ThemesDir()
	if dir == "" {
		return "", errors.New("unable to determine config directory")
	}
	return dir, nil
}

// NewTheme loads a theme from a CSS file on disk.
func NewTheme(name, path string) (*Theme, error) {
	t := &Theme{Name: name, Path: path}
	if _, err := t.Reload(); err != nil {
		return nil, err
	}
	return t, nil
}

// NewBundledTheme loads an embedded theme, or the default when name is unknown.
func NewBundledTheme(name string) *Theme {
	css, found := GetEmbeddedTheme(name)
	if !found {
		name = DefaultThemeName
		css, _ = GetEmbeddedTheme(name)
	}
	return &Theme{
		Name:      name,
		CSS:       ProcessImports(css, "", nil),
		IsDefault: name == DefaultThemeName,
	}
}

// IsBundled reports whether the theme came from the embedded set.
func (t *Theme) IsBundled() bool {
	return t.Path == ""
}

// Reload re-reads the theme and its imports from disk and reports whether the
// processed CSS changed. Bundled themes never change.
func (t *Theme) Reload() (bool, error) {
	if t.IsBundled() {
		return false, nil
	}

	info, err := os.Stat(t.Path)
	if err != nil {
		return false, err
	}
	css, err := os.ReadFile(t.Path)
	if err != nil {
		return false, err
	}

	processed := ProcessImports(string(css), filepath.Dir(t.Path), nil)
	changed := processed != t.CSS
	t.CSS = processed
	t.ModTime = info.ModTime()
	return changed, nil
}

// ProcessImports inlines @import statements, resolving paths relative to
// baseDir. Imports missing on disk fall back to the embedded partials and
// themes. seen guards against cycles and may be nil.
func ProcessImports(css string, baseDir string, seen map[string]bool) string {
	if seen == nil {
		seen = make(map[string]bool)
	}

	return importRegex.ReplaceAllStringFunc(css, func(match string) string {
		submatch := importRegex.FindStringSubmatch(match)
		if len(submatch) < 2 {
			return match
		}
		importPath := submatch[1]

		fullPath := importPath
		if !filepath.IsAbs(importPath) {
			fullPath = filepath.Join(baseDir, importPath)
		}

		if seen[fullPath] {
			return "/* circular import prevented: " + importPath + " */"
		}
		seen[fullPath] = true

		data, err := os.ReadFile(fullPath)
		if err != nil {
			if embedded, ok := embeddedImport(importPath); ok {
				return "/* imported (embedded): " + importPath + " */\n" + ProcessImports(embedded, "", seen)
			}
			return "/* import failed: " + importPath + " - " + err.Error() + " */"
		}

		return "/* imported: " + importPath + " */\n" + ProcessImports(string(data), filepath.Dir(fullPath), seen)
	})
}

func embeddedImport(importPath string) (string, bool) {
	base := filepath.Base(importPath)
	if strings.HasPrefix(base, "_") {
		if css, ok := GetEmbeddedPartial(base); ok {
			return css, true
		}
	}
	return GetEmbeddedTheme(strings.TrimSuffix(base, ".css"))
}

// ThemeInfo provides basic theme information for listing.
type ThemeInfo struct {
	Name      string
	Path      string
	IsDefault bool
	IsBundled bool
}

// ListAvailableThemes lists the bundled themes followed by user themes in
// dir. A user theme shadowing a bundled one is listed once, with its path.
func ListAvailableThemes(dir string) ([]ThemeInfo, error) {
	var themes []ThemeInfo
	index := make(map[string]int)

	for _, name := range ListEmbeddedThemes() {
		index[name] = len(themes)
		themes = append(themes, ThemeInfo{
			Name:      name,
			IsDefault: name == DefaultThemeName,
			IsBundled: true,
		})
	}

	if dir == "" {
		return themes, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return themes, nil
		}
		return themes, err
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, "_") || filepath.Ext(name) != ".css" {
			continue
		}
		themeName := strings.TrimSuffix(name, ".css")
		info := ThemeInfo{Name: themeName, Path: filepath.Join(dir, name)}
		if i, ok := index[themeName]; ok {
			themes[i].Path = info.Path
			themes[i].IsBundled = false
			continue
		}
		index[themeName] = len(themes)
		themes = append(themes, info)
	}

	return themes, nil
}

// CreateThemesDir creates the themes directory if it doesn't exist.
func CreateThemesDir() error {
	dir, err := ThemesDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

package display

import (
	"strings"

	"github.com/euxx/volume-grid-sub001/internal/hud"
)

// stateClasses are the CSS classes Render toggles on every frame.
var stateClasses = []string{"dark", "light", "muted", "unsupported", "band-muted", "band-low", "band-medium", "band-high"}

// viewClasses returns the CSS classes for a rendered frame. Themes select on
// these, plus the per-device class.
func viewClasses(view hud.View, style hud.Style) []string {
	classes := make([]string, 0, 4)
	if style.Dark {
		classes = append(classes, "dark")
	} else {
		classes = append(classes, "light")
	}
	if view.Muted {
		classes = append(classes, "muted")
	}
	if view.Unsupported {
		classes = append(classes, "unsupported")
	}
	classes = append(classes, "band-"+view.Band.String())
	return classes
}

// deviceClass returns the per-device class, or "" for an unnamed device.
func deviceClass(name string) string {
	s := sanitizeClassName(name)
	if s == "" {
		return ""
	}
	return "device-" + s
}

// sanitizeClassName converts a string to a valid CSS class name.
// Replaces spaces and special characters with hyphens, lowercases.
func sanitizeClassName(name string) string {
	var result strings.Builder
	prevHyphen := false

	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			result.WriteRune(r)
			prevHyphen = false
		case r == '-' || r == '_' || r == ' ' || r == '.' || r == '/':
			if !prevHyphen && result.Len() > 0 {
				result.WriteRune('-')
				prevHyphen = true
			}
		}
	}

	return strings.TrimSuffix(result.String(), "-")
}

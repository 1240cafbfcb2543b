package display

import (
	"sync/atomic"

	"github.com/diamondburned/gotk4-adwaita/pkg/adw"

	"github.com/euxx/volume-grid-sub001/internal/config"
	"github.com/euxx/volume-grid-sub001/internal/hud"
)

// Appearance resolves the color scheme from the config, falling back to the
// libadwaita StyleManager for "system".
type Appearance struct {
	scheme atomic.Value // config.ColorScheme
}

var _ hud.Appearance = (*Appearance)(nil)

// NewAppearance creates an Appearance for scheme.
func NewAppearance(scheme config.ColorScheme) *Appearance {
	a := &Appearance{}
	a.SetScheme(scheme)
	return a
}

// SetScheme changes the preference; the next Show picks it up.
func (a *Appearance) SetScheme(scheme config.ColorScheme) {
	a.scheme.Store(scheme)
}

// Dark implements hud.Appearance.
func (a *Appearance) Dark() bool {
	scheme, _ := a.scheme.Load().(config.ColorScheme)
	switch scheme {
	case config.ColorSchemeLight:
		return false
	case config.ColorSchemeDark:
		return true
	default:
		return adw.StyleManagerGetDefault().Dark()
	}
}

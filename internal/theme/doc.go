// Package theme loads the CSS for the volume HUD. Themes are looked up in
// ~/.config/volume-grid/themes/ first and then in the bundled set, and user
// themes are hot-reloaded when they or their imported partials change.
package theme

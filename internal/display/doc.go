// Package display implements the HUD windows with GTK4 and libadwaita.
// Windows are placed per monitor through Wayland layer-shell when the
// compositor supports it; the segment bar and backdrop are drawn with cairo.
// All functions must be called on the GTK main loop unless noted otherwise.
package display

//go:build !linux

package display

import (
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"
)

// Layer shell is a Wayland protocol; elsewhere overlays are fullscreen
// windows bound to their monitor.
func layerShellSupported() bool { return false }

func initLayer(*gtk.Window, *gdk.Monitor) {}

func placeLayer(*gtk.Window, int, int) {}

//go:build linux

package display

import (
	layershell "github.com/diamondburned/gotk4-layer-shell/pkg/gtk4layershell"
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"
)

// layerShellSupported reports whether the compositor speaks wlr-layer-shell.
func layerShellSupported() bool {
	return layershell.IsSupported()
}

// initLayer turns window into a top-left anchored overlay surface on monitor.
func initLayer(window *gtk.Window, monitor *gdk.Monitor) {
	layershell.InitForWindow(window)
	layershell.SetLayer(window, layershell.LayerShellLayerOverlay)
	layershell.SetExclusiveZone(window, 0) // Don't reserve space
	layershell.SetKeyboardMode(window, layershell.LayerShellKeyboardModeNone)
	layershell.SetNamespace(window, "volume-grid-hud")
	layershell.SetAnchor(window, layershell.LayerShellEdgeTop, true)
	layershell.SetAnchor(window, layershell.LayerShellEdgeLeft, true)
	if monitor != nil {
		layershell.SetMonitor(window, monitor)
	}
}

// placeLayer offsets a layered window from its monitor's top-left corner.
func placeLayer(window *gtk.Window, top, left int) {
	layershell.SetMargin(window, layershell.LayerShellEdgeTop, top)
	layershell.SetMargin(window, layershell.LayerShellEdgeLeft, left)
}

//go:build !linux

package display

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLayerShellUnavailable(t *testing.T) {
	assert.False(t, layerShellSupported(), "overlays fall back to fullscreen windows")
}

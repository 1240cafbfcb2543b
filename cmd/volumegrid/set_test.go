package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/euxx/volume-grid-sub001/internal/model"
)

func TestParseTarget(t *testing.T) {
	tests := []struct {
		name     string
		arg      string
		current  float64
		segments bool
		want     float64
		wantErr  bool
	}{
		{"absolute percent", "50", 0.2, false, 0.5, false},
		{"percent sign", "75%", 0.2, false, 0.75, false},
		{"relative up", "+10", 0.5, false, 0.6, false},
		{"relative down", "-10", 0.5, false, 0.4, false},
		{"clamped high", "150", 0.5, false, 1, false},
		{"clamped low", "-80", 0.5, false, 0, false},
		{"absolute segments", "8.5", 0, true, 8.5 / 16, false},
		{"relative segment", "+1", 0.5, true, 9.0 / 16, false},
		{"quarter snaps", "3.3", 0, true, 3.25 / 16, false},
		{"segments clamped", "+4", 0.9, true, 1, false},
		{"garbage", "loud", 0.5, false, 0, true},
		{"empty", "", 0.5, false, 0, true},
		{"nan", "NaN", 0.5, false, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseTarget(tt.arg, tt.current, tt.segments)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestStepSegments(t *testing.T) {
	assert.InDelta(t, 9.0/16, stepSegments(0.5, 1), 1e-9)
	assert.InDelta(t, 7.75/16, stepSegments(0.5, -0.25), 1e-9)
	assert.InDelta(t, 1.0, stepSegments(0.98, 2), 1e-9)
	assert.InDelta(t, 0.0, stepSegments(0.01, -1), 1e-9)
}

func TestMuteTarget(t *testing.T) {
	muted, err := muteTarget("on", false)
	require.NoError(t, err)
	assert.True(t, muted)

	muted, err = muteTarget("OFF", true)
	require.NoError(t, err)
	assert.False(t, muted)

	muted, err = muteTarget("toggle", true)
	require.NoError(t, err)
	assert.False(t, muted)

	_, err = muteTarget("loud", false)
	assert.Error(t, err)
}

func TestEventStatus(t *testing.T) {
	at := time.Now()
	hc := model.HUDContext{VolumeScalar: 0.5, DeviceName: "Speakers", CreatedAt: at}

	s := eventStatus(hc, &model.AudioDevice{ID: 42, Name: "Speakers"})
	assert.Equal(t, model.DeviceID(42), s.Device.ID)
	assert.Equal(t, 50, s.Percentage)
	assert.True(t, s.Supported)
	assert.Equal(t, at, s.At)

	s = eventStatus(model.HUDContext{DeviceName: "HDMI", IsUnsupported: true}, &model.AudioDevice{ID: 42, Name: "Speakers"})
	assert.Equal(t, model.NoDevice, s.Device.ID)
	assert.False(t, s.Supported)

	s = eventStatus(hc, nil)
	assert.Equal(t, "Speakers", s.Device.Name)
}

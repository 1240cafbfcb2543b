package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"negative", -0.5, 0},
		{"zero", 0, 0},
		{"middle", 0.42, 0.42},
		{"one", 1, 1},
		{"above", 1.7, 1},
		{"nan", math.NaN(), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clamp(tt.in))
		})
	}
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, 0, Percentage(0))
	assert.Equal(t, 30, Percentage(0.3))
	assert.Equal(t, 50, Percentage(0.495))
	assert.Equal(t, 100, Percentage(1))
	assert.Equal(t, 100, Percentage(3))
	assert.InDelta(t, 0.25, ScalarFromPercentage(25), 1e-9)
	assert.Equal(t, 1.0, ScalarFromPercentage(250))
}

func TestNearBounds(t *testing.T) {
	assert.True(t, NearZero(0.0005))
	assert.False(t, NearZero(0.002))
	assert.True(t, NearOne(0.9995))
	assert.False(t, NearOne(0.99))
}

func TestNewHUDContext(t *testing.T) {
	a := NewHUDContext(0.5, "Speakers", false, false)
	b := NewHUDContext(0.5, "Speakers", false, false)

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.True(t, a.HasDeviceName())
	assert.False(t, NewHUDContext(0, "", true, true).HasDeviceName())
}

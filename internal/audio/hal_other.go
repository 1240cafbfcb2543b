//go:build !darwin || !cgo

package audio

// NewSystemHAL returns ErrUnsupportedPlatform: the hardware backend needs
// CoreAudio and cgo.
func NewSystemHAL() (HAL, error) {
	return nil, ErrUnsupportedPlatform
}

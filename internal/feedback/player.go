// Package feedback plays the short audible blip that confirms a volume key
// press: a generated sine tone, or a user supplied sound file.
package feedback

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/generators"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"

	"github.com/euxx/volume-grid-sub001/internal/config"
)

// DefaultSampleRate is used for generated tones.
const DefaultSampleRate = beep.SampleRate(44100)

// fadeLength is the ramp applied to both ends of a tone to avoid clicks.
const fadeLength = 5 * time.Millisecond

// Output is the audio device the player mixes into.
type Output interface {
	Init(sampleRate beep.SampleRate, bufferSize int) error
	Play(s beep.Streamer)
	Close()
}

// Speaker is the system audio output.
type Speaker struct{}

func (Speaker) Init(sampleRate beep.SampleRate, bufferSize int) error {
	return speaker.Init(sampleRate, bufferSize)
}

func (Speaker) Play(s beep.Streamer) { speaker.Play(s) }

func (Speaker) Close() { speaker.Close() }

// Player plays feedback blips. It is safe for concurrent use.
type Player struct {
	mu     sync.Mutex
	logger *slog.Logger
	out    Output

	enabled   bool
	volume    float64 // 0.0 to 1.0
	frequency float64
	duration  time.Duration
	sound     string

	initialized bool
	sampleRate  beep.SampleRate

	// Decoded sound files by path
	cache map[string]*beep.Buffer
}

// NewPlayer creates a player writing to out, or to the system speaker when
// out is nil. The speaker is opened on the first blip.
func NewPlayer(out Output, logger *slog.Logger) *Player {
	if logger == nil {
		logger = slog.Default()
	}
	if out == nil {
		out = Speaker{}
	}

	def := config.DefaultConfig().Feedback
	return &Player{
		logger:     logger,
		out:        out,
		volume:     float64(def.Volume) / 100,
		frequency:  float64(def.Frequency),
		duration:   def.Duration.Duration(),
		sampleRate: DefaultSampleRate,
		cache:      make(map[string]*beep.Buffer),
	}
}

// Configure applies the feedback section of cfg. A changed sound file is
// decoded again on its next use.
func (p *Player) Configure(cfg config.FeedbackConfig) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.enabled = cfg.Enabled
	p.volume = clampUnit(float64(cfg.Volume) / 100)
	p.frequency = float64(cfg.Frequency)
	p.duration = cfg.Duration.Duration()
	p.sound = config.ExpandPath(cfg.Sound)
	p.cache = make(map[string]*beep.Buffer)

	p.logger.Debug("feedback configured",
		"enabled", p.enabled,
		"volume", p.volume,
		"frequency", p.frequency,
		"sound", p.sound,
	)
}

// Enabled reports whether Blip makes a sound.
func (p *Player) Enabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.enabled
}

// Blip plays the configured feedback sound. It returns without waiting for
// playback and does nothing when feedback is disabled.
func (p *Player) Blip() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.enabled {
		return nil
	}

	var (
		s   beep.Streamer
		err error
	)
	if p.sound != "" {
		s, err = p.soundStreamer(p.sound)
		if err != nil {
			p.logger.Warn("failed to load feedback sound, using tone", "path", p.sound, "error", err)
		}
	}
	if s == nil {
		if err := p.ensureInitialized(DefaultSampleRate); err != nil {
			return err
		}
		s, err = Tone(p.sampleRate, p.frequency, p.duration)
		if err != nil {
			return err
		}
	}

	p.out.Play(withVolume(s, p.volume))
	return nil
}

// Tone returns a sine tone of the given length with short fades at both ends.
func Tone(sr beep.SampleRate, frequency float64, d time.Duration) (beep.Streamer, error) {
	sine, err := generators.SineTone(sr, frequency)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tone: %w", err)
	}
	return envelope(beep.Take(sr.N(d), sine), sr.N(d), sr.N(fadeLength)), nil
}

// envelope ramps the first and last ramp samples of a total-sample stream.
func envelope(s beep.Streamer, total, ramp int) beep.Streamer {
	if ramp*2 > total {
		ramp = total / 2
	}
	pos := 0
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		n, ok := s.Stream(samples)
		for i := range samples[:n] {
			gain := 1.0
			switch {
			case ramp > 0 && pos < ramp:
				gain = float64(pos) / float64(ramp)
			case ramp > 0 && pos >= total-ramp:
				gain = float64(total-pos) / float64(ramp)
			}
			samples[i][0] *= gain
			samples[i][1] *= gain
			pos++
		}
		return n, ok
	})
}

// soundStreamer returns a streamer over the cached decoded file.
func (p *Player) soundStreamer(path string) (beep.Streamer, error) {
	buffer, ok := p.cache[path]
	if !ok {
		var err error
		buffer, err = p.loadSound(path)
		if err != nil {
			return nil, err
		}
		p.cache[path] = buffer
	}

	var s beep.Streamer = buffer.Streamer(0, buffer.Len())
	if rate := buffer.Format().SampleRate; rate != p.sampleRate {
		s = beep.Resample(4, rate, p.sampleRate, s)
	}
	return s, nil
}

// loadSound decodes a wav, ogg or mp3 file into memory.
func (p *Player) loadSound(path string) (*beep.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sound file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".wav":
		streamer, format, err = wav.Decode(f)
	case ".ogg":
		streamer, format, err = vorbis.Decode(f)
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	default:
		return nil, fmt.Errorf("unsupported audio format: %s", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode sound: %w", err)
	}
	defer func() { _ = streamer.Close() }()

	if err := p.ensureInitialized(format.SampleRate); err != nil {
		return nil, err
	}

	buffer := beep.NewBuffer(format)
	buffer.Append(streamer)
	return buffer, nil
}

// ensureInitialized opens the output once, at the first sample rate used.
func (p *Player) ensureInitialized(sampleRate beep.SampleRate) error {
	if p.initialized {
		return nil
	}

	// Small buffer: the blip has to follow the key press closely
	bufferSize := sampleRate.N(30 * time.Millisecond)
	if err := p.out.Init(sampleRate, bufferSize); err != nil {
		return fmt.Errorf("failed to initialize speaker: %w", err)
	}

	p.sampleRate = sampleRate
	p.initialized = true
	p.logger.Debug("speaker initialized", "sample_rate", sampleRate)
	return nil
}

// Close releases the output.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		p.out.Close()
		p.initialized = false
	}
	p.cache = make(map[string]*beep.Buffer)
	p.logger.Debug("feedback player closed")
}

func withVolume(s beep.Streamer, volume float64) beep.Streamer {
	if volume >= 1 {
		return s
	}
	return &effects.Volume{
		Streamer: s,
		Base:     10,
		Volume:   volumeToDecibels(volume) / 20,
		Silent:   volume <= 0,
	}
}

// volumeToDecibels converts a linear volume (0-1) to decibels.
func volumeToDecibels(volume float64) float64 {
	if volume <= 0 {
		return -100
	}
	return 20 * math.Log10(volume)
}

func clampUnit(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

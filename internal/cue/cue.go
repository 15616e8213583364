// Package cue plays a short beep when a scheduled shape hides.
package cue

import (
	"fmt"
	"math"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
)

// Tone returns a sine streamer of the given frequency and length with a
// linear fade-out so it does not click.
func Tone(sr beep.SampleRate, freq float64, d time.Duration) beep.Streamer {
	total := sr.N(d)
	pos := 0
	step := 2 * math.Pi * freq / float64(sr)
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		if pos >= total {
			return 0, false
		}
		n := 0
		for i := range samples {
			if pos >= total {
				break
			}
			gain := 0.3 * (1 - float64(pos)/float64(total))
			v := gain * math.Sin(step*float64(pos))
			samples[i][0], samples[i][1] = v, v
			pos++
			n++
		}
		return n, true
	})
}

// Player emits a cue per shape name.
type Player interface {
	Play(shape string)
}

// Speaker plays cues on the default audio device.
type Speaker struct {
	sr       beep.SampleRate
	duration time.Duration
	base     float64
	freqs    map[string]float64
}

// NewSpeaker initialises the audio device. Each shape gets its own pitch;
// unknown shapes use base.
func NewSpeaker(sampleRate int, base float64, d time.Duration, shapes ...string) (*Speaker, error) {
	sr := beep.SampleRate(sampleRate)
	if err := speaker.Init(sr, sr.N(time.Second/20)); err != nil {
		return nil, fmt.Errorf("init speaker: %w", err)
	}
	freqs := make(map[string]float64, len(shapes))
	for i, s := range shapes {
		// a fifth apart
		freqs[s] = base * math.Pow(1.5, float64(i))
	}
	return &Speaker{sr: sr, duration: d, base: base, freqs: freqs}, nil
}

// Frequency returns the pitch used for shape.
func (s *Speaker) Frequency(shape string) float64 {
	if f, ok := s.freqs[shape]; ok {
		return f
	}
	return s.base
}

func (s *Speaker) Play(shape string) {
	speaker.Play(Tone(s.sr, s.Frequency(shape), s.duration))
}

// Close stops playback.
func (s *Speaker) Close() {
	speaker.Lock()
	speaker.Clear()
	speaker.Unlock()
}

// Mute discards every cue.
type Mute struct{}

func (Mute) Play(string) {}

package stage

import (
	"io"

	"github.com/rs/zerolog"

	"github.com/ayusman/mudra/internal/audio"
)

// Sound is the stage's single ambient audio channel. It owns at most one
// player at a time; swapping sources disposes the old player. Every
// operation is safe to repeat and safe to call with no source or no audio
// device; failures are logged, never returned, so audio can not take down
// a frame.
type Sound struct {
	device  audio.Device
	log     zerolog.Logger
	player  audio.Player
	volume  float64
	enabled bool
}

func newSound(device audio.Device, log zerolog.Logger) *Sound {
	return &Sound{
		device:  device,
		log:     log.With().Str("component", "sound").Logger(),
		volume:  1,
		enabled: true,
	}
}

// SetSource hands the channel a new PCM stream, closing and replacing any
// current one. Playback starts stopped; call Play. A nil stream just
// clears the channel.
func (s *Sound) SetSource(stream io.Reader) {
	if s.player != nil {
		if err := s.player.Close(); err != nil {
			s.log.Warn().Err(err).Msg("failed to close previous source")
		}
		s.player = nil
	}
	if stream == nil {
		return
	}
	if s.device == nil {
		s.log.Warn().Msg("no audio device, dropping source")
		return
	}
	s.player = s.device.NewPlayer(stream)
	s.player.SetVolume(s.volume)
}

// HasSource reports whether the channel currently owns a player.
func (s *Sound) HasSource() bool {
	return s.player != nil
}

// Play starts or resumes playback. Nothing happens without a source or
// while the channel is disabled.
func (s *Sound) Play() {
	if s.player == nil {
		s.log.Debug().Msg("play requested with no source")
		return
	}
	if !s.enabled {
		return
	}
	s.player.Play()
}

// Pause halts playback, keeping the stream position.
func (s *Sound) Pause() {
	if s.player != nil {
		s.player.Pause()
	}
}

// Playing reports whether the channel is currently audible.
func (s *Sound) Playing() bool {
	return s.player != nil && s.player.IsPlaying()
}

// SetVolume sets the channel volume, clamped to 0 through 1. It applies
// to the current player and carries over to future sources.
func (s *Sound) SetVolume(v float64) {
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	s.volume = v
	if s.player != nil {
		s.player.SetVolume(v)
	}
}

// Volume returns the channel volume.
func (s *Sound) Volume() float64 {
	return s.volume
}

// SetEnabled toggles the whole channel. Disabling pauses playback;
// re-enabling does not resume it.
func (s *Sound) SetEnabled(enabled bool) {
	if s.enabled == enabled {
		return
	}
	s.enabled = enabled
	if !enabled && s.player != nil {
		s.player.Pause()
	}
}

// Enabled reports whether the channel accepts playback.
func (s *Sound) Enabled() bool {
	return s.enabled
}

// Close disposes the channel's player. The channel may be reused by
// setting a new source.
func (s *Sound) Close() {
	if s.player == nil {
		return
	}
	if err := s.player.Close(); err != nil {
		s.log.Warn().Err(err).Msg("failed to close sound player")
	}
	s.player = nil
}

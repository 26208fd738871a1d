// Package audio abstracts PCM playback behind small interfaces so the
// stage engine can drive sound without owning a platform audio stack, and
// tests can substitute mocks.
package audio

import (
	"errors"
	"io"
)

// Player is the control surface of one playback stream. Implementations
// must tolerate repeated calls: playing an already playing stream or
// pausing a paused one is a no-op.
type Player interface {
	// Play starts or resumes playback.
	Play()
	// Pause halts playback, keeping the stream position.
	Pause()
	// IsPlaying reports whether the stream is currently audible.
	IsPlaying() bool
	// SetVolume scales the stream from 0 (silent) to 1 (full).
	SetVolume(volume float64)
	// Close releases the stream. A closed player must not be reused.
	Close() error
}

// Device turns PCM streams into players. Streams are 16-bit little-endian
// signed samples, interleaved per channel, at the device's sample rate.
type Device interface {
	NewPlayer(stream io.Reader) Player
}

// loopReader replays a seekable stream forever.
type loopReader struct {
	src io.ReadSeeker
}

// NewLoop wraps a seekable PCM stream so it restarts from the beginning at
// every end, producing an endless stream for ambient tracks.
func NewLoop(src io.ReadSeeker) io.Reader {
	return &loopReader{src: src}
}

func (l *loopReader) Read(p []byte) (int, error) {
	n, err := l.src.Read(p)
	if err == nil || !errors.Is(err, io.EOF) {
		return n, err
	}
	if _, err := l.src.Seek(0, io.SeekStart); err != nil {
		return n, err
	}
	if n > 0 {
		return n, nil
	}
	return l.src.Read(p)
}

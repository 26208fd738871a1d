package audio

import (
	"fmt"
	"io"

	"github.com/ebitengine/oto/v3"
)

// OtoDevice plays streams through the operating system mixer via oto.
type OtoDevice struct {
	ctx   *oto.Context
	ready chan struct{}
}

// NewOtoDevice opens the system audio device at the given sample rate and
// channel count. Opening can only happen once per process; callers share
// the returned device.
func NewOtoDevice(sampleRate, channels int) (*OtoDevice, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channels,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open audio device: %w", err)
	}
	return &OtoDevice{ctx: ctx, ready: ready}, nil
}

// NewPlayer creates a player for the stream. Playback queued before the
// device finishes initializing starts once it is ready.
func (d *OtoDevice) NewPlayer(stream io.Reader) Player {
	return &otoPlayer{p: d.ctx.NewPlayer(stream)}
}

// Ready returns a channel closed once the device accepts output.
func (d *OtoDevice) Ready() <-chan struct{} {
	return d.ready
}

type otoPlayer struct {
	p *oto.Player
}

func (o *otoPlayer) Play() {
	if !o.p.IsPlaying() {
		o.p.Play()
	}
}

func (o *otoPlayer) Pause() {
	if o.p.IsPlaying() {
		o.p.Pause()
	}
}

func (o *otoPlayer) IsPlaying() bool {
	return o.p.IsPlaying()
}

func (o *otoPlayer) SetVolume(volume float64) {
	o.p.SetVolume(volume)
}

func (o *otoPlayer) Close() error {
	return o.p.Close()
}

package audio

import "io"

// MockDevice is a Device for tests. It records the players it creates.
type MockDevice struct {
	Players []*MockPlayer
}

// NewMockDevice creates a new MockDevice instance.
func NewMockDevice() *MockDevice {
	return &MockDevice{}
}

// NewPlayer returns a MockPlayer that tracks state transitions.
func (d *MockDevice) NewPlayer(stream io.Reader) Player {
	p := &MockPlayer{Stream: stream, Volume: 1}
	d.Players = append(d.Players, p)
	return p
}

// MockPlayer records playback calls without touching any audio hardware.
type MockPlayer struct {
	Stream  io.Reader
	Volume  float64
	playing bool
	Closed  bool

	PlayCalls  int
	PauseCalls int
}

func (p *MockPlayer) Play() {
	p.PlayCalls++
	if !p.Closed {
		p.playing = true
	}
}

func (p *MockPlayer) Pause() {
	p.PauseCalls++
	p.playing = false
}

func (p *MockPlayer) IsPlaying() bool {
	return p.playing
}

func (p *MockPlayer) SetVolume(volume float64) {
	p.Volume = volume
}

func (p *MockPlayer) Close() error {
	p.playing = false
	p.Closed = true
	return nil
}

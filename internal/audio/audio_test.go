package audio

import (
	"bytes"
	"testing"
)

func TestNewLoop_Restarts(t *testing.T) {
	loop := NewLoop(bytes.NewReader([]byte{1, 2, 3, 4}))

	buf := make([]byte, 4)
	for pass := 0; pass < 3; pass++ {
		total := 0
		for total < len(buf) {
			n, err := loop.Read(buf[total:])
			if err != nil {
				t.Fatalf("pass %d: unexpected error: %v", pass, err)
			}
			total += n
		}
		if !bytes.Equal(buf, []byte{1, 2, 3, 4}) {
			t.Fatalf("pass %d: expected stream to restart, got %v", pass, buf)
		}
	}
}

func TestMockPlayer_StateTransitions(t *testing.T) {
	device := NewMockDevice()
	player := device.NewPlayer(bytes.NewReader(nil))

	if player.IsPlaying() {
		t.Error("expected new player to be paused")
	}

	player.Play()
	player.Play()
	if !player.IsPlaying() {
		t.Error("expected player to be playing")
	}

	player.Pause()
	if player.IsPlaying() {
		t.Error("expected player to be paused")
	}

	player.SetVolume(0.5)
	mock := device.Players[0]
	if mock.Volume != 0.5 {
		t.Errorf("expected volume 0.5, got %f", mock.Volume)
	}

	if err := player.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	player.Play()
	if player.IsPlaying() {
		t.Error("expected closed player to stay stopped")
	}
}

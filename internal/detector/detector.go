package detector

import (
	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/hand"
)

// Detection is one detected hand: which side it is, the detection
// confidence and the full joint snapshot in world-ish meters.
type Detection struct {
	Side     hand.Side     `json:"side"`
	Score    float64       `json:"score"`
	Snapshot hand.Snapshot `json:"snapshot"`
}

// Detector turns video frames into hand joint snapshots.
type Detector interface {
	// Detect analyzes a video frame and returns the detected hands.
	// Returns an empty slice if no hands are found.
	Detect(frame *gocv.Mat) ([]Detection, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for hand detection.
type Config struct {
	// MaxHands is the maximum number of hands to detect (default: 2).
	MaxHands int

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	// Hands scoring below it are dropped.
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MaxHands:        2,
		MinConfidence:   0.5,
		MinTrackingConf: 0.5,
	}
}

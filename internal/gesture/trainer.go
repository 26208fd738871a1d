package gesture

import (
	"encoding/json"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Trainer processes recorded samples into gesture templates.
type Trainer struct{}

// NewTrainer creates a new Trainer instance.
func NewTrainer() *Trainer {
	return &Trainer{}
}

// StaticSample is a recorded single-pose sample: one normalized joint cloud.
type StaticSample struct {
	Type      string       `json:"type"`
	Joints    []mgl64.Vec3 `json:"joints"`
	Timestamp int64        `json:"timestamp"`
}

// DynamicSample is a recorded trail sample.
type DynamicSample struct {
	Type      string      `json:"type"`
	Path      []PathPoint `json:"path"`
	Timestamp int64       `json:"timestamp"`
}

// TrainStatic averages multiple pose samples into a single template cloud.
// All samples must carry the same number of joints.
func (t *Trainer) TrainStatic(samples []json.RawMessage) ([]mgl64.Vec3, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("no samples provided")
	}

	var clouds [][]mgl64.Vec3
	for i, raw := range samples {
		var sample StaticSample
		if err := json.Unmarshal(raw, &sample); err != nil {
			return nil, fmt.Errorf("failed to parse sample %d: %w", i, err)
		}
		if len(sample.Joints) == 0 {
			return nil, fmt.Errorf("sample %d has no joints", i)
		}
		clouds = append(clouds, sample.Joints)
	}

	numPoints := len(clouds[0])
	for i, cloud := range clouds {
		if len(cloud) != numPoints {
			return nil, fmt.Errorf("sample %d has %d joints, expected %d", i, len(cloud), numPoints)
		}
	}

	averaged := make([]mgl64.Vec3, numPoints)
	n := float64(len(clouds))
	for i := 0; i < numPoints; i++ {
		var sum mgl64.Vec3
		for _, cloud := range clouds {
			sum = sum.Add(cloud[i])
		}
		averaged[i] = sum.Mul(1 / n)
	}
	return averaged, nil
}

// TrainDynamic averages multiple trail samples into a single template
// trail, resampling so trails of different lengths line up.
func (t *Trainer) TrainDynamic(samples []json.RawMessage) ([]PathPoint, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("no samples provided")
	}

	var allPaths [][]PathPoint
	for i, raw := range samples {
		var sample DynamicSample
		if err := json.Unmarshal(raw, &sample); err != nil {
			return nil, fmt.Errorf("failed to parse sample %d: %w", i, err)
		}
		if len(sample.Path) < 2 {
			return nil, fmt.Errorf("sample %d has insufficient path points", i)
		}
		allPaths = append(allPaths, sample.Path)
	}

	// The first sample's length is the reference.
	targetLength := len(allPaths[0])
	averaged := make([]PathPoint, targetLength)

	for i := 0; i < targetLength; i++ {
		var sumX, sumY, sumZ float64
		var refTimestamp int64

		for pathIdx, path := range allPaths {
			resampled := resamplePath(path, targetLength)
			sumX += resampled[i].X
			sumY += resampled[i].Y
			sumZ += resampled[i].Z
			if pathIdx == 0 {
				refTimestamp = resampled[i].Timestamp
			}
		}

		n := float64(len(allPaths))
		averaged[i] = PathPoint{
			X:         sumX / n,
			Y:         sumY / n,
			Z:         sumZ / n,
			Timestamp: refTimestamp,
		}
	}
	return averaged, nil
}

// resamplePath linearly interpolates a trail to exactly targetLength points.
func resamplePath(path []PathPoint, targetLength int) []PathPoint {
	if len(path) == 0 {
		return nil
	}
	if len(path) == 1 || targetLength <= 1 {
		return []PathPoint{path[0]}
	}

	result := make([]PathPoint, targetLength)
	for i := 0; i < targetLength; i++ {
		t := float64(i) / float64(targetLength-1)
		pos := t * float64(len(path)-1)

		idx := int(pos)
		if idx >= len(path)-1 {
			idx = len(path) - 2
		}
		frac := pos - float64(idx)

		p1 := path[idx]
		p2 := path[idx+1]
		result[i] = PathPoint{
			X:         p1.X + frac*(p2.X-p1.X),
			Y:         p1.Y + frac*(p2.Y-p1.Y),
			Z:         p1.Z + frac*(p2.Z-p1.Z),
			Timestamp: p1.Timestamp + int64(frac*float64(p2.Timestamp-p1.Timestamp)),
		}
	}
	return result
}

package app

import (
	"time"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/hand"
)

// runPipeline is the frame loop. It advances the stage every tick and, while
// tracking is enabled, pulls camera frames through motion gating, hand
// detection and gesture recognition.
//
// The loop runs at IdleFPS while the scene is static. Motion switches it to
// ActiveFPS; IdleTimeout without motion switches it back and drops any
// half-built gesture trails.
func (a *App) runPipeline(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	activeMode := false
	lastMotion := time.Now()
	interval := time.Second / IdleFPS

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now()

	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now

			a.mu.Lock()
			a.engine.Advance(dt)
			enabled := a.enabled
			det := a.detector
			a.mu.Unlock()

			if !enabled {
				continue
			}

			frame, err := a.Camera().ReadFrame()
			if err != nil {
				a.log.Debug().Err(err).Msg("reading frame")
				continue
			}

			moved, _ := a.motion.Detect(frame)
			if moved {
				lastMotion = now
				if !activeMode {
					activeMode = true
					a.Camera().SetFPS(ActiveFPS)
					interval = time.Second / ActiveFPS
					ticker.Reset(interval)
					a.log.Debug().Msg("tracking active")
				}
			} else if activeMode && now.Sub(lastMotion) > IdleTimeout {
				activeMode = false
				a.Camera().SetFPS(IdleFPS)
				interval = time.Second / IdleFPS
				ticker.Reset(interval)
				a.dropHands()
				a.log.Debug().Msg("tracking idle")
			}

			if !activeMode || det == nil {
				frame.Close()
				continue
			}

			detections, err := det.Detect(frame)
			frame.Close()
			if err != nil {
				a.log.Warn().Err(err).Msg("hand detection failed")
				continue
			}

			a.processDetections(now, detections)
		}
	}
}

// processDetections runs recognition and stage interaction for both hands.
// Missing hands still go through the recognizer so holds release and the
// hysteresis resets.
func (a *App) processDetections(now time.Time, detections []detector.Detection) {
	best := make(map[hand.Side]hand.Snapshot, 2)
	score := make(map[hand.Side]float64, 2)
	for _, d := range detections {
		if _, seen := best[d.Side]; !seen || d.Score > score[d.Side] {
			best[d.Side] = d.Snapshot
			score[d.Side] = d.Score
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	for _, side := range []hand.Side{hand.Left, hand.Right} {
		snap := best[side]
		st := a.recognizer.Update(side, snap)
		a.applyHand(st, snap)
		a.matchCustom(now, st, snap)
	}
}

// dropHands releases both hands' interactions and forgets their gesture
// trails, as when tracking goes idle.
func (a *App) dropHands() {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, side := range []hand.Side{hand.Left, hand.Right} {
		st := a.recognizer.Update(side, nil)
		a.applyHand(st, nil)
	}
	a.trails = make(map[string][]gesture.PathPoint, 2)
}

package capture

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// Motion detection constants
const (
	// GaussianBlurSize is the kernel size for Gaussian blur (21x21)
	GaussianBlurSize = 21
	// DiffThreshold is the binary threshold for difference detection
	DiffThreshold = 25
	// DefaultMinArea is the changed-pixel count that counts as motion
	// at 640x480.
	DefaultMinArea = 3000
)

// MotionDetector decides whether anything moved between consecutive video
// frames, using frame differencing with Gaussian blur for noise reduction.
// The frame pipeline uses it to skip hand detection while the scene is
// static.
type MotionDetector struct {
	minArea     int
	prevGray    gocv.Mat
	initialized bool
	mu          sync.Mutex
}

// NewMotionDetector creates a MotionDetector that reports motion when at
// least minArea pixels changed between frames. Non-positive values fall
// back to the default.
func NewMotionDetector(minArea int) *MotionDetector {
	if minArea <= 0 {
		minArea = DefaultMinArea
	}
	return &MotionDetector{
		minArea:  minArea,
		prevGray: gocv.NewMat(),
	}
}

// Detect compares the frame against the previous one and returns whether
// motion was seen along with the number of changed pixels. The first frame
// after construction or Reset only records the baseline and reports no
// motion.
//
// Algorithm:
//  1. Convert frame to grayscale
//  2. Apply Gaussian blur (21x21) to reduce noise
//  3. Absolute difference with the previous frame
//  4. Binary threshold at 25
//  5. Count non-zero pixels and compare against minArea
func (m *MotionDetector) Detect(frame *gocv.Mat) (bool, int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if frame == nil || frame.Empty() {
		return false, 0
	}

	gray := gocv.NewMat()
	defer gray.Close()

	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Point{X: GaussianBlurSize, Y: GaussianBlurSize}, 0, 0, gocv.BorderDefault)

	if !m.initialized {
		blurred.CopyTo(&m.prevGray)
		m.initialized = true
		return false, 0
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(blurred, m.prevGray, &diff)

	thresh := gocv.NewMat()
	defer thresh.Close()
	gocv.Threshold(diff, &thresh, DiffThreshold, 255, gocv.ThresholdBinary)

	changed := gocv.CountNonZero(thresh)

	blurred.CopyTo(&m.prevGray)

	return changed >= m.minArea, changed
}

// Reset clears the motion detector state, allowing it to be reused
// with a new baseline frame.
func (m *MotionDetector) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.prevGray.Empty() {
		m.prevGray.Close()
		m.prevGray = gocv.NewMat()
	}
	m.initialized = false
}

// Close releases resources used by the motion detector.
func (m *MotionDetector) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.prevGray.Empty() {
		m.prevGray.Close()
		m.prevGray = gocv.NewMat()
	}
	m.initialized = false
}

// SetMinArea sets the changed-pixel count that counts as motion.
// Values less than or equal to 0 are ignored.
func (m *MotionDetector) SetMinArea(minArea int) {
	if minArea <= 0 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.minArea = minArea
}

package gesture

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/ayusman/mudra/internal/hand"
)

// Type distinguishes template kinds: a static template is a single hand
// pose, a dynamic template is a pinch-point trail over time.
type Type string

const (
	TypeStatic  Type = "static"
	TypeDynamic Type = "dynamic"
)

// Template is a trained custom gesture, matched against live input in
// addition to the built-in shapes.
type Template struct {
	ID        string
	Name      string
	Type      Type
	Joints    []mgl64.Vec3 // normalized joint cloud for static templates
	Path      []PathPoint  // trail for dynamic templates
	Tolerance float64      // maximum distance that still matches
}

// PathPoint is one sample of a dynamic gesture trail in world space.
type PathPoint struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Z         float64 `json:"z"`
	Timestamp int64   `json:"timestamp"` // milliseconds
}

// Match pairs a template with how well the input fit it.
type Match struct {
	Template *Template
	Score    float64 // 1 / (1 + distance), higher is better
	Distance float64
}

// StaticMatcher matches single-pose templates against a hand snapshot.
type StaticMatcher struct {
	templates []*Template
}

// NewStaticMatcher returns an empty StaticMatcher.
func NewStaticMatcher() *StaticMatcher {
	return &StaticMatcher{templates: make([]*Template, 0)}
}

// AddTemplate registers a template. Nil templates are ignored.
func (m *StaticMatcher) AddTemplate(t *Template) {
	if t == nil {
		return
	}
	m.templates = append(m.templates, t)
}

// RemoveTemplate removes a template by its ID.
func (m *StaticMatcher) RemoveTemplate(id string) {
	for i, t := range m.templates {
		if t.ID == id {
			m.templates = append(m.templates[:i], m.templates[i+1:]...)
			return
		}
	}
}

// Match scores the snapshot against every static template and returns the
// matches within tolerance, best first.
func (m *StaticMatcher) Match(snap hand.Snapshot) []Match {
	input := snap.Normalized()
	if input == nil {
		return nil
	}

	var matches []Match
	for _, template := range m.templates {
		if template.Type != TypeStatic {
			continue
		}
		distance := cloudDistance(input, template.Joints)
		if distance > template.Tolerance {
			continue
		}
		matches = append(matches, Match{
			Template: template,
			Score:    1.0 / (1.0 + distance),
			Distance: distance,
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches
}

// cloudDistance sums the distances between corresponding points of two
// joint clouds. Extra points in the longer cloud are ignored.
func cloudDistance(a, b []mgl64.Vec3) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var total float64
	for i := 0; i < n; i++ {
		total += a[i].Sub(b[i]).Len()
	}
	return total
}

// pathDistance is the Euclidean distance between two trail samples,
// ignoring time.
func pathDistance(a, b PathPoint) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

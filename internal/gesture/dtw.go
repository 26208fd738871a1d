package gesture

import (
	"math"
	"sort"
)

// DTWDistance calculates the Dynamic Time Warping distance between two
// trails, normalized by the longer trail's length. Returns infinity if
// either trail is empty.
func DTWDistance(path1, path2 []PathPoint) float64 {
	n := len(path1)
	m := len(path2)
	if n == 0 || m == 0 {
		return math.Inf(1)
	}

	dtw := make([][]float64, n+1)
	for i := range dtw {
		dtw[i] = make([]float64, m+1)
		for j := range dtw[i] {
			dtw[i][j] = math.Inf(1)
		}
	}
	dtw[0][0] = 0

	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			cost := pathDistance(path1[i-1], path2[j-1])
			dtw[i][j] = cost + min3(dtw[i-1][j], dtw[i][j-1], dtw[i-1][j-1])
		}
	}

	longest := n
	if m > longest {
		longest = m
	}
	return dtw[n][m] / float64(longest)
}

func min3(a, b, c float64) float64 {
	if a <= b && a <= c {
		return a
	}
	if b <= c {
		return b
	}
	return c
}

// DynamicMatcher matches recorded trails against trail templates using DTW.
type DynamicMatcher struct {
	templates []*Template
}

// NewDynamicMatcher returns an empty DynamicMatcher.
func NewDynamicMatcher() *DynamicMatcher {
	return &DynamicMatcher{templates: make([]*Template, 0)}
}

// AddTemplate registers a template. Nil templates are ignored.
func (m *DynamicMatcher) AddTemplate(t *Template) {
	if t == nil {
		return
	}
	m.templates = append(m.templates, t)
}

// RemoveTemplate removes a template by its ID.
func (m *DynamicMatcher) RemoveTemplate(id string) {
	for i, t := range m.templates {
		if t.ID == id {
			m.templates = append(m.templates[:i], m.templates[i+1:]...)
			return
		}
	}
}

// Match scores the trail against every dynamic template and returns the
// matches within tolerance, best first.
func (m *DynamicMatcher) Match(path []PathPoint) []Match {
	if len(path) == 0 {
		return nil
	}

	normalizedInput := normalizePath(path)
	if len(normalizedInput) == 0 {
		return nil
	}

	var matches []Match
	for _, template := range m.templates {
		if template.Type != TypeDynamic || len(template.Path) == 0 {
			continue
		}

		distance := DTWDistance(normalizedInput, normalizePath(template.Path))
		if math.IsInf(distance, 1) || distance > template.Tolerance {
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

// normalizePath rescales each axis of the trail to the 0-1 range so that
// trails drawn at different sizes or places still compare. Timestamps are
// preserved.
func normalizePath(path []PathPoint) []PathPoint {
	n := len(path)
	if n == 0 {
		return nil
	}
	if n == 1 {
		return []PathPoint{{Timestamp: path[0].Timestamp}}
	}

	minP, maxP := path[0], path[0]
	for _, p := range path {
		minP.X = math.Min(minP.X, p.X)
		minP.Y = math.Min(minP.Y, p.Y)
		minP.Z = math.Min(minP.Z, p.Z)
		maxP.X = math.Max(maxP.X, p.X)
		maxP.Y = math.Max(maxP.Y, p.Y)
		maxP.Z = math.Max(maxP.Z, p.Z)
	}
	rangeX := maxP.X - minP.X
	rangeY := maxP.Y - minP.Y
	rangeZ := maxP.Z - minP.Z

	normalized := make([]PathPoint, n)
	for i, p := range path {
		var out PathPoint
		if rangeX > 0 {
			out.X = (p.X - minP.X) / rangeX
		}
		if rangeY > 0 {
			out.Y = (p.Y - minP.Y) / rangeY
		}
		if rangeZ > 0 {
			out.Z = (p.Z - minP.Z) / rangeZ
		}
		out.Timestamp = p.Timestamp
		normalized[i] = out
	}
	return normalized
}

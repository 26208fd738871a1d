package stage

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/ayusman/mudra/internal/scene"
)

// Pick casts a ray against the geometry of every placed model and returns
// the node carrying the nearest hit. The node may sit anywhere inside a
// model's subtree; Owner resolves it to the model root. The second result
// is false when the ray misses everything.
func (e *Engine) Pick(origin, dir mgl64.Vec3) (uuid.UUID, bool) {
	if dir.Len() == 0 {
		return uuid.Nil, false
	}
	dir = dir.Normalize()

	best := math.Inf(1)
	var bestID uuid.UUID

	for _, p := range e.placed {
		pickNode(p.node, mgl64.Ident4(), origin, dir, &best, &bestID)
	}
	if math.IsInf(best, 1) {
		return uuid.Nil, false
	}
	return bestID, true
}

func pickNode(n *scene.Node, parent mgl64.Mat4, origin, dir mgl64.Vec3, best *float64, bestID *uuid.UUID) {
	world := parent.Mul4(n.Transform())
	if n.Bounds != nil {
		box := n.Bounds.Transformed(world)
		if t, ok := rayBox(origin, dir, box); ok && t < *best {
			*best = t
			*bestID = n.ID
		}
	}
	for _, c := range n.Children {
		pickNode(c, world, origin, dir, best, bestID)
	}
}

// rayBox is the slab test: the distance along the ray to the box, zero when
// the ray starts inside. Boxes behind the origin do not count.
func rayBox(origin, dir mgl64.Vec3, box scene.AABB) (float64, bool) {
	if box.IsEmpty() {
		return 0, false
	}
	tMin, tMax := 0.0, math.Inf(1)
	for i := 0; i < 3; i++ {
		if dir[i] == 0 {
			if origin[i] < box.Min[i] || origin[i] > box.Max[i] {
				return 0, false
			}
			continue
		}
		t1 := (box.Min[i] - origin[i]) / dir[i]
		t2 := (box.Max[i] - origin[i]) / dir[i]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tMin {
			tMin = t1
		}
		if t2 < tMax {
			tMax = t2
		}
		if tMax < tMin {
			return 0, false
		}
	}
	return tMin, true
}

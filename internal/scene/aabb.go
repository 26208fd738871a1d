// Package scene provides the retained scene model the stage engine
// manipulates: transform nodes, drawable surfaces and axis-aligned bounds.
// Rendering itself happens elsewhere; these types only carry the state a
// renderer would consume.
package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// AABB is an axis-aligned bounding box. The zero value is not meaningful;
// use EmptyAABB so that extending works from a clean slate.
type AABB struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// EmptyAABB returns an inverted box that any point will extend.
func EmptyAABB() AABB {
	inf := math.Inf(1)
	return AABB{
		Min: mgl64.Vec3{inf, inf, inf},
		Max: mgl64.Vec3{-inf, -inf, -inf},
	}
}

// IsEmpty reports whether the box contains no points.
func (b AABB) IsEmpty() bool {
	return b.Min.X() > b.Max.X() || b.Min.Y() > b.Max.Y() || b.Min.Z() > b.Max.Z()
}

// ExtendPoint grows the box to include p.
func (b AABB) ExtendPoint(p mgl64.Vec3) AABB {
	return AABB{
		Min: mgl64.Vec3{math.Min(b.Min.X(), p.X()), math.Min(b.Min.Y(), p.Y()), math.Min(b.Min.Z(), p.Z())},
		Max: mgl64.Vec3{math.Max(b.Max.X(), p.X()), math.Max(b.Max.Y(), p.Y()), math.Max(b.Max.Z(), p.Z())},
	}
}

// Union grows the box to include the other box.
func (b AABB) Union(other AABB) AABB {
	if other.IsEmpty() {
		return b
	}
	if b.IsEmpty() {
		return other
	}
	return b.ExtendPoint(other.Min).ExtendPoint(other.Max)
}

// Size returns the box extents per axis, or zero for an empty box.
func (b AABB) Size() mgl64.Vec3 {
	if b.IsEmpty() {
		return mgl64.Vec3{}
	}
	return b.Max.Sub(b.Min)
}

// Center returns the box midpoint, or zero for an empty box.
func (b AABB) Center() mgl64.Vec3 {
	if b.IsEmpty() {
		return mgl64.Vec3{}
	}
	return b.Min.Add(b.Max).Mul(0.5)
}

// MaxDimension returns the largest extent across the three axes.
func (b AABB) MaxDimension() float64 {
	size := b.Size()
	return math.Max(size.X(), math.Max(size.Y(), size.Z()))
}

// Transformed returns the axis-aligned box enclosing this box after the
// given transform, computed from the eight transformed corners.
func (b AABB) Transformed(m mgl64.Mat4) AABB {
	if b.IsEmpty() {
		return b
	}
	out := EmptyAABB()
	for _, x := range [2]float64{b.Min.X(), b.Max.X()} {
		for _, y := range [2]float64{b.Min.Y(), b.Max.Y()} {
			for _, z := range [2]float64{b.Min.Z(), b.Max.Z()} {
				corner := m.Mul4x1(mgl64.Vec4{x, y, z, 1})
				out = out.ExtendPoint(corner.Vec3())
			}
		}
	}
	return out
}

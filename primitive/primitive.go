// Package primitive models the planar primitives that induce the cell
// complex: a plane, its supporting 3D point cluster, and an axis-aligned
// bounding box. Ingesting the raw archive tensors (vg/bvg/npz parsing)
// is out of scope — Archive is the already-decoded external-collaborator
// boundary this package accepts.
package primitive

import (
	"math"

	"github.com/archform/cellcomplex/kernel"
)

// AABB is an axis-aligned bounding box in float64, used only by the
// exhaustive builder (priority keys, slab pre-test and infinite-extent
// sentinel check). The adaptive builder recomputes it when a point group
// shrinks but does not read it.
type AABB struct {
	Min, Max kernel.Vec3F
}

// Infinite reports whether this AABB carries the ±Inf sentinel used for
// additional planes that are meant to intersect every cell, skipping the
// normal AABB pre-test.
func (b AABB) Infinite() bool {
	return math.IsInf(b.Min.X, -1) || math.IsInf(b.Max.X, 1)
}

// Center returns the AABB's center point.
func (b AABB) Center() kernel.Vec3F {
	return kernel.Vec3F{
		X: (b.Min.X + b.Max.X) / 2,
		Y: (b.Min.Y + b.Max.Y) / 2,
		Z: (b.Min.Z + b.Max.Z) / 2,
	}
}

// Extent returns the AABB's half-extent (radius) per axis.
func (b AABB) Extent() kernel.Vec3F {
	return kernel.Vec3F{
		X: (b.Max.X - b.Min.X) / 2,
		Y: (b.Max.Y - b.Min.Y) / 2,
		Z: (b.Max.Z - b.Min.Z) / 2,
	}
}

// AABBFromPoints computes the bounding box of a point group.
func AABBFromPoints(pts []kernel.Vec3F) AABB {
	if len(pts) == 0 {
		return AABB{}
	}
	min, max := pts[0], pts[0]
	for _, p := range pts[1:] {
		min.X, max.X = math.Min(min.X, p.X), math.Max(max.X, p.X)
		min.Y, max.Y = math.Min(min.Y, p.Y), math.Max(max.Y, p.Y)
		min.Z, max.Z = math.Min(min.Z, p.Z), math.Max(max.Z, p.Z)
	}
	return AABB{Min: min, Max: max}
}

// Primitive bundles a supporting plane, its inlier point group, its
// bounding box, and a clone depth counter (split_count).
type Primitive struct {
	Plane      kernel.Plane
	HalfSpaces [2]kernel.HalfSpace // [Positive, Negative]
	Points     []kernel.Vec3F
	AABB       AABB
	SplitCount int
}

// NewPrimitive builds a primitive from a plane and its supporting points,
// deriving the AABB and the plane's two half-spaces.
func NewPrimitive(plane kernel.Plane, points []kernel.Vec3F) Primitive {
	hPos, hNeg := kernel.HalfSpacesFromPlane(plane)
	return Primitive{
		Plane:      plane,
		HalfSpaces: [2]kernel.HalfSpace{hPos, hNeg},
		Points:     points,
		AABB:       AABBFromPoints(points),
		SplitCount: 0,
	}
}

// Clone returns a copy of the primitive with a different point subgroup
// and split_count+1, used when a split primitive is reassigned to both
// children of a BSP split.
func (p Primitive) Clone(points []kernel.Vec3F) Primitive {
	return Primitive{
		Plane:      p.Plane,
		HalfSpaces: p.HalfSpaces,
		Points:     points,
		AABB:       AABBFromPoints(points),
		SplitCount: p.SplitCount + 1,
	}
}

// SignedDistances returns, for each supporting point, the float64 signed
// value of the primitive's own plane equation. Nothing in this module
// calls it (split scoring in package bsp evaluates its signed values
// inline); floats never flow through predicates that must be exact.
func (p Primitive) SignedDistances() []float64 {
	return p.SignedDistancesAgainst(p.Plane)
}

// SignedDistancesAgainst returns, for each of the primitive's supporting
// points, the float64 signed value of plane's equation — used to bucket
// a candidate primitive's points against a different primitive's
// splitting plane during BSP partitioning.
func (p Primitive) SignedDistancesAgainst(plane kernel.Plane) []float64 {
	nf := plane.Normal().Float64()
	df, _ := plane.D.Float64()
	out := make([]float64, len(p.Points))
	for i, pt := range p.Points {
		out[i] = nf.X*pt.X + nf.Y*pt.Y + nf.Z*pt.Z + df
	}
	return out
}

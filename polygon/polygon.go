// Package polygon finalizes facets: it ensures every boundary-candidate
// edge carries a complete corner list, by recovering vertices introduced
// by T-junctions with neighbors-of-neighbors that the BSP edge's own
// intersection polygon misses.
package polygon

import (
	"github.com/archform/cellcomplex/bsp"
	"github.com/archform/cellcomplex/kernel"
)

// InitPolygons ensures Intersection and an empty Vertices slice are set
// on every edge, and clears the idempotency marker so ConstructPolygons
// will run.
func InitPolygons(g *bsp.Graph) {
	for _, e := range g.Edges() {
		if e.Intersection == nil {
			if a, b := g.Cell(e.A), g.Cell(e.B); a != nil && b != nil {
				e.Intersection = kernel.PolyIntersection(a.Convex, b.Convex)
			}
		}
		if e.Vertices == nil {
			e.Vertices = []kernel.Rat3{}
		}
		e.Finalized = false
	}
}

// ConstructPolygons recovers each boundary edge's missing corners by
// intersecting it against every other edge incident to its two
// endpoints. Idempotent: a second call is a no-op, tracked per-edge via
// Edge.Finalized rather than relying on re-deriving the same vertex set
// twice being harmless (it would be, but the marker avoids repeating
// O(E^2) work).
func ConstructPolygons(g *bsp.Graph) {
	for _, e := range g.Edges() {
		if e.Finalized {
			continue
		}
		a, b := g.Cell(e.A), g.Cell(e.B)
		if a.Occupancy == nil || b.Occupancy == nil || *a.Occupancy == *b.Occupancy {
			e.Finalized = true
			continue
		}

		recoverFrom(g, e, e.A, e.B)
		recoverFrom(g, e, e.B, e.A)
		e.Finalized = true
	}
}

// recoverFrom intersects edge e=(from,other) against every other edge
// incident to `from`, appending any dim-0/1 intersection vertices to e.
func recoverFrom(g *bsp.Graph, e *bsp.Edge, from, other int) {
	for _, m := range g.Neighbors(from) {
		if m == other {
			continue
		}
		em := g.Edge(from, m)
		if em == nil || em.Intersection == nil {
			continue
		}
		inter := kernel.PolyIntersection(e.Intersection, em.Intersection)
		d := inter.Dim()
		if d != 0 && d != 1 {
			continue
		}
		for _, v := range inter.Vertices() {
			e.Vertices = appendUnique(e.Vertices, v)
		}
	}
}

func appendUnique(verts []kernel.Rat3, v kernel.Rat3) []kernel.Rat3 {
	for _, w := range verts {
		if w.Equal(v) {
			return verts
		}
	}
	return append(verts, v)
}

// Corners returns the exact corner list of a finalized edge's facet: the
// union of its intersection polygon's own vertices with the extra
// vertices ConstructPolygons recovered.
func Corners(e *bsp.Edge) []kernel.Rat3 {
	out := append([]kernel.Rat3(nil), e.Intersection.Vertices()...)
	for _, v := range e.Vertices {
		out = appendUnique(out, v)
	}
	return out
}

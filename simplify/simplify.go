// Package simplify contracts adjacent same-occupancy cells whose shared
// facet is a convex interface, collapsing the complex toward fewer,
// larger cells before surface extraction.
package simplify

import (
	"github.com/archform/cellcomplex/bsp"
	"github.com/archform/cellcomplex/kernel"
)

// qualifies reports whether edge e between its two endpoints is a
// contraction candidate: same occupancy label, convex interface, not
// already processed.
func qualifies(g *bsp.Graph, e *bsp.Edge) bool {
	if e.Processed || !e.ConvexIntersection {
		return false
	}
	a, b := g.Cell(e.A), g.Cell(e.B)
	if a == nil || b == nil || a.Occupancy == nil || b.Occupancy == nil {
		return false
	}
	return *a.Occupancy == *b.Occupancy
}

// CollapseConvexIntersections runs a single sweep of the current edges,
// contracting b into a for each qualifying edge and skipping subsequent
// edges touching an already-deleted endpoint. No rescan.
func CollapseConvexIntersections(g *bsp.Graph) {
	deleted := make(map[int]bool)
	for _, e := range g.Edges() {
		if deleted[e.A] || deleted[e.B] {
			continue
		}
		if !qualifies(g, e) {
			continue
		}

		a, b := g.Cell(e.A), g.Cell(e.B)
		hull := kernel.PolyConvexHull(a.Convex, b.Convex, e.SupportingPlane)
		a.Convex = hull
		deleted[b.ID] = true
		rewireNeighbors(g, e.A, e.B)
		g.RemoveCell(b.ID)
	}
}

// Simplify repeats contraction to a fixed point: it runs until no
// qualifying edge remains. After each contraction, the survivor
// reuses the BSP tree parent's own stored convex region (which already
// equals the convex hull by construction) rather than recomputing one,
// and — if the contracted node's sibling in the tree is itself a leaf —
// marks a fresh edge to the sibling as convex so it may qualify in a
// later pass.
func Simplify(g *bsp.Graph, t *bsp.Tree) {
	for {
		progressed := false
		for _, e := range g.Edges() {
			if !qualifies(g, e) {
				continue
			}
			contractEdge(g, t, e)
			progressed = true
			break // the graph changed; restart the scan over current edges
		}
		if !progressed {
			return
		}
	}
}

func contractEdge(g *bsp.Graph, t *bsp.Tree, e *bsp.Edge) {
	a, b := g.Cell(e.A), g.Cell(e.B)
	aLeaf, bLeaf := t.NodeByCell(a.ID), t.NodeByCell(b.ID)

	var survivorLeaf int
	var newPlaneIDs []int
	var newConvex *kernel.Polyhedron
	if aLeaf != -1 && t.Node(aLeaf).Parent != -1 && t.Sibling(aLeaf) == bLeaf {
		parent := t.Node(t.Node(aLeaf).Parent)
		newConvex = parent.Convex
		newPlaneIDs = parent.PlaneIDs
		survivorLeaf = t.CollapseToParent(aLeaf, a.ID, newConvex, newPlaneIDs)
	} else {
		// a and b are not tree siblings (e.g. after a prior
		// collapse already merged one of them with something else);
		// fall back to an explicit convex-hull computation.
		newConvex = kernel.PolyConvexHull(a.Convex, b.Convex, e.SupportingPlane)
		survivorLeaf = aLeaf
	}

	rewireNeighbors(g, a.ID, b.ID)
	a.Convex = newConvex
	g.RemoveCell(b.ID)

	sib := t.Sibling(survivorLeaf)
	if sib != -1 && t.Node(sib).IsLeaf {
		sibID := t.Node(sib).CellID
		if edge := g.Edge(a.ID, sibID); edge != nil {
			edge.ConvexIntersection = true
			edge.Processed = false
		}
	}
}

// rewireNeighbors moves every edge incident to `removed` (other than the
// edge to `keep`) onto `keep`, merging duplicate facets defensively —
// never producing a self-loop.
func rewireNeighbors(g *bsp.Graph, keep, removed int) {
	for _, m := range g.Neighbors(removed) {
		if m == keep {
			continue
		}
		old := g.Edge(removed, m)
		if old == nil {
			continue
		}
		if existing := g.Edge(keep, m); existing != nil {
			continue // keep already adjacent to m; drop the redundant facet
		}
		g.AddEdge(&bsp.Edge{
			A: keep, B: m,
			Intersection:       old.Intersection,
			SupportingPlane:    old.SupportingPlane,
			Vertices:           old.Vertices,
			ConvexIntersection: old.ConvexIntersection,
			Processed:          false,
		})
	}
}

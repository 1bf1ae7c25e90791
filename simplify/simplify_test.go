package simplify

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archform/cellcomplex/bsp"
	"github.com/archform/cellcomplex/kernel"
)

func axisBox(minX, minY, minZ, maxX, maxY, maxZ float64) *kernel.Polyhedron {
	return kernel.NewPolyhedron(
		kernel.HalfSpace{Plane: kernel.PlaneFromFloats(1, 0, 0, -minX), Sign: kernel.Positive},
		kernel.HalfSpace{Plane: kernel.PlaneFromFloats(1, 0, 0, -maxX), Sign: kernel.Negative},
		kernel.HalfSpace{Plane: kernel.PlaneFromFloats(0, 1, 0, -minY), Sign: kernel.Positive},
		kernel.HalfSpace{Plane: kernel.PlaneFromFloats(0, 1, 0, -maxY), Sign: kernel.Negative},
		kernel.HalfSpace{Plane: kernel.PlaneFromFloats(0, 0, 1, -minZ), Sign: kernel.Positive},
		kernel.HalfSpace{Plane: kernel.PlaneFromFloats(0, 0, 1, -maxZ), Sign: kernel.Negative},
	)
}

func occ(v int) *int { return &v }

// splitCube builds a graph/tree with a unit cube split by z=0.5 into two
// sibling leaf cells joined by a convex-intersection edge.
func splitCube(t *testing.T) (*bsp.Graph, *bsp.Tree, int, int) {
	t.Helper()
	cube := axisBox(0, 0, 0, 1, 1, 1)
	plane := kernel.PlaneFromFloats(0, 0, 1, -0.5)
	hPos, hNeg := kernel.HalfSpacesFromPlane(plane)
	lower := kernel.PolyIntersection(cube, kernel.NewPolyhedron(hNeg))
	upper := kernel.PolyIntersection(cube, kernel.NewPolyhedron(hPos))

	tr := bsp.NewTree(0, cube, nil)
	tr.Split(0, &bsp.TreeNode{CellID: 1, Convex: lower, IsLeaf: true}, &bsp.TreeNode{CellID: 2, Convex: upper, IsLeaf: true})

	g := bsp.NewGraph()
	g.AddCell(&bsp.Cell{ID: 1, Convex: lower, Occupancy: occ(1)})
	g.AddCell(&bsp.Cell{ID: 2, Convex: upper, Occupancy: occ(1)})
	facet := kernel.PolyIntersection(lower, upper)
	g.AddEdge(&bsp.Edge{A: 1, B: 2, Intersection: facet, SupportingPlane: plane, ConvexIntersection: true})

	return g, tr, 1, 2
}

func TestSimplifyCollapsesSameOccupancySiblings(t *testing.T) {
	g, tr, _, _ := splitCube(t)
	Simplify(g, tr)

	assert.Equal(t, 1, g.NumCells())
	cells := g.Cells()
	require.Len(t, cells, 1)
	assert.Equal(t, big.NewRat(1, 1), cells[0].Convex.Volume())
}

func TestSimplifyLeavesDifferentOccupancyUntouched(t *testing.T) {
	g, tr, aID, bID := splitCube(t)
	other := 0
	g.Cell(bID).Occupancy = &other
	Simplify(g, tr)
	assert.Equal(t, 2, g.NumCells())
	assert.NotNil(t, g.Cell(aID))
	assert.NotNil(t, g.Cell(bID))
}

func TestCollapseConvexIntersectionsSinglePass(t *testing.T) {
	g, _, aID, bID := splitCube(t)
	CollapseConvexIntersections(g)
	assert.Equal(t, 1, g.NumCells())
	assert.Nil(t, g.Cell(bID))
	assert.NotNil(t, g.Cell(aID))
}

func TestRewireNeighborsMovesEdgesNotSelfLoops(t *testing.T) {
	// Three cells in a row: 1-2-3. Collapsing edge(1,2) into cell 1
	// should leave 1 adjacent to 3, never 1 adjacent to itself.
	left := axisBox(0, 0, 0, 1, 1, 1)
	mid := axisBox(1, 0, 0, 2, 1, 1)
	right := axisBox(2, 0, 0, 3, 1, 1)

	g := bsp.NewGraph()
	g.AddCell(&bsp.Cell{ID: 1, Convex: left, Occupancy: occ(1)})
	g.AddCell(&bsp.Cell{ID: 2, Convex: mid, Occupancy: occ(1)})
	g.AddCell(&bsp.Cell{ID: 3, Convex: right, Occupancy: occ(0)})

	plane12 := kernel.PlaneFromFloats(1, 0, 0, -1)
	plane23 := kernel.PlaneFromFloats(1, 0, 0, -2)
	f12 := kernel.PolyIntersection(left, mid)
	f23 := kernel.PolyIntersection(mid, right)
	g.AddEdge(&bsp.Edge{A: 1, B: 2, Intersection: f12, SupportingPlane: plane12, ConvexIntersection: true})
	g.AddEdge(&bsp.Edge{A: 2, B: 3, Intersection: f23, SupportingPlane: plane23})

	CollapseConvexIntersections(g)

	assert.Nil(t, g.Cell(2))
	assert.NotNil(t, g.Edge(1, 3))
	assert.Nil(t, g.Edge(1, 1))
}

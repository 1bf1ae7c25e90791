package bsp

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archform/cellcomplex/kernel"
	"github.com/archform/cellcomplex/primitive"
)

func unitBound() *kernel.Polyhedron {
	return kernel.AxisAlignedBox(
		kernel.Vec3F{X: -1, Y: -1, Z: -1},
		kernel.Vec3F{X: 1, Y: 1, Z: 1},
	)
}

// TestSinglePlaneSplitsIntoTwoAdjacentCells runs one primitive (the plane
// z=0) through the real adaptive entry point: the bound should come back
// as two leaf cells sharing one convex-intersection edge.
func TestSinglePlaneSplitsIntoTwoAdjacentCells(t *testing.T) {
	planeZ := kernel.PlaneFromFloats(0, 0, 1, 0)
	prims := []primitive.Primitive{primitive.NewPrimitive(planeZ, nil)}

	g, tr, _, err := BuildAdaptive(prims, unitBound(), BuildConfig{
		Ordering:       OrderingInput,
		Traversal:      TraversalDepth,
		SplitThreshold: 1,
	})
	require.NoError(t, err)

	cells := g.Cells()
	require.Len(t, cells, 2)
	assert.Len(t, g.Edges(), 1)

	for _, c := range cells {
		assert.Equal(t, 3, c.Convex.Dim())
	}
	e := g.Edges()[0]
	assert.True(t, e.ConvexIntersection)
	assert.Equal(t, 2, e.Intersection.Dim())

	// Both leaves should trace back to the root through the tree.
	for _, c := range cells {
		idx := tr.NodeByCell(c.ID)
		require.NotEqual(t, -1, idx)
		assert.True(t, tr.Node(idx).IsLeaf)
	}
}

// TestThreeOrthogonalPlanesGiveEightOctants runs the x=0, y=0, z=0
// planes through the adaptive builder with enough supporting points on
// each primitive to survive every partitioning step, and checks the
// bound is fully and disjointly carved into eight leaf cells.
func TestThreeOrthogonalPlanesGiveEightOctants(t *testing.T) {
	planeX := kernel.PlaneFromFloats(1, 0, 0, 0)
	planeY := kernel.PlaneFromFloats(0, 1, 0, 0)
	planeZ := kernel.PlaneFromFloats(0, 0, 1, 0)

	// Y only needs to survive one classification (by X, at the root);
	// it becomes a splitting plane itself before any further filtering.
	yPts := []kernel.Vec3F{
		{X: -0.5, Y: 0, Z: -0.5},
		{X: -0.5, Y: 0, Z: 0.5},
		{X: 0.5, Y: 0, Z: -0.5},
		{X: 0.5, Y: 0, Z: 0.5},
	}

	// Z must survive two classifications (by X, then by Y), so it needs
	// enough spread on both axes to leave >1 point on every quadrant.
	var zPts []kernel.Vec3F
	for _, x := range []float64{-0.5, 0.5} {
		for _, y := range []float64{-0.5, -0.25, 0.25, 0.5} {
			zPts = append(zPts, kernel.Vec3F{X: x, Y: y, Z: 0})
		}
	}

	prims := []primitive.Primitive{
		primitive.NewPrimitive(planeX, nil),
		primitive.NewPrimitive(planeY, yPts),
		primitive.NewPrimitive(planeZ, zPts),
	}

	g, tr, _, err := BuildAdaptive(prims, unitBound(), BuildConfig{
		Ordering:       OrderingInput,
		Traversal:      TraversalDepth,
		SplitThreshold: 1,
	})
	require.NoError(t, err)

	cells := g.Cells()
	require.Len(t, cells, 8)

	total := new(big.Rat)
	for _, c := range cells {
		require.Equal(t, 3, c.Convex.Dim())
		total.Add(total, c.Convex.Volume())
	}
	assert.Equal(t, big.NewRat(8, 1), total, "eight octants of a side-2 cube should cover its full volume")

	for _, c := range cells {
		idx := tr.NodeByCell(c.ID)
		require.NotEqual(t, -1, idx)
		assert.True(t, tr.Node(idx).IsLeaf)
	}

	// Every leaf should be adjacent to at least one other leaf: the
	// interior octants share faces and no leaf is left isolated.
	for _, c := range cells {
		assert.NotEmpty(t, g.Neighbors(c.ID))
	}
}

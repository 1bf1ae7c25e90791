package polygon

import (
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

// twoCellGraph builds two adjacent unit cubes sharing the facet at x=1,
// labeled with different occupancy so ConstructPolygons doesn't skip it.
func twoCellGraph(t *testing.T) (*bsp.Graph, *bsp.Edge) {
	t.Helper()
	left := axisBox(0, 0, 0, 1, 1, 1)
	right := axisBox(1, 0, 0, 2, 1, 1)
	g := bsp.NewGraph()
	g.AddCell(&bsp.Cell{ID: 1, Convex: left, Occupancy: occ(1)})
	g.AddCell(&bsp.Cell{ID: 2, Convex: right, Occupancy: occ(0)})

	facet := kernel.PolyIntersection(left, right)
	plane := kernel.PlaneFromFloats(1, 0, 0, -1)
	e := &bsp.Edge{A: 1, B: 2, Intersection: facet, SupportingPlane: plane}
	g.AddEdge(e)
	return g, e
}

func TestInitPolygonsSetsEmptyVerticesAndClearsFinalized(t *testing.T) {
	g, e := twoCellGraph(t)
	e.Finalized = true
	InitPolygons(g)
	assert.False(t, e.Finalized)
	assert.NotNil(t, e.Vertices)
	assert.Empty(t, e.Vertices)
}

func TestConstructPolygonsIsIdempotent(t *testing.T) {
	g, e := twoCellGraph(t)
	InitPolygons(g)
	ConstructPolygons(g)
	require.True(t, e.Finalized)
	first := append([]kernel.Rat3(nil), e.Vertices...)

	ConstructPolygons(g)
	assert.True(t, e.Finalized)
	assert.Equal(t, first, e.Vertices)
}

func TestConstructPolygonsSkipsSameOccupancyEdges(t *testing.T) {
	g, e := twoCellGraph(t)
	same := 1
	g.Cell(e.B).Occupancy = &same
	InitPolygons(g)
	ConstructPolygons(g)
	assert.True(t, e.Finalized)
	assert.Empty(t, e.Vertices)
}

func TestCornersUnionsIntersectionAndRecoveredVertices(t *testing.T) {
	g, e := twoCellGraph(t)
	InitPolygons(g)
	ConstructPolygons(g)
	corners := Corners(e)
	assert.Len(t, corners, 4)
	for _, c := range corners {
		assert.True(t, containsRat(e.Intersection.Vertices(), c) || containsRat(e.Vertices, c))
	}
}

func containsRat(vs []kernel.Rat3, v kernel.Rat3) bool {
	for _, w := range vs {
		if w.Equal(v) {
			return true
		}
	}
	return false
}

package primitive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func planeSquareArchive() Archive {
	return Archive{
		Points: [][3]float32{
			{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
			{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1},
		},
		GroupParams: [][4]float32{
			{0, 0, 1, 0},  // z=0
			{0, 0, 1, -1}, // z=1
		},
		GroupNumPoints: []int{4, 4},
		GroupPoints:    []int32{0, 1, 2, 3, 4, 5, 6, 7},
	}
}

func TestArchiveValidateRejectsEmptyArchive(t *testing.T) {
	var a Archive
	assert.Error(t, a.Validate())
}

func TestArchiveValidateRejectsMismatchedGroupSizes(t *testing.T) {
	a := planeSquareArchive()
	a.GroupNumPoints = []int{4}
	assert.Error(t, a.Validate())
}

func TestArchiveValidateRejectsSumMismatch(t *testing.T) {
	a := planeSquareArchive()
	a.GroupPoints = a.GroupPoints[:6]
	assert.Error(t, a.Validate())
}

func TestArchiveValidateRejectsUndersizedGroup(t *testing.T) {
	a := planeSquareArchive()
	a.GroupNumPoints = []int{3, 5}
	assert.Error(t, a.Validate())
}

func TestFromArchiveBuildsPrimitivesWithCorrectPlanesAndPoints(t *testing.T) {
	prims, err := FromArchive(planeSquareArchive(), false)
	require.NoError(t, err)
	require.Len(t, prims, 2)
	assert.Len(t, prims[0].Points, 4)
	assert.Equal(t, int64(0), prims[0].Plane.D.Num().Int64())
	assert.Equal(t, int64(-1), prims[1].Plane.D.Num().Int64())
}

func TestFromArchiveRejectsOutOfRangePointIndex(t *testing.T) {
	a := planeSquareArchive()
	a.GroupPoints[0] = 99
	_, err := FromArchive(a, false)
	assert.Error(t, err)
}

func TestFromArchiveMergesDuplicatePlanes(t *testing.T) {
	a := planeSquareArchive()
	a.GroupParams[1] = a.GroupParams[0] // both groups now on z=0
	prims, err := FromArchive(a, true)
	require.NoError(t, err)
	require.Len(t, prims, 1)
	assert.Len(t, prims[0].Points, 8)
}

func TestFromArchiveKeepsDuplicatesSeparateWhenMergeDisabled(t *testing.T) {
	a := planeSquareArchive()
	a.GroupParams[1] = a.GroupParams[0]
	prims, err := FromArchive(a, false)
	require.NoError(t, err)
	assert.Len(t, prims, 2)
}

func TestBoundingBoxAppliesSymmetricPadding(t *testing.T) {
	pts := [][3]float32{{0, 0, 0}, {2, 4, 6}}
	box := BoundingBox(pts, 0.5)
	assert.InDelta(t, -1, box.Min.X, 1e-9)
	assert.InDelta(t, -2, box.Min.Y, 1e-9)
	assert.InDelta(t, -3, box.Min.Z, 1e-9)
	assert.InDelta(t, 3, box.Max.X, 1e-9)
	assert.InDelta(t, 6, box.Max.Y, 1e-9)
	assert.InDelta(t, 9, box.Max.Z, 1e-9)
}

func TestBoundingBoxEmptyPoints(t *testing.T) {
	assert.Equal(t, AABB{}, BoundingBox(nil, 0.1))
}

package meshio

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archform/cellcomplex/kernel"
	"github.com/archform/cellcomplex/surface"
)

func quadSoup() *surface.Soup {
	return &surface.Soup{
		Vertices: []kernel.Rat3{
			{X: kernel.RatFromFloat64(0), Y: kernel.RatFromFloat64(0), Z: kernel.RatFromFloat64(0)},
			{X: kernel.RatFromFloat64(1), Y: kernel.RatFromFloat64(0), Z: kernel.RatFromFloat64(0)},
			{X: kernel.RatFromFloat64(1), Y: kernel.RatFromFloat64(1), Z: kernel.RatFromFloat64(0)},
			{X: kernel.RatFromFloat64(0), Y: kernel.RatFromFloat64(1), Z: kernel.RatFromFloat64(0)},
		},
		Faces: [][]int{{0, 1, 2, 3}},
	}
}

func TestWriteOFFHeaderAndCounts(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteOFF(&buf, quadSoup()))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.True(t, len(lines) >= 2)
	assert.Equal(t, "OFF", lines[0])
	assert.Equal(t, "4 1 0", lines[1])
	assert.Equal(t, "4 0 1 2 3", lines[len(lines)-1])
}

func TestWriteOFFThenReadOFFTrianglesRoundTripsFanTriangulation(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteOFF(&buf, quadSoup()))

	tris, err := ReadOFFTriangles(&buf)
	require.NoError(t, err)
	// A quad fan-triangulates into 2 triangles.
	require.Len(t, tris, 2)
	assert.Equal(t, kernel.Vec3F{X: 0, Y: 0, Z: 0}, tris[0].A)
}

func TestReadOFFTrianglesRejectsMissingHeader(t *testing.T) {
	_, err := ReadOFFTriangles(strings.NewReader("not OFF\n4 1 0\n"))
	assert.Error(t, err)
}

func TestReadOFFTrianglesRejectsEmptyInput(t *testing.T) {
	_, err := ReadOFFTriangles(strings.NewReader(""))
	assert.Error(t, err)
}

func TestReadOFFTrianglesRejectsTruncatedFace(t *testing.T) {
	_, err := ReadOFFTriangles(strings.NewReader("OFF\n4 1 0\n0 0 0\n1 0 0\n1 1 0\n0 1 0\n4 0 1\n"))
	assert.Error(t, err)
}

func TestWritePLYRejectsMismatchedColorCount(t *testing.T) {
	var buf bytes.Buffer
	err := WritePLY(&buf, quadSoup(), []RGB{{R: 255}})
	assert.Error(t, err)
}

func TestWritePLYDefaultsToWhiteWithoutColors(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePLY(&buf, quadSoup(), nil))
	out := buf.String()
	assert.Contains(t, out, "ply")
	assert.Contains(t, out, "element vertex 4")
	assert.Contains(t, out, "element face 1")
	assert.Contains(t, out, "255 255 255")
}

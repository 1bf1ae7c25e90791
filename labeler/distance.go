package labeler

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/archform/cellcomplex/kernel"
)

// Triangle is a single triangle of a closed reference surface mesh.
type Triangle struct {
	A, B, C kernel.Vec3F
}

func (t Triangle) normal() kernel.Vec3F {
	u := sub(t.B, t.A)
	v := sub(t.C, t.A)
	n := cross(u, v)
	return normalize(n)
}

func sub(a, b kernel.Vec3F) kernel.Vec3F {
	return kernel.Vec3F{X: a.X - b.X, Y: a.Y - b.Y, Z: a.Z - b.Z}
}
func cross(a, b kernel.Vec3F) kernel.Vec3F {
	return kernel.Vec3F{X: a.Y*b.Z - a.Z*b.Y, Y: a.Z*b.X - a.X*b.Z, Z: a.X*b.Y - a.Y*b.X}
}
func dot(a, b kernel.Vec3F) float64 { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }
func normalize(a kernel.Vec3F) kernel.Vec3F {
	l := math.Sqrt(dot(a, a))
	if l == 0 {
		return a
	}
	return kernel.Vec3F{X: a.X / l, Y: a.Y / l, Z: a.Z / l}
}

// DistanceLabeler is a self-contained reference Labeler implementation
// against a closed triangle-mesh reference surface: draw points
// uniformly inside each cell's bounding box until n_test_points fall
// inside the convex body (giving up after 200·n_test_points draws and
// scoring whatever was accepted, or 0 if none was), and average a
// per-point inside/outside vote
// (here: the sign of the dot product between the point-to-nearest-
// triangle vector and that triangle's normal) into a continuous score.
type DistanceLabeler struct {
	Mesh []Triangle
	Rand *rand.Rand
}

// NewDistanceLabeler builds a labeler over the given closed mesh, using
// a default deterministic random source if r is nil.
func NewDistanceLabeler(mesh []Triangle, r *rand.Rand) *DistanceLabeler {
	if r == nil {
		r = rand.New(rand.NewSource(1))
	}
	return &DistanceLabeler{Mesh: mesh, Rand: r}
}

// Label implements Labeler.
func (d *DistanceLabeler) Label(cells []LabelInput, nTestPoints int) ([]float64, error) {
	if len(d.Mesh) == 0 {
		return nil, fmt.Errorf("labeler: reference mesh has no triangles")
	}
	if nTestPoints < 1 {
		return nil, fmt.Errorf("labeler: n_test_points must be >= 1, got %d", nTestPoints)
	}

	scores := make([]float64, len(cells))
	for i, cell := range cells {
		min, max, ok := cell.Convex.BBox()
		if !ok {
			return nil, fmt.Errorf("labeler: cell %d has no vertices to sample within", cell.ID)
		}
		minF, maxF := min.Float64(), max.Float64()

		inside := 0
		sampled := 0
		attempts := 0
		maxAttempts := nTestPoints * 200
		for sampled < nTestPoints && attempts < maxAttempts {
			attempts++
			p := kernel.Vec3F{
				X: minF.X + d.Rand.Float64()*(maxF.X-minF.X),
				Y: minF.Y + d.Rand.Float64()*(maxF.Y-minF.Y),
				Z: minF.Z + d.Rand.Float64()*(maxF.Z-minF.Z),
			}
			pr := kernel.Rat3{X: kernel.RatFromFloat64(p.X), Y: kernel.RatFromFloat64(p.Y), Z: kernel.RatFromFloat64(p.Z)}
			if !polyhedronContainsApprox(cell.Convex, pr) {
				continue
			}
			sampled++
			if d.isInsideMesh(p) {
				inside++
			}
		}
		if sampled == 0 {
			scores[i] = 0
			continue
		}
		scores[i] = float64(inside) / float64(sampled)
	}
	return scores, nil
}

func polyhedronContainsApprox(poly *kernel.Polyhedron, p kernel.Rat3) bool {
	for _, h := range poly.HalfSpaces() {
		if !h.Contains(p) {
			return false
		}
	}
	return true
}

// isInsideMesh votes a point inside/outside by the sign of its offset
// from the nearest triangle's centroid, projected onto that triangle's
// normal. This is a coarse, float-only approximation suitable for tests
// and examples, not a production occupancy classifier.
func (d *DistanceLabeler) isInsideMesh(p kernel.Vec3F) bool {
	bestDist := math.Inf(1)
	var bestNormal, bestCentroid kernel.Vec3F
	for _, tri := range d.Mesh {
		c := kernel.Vec3F{
			X: (tri.A.X + tri.B.X + tri.C.X) / 3,
			Y: (tri.A.Y + tri.B.Y + tri.C.Y) / 3,
			Z: (tri.A.Z + tri.B.Z + tri.C.Z) / 3,
		}
		d2 := dot(sub(p, c), sub(p, c))
		if d2 < bestDist {
			bestDist = d2
			bestNormal = tri.normal()
			bestCentroid = c
		}
	}
	return dot(sub(p, bestCentroid), bestNormal) < 0
}

package primitive

import (
	"fmt"

	"github.com/archform/cellcomplex/kernel"
)

// Archive is the decoded form of the external primitive archive (points,
// group_parameters, group_num_points, group_points). Parsing the on-disk
// .vg/.bvg/.npz formats into this shape is an external collaborator and
// out of scope for this module.
type Archive struct {
	// Points is the (N,3) union point cloud.
	Points [][3]float32
	// GroupParams is the (M,4) per-primitive plane (a,b,c,d).
	GroupParams [][4]float32
	// GroupNumPoints is the per-group point count (length M).
	GroupNumPoints []int
	// GroupPoints is the concatenated integer indices into Points.
	GroupPoints []int32
}

// Validate checks the archive for the input-error cases: malformed or
// empty archive, degenerate point clouds.
func (a Archive) Validate() error {
	if len(a.GroupParams) == 0 {
		return fmt.Errorf("primitive: empty archive: no primitive groups")
	}
	if len(a.GroupParams) != len(a.GroupNumPoints) {
		return fmt.Errorf("primitive: malformed archive: %d group params but %d group sizes", len(a.GroupParams), len(a.GroupNumPoints))
	}
	total := 0
	for _, n := range a.GroupNumPoints {
		total += n
	}
	if total != len(a.GroupPoints) {
		return fmt.Errorf("primitive: malformed archive: group sizes sum to %d but group_points has %d entries", total, len(a.GroupPoints))
	}
	for i, n := range a.GroupNumPoints {
		if n < 4 {
			return fmt.Errorf("primitive: group %d has %d supporting points, need >=4 non-coplanar points", i, n)
		}
	}
	return nil
}

// FromArchive builds the primitive list from a validated archive,
// applying merge_duplicates (coefficient-equal groups are unioned)
// before returning.
func FromArchive(a Archive, mergeDuplicates bool) ([]Primitive, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}

	prims := make([]Primitive, 0, len(a.GroupParams))
	offset := 0
	for g, n := range a.GroupNumPoints {
		idx := a.GroupPoints[offset : offset+n]
		offset += n

		pts := make([]kernel.Vec3F, n)
		for i, pi := range idx {
			if int(pi) < 0 || int(pi) >= len(a.Points) {
				return nil, fmt.Errorf("primitive: group %d references out-of-range point index %d", g, pi)
			}
			p := a.Points[pi]
			pts[i] = kernel.Vec3F{X: float64(p[0]), Y: float64(p[1]), Z: float64(p[2])}
		}

		gp := a.GroupParams[g]
		plane := kernel.PlaneFromFloats(float64(gp[0]), float64(gp[1]), float64(gp[2]), float64(gp[3]))
		prims = append(prims, NewPrimitive(plane, pts))
	}

	if mergeDuplicates {
		prims = mergeDuplicateGroups(prims)
	}
	return prims, nil
}

// mergeDuplicateGroups unions point groups whose planes carry identical
// rational coefficients, for the merge_duplicates config option.
func mergeDuplicateGroups(in []Primitive) []Primitive {
	out := make([]Primitive, 0, len(in))
	for _, p := range in {
		merged := false
		for i := range out {
			if samePlaneCoeffs(out[i].Plane, p.Plane) {
				out[i].Points = append(out[i].Points, p.Points...)
				out[i].AABB = AABBFromPoints(out[i].Points)
				merged = true
				break
			}
		}
		if !merged {
			out = append(out, p)
		}
	}
	return out
}

func samePlaneCoeffs(a, b kernel.Plane) bool {
	return a.A.Cmp(b.A) == 0 && a.B.Cmp(b.B) == 0 && a.C.Cmp(b.C) == 0 && a.D.Cmp(b.D) == 0
}

// BoundingBox computes the padded axis-aligned bounding polytope for the
// whole archive's point cloud, using the initial_padding config value.
func BoundingBox(points [][3]float32, padding float64) AABB {
	if len(points) == 0 {
		return AABB{}
	}
	min := kernel.Vec3F{X: float64(points[0][0]), Y: float64(points[0][1]), Z: float64(points[0][2])}
	max := min
	for _, p := range points[1:] {
		x, y, z := float64(p[0]), float64(p[1]), float64(p[2])
		if x < min.X {
			min.X = x
		}
		if y < min.Y {
			min.Y = y
		}
		if z < min.Z {
			min.Z = z
		}
		if x > max.X {
			max.X = x
		}
		if y > max.Y {
			max.Y = y
		}
		if z > max.Z {
			max.Z = z
		}
	}
	ex := (max.X - min.X) * padding
	ey := (max.Y - min.Y) * padding
	ez := (max.Z - min.Z) * padding
	return AABB{
		Min: kernel.Vec3F{X: min.X - ex, Y: min.Y - ey, Z: min.Z - ez},
		Max: kernel.Vec3F{X: max.X + ex, Y: max.Y + ey, Z: max.Z + ez},
	}
}

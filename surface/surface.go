// Package surface turns a labeled cell graph into an ordered, oriented
// polygon soup, emitted via meshio.
package surface

import (
	"fmt"
	"math"
	"sort"

	"github.com/archform/cellcomplex/bsp"
	"github.com/archform/cellcomplex/kernel"
	"github.com/archform/cellcomplex/logging"
)

// Soup is an OFF-style polygon soup: a shared, exact-equality-deduped
// vertex pool and a list of faces, each a list of indices into it.
type Soup struct {
	Vertices []kernel.Rat3
	Faces    [][]int
}

func (s *Soup) addVertex(v kernel.Rat3) int {
	for i, w := range s.Vertices {
		if w.Equal(v) {
			return i
		}
	}
	s.Vertices = append(s.Vertices, v)
	return len(s.Vertices) - 1
}

// Extract builds a Soup from every labeled edge of g whose two cells
// disagree in occupancy, using exact cross/dot orientation. Degenerate
// facets (fewer than 3 distinct corners after angular ordering) are
// fatal.
func Extract(g *bsp.Graph) (*Soup, error) {
	return extract(g, true, false)
}

// ExtractInexact is the benchmarking/"soup" counterpart: same corner
// gathering and angular ordering, but orientation uses normalized float
// cross/dot instead of exact rationals, and a degenerate facet is
// skipped with a warning rather than aborting the whole extraction.
func ExtractInexact(g *bsp.Graph) (*Soup, error) {
	return extract(g, false, true)
}

func extract(g *bsp.Graph, exactOrientation, skipDegenerate bool) (*Soup, error) {
	soup := &Soup{}
	for _, e := range g.Edges() {
		a, b := g.Cell(e.A), g.Cell(e.B)
		if a.Occupancy == nil || b.Occupancy == nil || *a.Occupancy == *b.Occupancy {
			continue
		}

		pts := dedup(append(append([]kernel.Rat3(nil), e.Intersection.Vertices()...), e.Vertices...))
		ordered, ok := angularOrder(pts, e.SupportingPlane.Normal())
		if !ok {
			if skipDegenerate {
				logging.Logger.Warn().Int("a", e.A).Int("b", e.B).Msg("surface: duplicate projected angle, skipping facet")
				continue
			}
			return nil, fmt.Errorf("surface: duplicate projected angle on edge (%d,%d)", e.A, e.B)
		}
		if len(ordered) < 3 {
			if skipDegenerate {
				logging.Logger.Warn().Int("a", e.A).Int("b", e.B).Int("corners", len(ordered)).Msg("surface: degenerate facet, skipping")
				continue
			}
			return nil, fmt.Errorf("surface: degenerate facet on edge (%d,%d): %d corners", e.A, e.B, len(ordered))
		}

		outsideCell := a
		if *a.Occupancy != 0 {
			outsideCell = b
		}
		o, ok := outsideCell.Convex.Center()
		if !ok {
			return nil, fmt.Errorf("surface: empty outside cell %d on edge (%d,%d)", outsideCell.ID, e.A, e.B)
		}

		if orient(ordered, o, exactOrientation) {
			reverse(ordered)
		}

		face := make([]int, len(ordered))
		for i, v := range ordered {
			face[i] = soup.addVertex(v)
		}
		soup.Faces = append(soup.Faces, face)
	}
	return soup, nil
}

func dedup(pts []kernel.Rat3) []kernel.Rat3 {
	var out []kernel.Rat3
	for _, p := range pts {
		found := false
		for _, q := range out {
			if q.Equal(p) {
				found = true
				break
			}
		}
		if !found {
			out = append(out, p)
		}
	}
	return out
}

// basisFromNormal builds an orthonormal-ish basis (e1, e2) for the plane
// whose normal is n, using the classic swap-and-negate trick: pick the
// dominant axis of n, swap it with another axis and negate one of the
// two to get a vector guaranteed perpendicular to n, then cross for e2.
// This step is deliberately inexact; floats are used throughout.
func basisFromNormal(n kernel.Rat3) (e1, e2 kernel.Vec3F) {
	nf := n.Float64()
	ax, ay, az := math.Abs(nf.X), math.Abs(nf.Y), math.Abs(nf.Z)

	var e1f kernel.Vec3F
	switch {
	case ax >= ay && ax >= az:
		e1f = kernel.Vec3F{X: nf.Y, Y: -nf.X, Z: 0}
		if e1f.X == 0 && e1f.Y == 0 {
			e1f = kernel.Vec3F{X: nf.Z, Y: 0, Z: -nf.X}
		}
	case ay >= ax && ay >= az:
		e1f = kernel.Vec3F{X: 0, Y: nf.Z, Z: -nf.Y}
		if e1f.Y == 0 && e1f.Z == 0 {
			e1f = kernel.Vec3F{X: -nf.Y, Y: nf.X, Z: 0}
		}
	default:
		e1f = kernel.Vec3F{X: nf.Z, Y: 0, Z: -nf.X}
		if e1f.X == 0 && e1f.Z == 0 {
			e1f = kernel.Vec3F{X: 0, Y: nf.Z, Z: -nf.Y}
		}
	}
	e1f = normalizeF(e1f)
	e2f := crossF(nf, e1f)
	return e1f, normalizeF(e2f)
}

func crossF(a, b kernel.Vec3F) kernel.Vec3F {
	return kernel.Vec3F{X: a.Y*b.Z - a.Z*b.Y, Y: a.Z*b.X - a.X*b.Z, Z: a.X*b.Y - a.Y*b.X}
}
func normalizeF(a kernel.Vec3F) kernel.Vec3F {
	l := math.Sqrt(a.X*a.X + a.Y*a.Y + a.Z*a.Z)
	if l == 0 {
		return a
	}
	return kernel.Vec3F{X: a.X / l, Y: a.Y / l, Z: a.Z / l}
}

// angularOrder sorts pts by atan2 angle around their 2D projected
// centroid; returns ok=false if two points project to the same angle
// (a degenerate/duplicate projection).
func angularOrder(pts []kernel.Rat3, normal kernel.Rat3) ([]kernel.Rat3, bool) {
	if len(pts) < 3 {
		return pts, true
	}
	e1, e2 := basisFromNormal(normal)

	type projected struct {
		p     kernel.Rat3
		x, y  float64
		angle float64
	}
	projs := make([]projected, len(pts))
	var cx, cy float64
	for i, p := range pts {
		pf := p.Float64()
		x := pf.X*e1.X + pf.Y*e1.Y + pf.Z*e1.Z
		y := pf.X*e2.X + pf.Y*e2.Y + pf.Z*e2.Z
		projs[i] = projected{p: p, x: x, y: y}
		cx += x
		cy += y
	}
	cx /= float64(len(pts))
	cy /= float64(len(pts))
	for i := range projs {
		projs[i].angle = math.Atan2(projs[i].y-cy, projs[i].x-cx)
	}
	sort.Slice(projs, func(i, j int) bool { return projs[i].angle < projs[j].angle })

	for i := 1; i < len(projs); i++ {
		if projs[i].angle == projs[i-1].angle {
			return nil, false
		}
	}

	out := make([]kernel.Rat3, len(projs))
	for i, pr := range projs {
		out[i] = pr.p
	}
	return out, true
}

// orient reports whether ordered's current winding needs reversing so
// its normal points toward o (the outside reference point, hence away
// from the interior): advance (p1,p2) until u×v is nonzero, then reverse
// iff n̂·(o−p0) < 0.
func orient(ordered []kernel.Rat3, o kernel.Rat3, exact bool) bool {
	p0 := ordered[0]
	for i := 1; i+1 < len(ordered); i++ {
		u := ordered[i].Sub(p0)
		v := ordered[i+1].Sub(p0)
		n := u.Cross(v)
		if n.IsZero() {
			continue
		}
		if exact {
			dot := n.Dot(o.Sub(p0))
			return dot.Sign() < 0
		}
		nf := n.Float64()
		of := o.Sub(p0).Float64()
		dot := nf.X*of.X + nf.Y*of.Y + nf.Z*of.Z
		return dot < 0
	}
	return false
}

func reverse(pts []kernel.Rat3) {
	for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
		pts[i], pts[j] = pts[j], pts[i]
	}
}

package kernel

import (
	"math/big"
	"sort"
	"strconv"
)

// Polyhedron is a convex region described as the intersection of
// finitely many rational half-spaces. The same representation serves
// cells (dim 3), facets (dim 2), edges (dim 1) and points (dim 0) alike
// — callers distinguish these by querying Dim(), never by an emptiness
// check alone.
//
// Polyhedra are treated as immutable once built; PolyIntersection and
// PolyConvexHull return new values rather than mutating their inputs.
type Polyhedron struct {
	halfSpaces []HalfSpace

	vertsOnce bool
	verts     []Rat3
}

// NewPolyhedron builds a polyhedron from a set of half-spaces. The slice
// is copied defensively.
func NewPolyhedron(hs ...HalfSpace) *Polyhedron {
	cp := make([]HalfSpace, len(hs))
	copy(cp, hs)
	return &Polyhedron{halfSpaces: cp}
}

// HalfSpaces returns the polyhedron's defining inequalities.
func (p *Polyhedron) HalfSpaces() []HalfSpace {
	cp := make([]HalfSpace, len(p.halfSpaces))
	copy(cp, p.halfSpaces)
	return cp
}

// PolyIntersection returns the intersection of a and b: the union of
// their half-space lists. Always exact.
func PolyIntersection(a, b *Polyhedron) *Polyhedron {
	hs := make([]HalfSpace, 0, len(a.halfSpaces)+len(b.halfSpaces))
	hs = append(hs, a.halfSpaces...)
	hs = append(hs, b.halfSpaces...)
	return &Polyhedron{halfSpaces: hs}
}

// PolyConvexHull returns the convex union of a and b across the plane
// separating them, given that a and b are known to jointly form a
// convex region across that shared facet (a true ConvexIntersection).
// The hull's half-space representation is then simply the union of each
// side's constraints with the separating plane's two half-spaces
// removed. This module calls it only when contracting two cells across a
// convex-intersection edge (package simplify); no general-position
// convex-hull-of-point-sets algorithm is implemented.
func PolyConvexHull(a, b *Polyhedron, separating Plane) *Polyhedron {
	hs := make([]HalfSpace, 0, len(a.halfSpaces)+len(b.halfSpaces))
	for _, h := range a.halfSpaces {
		if samePlane(h.Plane, separating) {
			continue
		}
		hs = append(hs, h)
	}
	for _, h := range b.halfSpaces {
		if samePlane(h.Plane, separating) {
			continue
		}
		hs = append(hs, h)
	}
	return &Polyhedron{halfSpaces: hs}
}

func samePlane(p, q Plane) bool {
	return p.A.Cmp(q.A) == 0 && p.B.Cmp(q.B) == 0 && p.C.Cmp(q.C) == 0 && p.D.Cmp(q.D) == 0
}

// Vertices returns the polyhedron's extreme points, computed (and then
// cached) by the classic triples-of-constraints vertex enumeration: every
// combination of three boundary planes is solved exactly, and a solution
// is kept iff it satisfies every other half-space and is not a duplicate
// of an already-found vertex.
func (p *Polyhedron) Vertices() []Rat3 {
	if p.vertsOnce {
		return p.verts
	}
	p.verts = enumerateVertices(p.halfSpaces)
	p.vertsOnce = true
	return p.verts
}

func enumerateVertices(hs []HalfSpace) []Rat3 {
	n := len(hs)
	var out []Rat3
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			for k := j + 1; k < n; k++ {
				x, ok := solve3x3(
					hs[i].Plane.Normal(), hs[i].Plane.D,
					hs[j].Plane.Normal(), hs[j].Plane.D,
					hs[k].Plane.Normal(), hs[k].Plane.D,
				)
				if !ok {
					continue
				}
				feasible := true
				for _, h := range hs {
					if !h.Contains(x) {
						feasible = false
						break
					}
				}
				if !feasible {
					continue
				}
				if !containsRat3(out, x) {
					out = append(out, x)
				}
			}
		}
	}
	return out
}

func containsRat3(pts []Rat3, x Rat3) bool {
	for _, p := range pts {
		if p.Equal(x) {
			return true
		}
	}
	return false
}

// solve3x3 solves the system { n1·x = -d1, n2·x = -d2, n3·x = -d3 }
// exactly via Cramer's rule. ok is false iff the system is singular
// (the three planes do not meet at a unique point).
func solve3x3(n1 Rat3, d1 *big.Rat, n2 Rat3, d2 *big.Rat, n3 Rat3, d3 *big.Rat) (Rat3, bool) {
	det := det3(
		n1.X, n1.Y, n1.Z,
		n2.X, n2.Y, n2.Z,
		n3.X, n3.Y, n3.Z,
	)
	if det.Sign() == 0 {
		return Rat3{}, false
	}
	b1 := new(big.Rat).Neg(d1)
	b2 := new(big.Rat).Neg(d2)
	b3 := new(big.Rat).Neg(d3)

	detX := det3(b1, n1.Y, n1.Z, b2, n2.Y, n2.Z, b3, n3.Y, n3.Z)
	detY := det3(n1.X, b1, n1.Z, n2.X, b2, n2.Z, n3.X, b3, n3.Z)
	detZ := det3(n1.X, n1.Y, b1, n2.X, n2.Y, b2, n3.X, n3.Y, b3)

	x := new(big.Rat).Quo(detX, det)
	y := new(big.Rat).Quo(detY, det)
	z := new(big.Rat).Quo(detZ, det)
	return Rat3{X: x, Y: y, Z: z}, true
}

func det3(a11, a12, a13, a21, a22, a23, a31, a32, a33 *big.Rat) *big.Rat {
	t1 := new(big.Rat).Mul(a11, new(big.Rat).Sub(new(big.Rat).Mul(a22, a33), new(big.Rat).Mul(a23, a32)))
	t2 := new(big.Rat).Mul(a12, new(big.Rat).Sub(new(big.Rat).Mul(a21, a33), new(big.Rat).Mul(a23, a31)))
	t3 := new(big.Rat).Mul(a13, new(big.Rat).Sub(new(big.Rat).Mul(a21, a32), new(big.Rat).Mul(a22, a31)))
	r := new(big.Rat).Sub(t1, t2)
	r.Add(r, t3)
	return r
}

// Dim returns the polyhedron's dimension in {-1,0,1,2,3}: -1 for an
// empty intersection, otherwise the rank of the vertex set around its
// first point.
func (p *Polyhedron) Dim() int {
	verts := p.Vertices()
	if len(verts) == 0 {
		return -1
	}
	diffs := make([]Rat3, 0, len(verts)-1)
	for _, v := range verts[1:] {
		diffs = append(diffs, v.Sub(verts[0]))
	}
	return rank3(diffs)
}

// rank3 returns the rank (0..3) of the given vectors via exact Gaussian
// elimination.
func rank3(vecs []Rat3) int {
	if len(vecs) == 0 {
		return 0
	}
	rows := make([][3]*big.Rat, len(vecs))
	for i, v := range vecs {
		rows[i] = [3]*big.Rat{new(big.Rat).Set(v.X), new(big.Rat).Set(v.Y), new(big.Rat).Set(v.Z)}
	}
	rank := 0
	for col := 0; col < 3 && rank < len(rows); col++ {
		pivot := -1
		for r := rank; r < len(rows); r++ {
			if rows[r][col].Sign() != 0 {
				pivot = r
				break
			}
		}
		if pivot == -1 {
			continue
		}
		rows[rank], rows[pivot] = rows[pivot], rows[rank]
		for r := 0; r < len(rows); r++ {
			if r == rank {
				continue
			}
			if rows[r][col].Sign() == 0 {
				continue
			}
			factor := new(big.Rat).Quo(rows[r][col], rows[rank][col])
			for c := 0; c < 3; c++ {
				rows[r][c] = new(big.Rat).Sub(rows[r][c], new(big.Rat).Mul(factor, rows[rank][c]))
			}
		}
		rank++
	}
	return rank
}

// Center returns the arithmetic mean of the polyhedron's vertices (the
// literal centroid of vertices, not a volume-weighted centroid).
func (p *Polyhedron) Center() (Rat3, bool) {
	verts := p.Vertices()
	if len(verts) == 0 {
		return Rat3{}, false
	}
	sum := Rat3{X: new(big.Rat), Y: new(big.Rat), Z: new(big.Rat)}
	for _, v := range verts {
		sum = sum.Add(v)
	}
	inv := new(big.Rat).SetFrac64(1, int64(len(verts)))
	return sum.Scale(inv), true
}

// BBox returns the axis-aligned bounding box (min, max) of the
// polyhedron's vertices.
func (p *Polyhedron) BBox() (min, max Rat3, ok bool) {
	verts := p.Vertices()
	if len(verts) == 0 {
		return Rat3{}, Rat3{}, false
	}
	min, max = verts[0], verts[0]
	for _, v := range verts[1:] {
		if v.X.Cmp(min.X) < 0 {
			min.X = v.X
		}
		if v.Y.Cmp(min.Y) < 0 {
			min.Y = v.Y
		}
		if v.Z.Cmp(min.Z) < 0 {
			min.Z = v.Z
		}
		if v.X.Cmp(max.X) > 0 {
			max.X = v.X
		}
		if v.Y.Cmp(max.Y) > 0 {
			max.Y = v.Y
		}
		if v.Z.Cmp(max.Z) > 0 {
			max.Z = v.Z
		}
	}
	return min, max, true
}

// Volume returns the exact volume of a dim-3 polyhedron (zero for lower
// dimensions). It groups vertices by the half-space each one saturates
// (the polyhedron's facets; half-spaces that saturate the same vertex set,
// such as a repeated constraint, count as one facet), angularly orders each facet's vertices
// (FacetVertexOrder), fan-triangulates from the facet's first vertex, and
// accumulates absolute tetrahedron volumes against the polyhedron's own
// center — valid because the center of a non-degenerate convex body is
// always strictly interior.
func (p *Polyhedron) Volume() *big.Rat {
	if p.Dim() != 3 {
		return new(big.Rat)
	}
	verts := p.Vertices()
	center, ok := p.Center()
	if !ok {
		return new(big.Rat)
	}

	total := new(big.Rat)
	six := big.NewRat(6, 1)
	seen := make(map[string]bool)
	for _, h := range p.halfSpaces {
		var facet []Rat3
		var key []byte
		for vi, v := range verts {
			if h.Plane.SignedValue(v).Sign() == 0 {
				facet = append(facet, v)
				key = strconv.AppendInt(key, int64(vi), 10)
				key = append(key, ',')
			}
		}
		if len(facet) < 3 || seen[string(key)] {
			continue
		}
		seen[string(key)] = true
		ordered := FacetVertexOrder(facet, h.Plane.Normal())
		for i := 1; i+1 < len(ordered); i++ {
			a := ordered[0].Sub(center)
			b := ordered[i].Sub(center)
			c := ordered[i+1].Sub(center)
			vol6 := a.Dot(b.Cross(c))
			vol6.Abs(vol6)
			total.Add(total, vol6)
		}
	}
	return total.Quo(total, six)
}

// FacetVertexOrder orders a coplanar point set by an exact gift-wrap scan
// relative to the supporting plane's normal, starting from the
// lexicographically smallest point, producing a simple
// (non-self-intersecting) convex polygon winding. Volume uses it for
// facet triangulation; the surface package orders facet corners with its
// own float angularOrder instead.
func FacetVertexOrder(pts []Rat3, normal Rat3) []Rat3 {
	if len(pts) <= 2 {
		return pts
	}
	remaining := append([]Rat3(nil), pts...)
	sort.Slice(remaining, func(i, j int) bool { return lexLess(remaining[i], remaining[j]) })

	ordered := make([]Rat3, 0, len(remaining))
	start := remaining[0]
	ordered = append(ordered, start)
	used := map[int]bool{0: true}

	current := start
	for len(ordered) < len(remaining) {
		bestIdx := -1
		for i, cand := range remaining {
			if used[i] {
				continue
			}
			if bestIdx == -1 {
				bestIdx = i
				continue
			}
			if isMoreCounterClockwise(current, remaining[bestIdx], cand, normal, used, remaining) {
				bestIdx = i
			}
		}
		used[bestIdx] = true
		ordered = append(ordered, remaining[bestIdx])
		current = remaining[bestIdx]
	}
	return ordered
}

// isMoreCounterClockwise reports whether candidate should replace best as
// the next gift-wrap hull point: candidate is "more clockwise turn" from
// current than best, judged via the sign of (best-current)x(cand-current)
// projected onto normal.
func isMoreCounterClockwise(current, best, cand Rat3, normal Rat3, _ map[int]bool, _ []Rat3) bool {
	cross := best.Sub(current).Cross(cand.Sub(current))
	return cross.Dot(normal).Sign() < 0
}

func lexLess(a, b Rat3) bool {
	if c := a.X.Cmp(b.X); c != 0 {
		return c < 0
	}
	if c := a.Y.Cmp(b.Y); c != 0 {
		return c < 0
	}
	return a.Z.Cmp(b.Z) < 0
}

package kernel

import (
	"math/big"
)

// Plane is the oriented plane a·x + d = 0 with exact rational
// coefficients.
type Plane struct {
	A, B, C, D *big.Rat
}

// PlaneFromDecimals builds a plane from decimal-string-exact coefficients,
// preserving the input's full precision as an exact fraction.
func PlaneFromDecimals(a, b, c, d string) (Plane, error) {
	ra, err := RatFromDecimalString(a)
	if err != nil {
		return Plane{}, err
	}
	rb, err := RatFromDecimalString(b)
	if err != nil {
		return Plane{}, err
	}
	rc, err := RatFromDecimalString(c)
	if err != nil {
		return Plane{}, err
	}
	rd, err := RatFromDecimalString(d)
	if err != nil {
		return Plane{}, err
	}
	return Plane{A: ra, B: rb, C: rc, D: rd}, nil
}

// PlaneFromFloats builds a plane from float32/float64 coefficients as read
// from a primitive archive's group_parameters tensor.
func PlaneFromFloats(a, b, c, d float64) Plane {
	return Plane{
		A: RatFromFloat64(a),
		B: RatFromFloat64(b),
		C: RatFromFloat64(c),
		D: RatFromFloat64(d),
	}
}

// Normal returns the plane's normal vector (a,b,c).
func (p Plane) Normal() Rat3 {
	return Rat3{X: p.A, Y: p.B, Z: p.C}
}

// SignedValue evaluates a·x+d at point x.
func (p Plane) SignedValue(x Rat3) *big.Rat {
	v := new(big.Rat).Mul(p.A, x.X)
	v.Add(v, new(big.Rat).Mul(p.B, x.Y))
	v.Add(v, new(big.Rat).Mul(p.C, x.Z))
	v.Add(v, p.D)
	return v
}

// Sign classifies x relative to the plane: +1, 0 or -1.
func (p Plane) Sign(x Rat3) int {
	return p.SignedValue(x).Sign()
}

// HalfSpaceSign selects which side of a plane a half-space keeps.
type HalfSpaceSign int

const (
	// Positive selects {x : a·x+d >= 0}.
	Positive HalfSpaceSign = 1
	// Negative selects {x : a·x+d <= 0}.
	Negative HalfSpaceSign = -1
)

// HalfSpace is one linear inequality: the plane plus which side is kept.
type HalfSpace struct {
	Plane Plane
	Sign  HalfSpaceSign
}

// Contains reports whether x satisfies the half-space's inequality
// (closed, i.e. boundary points are contained).
func (h HalfSpace) Contains(x Rat3) bool {
	s := h.Plane.SignedValue(x).Sign()
	if h.Sign == Positive {
		return s >= 0
	}
	return s <= 0
}

// StrictSide reports +1 if x is strictly on the kept side's interior,
// -1 if strictly on the excluded side, 0 if exactly on the boundary
// plane.
func (h HalfSpace) StrictSide(x Rat3) int {
	s := h.Plane.SignedValue(x).Sign()
	if h.Sign == Negative {
		s = -s
	}
	return s
}

// HalfSpacesFromPlane returns the plane's two oriented half-spaces
// (H+, H-).
func HalfSpacesFromPlane(p Plane) (HalfSpace, HalfSpace) {
	return HalfSpace{Plane: p, Sign: Positive}, HalfSpace{Plane: p, Sign: Negative}
}

// AxisAlignedBox builds the six-half-space box polyhedron [min,max],
// the bounding polytope every cell is clipped to.
func AxisAlignedBox(minF, maxF Vec3F) *Polyhedron {
	return NewPolyhedron(
		HalfSpace{Plane: PlaneFromFloats(1, 0, 0, -minF.X), Sign: Positive},
		HalfSpace{Plane: PlaneFromFloats(1, 0, 0, -maxF.X), Sign: Negative},
		HalfSpace{Plane: PlaneFromFloats(0, 1, 0, -minF.Y), Sign: Positive},
		HalfSpace{Plane: PlaneFromFloats(0, 1, 0, -maxF.Y), Sign: Negative},
		HalfSpace{Plane: PlaneFromFloats(0, 0, 1, -minF.Z), Sign: Positive},
		HalfSpace{Plane: PlaneFromFloats(0, 0, 1, -maxF.Z), Sign: Negative},
	)
}

// Flip returns the complementary half-space (the same plane, opposite
// side).
func (h HalfSpace) Flip() HalfSpace {
	return HalfSpace{Plane: h.Plane, Sign: -h.Sign}
}

// Package kernel implements the exact rational geometric primitives the
// rest of cellcomplex builds on: points, planes, half-spaces and convex
// polyhedra, with dimension, intersection, volume and centroid queries
// that never fall back to floating point.
package kernel

import (
	"fmt"
	"math/big"
)

// Rat3 is a point or vector in rational 3-space.
type Rat3 struct {
	X, Y, Z *big.Rat
}

// NewRat3 builds a Rat3 from already-allocated rationals.
func NewRat3(x, y, z *big.Rat) Rat3 {
	return Rat3{X: x, Y: y, Z: z}
}

// RatFromFloat64 converts a float64 to an exact rational. Used at the
// archive-ingestion boundary, where the original coordinates are decimal
// strings or float32/float64 values read from a primitive archive.
func RatFromFloat64(f float64) *big.Rat {
	return new(big.Rat).SetFloat64(f)
}

// RatFromDecimalString parses a decimal string into an exact rational,
// e.g. "0.5" -> 1/2. Returns an error on malformed input.
func RatFromDecimalString(s string) (*big.Rat, error) {
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return nil, fmt.Errorf("kernel: %q is not a valid decimal or rational literal", s)
	}
	return r, nil
}

// Vec3F is a float64 3-vector, used only for split-quality scoring and
// visualization; never for predicates that must be exact.
type Vec3F struct {
	X, Y, Z float64
}

// Sub returns v-w.
func (v Rat3) Sub(w Rat3) Rat3 {
	return Rat3{
		X: new(big.Rat).Sub(v.X, w.X),
		Y: new(big.Rat).Sub(v.Y, w.Y),
		Z: new(big.Rat).Sub(v.Z, w.Z),
	}
}

// Add returns v+w.
func (v Rat3) Add(w Rat3) Rat3 {
	return Rat3{
		X: new(big.Rat).Add(v.X, w.X),
		Y: new(big.Rat).Add(v.Y, w.Y),
		Z: new(big.Rat).Add(v.Z, w.Z),
	}
}

// Scale returns v scaled by the rational s.
func (v Rat3) Scale(s *big.Rat) Rat3 {
	return Rat3{
		X: new(big.Rat).Mul(v.X, s),
		Y: new(big.Rat).Mul(v.Y, s),
		Z: new(big.Rat).Mul(v.Z, s),
	}
}

// Dot returns the exact dot product v·w.
func (v Rat3) Dot(w Rat3) *big.Rat {
	r := new(big.Rat).Mul(v.X, w.X)
	r.Add(r, new(big.Rat).Mul(v.Y, w.Y))
	r.Add(r, new(big.Rat).Mul(v.Z, w.Z))
	return r
}

// Cross returns the exact cross product v×w.
func (v Rat3) Cross(w Rat3) Rat3 {
	return Rat3{
		X: new(big.Rat).Sub(new(big.Rat).Mul(v.Y, w.Z), new(big.Rat).Mul(v.Z, w.Y)),
		Y: new(big.Rat).Sub(new(big.Rat).Mul(v.Z, w.X), new(big.Rat).Mul(v.X, w.Z)),
		Z: new(big.Rat).Sub(new(big.Rat).Mul(v.X, w.Y), new(big.Rat).Mul(v.Y, w.X)),
	}
}

// Equal reports exact rational equality.
func (v Rat3) Equal(w Rat3) bool {
	return v.X.Cmp(w.X) == 0 && v.Y.Cmp(w.Y) == 0 && v.Z.Cmp(w.Z) == 0
}

// IsZero reports whether v is the exact zero vector.
func (v Rat3) IsZero() bool {
	return v.X.Sign() == 0 && v.Y.Sign() == 0 && v.Z.Sign() == 0
}

// Float64 converts v to an inexact float triple, for scoring and display.
func (v Rat3) Float64() Vec3F {
	x, _ := v.X.Float64()
	y, _ := v.Y.Float64()
	z, _ := v.Z.Float64()
	return Vec3F{X: x, Y: y, Z: z}
}

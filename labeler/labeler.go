// Package labeler defines the occupancy-oracle boundary: a pure function
// from cells to continuous occupancy scores, decoupled from any
// particular inside/outside classifier implementation.
package labeler

import "github.com/archform/cellcomplex/kernel"

// LabelInput is the minimal per-cell shape a Labeler needs: its convex
// region and a stable id for error reporting.
type LabelInput struct {
	ID     int
	Convex *kernel.Polyhedron
}

// Labeler assigns a continuous occupancy estimate in [0,1] to each cell,
// sampling n test points per cell. Labeler failures are fatal: there is
// no retry semantics.
type Labeler interface {
	Label(cells []LabelInput, nTestPoints int) ([]float64, error)
}

// Round applies the {0,1} rounding rule (round-half-up at 0.5) used to
// derive Cell.Occupancy from a Labeler's continuous output.
func Round(score float64) int {
	if score >= 0.5 {
		return 1
	}
	return 0
}

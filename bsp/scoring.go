package bsp

import "github.com/archform/cellcomplex/primitive"

// Ordering selects how a BSP node picks its splitting plane among its
// remaining candidate primitives.
type Ordering int

const (
	// OrderingOptimal runs the best-plane scoring heuristic.
	OrderingOptimal Ordering = iota
	// OrderingInput always picks the first candidate, skipping scoring.
	OrderingInput
)

// Traversal selects tree expansion order.
type Traversal int

const (
	// TraversalDepth expands depth-first.
	TraversalDepth Traversal = iota
	// TraversalWidth expands breadth-first.
	TraversalWidth
)

// selectSplitPlane picks the candidate index (into candidateIdx) to
// split on. prims is the running global primitive array; candidateIdx
// holds indices into prims still live at this node.
//
// Scoring never touches a map — only ever iterates candidateIdx in its
// given (ascending) order — so ties are broken by stable index order,
// never by Go's intentionally-randomized map iteration.
func selectSplitPlane(prims []primitive.Primitive, candidateIdx []int, ordering Ordering) int {
	if ordering == OrderingInput || len(candidateIdx) == 1 {
		return 0
	}

	bestPos := 0
	bestScore := -1
	for pos, i := range candidateIdx {
		l, r := separationCounts(prims, candidateIdx, i)
		n := len(candidateIdx) - 1
		if l == n || r == n {
			return pos
		}
		score := l * r
		if score > bestScore {
			bestScore = score
			bestPos = pos
		}
	}
	return bestPos
}

// separationCounts computes L(i) and R(i): the number of other
// candidate groups lying entirely on one strict side of candidate i's
// plane.
func separationCounts(prims []primitive.Primitive, candidateIdx []int, i int) (left, right int) {
	nf := prims[i].Plane.Normal().Float64()
	df, _ := prims[i].Plane.D.Float64()
	for _, j := range candidateIdx {
		if j == i {
			continue
		}
		allLeft, allRight := true, true
		for _, pt := range prims[j].Points {
			v := nf.X*pt.X + nf.Y*pt.Y + nf.Z*pt.Z + df
			if v >= 0 {
				allLeft = false
			}
			if v <= 0 {
				allRight = false
			}
		}
		if allLeft {
			left++
		}
		if allRight {
			right++
		}
	}
	return left, right
}

package bsp

import (
	"fmt"

	"github.com/archform/cellcomplex/kernel"
	"github.com/archform/cellcomplex/primitive"
)

// BuildConfig carries the adaptive builder's knobs; the exhaustive
// builder takes an ExhaustiveConfig instead.
type BuildConfig struct {
	Ordering       Ordering
	Traversal      Traversal
	SplitThreshold int // θ; must be >= 1
}

// Builder runs the adaptive BSP construction. It owns the running,
// append-only primitive array, the cell graph, and the BSP tree — three
// structures that need stable, never-invalidated indices across the
// whole construction.
type Builder struct {
	prims  []primitive.Primitive
	graph  *Graph
	tree   *Tree
	nextID int
	cfg    BuildConfig
}

// BuildAdaptive constructs the cell complex for prims inside bound,
// returning the adjacency graph, the BSP tree, and the final
// (possibly grown, due to primitive cloning) primitive array.
func BuildAdaptive(prims []primitive.Primitive, bound *kernel.Polyhedron, cfg BuildConfig) (*Graph, *Tree, []primitive.Primitive, error) {
	if cfg.SplitThreshold < 1 {
		return nil, nil, nil, fmt.Errorf("bsp: split threshold theta must be >= 1, got %d", cfg.SplitThreshold)
	}
	if bound.Dim() != 3 {
		return nil, nil, nil, fmt.Errorf("bsp: bounding polytope is not 3-dimensional (dim=%d)", bound.Dim())
	}

	b := &Builder{
		prims: append([]primitive.Primitive(nil), prims...),
		graph: NewGraph(),
		cfg:   cfg,
	}

	rootIDs := make([]int, len(b.prims))
	for i := range b.prims {
		rootIDs[i] = i
	}
	rootCellID := b.allocCellID()
	b.graph.AddCell(&Cell{ID: rootCellID, Convex: bound})
	b.tree = NewTree(rootCellID, bound, rootIDs)

	frontier := []int{}
	if len(rootIDs) > 0 {
		frontier = append(frontier, 0)
	}

	for len(frontier) > 0 {
		var uidx int
		switch b.cfg.Traversal {
		case TraversalWidth:
			uidx, frontier = frontier[0], frontier[1:]
		default: // TraversalDepth
			last := len(frontier) - 1
			uidx, frontier = frontier[last], frontier[:last]
		}
		newFrontier, err := b.expand(uidx)
		if err != nil {
			return nil, nil, nil, err
		}
		frontier = append(frontier, newFrontier...)
	}

	return b.graph, b.tree, b.prims, nil
}

func (b *Builder) allocCellID() int {
	id := b.nextID
	b.nextID++
	return id
}

// expand picks a splitting plane, partitions the remaining candidate
// primitives, and creates two children for the node at tree index uidx,
// returning the tree indices of any newly created children whose
// plane_ids remain non-empty (for the frontier to continue visiting).
func (b *Builder) expand(uidx int) ([]int, error) {
	u := b.tree.Node(uidx)
	S := u.PlaneIDs
	if len(S) == 0 {
		return nil, nil
	}

	pos := selectSplitPlane(b.prims, S, b.cfg.Ordering)
	iStar := S[pos]
	planeStar := b.prims[iStar].Plane

	var leftIDs, rightIDs []int
	theta := b.cfg.SplitThreshold
	for _, j := range S {
		if j == iStar {
			continue
		}
		prim := b.prims[j]
		dists := prim.SignedDistancesAgainst(planeStar)
		n := len(dists)

		var leftPts, rightPts []kernel.Vec3F
		nL, nR := 0, 0
		for k, d := range dists {
			switch {
			case d < 0:
				nL++
				leftPts = append(leftPts, prim.Points[k])
			case d > 0:
				nR++
				rightPts = append(rightPts, prim.Points[k])
			}
		}

		switch {
		case n-nL < theta:
			b.prims[j].Points = leftPts
			b.prims[j].AABB = primitive.AABBFromPoints(leftPts)
			leftIDs = append(leftIDs, j)
		case n-nR < theta:
			b.prims[j].Points = rightPts
			b.prims[j].AABB = primitive.AABBFromPoints(rightPts)
			rightIDs = append(rightIDs, j)
		default:
			if nL > theta {
				clone := b.prims[j].Clone(leftPts)
				newIdx := len(b.prims)
				b.prims = append(b.prims, clone)
				leftIDs = append(leftIDs, newIdx)
			}
			if nR > theta {
				clone := b.prims[j].Clone(rightPts)
				newIdx := len(b.prims)
				b.prims = append(b.prims, clone)
				rightIDs = append(rightIDs, newIdx)
			}
		}
	}

	hPos, hNeg := kernel.HalfSpacesFromPlane(planeStar)
	leftConvex := kernel.PolyIntersection(u.Convex, kernel.NewPolyhedron(hNeg))
	rightConvex := kernel.PolyIntersection(u.Convex, kernel.NewPolyhedron(hPos))

	keepLeft := leftConvex.Dim() == 3
	keepRight := rightConvex.Dim() == 3

	if !keepLeft && !keepRight {
		// Degenerate split: treat u as a final leaf rather than lose
		// the cell outright. Cell interiors must remain covered.
		u.PlaneIDs = nil
		return nil, nil
	}

	type neighborInfo struct {
		id   int
		edge *Edge
	}
	var neighbors []neighborInfo
	for _, m := range b.graph.Neighbors(u.CellID) {
		neighbors = append(neighbors, neighborInfo{id: m, edge: b.graph.Edge(u.CellID, m)})
	}
	b.graph.RemoveCell(u.CellID)

	var leftCellID, rightCellID int
	var leftNodeIdx, rightNodeIdx int
	var frontierAdds []int

	if keepLeft && keepRight {
		leftCellID = b.allocCellID()
		rightCellID = b.allocCellID()
		leftNode := &TreeNode{CellID: leftCellID, Convex: leftConvex, PlaneIDs: leftIDs, IsLeaf: true}
		rightNode := &TreeNode{CellID: rightCellID, Convex: rightConvex, PlaneIDs: rightIDs, IsLeaf: true}
		leftNodeIdx, rightNodeIdx = b.tree.Split(uidx, leftNode, rightNode)

		b.graph.AddCell(&Cell{ID: leftCellID, Convex: leftConvex})
		b.graph.AddCell(&Cell{ID: rightCellID, Convex: rightConvex})

		facet := kernel.PolyIntersection(leftConvex, rightConvex)
		b.graph.AddEdge(&Edge{
			A: leftCellID, B: rightCellID,
			Intersection:       facet,
			SupportingPlane:    planeStar,
			ConvexIntersection: true,
		})
	} else if keepLeft {
		leftCellID = b.allocCellID()
		leftNode := &TreeNode{CellID: leftCellID, Convex: leftConvex, PlaneIDs: leftIDs, IsLeaf: true}
		// Single surviving child: still consumes a tree split (the
		// other side is a non-leaf placeholder carrying no cell id,
		// never entered into the leaf<->graph bijection) so parent
		// bookkeeping stays uniform.
		rightNode := &TreeNode{IsLeaf: false, CellID: -1, Convex: rightConvex}
		leftNodeIdx, _ = b.tree.Split(uidx, leftNode, rightNode)
		rightNodeIdx = -1
		b.graph.AddCell(&Cell{ID: leftCellID, Convex: leftConvex})
	} else {
		rightCellID = b.allocCellID()
		leftNode := &TreeNode{IsLeaf: false, CellID: -1, Convex: leftConvex}
		rightNode := &TreeNode{CellID: rightCellID, Convex: rightConvex, PlaneIDs: rightIDs, IsLeaf: true}
		_, rightNodeIdx = b.tree.Split(uidx, leftNode, rightNode)
		leftNodeIdx = -1
		b.graph.AddCell(&Cell{ID: rightCellID, Convex: rightConvex})
	}

	for _, nb := range neighbors {
		mCell := b.graph.Cell(nb.id)
		if mCell == nil {
			continue
		}
		if keepLeft {
			fml := kernel.PolyIntersection(mCell.Convex, leftConvex)
			if fml.Dim() == 2 {
				b.graph.AddEdge(&Edge{
					A: nb.id, B: leftCellID,
					Intersection:       fml,
					SupportingPlane:    nb.edge.SupportingPlane,
					ConvexIntersection: inheritedConvexIntersection(nb.edge, fml),
				})
			}
		}
		if keepRight {
			fmr := kernel.PolyIntersection(mCell.Convex, rightConvex)
			if fmr.Dim() == 2 {
				b.graph.AddEdge(&Edge{
					A: nb.id, B: rightCellID,
					Intersection:       fmr,
					SupportingPlane:    nb.edge.SupportingPlane,
					ConvexIntersection: inheritedConvexIntersection(nb.edge, fmr),
				})
			}
		}
	}

	if keepLeft && len(leftIDs) > 0 {
		frontierAdds = append(frontierAdds, leftNodeIdx)
	}
	if keepRight && len(rightIDs) > 0 {
		frontierAdds = append(frontierAdds, rightNodeIdx)
	}
	return frontierAdds, nil
}

// inheritedConvexIntersection decides whether a split child's inherited
// edge stays flagged convex: rather than copying the parent edge's flag
// unchanged, it is recomputed as "was convex before, and the facet is
// still a full (unreduced) 2D interface" — approximated by requiring the
// new facet's vertex count to match the inherited one exactly, since a
// strictly smaller facet means the neighbor's cell no longer spans the
// whole shared boundary.
func inheritedConvexIntersection(old *Edge, newFacet *kernel.Polyhedron) bool {
	if old == nil || !old.ConvexIntersection {
		return false
	}
	if old.Intersection == nil {
		return false
	}
	return len(newFacet.Vertices()) == len(old.Intersection.Vertices())
}

package bsp

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/archform/cellcomplex/kernel"
	"github.com/archform/cellcomplex/primitive"
	"golang.org/x/sync/errgroup"
)

// PriorityMode selects the exhaustive builder's primitive iteration
// order.
type PriorityMode int

const (
	PriorityVertical PriorityMode = iota
	PriorityNorm
	PriorityVolume
	PriorityRandom
)

// ExhaustiveConfig carries the priority mode and worker count for the
// one sanctioned parallelism point: the per-candidate neighbor tests in
// exhaustiveStep.
type ExhaustiveConfig struct {
	Priority    PriorityMode
	NumWorkers  int
	RandomSeed  int64
	VerticalTol float64 // threshold for |(a,b)|/|c| in PriorityVertical
}

// BuildExhaustive constructs the cell complex by iterating primitives
// (in priority order) against every AABB/plane-intersecting candidate
// cell. It is provided for benchmarking against BuildAdaptive and is not
// the default construction path.
func BuildExhaustive(prims []primitive.Primitive, bound *kernel.Polyhedron, cfg ExhaustiveConfig) (*Graph, *Tree, error) {
	if bound.Dim() != 3 {
		return nil, nil, fmt.Errorf("bsp: bounding polytope is not 3-dimensional (dim=%d)", bound.Dim())
	}

	ordered := prioritize(prims, cfg)

	b := &Builder{
		prims: append([]primitive.Primitive(nil), prims...),
		graph: NewGraph(),
	}
	rootID := b.allocCellID()
	b.graph.AddCell(&Cell{ID: rootID, Convex: bound})
	b.tree = NewTree(rootID, bound, nil)

	for _, idx := range ordered {
		if err := b.exhaustiveStep(idx, cfg); err != nil {
			return nil, nil, err
		}
	}

	return b.graph, b.tree, nil
}

// prioritize returns primitive indices reordered by the configured
// priority mode, with infinite-extent ("additional") primitives always
// sorted first, via a single stable sort — ties keep their original
// relative order.
func prioritize(prims []primitive.Primitive, cfg ExhaustiveConfig) []int {
	idx := make([]int, len(prims))
	for i := range idx {
		idx[i] = i
	}

	key := make([]float64, len(prims))
	switch cfg.Priority {
	case PriorityVertical:
		tol := cfg.VerticalTol
		if tol == 0 {
			tol = 1.0
		}
		for i, p := range prims {
			n := p.Plane.Normal().Float64()
			if n.Z == 0 {
				key[i] = math.Inf(1)
				continue
			}
			ratio := math.Hypot(n.X, n.Y) / math.Abs(n.Z)
			if ratio > tol {
				key[i] = 1
			} else {
				key[i] = 0
			}
		}
	case PriorityNorm:
		for i, p := range prims {
			ex := p.AABB.Extent()
			key[i] = math.Sqrt(ex.X*ex.X + ex.Y*ex.Y + ex.Z*ex.Z)
		}
	case PriorityVolume:
		for i, p := range prims {
			ex := p.AABB.Extent()
			key[i] = 8 * ex.X * ex.Y * ex.Z
		}
	case PriorityRandom:
		r := rand.New(rand.NewSource(cfg.RandomSeed))
		for i := range prims {
			key[i] = r.Float64()
		}
	}

	infinite := make([]bool, len(prims))
	for i, p := range prims {
		infinite[i] = p.AABB.Infinite()
	}

	sort.SliceStable(idx, func(i, j int) bool {
		ii, jj := idx[i], idx[j]
		if infinite[ii] != infinite[jj] {
			return infinite[ii]
		}
		return key[ii] > key[jj]
	})
	return idx
}

// candidateCells returns every current leaf cell id whose AABB/plane
// slab test suggests it may intersect prim's plane — all leaves,
// unconditionally, if prim's AABB carries the infinite sentinel.
func (b *Builder) candidateCells(prim primitive.Primitive) []int {
	leaves := b.tree.Leaves()
	var out []int
	if prim.AABB.Infinite() {
		for _, l := range leaves {
			out = append(out, b.tree.Node(l).CellID)
		}
		return out
	}

	nf := prim.Plane.Normal().Float64()
	nlen := math.Sqrt(nf.X*nf.X + nf.Y*nf.Y + nf.Z*nf.Z)
	if nlen == 0 {
		nlen = 1
	}
	df, _ := prim.Plane.D.Float64()

	for _, l := range leaves {
		node := b.tree.Node(l)
		min, max, ok := node.Convex.BBox()
		if !ok {
			continue
		}
		minF, maxF := min.Float64(), max.Float64()
		box := primitive.AABB{Min: minF, Max: maxF}
		center := box.Center()
		extent := box.Extent()
		r := (extent.X*math.Abs(nf.X) + extent.Y*math.Abs(nf.Y) + extent.Z*math.Abs(nf.Z)) / nlen
		dist := (nf.X*center.X + nf.Y*center.Y + nf.Z*center.Z + df) / nlen
		if math.Abs(dist) <= r {
			out = append(out, node.CellID)
		}
	}
	return out
}

// exhaustiveStep replaces every AABB-candidate cell that prim's plane
// actually splits, inserting both children and rewiring adjacency,
// ordered by primitive iteration rather than tree expansion. The
// per-candidate neighbor-intersection tests are the one place dispatch
// to a worker pool is allowed; results are collected by an
// errgroup.Group and applied to the graph sequentially by this (host)
// goroutine, never written concurrently.
func (b *Builder) exhaustiveStep(primIdx int, cfg ExhaustiveConfig) error {
	prim := b.prims[primIdx]
	candidates := b.candidateCells(prim)
	hPos, hNeg := kernel.HalfSpacesFromPlane(prim.Plane)

	for _, cellID := range candidates {
		nodeIdx := b.tree.NodeByCell(cellID)
		if nodeIdx == -1 {
			continue // already replaced by an earlier candidate in this step
		}
		node := b.tree.Node(nodeIdx)

		leftConvex := kernel.PolyIntersection(node.Convex, kernel.NewPolyhedron(hNeg))
		rightConvex := kernel.PolyIntersection(node.Convex, kernel.NewPolyhedron(hPos))
		if leftConvex.Dim() != 3 || rightConvex.Dim() != 3 {
			continue
		}

		type neighborInfo struct {
			id   int
			edge *Edge
		}
		var neighbors []neighborInfo
		for _, m := range b.graph.Neighbors(cellID) {
			neighbors = append(neighbors, neighborInfo{id: m, edge: b.graph.Edge(cellID, m)})
		}
		b.graph.RemoveCell(cellID)

		leftID, rightID := b.allocCellID(), b.allocCellID()
		leftNode := &TreeNode{CellID: leftID, Convex: leftConvex, IsLeaf: true}
		rightNode := &TreeNode{CellID: rightID, Convex: rightConvex, IsLeaf: true}
		b.tree.Split(nodeIdx, leftNode, rightNode)

		b.graph.AddCell(&Cell{ID: leftID, Convex: leftConvex})
		b.graph.AddCell(&Cell{ID: rightID, Convex: rightConvex})
		facet := kernel.PolyIntersection(leftConvex, rightConvex)
		b.graph.AddEdge(&Edge{A: leftID, B: rightID, Intersection: facet, SupportingPlane: prim.Plane, ConvexIntersection: true})

		type newEdge struct {
			a, b    int
			facet   *kernel.Polyhedron
			oldEdge *Edge
		}
		results := make([]*newEdge, 0, 2*len(neighbors))

		if cfg.NumWorkers > 0 && len(neighbors) > 0 {
			grp, _ := errgroup.WithContext(context.Background())
			grp.SetLimit(cfg.NumWorkers)
			out := make([][2]*newEdge, len(neighbors))
			for i, nb := range neighbors {
				i, nb := i, nb
				grp.Go(func() error {
					mCell := b.graph.Cell(nb.id)
					if mCell == nil {
						return nil
					}
					var pair [2]*newEdge
					if f := kernel.PolyIntersection(mCell.Convex, leftConvex); f.Dim() == 2 {
						pair[0] = &newEdge{a: nb.id, b: leftID, facet: f, oldEdge: nb.edge}
					}
					if f := kernel.PolyIntersection(mCell.Convex, rightConvex); f.Dim() == 2 {
						pair[1] = &newEdge{a: nb.id, b: rightID, facet: f, oldEdge: nb.edge}
					}
					out[i] = pair
					return nil
				})
			}
			if err := grp.Wait(); err != nil {
				return err
			}
			for _, pair := range out {
				if pair[0] != nil {
					results = append(results, pair[0])
				}
				if pair[1] != nil {
					results = append(results, pair[1])
				}
			}
		} else {
			for _, nb := range neighbors {
				mCell := b.graph.Cell(nb.id)
				if mCell == nil {
					continue
				}
				if f := kernel.PolyIntersection(mCell.Convex, leftConvex); f.Dim() == 2 {
					results = append(results, &newEdge{a: nb.id, b: leftID, facet: f, oldEdge: nb.edge})
				}
				if f := kernel.PolyIntersection(mCell.Convex, rightConvex); f.Dim() == 2 {
					results = append(results, &newEdge{a: nb.id, b: rightID, facet: f, oldEdge: nb.edge})
				}
			}
		}

		// Serialize every graph write on the host goroutine; the worker
		// pool only computes, it never writes to the graph.
		for _, r := range results {
			b.graph.AddEdge(&Edge{
				A: r.a, B: r.b,
				Intersection:       r.facet,
				SupportingPlane:    r.oldEdge.SupportingPlane,
				ConvexIntersection: inheritedConvexIntersection(r.oldEdge, r.facet),
			})
		}
	}
	return nil
}

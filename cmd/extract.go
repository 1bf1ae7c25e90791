package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/archform/cellcomplex/bsp"
	"github.com/archform/cellcomplex/config"
	"github.com/archform/cellcomplex/kernel"
	"github.com/archform/cellcomplex/labeler"
	"github.com/archform/cellcomplex/logging"
	"github.com/archform/cellcomplex/meshio"
	"github.com/archform/cellcomplex/polygon"
	"github.com/archform/cellcomplex/primitive"
	"github.com/archform/cellcomplex/simplify"
	"github.com/archform/cellcomplex/surface"
)

var (
	extractMeshPath   string
	extractNTest      int
	extractOutOFF     string
	extractOutPLY     string
	extractInexact    bool
	extractNoSimplify bool
)

// extractCmd runs the full C2 through C7 pipeline end to end: load
// primitives, build the cell complex, label cells against a reference
// mesh, finalize facets, simplify, and extract the boundary as an
// OFF/PLY soup. Labeling must precede facet finalization and
// simplification: both are gated on cells already having an occupancy
// label.
var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Build, label, and extract a boundary mesh from a primitive archive",
	RunE: func(cmd *cobra.Command, args []string) error {
		projectRoot, err := config.FindProjectRoot()
		if err != nil {
			return fmt.Errorf("getting project root: %w", err)
		}
		cfg, err := config.Load(projectRoot)
		if err != nil {
			return fmt.Errorf("loading project config: %w", err)
		}

		archive, err := loadArchive(archivePath)
		if err != nil {
			return fmt.Errorf("loading primitive archive: %w", err)
		}
		prims, err := primitive.FromArchive(*archive, cfg.MergeDuplicates)
		if err != nil {
			return fmt.Errorf("building primitives: %w", err)
		}
		box := primitive.BoundingBox(archive.Points, cfg.InitialPadding)
		bound := kernel.AxisAlignedBox(box.Min, box.Max)

		graph, tree, err := buildWithTree(prims, bound, *cfg)
		if err != nil {
			return fmt.Errorf("building cell complex: %w", err)
		}

		if err := labelCells(graph); err != nil {
			return fmt.Errorf("labeling cells: %w", err)
		}

		polygon.InitPolygons(graph)
		polygon.ConstructPolygons(graph)

		if !extractNoSimplify {
			simplify.Simplify(graph, tree)
		}

		var soup *surface.Soup
		if extractInexact {
			soup, err = surface.ExtractInexact(graph)
		} else {
			soup, err = surface.Extract(graph)
		}
		if err != nil {
			return fmt.Errorf("extracting surface: %w", err)
		}

		logging.Logger.Info().Int("vertices", len(soup.Vertices)).Int("faces", len(soup.Faces)).Msg("surface extracted")

		if extractOutOFF != "" {
			f, err := os.Create(extractOutOFF)
			if err != nil {
				return fmt.Errorf("creating %s: %w", extractOutOFF, err)
			}
			defer f.Close()
			if err := meshio.WriteOFF(f, soup); err != nil {
				return fmt.Errorf("writing OFF: %w", err)
			}
		}
		if extractOutPLY != "" {
			f, err := os.Create(extractOutPLY)
			if err != nil {
				return fmt.Errorf("creating %s: %w", extractOutPLY, err)
			}
			defer f.Close()
			if err := meshio.WritePLY(f, soup, nil); err != nil {
				return fmt.Errorf("writing PLY: %w", err)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().StringVarP(&archivePath, "archive", "a", "", "path to the primitive archive (JSON-encoded points/group tensors)")
	extractCmd.Flags().StringVar(&extractMeshPath, "label-mesh", "", "path to a watertight OFF reference mesh used for occupancy labeling")
	extractCmd.Flags().IntVar(&extractNTest, "n-test-points", 32, "test points sampled per cell during labeling")
	extractCmd.Flags().StringVar(&extractOutOFF, "off", "", "output OFF path")
	extractCmd.Flags().StringVar(&extractOutPLY, "ply", "", "output PLY path")
	extractCmd.Flags().BoolVar(&extractInexact, "inexact", false, "use the inexact (soup) orientation path instead of exact")
	extractCmd.Flags().BoolVar(&extractNoSimplify, "no-simplify", false, "skip the C6 simplification pass")
	extractCmd.MarkFlagRequired("archive")
	extractCmd.MarkFlagRequired("label-mesh")
}

// buildWithTree runs the configured builder and always returns the BSP
// tree, since extract needs it for simplification even in exhaustive mode.
func buildWithTree(prims []primitive.Primitive, bound *kernel.Polyhedron, cfg config.Config) (*bsp.Graph, *bsp.Tree, error) {
	if cfg.Exhaustive {
		return bsp.BuildExhaustive(prims, bound, bsp.ExhaustiveConfig{NumWorkers: cfg.NumWorkers})
	}

	ordering := bsp.OrderingOptimal
	if cfg.Ordering == config.OrderingInput {
		ordering = bsp.OrderingInput
	}
	traversal := bsp.TraversalDepth
	if cfg.Mode == config.ModeWidth {
		traversal = bsp.TraversalWidth
	}
	graph, tree, _, err := bsp.BuildAdaptive(prims, bound, bsp.BuildConfig{
		Ordering:       ordering,
		Traversal:      traversal,
		SplitThreshold: cfg.Theta,
	})
	return graph, tree, err
}

func labelCells(g *bsp.Graph) error {
	f, err := os.Open(extractMeshPath)
	if err != nil {
		return fmt.Errorf("opening reference mesh %s: %w", extractMeshPath, err)
	}
	defer f.Close()
	mesh, err := meshio.ReadOFFTriangles(f)
	if err != nil {
		return fmt.Errorf("reading reference mesh: %w", err)
	}

	lbl := labeler.NewDistanceLabeler(mesh, nil)
	cells := g.Cells()
	inputs := make([]labeler.LabelInput, len(cells))
	for i, c := range cells {
		inputs[i] = labeler.LabelInput{ID: c.ID, Convex: c.Convex}
	}
	scores, err := lbl.Label(inputs, extractNTest)
	if err != nil {
		return err
	}
	for i, c := range cells {
		c.FloatOccupancy = scores[i]
		occ := labeler.Round(scores[i])
		c.Occupancy = &occ
	}
	return nil
}

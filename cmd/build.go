package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/archform/cellcomplex/bsp"
	"github.com/archform/cellcomplex/config"
	"github.com/archform/cellcomplex/kernel"
	"github.com/archform/cellcomplex/logging"
	"github.com/archform/cellcomplex/primitive"
)

var (
	archivePath string
	outSummary  string
)

// buildCmd runs the C3/C4 construction pipeline: load the primitive
// archive, compute the padded bounding box, and run either the adaptive
// or exhaustive builder per the project's cellcomplex.yaml.
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the cell complex from a primitive archive",
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

		graph, err := runBuilder(prims, bound, *cfg)
		if err != nil {
			return fmt.Errorf("building cell complex: %w", err)
		}

		logging.Logger.Info().Int("cells", graph.NumCells()).Int("edges", len(graph.Edges())).Msg("build complete")

		if outSummary != "" {
			if err := writeGraphSummary(outSummary, graph); err != nil {
				return fmt.Errorf("writing graph summary: %w", err)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().StringVarP(&archivePath, "archive", "a", "", "path to the primitive archive (JSON-encoded points/group tensors)")
	buildCmd.Flags().StringVarP(&outSummary, "out", "o", "", "optional path to write a cell/edge count summary")
	buildCmd.MarkFlagRequired("archive")
}

func runBuilder(prims []primitive.Primitive, bound *kernel.Polyhedron, cfg config.Config) (*bsp.Graph, error) {
	if cfg.Exhaustive {
		graph, _, err := bsp.BuildExhaustive(prims, bound, bsp.ExhaustiveConfig{NumWorkers: cfg.NumWorkers})
		return graph, err
	}

	ordering := bsp.OrderingOptimal
	if cfg.Ordering == config.OrderingInput {
		ordering = bsp.OrderingInput
	}
	traversal := bsp.TraversalDepth
	if cfg.Mode == config.ModeWidth {
		traversal = bsp.TraversalWidth
	}
	graph, _, _, err := bsp.BuildAdaptive(prims, bound, bsp.BuildConfig{
		Ordering:       ordering,
		Traversal:      traversal,
		SplitThreshold: cfg.Theta,
	})
	return graph, err
}

// jsonArchive is the CLI's minimal on-disk encoding of primitive.Archive,
// carrying the same four named tensors as a plain JSON document.
type jsonArchive struct {
	Points         [][3]float32 `json:"points"`
	GroupParams    [][4]float32 `json:"group_parameters"`
	GroupNumPoints []int        `json:"group_num_points"`
	GroupPoints    []int32      `json:"group_points"`
}

func loadArchive(path string) (*primitive.Archive, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var ja jsonArchive
	if err := json.Unmarshal(data, &ja); err != nil {
		return nil, fmt.Errorf("parsing archive json: %w", err)
	}
	return &primitive.Archive{
		Points:         ja.Points,
		GroupParams:    ja.GroupParams,
		GroupNumPoints: ja.GroupNumPoints,
		GroupPoints:    ja.GroupPoints,
	}, nil
}

func writeGraphSummary(path string, g *bsp.Graph) error {
	summary := struct {
		Cells int `json:"cells"`
		Edges int `json:"edges"`
	}{Cells: g.NumCells(), Edges: len(g.Edges())}
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

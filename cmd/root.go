package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cellcomplex",
	Short: "cellcomplex - build and extract linear cell complexes from planar primitives",
	Long: `cellcomplex partitions 3D space into convex cells via an adaptive or
exhaustive binary space partition over a set of oriented planar
primitives, builds the resulting cell adjacency graph, simplifies it,
and (given an occupancy labeling) extracts a watertight boundary mesh.`,
	SilenceUsage:      true,
	DisableAutoGenTag: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

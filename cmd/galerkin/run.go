package main

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/rpkgo/galerkin/envconfig"
	"github.com/rpkgo/galerkin/internal/element"
	"github.com/rpkgo/galerkin/internal/galerkin"
	"github.com/rpkgo/galerkin/internal/refine"
)

func newRunCmd() *cobra.Command {
	var iterations int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Resolve configuration from the environment and iterate the demo scene",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := envconfig.Resolve()
			if err != nil {
				return fmt.Errorf("resolve config: %w", err)
			}

			h := element.NewHierarchy()
			scene := newDemoScene(h, cfg.BasisType.MaxBasisSize())
			stats := refine.Stats{TotalSceneArea: 2.0, MaxSelfEmittedRadiance: 1.0}

			solver, err := galerkin.New(cfg, h, scene, alwaysVisibleOracle{}, stats)
			if err != nil {
				return fmt.Errorf("init solver: %w", err)
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"ITER", "CPU SECONDS", "ELEMENTS", "CLUSTERS", "LINKS"})
			table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
			table.SetAlignment(tablewriter.ALIGN_LEFT)
			table.SetHeaderLine(false)
			table.SetBorder(false)
			table.SetNoWhiteSpace(true)
			table.SetTablePadding("    ")

			for i := 0; i < iterations; i++ {
				st := solver.Iterate()
				table.Append([]string{
					fmt.Sprintf("%d", st.IterationNumber),
					fmt.Sprintf("%.6f", st.CPUSeconds),
					fmt.Sprintf("%d", st.Elements),
					fmt.Sprintf("%d", st.Clusters),
					fmt.Sprintf("%d", st.Links),
				})
			}
			table.Render()

			floor := h.Get(scene.floor)
			fmt.Printf("\nfloor radiance[0]: (%.4f, %.4f, %.4f)\n", floor.Radiance[0].R, floor.Radiance[0].G, floor.Radiance[0].B)
			return nil
		},
	}

	cmd.Flags().IntVar(&iterations, "iterations", 1, "number of iterations to run")
	return cmd
}

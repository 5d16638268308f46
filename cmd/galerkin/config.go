package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/rpkgo/galerkin/envconfig"
)

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Resolve and print every GALERKIN_* setting",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := envconfig.Resolve()
			if err != nil {
				return fmt.Errorf("resolve config: %w", err)
			}

			values := cfg.Values()
			names := make([]string, 0, len(values))
			for name := range values {
				names = append(names, name)
			}
			sort.Strings(names)

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"SETTING", "VALUE"})
			table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
			table.SetAlignment(tablewriter.ALIGN_LEFT)
			table.SetBorder(false)
			table.SetHeaderLine(false)
			table.SetTablePadding("    ")

			for _, name := range names {
				table.Append([]string{name, values[name]})
			}
			table.Render()
			return nil
		},
	}
}

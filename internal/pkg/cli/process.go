package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/owi-lab/go-metadatabase/internal/pkg/api/geometry"
	"github.com/owi-lab/go-metadatabase/internal/pkg/frame"
)

func processCommand(root *rootCommand) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process",
		Short: "Assemble the geometry of turbines",
		Long: `Fetch the geometry of the listed turbines and assemble it.

Each turbine is fetched, validated and processed, a summary table
with one row per turbine is printed. With --out the farm-wide
aggregate tables are exported as CSV files into the directory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := root.GeometryApi()
			if err != nil {
				return err
			}

			turbines, _ := cmd.Flags().GetStringSlice("turbines")
			modelDefinition, _ := cmd.Flags().GetString("model-definition")
			concurrency, _ := cmd.Flags().GetInt("concurrency")
			out, _ := cmd.Flags().GetString("out")

			owts, err := api.Processor(root.ctx, turbines, geometry.ProcessorOptions{
				ModelDefinition: modelDefinition,
				Concurrency:     concurrency,
			})
			if err != nil {
				return err
			}

			if err := owts.ProcessStructures(); err != nil {
				return err
			}
			root.logger.Infof("Processed %d of %d requested turbines.", len(owts.Succeeded()), len(turbines))

			if err := renderTable(cmd.OutOrStdout(), owts.AllTurbines()); err != nil {
				return err
			}

			if out == "" {
				return nil
			}
			exports := []struct {
				name string
				data *frame.Frame
			}{
				{"all_turbines.csv", owts.AllTurbines()},
				{"tubular_structures.csv", owts.AllTubularStructures()},
				{"distributed_mass.csv", owts.AllDistributedMass()},
				{"lumped_mass.csv", owts.AllLumpedMass()},
			}
			for _, export := range exports {
				if export.data.Empty() {
					continue
				}
				path := filepath.Join(out, export.name)
				if err := export.data.ExportCSV(root.fs, path); err != nil {
					return err
				}
				root.logger.Infof(`Exported "%s"`, path)
			}
			return nil
		},
	}

	cmd.Flags().SortFlags = true
	cmd.Flags().StringSlice("turbines", nil, "titles of the turbines, comma separated")
	cmd.Flags().String("model-definition", "", "title of the model definition")
	cmd.Flags().Int("concurrency", 4, "how many turbines are fetched in parallel")
	cmd.Flags().String("out", "", "directory for the aggregate CSV exports")
	_ = cmd.MarkFlagRequired("turbines")
	return cmd
}

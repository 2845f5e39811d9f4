package cli

import (
	"github.com/spf13/cobra"

	"github.com/owi-lab/go-metadatabase/internal/pkg/api/geometry"
)

func subAssembliesCommand(root *rootCommand) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subassemblies",
		Short: "List the subassemblies of a turbine",
		Long: `List the subassemblies of one turbine.

The vertical positions are validated and corrected to mm LAT.
Use --model-definition when the turbine has several models.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := root.GeometryApi()
			if err != nil {
				return err
			}

			turbine, _ := cmd.Flags().GetString("turbine")
			site, _ := cmd.Flags().GetString("site")
			subAssemblyType, _ := cmd.Flags().GetString("type")
			modelDefinition, _ := cmd.Flags().GetString("model-definition")

			result, err := api.SubAssemblies(root.ctx, geometry.SubAssembliesOptions{
				AssetLocation:   turbine,
				ProjectSite:     site,
				SubAssemblyType: subAssemblyType,
				ModelDefinition: modelDefinition,
			})
			if err != nil {
				return err
			}

			return renderTable(cmd.OutOrStdout(), result.Data)
		},
	}

	cmd.Flags().SortFlags = true
	cmd.Flags().String("turbine", "", "title of the asset location")
	cmd.Flags().String("site", "", "title of the project site")
	cmd.Flags().String("type", "", "only one subassembly type: TW, TP or MP")
	cmd.Flags().String("model-definition", "", "title of the model definition")
	_ = cmd.MarkFlagRequired("turbine")
	return cmd
}

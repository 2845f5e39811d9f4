package cli

import (
	"github.com/spf13/cobra"

	"github.com/owi-lab/go-metadatabase/internal/pkg/api/locations"
)

func assetsCommand(root *rootCommand) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assets",
		Short: "List the asset locations",
		Long:  "List the asset locations, optionally narrowed down to one project site.",
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := root.LocationsApi()
			if err != nil {
				return err
			}

			site, _ := cmd.Flags().GetString("site")
			result, err := api.AssetLocations(root.ctx, locations.AssetLocationsOptions{ProjectSite: site})
			if err != nil {
				return err
			}

			return renderTable(cmd.OutOrStdout(), result.Data)
		},
	}

	cmd.Flags().SortFlags = true
	cmd.Flags().String("site", "", "only assets of this project site")
	return cmd
}

package cli

import (
	"github.com/spf13/cobra"
)

func projectSitesCommand(root *rootCommand) *cobra.Command {
	return &cobra.Command{
		Use:   "projectsites",
		Short: "List the project sites",
		Long:  "List the wind farm project sites available in the metadatabase.",
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := root.LocationsApi()
			if err != nil {
				return err
			}

			result, err := api.ProjectSites(root.ctx)
			if err != nil {
				return err
			}

			return renderTable(cmd.OutOrStdout(), result.Data)
		},
	}
}

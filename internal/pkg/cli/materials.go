package cli

import (
	"github.com/spf13/cobra"
)

func materialsCommand(root *rootCommand) *cobra.Command {
	return &cobra.Command{
		Use:   "materials",
		Short: "List the structural materials",
		Long:  "List the structural materials defined in the metadatabase.",
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := root.GeometryApi()
			if err != nil {
				return err
			}

			result, err := api.Materials(root.ctx)
			if err != nil {
				return err
			}

			return renderTable(cmd.OutOrStdout(), result.Data)
		},
	}
}

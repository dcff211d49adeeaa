package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func loadCmd() *cobra.Command {
	var reload bool

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load the catalog from the backend",
		Long: "Fetch tests, bundles, and areas from the laboratory backend and\n" +
			"refresh the local cache. If the backend is unreachable the cached\n" +
			"catalog is used and reported as such.",
		Example: `  # Load, falling back to the cache on failure
  labcat load

  # Discard the cache before loading
  labcat load --reload`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				if _, err := a.load(cmd.Context(), reload); err != nil {
					if jsonOutput() {
						_ = outputJSON(a.catalog.Status())
					}
					return fmt.Errorf("loading catalog: %w", err)
				}
				if jsonOutput() {
					return outputJSON(a.catalog.Status())
				}
				return printStatus(a.catalog.Status())
			})
		},
	}
	cmd.Flags().BoolVar(&reload, "reload", false, "clear the cache before loading")

	return cmd
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func favoritesCmd() *cobra.Command {
	favRoot := &cobra.Command{
		Use:     "favorites",
		Aliases: []string{"fav"},
		Short:   "Manage favorite studies",
	}

	favRoot.AddCommand(
		favoritesToggleCmd(),
		favoritesListCmd(),
		favoritesStatsCmd(),
	)

	return favRoot
}

func favoritesToggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "toggle <id>...",
		Short:   "Add or remove studies from favorites",
		Example: `  labcat favorites toggle test-1042 bundle-7`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				// Favorites work offline; the catalog is only used to warn
				// about ids it does not know.
				if err := a.mustLoad(cmd.Context()); err != nil {
					a.log.Debug("toggling without a catalog", "error", err)
				}
				snap := a.catalog.Snapshot()

				for _, id := range args {
					if snap != nil && snap.Lookup(id) == nil && !a.favorites.IsFavorite(id) {
						fmt.Println(warnStyle.Render(fmt.Sprintf("warning: %s is not in the catalog", id)))
					}
					on, err := a.favorites.Toggle(cmd.Context(), id)
					if err != nil {
						return err
					}
					state := "removed from"
					if on {
						state = "added to"
					}
					fmt.Printf("%s %s favorites\n", id, state)
				}
				return nil
			})
		},
	}
}

func favoritesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List favorite studies",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				if err := a.mustLoad(cmd.Context()); err != nil {
					a.log.Warn("catalog unavailable, listing ids only", "error", err)
				}

				entries, unresolved := a.favorites.Entries(a.catalog.Snapshot())
				if jsonOutput() {
					return outputJSON(map[string]any{"studies": entries, "unresolved": unresolved})
				}
				if len(entries) == 0 && len(unresolved) == 0 {
					fmt.Println("No favorites yet.")
					return nil
				}
				if len(entries) > 0 {
					if err := printStudiesTable(entries, a.favorites.IsFavorite); err != nil {
						return err
					}
				}
				if len(unresolved) > 0 {
					fmt.Println(dimStyle.Render(fmt.Sprintf("\nnot in the current catalog: %v", unresolved)))
				}
				return nil
			})
		},
	}
}

func favoritesStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize favorites by study type",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				if err := a.mustLoad(cmd.Context()); err != nil {
					a.log.Warn("catalog unavailable, favorites are unresolved", "error", err)
				}

				st := a.favorites.Stats(a.catalog.Snapshot())
				if jsonOutput() {
					return outputJSON(st)
				}
				return printFavoriteStats(st)
			})
		},
	}
}

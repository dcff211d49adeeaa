package cmd

import (
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	domain "github.com/donaldgifford/lab-catalog/pkg/types"
)

func categoriesCmd() *cobra.Command {
	var (
		level string
		tree  bool
	)

	cmd := &cobra.Command{
		Use:   "categories [category]",
		Short: "List categories or the studies in one",
		Example: `  # Every category label
  labcat categories

  # Studies grouped by type
  labcat categories --tree

  # Studies whose level1 label is Hematología
  labcat categories Hematología --level level1`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lvl := domain.CategoryLevel(level)
			if !lvl.Valid() {
				return fmt.Errorf("level must be one of %v", domain.CategoryLevels)
			}

			return withApp(cmd.Context(), func(a *app) error {
				if err := a.mustLoad(cmd.Context()); err != nil {
					return fmt.Errorf("loading catalog: %w", err)
				}

				switch {
				case len(args) == 1:
					entries := a.catalog.EntriesByCategory(args[0], lvl)
					if jsonOutput() {
						return outputJSON(entries)
					}
					if len(entries) == 0 {
						fmt.Println("No studies found.")
						return nil
					}
					return printStudiesTable(entries, a.favorites.IsFavorite)
				case tree:
					t := a.catalog.Tree()
					if jsonOutput() {
						return outputJSON(t)
					}
					return printTree(t)
				}

				c := a.catalog.Categories()
				if jsonOutput() {
					return outputJSON(c)
				}
				return printCategories(c)
			})
		},
	}
	cmd.Flags().StringVar(&level, "level", string(domain.LevelStudyType),
		"field the category is matched against (studyType, level1, level2, sourceType)")
	cmd.Flags().BoolVar(&tree, "tree", false, "show studies grouped by type")

	return cmd
}

func printTree(t map[string][]domain.CatalogEntry) error {
	groups := make([]string, 0, len(t))
	for g := range t {
		groups = append(groups, g)
	}
	slices.Sort(groups)

	tw := newTabWriter(os.Stdout)
	for _, g := range groups {
		tw.writef("%s (%d)\n", g, len(t[g]))
		for i := range t[g] {
			tw.writef("  %s\t%s\t%s\n", t[g][i].ID, truncate(t[g][i].Name, 48), formatPrice(t[g][i].Price))
		}
	}
	return tw.finish()
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show catalog and favorites totals",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				if err := a.mustLoad(cmd.Context()); err != nil {
					return fmt.Errorf("loading catalog: %w", err)
				}

				st := a.catalog.Stats()
				fav := a.favorites.Stats(a.catalog.Snapshot())
				if jsonOutput() {
					return outputJSON(map[string]any{"catalog": st, "favorites": fav})
				}
				return printStats(st, fav)
			})
		},
	}
}

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/lab-catalog/internal/filter"
)

func studiesCmd() *cobra.Command {
	studiesRoot := &cobra.Command{
		Use:     "studies",
		Aliases: []string{"study"},
		Short:   "List and inspect catalog entries",
	}

	studiesRoot.AddCommand(
		studiesListCmd(),
		studiesGetCmd(),
	)

	return studiesRoot
}

func studiesListCmd() *cobra.Command {
	var (
		filters []string
		limit   int
		offset  int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List studies with optional filters",
		Long: "List catalog entries in catalog order. Filters are combined with AND.\n\n" +
			"Filter keys: category, level, price, delivery, area.",
		Example: `  # Every bundle
  labcat studies list --filter category=Bundle/Profile

  # Chemistry tests under 500
  labcat studies list -f category=Química -f level=level1 -f price=0-500

  # Page through the catalog
  labcat studies list --limit 50 --offset 100`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := filter.ParseFilters(filters)
			if err != nil {
				return err
			}
			warnFilters(os.Stderr, f)

			return withApp(cmd.Context(), func(a *app) error {
				if err := a.mustLoad(cmd.Context()); err != nil {
					return fmt.Errorf("loading catalog: %w", err)
				}

				matched := filter.Apply(a.catalog.Snapshot().Entries, f)
				shown := page(matched, offset, limit)

				if jsonOutput() {
					return outputJSON(shown)
				}
				if len(shown) == 0 {
					fmt.Println("No studies found.")
					return nil
				}
				fmt.Printf("Showing %d of %d studies\n\n", len(shown), len(matched))
				return printStudiesTable(shown, a.favorites.IsFavorite)
			})
		},
	}
	cmd.Flags().StringArrayVarP(&filters, "filter", "f", nil, "filter as key=value (repeatable)")
	cmd.Flags().IntVar(&limit, "limit", 50, "number of results")
	cmd.Flags().IntVar(&offset, "offset", 0, "result offset")

	return cmd
}

func studiesGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "get <id>",
		Short:   "Show study details",
		Example: `  labcat studies get test-1042`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				if err := a.mustLoad(cmd.Context()); err != nil {
					return fmt.Errorf("loading catalog: %w", err)
				}

				e, ok := a.catalog.EntryByID(args[0])
				if !ok {
					return fmt.Errorf("study %q not found", args[0])
				}
				if jsonOutput() {
					return outputJSON(e)
				}
				return printStudyDetail(e, a.favorites.IsFavorite(e.ID))
			})
		},
	}
}

func page[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	return head(items, limit)
}

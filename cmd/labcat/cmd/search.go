package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/lab-catalog/internal/filter"
	"github.com/donaldgifford/lab-catalog/internal/search"
)

func searchCmd() *cobra.Command {
	var (
		filters     []string
		remote      bool
		interactive bool
		limit       int
	)

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search the catalog",
		Long: "Rank catalog entries by approximate match on name, code, study\n" +
			"type, and description. Filters narrow the ranked results.\n\n" +
			"Filter keys: category, level, price, delivery, area.",
		Example: `  # Typo-tolerant search
  labcat search glucoza

  # Search with filters
  labcat search perfil --filter price=1000+ --filter delivery=24h

  # Ask the backend instead of the local index
  labcat search urea --remote

  # Search as you type
  labcat search -i`,
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			f, err := filter.ParseFilters(filters)
			if err != nil {
				return err
			}
			warnFilters(os.Stderr, f)

			return withApp(cmd.Context(), func(a *app) error {
				if err := a.mustLoad(cmd.Context()); err != nil {
					return fmt.Errorf("loading catalog: %w", err)
				}
				switch {
				case interactive:
					a.session.SetFilters(f)
					return runInteractive(cmd.Context(), a, limit)
				case remote:
					return runRemoteSearch(cmd.Context(), a, query, f, limit)
				}

				a.session.SetFilters(f)
				view := a.session.Search(query)
				if jsonOutput() {
					view.Results = head(view.Results, limit)
					return outputJSON(view)
				}
				return printView(a, view, limit)
			})
		},
	}
	cmd.Flags().StringArrayVarP(&filters, "filter", "f", nil, "filter as key=value (repeatable)")
	cmd.Flags().BoolVar(&remote, "remote", false, "search on the backend")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "read queries from stdin as you type")
	cmd.Flags().IntVar(&limit, "limit", 20, "number of results to show")

	return cmd
}

func runRemoteSearch(ctx context.Context, a *app, query string, f filter.Filters, limit int) error {
	res := a.catalog.RemoteSearch(ctx, query)
	entries := filter.Apply(res.Entries, f)
	if res.Local {
		fmt.Fprintln(os.Stderr, warnStyle.Render("backend search failed, showing local matches: "+res.Err.Error()))
	}
	if jsonOutput() {
		return outputJSON(head(entries, limit))
	}
	if len(entries) == 0 {
		fmt.Println("No studies found.")
		return nil
	}
	fmt.Printf("Showing %d of %d studies\n\n", min(limit, len(entries)), len(entries))
	return printStudiesTable(head(entries, limit), a.favorites.IsFavorite)
}

func printView(a *app, view search.View, limit int) error {
	if len(view.Active) > 0 {
		parts := make([]string, len(view.Active))
		for i, kv := range view.Active {
			parts[i] = kv.Key + "=" + kv.Value
		}
		fmt.Println(dimStyle.Render("filters: " + strings.Join(parts, " ")))
	}
	if len(view.Results) == 0 {
		fmt.Println("No studies found.")
		if len(view.Suggestions) > 0 {
			names := make([]string, len(view.Suggestions))
			for i, s := range view.Suggestions {
				names[i] = s.Name
			}
			fmt.Println(dimStyle.Render("did you mean: " + strings.Join(names, ", ")))
		}
		return nil
	}
	fmt.Printf("Showing %d of %d studies\n\n", min(limit, len(view.Results)), len(view.Results))
	return printResultsTable(head(view.Results, limit), a.favorites.IsFavorite)
}

// runInteractive reads lines from stdin. Plain lines are queries and go
// through the session debounce; lines starting with ":" are commands.
func runInteractive(ctx context.Context, a *app, limit int) error {
	views := make(chan search.View, 1)
	a.session.Subscribe(func(v search.View) {
		select {
		case views <- v:
		default:
			// Drop a stale undisplayed view in favor of the newest.
			select {
			case <-views:
			default:
			}
			views <- v
		}
	})

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case v := <-views:
				_ = printView(a, v, limit)
				fmt.Print("> ")
			}
		}
	}()

	fmt.Println(dimStyle.Render("type to search; :filter key=value, :unfilter key, :clear, :history, :quit"))
	fmt.Print("> ")

	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if !strings.HasPrefix(line, ":") {
			a.session.SetQuery(line)
			continue
		}

		verb, arg, _ := strings.Cut(strings.TrimPrefix(line, ":"), " ")
		var err error
		switch verb {
		case "quit", "q":
			return nil
		case "filter":
			key, value, _ := strings.Cut(arg, "=")
			if err = a.session.SetFilter(key, value); err == nil {
				var added filter.Filters
				_ = added.Set(key, value)
				warnFilters(os.Stderr, added)
			}
		case "unfilter":
			err = a.session.RemoveFilter(arg)
		case "clear":
			a.session.Clear()
		case "history":
			for _, q := range a.session.History() {
				fmt.Println(" ", q)
			}
			fmt.Print("> ")
		default:
			err = fmt.Errorf("unknown command %q", verb)
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, warnStyle.Render(err.Error()))
			fmt.Print("> ")
		}
	}
	a.session.Flush()
	return sc.Err()
}

func head[T any](items []T, n int) []T {
	if n <= 0 || n >= len(items) {
		return items
	}
	return items[:n]
}

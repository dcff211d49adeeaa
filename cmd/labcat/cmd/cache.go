package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/lab-catalog/internal/cache"
)

func cacheCmd() *cobra.Command {
	cacheRoot := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the cached catalog",
	}

	cacheRoot.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show what is cached",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withApp(cmd.Context(), func(a *app) error {
					cached, err := cache.New(a.store).Load(cmd.Context())
					if errors.Is(err, cache.ErrMiss) {
						fmt.Println("Cache is empty.")
						return nil
					}
					if err != nil {
						return err
					}

					cachedAt := time.UnixMilli(cached.Timestamp)
					if jsonOutput() {
						return outputJSON(map[string]any{
							"backend":   a.cfg.Storage.Backend,
							"cached_at": cachedAt,
							"entries":   cached.Snapshot.TotalEntries,
							"tests":     cached.Snapshot.TotalTests,
							"bundles":   cached.Snapshot.TotalBundles,
						})
					}

					tw := newTabWriter(os.Stdout)
					tw.writef("Backend:\t%s\n", a.cfg.Storage.Backend)
					tw.writef("Cached:\t%s (%s ago)\n", cachedAt.Format(time.DateTime),
						cached.Age(time.Now()).Round(time.Second))
					tw.writef("Entries:\t%d\n", cached.Snapshot.TotalEntries)
					tw.writef("Tests:\t%d\n", cached.Snapshot.TotalTests)
					tw.writef("Bundles:\t%d\n", cached.Snapshot.TotalBundles)
					return tw.finish()
				})
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Delete the cached catalog",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withApp(cmd.Context(), func(a *app) error {
					if err := cache.New(a.store).Clear(cmd.Context()); err != nil {
						return err
					}
					fmt.Println("Cache cleared.")
					return nil
				})
			},
		},
	)

	return cacheRoot
}

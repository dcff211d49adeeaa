package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func exportCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the loaded catalog as JSON",
		Example: `  labcat export > catalog.json
  labcat export --out catalog.json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(a *app) (err error) {
				if err := a.mustLoad(cmd.Context()); err != nil {
					return fmt.Errorf("loading catalog: %w", err)
				}

				var w io.Writer = os.Stdout
				if out != "" {
					f, err := os.Create(out) //nolint:gosec // path from CLI flag
					if err != nil {
						return fmt.Errorf("creating %s: %w", out, err)
					}
					defer func() { err = errors.Join(err, f.Close()) }()
					w = f
				}
				return a.catalog.Export(w)
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")

	return cmd
}

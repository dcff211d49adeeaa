// Package cmd implements the labcat CLI commands.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "labcat",
		Short: "Browse and search a laboratory test catalog",
		Long: "labcat loads the test and bundle catalog from a laboratory backend,\n" +
			"caches it locally, and lets you search, filter, and favorite studies\n" +
			"from the terminal or through a local HTTP API.",
		SilenceUsage: true,
	}
)

// Root returns the root cobra command for documentation generation.
func Root() *cobra.Command {
	return rootCmd
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command
// context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().
		StringVar(&cfgFile, "config", "", "config file (default: built-in defaults)")
	rootCmd.PersistentFlags().
		String("api-url", "", "laboratory backend base URL (overrides config)")
	rootCmd.PersistentFlags().
		String("output", "table", "output format (table, json)")
	rootCmd.PersistentFlags().
		String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().
		String("log-format", "", "log format (text, json, pretty)")

	for _, name := range []string{"api-url", "output", "log-level", "log-format"} {
		cobra.CheckErr(viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name)))
	}

	rootCmd.AddCommand(
		loadCmd(),
		searchCmd(),
		studiesCmd(),
		categoriesCmd(),
		statsCmd(),
		favoritesCmd(),
		cacheCmd(),
		exportCmd(),
		serveCmd(),
		versionCmd(),
	)
}

func initConfig() {
	// A missing .env is normal; anything else is worth a warning.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "Ignoring .env:", err)
	}

	viper.SetEnvPrefix("LABCAT")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if cfgFile == "" {
		cfgFile = viper.GetString("config")
	}
}

func jsonOutput() bool {
	return viper.GetString("output") == "json"
}

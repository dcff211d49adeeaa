// Package main generates the labcat CLI reference from the command tree.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/donaldgifford/lab-catalog/cmd/labcat/cmd"
)

// Output formats.
const (
	formatMarkdown = "markdown"
	formatMan      = "man"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(args []string, stdout io.Writer) error {
	fset := flag.NewFlagSet("docgen", flag.ContinueOnError)
	output := fset.String("output", "docs/cli", "output directory")
	format := fset.String("format", formatMarkdown, "output format: markdown or man")
	if err := fset.Parse(args); err != nil {
		return err
	}

	if err := os.MkdirAll(*output, 0o750); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	root := cmd.Root()
	root.DisableAutoGenTag = true

	if err := generate(root, *format, *output); err != nil {
		return err
	}

	_, err := fmt.Fprintf(stdout, "labcat %s docs generated in %s/\n", *format, *output)
	return err
}

func generate(root *cobra.Command, format, dir string) error {
	switch format {
	case formatMarkdown:
		// Pages link to each other by file name so the tree renders on
		// GitHub without a site generator.
		link := func(name string) string { return "./" + name }
		if err := doc.GenMarkdownTreeCustom(root, dir, frontMatter, link); err != nil {
			return fmt.Errorf("generating markdown: %w", err)
		}
	case formatMan:
		header := &doc.GenManHeader{Title: "LABCAT", Section: "1", Source: "lab-catalog"}
		if err := doc.GenManTree(root, header, dir); err != nil {
			return fmt.Errorf("generating man pages: %w", err)
		}
	default:
		return fmt.Errorf("unknown format %q (want %s or %s)", format, formatMarkdown, formatMan)
	}
	return nil
}

// frontMatter titles each page after its command path, e.g.
// labcat_studies_list.md becomes "labcat studies list".
func frontMatter(filename string) string {
	name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	return fmt.Sprintf("---\ntitle: %q\n---\n\n", strings.ReplaceAll(name, "_", " "))
}

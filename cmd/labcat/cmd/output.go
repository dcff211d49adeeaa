package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/donaldgifford/lab-catalog/internal/catalog"
	"github.com/donaldgifford/lab-catalog/internal/filter"
	"github.com/donaldgifford/lab-catalog/internal/search"
	domain "github.com/donaldgifford/lab-catalog/pkg/types"
)

var (
	matchStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// tabWriter wraps tabwriter with error tracking.
type tabWriter struct {
	*tabwriter.Writer
	err error
}

func newTabWriter(w io.Writer) *tabWriter {
	return &tabWriter{Writer: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

func (tw *tabWriter) writef(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.Writer, format, args...)
}

func (tw *tabWriter) finish() error {
	if tw.err != nil {
		return tw.err
	}
	return tw.Flush()
}

// warnFilters reports filter values that will be ignored. The command
// still runs with the remaining filters.
func warnFilters(w io.Writer, f filter.Filters) {
	for _, msg := range f.Warnings() {
		fmt.Fprintln(w, warnStyle.Render("warning: "+msg))
	}
}

func printStudiesTable(entries []domain.CatalogEntry, favorite func(string) bool) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("\tID\tNAME\tTYPE\tCATEGORY\tPRICE\tDELIVERY\n")
	for i := range entries {
		e := &entries[i]
		tw.writef("%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			star(favorite(e.ID)),
			e.ID,
			truncate(e.Name, 48),
			e.StudyType,
			truncate(e.Level1, 24),
			formatPrice(e.Price),
			orDash(e.DeliveryTime),
		)
	}
	return tw.finish()
}

// renderMatch styles one highlighted run of a result name.
func renderMatch(s string) string {
	return matchStyle.Render(s)
}

// printResultsTable renders ranked results with the matched parts of the
// name highlighted.
func printResultsTable(results []search.Result, favorite func(string) bool) error {
	return writeResultsTable(os.Stdout, results, favorite, renderMatch)
}

// writeResultsTable keeps the styled name in the trailing cell so escape
// sequences never count towards tabwriter column widths.
func writeResultsTable(
	w io.Writer,
	results []search.Result,
	favorite func(string) bool,
	mark func(string) string,
) error {
	tw := newTabWriter(w)
	tw.writef("\tID\tTYPE\tPRICE\tSCORE\tNAME\n")
	for i := range results {
		r := &results[i]
		name := truncate(r.Entry.Name, 48)
		if m, ok := r.Match(search.FieldName); ok && name == r.Entry.Name {
			name = search.Highlight(name, m.Spans, mark)
		}
		tw.writef("%s\t%s\t%s\t%s\t%.3f\t%s\n",
			star(favorite(r.Entry.ID)),
			r.Entry.ID,
			r.Entry.StudyType,
			formatPrice(r.Entry.Price),
			r.Score,
			name,
		)
	}
	return tw.finish()
}

func printStudyDetail(e *domain.CatalogEntry, favorite bool) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("ID:\t%s\n", e.ID)
	tw.writef("Code:\t%s\n", orDash(e.Code))
	tw.writef("Name:\t%s\n", e.Name)
	tw.writef("Type:\t%s\n", e.StudyType)
	tw.writef("Hierarchy:\t%s\n", orDash(strings.Join(e.Hierarchy(), " > ")))
	tw.writef("Area:\t%s\n", orDash(e.Area))
	tw.writef("Sample:\t%s\n", orDash(e.SampleType))
	tw.writef("Price:\t%s\n", formatPrice(e.Price))
	tw.writef("Delivery:\t%s\n", orDash(e.DeliveryTime))
	tw.writef("Preparation:\t%s\n", orDash(e.Preparation))
	if e.SourceType == domain.SourceBundle {
		tw.writef("Studies:\t%d\n", e.BundleSize)
	}
	tw.writef("Favorite:\t%v\n", favorite)
	if e.Description != "" {
		tw.writef("Description:\t%s\n", e.Description)
	}
	return tw.finish()
}

func printStatus(st catalog.Status) error {
	tw := newTabWriter(os.Stdout)
	switch {
	case st.Error != "" && !st.Ready:
		tw.writef("Status:\tfailed\n")
	case st.FromCache:
		tw.writef("Status:\t%s\n", warnStyle.Render("cached"))
	case st.Ready:
		tw.writef("Status:\tready\n")
	default:
		tw.writef("Status:\tnot loaded\n")
	}
	tw.writef("Entries:\t%d\n", st.Entries)
	tw.writef("Generation:\t%d\n", st.Generation)
	if !st.LoadedAt.IsZero() {
		tw.writef("Loaded:\t%s\n", st.LoadedAt.Format(time.DateTime))
	}
	if !st.CachedAt.IsZero() {
		tw.writef("Cached:\t%s (%s ago)\n", st.CachedAt.Format(time.DateTime),
			time.Since(st.CachedAt).Round(time.Second))
	}
	if st.Error != "" {
		tw.writef("Error:\t%s\n", st.Error)
	}
	return tw.finish()
}

func printCategories(c domain.Categories) error {
	tw := newTabWriter(os.Stdout)
	studyTypes := make([]string, len(c.StudyTypes))
	for i, t := range c.StudyTypes {
		studyTypes[i] = string(t)
	}
	tw.writef("Study types:\t%s\n", strings.Join(studyTypes, ", "))
	tw.writef("Level 1:\t%s\n", joinOrDash(c.Level1))
	tw.writef("Level 2:\t%s\n", joinOrDash(c.Level2))
	tw.writef("Areas:\t%s\n", joinOrDash(c.Areas))
	return tw.finish()
}

func printStats(st domain.CatalogStats, fav domain.FavoriteStats) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("Entries:\t%d\n", st.TotalEntries)
	tw.writef("Tests:\t%d\n", st.TotalTests)
	tw.writef("Bundles:\t%d\n", st.TotalBundles)
	tw.writef("Priced:\t%d\n", st.EntriesPriced)
	tw.writef("Average price:\t%s\n", formatPrice(st.AveragePrice))
	writeFavoriteStats(tw, fav)
	return tw.finish()
}

func printFavoriteStats(fav domain.FavoriteStats) error {
	tw := newTabWriter(os.Stdout)
	writeFavoriteStats(tw, fav)
	return tw.finish()
}

func writeFavoriteStats(tw *tabWriter, fav domain.FavoriteStats) {
	tw.writef("Favorites:\t%d\n", fav.Total)
	for _, t := range domain.StudyTypes {
		tw.writef("  %s:\t%d\n", t, fav.ByStudyType[t])
	}
	if fav.Unresolved > 0 {
		tw.writef("  not in catalog:\t%d\n", fav.Unresolved)
	}
}

func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatPrice(p float64) string {
	if p <= 0 {
		return "-"
	}
	return fmt.Sprintf("$%.2f", p)
}

func star(on bool) string {
	if on {
		return "*"
	}
	return " "
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func joinOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}

// truncate shortens s to maxLen runes.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

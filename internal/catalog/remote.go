package catalog

import (
	"context"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/donaldgifford/lab-catalog/internal/labapi"
	domain "github.com/donaldgifford/lab-catalog/pkg/types"
)

// minRemoteQuery is the shortest query sent to the backend search endpoint.
const minRemoteQuery = 2

// RemoteResult holds the entries returned by RemoteSearch.
type RemoteResult struct {
	Entries []domain.CatalogEntry
	// Local is set when the backend search failed and the published
	// snapshot was searched instead.
	Local bool
	Err   error
}

// RemoteSearch runs a server-side search. Queries shorter than two runes
// return every published entry. A failed backend call falls back to a
// substring match over the local search text.
func (c *Catalog) RemoteSearch(ctx context.Context, query string) *RemoteResult {
	q := strings.TrimSpace(query)
	if utf8.RuneCountInString(q) < minRemoteQuery {
		var entries []domain.CatalogEntry
		if snap := c.Snapshot(); snap != nil {
			entries = slices.Clone(snap.Entries)
		}
		return &RemoteResult{Entries: entries}
	}

	ctx, span := c.tracer.Start(ctx, "catalog.RemoteSearch")
	defer span.End()

	res, err := c.api.Search(ctx, labapi.SearchParams{
		Query:       q,
		PriceListID: c.params.PriceListID,
	})
	if err != nil {
		span.RecordError(err)
		c.log.Warn("remote search failed, searching locally", "query", q, "error", err)
		return &RemoteResult{
			Entries: c.localSearch(q),
			Local:   true,
			Err:     classify("search", err),
		}
	}

	entries := make([]domain.CatalogEntry, 0, len(res.Tests)+len(res.Bundles))
	seen := make(map[string]struct{}, cap(entries))
	entries = appendValid(entries, seen, testEntries(res.Tests))
	entries = appendValid(entries, seen, bundleEntries(res.Bundles))
	return &RemoteResult{Entries: entries}
}

func (c *Catalog) localSearch(q string) []domain.CatalogEntry {
	snap := c.Snapshot()
	if snap == nil {
		return nil
	}

	needle := strings.ToLower(q)
	var out []domain.CatalogEntry
	for i := range snap.Entries {
		if strings.Contains(snap.Entries[i].SearchText, needle) {
			out = append(out, snap.Entries[i])
		}
	}
	return out
}

package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetricsRegistered(t *testing.T) {
	t.Parallel()

	// Verify all metrics are non-nil (registered via promauto on package init).
	assert.NotNil(t, HTTPRequestDuration)
	assert.NotNil(t, HTTPRequestsTotal)
	assert.NotNil(t, HealthzUp)
	assert.NotNil(t, ReadyzUp)
	assert.NotNil(t, APICallsTotal)
	assert.NotNil(t, APICallDuration)
	assert.NotNil(t, CatalogLoadsTotal)
	assert.NotNil(t, CatalogLoadDuration)
	assert.NotNil(t, CatalogEntries)
	assert.NotNil(t, CatalogRecordsSkippedTotal)
	assert.NotNil(t, CacheHitsTotal)
	assert.NotNil(t, CacheMissesTotal)
	assert.NotNil(t, CacheWriteErrorsTotal)
	assert.NotNil(t, SearchQueriesTotal)
	assert.NotNil(t, SearchQueryDuration)
	assert.NotNil(t, SearchSupersededTotal)
	assert.NotNil(t, SearchIndexRebuildsTotal)
	assert.NotNil(t, FavoritesToggledTotal)
	assert.NotNil(t, FavoritesCount)
}

package kv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationFiles(t *testing.T) {
	t.Parallel()

	files, err := migrationFiles()
	require.NoError(t, err)
	require.NotEmpty(t, files)
	assert.Equal(t, "001_kv_entries.sql", files[0])
	assert.IsNonDecreasing(t, files)
}

func TestPendingMigrations(t *testing.T) {
	t.Parallel()

	all := []string{"001_kv_entries.sql", "002_kv_index.sql", "003_kv_ttl.sql"}

	tests := []struct {
		name    string
		applied map[string]bool
		want    []string
	}{
		{name: "fresh database", applied: map[string]bool{}, want: all},
		{name: "partly migrated", applied: map[string]bool{"001_kv_entries.sql": true}, want: all[1:]},
		{
			name:    "up to date",
			applied: map[string]bool{"001_kv_entries.sql": true, "002_kv_index.sql": true, "003_kv_ttl.sql": true},
		},
		{name: "unknown applied versions ignored", applied: map[string]bool{"900_removed.sql": true}, want: all},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, pendingMigrations(all, tt.applied))
		})
	}
}

//go:build integration

package kv_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/donaldgifford/lab-catalog/internal/kv"
)

func setupPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("labcat_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, pgContainer.Terminate(ctx))
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return connStr
}

func TestPostgresStore(t *testing.T) {
	connStr := setupPostgres(t)
	ctx := context.Background()

	s, err := kv.NewPostgresStore(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Ping(ctx))
	exerciseStore(t, s)
}

func TestPostgresStore_MigrationsIdempotent(t *testing.T) {
	connStr := setupPostgres(t)
	ctx := context.Background()

	first, err := kv.NewPostgresStore(ctx, connStr)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "favorites", []byte(`{"ids":["test-1"]}`)))
	require.NoError(t, first.Close())

	second, err := kv.NewPostgresStore(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Close() })

	got, err := second.Get(ctx, "favorites")
	require.NoError(t, err)
	assert.JSONEq(t, `{"ids":["test-1"]}`, string(got))
}

func TestPostgresStore_ConcurrentStartup(t *testing.T) {
	connStr := setupPostgres(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 3)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := kv.NewPostgresStore(ctx, connStr)
			if err == nil {
				_ = s.Close()
			}
			errs[i] = err
		}()
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
}

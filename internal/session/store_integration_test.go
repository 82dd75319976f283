// Integration tests use testcontainers-go to spin up PostgreSQL and Redis.
// They are skipped when Docker is not available.
package session

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// checkDockerAvailable checks if Docker is available and running
func checkDockerAvailable() bool {
	cmd := exec.Command("docker", "info")
	err := cmd.Run()
	return err == nil
}

// setupPostgres creates a PostgreSQL container and returns a migrated store
func setupPostgres(t *testing.T) (*PostgresStore, func()) {
	if !checkDockerAvailable() {
		t.Skip("Docker is not available, skipping integration test")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	store := NewPostgresStore(pool)
	require.NoError(t, store.Migrate(ctx))

	cleanup := func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	}

	return store, cleanup
}

// setupRedis creates a Redis container and returns a store on it
func setupRedis(t *testing.T, ttl time.Duration) (*RedisStore, *redis.Client, func()) {
	if !checkDockerAvailable() {
		t.Skip("Docker is not available, skipping integration test")
	}

	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)

	addr, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	rdb := redis.NewClient(&redis.Options{Addr: addr})
	require.NoError(t, rdb.Ping(ctx).Err())

	cleanup := func() {
		_ = rdb.Close()
		_ = container.Terminate(ctx)
	}

	return NewRedisStore(rdb, ttl), rdb, cleanup
}

// ============================================================================
// PostgresStore Tests
// ============================================================================

func TestPostgresStore_RoundTrip(t *testing.T) {
	store, cleanup := setupPostgres(t)
	defer cleanup()

	ctx := context.Background()

	s, err := store.Load(ctx, "tg:1:2")
	require.NoError(t, err)
	assert.True(t, s.Empty())

	require.NoError(t, s.Set("chess.step", 3))
	require.NoError(t, s.Set("chess.difficulty", "hard"))
	require.NoError(t, store.Save(ctx, s))
	assert.False(t, s.UpdatedAt.IsZero())

	loaded, err := store.Load(ctx, "tg:1:2")
	require.NoError(t, err)

	var step int
	var diff string
	assert.True(t, loaded.Get("chess.step", &step))
	assert.True(t, loaded.Get("chess.difficulty", &diff))
	assert.Equal(t, 3, step)
	assert.Equal(t, "hard", diff)

	// Upsert overwrites
	loaded.Forget("chess.difficulty")
	require.NoError(t, store.Save(ctx, loaded))

	again, err := store.Load(ctx, "tg:1:2")
	require.NoError(t, err)
	assert.False(t, again.Has("chess.difficulty"))
}

func TestPostgresStore_SaveEmptyDeletes(t *testing.T) {
	store, cleanup := setupPostgres(t)
	defer cleanup()

	ctx := context.Background()

	s := New("gone")
	require.NoError(t, s.Set("k", 1))
	require.NoError(t, store.Save(ctx, s))

	s.Forget("k")
	require.NoError(t, store.Save(ctx, s))

	loaded, err := store.Load(ctx, "gone")
	require.NoError(t, err)
	assert.True(t, loaded.Empty())
}

func TestPostgresStore_Purge(t *testing.T) {
	store, cleanup := setupPostgres(t)
	defer cleanup()

	ctx := context.Background()

	for _, id := range []string{"a", "b"} {
		s := New(id)
		require.NoError(t, s.Set("k", id))
		require.NoError(t, store.Save(ctx, s))
	}

	removed, err := store.Purge(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, removed)

	removed, err = store.Purge(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
}

// ============================================================================
// RedisStore Tests
// ============================================================================

func TestRedisStore_RoundTrip(t *testing.T) {
	store, _, cleanup := setupRedis(t, time.Hour)
	defer cleanup()

	ctx := context.Background()

	s, err := store.Load(ctx, "console:1")
	require.NoError(t, err)
	assert.True(t, s.Empty())

	require.NoError(t, s.Set("wordchain.chain", []string{"cat", "tiger"}))
	require.NoError(t, store.Save(ctx, s))

	loaded, err := store.Load(ctx, "console:1")
	require.NoError(t, err)

	var chain []string
	require.True(t, loaded.Get("wordchain.chain", &chain))
	assert.Equal(t, []string{"cat", "tiger"}, chain)

	require.NoError(t, store.Delete(ctx, "console:1"))
	loaded, err = store.Load(ctx, "console:1")
	require.NoError(t, err)
	assert.True(t, loaded.Empty())
}

func TestRedisStore_TTLApplied(t *testing.T) {
	store, rdb, cleanup := setupRedis(t, 10*time.Minute)
	defer cleanup()

	ctx := context.Background()

	s := New("ttl")
	require.NoError(t, s.Set("k", 1))
	require.NoError(t, store.Save(ctx, s))

	ttl, err := rdb.TTL(ctx, redisKeyPrefix+"ttl").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 9*time.Minute)
}

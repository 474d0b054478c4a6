package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/storeradar/radar-service/internal/database"
	"github.com/storeradar/radar-service/internal/preference"
	"github.com/storeradar/radar-service/internal/recommend"
)

const testSchema = "radar test"

func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err, "Failed to start postgres container")

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "Failed to get connection string")

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err, "Failed to create connection pool")

	require.NoError(t, database.Migrate(ctx, pool, testSchema), "Failed to run migrations")
	seedTestData(t, ctx, pool)

	cleanup := func() {
		pool.Close()
		testcontainers.TerminateContainer(container)
	}
	return pool, cleanup
}

func seedTestData(t *testing.T, ctx context.Context, pool *pgxpool.Pool) {
	t.Helper()
	_, err := pool.Exec(ctx, `
		INSERT INTO "radar test".regions (code, name, parent_code, level) VALUES
			('020000000', '전체', NULL, 0),
			('11000', '서울', '020000000', 1);
		INSERT INTO "radar test".stores (store_id, store_name, tel_no, x_coord, y_coord, area_code) VALUES
			('s1', 'Mart One', '02-000-0000', 37.57, 126.98, '11000'),
			('s2', 'Mart Two', NULL, 37.58, 126.99, '11000'),
			('s3', 'Mart Three', NULL, NULL, NULL, '26000');
		INSERT INTO "radar test".goods (good_id, good_name) VALUES ('g1', 'milk'), ('g2', 'eggs');
		INSERT INTO "radar test".prices (good_id, store_id, inspect_day, price) VALUES
			('g1', 's1', '20240101', 2500),
			('g1', 's1', '20240108', 2400),
			('g1', 's2', '20240108', 2600),
			('g2', 's1', '20240108', 5000);
	`)
	require.NoError(t, err, "Failed to seed test data")
}

func TestPostgresCatalog(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()
	pg := NewPostgres(pool, testSchema)

	stats := database.Stats(pool)
	require.NotNil(t, stats)
	assert.Positive(t, stats.Max)

	t.Run("stores", func(t *testing.T) {
		stores, err := pg.Stores(ctx)
		require.NoError(t, err)
		require.Len(t, stores, 3)
		assert.Equal(t, "s1", stores[0].StoreID)
		require.NotNil(t, stores[0].Phone)
		assert.Equal(t, "02-000-0000", *stores[0].Phone)
		_, ok := stores[2].Location()
		assert.False(t, ok)
	})

	t.Run("latest price per store", func(t *testing.T) {
		prices, err := pg.Prices(ctx, "milk")
		require.NoError(t, err)
		assert.Equal(t, []recommend.PricePoint{
			{StoreID: "s1", Price: 2400, InspectDay: "20240108"},
			{StoreID: "s2", Price: 2600, InspectDay: "20240108"},
		}, prices)

		none, err := pg.Prices(ctx, "bread")
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("regions", func(t *testing.T) {
		regions, err := pg.Regions(ctx)
		require.NoError(t, err)
		require.Len(t, regions, 2)
		assert.Equal(t, recommend.AllRegions, regions[0].Code)
		assert.Nil(t, regions[0].ParentCode)
		assert.Equal(t, int16(1), regions[1].Level)
	})
}

func TestPostgresPreferenceStore(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()
	pg := NewPostgres(pool, testSchema)

	_, ok, err := pg.Preference(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, ok)

	rec := preference.NewRecorder(pg, preference.FixedThreshold(0.1), preference.DefaultConfig())
	candidates := []recommend.ScoredStore{
		{Store: recommend.Store{StoreID: "s1"}, Price: 2400, DistanceKm: 1},
		{Store: recommend.Store{StoreID: "s2"}, Price: 3600, DistanceKm: 1},
	}

	var out preference.Outcome
	for i := 0; i < 10; i++ {
		out, err = rec.Record(ctx, preference.Identity{UserID: "u1"}, "milk", candidates[0], candidates)
		require.NoError(t, err)
	}
	assert.Equal(t, preference.TypePrice, out.Type)
	assert.Equal(t, 10, out.Count)
	assert.True(t, out.Updated)
	assert.InDelta(t, 0.56, out.Preference.WPrice, 1e-9)

	stored, ok, err := pg.Preference(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.InDelta(t, 0.44, stored.WDistance, 1e-9)

	history, err := pg.Selections(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, history, 10)
	assert.Equal(t, "Mart One", history[0].StoreName)
	assert.Equal(t, "milk", history[0].Product)

	recent, err := pg.RecentTypes(ctx, "u1", 3)
	require.NoError(t, err)
	assert.Equal(t, []preference.Type{preference.TypePrice, preference.TypePrice, preference.TypePrice}, recent)
}

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/glowupgrow/terrarium-api/internal/domain"
	"github.com/glowupgrow/terrarium-api/internal/repository/postgres"
	"github.com/glowupgrow/terrarium-api/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerrariumModelRepository_UpsertMany(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewTerrariumModelRepository(testDB.DB)
	ctx := context.Background()

	err := repo.UpsertMany(ctx, []*domain.TerrariumModel{
		{ID: uuid.New(), ModelID: 2, SpaceAvailable: 20},
		{ID: uuid.New(), ModelID: 1, SpaceAvailable: 10},
	})
	require.NoError(t, err)

	models, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, models, 2)
	assert.Equal(t, 1, models[0].ModelID)
	firstID := models[0].ID

	// Same ModelID updates in place.
	err = repo.UpsertMany(ctx, []*domain.TerrariumModel{
		{ID: uuid.New(), ModelID: 1, SpaceAvailable: 15},
	})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, firstID)
	require.NoError(t, err)
	assert.Equal(t, 15.0, got.SpaceAvailable)

	models, err = repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, models, 2)
}

func TestPlantRepository_GetOrCreateByName(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewPlantRepository(testDB.DB)
	ctx := context.Background()

	first, err := repo.GetOrCreateByName(ctx, domain.EmptyPlantName)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, first.ID)

	second, err := repo.GetOrCreateByName(ctx, domain.EmptyPlantName)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	plants, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, plants, 1)
}

func TestPlantRepository_UpsertMany(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewPlantRepository(testDB.DB)
	ctx := context.Background()

	basil := &domain.Plant{ID: uuid.New(), Name: "Basil", Temperature: 24, GrowthTimeDays: 30}
	require.NoError(t, repo.UpsertMany(ctx, []*domain.Plant{basil}))

	err := repo.UpsertMany(ctx, []*domain.Plant{
		{ID: uuid.New(), Name: "Basil", Temperature: 22, GrowthTimeDays: 28},
	})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, basil.ID)
	require.NoError(t, err)
	assert.Equal(t, 22.0, got.Temperature)
	assert.Equal(t, 28, got.GrowthTimeDays)
}

func TestLiveTerrariumRepository(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	hasher := testutil.FastHasher()
	repos := postgres.NewRepositories(testDB.DB, hasher)
	ctx := context.Background()

	owner := domain.NewUser("alice", "pw1", "a@x.io")
	require.NoError(t, repos.User.Create(ctx, owner))

	modelID, plantID := uuid.New(), uuid.New()
	first := domain.NewLiveTerrarium(owner.ID, modelID, plantID)
	require.NoError(t, repos.LiveTerrarium.Create(ctx, first))
	second := domain.NewLiveTerrarium(owner.ID, modelID, plantID)
	second.CreatedAt = first.CreatedAt.Add(time.Second)
	require.NoError(t, repos.LiveTerrarium.Create(ctx, second))
	other := domain.NewLiveTerrarium(uuid.New(), modelID, plantID)
	require.NoError(t, repos.LiveTerrarium.Create(ctx, other))

	t.Run("list by owner", func(t *testing.T) {
		list, err := repos.LiveTerrarium.GetByUserID(ctx, owner.ID)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, first.ID, list[0].ID)
		assert.Equal(t, second.ID, list[1].ID)
	})

	t.Run("readings round trip with history", func(t *testing.T) {
		at := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
		first.ApplyReadings(domain.Readings{Temperature: 21.5, Humidity: 60}, 3, at)
		require.NoError(t, repos.LiveTerrarium.Update(ctx, first))

		got, err := repos.LiveTerrarium.GetByID(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, 21.5, got.Temperature)
		assert.Equal(t, 3, got.DaysGrown)
		require.Len(t, got.History, 1)
		assert.Equal(t, 60.0, got.History[0].Humidity)
		assert.True(t, at.Equal(got.History[0].RecordedAt))
	})
}

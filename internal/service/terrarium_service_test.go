package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glowupgrow/terrarium-api/internal/apperr"
	"github.com/glowupgrow/terrarium-api/internal/catalog"
	"github.com/glowupgrow/terrarium-api/internal/domain"
	"github.com/glowupgrow/terrarium-api/internal/service"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) PublishTerrarium(kind string, _ *domain.LiveTerrarium) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, kind)
}

type terrariumFixture struct {
	*fixture
	user      *domain.User
	model     *domain.TerrariumModel
	basil     *domain.Plant
	publisher *recordingPublisher
}

func newTerrariumFixture(t *testing.T) *terrariumFixture {
	t.Helper()
	f := newFixture(t)
	ctx := context.Background()

	c, err := catalog.Default()
	require.NoError(t, err)
	_, err = f.services.Catalog.Seed(ctx, c)
	require.NoError(t, err)

	result, err := f.services.Auth.Register(ctx, service.RegisterInput{
		Username: "alice", Password: "pw123!", EmailAddress: "a@x.com",
	})
	require.NoError(t, err)

	models, err := f.services.Terrarium.ListModels(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, models)

	plants, err := f.services.Terrarium.ListPlants(ctx)
	require.NoError(t, err)
	var basil *domain.Plant
	for _, p := range plants {
		if p.Name == "Basil" {
			basil = p
		}
	}
	require.NotNil(t, basil)

	pub := &recordingPublisher{}
	f.services.Terrarium.SetPublisher(pub)

	return &terrariumFixture{
		fixture:   f,
		user:      result.User,
		model:     models[0],
		basil:     basil,
		publisher: pub,
	}
}

func TestTerrariumService_Create(t *testing.T) {
	f := newTerrariumFixture(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		input    service.CreateTerrariumInput
		wantCode string
	}{
		{name: "missing user", input: service.CreateTerrariumInput{ModelID: f.model.ID.String()}, wantCode: apperr.CodeValidation},
		{name: "missing model", input: service.CreateTerrariumInput{UserID: f.user.ID.String()}, wantCode: apperr.CodeValidation},
		{name: "unknown user", input: service.CreateTerrariumInput{UserID: uuid.NewString(), ModelID: f.model.ID.String()}, wantCode: apperr.CodeNotFound},
		{name: "unknown model", input: service.CreateTerrariumInput{UserID: f.user.ID.String(), ModelID: uuid.NewString()}, wantCode: apperr.CodeNotFound},
		{name: "malformed model", input: service.CreateTerrariumInput{UserID: f.user.ID.String(), ModelID: "42"}, wantCode: apperr.CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.services.Terrarium.Create(ctx, tt.input)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, apperr.Code(err))
			status, _ := apperr.Status(err)
			assert.Equal(t, 400, status)
		})
	}

	t.Run("rejected creates persist nothing", func(t *testing.T) {
		list, err := f.services.Terrarium.ListForUser(ctx, f.user.ID.String())
		require.NoError(t, err)
		assert.Empty(t, list)
		assert.Empty(t, f.publisher.events)
	})

	t.Run("success starts empty", func(t *testing.T) {
		terrarium, err := f.services.Terrarium.Create(ctx, service.CreateTerrariumInput{
			UserID:  f.user.ID.String(),
			ModelID: f.model.ID.String(),
		})
		require.NoError(t, err)
		assert.Equal(t, f.user.ID, terrarium.UserID)
		assert.Equal(t, f.model.ID, terrarium.ModelID)
		assert.Zero(t, terrarium.Temperature)
		assert.Zero(t, terrarium.DaysGrown)

		plant, err := f.repos.Plant.GetByID(ctx, terrarium.PlantID)
		require.NoError(t, err)
		assert.Equal(t, domain.EmptyPlantName, plant.Name)
		assert.Equal(t, []string{service.UpdateCreated}, f.publisher.events)
	})
}

func TestTerrariumService_AssignPlantAndGet(t *testing.T) {
	f := newTerrariumFixture(t)
	ctx := context.Background()

	terrarium, err := f.services.Terrarium.Create(ctx, service.CreateTerrariumInput{
		UserID:  f.user.ID.String(),
		ModelID: f.model.ID.String(),
	})
	require.NoError(t, err)

	_, err = f.services.Terrarium.AssignPlant(ctx, service.AssignPlantInput{TerrariumID: terrarium.ID.String()})
	assert.Equal(t, apperr.CodeValidation, apperr.Code(err))

	_, err = f.services.Terrarium.AssignPlant(ctx, service.AssignPlantInput{
		TerrariumID: terrarium.ID.String(),
		PlantID:     uuid.NewString(),
	})
	assert.Equal(t, apperr.CodeNotFound, apperr.Code(err))

	_, err = f.services.Terrarium.AssignPlant(ctx, service.AssignPlantInput{
		TerrariumID: uuid.NewString(),
		PlantID:     f.basil.ID.String(),
	})
	assert.Equal(t, apperr.CodeNotFound, apperr.Code(err))

	updated, err := f.services.Terrarium.AssignPlant(ctx, service.AssignPlantInput{
		TerrariumID: terrarium.ID.String(),
		PlantID:     f.basil.ID.String(),
	})
	require.NoError(t, err)
	assert.Equal(t, f.basil.ID, updated.PlantID)

	got, err := f.services.Terrarium.Get(ctx, terrarium.ID.String())
	require.NoError(t, err)
	assert.Equal(t, f.basil.ID, got.PlantID)

	_, err = f.services.Terrarium.Get(ctx, "")
	assert.Equal(t, apperr.CodeValidation, apperr.Code(err))
	_, err = f.services.Terrarium.Get(ctx, uuid.NewString())
	assert.Equal(t, apperr.CodeNotFound, apperr.Code(err))
}

func TestTerrariumService_ListForUser(t *testing.T) {
	f := newTerrariumFixture(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := f.services.Terrarium.Create(ctx, service.CreateTerrariumInput{
			UserID:  f.user.ID.String(),
			ModelID: f.model.ID.String(),
		})
		require.NoError(t, err)
	}

	list, err := f.services.Terrarium.ListForUser(ctx, f.user.ID.String())
	require.NoError(t, err)
	assert.Len(t, list, 2)

	list, err = f.services.Terrarium.ListForUser(ctx, uuid.NewString())
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = f.services.Terrarium.ListForUser(ctx, "")
	assert.Equal(t, apperr.CodeValidation, apperr.Code(err))
}

func TestTerrariumService_RecordReadings(t *testing.T) {
	f := newTerrariumFixture(t)
	ctx := context.Background()

	terrarium, err := f.services.Terrarium.Create(ctx, service.CreateTerrariumInput{
		UserID:  f.user.ID.String(),
		ModelID: f.model.ID.String(),
	})
	require.NoError(t, err)

	temp, humidity, days := 22.5, 65.0, 4

	_, err = f.services.Terrarium.RecordReadings(ctx, service.RecordReadingsInput{TerrariumID: terrarium.ID.String()})
	assert.Equal(t, apperr.CodeValidation, apperr.Code(err))

	updated, err := f.services.Terrarium.RecordReadings(ctx, service.RecordReadingsInput{
		TerrariumID: terrarium.ID.String(),
		Temperature: &temp,
		DaysGrown:   &days,
	})
	require.NoError(t, err)
	assert.Equal(t, 22.5, updated.Temperature)
	assert.Equal(t, 4, updated.DaysGrown)

	updated, err = f.services.Terrarium.RecordReadings(ctx, service.RecordReadingsInput{
		TerrariumID: terrarium.ID.String(),
		Humidity:    &humidity,
	})
	require.NoError(t, err)
	assert.Equal(t, 22.5, updated.Temperature, "unset readings keep their value")
	assert.Equal(t, 65.0, updated.Humidity)
	assert.Equal(t, 4, updated.DaysGrown)
	require.Len(t, updated.History, 2)

	stored, err := f.services.Terrarium.Get(ctx, terrarium.ID.String())
	require.NoError(t, err)
	assert.Len(t, stored.History, 2)
	assert.Equal(t,
		[]string{service.UpdateCreated, service.UpdateReadings, service.UpdateReadings},
		f.publisher.events)
}

func TestCatalogService_SeedIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c := &catalog.Catalog{
		Models: []catalog.Model{{ModelID: 7, SpaceAvailable: 3}},
		Plants: []catalog.Plant{{Name: "Cactus", GrowthTimeDays: 200}},
	}

	for i := 0; i < 2; i++ {
		result, err := f.services.Catalog.Seed(ctx, c)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Models)
		assert.Equal(t, 1, result.Plants)
	}

	models, err := f.services.Terrarium.ListModels(ctx)
	require.NoError(t, err)
	assert.Len(t, models, 1)

	plants, err := f.services.Terrarium.ListPlants(ctx)
	require.NoError(t, err)
	names := make([]string, 0, len(plants))
	for _, p := range plants {
		names = append(names, p.Name)
	}
	assert.ElementsMatch(t, []string{"Cactus", domain.EmptyPlantName}, names)
}

package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/glowupgrow/terrarium-api/internal/apperr"
	"github.com/glowupgrow/terrarium-api/internal/domain"
	"github.com/glowupgrow/terrarium-api/internal/observability"
	"github.com/glowupgrow/terrarium-api/internal/repository"
)

// Public messages for the terrarium routes.
const (
	MsgCreateFieldsRequired   = "Error: UserID and ModelID are required"
	MsgAssignFieldsRequired   = "Error: TerrariumID and PlantID are required"
	MsgUserIDRequired         = "Error: UserID is required"
	MsgTerrariumIDRequired    = "Error: TerrariumID is required"
	MsgReadingsFieldsRequired = "Error: TerrariumID and at least one reading are required"
	MsgModelNotFound          = "Error: terrarium model not found"
	MsgPlantNotFound          = "Error: plant not found"
	MsgTerrariumNotFound      = "Error: terrarium not found"
)

// Update kinds reported to the live-update hub and metrics.
const (
	UpdateCreated  = "created"
	UpdatePlant    = "plant"
	UpdateReadings = "readings"
)

// Publisher receives every terrarium mutation.
type Publisher interface {
	PublishTerrarium(kind string, terrarium *domain.LiveTerrarium)
}

type TerrariumService struct {
	userRepo      repository.UserRepository
	modelRepo     repository.TerrariumModelRepository
	plantRepo     repository.PlantRepository
	terrariumRepo repository.LiveTerrariumRepository
	publisher     Publisher
	metrics       *observability.Metrics
	now           func() time.Time
}

func NewTerrariumService(repos *repository.Repositories, metrics *observability.Metrics) *TerrariumService {
	return &TerrariumService{
		userRepo:      repos.User,
		modelRepo:     repos.TerrariumModel,
		plantRepo:     repos.Plant,
		terrariumRepo: repos.LiveTerrarium,
		metrics:       metrics,
		now:           time.Now,
	}
}

// SetPublisher wires the live-update hub. Until it is called mutations are
// not broadcast.
func (s *TerrariumService) SetPublisher(p Publisher) {
	s.publisher = p
}

type CreateTerrariumInput struct {
	UserID  string
	ModelID string
}

type AssignPlantInput struct {
	TerrariumID string
	PlantID     string
}

// RecordReadingsInput carries a sensor report. Nil readings keep their
// current value.
type RecordReadingsInput struct {
	TerrariumID  string
	Temperature  *float64
	SoilMoisture *float64
	Humidity     *float64
	LightLevel   *float64
	DaysGrown    *int
}

func (r RecordReadingsInput) empty() bool {
	return r.Temperature == nil && r.SoilMoisture == nil && r.Humidity == nil &&
		r.LightLevel == nil && r.DaysGrown == nil
}

// Create makes a terrarium for an existing user and model, holding the Empty
// plant and zeroed readings.
func (s *TerrariumService) Create(ctx context.Context, input CreateTerrariumInput) (*domain.LiveTerrarium, error) {
	if input.UserID == "" || input.ModelID == "" {
		return nil, apperr.Validation(MsgCreateFieldsRequired)
	}

	user, err := s.lookupUser(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	modelID, err := uuid.Parse(input.ModelID)
	if err != nil {
		return nil, apperr.NotFound(MsgModelNotFound)
	}
	model, err := s.modelRepo.GetByID(ctx, modelID)
	if err != nil {
		return nil, notFoundOrInternal(err, MsgModelNotFound, "get terrarium model")
	}

	plant, err := s.plantRepo.GetOrCreateByName(ctx, domain.EmptyPlantName)
	if err != nil {
		return nil, apperr.Internal(err, "get empty plant")
	}

	terrarium := domain.NewLiveTerrarium(user.ID, model.ID, plant.ID)
	if err := s.terrariumRepo.Create(ctx, terrarium); err != nil {
		return nil, apperr.Internal(err, "create terrarium")
	}

	slog.InfoContext(ctx, "terrarium created",
		"terrarium_id", terrarium.ID,
		"user_id", user.ID,
		"model_id", model.ModelID)
	s.publish(UpdateCreated, terrarium)
	return terrarium, nil
}

// AssignPlant points a terrarium at a different plant.
func (s *TerrariumService) AssignPlant(ctx context.Context, input AssignPlantInput) (*domain.LiveTerrarium, error) {
	if input.TerrariumID == "" || input.PlantID == "" {
		return nil, apperr.Validation(MsgAssignFieldsRequired)
	}

	terrarium, err := s.lookupTerrarium(ctx, input.TerrariumID)
	if err != nil {
		return nil, err
	}

	plantID, err := uuid.Parse(input.PlantID)
	if err != nil {
		return nil, apperr.NotFound(MsgPlantNotFound)
	}
	plant, err := s.plantRepo.GetByID(ctx, plantID)
	if err != nil {
		return nil, notFoundOrInternal(err, MsgPlantNotFound, "get plant")
	}

	terrarium.PlantID = plant.ID
	terrarium.UpdatedAt = s.now()
	if err := s.terrariumRepo.Update(ctx, terrarium); err != nil {
		return nil, apperr.Internal(err, "update terrarium plant")
	}

	slog.InfoContext(ctx, "terrarium plant assigned", "terrarium_id", terrarium.ID, "plant", plant.Name)
	s.publish(UpdatePlant, terrarium)
	return terrarium, nil
}

// ListForUser returns the user's terrariums, oldest first. An unknown user
// simply has none.
func (s *TerrariumService) ListForUser(ctx context.Context, userID string) ([]*domain.LiveTerrarium, error) {
	if userID == "" {
		return nil, apperr.Validation(MsgUserIDRequired)
	}
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, apperr.NotFound(MsgUserNotFound)
	}

	terrariums, err := s.terrariumRepo.GetByUserID(ctx, id)
	if err != nil {
		return nil, apperr.Internal(err, "list terrariums")
	}
	return terrariums, nil
}

func (s *TerrariumService) Get(ctx context.Context, terrariumID string) (*domain.LiveTerrarium, error) {
	if terrariumID == "" {
		return nil, apperr.Validation(MsgTerrariumIDRequired)
	}
	return s.lookupTerrarium(ctx, terrariumID)
}

// RecordReadings stores a sensor report and appends it to the history.
func (s *TerrariumService) RecordReadings(ctx context.Context, input RecordReadingsInput) (*domain.LiveTerrarium, error) {
	if input.TerrariumID == "" || input.empty() {
		return nil, apperr.Validation(MsgReadingsFieldsRequired)
	}

	terrarium, err := s.lookupTerrarium(ctx, input.TerrariumID)
	if err != nil {
		return nil, err
	}

	readings := terrarium.CurrentReadings()
	if input.Temperature != nil {
		readings.Temperature = *input.Temperature
	}
	if input.SoilMoisture != nil {
		readings.SoilMoisture = *input.SoilMoisture
	}
	if input.Humidity != nil {
		readings.Humidity = *input.Humidity
	}
	if input.LightLevel != nil {
		readings.LightLevel = *input.LightLevel
	}
	daysGrown := terrarium.DaysGrown
	if input.DaysGrown != nil {
		daysGrown = *input.DaysGrown
	}

	terrarium.ApplyReadings(readings, daysGrown, s.now())
	if err := s.terrariumRepo.Update(ctx, terrarium); err != nil {
		return nil, apperr.Internal(err, "record readings")
	}

	s.publish(UpdateReadings, terrarium)
	return terrarium, nil
}

func (s *TerrariumService) ListModels(ctx context.Context) ([]*domain.TerrariumModel, error) {
	models, err := s.modelRepo.GetAll(ctx)
	if err != nil {
		return nil, apperr.Internal(err, "list terrarium models")
	}
	return models, nil
}

func (s *TerrariumService) ListPlants(ctx context.Context) ([]*domain.Plant, error) {
	plants, err := s.plantRepo.GetAll(ctx)
	if err != nil {
		return nil, apperr.Internal(err, "list plants")
	}
	return plants, nil
}

func (s *TerrariumService) lookupUser(ctx context.Context, id string) (*domain.User, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.NotFound(MsgUserNotFound)
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, notFoundOrInternal(err, MsgUserNotFound, "get user")
	}
	return user, nil
}

func (s *TerrariumService) lookupTerrarium(ctx context.Context, id string) (*domain.LiveTerrarium, error) {
	terrariumID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.NotFound(MsgTerrariumNotFound)
	}
	terrarium, err := s.terrariumRepo.GetByID(ctx, terrariumID)
	if err != nil {
		return nil, notFoundOrInternal(err, MsgTerrariumNotFound, "get terrarium")
	}
	return terrarium, nil
}

func (s *TerrariumService) publish(kind string, terrarium *domain.LiveTerrarium) {
	s.metrics.RecordTerrariumUpdate(kind)
	if s.publisher != nil {
		s.publisher.PublishTerrarium(kind, terrarium)
	}
}

func notFoundOrInternal(err error, public, operation string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(public)
	}
	return apperr.Internal(err, operation)
}

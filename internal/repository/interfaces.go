package repository

import (
	"context"
	"errors"

	"github.com/glowupgrow/terrarium-api/internal/domain"
	"github.com/google/uuid"
)

// ErrUsernameTaken is returned by UserRepository writes that collide on the
// unique username.
var ErrUsernameTaken = errors.New("username already exists")

// Lookups that find nothing return gorm.ErrRecordNotFound.

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}

type TerrariumModelRepository interface {
	UpsertMany(ctx context.Context, models []*domain.TerrariumModel) error
	GetAll(ctx context.Context) ([]*domain.TerrariumModel, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.TerrariumModel, error)
}

type PlantRepository interface {
	UpsertMany(ctx context.Context, plants []*domain.Plant) error
	GetAll(ctx context.Context) ([]*domain.Plant, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Plant, error)
	GetOrCreateByName(ctx context.Context, name string) (*domain.Plant, error)
}

type LiveTerrariumRepository interface {
	Create(ctx context.Context, terrarium *domain.LiveTerrarium) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.LiveTerrarium, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.LiveTerrarium, error)
	Update(ctx context.Context, terrarium *domain.LiveTerrarium) error
}

type Repositories struct {
	User           UserRepository
	TerrariumModel TerrariumModelRepository
	Plant          PlantRepository
	LiveTerrarium  LiveTerrariumRepository
}

package postgres

import (
	"context"

	"github.com/glowupgrow/terrarium-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type liveTerrariumRepository struct {
	db *gorm.DB
}

func NewLiveTerrariumRepository(db *gorm.DB) *liveTerrariumRepository {
	return &liveTerrariumRepository{db: db}
}

func (r *liveTerrariumRepository) Create(ctx context.Context, terrarium *domain.LiveTerrarium) error {
	return r.db.WithContext(ctx).Create(terrarium).Error
}

func (r *liveTerrariumRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.LiveTerrarium, error) {
	var terrarium domain.LiveTerrarium
	err := r.db.WithContext(ctx).First(&terrarium, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &terrarium, nil
}

func (r *liveTerrariumRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.LiveTerrarium, error) {
	var terrariums []*domain.LiveTerrarium
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&terrariums).Error
	if err != nil {
		return nil, err
	}
	return terrariums, nil
}

func (r *liveTerrariumRepository) Update(ctx context.Context, terrarium *domain.LiveTerrarium) error {
	return r.db.WithContext(ctx).Save(terrarium).Error
}

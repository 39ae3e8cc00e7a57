package postgres

import (
	"context"

	"github.com/glowupgrow/terrarium-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type terrariumModelRepository struct {
	db *gorm.DB
}

func NewTerrariumModelRepository(db *gorm.DB) *terrariumModelRepository {
	return &terrariumModelRepository{db: db}
}

// UpsertMany inserts the models, updating any row with the same ModelID in
// place so its ID stays stable across seeds.
func (r *terrariumModelRepository) UpsertMany(ctx context.Context, models []*domain.TerrariumModel) error {
	if len(models) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "model_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"space_available"}),
	}).Create(models).Error
}

func (r *terrariumModelRepository) GetAll(ctx context.Context) ([]*domain.TerrariumModel, error) {
	var models []*domain.TerrariumModel
	err := r.db.WithContext(ctx).Order("model_id ASC").Find(&models).Error
	if err != nil {
		return nil, err
	}
	return models, nil
}

func (r *terrariumModelRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.TerrariumModel, error) {
	var model domain.TerrariumModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &model, nil
}

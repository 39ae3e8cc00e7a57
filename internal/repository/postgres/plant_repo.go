package postgres

import (
	"context"

	"github.com/glowupgrow/terrarium-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type plantRepository struct {
	db *gorm.DB
}

func NewPlantRepository(db *gorm.DB) *plantRepository {
	return &plantRepository{db: db}
}

// UpsertMany inserts the plants keyed by name.
func (r *plantRepository) UpsertMany(ctx context.Context, plants []*domain.Plant) error {
	if len(plants) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"temperature",
			"soil_moisture",
			"humidity",
			"light_level",
			"growth_time_days",
			"space_requirement",
		}),
	}).Create(plants).Error
}

func (r *plantRepository) GetAll(ctx context.Context) ([]*domain.Plant, error) {
	var plants []*domain.Plant
	err := r.db.WithContext(ctx).Order("name ASC").Find(&plants).Error
	if err != nil {
		return nil, err
	}
	return plants, nil
}

func (r *plantRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Plant, error) {
	var plant domain.Plant
	err := r.db.WithContext(ctx).First(&plant, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &plant, nil
}

func (r *plantRepository) GetOrCreateByName(ctx context.Context, name string) (*domain.Plant, error) {
	plant := domain.Plant{Name: name}
	err := r.db.WithContext(ctx).
		Where(domain.Plant{Name: name}).
		Attrs(domain.Plant{ID: uuid.New()}).
		FirstOrCreate(&plant).Error
	if err != nil {
		return nil, err
	}
	return &plant, nil
}

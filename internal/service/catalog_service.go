package service

import (
	"context"
	"log/slog"

	"github.com/samber/oops"

	"github.com/glowupgrow/terrarium-api/internal/catalog"
	"github.com/glowupgrow/terrarium-api/internal/domain"
	"github.com/glowupgrow/terrarium-api/internal/repository"
)

// SeedResult counts what a seed run wrote.
type SeedResult struct {
	Models int
	Plants int
}

type CatalogService struct {
	modelRepo repository.TerrariumModelRepository
	plantRepo repository.PlantRepository
}

func NewCatalogService(modelRepo repository.TerrariumModelRepository, plantRepo repository.PlantRepository) *CatalogService {
	return &CatalogService{
		modelRepo: modelRepo,
		plantRepo: plantRepo,
	}
}

// Seed upserts the catalog: models keyed by ModelID, plants keyed by name.
// The Empty plant always exists afterwards. Running it twice is harmless.
func (s *CatalogService) Seed(ctx context.Context, c *catalog.Catalog) (*SeedResult, error) {
	models := c.DomainModels()
	if err := s.modelRepo.UpsertMany(ctx, models); err != nil {
		return nil, oops.Code("SEED_FAILED").With("operation", "upsert models").Wrap(err)
	}

	plants := c.DomainPlants()
	if err := s.plantRepo.UpsertMany(ctx, plants); err != nil {
		return nil, oops.Code("SEED_FAILED").With("operation", "upsert plants").Wrap(err)
	}

	if _, err := s.plantRepo.GetOrCreateByName(ctx, domain.EmptyPlantName); err != nil {
		return nil, oops.Code("SEED_FAILED").With("operation", "ensure empty plant").Wrap(err)
	}

	slog.InfoContext(ctx, "catalog seeded", "models", len(models), "plants", len(plants))
	return &SeedResult{Models: len(models), Plants: len(plants)}, nil
}

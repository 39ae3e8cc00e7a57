// Package memory keeps every repository in process maps. It backs the test
// server and the serve command's --in-memory mode.
package memory

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/glowupgrow/terrarium-api/internal/auth"
	"github.com/glowupgrow/terrarium-api/internal/domain"
	"github.com/glowupgrow/terrarium-api/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func NewRepositories(hasher auth.PasswordHasher) *repository.Repositories {
	return &repository.Repositories{
		User:           NewUserRepository(hasher),
		TerrariumModel: NewTerrariumModelRepository(),
		Plant:          NewPlantRepository(),
		LiveTerrarium:  NewLiveTerrariumRepository(),
	}
}

type userRepository struct {
	mu     sync.RWMutex
	hasher auth.PasswordHasher
	byID   map[uuid.UUID]domain.User
}

func NewUserRepository(hasher auth.PasswordHasher) *userRepository {
	return &userRepository{
		hasher: hasher,
		byID:   make(map[uuid.UUID]domain.User),
	}
}

func (r *userRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.usernameTaken(user.Username, uuid.Nil) {
		return repository.ErrUsernameTaken
	}
	if _, err := repository.PrepareUserWrite(r.hasher, user, true); err != nil {
		return err
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	r.byID[user.ID] = *user
	return nil
}

func (r *userRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.byID {
		if user.Username == username {
			return &user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *userRepository) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byID[user.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if r.usernameTaken(user.Username, user.ID) {
		return repository.ErrUsernameTaken
	}

	writePassword, err := repository.PrepareUserWrite(r.hasher, user, false)
	if err != nil {
		return err
	}

	next := *user
	if !writePassword {
		next.Password = stored.Password
	}
	next.UpdatedAt = time.Now()
	user.UpdatedAt = next.UpdatedAt

	r.byID[user.ID] = next
	return nil
}

func (r *userRepository) usernameTaken(username string, except uuid.UUID) bool {
	for id, user := range r.byID {
		if id != except && user.Username == username {
			return true
		}
	}
	return false
}

type terrariumModelRepository struct {
	mu     sync.RWMutex
	models map[uuid.UUID]domain.TerrariumModel
}

func NewTerrariumModelRepository() *terrariumModelRepository {
	return &terrariumModelRepository{models: make(map[uuid.UUID]domain.TerrariumModel)}
}

func (r *terrariumModelRepository) UpsertMany(_ context.Context, models []*domain.TerrariumModel) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, model := range models {
		existing, found := r.findByModelID(model.ModelID)
		if found {
			existing.SpaceAvailable = model.SpaceAvailable
			r.models[existing.ID] = existing
			continue
		}
		if model.ID == uuid.Nil {
			model.ID = uuid.New()
		}
		r.models[model.ID] = *model
	}
	return nil
}

func (r *terrariumModelRepository) findByModelID(modelID int) (domain.TerrariumModel, bool) {
	for _, m := range r.models {
		if m.ModelID == modelID {
			return m, true
		}
	}
	return domain.TerrariumModel{}, false
}

func (r *terrariumModelRepository) GetAll(_ context.Context) ([]*domain.TerrariumModel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.TerrariumModel, 0, len(r.models))
	for _, m := range r.models {
		out = append(out, &m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ModelID < out[j].ModelID })
	return out, nil
}

func (r *terrariumModelRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.TerrariumModel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.models[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &m, nil
}

type plantRepository struct {
	mu     sync.RWMutex
	plants map[uuid.UUID]domain.Plant
}

func NewPlantRepository() *plantRepository {
	return &plantRepository{plants: make(map[uuid.UUID]domain.Plant)}
}

func (r *plantRepository) UpsertMany(_ context.Context, plants []*domain.Plant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, plant := range plants {
		if existing, found := r.findByName(plant.Name); found {
			next := *plant
			next.ID = existing.ID
			r.plants[existing.ID] = next
			continue
		}
		if plant.ID == uuid.Nil {
			plant.ID = uuid.New()
		}
		r.plants[plant.ID] = *plant
	}
	return nil
}

func (r *plantRepository) findByName(name string) (domain.Plant, bool) {
	for _, p := range r.plants {
		if p.Name == name {
			return p, true
		}
	}
	return domain.Plant{}, false
}

func (r *plantRepository) GetAll(_ context.Context) ([]*domain.Plant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Plant, 0, len(r.plants))
	for _, p := range r.plants {
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *plantRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Plant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.plants[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (r *plantRepository) GetOrCreateByName(_ context.Context, name string) (*domain.Plant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, found := r.findByName(name); found {
		return &p, nil
	}
	p := domain.Plant{ID: uuid.New(), Name: name}
	r.plants[p.ID] = p
	return &p, nil
}

type liveTerrariumRepository struct {
	mu         sync.RWMutex
	terrariums map[uuid.UUID]domain.LiveTerrarium
}

func NewLiveTerrariumRepository() *liveTerrariumRepository {
	return &liveTerrariumRepository{terrariums: make(map[uuid.UUID]domain.LiveTerrarium)}
}

func (r *liveTerrariumRepository) Create(_ context.Context, terrarium *domain.LiveTerrarium) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if terrarium.ID == uuid.Nil {
		terrarium.ID = uuid.New()
	}
	if terrarium.CreatedAt.IsZero() {
		terrarium.CreatedAt = time.Now()
	}
	r.terrariums[terrarium.ID] = cloneTerrarium(*terrarium)
	return nil
}

func (r *liveTerrariumRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.LiveTerrarium, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.terrariums[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	t = cloneTerrarium(t)
	return &t, nil
}

func (r *liveTerrariumRepository) GetByUserID(_ context.Context, userID uuid.UUID) ([]*domain.LiveTerrarium, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.LiveTerrarium, 0)
	for _, t := range r.terrariums {
		if t.UserID == userID {
			t = cloneTerrarium(t)
			out = append(out, &t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *liveTerrariumRepository) Update(_ context.Context, terrarium *domain.LiveTerrarium) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.terrariums[terrarium.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.terrariums[terrarium.ID] = cloneTerrarium(*terrarium)
	return nil
}

func cloneTerrarium(t domain.LiveTerrarium) domain.LiveTerrarium {
	t.History = slices.Clone(t.History)
	return t
}

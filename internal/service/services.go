package service

import (
	"github.com/glowupgrow/terrarium-api/internal/auth"
	"github.com/glowupgrow/terrarium-api/internal/observability"
	"github.com/glowupgrow/terrarium-api/internal/repository"
)

type Services struct {
	Auth      *AuthService
	Terrarium *TerrariumService
	Catalog   *CatalogService
}

func NewServices(
	repos *repository.Repositories,
	hasher auth.PasswordHasher,
	sessions *auth.SessionManager,
	metrics *observability.Metrics,
) *Services {
	return &Services{
		Auth:      NewAuthService(repos.User, hasher, sessions, metrics),
		Terrarium: NewTerrariumService(repos, metrics),
		Catalog:   NewCatalogService(repos.TerrariumModel, repos.Plant),
	}
}

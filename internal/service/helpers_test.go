package service_test

import (
	"testing"
	"time"

	"github.com/glowupgrow/terrarium-api/internal/auth"
	"github.com/glowupgrow/terrarium-api/internal/observability"
	"github.com/glowupgrow/terrarium-api/internal/repository"
	"github.com/glowupgrow/terrarium-api/internal/repository/memory"
	"github.com/glowupgrow/terrarium-api/internal/service"
)

var testParams = auth.Argon2Params{Memory: 8 * 1024, Iterations: 1, Parallelism: 1}

type fixture struct {
	repos    *repository.Repositories
	hasher   *auth.Argon2idHasher
	sessions *auth.SessionManager
	metrics  *observability.Metrics
	services *service.Services
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	hasher := auth.NewArgon2idHasher(testParams)
	repos := memory.NewRepositories(hasher)
	sessions := auth.NewSessionManager("test-secret", time.Hour, false)
	metrics := observability.NewMetrics()

	return &fixture{
		repos:    repos,
		hasher:   hasher,
		sessions: sessions,
		metrics:  metrics,
		services: service.NewServices(repos, hasher, sessions, metrics),
	}
}

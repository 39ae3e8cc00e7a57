package testutil

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/samber/oops"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/glowupgrow/terrarium-api/internal/api"
	"github.com/glowupgrow/terrarium-api/internal/apperr"
	"github.com/glowupgrow/terrarium-api/internal/auth"
	"github.com/glowupgrow/terrarium-api/internal/catalog"
	"github.com/glowupgrow/terrarium-api/internal/config"
	"github.com/glowupgrow/terrarium-api/internal/observability"
	"github.com/glowupgrow/terrarium-api/internal/repository"
	"github.com/glowupgrow/terrarium-api/internal/repository/memory"
	repoPostgres "github.com/glowupgrow/terrarium-api/internal/repository/postgres"
	"github.com/glowupgrow/terrarium-api/internal/service"
	"github.com/glowupgrow/terrarium-api/internal/websocket"
)

// TestDB manages a testcontainers PostgreSQL instance
type TestDB struct {
	Container testcontainers.Container
	DB        *gorm.DB
	DSN       string
}

// NewTestDB starts a PostgreSQL container, connects to it and migrates the
// schema. The container is terminated when the test ends.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	container, err := tcPostgres.Run(ctx,
		"postgres:16-alpine",
		tcPostgres.WithDatabase("test_terrarium"),
		tcPostgres.WithUsername("test"),
		tcPostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	testDB := &TestDB{Container: container}
	t.Cleanup(testDB.Cleanup)

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}
	testDB.DSN = dsn

	db, err := gorm.Open(gormPostgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}
	if err := repoPostgres.Migrate(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	testDB.DB = db

	return testDB
}

// Cleanup terminates the container
func (tdb *TestDB) Cleanup() {
	if tdb.Container != nil {
		tdb.Container.Terminate(context.Background())
	}
}

// Truncate clears all tables for test isolation
func (tdb *TestDB) Truncate(t *testing.T) {
	t.Helper()

	tables := []string{
		"live_terrariums",
		"plants",
		"terrarium_models",
		"users",
	}

	for _, table := range tables {
		if err := tdb.DB.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)).Error; err != nil {
			t.Logf("warning: failed to truncate %s: %v", table, err)
		}
	}
}

// FastHasher returns an argon2id hasher cheap enough for tests.
func FastHasher() *auth.Argon2idHasher {
	return auth.NewArgon2idHasher(auth.Argon2Params{Memory: 8 * 1024, Iterations: 1, Parallelism: 1})
}

// HashFailureDetail is the internal cause carried by FailingHasher errors.
const HashFailureDetail = "argon2id: cannot allocate 67108864 KiB"

// FailingHasher verifies like FastHasher but every Hash call fails with a
// CodeHashingFailed error.
type FailingHasher struct {
	*auth.Argon2idHasher
}

func NewFailingHasher() *FailingHasher {
	return &FailingHasher{Argon2idHasher: FastHasher()}
}

func (h *FailingHasher) Hash(string) (string, error) {
	return "", oops.Code(apperr.CodeHashingFailed).Errorf(HashFailureDetail)
}

// TestConfig returns a configuration suitable for testing
func TestConfig() *config.Config {
	return &config.Config{
		Port:              "0",
		Environment:       "test",
		LogFormat:         "text",
		InMemory:          true,
		SessionSecret:     "test-session-secret-for-testing-only",
		SessionTTL:        time.Hour,
		Argon2MemoryKiB:   8 * 1024,
		Argon2Iterations:  1,
		Argon2Parallelism: 1,
	}
}

// TestServer holds all components for integration testing
type TestServer struct {
	Server   *httptest.Server
	Repos    *repository.Repositories
	Services *service.Services
	Hub      *websocket.Hub
	Metrics  *observability.Metrics
	Sessions *auth.SessionManager
	Config   *config.Config
}

// NewTestServer wires the full router over in-memory stores seeded with the
// default catalog.
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()

	cfg := TestConfig()
	hasher := FastHasher()
	repos := memory.NewRepositories(hasher)
	return newTestServer(t, cfg, repos, hasher)
}

// NewTestServerWithHasher is NewTestServer with a caller-supplied password
// hasher shared by the stores and the auth service.
func NewTestServerWithHasher(t *testing.T, hasher auth.PasswordHasher) *TestServer {
	t.Helper()

	repos := memory.NewRepositories(hasher)
	return newTestServer(t, TestConfig(), repos, hasher)
}

// NewPostgresTestServer is NewTestServer backed by a PostgreSQL container.
func NewPostgresTestServer(t *testing.T) (*TestServer, *TestDB) {
	t.Helper()

	testDB := NewTestDB(t)
	cfg := TestConfig()
	cfg.InMemory = false
	cfg.DatabaseURL = testDB.DSN

	hasher := FastHasher()
	repos := repoPostgres.NewRepositories(testDB.DB, hasher)
	return newTestServer(t, cfg, repos, hasher), testDB
}

func newTestServer(t *testing.T, cfg *config.Config, repos *repository.Repositories, hasher auth.PasswordHasher) *TestServer {
	t.Helper()

	metrics := observability.NewMetrics()
	sessions := auth.NewSessionManager(cfg.SessionSecret, cfg.SessionTTL, cfg.SecureCookies)
	services := service.NewServices(repos, hasher, sessions, metrics)

	defaults, err := catalog.Default()
	if err != nil {
		t.Fatalf("failed to parse default catalog: %v", err)
	}
	if _, err := services.Catalog.Seed(context.Background(), defaults); err != nil {
		t.Fatalf("failed to seed catalog: %v", err)
	}

	hub := websocket.NewHub(services.Terrarium, metrics)
	services.Terrarium.SetPublisher(hub)
	go hub.Run()

	server := httptest.NewServer(api.NewRouter(services, hub, metrics))

	t.Cleanup(func() {
		server.Close()
		hub.Stop()
	})

	return &TestServer{
		Server:   server,
		Repos:    repos,
		Services: services,
		Hub:      hub,
		Metrics:  metrics,
		Sessions: sessions,
		Config:   cfg,
	}
}

// BaseURL returns the test server's base URL
func (ts *TestServer) BaseURL() string {
	return ts.Server.URL
}

// APIURL returns the full API URL for a given path
func (ts *TestServer) APIURL(path string) string {
	return fmt.Sprintf("%s/api%s", ts.Server.URL, path)
}

// WebSocketURL returns the live-update endpoint
func (ts *TestServer) WebSocketURL() string {
	return "ws" + strings.TrimPrefix(ts.Server.URL, "http") + "/api/terrarium/live"
}

// NewClient returns an HTTP client with its own cookie jar, acting as one
// browser session.
func (ts *TestServer) NewClient(t *testing.T) *http.Client {
	t.Helper()

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("failed to create cookie jar: %v", err)
	}
	return &http.Client{Jar: jar, Timeout: 10 * time.Second}
}

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"

	"github.com/glowupgrow/terrarium-api/internal/domain"
	"github.com/glowupgrow/terrarium-api/internal/repository"
	"github.com/glowupgrow/terrarium-api/internal/service"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	username     string
	password     string
	emailAddress string
}

// NewUserBuilder creates a new UserBuilder with default values
func NewUserBuilder() *UserBuilder {
	suffix := uuid.New().String()[:8]
	return &UserBuilder{
		username:     "grower_" + suffix,
		password:     "testpassword123",
		emailAddress: suffix + "@example.com",
	}
}

func (b *UserBuilder) WithUsername(username string) *UserBuilder {
	b.username = username
	return b
}

func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

func (b *UserBuilder) WithEmailAddress(email string) *UserBuilder {
	b.emailAddress = email
	return b
}

// Build writes the user straight to the store and returns it with the raw
// password.
func (b *UserBuilder) Build(t *testing.T, repo repository.UserRepository) (*domain.User, string) {
	t.Helper()

	user := domain.NewUser(b.username, b.password, b.emailAddress)
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user, b.password
}

// SessionResponse matches the register and login response body
type SessionResponse struct {
	ID       string `json:"_id"`
	Username string `json:"Username"`
	Success  bool   `json:"Success"`
}

// Register creates the user through the API. The session cookie lands in
// client's jar.
func (b *UserBuilder) Register(t *testing.T, ts *TestServer, client *http.Client) SessionResponse {
	t.Helper()

	resp := DoJSON(t, client, http.MethodPost, ts.APIURL("/users/register"), map[string]string{
		"Username":     b.username,
		"Password":     b.password,
		"EmailAddress": b.emailAddress,
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status code registering %s: %d", b.username, resp.StatusCode)
	}

	var session SessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return session
}

// DoJSON sends body as JSON. A nil body sends no payload.
func DoJSON(t *testing.T, client *http.Client, method, url string, body interface{}) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}

	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, url, err)
	}
	return resp
}

// FirstModel returns the catalog model with the lowest ModelID.
func FirstModel(t *testing.T, ts *TestServer) *domain.TerrariumModel {
	t.Helper()

	models, err := ts.Repos.TerrariumModel.GetAll(context.Background())
	if err != nil || len(models) == 0 {
		t.Fatalf("no terrarium models seeded: %v", err)
	}
	return models[0]
}

// PlantNamed returns the seeded plant called name.
func PlantNamed(t *testing.T, ts *TestServer, name string) *domain.Plant {
	t.Helper()

	plants, err := ts.Repos.Plant.GetAll(context.Background())
	if err != nil {
		t.Fatalf("failed to list plants: %v", err)
	}
	for _, p := range plants {
		if p.Name == name {
			return p
		}
	}
	t.Fatalf("plant %q not seeded", name)
	return nil
}

// CreateTerrarium creates a terrarium for userID through the store layer.
func CreateTerrarium(t *testing.T, ts *TestServer, userID uuid.UUID) *domain.LiveTerrarium {
	t.Helper()

	terrarium, err := ts.Services.Terrarium.Create(context.Background(), service.CreateTerrariumInput{
		UserID:  userID.String(),
		ModelID: FirstModel(t, ts).ID.String(),
	})
	if err != nil {
		t.Fatalf("failed to create terrarium: %v", err)
	}
	return terrarium
}

func describe(resp *http.Response) string {
	return fmt.Sprintf("%s %s -> %d", resp.Request.Method, resp.Request.URL.Path, resp.StatusCode)
}

package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/samber/oops"
)

// APIClient talks to the backend as one browser session: the session cookie
// lives in its jar.
type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIClient creates a new API client with an empty cookie jar
func NewAPIClient(baseURL string) *APIClient {
	jar, _ := cookiejar.New(nil)
	return &APIClient{
		baseURL: baseURL + "/api",
		httpClient: &http.Client{
			Jar:     jar,
			Timeout: 30 * time.Second,
		},
	}
}

// Response types matching backend

type Session struct {
	ID       string `json:"_id"`
	Username string `json:"Username"`
	Success  bool   `json:"Success"`
}

type User struct {
	ID           string `json:"_id"`
	Username     string `json:"Username"`
	EmailAddress string `json:"EmailAddress"`
}

type Model struct {
	ID             string  `json:"_id"`
	ModelID        int     `json:"ModelID"`
	SpaceAvailable float64 `json:"SpaceAvailable"`
}

type Plant struct {
	ID           string  `json:"_id"`
	Name         string  `json:"Name"`
	Temperature  float64 `json:"Temperature"`
	SoilMoisture float64 `json:"SoilMoisture"`
	Humidity     float64 `json:"Humidity"`
	LightLevel   float64 `json:"LightLevel"`
}

type Terrarium struct {
	ID           string  `json:"_id"`
	User         string  `json:"User"`
	Model        string  `json:"Model"`
	Plant        string  `json:"Plant"`
	Temperature  float64 `json:"Temperature"`
	SoilMoisture float64 `json:"SoilMoisture"`
	Humidity     float64 `json:"Humidity"`
	LightLevel   float64 `json:"LightLevel"`
	DaysGrown    int     `json:"DaysGrown"`
}

type Readings struct {
	TerrariumID  string   `json:"TerrariumID"`
	Temperature  *float64 `json:"Temperature,omitempty"`
	SoilMoisture *float64 `json:"SoilMoisture,omitempty"`
	Humidity     *float64 `json:"Humidity,omitempty"`
	LightLevel   *float64 `json:"LightLevel,omitempty"`
	DaysGrown    *int     `json:"DaysGrown,omitempty"`
}

type errorBody struct {
	Message string `json:"Message"`
}

// StatusError is returned for any non-200 response.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	return http.StatusText(e.Status) + ": " + e.Message
}

func (c *APIClient) Register(username, password, email string) (*Session, error) {
	var session Session
	err := c.do(http.MethodPost, "/users/register", map[string]string{
		"Username":     username,
		"Password":     password,
		"EmailAddress": email,
	}, &session)
	if err != nil {
		return nil, oops.With("operation", "register", "username", username).Wrap(err)
	}
	return &session, nil
}

func (c *APIClient) Login(username, password string) (*Session, error) {
	var session Session
	err := c.do(http.MethodPost, "/users/login", map[string]string{
		"Username": username,
		"Password": password,
	}, &session)
	if err != nil {
		return nil, oops.With("operation", "login", "username", username).Wrap(err)
	}
	return &session, nil
}

// Me returns the signed-in user.
func (c *APIClient) Me() (*User, error) {
	var body struct {
		User User `json:"user"`
	}
	if err := c.do(http.MethodGet, "/users/", nil, &body); err != nil {
		return nil, oops.With("operation", "me").Wrap(err)
	}
	return &body.User, nil
}

func (c *APIClient) Logout() error {
	return c.do(http.MethodDelete, "/users/", nil, nil)
}

func (c *APIClient) ListModels() ([]Model, error) {
	var models []Model
	if err := c.do(http.MethodGet, "/terrarium/models", nil, &models); err != nil {
		return nil, oops.With("operation", "list models").Wrap(err)
	}
	return models, nil
}

func (c *APIClient) ListPlants() ([]Plant, error) {
	var plants []Plant
	if err := c.do(http.MethodGet, "/terrarium/plants", nil, &plants); err != nil {
		return nil, oops.With("operation", "list plants").Wrap(err)
	}
	return plants, nil
}

func (c *APIClient) CreateTerrarium(userID, modelID string) (*Terrarium, error) {
	var t Terrarium
	err := c.do(http.MethodPost, "/terrarium/new", map[string]string{
		"UserID":  userID,
		"ModelID": modelID,
	}, &t)
	if err != nil {
		return nil, oops.With("operation", "create terrarium").Wrap(err)
	}
	return &t, nil
}

func (c *APIClient) AssignPlant(terrariumID, plantID string) (*Terrarium, error) {
	var t Terrarium
	err := c.do(http.MethodPut, "/terrarium/plant", map[string]string{
		"TerrariumID": terrariumID,
		"PlantID":     plantID,
	}, &t)
	if err != nil {
		return nil, oops.With("operation", "assign plant").Wrap(err)
	}
	return &t, nil
}

func (c *APIClient) RecordReadings(r Readings) (*Terrarium, error) {
	var t Terrarium
	if err := c.do(http.MethodPut, "/terrarium/readings", r, &t); err != nil {
		return nil, oops.With("operation", "record readings", "terrarium_id", r.TerrariumID).Wrap(err)
	}
	return &t, nil
}

func (c *APIClient) ListTerrariums(userID string) ([]Terrarium, error) {
	var list []Terrarium
	if err := c.do(http.MethodGet, "/terrarium/", map[string]string{"UserID": userID}, &list); err != nil {
		return nil, oops.With("operation", "list terrariums").Wrap(err)
	}
	return list, nil
}

func (c *APIClient) do(method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var e errorBody
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return &StatusError{Status: resp.StatusCode, Message: e.Message}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

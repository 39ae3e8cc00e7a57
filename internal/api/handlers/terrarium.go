package handlers

import (
	"net/http"

	"github.com/glowupgrow/terrarium-api/internal/api/respond"
	"github.com/glowupgrow/terrarium-api/internal/apperr"
	"github.com/glowupgrow/terrarium-api/internal/service"
	"github.com/glowupgrow/terrarium-api/internal/validate"
)

type TerrariumHandler struct {
	terrariums *service.TerrariumService
}

func NewTerrariumHandler(terrariums *service.TerrariumService) *TerrariumHandler {
	return &TerrariumHandler{terrariums: terrariums}
}

type CreateTerrariumRequest struct {
	UserID  string `json:"UserID" jsonschema:"required,minLength=1"`
	ModelID string `json:"ModelID" jsonschema:"required,minLength=1"`
}

type AssignPlantRequest struct {
	TerrariumID string `json:"TerrariumID" jsonschema:"required,minLength=1"`
	PlantID     string `json:"PlantID" jsonschema:"required,minLength=1"`
}

// ListTerrariumsRequest and GetTerrariumRequest arrive as a GET body; the
// query string is accepted as well for clients that cannot send one.
type ListTerrariumsRequest struct {
	UserID string `json:"UserID"`
}

type GetTerrariumRequest struct {
	TerrariumID string `json:"TerrariumID"`
}

type RecordReadingsRequest struct {
	TerrariumID  string   `json:"TerrariumID" jsonschema:"required,minLength=1"`
	Temperature  *float64 `json:"Temperature,omitempty"`
	SoilMoisture *float64 `json:"SoilMoisture,omitempty" jsonschema:"minimum=0"`
	Humidity     *float64 `json:"Humidity,omitempty" jsonschema:"minimum=0"`
	LightLevel   *float64 `json:"LightLevel,omitempty" jsonschema:"minimum=0"`
	DaysGrown    *int     `json:"DaysGrown,omitempty" jsonschema:"minimum=0"`
}

var (
	createTerrariumDecoder = validate.MustDecoder[CreateTerrariumRequest]()
	assignPlantDecoder     = validate.MustDecoder[AssignPlantRequest]()
	listTerrariumsDecoder  = validate.MustDecoder[ListTerrariumsRequest]()
	getTerrariumDecoder    = validate.MustDecoder[GetTerrariumRequest]()
	recordReadingsDecoder  = validate.MustDecoder[RecordReadingsRequest]()
)

// Create handles POST /api/terrarium/new
func (h *TerrariumHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, err := createTerrariumDecoder.Decode(r.Body)
	if err != nil {
		respond.Error(w, r, apperr.Invalid(err, service.MsgCreateFieldsRequired))
		return
	}

	terrarium, err := h.terrariums.Create(r.Context(), service.CreateTerrariumInput{
		UserID:  req.UserID,
		ModelID: req.ModelID,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, terrarium)
}

// AssignPlant handles PUT /api/terrarium/plant
func (h *TerrariumHandler) AssignPlant(w http.ResponseWriter, r *http.Request) {
	req, err := assignPlantDecoder.Decode(r.Body)
	if err != nil {
		respond.Error(w, r, apperr.Invalid(err, service.MsgAssignFieldsRequired))
		return
	}

	terrarium, err := h.terrariums.AssignPlant(r.Context(), service.AssignPlantInput{
		TerrariumID: req.TerrariumID,
		PlantID:     req.PlantID,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, terrarium)
}

// List handles GET /api/terrarium/
func (h *TerrariumHandler) List(w http.ResponseWriter, r *http.Request) {
	req, err := listTerrariumsDecoder.Decode(r.Body)
	if err != nil {
		respond.Error(w, r, apperr.Invalid(err, service.MsgUserIDRequired))
		return
	}
	if req.UserID == "" {
		req.UserID = r.URL.Query().Get("UserID")
	}

	terrariums, err := h.terrariums.ListForUser(r.Context(), req.UserID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, nonNil(terrariums))
}

// Get handles GET /api/terrarium/single
func (h *TerrariumHandler) Get(w http.ResponseWriter, r *http.Request) {
	req, err := getTerrariumDecoder.Decode(r.Body)
	if err != nil {
		respond.Error(w, r, apperr.Invalid(err, service.MsgTerrariumIDRequired))
		return
	}
	if req.TerrariumID == "" {
		req.TerrariumID = r.URL.Query().Get("TerrariumID")
	}

	terrarium, err := h.terrariums.Get(r.Context(), req.TerrariumID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, terrarium)
}

// RecordReadings handles PUT /api/terrarium/readings
func (h *TerrariumHandler) RecordReadings(w http.ResponseWriter, r *http.Request) {
	req, err := recordReadingsDecoder.Decode(r.Body)
	if err != nil {
		respond.Error(w, r, apperr.Invalid(err, service.MsgReadingsFieldsRequired))
		return
	}

	terrarium, err := h.terrariums.RecordReadings(r.Context(), service.RecordReadingsInput{
		TerrariumID:  req.TerrariumID,
		Temperature:  req.Temperature,
		SoilMoisture: req.SoilMoisture,
		Humidity:     req.Humidity,
		LightLevel:   req.LightLevel,
		DaysGrown:    req.DaysGrown,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, terrarium)
}

// ListModels handles GET /api/terrarium/models
func (h *TerrariumHandler) ListModels(w http.ResponseWriter, r *http.Request) {
	models, err := h.terrariums.ListModels(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, nonNil(models))
}

// ListPlants handles GET /api/terrarium/plants
func (h *TerrariumHandler) ListPlants(w http.ResponseWriter, r *http.Request) {
	plants, err := h.terrariums.ListPlants(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, nonNil(plants))
}

// nonNil keeps empty lists rendering as [] rather than null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/glowupgrow/terrarium-api/internal/api/middleware"
	"github.com/glowupgrow/terrarium-api/internal/api/respond"
	"github.com/glowupgrow/terrarium-api/internal/apperr"
	"github.com/glowupgrow/terrarium-api/internal/domain"
	"github.com/glowupgrow/terrarium-api/internal/service"
	"github.com/glowupgrow/terrarium-api/internal/validate"
)

type UserHandler struct {
	auth *service.AuthService
}

func NewUserHandler(auth *service.AuthService) *UserHandler {
	return &UserHandler{auth: auth}
}

type RegisterRequest struct {
	Username     string `json:"Username" jsonschema:"required,minLength=1"`
	Password     string `json:"Password" jsonschema:"required,minLength=1"`
	EmailAddress string `json:"EmailAddress" jsonschema:"required,minLength=1"`
}

type LoginRequest struct {
	Username string `json:"Username" jsonschema:"required,minLength=1"`
	Password string `json:"Password" jsonschema:"required,minLength=1"`
}

type UpdateProfileRequest struct {
	EmailAddress *string `json:"EmailAddress,omitempty" jsonschema:"minLength=1"`
	Password     *string `json:"Password,omitempty" jsonschema:"minLength=1"`
}

// SessionResponse is returned by register and login alongside the cookie.
type SessionResponse struct {
	ID       uuid.UUID `json:"_id"`
	Username string    `json:"Username"`
	Success  bool      `json:"Success"`
}

type UserResponse struct {
	User *domain.User `json:"user"`
}

type SuccessResponse struct {
	Success bool `json:"Success"`
}

var (
	registerDecoder = validate.MustDecoder[RegisterRequest]()
	loginDecoder    = validate.MustDecoder[LoginRequest]()
	profileDecoder  = validate.MustDecoder[UpdateProfileRequest]()
)

// Register handles POST /api/users/register
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	req, err := registerDecoder.Decode(r.Body)
	if err != nil {
		respond.Error(w, r, apperr.Invalid(err, service.MsgRegisterFieldsRequired))
		return
	}

	result, err := h.auth.Register(r.Context(), service.RegisterInput{
		Username:     req.Username,
		Password:     req.Password,
		EmailAddress: req.EmailAddress,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	h.startSession(w, result)
}

// Login handles POST /api/users/login
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, err := loginDecoder.Decode(r.Body)
	if err != nil {
		respond.Error(w, r, apperr.Invalid(err, service.MsgLoginFieldsRequired))
		return
	}

	result, err := h.auth.Login(r.Context(), service.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	h.startSession(w, result)
}

func (h *UserHandler) startSession(w http.ResponseWriter, result *service.AuthResult) {
	h.auth.Sessions().SetCookie(w, result.Token, result.ExpiresAt)
	respond.JSON(w, http.StatusOK, SessionResponse{
		ID:       result.User.ID,
		Username: result.User.Username,
		Success:  true,
	})
}

// Me handles GET /api/users/
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respond.Error(w, r, apperr.Unauthorized("no user in context"))
		return
	}
	respond.JSON(w, http.StatusOK, UserResponse{User: user})
}

// UpdateProfile handles PUT /api/users/
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respond.Error(w, r, apperr.Unauthorized("no user in context"))
		return
	}

	req, err := profileDecoder.Decode(r.Body)
	if err != nil {
		respond.Error(w, r, apperr.Invalid(err, service.MsgProfileFieldsRequired))
		return
	}

	updated, err := h.auth.UpdateProfile(r.Context(), user, service.UpdateProfileInput{
		EmailAddress: req.EmailAddress,
		Password:     req.Password,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, UserResponse{User: updated})
}

// Logout handles DELETE /api/users/
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.auth.Sessions().ClearCookie(w)
	respond.JSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// Get handles GET /api/users/{id}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.auth.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, user)
}

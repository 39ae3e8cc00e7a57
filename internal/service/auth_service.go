package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/glowupgrow/terrarium-api/internal/apperr"
	"github.com/glowupgrow/terrarium-api/internal/auth"
	"github.com/glowupgrow/terrarium-api/internal/domain"
	"github.com/glowupgrow/terrarium-api/internal/logging"
	"github.com/glowupgrow/terrarium-api/internal/observability"
	"github.com/glowupgrow/terrarium-api/internal/repository"
)

// Public messages for the user routes.
const (
	MsgRegisterFieldsRequired = "Error: Username, Password, and Email Address are required"
	MsgLoginFieldsRequired    = "Error: Username and Password required"
	MsgProfileFieldsRequired  = "Error: EmailAddress or Password is required"
	MsgUserNotFound           = "Error: user not found"
)

// dummyPassword is hashed once at startup. Logins for unknown usernames
// verify against that digest so they cost the same as a wrong password.
const dummyPassword = "terrarium-timing-equalization"

type AuthService struct {
	userRepo    repository.UserRepository
	hasher      auth.PasswordHasher
	sessions    *auth.SessionManager
	metrics     *observability.Metrics
	dummyDigest string
}

func NewAuthService(
	userRepo repository.UserRepository,
	hasher auth.PasswordHasher,
	sessions *auth.SessionManager,
	metrics *observability.Metrics,
) *AuthService {
	digest, err := hasher.Hash(dummyPassword)
	if err != nil {
		slog.Warn("could not prepare dummy digest; unknown-user logins will return faster", "error", err)
	}
	return &AuthService{
		userRepo:    userRepo,
		hasher:      hasher,
		sessions:    sessions,
		metrics:     metrics,
		dummyDigest: digest,
	}
}

type RegisterInput struct {
	Username     string
	Password     string
	EmailAddress string
}

type LoginInput struct {
	Username string
	Password string
}

// UpdateProfileInput carries the optional fields of a profile update. A nil
// field is left unchanged.
type UpdateProfileInput struct {
	EmailAddress *string
	Password     *string
}

// AuthResult is a freshly authenticated user and the session token to hand
// back in the cookie.
type AuthResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

func (s *AuthService) Sessions() *auth.SessionManager {
	return s.sessions
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	if input.Username == "" || input.Password == "" || input.EmailAddress == "" {
		return nil, apperr.Validation(MsgRegisterFieldsRequired)
	}

	existing, err := s.userRepo.GetByUsername(ctx, input.Username)
	switch {
	case err == nil && existing != nil:
		return nil, apperr.UsernameTaken()
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, apperr.Internal(err, "lookup username")
	}

	user := domain.NewUser(input.Username, input.Password, input.EmailAddress)
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUsernameTaken) {
			return nil, apperr.UsernameTaken()
		}
		return nil, apperr.Internal(err, "create user")
	}

	slog.InfoContext(ctx, "user registered", "user_id", user.ID)
	return s.issue(user)
}

// Login checks the credentials. Unknown usernames and wrong passwords produce
// the same error.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	if input.Username == "" || input.Password == "" {
		return nil, apperr.Validation(MsgLoginFieldsRequired)
	}

	user, err := s.userRepo.GetByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.hasher.Verify(s.dummyDigest, input.Password)
			s.metrics.RecordAuthFailure(observability.ReasonInvalidCredentials)
			return nil, apperr.InvalidCredentials()
		}
		return nil, apperr.Internal(err, "lookup user")
	}

	if !s.hasher.Verify(user.Password, input.Password) {
		s.metrics.RecordAuthFailure(observability.ReasonInvalidCredentials)
		return nil, apperr.InvalidCredentials()
	}

	if s.hasher.NeedsUpgrade(user.Password) {
		s.upgradeDigest(ctx, user, input.Password)
	}

	return s.issue(user)
}

// upgradeDigest re-hashes a legacy or weak digest. Failure only costs the
// upgrade; the login itself already succeeded.
func (s *AuthService) upgradeDigest(ctx context.Context, user *domain.User, plaintext string) {
	user.SetPassword(plaintext)
	if err := s.userRepo.Update(ctx, user); err != nil {
		logging.LogError(ctx, slog.Default(), "password digest upgrade failed", err)
		return
	}
	slog.InfoContext(ctx, "password digest upgraded", "user_id", user.ID)
}

// Authenticate resolves a session token to its user. Any token problem, and a
// token whose user no longer exists, is Unauthorized.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	userID, err := s.sessions.Parse(token)
	if err != nil {
		s.metrics.RecordAuthFailure(observability.ReasonInvalidSession)
		return nil, apperr.Unauthorized(observability.ReasonInvalidSession)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.metrics.RecordAuthFailure(observability.ReasonUnknownUser)
			return nil, apperr.Unauthorized(observability.ReasonUnknownUser)
		}
		return nil, apperr.Internal(err, "resolve session user")
	}
	return user, nil
}

// GetUser looks a user up by its string id. Malformed and unknown ids are
// both NotFound.
func (s *AuthService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.NotFound(MsgUserNotFound)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(MsgUserNotFound)
		}
		return nil, apperr.Internal(err, "get user")
	}
	return user, nil
}

// UpdateProfile changes the email address and/or password of user. A new
// password goes through the store's write hook like a registration does.
func (s *AuthService) UpdateProfile(ctx context.Context, user *domain.User, input UpdateProfileInput) (*domain.User, error) {
	email := input.EmailAddress != nil && *input.EmailAddress != ""
	password := input.Password != nil && *input.Password != ""
	if !email && !password {
		return nil, apperr.Validation(MsgProfileFieldsRequired)
	}

	if email {
		user.EmailAddress = *input.EmailAddress
	}
	if password {
		user.SetPassword(*input.Password)
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Unauthorized(observability.ReasonUnknownUser)
		}
		return nil, apperr.Internal(err, "update user")
	}

	slog.InfoContext(ctx, "user profile updated", "user_id", user.ID, "password_changed", password)
	return user, nil
}

func (s *AuthService) issue(user *domain.User) (*AuthResult, error) {
	token, expiresAt, err := s.sessions.Issue(user.ID)
	if err != nil {
		return nil, apperr.Internal(err, "issue session")
	}
	return &AuthResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

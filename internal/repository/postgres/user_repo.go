package postgres

import (
	"context"
	"errors"

	"github.com/glowupgrow/terrarium-api/internal/auth"
	"github.com/glowupgrow/terrarium-api/internal/domain"
	"github.com/glowupgrow/terrarium-api/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type userRepository struct {
	db     *gorm.DB
	hasher auth.PasswordHasher
}

func NewUserRepository(db *gorm.DB, hasher auth.PasswordHasher) *userRepository {
	return &userRepository{db: db, hasher: hasher}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if _, err := repository.PrepareUserWrite(r.hasher, user, true); err != nil {
		return err
	}
	return translateUserError(r.db.WithContext(ctx).Create(user).Error)
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).First(&user, "username = ?", username).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Update writes the user. The password column is only written when the hook
// produced a new digest.
func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	writePassword, err := repository.PrepareUserWrite(r.hasher, user, false)
	if err != nil {
		return err
	}

	tx := r.db.WithContext(ctx)
	if !writePassword {
		tx = tx.Omit("Password")
	}
	return translateUserError(tx.Save(user).Error)
}

func translateUserError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return repository.ErrUsernameTaken
	}
	return err
}

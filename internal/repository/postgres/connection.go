package postgres

import (
	"context"
	"log/slog"
	"time"

	"github.com/glowupgrow/terrarium-api/internal/auth"
	"github.com/glowupgrow/terrarium-api/internal/domain"
	"github.com/glowupgrow/terrarium-api/internal/repository"
	"github.com/sethvargo/go-retry"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	connectAttempts = 5
	connectBackoff  = 500 * time.Millisecond
)

// NewConnection opens the database, retrying while it comes up, and migrates
// the schema.
func NewConnection(ctx context.Context, databaseURL string) (*gorm.DB, error) {
	var db *gorm.DB

	backoff := retry.WithMaxRetries(connectAttempts, retry.NewExponential(connectBackoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		conn, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
		if err != nil {
			slog.WarnContext(ctx, "database not reachable, retrying", "error", err)
			return retry.RetryableError(err)
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			slog.WarnContext(ctx, "database ping failed, retrying", "error", err)
			return retry.RetryableError(err)
		}

		db = conn
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate creates or updates the tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.TerrariumModel{},
		&domain.Plant{},
		&domain.LiveTerrarium{},
	)
}

func NewRepositories(db *gorm.DB, hasher auth.PasswordHasher) *repository.Repositories {
	return &repository.Repositories{
		User:           NewUserRepository(db, hasher),
		TerrariumModel: NewTerrariumModelRepository(db),
		Plant:          NewPlantRepository(db),
		LiveTerrarium:  NewLiveTerrariumRepository(db),
	}
}

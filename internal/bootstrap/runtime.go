// Package bootstrap wires the database and Redis for the commands.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"inkpost/internal/cache"
	"inkpost/internal/config"
	"inkpost/internal/database"
	"inkpost/internal/middleware"
	"inkpost/internal/models"
	"inkpost/internal/security"
	"inkpost/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedPreset seeds an empty development database with the named preset.
	SeedPreset string
}

// InitRuntime connects to the database, applies the schema and connects to
// Redis. The Redis client is nil when REDIS_URL is empty or unreachable.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	if err := database.ApplySchema(ctx, db, cfg); err != nil {
		return nil, nil, fmt.Errorf("schema apply failed: %w", err)
	}

	rdb := cache.InitRedis(cfg.RedisURL)

	if err := seedDevelopment(ctx, cfg, db, opts.SeedPreset); err != nil {
		return nil, nil, fmt.Errorf("development seeding failed: %w", err)
	}

	return db, rdb, nil
}

func seedDevelopment(ctx context.Context, cfg *config.Config, db *gorm.DB, preset string) error {
	if preset == "" || cfg.Env != "development" {
		return nil
	}

	var users int64
	if err := db.WithContext(ctx).Model(&models.User{}).Count(&users).Error; err != nil {
		return err
	}
	if users > 0 {
		return nil
	}

	hasher, err := security.NewPasswordHasher(cfg.PasswordScheme)
	if err != nil {
		return err
	}
	if _, err := seed.NewSeeder(db, hasher, 0).ApplyPreset(ctx, preset); err != nil {
		return err
	}
	middleware.Logger.InfoContext(ctx, "seeded empty development database", slog.String("preset", preset))
	return nil
}

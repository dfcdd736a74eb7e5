// Command seed creates the initial admin account when it does not exist.
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/iliyamo/unit-reservation/internal/config"
	"github.com/iliyamo/unit-reservation/internal/database"
	"github.com/iliyamo/unit-reservation/internal/logger"
	"github.com/iliyamo/unit-reservation/internal/model"
	"github.com/iliyamo/unit-reservation/internal/repository"
	"github.com/iliyamo/unit-reservation/internal/utils"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.StoreDriver != config.DriverMySQL {
		log.Fatalf("seed needs STORE_DRIVER=%s", config.DriverMySQL)
	}
	zl, err := logger.New(cfg.LogLevel, cfg.LogFormat, "unit-reservation-seed")
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.Open(ctx, cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		zl.Fatal("open database", zap.Error(err))
	}
	defer db.Close()
	if err := database.Migrate(ctx, db); err != nil {
		zl.Fatal("migrate", zap.Error(err))
	}

	email := envOr("SEED_ADMIN_EMAIL", "admin@example.com")
	created, err := seedAdmin(ctx, repository.NewMySQLStore(db, cfg.TxIsolation), model.User{
		Name:  envOr("SEED_ADMIN_NAME", "Administrator"),
		Email: email,
		Role:  model.RoleAdmin,
	}, envOr("SEED_ADMIN_PASSWORD", "admin123"), cfg.BcryptCost)
	if err != nil {
		zl.Fatal("seed admin", zap.Error(err))
	}
	if created {
		zl.Info("admin created", zap.String("email", email))
	} else {
		zl.Info("admin already present", zap.String("email", email))
	}
}

// seedAdmin inserts u with the hashed password unless the email is taken.
func seedAdmin(ctx context.Context, g repository.Gateway, u model.User, password string, cost int) (bool, error) {
	_, err := g.Users().GetByEmail(ctx, u.Email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return false, err
	}
	u.PasswordHash, err = utils.HashPassword(password, cost)
	if err != nil {
		return false, err
	}
	if err := g.Users().Create(ctx, &u); err != nil {
		return false, err
	}
	return true, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

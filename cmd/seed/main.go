package main

import (
	"context"
	"log/slog"
	"os"

	"golang.org/x/crypto/bcrypt"

	"github.com/chronicle-cms/chronicle/internal/app"
	"github.com/chronicle-cms/chronicle/internal/platform/db"
	"github.com/chronicle-cms/chronicle/internal/rbac"
)

// Seeds the permission catalog, default roles and their grants, and a
// bootstrap administrator account. Safe to run repeatedly.
func main() {
	ctx := context.Background()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	if err := rbac.Seed(ctx, pool); err != nil {
		logger.Error("seed rbac", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("permission catalog and default roles seeded")

	adminEmail := os.Getenv("SEED_ADMIN_EMAIL")
	adminPassword := os.Getenv("SEED_ADMIN_PASSWORD")
	if adminEmail == "" || adminPassword == "" {
		logger.Info("SEED_ADMIN_EMAIL or SEED_ADMIN_PASSWORD not set, skipping bootstrap admin")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("hash admin password", slog.Any("error", err))
		os.Exit(1)
	}

	tag, err := pool.Exec(ctx, `
		INSERT INTO users (email, name, password_hash, role_id, is_active)
		SELECT $1, 'Administrator', $2, r.id, true
		FROM roles r
		WHERE r.name = $3
		ON CONFLICT (email) DO NOTHING`,
		adminEmail, string(hash), rbac.RoleAdmin)
	if err != nil {
		logger.Error("seed admin user", slog.Any("error", err))
		os.Exit(1)
	}
	if tag.RowsAffected() > 0 {
		logger.Info("bootstrap admin created", slog.String("email", adminEmail))
	} else {
		logger.Info("bootstrap admin already present", slog.String("email", adminEmail))
	}
}

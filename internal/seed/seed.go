package seed

import (
	"context"

	"github.com/campusshare/campusshare/internal/app/models"
	"github.com/campusshare/campusshare/internal/app/repositories"
	"github.com/campusshare/campusshare/internal/config"
	"github.com/campusshare/campusshare/internal/pkg/auth"
	"github.com/campusshare/campusshare/internal/pkg/logger"
)

// CreateDefaultData ensures a default admin account exists so a fresh
// deployment can be administered. Does nothing when seeding is not configured
// or the account already exists.
func CreateDefaultData(ctx context.Context, repos *repositories.Repositories, cfg *config.Config) error {
	email := cfg.Seed.AdminEmail
	password := cfg.Seed.AdminPassword
	if email == "" || password == "" {
		logger.Debug().Msg("Admin seeding not configured, skipping")
		return nil
	}

	exists, err := repos.User.ExistsByEmail(ctx, email)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	admin := &models.User{
		Username:    "admin",
		Email:       email,
		Password:    hashed,
		Role:        models.RoleAdmin,
		Permissions: []string{"manage_users", "manage_resources"},
	}

	if err := repos.User.Create(ctx, admin); err != nil {
		return err
	}

	logger.Info().Str("email", email).Msg("Default admin account created")
	return nil
}

// Package bootstrap makes sure a fresh installation has an administrator.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/project-management/internal"
	userDatamodel "github.com/frahmantamala/project-management/internal/core/datamodel/user"
)

const (
	adminPosition   = "Administrator"
	adminDepartment = "Management"
)

type UserStore interface {
	GetByRole(ctx context.Context, role string) ([]*userDatamodel.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, u *userDatamodel.User) error
}

type PasswordHasher interface {
	Hash(plain string) (string, error)
}

type Seeder struct {
	store  UserStore
	hasher PasswordHasher
	cfg    internal.BootstrapConfig
	logger *slog.Logger
}

func NewSeeder(store UserStore, hasher PasswordHasher, cfg internal.BootstrapConfig, logger *slog.Logger) *Seeder {
	return &Seeder{
		store:  store,
		hasher: hasher,
		cfg:    cfg,
		logger: logger,
	}
}

// EnsureAdmin creates the configured admin unless some ADMIN already exists.
// It reports whether an account was created.
func (s *Seeder) EnsureAdmin(ctx context.Context) (bool, error) {
	admins, err := s.store.GetByRole(ctx, internal.RoleAdmin)
	if err != nil {
		return false, fmt.Errorf("look up admins: %w", err)
	}
	if len(admins) > 0 {
		s.logger.Info("admin account present, skipping bootstrap", "admins", len(admins))
		return false, nil
	}

	taken, err := s.identityTaken(ctx)
	if err != nil {
		return false, err
	}
	if taken != "" {
		s.logger.Error("bootstrap admin identity belongs to a non-admin account, skipping bootstrap",
			"field", taken, "username", s.cfg.AdminUsername, "email", s.cfg.AdminEmail)
		return false, nil
	}

	hash, err := s.hasher.Hash(s.cfg.AdminPassword)
	if err != nil {
		return false, fmt.Errorf("hash admin password: %w", err)
	}

	admin := &userDatamodel.User{
		Name:         s.cfg.AdminName,
		Username:     s.cfg.AdminUsername,
		Email:        s.cfg.AdminEmail,
		PasswordHash: hash,
		Position:     adminPosition,
		Department:   adminDepartment,
		Role:         internal.RoleAdmin,
	}
	if err := s.store.Create(ctx, admin); err != nil {
		return false, fmt.Errorf("create admin: %w", err)
	}

	s.logger.Info("bootstrap admin created", "user_id", admin.ID, "username", admin.Username, "email", admin.Email)
	s.logger.Warn("change the bootstrap admin password after first login", "username", admin.Username)
	return true, nil
}

// identityTaken names the configured admin field already in use, or "".
func (s *Seeder) identityTaken(ctx context.Context) (string, error) {
	exists, err := s.store.ExistsByUsername(ctx, s.cfg.AdminUsername)
	if err != nil {
		return "", fmt.Errorf("check admin username: %w", err)
	}
	if exists {
		return "username", nil
	}

	exists, err = s.store.ExistsByEmail(ctx, s.cfg.AdminEmail)
	if err != nil {
		return "", fmt.Errorf("check admin email: %w", err)
	}
	if exists {
		return "email", nil
	}
	return "", nil
}

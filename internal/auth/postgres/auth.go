package auth

import (
	"context"
	"database/sql"
	"errors"

	"github.com/frahmantamala/project-management/internal/auth"
	userDatamodel "github.com/frahmantamala/project-management/internal/core/datamodel/user"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

var _ auth.UserRepository = (*Repository)(nil)

func (r *Repository) GetCredentials(ctx context.Context, username string) (*auth.Credentials, error) {
	var creds auth.Credentials
	query := `SELECT id, username, password_hash, role FROM users WHERE username = ?`

	row := r.db.WithContext(ctx).Raw(query, username).Row()
	if err := row.Scan(&creds.ID, &creds.Username, &creds.PasswordHash, &creds.Role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, auth.ErrUserNotFound
		}
		return nil, err
	}
	return &creds, nil
}

func (r *Repository) UsernameExists(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, `SELECT COUNT(1) FROM users WHERE username = ?`, username)
}

func (r *Repository) EmailExists(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT COUNT(1) FROM users WHERE email = ?`, email)
}

func (r *Repository) exists(ctx context.Context, query string, arg interface{}) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Raw(query, arg).Row().Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *Repository) CreateUser(ctx context.Context, u *userDatamodel.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

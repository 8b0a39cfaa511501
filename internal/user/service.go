package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/project-management/internal"
	userDatamodel "github.com/frahmantamala/project-management/internal/core/datamodel/user"
)

type RepositoryAPI interface {
	GetAll(ctx context.Context) ([]*userDatamodel.User, error)
	GetByID(ctx context.Context, id int64) (*userDatamodel.User, error)
	GetByUsername(ctx context.Context, username string) (*userDatamodel.User, error)
	GetByEmail(ctx context.Context, email string) (*userDatamodel.User, error)
	GetByRole(ctx context.Context, role string) ([]*userDatamodel.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, u *userDatamodel.User) error
	Update(ctx context.Context, u *userDatamodel.User) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	Delete(ctx context.Context, id int64) error
	IsReferenced(ctx context.Context, id int64) (bool, error)
	ProjectExists(ctx context.Context, projectID int64) (bool, error)
	GetProjectMembers(ctx context.Context, projectID int64) ([]*userDatamodel.User, error)
}

// PasswordHasher turns a plaintext password into a stored digest and checks it back.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, digest string) bool
}

type Service struct {
	repo   RepositoryAPI
	hasher PasswordHasher
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, hasher PasswordHasher, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		hasher: hasher,
		logger: logger,
	}
}

func userNotFound(format string, arg interface{}) error {
	return internal.NewNotFoundError(fmt.Sprintf(format, arg), internal.ErrCodeUserNotFound)
}

func (s *Service) ListUsers(ctx context.Context) ([]UserResponse, error) {
	rows, err := s.repo.GetAll(ctx)
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, fmt.Errorf("list users: %w", err)
	}
	return ToResponses(FromDataModelSlice(rows)), nil
}

func (s *Service) GetUser(ctx context.Context, id int64) (*UserResponse, error) {
	u, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := u.ToResponse()
	return &resp, nil
}

func (s *Service) getByID(ctx context.Context, id int64) (*User, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.logger.Warn("user not found", "user_id", id)
			return nil, userNotFound("User not found with id: %d", id)
		}
		s.logger.Error("failed to get user", "error", err, "user_id", id)
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return FromDataModel(row), nil
}

func (s *Service) GetUserByEmail(ctx context.Context, email string) (*UserResponse, error) {
	row, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, userNotFound("User not found with email: %s", email)
		}
		s.logger.Error("failed to get user by email", "error", err)
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	resp := FromDataModel(row).ToResponse()
	return &resp, nil
}

func (s *Service) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	row, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, userNotFound("User not found with username: %s", username)
		}
		s.logger.Error("failed to get user by username", "error", err)
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return FromDataModel(row), nil
}

func (s *Service) GetUsersByRole(ctx context.Context, role string) ([]UserResponse, error) {
	rows, err := s.repo.GetByRole(ctx, role)
	if err != nil {
		s.logger.Error("failed to get users by role", "error", err, "role", role)
		return nil, fmt.Errorf("get users by role: %w", err)
	}
	if len(rows) == 0 {
		return nil, userNotFound("No users found with role: %s", role)
	}
	return ToResponses(FromDataModelSlice(rows)), nil
}

func (s *Service) CreateUser(ctx context.Context, dto CreateUserDTO) (*UserResponse, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Warn("user validation failed", "error", err)
		return nil, err
	}

	if err := s.ensureUnique(ctx, dto.Username, dto.Email); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(dto.Password)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err)
		return nil, fmt.Errorf("hash password: %w", err)
	}

	role := dto.Role
	if role == "" {
		role = internal.RoleEmployee
	}

	u := &User{
		Name:         dto.Name,
		Age:          dto.Age,
		Email:        dto.Email,
		Username:     dto.Username,
		PasswordHash: hash,
		Position:     dto.Position,
		Department:   dto.Department,
		Role:         role,
	}

	row := ToDataModel(u)
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to create user", "error", err, "username", dto.Username)
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user created", "user_id", row.ID, "username", row.Username, "role", row.Role)
	resp := FromDataModel(row).ToResponse()
	return &resp, nil
}

func (s *Service) ensureUnique(ctx context.Context, username, email string) error {
	if username != "" {
		taken, err := s.repo.ExistsByUsername(ctx, username)
		if err != nil {
			return fmt.Errorf("check username: %w", err)
		}
		if taken {
			return internal.NewConflictError(fmt.Sprintf("Username already exists: %s", username), internal.ErrCodeUsernameTaken)
		}
	}
	if email != "" {
		taken, err := s.repo.ExistsByEmail(ctx, email)
		if err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if taken {
			return internal.NewConflictError(fmt.Sprintf("Email already exists: %s", email), internal.ErrCodeEmailTaken)
		}
	}
	return nil
}

func (s *Service) UpdateUser(ctx context.Context, id int64, dto UpdateUserDTO) (*UserResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	u, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var newUsername, newEmail string
	if dto.Username != nil && *dto.Username != u.Username {
		newUsername = *dto.Username
	}
	if dto.Email != nil && *dto.Email != u.Email {
		newEmail = *dto.Email
	}
	if err := s.ensureUnique(ctx, newUsername, newEmail); err != nil {
		return nil, err
	}

	u.ApplyUpdate(dto)

	if err := s.repo.Update(ctx, ToDataModel(u)); err != nil {
		s.logger.Error("failed to update user", "error", err, "user_id", id)
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.logger.Info("user updated", "user_id", id)
	resp := u.ToResponse()
	return &resp, nil
}

func (s *Service) UpdatePassword(ctx context.Context, id int64, dto UpdatePasswordDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	if _, err := s.getByID(ctx, id); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(dto.NewPassword)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err)
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.repo.UpdatePassword(ctx, id, hash); err != nil {
		s.logger.Error("failed to update password", "error", err, "user_id", id)
		return fmt.Errorf("update password: %w", err)
	}

	s.logger.Info("password updated", "user_id", id)
	return nil
}

// DeleteUser refuses to remove a user still recorded as a project creator,
// task assigner or comment author.
func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	if _, err := s.getByID(ctx, id); err != nil {
		return err
	}

	referenced, err := s.repo.IsReferenced(ctx, id)
	if err != nil {
		s.logger.Error("failed to check user references", "error", err, "user_id", id)
		return fmt.Errorf("check user references: %w", err)
	}
	if referenced {
		s.logger.Warn("delete user refused: user still referenced", "user_id", id)
		return internal.NewConflictError(
			fmt.Sprintf("User %d still owns projects, tasks or comments", id),
			internal.ErrCodeUserInUse,
		)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete user", "error", err, "user_id", id)
		return fmt.Errorf("delete user: %w", err)
	}

	s.logger.Info("user deleted", "user_id", id)
	return nil
}

// GetColleagues lists the employees assigned to a project, minus the requester.
func (s *Service) GetColleagues(ctx context.Context, projectID int64, requesterUsername string) ([]UserResponse, error) {
	exists, err := s.repo.ProjectExists(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("check project: %w", err)
	}
	if !exists {
		return nil, internal.NewNotFoundError(fmt.Sprintf("Project not found with id: %d", projectID), internal.ErrCodeProjectNotFound)
	}

	rows, err := s.repo.GetProjectMembers(ctx, projectID)
	if err != nil {
		s.logger.Error("failed to get project members", "error", err, "project_id", projectID)
		return nil, fmt.Errorf("get project members: %w", err)
	}

	colleagues := make([]UserResponse, 0, len(rows))
	for _, row := range rows {
		if row.Username == requesterUsername {
			continue
		}
		colleagues = append(colleagues, FromDataModel(row).ToResponse())
	}
	return colleagues, nil
}

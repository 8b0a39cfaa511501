package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/project-management/internal"
	userDatamodel "github.com/frahmantamala/project-management/internal/core/datamodel/user"
)

type UserRepository interface {
	GetCredentials(ctx context.Context, username string) (*Credentials, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	CreateUser(ctx context.Context, u *userDatamodel.User) error
}

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, digest string) bool
}

// Service is the main auth service with dependencies
type Service struct {
	userRepo       UserRepository
	tokenGenerator TokenGenerator
	hasher         PasswordHasher
	logger         *slog.Logger
}

// NewService creates a new auth service
func NewService(userRepo UserRepository, tokenGen TokenGenerator, hasher PasswordHasher, logger *slog.Logger) *Service {
	return &Service{
		userRepo:       userRepo,
		tokenGenerator: tokenGen,
		hasher:         hasher,
		logger:         logger,
	}
}

// Register creates an EMPLOYEE account and logs it in.
func (s *Service) Register(ctx context.Context, dto RegisterDTO) (*AuthResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	taken, err := s.userRepo.UsernameExists(ctx, dto.Username)
	if err != nil {
		s.logger.Error("failed to check username", "error", err)
		return nil, fmt.Errorf("check username: %w", err)
	}
	if taken {
		s.logger.Warn("register refused: username taken", "username", dto.Username)
		return nil, internal.NewConflictError(fmt.Sprintf("Username already exists: %s", dto.Username), internal.ErrCodeUsernameTaken)
	}

	taken, err = s.userRepo.EmailExists(ctx, dto.Email)
	if err != nil {
		s.logger.Error("failed to check email", "error", err)
		return nil, fmt.Errorf("check email: %w", err)
	}
	if taken {
		s.logger.Warn("register refused: email taken", "email", dto.Email)
		return nil, internal.NewConflictError(fmt.Sprintf("Email already exists: %s", dto.Email), internal.ErrCodeEmailTaken)
	}

	hash, err := s.hasher.Hash(dto.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &userDatamodel.User{
		Username:     dto.Username,
		Email:        dto.Email,
		PasswordHash: hash,
		Role:         internal.RoleEmployee,
	}
	if err := s.userRepo.CreateUser(ctx, u); err != nil {
		s.logger.Error("failed to create user", "error", err, "username", dto.Username)
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.tokenGenerator.GenerateAccessToken(u.Username)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered", "user_id", u.ID, "username", u.Username)
	return &AuthResponse{Token: token, Username: u.Username, Role: internal.RoleEmployee}, nil
}

// Login validates credentials and returns a token
func (s *Service) Login(ctx context.Context, dto LoginDTO) (*AuthResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	creds, err := s.userRepo.GetCredentials(ctx, dto.Username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.logger.Warn("login failed: unknown user", "username", dto.Username)
			return nil, internal.ErrInvalidCredentials
		}
		s.logger.Error("failed to load credentials", "error", err)
		return nil, fmt.Errorf("load credentials: %w", err)
	}

	if !s.hasher.Verify(dto.Password, creds.PasswordHash) {
		s.logger.Warn("login failed: password mismatch", "username", dto.Username)
		return nil, internal.ErrInvalidCredentials
	}

	token, err := s.tokenGenerator.GenerateAccessToken(creds.Username)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{Token: token, Username: creds.Username, Role: creds.EffectiveRole()}, nil
}

// ExtractUsername returns the subject of a valid token.
func (s *Service) ExtractUsername(token string) (string, error) {
	claims, err := s.tokenGenerator.ValidateToken(token)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// ResolveActor validates token and loads the user it names.
func (s *Service) ResolveActor(ctx context.Context, token string) (*internal.Actor, error) {
	username, err := s.ExtractUsername(token)
	if err != nil {
		return nil, err
	}

	creds, err := s.userRepo.GetCredentials(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, internal.ErrInvalidToken
		}
		return nil, fmt.Errorf("resolve actor: %w", err)
	}
	return creds.ToActor(), nil
}

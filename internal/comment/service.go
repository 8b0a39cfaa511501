package comment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/project-management/internal"
	"github.com/frahmantamala/project-management/internal/projection"
)

type RepositoryAPI interface {
	GetByID(ctx context.Context, id int64) (*Comment, error)
	Create(ctx context.Context, c *Comment) error
	UpdateContent(ctx context.Context, id int64, content string, updatedAt time.Time) error
	Delete(ctx context.Context, id int64) error
	ParentExists(ctx context.Context, parentID int64) (bool, error)
	UserExists(ctx context.Context, userID int64) (bool, error)
	UserIDByUsername(ctx context.Context, username string) (int64, error)
}

type ReaderAPI interface {
	Comments(ctx context.Context, scope projection.CommentScope, f projection.CommentFilter) ([]projection.CommentResponse, error)
}

// Service manages the comments of one scope; the server builds one per scope.
type Service struct {
	scope  Scope
	repo   RepositoryAPI
	reader ReaderAPI
	logger *slog.Logger
	now    func() time.Time
}

func NewService(scope Scope, repo RepositoryAPI, reader ReaderAPI, logger *slog.Logger) *Service {
	return &Service{
		scope:  scope,
		repo:   repo,
		reader: reader,
		logger: logger.With("scope", string(scope)),
		now:    time.Now,
	}
}

func (s *Service) Create(ctx context.Context, actor *internal.Actor, dto CreateCommentDTO) (*projection.CommentResponse, error) {
	if err := dto.Validate(s.scope); err != nil {
		return nil, err
	}

	parentID := *dto.ParentID(s.scope)
	exists, err := s.repo.ParentExists(ctx, parentID)
	if err != nil {
		s.logger.Error("failed to check comment parent", "error", err, "parent_id", parentID)
		return nil, fmt.Errorf("check parent: %w", err)
	}
	if !exists {
		s.logger.Warn("comment parent not found", "parent_id", parentID)
		return nil, s.scope.parentNotFound(parentID)
	}

	authorID := actor.ID
	if dto.AuthorID != nil {
		authorID = *dto.AuthorID
	}
	exists, err = s.repo.UserExists(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("check author: %w", err)
	}
	if !exists {
		return nil, internal.NewNotFoundError(fmt.Sprintf("User not found with id: %d", authorID), internal.ErrCodeUserNotFound)
	}

	c := &Comment{
		Content:   dto.Content,
		ParentID:  parentID,
		AuthorID:  authorID,
		CreatedAt: s.now(),
	}
	if err := s.repo.Create(ctx, c); err != nil {
		s.logger.Error("failed to create comment", "error", err, "parent_id", parentID)
		return nil, fmt.Errorf("create comment: %w", err)
	}

	s.logger.Info("comment created", "comment_id", c.ID, "parent_id", parentID, "author_id", authorID)
	return s.GetByID(ctx, c.ID)
}

// Owner returns the author id of a comment, for attribute checks.
func (s *Service) Owner(ctx context.Context, id int64) (int64, error) {
	c, err := s.load(ctx, id)
	if err != nil {
		return 0, err
	}
	return c.AuthorID, nil
}

func (s *Service) load(ctx context.Context, id int64) (*Comment, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.logger.Warn("comment not found", "comment_id", id)
			return nil, commentNotFound(id)
		}
		return nil, fmt.Errorf("get comment: %w", err)
	}
	return c, nil
}

func (s *Service) Update(ctx context.Context, id int64, dto UpdateCommentDTO) (*projection.CommentResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	c.Content = dto.Content
	c.Touch(s.now())
	if err := s.repo.UpdateContent(ctx, id, c.Content, *c.UpdatedAt); err != nil {
		s.logger.Error("failed to update comment", "error", err, "comment_id", id)
		return nil, fmt.Errorf("update comment: %w", err)
	}

	return s.GetByID(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.load(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete comment", "error", err, "comment_id", id)
		return fmt.Errorf("delete comment: %w", err)
	}
	s.logger.Info("comment deleted", "comment_id", id)
	return nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*projection.CommentResponse, error) {
	comments, err := s.reader.Comments(ctx, s.scope.Projection(), projection.CommentFilter{IDs: []int64{id}})
	if err != nil {
		return nil, fmt.Errorf("read comment: %w", err)
	}
	if len(comments) == 0 {
		return nil, commentNotFound(id)
	}
	return &comments[0], nil
}

// ListByParent lists the comments on one project or task.
func (s *Service) ListByParent(ctx context.Context, parentID int64) ([]projection.CommentResponse, error) {
	exists, err := s.repo.ParentExists(ctx, parentID)
	if err != nil {
		return nil, fmt.Errorf("check parent: %w", err)
	}
	if !exists {
		return nil, s.scope.parentNotFound(parentID)
	}
	return s.list(ctx, projection.CommentFilter{ParentIDs: []int64{parentID}})
}

func (s *Service) ListByAuthorID(ctx context.Context, authorID int64) ([]projection.CommentResponse, error) {
	return s.list(ctx, projection.CommentFilter{AuthorID: &authorID})
}

func (s *Service) ListByUsername(ctx context.Context, username string) ([]projection.CommentResponse, error) {
	id, err := s.repo.UserIDByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, internal.NewNotFoundError(fmt.Sprintf("User not found with username: %s", username), internal.ErrCodeUserNotFound)
		}
		return nil, fmt.Errorf("resolve username: %w", err)
	}
	return s.ListByAuthorID(ctx, id)
}

func (s *Service) list(ctx context.Context, f projection.CommentFilter) ([]projection.CommentResponse, error) {
	comments, err := s.reader.Comments(ctx, s.scope.Projection(), f)
	if err != nil {
		s.logger.Error("failed to list comments", "error", err)
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

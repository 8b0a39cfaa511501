package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/project-management/internal/comment"
	commentDatamodel "github.com/frahmantamala/project-management/internal/core/datamodel/comment"
	projectDatamodel "github.com/frahmantamala/project-management/internal/core/datamodel/project"
	taskDatamodel "github.com/frahmantamala/project-management/internal/core/datamodel/task"
	userDatamodel "github.com/frahmantamala/project-management/internal/core/datamodel/user"
	"gorm.io/gorm"
)

// CommentRepository stores the comments of one scope. Project and task
// comments live in separate tables with the same shape.
type CommentRepository struct {
	db    *gorm.DB
	scope comment.Scope
}

func NewCommentRepository(db *gorm.DB, scope comment.Scope) *CommentRepository {
	return &CommentRepository{db: db, scope: scope}
}

var _ comment.RepositoryAPI = (*CommentRepository)(nil)

func (r *CommentRepository) model() interface{} {
	if r.scope == comment.ScopeTask {
		return &commentDatamodel.TaskComment{}
	}
	return &commentDatamodel.ProjectComment{}
}

func (r *CommentRepository) GetByID(ctx context.Context, id int64) (*comment.Comment, error) {
	db := r.db.WithContext(ctx)

	if r.scope == comment.ScopeTask {
		var row commentDatamodel.TaskComment
		if err := db.First(&row, id).Error; err != nil {
			return nil, mapNotFound(err)
		}
		return &comment.Comment{ID: row.ID, Content: row.Content, ParentID: row.TaskID, AuthorID: row.AuthorID, CreatedAt: row.CreatedAt, UpdatedAt: row.UpdatedAt}, nil
	}

	var row commentDatamodel.ProjectComment
	if err := db.First(&row, id).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &comment.Comment{ID: row.ID, Content: row.Content, ParentID: row.ProjectID, AuthorID: row.AuthorID, CreatedAt: row.CreatedAt, UpdatedAt: row.UpdatedAt}, nil
}

func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return comment.ErrNotFound
	}
	return err
}

func (r *CommentRepository) Create(ctx context.Context, c *comment.Comment) error {
	db := r.db.WithContext(ctx)

	if r.scope == comment.ScopeTask {
		row := commentDatamodel.TaskComment{Content: c.Content, TaskID: c.ParentID, AuthorID: c.AuthorID, CreatedAt: c.CreatedAt}
		if err := db.Create(&row).Error; err != nil {
			return err
		}
		c.ID = row.ID
		return nil
	}

	row := commentDatamodel.ProjectComment{Content: c.Content, ProjectID: c.ParentID, AuthorID: c.AuthorID, CreatedAt: c.CreatedAt}
	if err := db.Create(&row).Error; err != nil {
		return err
	}
	c.ID = row.ID
	return nil
}

func (r *CommentRepository) UpdateContent(ctx context.Context, id int64, content string, updatedAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(r.model()).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"content":    content,
			"updated_at": updatedAt,
		}).Error
}

func (r *CommentRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(r.model(), id).Error
}

func (r *CommentRepository) ParentExists(ctx context.Context, parentID int64) (bool, error) {
	var parent interface{} = &projectDatamodel.Project{}
	if r.scope == comment.ScopeTask {
		parent = &taskDatamodel.Task{}
	}

	var count int64
	err := r.db.WithContext(ctx).Model(parent).Where("id = ?", parentID).Count(&count).Error
	return count > 0, err
}

func (r *CommentRepository) UserExists(ctx context.Context, userID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&userDatamodel.User{}).Where("id = ?", userID).Count(&count).Error
	return count > 0, err
}

func (r *CommentRepository) UserIDByUsername(ctx context.Context, username string) (int64, error) {
	var u userDatamodel.User
	err := r.db.WithContext(ctx).Select("id").Where("username = ?", username).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, comment.ErrUserNotFound
		}
		return 0, err
	}
	return u.ID, nil
}

package comment

import (
	"errors"
	"fmt"
	"time"

	"github.com/frahmantamala/project-management/internal"
	"github.com/frahmantamala/project-management/internal/projection"
)

// Scope selects which parent kind a comment service works on.
type Scope string

const (
	ScopeProject Scope = "project"
	ScopeTask    Scope = "task"
)

func (s Scope) Projection() projection.CommentScope {
	if s == ScopeTask {
		return projection.TaskComments
	}
	return projection.ProjectComments
}

func (s Scope) parentLabel() string {
	if s == ScopeTask {
		return "Task"
	}
	return "Project"
}

func (s Scope) parentNotFound(id int64) error {
	code := internal.ErrCodeProjectNotFound
	if s == ScopeTask {
		code = internal.ErrCodeTaskNotFound
	}
	return internal.NewNotFoundError(fmt.Sprintf("%s not found with id: %d", s.parentLabel(), id), code)
}

var (
	ErrNotFound     = errors.New("comment not found")
	ErrUserNotFound = errors.New("user not found")
)

// Comment is a note attached to a project or task. UpdatedAt is nil until
// the first edit.
type Comment struct {
	ID        int64
	Content   string
	ParentID  int64
	AuthorID  int64
	CreatedAt time.Time
	UpdatedAt *time.Time
}

// Touch stamps an edit time strictly after CreatedAt.
func (c *Comment) Touch(now time.Time) {
	if !now.After(c.CreatedAt) {
		now = c.CreatedAt.Add(time.Millisecond)
	}
	c.UpdatedAt = &now
}

func commentNotFound(id int64) error {
	return internal.NewNotFoundError(fmt.Sprintf("Comment not found with id: %d", id), internal.ErrCodeCommentNotFound)
}

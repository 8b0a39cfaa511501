package comment

import (
	"github.com/frahmantamala/project-management/internal/core/common/validation"
)

// CreateCommentDTO carries the parent under projectId or taskId depending on
// the endpoint. authorId falls back to the caller.
type CreateCommentDTO struct {
	Content   string `json:"content"`
	ProjectID *int64 `json:"projectId,omitempty"`
	TaskID    *int64 `json:"taskId,omitempty"`
	AuthorID  *int64 `json:"authorId,omitempty"`
}

func (d CreateCommentDTO) ParentID(scope Scope) *int64 {
	if scope == ScopeTask {
		return d.TaskID
	}
	return d.ProjectID
}

func (d CreateCommentDTO) Validate(scope Scope) error {
	parentField := "projectId"
	if scope == ScopeTask {
		parentField = "taskId"
	}

	v := validation.NewValidator()
	v.Field("content", d.Content).Required().MaxLength(5000)
	v.Field(parentField, d.ParentID(scope)).Required()
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type UpdateCommentDTO struct {
	Content string `json:"content"`
}

func (d UpdateCommentDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("content", d.Content).Required().MaxLength(5000)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

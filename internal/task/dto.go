package task

import (
	"time"

	"github.com/frahmantamala/project-management/internal/core/common/validation"
)

// CreateTaskDTO is also the shape of tasks nested in a project payload,
// where projectId is ignored.
type CreateTaskDTO struct {
	Title               string     `json:"title"`
	Description         string     `json:"description"`
	Priority            string     `json:"priority"`
	Status              string     `json:"status"`
	DueDate             *time.Time `json:"dueDate,omitempty"`
	ProjectID           *int64     `json:"projectId,omitempty"`
	AssignedByAdminID   *int64     `json:"assignedByAdminId,omitempty"`
	AssignedEmployeeIDs []int64    `json:"assignedEmployeeIds,omitempty"`
}

// ValidateNested checks the fields a nested task must carry.
func (d CreateTaskDTO) ValidateNested() error {
	v := validation.NewValidator()
	v.Field("title", d.Title).Required().MaxLength(255)
	v.Field("priority", d.Priority).MaxLength(100)
	v.Field("status", d.Status).MaxLength(100)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

func (d CreateTaskDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("title", d.Title).Required().MaxLength(255)
	v.Field("priority", d.Priority).MaxLength(100)
	v.Field("status", d.Status).MaxLength(100)
	v.Field("projectId", d.ProjectID).Required()
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// UpdateTaskDTO is a partial update. A present assignedEmployeeIds, even
// an empty one, replaces the whole assignee set.
type UpdateTaskDTO struct {
	Title               *string    `json:"title,omitempty"`
	Description         *string    `json:"description,omitempty"`
	Priority            *string    `json:"priority,omitempty"`
	Status              *string    `json:"status,omitempty"`
	DueDate             *time.Time `json:"dueDate,omitempty"`
	UpdatedByAdminID    *int64     `json:"updatedByAdminId,omitempty"`
	AssignedEmployeeIDs *[]int64   `json:"assignedEmployeeIds,omitempty"`
}

func (d UpdateTaskDTO) Validate() error {
	v := validation.NewValidator()
	if d.Title != nil {
		v.Field("title", *d.Title).Required().MaxLength(255)
	}
	if d.Priority != nil {
		v.Field("priority", *d.Priority).MaxLength(100)
	}
	if d.Status != nil {
		v.Field("status", *d.Status).MaxLength(100)
	}
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

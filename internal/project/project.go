package project

import (
	"errors"
	"fmt"
	"time"

	"github.com/frahmantamala/project-management/internal"
	projectDatamodel "github.com/frahmantamala/project-management/internal/core/datamodel/project"
	taskDatamodel "github.com/frahmantamala/project-management/internal/core/datamodel/task"
)

// DefaultStatus is the status every new project starts with.
const DefaultStatus = "Priority"

var (
	ErrNotFound     = errors.New("project not found")
	ErrUserNotFound = errors.New("user not found")
)

type Project struct {
	ID               int64
	Name             string
	Description      string
	Status           string
	StartDate        *time.Time
	EndDate          *time.Time
	CreatedByAdminID int64
	CreatedAt        time.Time
}

func (p *Project) ApplyUpdate(dto UpdateProjectDTO) {
	if dto.Name != nil {
		p.Name = *dto.Name
	}
	if dto.Description != nil {
		p.Description = *dto.Description
	}
	if dto.Status != nil {
		p.Status = *dto.Status
	}
	if dto.StartDate != nil {
		p.StartDate = dto.StartDate
	}
	if dto.EndDate != nil {
		p.EndDate = dto.EndDate
	}
}

// NewTask is a task written together with its project.
type NewTask struct {
	Row         *taskDatamodel.Task
	EmployeeIDs []int64
}

func ToDataModel(p *Project) *projectDatamodel.Project {
	return &projectDatamodel.Project{
		ID:               p.ID,
		Name:             p.Name,
		Description:      p.Description,
		Status:           p.Status,
		StartDate:        p.StartDate,
		EndDate:          p.EndDate,
		CreatedByAdminID: p.CreatedByAdminID,
		CreatedAt:        p.CreatedAt,
	}
}

func FromDataModel(row *projectDatamodel.Project) *Project {
	return &Project{
		ID:               row.ID,
		Name:             row.Name,
		Description:      row.Description,
		Status:           row.Status,
		StartDate:        row.StartDate,
		EndDate:          row.EndDate,
		CreatedByAdminID: row.CreatedByAdminID,
		CreatedAt:        row.CreatedAt,
	}
}

func projectNotFound(id int64) error {
	return internal.NewNotFoundError(fmt.Sprintf("Project not found with id: %d", id), internal.ErrCodeProjectNotFound)
}

func userNotFound(format string, arg interface{}) error {
	return internal.NewNotFoundError(fmt.Sprintf(format, arg), internal.ErrCodeUserNotFound)
}

package task

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/frahmantamala/project-management/internal"
	taskDatamodel "github.com/frahmantamala/project-management/internal/core/datamodel/task"
)

var (
	ErrNotFound     = errors.New("task not found")
	ErrUserNotFound = errors.New("user not found")
)

type Task struct {
	ID                int64
	Title             string
	Description       string
	Priority          string
	Status            string
	DueDate           *time.Time
	ProjectID         int64
	AssignedByAdminID int64
	CreatedAt         time.Time
}

// ApplyUpdate overwrites only the fields present in dto. The project never changes.
func (t *Task) ApplyUpdate(dto UpdateTaskDTO) {
	if dto.Title != nil {
		t.Title = *dto.Title
	}
	if dto.Description != nil {
		t.Description = *dto.Description
	}
	if dto.Priority != nil {
		t.Priority = *dto.Priority
	}
	if dto.Status != nil {
		t.Status = *dto.Status
	}
	if dto.DueDate != nil {
		t.DueDate = dto.DueDate
	}
	if dto.UpdatedByAdminID != nil {
		t.AssignedByAdminID = *dto.UpdatedByAdminID
	}
}

func ToDataModel(t *Task) *taskDatamodel.Task {
	return &taskDatamodel.Task{
		ID:                t.ID,
		Title:             t.Title,
		Description:       t.Description,
		Priority:          t.Priority,
		Status:            t.Status,
		DueDate:           t.DueDate,
		ProjectID:         t.ProjectID,
		AssignedByAdminID: t.AssignedByAdminID,
		CreatedAt:         t.CreatedAt,
	}
}

func FromDataModel(row *taskDatamodel.Task) *Task {
	return &Task{
		ID:                row.ID,
		Title:             row.Title,
		Description:       row.Description,
		Priority:          row.Priority,
		Status:            row.Status,
		DueDate:           row.DueDate,
		ProjectID:         row.ProjectID,
		AssignedByAdminID: row.AssignedByAdminID,
		CreatedAt:         row.CreatedAt,
	}
}

// UniqueIDs drops duplicates and keeps first-seen order. Nil stays nil.
func UniqueIDs(ids []int64) []int64 {
	if ids == nil {
		return nil
	}
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// EmployeesNotFound reports every assignee id that did not resolve.
func EmployeesNotFound(missing []int64) error {
	sorted := append([]int64(nil), missing...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	parts := make([]string, len(sorted))
	for i, id := range sorted {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return internal.NewNotFoundError(
		fmt.Sprintf("Employees not found with ids: %s", strings.Join(parts, ", ")),
		internal.ErrCodeEmployeeNotFound,
	).WithDetails(map[string]interface{}{"missingIds": sorted})
}

func taskNotFound(id int64) error {
	return internal.NewNotFoundError(fmt.Sprintf("Task not found with id: %d", id), internal.ErrCodeTaskNotFound)
}

func projectNotFound(id int64) error {
	return internal.NewNotFoundError(fmt.Sprintf("Project not found with id: %d", id), internal.ErrCodeProjectNotFound)
}

func userNotFound(format string, arg interface{}) error {
	return internal.NewNotFoundError(fmt.Sprintf(format, arg), internal.ErrCodeUserNotFound)
}

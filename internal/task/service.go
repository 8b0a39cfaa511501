package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/project-management/internal"
	taskDatamodel "github.com/frahmantamala/project-management/internal/core/datamodel/task"
	"github.com/frahmantamala/project-management/internal/projection"
)

type RepositoryAPI interface {
	GetByID(ctx context.Context, id int64) (*taskDatamodel.Task, error)
	// Create inserts the task and its assignee links in one transaction.
	Create(ctx context.Context, t *taskDatamodel.Task, employeeIDs []int64) error
	// Update writes the task; a non-nil employeeIDs replaces the assignee set.
	Update(ctx context.Context, t *taskDatamodel.Task, employeeIDs *[]int64) error
	// Delete removes the task with its comments and assignee links.
	Delete(ctx context.Context, id int64) error
	ProjectExists(ctx context.Context, projectID int64) (bool, error)
	UserExists(ctx context.Context, userID int64) (bool, error)
	FindMissingUserIDs(ctx context.Context, ids []int64) ([]int64, error)
	UserIDByUsername(ctx context.Context, username string) (int64, error)
}

type ReaderAPI interface {
	Tasks(ctx context.Context, f projection.TaskFilter) ([]projection.TaskResponse, error)
}

type Service struct {
	repo   RepositoryAPI
	reader ReaderAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, reader ReaderAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		reader: reader,
		logger: logger,
	}
}

// CreateTask picks the assigning admin from the body, then the query
// parameter, then the caller.
func (s *Service) CreateTask(ctx context.Context, actor *internal.Actor, dto CreateTaskDTO, queryAssignerID *int64) (*projection.TaskResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	projectID := *dto.ProjectID
	exists, err := s.repo.ProjectExists(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("check project: %w", err)
	}
	if !exists {
		s.logger.Warn("create task: project not found", "project_id", projectID)
		return nil, projectNotFound(projectID)
	}

	assignerID := actor.ID
	switch {
	case dto.AssignedByAdminID != nil:
		assignerID = *dto.AssignedByAdminID
	case queryAssignerID != nil:
		assignerID = *queryAssignerID
	}
	if err := s.requireUser(ctx, assignerID); err != nil {
		return nil, err
	}

	employeeIDs := UniqueIDs(dto.AssignedEmployeeIDs)
	if err := s.resolveEmployees(ctx, employeeIDs); err != nil {
		return nil, err
	}

	row := &taskDatamodel.Task{
		Title:             dto.Title,
		Description:       dto.Description,
		Priority:          dto.Priority,
		Status:            dto.Status,
		DueDate:           dto.DueDate,
		ProjectID:         projectID,
		AssignedByAdminID: assignerID,
	}
	if err := s.repo.Create(ctx, row, employeeIDs); err != nil {
		s.logger.Error("failed to create task", "error", err, "project_id", projectID)
		return nil, fmt.Errorf("create task: %w", err)
	}

	s.logger.Info("task created", "task_id", row.ID, "project_id", projectID, "assigned_by", assignerID)
	return s.GetTaskByID(ctx, row.ID)
}

func (s *Service) UpdateTask(ctx context.Context, id int64, dto UpdateTaskDTO) (*projection.TaskResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, taskNotFound(id)
		}
		return nil, fmt.Errorf("get task: %w", err)
	}

	if dto.UpdatedByAdminID != nil {
		if err := s.requireUser(ctx, *dto.UpdatedByAdminID); err != nil {
			return nil, err
		}
	}

	var employeeIDs *[]int64
	if dto.AssignedEmployeeIDs != nil {
		ids := UniqueIDs(*dto.AssignedEmployeeIDs)
		if ids == nil {
			ids = []int64{}
		}
		if err := s.resolveEmployees(ctx, ids); err != nil {
			return nil, err
		}
		employeeIDs = &ids
	}

	t := FromDataModel(row)
	t.ApplyUpdate(dto)
	if err := s.repo.Update(ctx, ToDataModel(t), employeeIDs); err != nil {
		s.logger.Error("failed to update task", "error", err, "task_id", id)
		return nil, fmt.Errorf("update task: %w", err)
	}

	s.logger.Info("task updated", "task_id", id)
	return s.GetTaskByID(ctx, id)
}

func (s *Service) DeleteTask(ctx context.Context, id int64) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return taskNotFound(id)
		}
		return fmt.Errorf("get task: %w", err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete task", "error", err, "task_id", id)
		return fmt.Errorf("delete task: %w", err)
	}
	s.logger.Info("task deleted", "task_id", id)
	return nil
}

func (s *Service) GetAllTasks(ctx context.Context) ([]projection.TaskResponse, error) {
	return s.list(ctx, projection.TaskFilter{})
}

func (s *Service) GetTaskByID(ctx context.Context, id int64) (*projection.TaskResponse, error) {
	tasks, err := s.list(ctx, projection.TaskFilter{IDs: []int64{id}})
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, taskNotFound(id)
	}
	return &tasks[0], nil
}

func (s *Service) GetTasksByProject(ctx context.Context, projectID int64) ([]projection.TaskResponse, error) {
	exists, err := s.repo.ProjectExists(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("check project: %w", err)
	}
	if !exists {
		return nil, projectNotFound(projectID)
	}
	return s.list(ctx, projection.TaskFilter{ProjectIDs: []int64{projectID}})
}

func (s *Service) GetTasksByEmployee(ctx context.Context, userID int64) ([]projection.TaskResponse, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.list(ctx, projection.TaskFilter{AssignedUserID: &userID})
}

// GetTasksByUsername lists the tasks assigned to username.
func (s *Service) GetTasksByUsername(ctx context.Context, username string) ([]projection.TaskResponse, error) {
	id, err := s.repo.UserIDByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, userNotFound("User not found with username: %s", username)
		}
		return nil, fmt.Errorf("resolve username: %w", err)
	}
	return s.list(ctx, projection.TaskFilter{AssignedUserID: &id})
}

func (s *Service) list(ctx context.Context, f projection.TaskFilter) ([]projection.TaskResponse, error) {
	tasks, err := s.reader.Tasks(ctx, f)
	if err != nil {
		s.logger.Error("failed to read tasks", "error", err)
		return nil, fmt.Errorf("read tasks: %w", err)
	}
	return tasks, nil
}

func (s *Service) requireUser(ctx context.Context, id int64) error {
	exists, err := s.repo.UserExists(ctx, id)
	if err != nil {
		return fmt.Errorf("check user: %w", err)
	}
	if !exists {
		s.logger.Warn("user not found", "user_id", id)
		return userNotFound("User not found with id: %d", id)
	}
	return nil
}

func (s *Service) resolveEmployees(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	missing, err := s.repo.FindMissingUserIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("resolve employees: %w", err)
	}
	if len(missing) > 0 {
		s.logger.Warn("assignees not found", "missing_ids", missing)
		return EmployeesNotFound(missing)
	}
	return nil
}

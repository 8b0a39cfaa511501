package project

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/project-management/internal"
	projectDatamodel "github.com/frahmantamala/project-management/internal/core/datamodel/project"
	taskDatamodel "github.com/frahmantamala/project-management/internal/core/datamodel/task"
	"github.com/frahmantamala/project-management/internal/projection"
	"github.com/frahmantamala/project-management/internal/task"
)

type RepositoryAPI interface {
	GetByID(ctx context.Context, id int64) (*projectDatamodel.Project, error)
	// Create writes the project, its assignees, nested tasks and opening
	// comments in one transaction.
	Create(ctx context.Context, p *projectDatamodel.Project, employeeIDs []int64, tasks []NewTask, comments []string) error
	// Update writes the project; a non-nil employeeIDs replaces the assignee set.
	Update(ctx context.Context, p *projectDatamodel.Project, employeeIDs *[]int64, newTasks []NewTask) error
	// Delete removes the project with its tasks, comments and assignee links.
	Delete(ctx context.Context, id int64) error
	UserExists(ctx context.Context, userID int64) (bool, error)
	FindMissingUserIDs(ctx context.Context, ids []int64) ([]int64, error)
	UserIDByUsername(ctx context.Context, username string) (int64, error)
}

type ReaderAPI interface {
	Projects(ctx context.Context, f projection.ProjectFilter) ([]projection.ProjectResponse, error)
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

// AddProject creates a project owned by createdByAdminId, or by the caller
// when it is omitted.
func (s *Service) AddProject(ctx context.Context, actor *internal.Actor, dto CreateProjectDTO) (*projection.ProjectResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	creatorID := actor.ID
	if dto.CreatedByAdminID != nil {
		creatorID = *dto.CreatedByAdminID
	}
	if err := s.requireUser(ctx, creatorID); err != nil {
		return nil, err
	}

	employeeIDs := task.UniqueIDs(dto.AssignedEmployeeIDs)
	tasks := s.newTasks(dto.Tasks, creatorID)
	if err := s.resolveEmployees(ctx, employeeIDs, tasks); err != nil {
		return nil, err
	}

	row := &projectDatamodel.Project{
		Name:             dto.Name,
		Description:      dto.Description,
		Status:           DefaultStatus,
		StartDate:        dto.StartDate,
		EndDate:          dto.EndDate,
		CreatedByAdminID: creatorID,
	}
	if err := s.repo.Create(ctx, row, employeeIDs, tasks, dto.Comments); err != nil {
		s.logger.Error("failed to create project", "error", err, "name", dto.Name)
		return nil, fmt.Errorf("create project: %w", err)
	}

	s.logger.Info("project created", "project_id", row.ID, "tasks", len(tasks), "comments", len(dto.Comments))
	return s.GetProjectByID(ctx, row.ID)
}

func (s *Service) UpdateProject(ctx context.Context, id int64, dto UpdateProjectDTO) (*projection.ProjectResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, projectNotFound(id)
		}
		return nil, fmt.Errorf("get project: %w", err)
	}

	assignerID := row.CreatedByAdminID
	if dto.UpdatedByAdminID != nil {
		if err := s.requireUser(ctx, *dto.UpdatedByAdminID); err != nil {
			return nil, err
		}
		assignerID = *dto.UpdatedByAdminID
	}

	var employeeIDs *[]int64
	var direct []int64
	if dto.AssignedEmployeeIDs != nil {
		ids := task.UniqueIDs(*dto.AssignedEmployeeIDs)
		if ids == nil {
			ids = []int64{}
		}
		employeeIDs = &ids
		direct = ids
	}

	tasks := s.newTasks(dto.NewTasks, assignerID)
	if err := s.resolveEmployees(ctx, direct, tasks); err != nil {
		return nil, err
	}

	p := FromDataModel(row)
	p.ApplyUpdate(dto)
	if appErr := validateDates(p.StartDate, p.EndDate); appErr != nil {
		return nil, appErr
	}
	if err := s.repo.Update(ctx, ToDataModel(p), employeeIDs, tasks); err != nil {
		s.logger.Error("failed to update project", "error", err, "project_id", id)
		return nil, fmt.Errorf("update project: %w", err)
	}

	s.logger.Info("project updated", "project_id", id, "new_tasks", len(tasks))
	return s.GetProjectByID(ctx, id)
}

func (s *Service) DeleteProject(ctx context.Context, id int64) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return projectNotFound(id)
		}
		return fmt.Errorf("get project: %w", err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete project", "error", err, "project_id", id)
		return fmt.Errorf("delete project: %w", err)
	}
	s.logger.Info("project deleted", "project_id", id)
	return nil
}

func (s *Service) GetAllProjects(ctx context.Context) ([]projection.ProjectResponse, error) {
	return s.list(ctx, projection.ProjectFilter{})
}

func (s *Service) GetProjectByID(ctx context.Context, id int64) (*projection.ProjectResponse, error) {
	projects, err := s.list(ctx, projection.ProjectFilter{IDs: []int64{id}})
	if err != nil {
		return nil, err
	}
	if len(projects) == 0 {
		return nil, projectNotFound(id)
	}
	return &projects[0], nil
}

// GetProjectsByUsername lists the projects username is assigned to.
func (s *Service) GetProjectsByUsername(ctx context.Context, username string) ([]projection.ProjectResponse, error) {
	id, err := s.repo.UserIDByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, userNotFound("User not found with username: %s", username)
		}
		return nil, fmt.Errorf("resolve username: %w", err)
	}
	return s.list(ctx, projection.ProjectFilter{AssignedUserID: &id})
}

func (s *Service) list(ctx context.Context, f projection.ProjectFilter) ([]projection.ProjectResponse, error) {
	projects, err := s.reader.Projects(ctx, f)
	if err != nil {
		s.logger.Error("failed to read projects", "error", err)
		return nil, fmt.Errorf("read projects: %w", err)
	}
	return projects, nil
}

func (s *Service) newTasks(dtos []task.CreateTaskDTO, assignerID int64) []NewTask {
	tasks := make([]NewTask, 0, len(dtos))
	for _, d := range dtos {
		tasks = append(tasks, NewTask{
			Row: &taskDatamodel.Task{
				Title:             d.Title,
				Description:       d.Description,
				Priority:          d.Priority,
				Status:            d.Status,
				DueDate:           d.DueDate,
				AssignedByAdminID: assignerID,
			},
			EmployeeIDs: task.UniqueIDs(d.AssignedEmployeeIDs),
		})
	}
	return tasks
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

// resolveEmployees checks every referenced employee up front and fails
// with the full list of unknown ids.
func (s *Service) resolveEmployees(ctx context.Context, direct []int64, tasks []NewTask) error {
	all := append([]int64(nil), direct...)
	for _, t := range tasks {
		all = append(all, t.EmployeeIDs...)
	}
	all = task.UniqueIDs(all)
	if len(all) == 0 {
		return nil
	}

	missing, err := s.repo.FindMissingUserIDs(ctx, all)
	if err != nil {
		return fmt.Errorf("resolve employees: %w", err)
	}
	if len(missing) > 0 {
		s.logger.Warn("assignees not found", "missing_ids", missing)
		return task.EmployeesNotFound(missing)
	}
	return nil
}

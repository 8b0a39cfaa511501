package postgres

import (
	"context"
	"errors"
	"time"

	commentDatamodel "github.com/frahmantamala/project-management/internal/core/datamodel/comment"
	projectDatamodel "github.com/frahmantamala/project-management/internal/core/datamodel/project"
	taskDatamodel "github.com/frahmantamala/project-management/internal/core/datamodel/task"
	userDatamodel "github.com/frahmantamala/project-management/internal/core/datamodel/user"
	"github.com/frahmantamala/project-management/internal/project"
	taskPostgres "github.com/frahmantamala/project-management/internal/task/postgres"
	"gorm.io/gorm"
)

type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

var _ project.RepositoryAPI = (*ProjectRepository)(nil)

func (r *ProjectRepository) GetByID(ctx context.Context, id int64) (*projectDatamodel.Project, error) {
	var row projectDatamodel.Project
	if err := r.db.WithContext(ctx).First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, project.ErrNotFound
		}
		return nil, err
	}
	return &row, nil
}

func (r *ProjectRepository) Create(ctx context.Context, p *projectDatamodel.Project, employeeIDs []int64, tasks []project.NewTask, comments []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(p).Error; err != nil {
			return err
		}
		if err := insertAssignees(tx, p.ID, employeeIDs); err != nil {
			return err
		}
		if err := createTasks(tx, p.ID, tasks); err != nil {
			return err
		}

		if len(comments) == 0 {
			return nil
		}
		now := time.Now()
		rows := make([]commentDatamodel.ProjectComment, len(comments))
		for i, content := range comments {
			rows[i] = commentDatamodel.ProjectComment{
				Content:   content,
				ProjectID: p.ID,
				AuthorID:  p.CreatedByAdminID,
				CreatedAt: now,
			}
		}
		return tx.Create(&rows).Error
	})
}

func insertAssignees(tx *gorm.DB, projectID int64, employeeIDs []int64) error {
	if len(employeeIDs) == 0 {
		return nil
	}
	links := make([]projectDatamodel.ProjectEmployee, len(employeeIDs))
	for i, id := range employeeIDs {
		links[i] = projectDatamodel.ProjectEmployee{ProjectID: projectID, UserID: id}
	}
	return tx.Create(&links).Error
}

func createTasks(tx *gorm.DB, projectID int64, tasks []project.NewTask) error {
	for _, t := range tasks {
		t.Row.ProjectID = projectID
		if err := taskPostgres.CreateTx(tx, t.Row, t.EmployeeIDs); err != nil {
			return err
		}
	}
	return nil
}

func (r *ProjectRepository) Update(ctx context.Context, p *projectDatamodel.Project, employeeIDs *[]int64, newTasks []project.NewTask) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&projectDatamodel.Project{}).
			Where("id = ?", p.ID).
			Updates(map[string]interface{}{
				"name":        p.Name,
				"description": p.Description,
				"status":      p.Status,
				"start_date":  p.StartDate,
				"end_date":    p.EndDate,
			}).Error
		if err != nil {
			return err
		}

		if employeeIDs != nil {
			if err := tx.Where("project_id = ?", p.ID).Delete(&projectDatamodel.ProjectEmployee{}).Error; err != nil {
				return err
			}
			if err := insertAssignees(tx, p.ID, *employeeIDs); err != nil {
				return err
			}
		}

		return createTasks(tx, p.ID, newTasks)
	})
}

func (r *ProjectRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var taskIDs []int64
		if err := tx.Model(&taskDatamodel.Task{}).Where("project_id = ?", id).Pluck("id", &taskIDs).Error; err != nil {
			return err
		}
		if err := taskPostgres.DeleteTx(tx, taskIDs); err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&commentDatamodel.ProjectComment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&projectDatamodel.ProjectEmployee{}).Error; err != nil {
			return err
		}
		return tx.Delete(&projectDatamodel.Project{}, id).Error
	})
}

func (r *ProjectRepository) UserExists(ctx context.Context, userID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&userDatamodel.User{}).Where("id = ?", userID).Count(&count).Error
	return count > 0, err
}

func (r *ProjectRepository) FindMissingUserIDs(ctx context.Context, ids []int64) ([]int64, error) {
	return taskPostgres.FindMissingUserIDs(r.db.WithContext(ctx), ids)
}

func (r *ProjectRepository) UserIDByUsername(ctx context.Context, username string) (int64, error) {
	var u userDatamodel.User
	err := r.db.WithContext(ctx).Select("id").Where("username = ?", username).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, project.ErrUserNotFound
		}
		return 0, err
	}
	return u.ID, nil
}

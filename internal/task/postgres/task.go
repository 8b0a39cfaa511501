package postgres

import (
	"context"
	"errors"

	commentDatamodel "github.com/frahmantamala/project-management/internal/core/datamodel/comment"
	projectDatamodel "github.com/frahmantamala/project-management/internal/core/datamodel/project"
	taskDatamodel "github.com/frahmantamala/project-management/internal/core/datamodel/task"
	userDatamodel "github.com/frahmantamala/project-management/internal/core/datamodel/user"
	"github.com/frahmantamala/project-management/internal/task"
	"gorm.io/gorm"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

var _ task.RepositoryAPI = (*TaskRepository)(nil)

func (r *TaskRepository) GetByID(ctx context.Context, id int64) (*taskDatamodel.Task, error) {
	var row taskDatamodel.Task
	if err := r.db.WithContext(ctx).First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, task.ErrNotFound
		}
		return nil, err
	}
	return &row, nil
}

func (r *TaskRepository) Create(ctx context.Context, t *taskDatamodel.Task, employeeIDs []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return CreateTx(tx, t, employeeIDs)
	})
}

// CreateTx inserts a task and its assignee links using an open transaction.
func CreateTx(tx *gorm.DB, t *taskDatamodel.Task, employeeIDs []int64) error {
	if err := tx.Create(t).Error; err != nil {
		return err
	}
	return insertAssignees(tx, t.ID, employeeIDs)
}

func insertAssignees(tx *gorm.DB, taskID int64, employeeIDs []int64) error {
	if len(employeeIDs) == 0 {
		return nil
	}
	links := make([]taskDatamodel.TaskEmployee, len(employeeIDs))
	for i, id := range employeeIDs {
		links[i] = taskDatamodel.TaskEmployee{TaskID: taskID, UserID: id}
	}
	return tx.Create(&links).Error
}

func (r *TaskRepository) Update(ctx context.Context, t *taskDatamodel.Task, employeeIDs *[]int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&taskDatamodel.Task{}).
			Where("id = ?", t.ID).
			Updates(map[string]interface{}{
				"title":                t.Title,
				"description":          t.Description,
				"priority":             t.Priority,
				"status":               t.Status,
				"due_date":             t.DueDate,
				"assigned_by_admin_id": t.AssignedByAdminID,
			}).Error
		if err != nil {
			return err
		}

		if employeeIDs == nil {
			return nil
		}
		if err := tx.Where("task_id = ?", t.ID).Delete(&taskDatamodel.TaskEmployee{}).Error; err != nil {
			return err
		}
		return insertAssignees(tx, t.ID, *employeeIDs)
	})
}

func (r *TaskRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return DeleteTx(tx, []int64{id})
	})
}

// DeleteTx removes tasks together with their comments and assignee links.
func DeleteTx(tx *gorm.DB, taskIDs []int64) error {
	if len(taskIDs) == 0 {
		return nil
	}
	if err := tx.Where("task_id IN ?", taskIDs).Delete(&commentDatamodel.TaskComment{}).Error; err != nil {
		return err
	}
	if err := tx.Where("task_id IN ?", taskIDs).Delete(&taskDatamodel.TaskEmployee{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", taskIDs).Delete(&taskDatamodel.Task{}).Error
}

func (r *TaskRepository) ProjectExists(ctx context.Context, projectID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&projectDatamodel.Project{}).Where("id = ?", projectID).Count(&count).Error
	return count > 0, err
}

func (r *TaskRepository) UserExists(ctx context.Context, userID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&userDatamodel.User{}).Where("id = ?", userID).Count(&count).Error
	return count > 0, err
}

func (r *TaskRepository) FindMissingUserIDs(ctx context.Context, ids []int64) ([]int64, error) {
	return FindMissingUserIDs(r.db.WithContext(ctx), ids)
}

// FindMissingUserIDs returns the ids in ids that name no user, in input order.
func FindMissingUserIDs(db *gorm.DB, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var found []int64
	if err := db.Model(&userDatamodel.User{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return nil, err
	}

	present := make(map[int64]bool, len(found))
	for _, id := range found {
		present[id] = true
	}

	var missing []int64
	for _, id := range ids {
		if !present[id] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

func (r *TaskRepository) UserIDByUsername(ctx context.Context, username string) (int64, error) {
	var u userDatamodel.User
	err := r.db.WithContext(ctx).Select("id").Where("username = ?", username).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, task.ErrUserNotFound
		}
		return 0, err
	}
	return u.ID, nil
}

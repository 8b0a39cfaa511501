package task

import "time"

type Task struct {
	ID                int64      `gorm:"primaryKey"`
	Title             string     `gorm:"column:title;size:255;not null"`
	Description       string     `gorm:"column:description;type:text"`
	Priority          string     `gorm:"column:priority;size:100"`
	Status            string     `gorm:"column:status;size:100"`
	DueDate           *time.Time `gorm:"column:due_date"`
	ProjectID         int64      `gorm:"column:project_id;not null;index"`
	AssignedByAdminID int64      `gorm:"column:assigned_by_admin_id;not null;index"`
	CreatedAt         time.Time  `gorm:"column:created_at"`
}

func (Task) TableName() string {
	return "tasks"
}

// TaskEmployee is a row of the task assignment join table.
type TaskEmployee struct {
	TaskID int64 `gorm:"column:task_id;primaryKey;autoIncrement:false"`
	UserID int64 `gorm:"column:user_id;primaryKey;autoIncrement:false;index"`
}

func (TaskEmployee) TableName() string {
	return "task_employees"
}

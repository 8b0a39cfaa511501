package comment

import "time"

// UpdatedAt stays NULL until the first edit, so gorm must not stamp it.
type ProjectComment struct {
	ID        int64      `gorm:"primaryKey"`
	Content   string     `gorm:"column:content;type:text;not null"`
	ProjectID int64      `gorm:"column:project_id;not null;index"`
	AuthorID  int64      `gorm:"column:author_id;not null;index"`
	CreatedAt time.Time  `gorm:"column:created_at"`
	UpdatedAt *time.Time `gorm:"column:updated_at;autoUpdateTime:false"`
}

func (ProjectComment) TableName() string {
	return "project_comments"
}

type TaskComment struct {
	ID        int64      `gorm:"primaryKey"`
	Content   string     `gorm:"column:content;type:text;not null"`
	TaskID    int64      `gorm:"column:task_id;not null;index"`
	AuthorID  int64      `gorm:"column:author_id;not null;index"`
	CreatedAt time.Time  `gorm:"column:created_at"`
	UpdatedAt *time.Time `gorm:"column:updated_at;autoUpdateTime:false"`
}

func (TaskComment) TableName() string {
	return "task_comments"
}

package project

import "time"

type Project struct {
	ID               int64      `gorm:"primaryKey"`
	Name             string     `gorm:"column:name;size:255;not null"`
	Description      string     `gorm:"column:description;type:text"`
	Status           string     `gorm:"column:status;size:100"`
	StartDate        *time.Time `gorm:"column:start_date"`
	EndDate          *time.Time `gorm:"column:end_date"`
	CreatedByAdminID int64      `gorm:"column:created_by_admin_id;not null;index"`
	CreatedAt        time.Time  `gorm:"column:created_at"`
}

func (Project) TableName() string {
	return "projects"
}

// ProjectEmployee is a row of the project assignment join table.
type ProjectEmployee struct {
	ProjectID int64 `gorm:"column:project_id;primaryKey;autoIncrement:false"`
	UserID    int64 `gorm:"column:user_id;primaryKey;autoIncrement:false;index"`
}

func (ProjectEmployee) TableName() string {
	return "project_employees"
}

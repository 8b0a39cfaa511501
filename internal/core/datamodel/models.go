package datamodel

import (
	commentDatamodel "github.com/frahmantamala/project-management/internal/core/datamodel/comment"
	projectDatamodel "github.com/frahmantamala/project-management/internal/core/datamodel/project"
	taskDatamodel "github.com/frahmantamala/project-management/internal/core/datamodel/task"
	userDatamodel "github.com/frahmantamala/project-management/internal/core/datamodel/user"
)

// Models lists every row type in dependency order, for gorm AutoMigrate.
func Models() []interface{} {
	return []interface{}{
		&userDatamodel.User{},
		&projectDatamodel.Project{},
		&projectDatamodel.ProjectEmployee{},
		&taskDatamodel.Task{},
		&taskDatamodel.TaskEmployee{},
		&commentDatamodel.ProjectComment{},
		&commentDatamodel.TaskComment{},
	}
}

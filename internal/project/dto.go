package project

import (
	"fmt"
	"time"

	"github.com/frahmantamala/project-management/internal"
	"github.com/frahmantamala/project-management/internal/core/common/validation"
	"github.com/frahmantamala/project-management/internal/task"
)

type CreateProjectDTO struct {
	Name                string               `json:"name"`
	Description         string               `json:"description"`
	StartDate           *time.Time           `json:"startDate,omitempty"`
	EndDate             *time.Time           `json:"endDate,omitempty"`
	AssignedEmployeeIDs []int64              `json:"assignedEmployeeIds,omitempty"`
	CreatedByAdminID    *int64               `json:"createdByAdminId,omitempty"`
	Tasks               []task.CreateTaskDTO `json:"tasks,omitempty"`
	Comments            []string             `json:"comments,omitempty"`
}

func (d CreateProjectDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(255)
	v.Field("description", d.Description).Required()
	errs := []*internal.AppError{v.Validate(), validateDates(d.StartDate, d.EndDate)}

	errs = append(errs, validateTasks("tasks", d.Tasks)...)
	for i, c := range d.Comments {
		cv := validation.NewValidator()
		cv.Field(fmt.Sprintf("comments[%d]", i), c).Required()
		errs = append(errs, cv.Validate())
	}

	if err := validation.Merge(errs...); err != nil {
		return err
	}
	return nil
}

// UpdateProjectDTO is a partial update. newTasks are appended; existing
// tasks are left alone.
type UpdateProjectDTO struct {
	Name                *string              `json:"name,omitempty"`
	Description         *string              `json:"description,omitempty"`
	Status              *string              `json:"status,omitempty"`
	StartDate           *time.Time           `json:"startDate,omitempty"`
	EndDate             *time.Time           `json:"endDate,omitempty"`
	AssignedEmployeeIDs *[]int64             `json:"assignedEmployeeIds,omitempty"`
	UpdatedByAdminID    *int64               `json:"updatedByAdminId,omitempty"`
	NewTasks            []task.CreateTaskDTO `json:"newTasks,omitempty"`
}

func (d UpdateProjectDTO) Validate() error {
	v := validation.NewValidator()
	if d.Name != nil {
		v.Field("name", *d.Name).Required().MaxLength(255)
	}
	if d.Status != nil {
		v.Field("status", *d.Status).MaxLength(100)
	}
	errs := []*internal.AppError{v.Validate(), validateDates(d.StartDate, d.EndDate)}
	errs = append(errs, validateTasks("newTasks", d.NewTasks)...)

	if err := validation.Merge(errs...); err != nil {
		return err
	}
	return nil
}

func validateDates(start, end *time.Time) *internal.AppError {
	if start != nil && end != nil && end.Before(*start) {
		return internal.NewValidationFieldError("endDate", "endDate must not be before startDate", internal.ErrCodeValidationFailed)
	}
	return nil
}

func validateTasks(field string, tasks []task.CreateTaskDTO) []*internal.AppError {
	var errs []*internal.AppError
	for i, t := range tasks {
		if err := t.ValidateNested(); err != nil {
			if appErr, ok := internal.IsAppError(err); ok {
				errs = append(errs, prefixFields(fmt.Sprintf("%s[%d].", field, i), appErr))
			}
		}
	}
	return errs
}

func prefixFields(prefix string, appErr *internal.AppError) *internal.AppError {
	details, ok := appErr.Details.(internal.ValidationErrors)
	if !ok {
		return appErr
	}
	out := make([]internal.ValidationError, len(details.Errors))
	for i, e := range details.Errors {
		e.Field = prefix + e.Field
		out[i] = e
	}
	return internal.NewValidationError(appErr.Message, appErr.Code).WithDetails(internal.ValidationErrors{Errors: out})
}

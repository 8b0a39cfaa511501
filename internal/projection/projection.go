// Package projection builds the outward-facing read shapes for projects,
// tasks and comments. Related users are emitted by display name only.
package projection

import "time"

type CommentResponse struct {
	ID         int64      `json:"id" db:"id"`
	Content    string     `json:"content" db:"content"`
	AuthorName string     `json:"authorName" db:"author_name"`
	CreatedAt  time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt  *time.Time `json:"updatedAt" db:"updated_at"`

	ParentID int64 `json:"-" db:"parent_id"`
	AuthorID int64 `json:"-" db:"author_id"`
}

type TaskResponse struct {
	ID                    int64             `json:"id" db:"id"`
	Title                 string            `json:"title" db:"title"`
	Description           string            `json:"description" db:"description"`
	Priority              string            `json:"priority" db:"priority"`
	Status                string            `json:"status" db:"status"`
	DueDate               *time.Time        `json:"dueDate" db:"due_date"`
	ProjectName           string            `json:"projectName" db:"project_name"`
	AssignedEmployeeNames []string          `json:"assignedEmployeeNames" db:"-"`
	AssignedByAdminName   string            `json:"assignedByAdminName" db:"assigned_by_admin_name"`
	Comments              []CommentResponse `json:"comments" db:"-"`
	CreatedAt             time.Time         `json:"createdAt" db:"created_at"`

	ProjectID int64 `json:"-" db:"project_id"`
}

// ProjectResponse exposes the project name as "title".
type ProjectResponse struct {
	ID                    int64             `json:"id" db:"id"`
	Title                 string            `json:"title" db:"name"`
	Description           string            `json:"description" db:"description"`
	Status                string            `json:"status" db:"status"`
	StartDate             *time.Time        `json:"startDate" db:"start_date"`
	EndDate               *time.Time        `json:"endDate" db:"end_date"`
	AssignedEmployeeNames []string          `json:"assignedEmployeeNames" db:"-"`
	CreatedByAdminName    string            `json:"createdByAdminName" db:"created_by_admin_name"`
	Tasks                 []TaskResponse    `json:"tasks" db:"-"`
	Comments              []CommentResponse `json:"comments" db:"-"`
	CreatedAt             time.Time         `json:"createdAt" db:"created_at"`
}

// ProjectFilter narrows a project listing. Nil IDs means no id constraint;
// a non-nil empty slice matches nothing.
type ProjectFilter struct {
	IDs            []int64
	AssignedUserID *int64
}

type TaskFilter struct {
	IDs            []int64
	ProjectIDs     []int64
	AssignedUserID *int64
}

type CommentFilter struct {
	IDs       []int64
	ParentIDs []int64
	AuthorID  *int64
}

// CommentScope selects the comment table a query reads from.
type CommentScope string

const (
	ProjectComments CommentScope = "project"
	TaskComments    CommentScope = "task"
)

func (s CommentScope) table() string {
	if s == TaskComments {
		return "task_comments"
	}
	return "project_comments"
}

func (s CommentScope) parentColumn() string {
	if s == TaskComments {
		return "task_id"
	}
	return "project_id"
}

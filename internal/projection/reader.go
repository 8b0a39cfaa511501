package projection

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// displayName prefers the user's name and falls back to the username.
const displayName = "COALESCE(NULLIF(%[1]s.name, ''), %[1]s.username, '')"

var (
	projectBaseQuery = `
SELECT p.id, p.name, p.description, p.status, p.start_date, p.end_date, p.created_at,
       ` + fmt.Sprintf(displayName, "u") + ` AS created_by_admin_name
FROM projects p
LEFT JOIN users u ON u.id = p.created_by_admin_id`

	taskBaseQuery = `
SELECT t.id, t.title, t.description, t.priority, t.status, t.due_date, t.project_id, t.created_at,
       COALESCE(p.name, '') AS project_name,
       ` + fmt.Sprintf(displayName, "u") + ` AS assigned_by_admin_name
FROM tasks t
LEFT JOIN projects p ON p.id = t.project_id
LEFT JOIN users u ON u.id = t.assigned_by_admin_id`

	commentBaseQuery = `
SELECT c.id, c.content, c.%[1]s AS parent_id, c.author_id, c.created_at, c.updated_at,
       ` + fmt.Sprintf(displayName, "u") + ` AS author_name
FROM %[2]s c
LEFT JOIN users u ON u.id = c.author_id`

	projectAssigneesQuery = `
SELECT pe.project_id AS owner_id, ` + fmt.Sprintf(displayName, "u") + ` AS name
FROM project_employees pe
JOIN users u ON u.id = pe.user_id
WHERE pe.project_id IN (?)
ORDER BY pe.project_id, u.id`

	taskAssigneesQuery = `
SELECT te.task_id AS owner_id, ` + fmt.Sprintf(displayName, "u") + ` AS name
FROM task_employees te
JOIN users u ON u.id = te.user_id
WHERE te.task_id IN (?)
ORDER BY te.task_id, u.id`
)

type Reader struct {
	db *sqlx.DB
}

func NewReader(db *sqlx.DB) *Reader {
	return &Reader{db: db}
}

type assigneeRow struct {
	OwnerID int64  `db:"owner_id"`
	Name    string `db:"name"`
}

type clauses struct {
	conds []string
	args  []interface{}
}

func (c *clauses) add(cond string, args ...interface{}) {
	c.conds = append(c.conds, cond)
	c.args = append(c.args, args...)
}

func (c *clauses) where() string {
	if len(c.conds) == 0 {
		return ""
	}
	return "\nWHERE " + strings.Join(c.conds, " AND ")
}

func (r *Reader) selectIn(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return err
	}
	return r.db.SelectContext(ctx, dest, r.db.Rebind(query), args...)
}

func (r *Reader) Projects(ctx context.Context, f ProjectFilter) ([]ProjectResponse, error) {
	projects := []ProjectResponse{}
	if f.IDs != nil && len(f.IDs) == 0 {
		return projects, nil
	}

	var c clauses
	if f.IDs != nil {
		c.add("p.id IN (?)", f.IDs)
	}
	if f.AssignedUserID != nil {
		c.add("EXISTS (SELECT 1 FROM project_employees pe WHERE pe.project_id = p.id AND pe.user_id = ?)", *f.AssignedUserID)
	}

	if err := r.selectIn(ctx, &projects, projectBaseQuery+c.where()+"\nORDER BY p.id", c.args...); err != nil {
		return nil, fmt.Errorf("select projects: %w", err)
	}
	if len(projects) == 0 {
		return projects, nil
	}

	ids := make([]int64, len(projects))
	for i := range projects {
		ids[i] = projects[i].ID
	}

	names, err := r.assignees(ctx, projectAssigneesQuery, ids)
	if err != nil {
		return nil, fmt.Errorf("select project assignees: %w", err)
	}

	tasks, err := r.Tasks(ctx, TaskFilter{ProjectIDs: ids})
	if err != nil {
		return nil, err
	}
	tasksByProject := make(map[int64][]TaskResponse, len(ids))
	for _, t := range tasks {
		tasksByProject[t.ProjectID] = append(tasksByProject[t.ProjectID], t)
	}

	comments, err := r.Comments(ctx, ProjectComments, CommentFilter{ParentIDs: ids})
	if err != nil {
		return nil, err
	}
	commentsByProject := groupComments(comments)

	for i := range projects {
		p := &projects[i]
		p.AssignedEmployeeNames = nonNilStrings(names[p.ID])
		p.Tasks = tasksByProject[p.ID]
		if p.Tasks == nil {
			p.Tasks = []TaskResponse{}
		}
		p.Comments = nonNilComments(commentsByProject[p.ID])
	}

	return projects, nil
}

func (r *Reader) Tasks(ctx context.Context, f TaskFilter) ([]TaskResponse, error) {
	tasks := []TaskResponse{}
	if (f.IDs != nil && len(f.IDs) == 0) || (f.ProjectIDs != nil && len(f.ProjectIDs) == 0) {
		return tasks, nil
	}

	var c clauses
	if f.IDs != nil {
		c.add("t.id IN (?)", f.IDs)
	}
	if f.ProjectIDs != nil {
		c.add("t.project_id IN (?)", f.ProjectIDs)
	}
	if f.AssignedUserID != nil {
		c.add("EXISTS (SELECT 1 FROM task_employees te WHERE te.task_id = t.id AND te.user_id = ?)", *f.AssignedUserID)
	}

	if err := r.selectIn(ctx, &tasks, taskBaseQuery+c.where()+"\nORDER BY t.id", c.args...); err != nil {
		return nil, fmt.Errorf("select tasks: %w", err)
	}
	if len(tasks) == 0 {
		return tasks, nil
	}

	ids := make([]int64, len(tasks))
	for i := range tasks {
		ids[i] = tasks[i].ID
	}

	names, err := r.assignees(ctx, taskAssigneesQuery, ids)
	if err != nil {
		return nil, fmt.Errorf("select task assignees: %w", err)
	}

	comments, err := r.Comments(ctx, TaskComments, CommentFilter{ParentIDs: ids})
	if err != nil {
		return nil, err
	}
	commentsByTask := groupComments(comments)

	for i := range tasks {
		t := &tasks[i]
		t.AssignedEmployeeNames = nonNilStrings(names[t.ID])
		t.Comments = nonNilComments(commentsByTask[t.ID])
	}

	return tasks, nil
}

func (r *Reader) Comments(ctx context.Context, scope CommentScope, f CommentFilter) ([]CommentResponse, error) {
	comments := []CommentResponse{}
	if (f.IDs != nil && len(f.IDs) == 0) || (f.ParentIDs != nil && len(f.ParentIDs) == 0) {
		return comments, nil
	}

	var c clauses
	if f.IDs != nil {
		c.add("c.id IN (?)", f.IDs)
	}
	if f.ParentIDs != nil {
		c.add("c."+scope.parentColumn()+" IN (?)", f.ParentIDs)
	}
	if f.AuthorID != nil {
		c.add("c.author_id = ?", *f.AuthorID)
	}

	base := fmt.Sprintf(commentBaseQuery, scope.parentColumn(), scope.table())
	if err := r.selectIn(ctx, &comments, base+c.where()+"\nORDER BY c.id", c.args...); err != nil {
		return nil, fmt.Errorf("select %s comments: %w", scope, err)
	}
	return comments, nil
}

func (r *Reader) assignees(ctx context.Context, query string, ownerIDs []int64) (map[int64][]string, error) {
	var rows []assigneeRow
	if err := r.selectIn(ctx, &rows, query, ownerIDs); err != nil {
		return nil, err
	}
	names := make(map[int64][]string, len(ownerIDs))
	for _, row := range rows {
		names[row.OwnerID] = append(names[row.OwnerID], row.Name)
	}
	return names, nil
}

func groupComments(comments []CommentResponse) map[int64][]CommentResponse {
	grouped := make(map[int64][]CommentResponse)
	for _, c := range comments {
		grouped[c.ParentID] = append(grouped[c.ParentID], c)
	}
	return grouped
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilComments(c []CommentResponse) []CommentResponse {
	if c == nil {
		return []CommentResponse{}
	}
	return c
}

package internal

type Action string

const (
	ActionRead       Action = "read"
	ActionCreate     Action = "create"
	ActionUpdate     Action = "update"
	ActionDelete     Action = "delete"
	ActionAssignRole Action = "assign_role"
	// ActionAttribute covers creating a resource on behalf of another user.
	ActionAttribute  Action = "attribute"
)

type Resource string

const (
	ResourceUser     Resource = "user"
	ResourceProject  Resource = "project"
	ResourceTask     Resource = "task"
	ResourceComment  Resource = "comment"
	ResourcePassword Resource = "password"
)

// NoOwner marks a check made without a specific resource owner.
const NoOwner int64 = 0

// Authorizer decides whether actor may perform action on a resource owned by ownerID.
type Authorizer interface {
	Authorize(actor *Actor, action Action, resource Resource, ownerID int64) error
}

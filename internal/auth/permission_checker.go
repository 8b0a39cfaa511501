package auth

import "github.com/frahmantamala/project-management/internal"

// PermissionChecker answers role-level capability questions, ignoring ownership.
type PermissionChecker interface {
	Can(role string, action internal.Action, resource internal.Resource) bool
	CanOwn(role string, action internal.Action, resource internal.Resource) bool
	IsAdmin(role string) bool
}

type capability struct {
	action   internal.Action
	resource internal.Resource
}

type DefaultPermissionChecker struct {
	granted map[string]map[capability]bool
	owned   map[string]map[capability]bool
}

func NewPermissionChecker() *DefaultPermissionChecker {
	employeeGranted := map[capability]bool{
		{internal.ActionRead, internal.ResourceUser}:      true,
		{internal.ActionRead, internal.ResourceProject}:   true,
		{internal.ActionRead, internal.ResourceTask}:      true,
		{internal.ActionRead, internal.ResourceComment}:   true,
		{internal.ActionCreate, internal.ResourceComment}: true,
	}
	employeeOwned := map[capability]bool{
		{internal.ActionUpdate, internal.ResourceComment}:  true,
		{internal.ActionDelete, internal.ResourceComment}:  true,
		{internal.ActionUpdate, internal.ResourceUser}:     true,
		{internal.ActionUpdate, internal.ResourcePassword}: true,
	}

	return &DefaultPermissionChecker{
		granted: map[string]map[capability]bool{internal.RoleEmployee: employeeGranted},
		owned:   map[string]map[capability]bool{internal.RoleEmployee: employeeOwned},
	}
}

func (c *DefaultPermissionChecker) IsAdmin(role string) bool {
	return role == internal.RoleAdmin
}

// Can reports a capability held regardless of who owns the resource.
func (c *DefaultPermissionChecker) Can(role string, action internal.Action, resource internal.Resource) bool {
	if c.IsAdmin(role) {
		return true
	}
	return c.granted[role][capability{action, resource}]
}

// CanOwn reports a capability held only over resources the actor owns.
func (c *DefaultPermissionChecker) CanOwn(role string, action internal.Action, resource internal.Resource) bool {
	if c.Can(role, action, resource) {
		return true
	}
	return c.owned[role][capability{action, resource}]
}

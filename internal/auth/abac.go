package auth

import (
	"github.com/frahmantamala/project-management/internal"
)

// ABACPolicy combines role capabilities with an owner attribute check.
type ABACPolicy struct {
	checker PermissionChecker
}

func NewABACPolicy(checker PermissionChecker) *ABACPolicy {
	if checker == nil {
		checker = NewPermissionChecker()
	}
	return &ABACPolicy{checker: checker}
}

var _ internal.Authorizer = (*ABACPolicy)(nil)

func (p *ABACPolicy) Allow(actor *internal.Actor, action internal.Action, resource internal.Resource, ownerID int64) bool {
	if actor == nil {
		return false
	}

	if p.checker.Can(actor.Role, action, resource) {
		return true
	}

	isOwner := ownerID != internal.NoOwner && ownerID == actor.ID
	return isOwner && p.checker.CanOwn(actor.Role, action, resource)
}

// Authorize returns a Forbidden AppError when Allow denies the request.
func (p *ABACPolicy) Authorize(actor *internal.Actor, action internal.Action, resource internal.Resource, ownerID int64) error {
	if actor == nil {
		return internal.NewUnauthorizedError("authentication required", internal.ErrCodeInvalidToken)
	}
	if !p.Allow(actor, action, resource, ownerID) {
		return internal.ErrForbidden
	}
	return nil
}

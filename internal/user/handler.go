package user

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/frahmantamala/project-management/internal"
	"github.com/frahmantamala/project-management/internal/transport"
	"github.com/frahmantamala/project-management/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	ListUsers(ctx context.Context) ([]UserResponse, error)
	GetUser(ctx context.Context, id int64) (*UserResponse, error)
	GetUserByEmail(ctx context.Context, email string) (*UserResponse, error)
	GetUsersByRole(ctx context.Context, role string) ([]UserResponse, error)
	CreateUser(ctx context.Context, dto CreateUserDTO) (*UserResponse, error)
	UpdateUser(ctx context.Context, id int64, dto UpdateUserDTO) (*UserResponse, error)
	UpdatePassword(ctx context.Context, id int64, dto UpdatePasswordDTO) error
	DeleteUser(ctx context.Context, id int64) error
	GetColleagues(ctx context.Context, projectID int64, requesterUsername string) ([]UserResponse, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
	Policy  internal.Authorizer
}

func NewHandler(svc ServiceAPI, policy internal.Authorizer) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
		Policy:      policy,
	}
}

// ListUsers handles GET /users
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Service.ListUsers(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, users)
}

// GetUser handles GET /users/{id}
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathID(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	u, err := h.Service.GetUser(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, u)
}

// GetUserByEmail handles GET /users/email/{email}
func (h *Handler) GetUserByEmail(w http.ResponseWriter, r *http.Request) {
	email, err := url.PathUnescape(chi.URLParam(r, "email"))
	if err != nil || email == "" {
		h.WriteError(w, http.StatusBadRequest, "invalid email")
		return
	}

	u, err := h.Service.GetUserByEmail(r.Context(), email)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, u)
}

// GetUsersByRole handles GET /users/role/{role}
func (h *Handler) GetUsersByRole(w http.ResponseWriter, r *http.Request) {
	role := chi.URLParam(r, "role")

	users, err := h.Service.GetUsersByRole(r.Context(), role)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, users)
}

// CreateUser handles POST /users
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var dto CreateUserDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	u, err := h.Service.CreateUser(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("CreateUser: user created", "user_id", u.ID, "username", u.Username)
	h.WriteJSON(w, http.StatusCreated, u)
}

// UpdateUser handles PUT /users/{id}. Employees may edit only themselves
// and never their role.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Actor(w, r)
	if !ok {
		return
	}

	id, err := h.PathID(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	var dto UpdateUserDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	if err := h.Policy.Authorize(actor, internal.ActionUpdate, internal.ResourceUser, id); err != nil {
		h.Logger.Warn("UpdateUser: access denied", "actor_id", actor.ID, "user_id", id)
		h.HandleServiceError(w, err)
		return
	}
	if dto.Role != nil {
		if err := h.Policy.Authorize(actor, internal.ActionAssignRole, internal.ResourceUser, id); err != nil {
			h.Logger.Warn("UpdateUser: role change denied", "actor_id", actor.ID, "user_id", id)
			h.HandleServiceError(w, err)
			return
		}
	}

	u, err := h.Service.UpdateUser(r.Context(), id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, u)
}

// UpdatePassword handles PATCH /users/{id}/password
func (h *Handler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Actor(w, r)
	if !ok {
		return
	}

	id, err := h.PathID(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	if err := h.Policy.Authorize(actor, internal.ActionUpdate, internal.ResourcePassword, id); err != nil {
		h.Logger.Warn("UpdatePassword: access denied", "actor_id", actor.ID, "user_id", id)
		h.HandleServiceError(w, err)
		return
	}

	var dto UpdatePasswordDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	if err := h.Service.UpdatePassword(r.Context(), id, dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "Password updated successfully"})
}

// DeleteUser handles DELETE /users/{id}
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathID(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	if err := h.Service.DeleteUser(r.Context(), id); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetProjectColleagues handles GET /projects/{id}/colleagues
func (h *Handler) GetProjectColleagues(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Actor(w, r)
	if !ok {
		return
	}

	projectID, err := h.PathID(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	colleagues, err := h.Service.GetColleagues(r.Context(), projectID, actor.Username)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, colleagues)
}

package comment

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/project-management/internal"
	"github.com/frahmantamala/project-management/internal/projection"
	"github.com/frahmantamala/project-management/internal/transport"
	"github.com/frahmantamala/project-management/pkg/logger"
)

type ServiceAPI interface {
	Create(ctx context.Context, actor *internal.Actor, dto CreateCommentDTO) (*projection.CommentResponse, error)
	Owner(ctx context.Context, id int64) (int64, error)
	Update(ctx context.Context, id int64, dto UpdateCommentDTO) (*projection.CommentResponse, error)
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*projection.CommentResponse, error)
	ListByParent(ctx context.Context, parentID int64) ([]projection.CommentResponse, error)
	ListByUsername(ctx context.Context, username string) ([]projection.CommentResponse, error)
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

func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Actor(w, r)
	if !ok {
		return
	}

	var dto CreateCommentDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	if err := h.Policy.Authorize(actor, internal.ActionCreate, internal.ResourceComment, internal.NoOwner); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if dto.AuthorID != nil && *dto.AuthorID != actor.ID {
		if err := h.Policy.Authorize(actor, internal.ActionAttribute, internal.ResourceComment, internal.NoOwner); err != nil {
			h.HandleServiceError(w, err)
			return
		}
	}

	c, err := h.Service.Create(r.Context(), actor, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, c)
}

func (h *Handler) GetComment(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathID(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	c, err := h.Service.GetByID(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, c)
}

// authorizeOwner checks the actor against the comment's author.
func (h *Handler) authorizeOwner(w http.ResponseWriter, r *http.Request, action internal.Action) (int64, bool) {
	actor, ok := h.Actor(w, r)
	if !ok {
		return 0, false
	}

	id, err := h.PathID(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return 0, false
	}

	ownerID, err := h.Service.Owner(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return 0, false
	}

	if err := h.Policy.Authorize(actor, action, internal.ResourceComment, ownerID); err != nil {
		h.Logger.Warn("comment access denied", "actor_id", actor.ID, "comment_id", id, "action", action)
		h.HandleServiceError(w, err)
		return 0, false
	}
	return id, true
}

func (h *Handler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorizeOwner(w, r, internal.ActionUpdate)
	if !ok {
		return
	}

	var dto UpdateCommentDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	c, err := h.Service.Update(r.Context(), id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorizeOwner(w, r, internal.ActionDelete)
	if !ok {
		return
	}

	if err := h.Service.Delete(r.Context(), id); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) MyComments(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Actor(w, r)
	if !ok {
		return
	}

	comments, err := h.Service.ListByUsername(r.Context(), actor.Username)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, comments)
}

// ListByParent serves /projects/{id}/comments and /tasks/{id}/comments.
func (h *Handler) ListByParent(w http.ResponseWriter, r *http.Request) {
	parentID, err := h.PathID(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	comments, err := h.Service.ListByParent(r.Context(), parentID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, comments)
}

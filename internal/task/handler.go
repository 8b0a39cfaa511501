package task

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
	CreateTask(ctx context.Context, actor *internal.Actor, dto CreateTaskDTO, queryAssignerID *int64) (*projection.TaskResponse, error)
	UpdateTask(ctx context.Context, id int64, dto UpdateTaskDTO) (*projection.TaskResponse, error)
	DeleteTask(ctx context.Context, id int64) error
	GetAllTasks(ctx context.Context) ([]projection.TaskResponse, error)
	GetTaskByID(ctx context.Context, id int64) (*projection.TaskResponse, error)
	GetTasksByProject(ctx context.Context, projectID int64) ([]projection.TaskResponse, error)
	GetTasksByEmployee(ctx context.Context, userID int64) ([]projection.TaskResponse, error)
	GetTasksByUsername(ctx context.Context, username string) ([]projection.TaskResponse, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

// CreateTask handles POST /tasks[?assignedByAdminId=]
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Actor(w, r)
	if !ok {
		return
	}

	queryAssigner, err := h.QueryID(r, "assignedByAdminId")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	var dto CreateTaskDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	t, err := h.Service.CreateTask(r.Context(), actor, dto, queryAssigner)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, t)
}

// UpdateTask handles PUT /tasks/{id}
func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathID(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	var dto UpdateTaskDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	t, err := h.Service.UpdateTask(r.Context(), id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, t)
}

// DeleteTask handles DELETE /tasks/{id}
func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathID(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	if err := h.Service.DeleteTask(r.Context(), id); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetAllTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.Service.GetAllTasks(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, tasks)
}

func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathID(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	t, err := h.Service.GetTaskByID(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, t)
}

// GetTasksByProject handles GET /projects/{id}/tasks
func (h *Handler) GetTasksByProject(w http.ResponseWriter, r *http.Request) {
	h.listByID(w, r, h.Service.GetTasksByProject)
}

// GetTasksByEmployee handles GET /employees/{id}/tasks
func (h *Handler) GetTasksByEmployee(w http.ResponseWriter, r *http.Request) {
	h.listByID(w, r, h.Service.GetTasksByEmployee)
}

func (h *Handler) listByID(w http.ResponseWriter, r *http.Request, list func(context.Context, int64) ([]projection.TaskResponse, error)) {
	id, err := h.PathID(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	tasks, err := list(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, tasks)
}

// MyTasks handles GET /tasks/my-tasks
func (h *Handler) MyTasks(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Actor(w, r)
	if !ok {
		return
	}

	tasks, err := h.Service.GetTasksByUsername(r.Context(), actor.Username)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, tasks)
}

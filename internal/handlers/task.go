package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Marcel-mosha/task-manager/internal/services"
	"github.com/Marcel-mosha/task-manager/types"
	"github.com/go-chi/chi/v5"
)

// TaskHandler provides HTTP handlers for tasks. Every route requires an
// authenticated user in the request context.
type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// TaskRouter registers task routes on the given router behind the auth
// middleware.
func TaskRouter(r chi.Router, taskService *services.TaskService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewTaskHandler(taskService)

	r.Use(authMiddleware)
	r.Get("/", handler.ListTasks)
	r.Post("/", handler.CreateTask)
	r.Get("/completed", handler.ListCompleted)
	r.Get("/pending", handler.ListPending)
	r.Route("/{taskID}", func(r chi.Router) {
		r.Get("/", handler.GetTask)
		r.Put("/", handler.UpdateTask)
		r.Patch("/", handler.UpdateTask)
		r.Delete("/", handler.DeleteTask)
		r.Post("/toggle", handler.ToggleTask)
	})
}

func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, nil)
}

func (h *TaskHandler) ListCompleted(w http.ResponseWriter, r *http.Request) {
	completed := true
	h.list(w, r, &completed)
}

func (h *TaskHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	completed := false
	h.list(w, r, &completed)
}

func (h *TaskHandler) list(w http.ResponseWriter, r *http.Request, completed *bool) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	tasks, err := h.taskService.List(r.Context(), user, completed)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	// List views omit the owner; it is always the caller.
	writeJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	taskID, err := parseTaskID(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	task, err := h.taskService.Get(r.Context(), user, taskID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, taskDetail(task, user))
}

func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req TaskCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	task, err := h.taskService.Create(r.Context(), user, req.Title, req.Description)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, taskDetail(task, user))
}

func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	taskID, err := parseTaskID(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	var req TaskUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	task, err := h.taskService.Update(r.Context(), user, taskID, services.TaskUpdate{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, taskDetail(task, user))
}

func (h *TaskHandler) ToggleTask(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	taskID, err := parseTaskID(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	task, err := h.taskService.Toggle(r.Context(), user, taskID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, taskDetail(task, user))
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	taskID, err := parseTaskID(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	if err := h.taskService.Delete(r.Context(), user, taskID); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type TaskCreateRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// TaskUpdateRequest is a partial update; absent fields keep their
// current values. Owner and created_at are not accepted at all.
type TaskUpdateRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

// TaskDetailResponse is the detail view of a task, embedding its owner.
// List views use types.Task directly, which omits the owner.
type TaskDetailResponse struct {
	ID          int        `json:"id"`
	User        types.User `json:"user"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Completed   bool       `json:"completed"`
	CreatedAt   time.Time  `json:"created_at"`
}

func taskDetail(task types.Task, user types.User) TaskDetailResponse {
	return TaskDetailResponse{
		ID:          task.ID,
		User:        user,
		Title:       task.Title,
		Description: task.Description,
		Completed:   task.Completed,
		CreatedAt:   task.CreatedAt,
	}
}

// parseTaskID reads the task id URL parameter. Malformed ids are treated
// the same as missing tasks so nothing about other rows leaks.
func parseTaskID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "taskID")
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, errors.New("invalid task id")
	}
	return id, nil
}

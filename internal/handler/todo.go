package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taskpad/taskpad/internal/handler/dto"
	"github.com/taskpad/taskpad/internal/service"
)

// TodoHandler handles HTTP requests for todo operations.
// All routes are nested under the owning user.
type TodoHandler struct {
	svc    *service.TodoService
	logger *slog.Logger
}

// NewTodoHandler creates a new TodoHandler.
func NewTodoHandler(svc *service.TodoService, logger *slog.Logger) *TodoHandler {
	return &TodoHandler{
		svc:    svc,
		logger: logger,
	}
}

// Create handles POST /api/users/{userID}/todos.
func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req dto.CreateTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	input := service.CreateTodoInput{
		UserID:   userID,
		Name:     req.Name,
		Done:     req.Done,
		Category: req.Category,
	}

	todo, err := h.svc.CreateTodo(r.Context(), input)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("todo_created",
		"todo_id", todo.ID,
		"user_id", todo.UserID,
	)

	writeJSON(w, http.StatusCreated, dto.ToTodoResponse(todo))
}

// List handles GET /api/users/{userID}/todos.
//
// Supported filters:
//   - done=true|false  (any other value is a 400)
//   - category=<exact match>
func (h *TodoHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	query := r.URL.Query()

	input := service.ListTodosInput{
		UserID: userID,
	}

	if query.Has("done") {
		switch query.Get("done") {
		case "true":
			done := true
			input.Done = &done
		case "false":
			done := false
			input.Done = &done
		default:
			writeError(w, http.StatusBadRequest, "INVALID_QUERY", "done must be \"true\" or \"false\"")
			return
		}
	}

	if query.Has("category") {
		category := query.Get("category")
		input.Category = &category
	}

	todos, err := h.svc.ListTodos(r.Context(), input)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToTodoListResponse(todos))
}

// Get handles GET /api/users/{userID}/todos/{todoID}.
func (h *TodoHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	todoID := chi.URLParam(r, "todoID")

	todo, err := h.svc.GetTodo(r.Context(), userID, todoID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToTodoResponse(todo))
}

// Update handles PUT /api/users/{userID}/todos/{todoID}.
// Fields absent from the body keep their stored values.
func (h *TodoHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	todoID := chi.URLParam(r, "todoID")

	var req dto.UpdateTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	input := service.UpdateTodoInput{
		UserID:   userID,
		TodoID:   todoID,
		Name:     req.Name,
		Done:     req.Done,
		Category: req.Category,
	}

	todo, err := h.svc.UpdateTodo(r.Context(), input)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("todo_updated",
		"todo_id", todo.ID,
		"user_id", todo.UserID,
	)

	writeJSON(w, http.StatusOK, dto.ToTodoResponse(todo))
}

// Delete handles DELETE /api/users/{userID}/todos/{todoID}.
func (h *TodoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	todoID := chi.URLParam(r, "todoID")

	if err := h.svc.DeleteTodo(r.Context(), userID, todoID); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("todo_deleted",
		"todo_id", todoID,
		"user_id", userID,
	)

	w.WriteHeader(http.StatusNoContent)
}

// handleServiceError maps service errors to HTTP responses.
func (h *TodoHandler) handleServiceError(w http.ResponseWriter, err error) {
	if verr, ok := asValidationError(err); ok {
		writeValidationError(w, verr)
		return
	}

	switch {
	case errors.Is(err, service.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
	case errors.Is(err, service.ErrTodoNotFound):
		writeError(w, http.StatusNotFound, "TODO_NOT_FOUND", "Todo not found")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}

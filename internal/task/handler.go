package task

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ovaphlow/taskboard/service-board-go-stdlib/internal/task/entity"
)

// Handler exposes HTTP endpoints for task CRUD, moves and board views.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// TaskRequest is the payload for creating or fully replacing a task.
type TaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	Category    string     `json:"category"`
	Column      string     `json:"column"`
	DueDate     *time.Time `json:"due_date"`
}

func (r TaskRequest) fields() Fields {
	return Fields{
		Title:       r.Title,
		Description: r.Description,
		Priority:    r.Priority,
		Category:    r.Category,
		Column:      r.Column,
		DueDate:     r.DueDate,
	}
}

// MoveRequest is the drag-and-drop payload; only the column changes.
type MoveRequest struct {
	Column string `json:"column"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req TaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	t, err := h.svc.Create(r.Context(), req.fields())
	if err != nil {
		h.respondError(w, err, "create task failed")
		return
	}
	h.writeJSON(w, http.StatusCreated, t)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.respondError(w, err, "get task failed")
		return
	}
	h.writeJSON(w, http.StatusOK, t)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := Filter{
		Column:   q.Get("column"),
		Priority: q.Get("priority"),
		Category: q.Get("category"),
	}
	tasks, err := h.svc.List(r.Context(), f)
	if err != nil {
		h.respondError(w, err, "list tasks failed")
		return
	}
	h.writeJSON(w, http.StatusOK, tasks)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req TaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	t, err := h.svc.Update(r.Context(), r.PathValue("id"), req.fields())
	if err != nil {
		h.respondError(w, err, "update task failed")
		return
	}
	h.writeJSON(w, http.StatusOK, t)
}

func (h *Handler) Move(w http.ResponseWriter, r *http.Request) {
	var req MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	t, err := h.svc.Move(r.Context(), r.PathValue("id"), req.Column)
	if err != nil {
		h.respondError(w, err, "move task failed")
		return
	}
	h.writeJSON(w, http.StatusOK, t)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.respondError(w, err, "delete task failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Board(w http.ResponseWriter, r *http.Request) {
	board, err := h.svc.Board(r.Context())
	if err != nil {
		h.respondError(w, err, "board view failed")
		return
	}
	h.writeJSON(w, http.StatusOK, board)
}

func (h *Handler) Columns(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string][]string{"columns": entity.Columns()})
}

func (h *Handler) Priorities(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string][]string{"priorities": entity.Priorities()})
}

func (h *Handler) respondError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound):
		h.writeError(w, http.StatusNotFound, "Task not found")
	case errors.Is(err, ErrValidation):
		// sentinel prefix carries no detail; the wrapped message does
		h.writeError(w, http.StatusBadRequest, strings.TrimPrefix(err.Error(), ErrValidation.Error()+": "))
	default:
		h.logger.Errorw(fallback, "err", err)
		h.writeError(w, http.StatusInternalServerError, fallback)
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}

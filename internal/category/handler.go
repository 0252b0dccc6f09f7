package category

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Handler exposes HTTP endpoints for the category registry.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// List returns every known category: registered names plus names in use
// by tasks, sorted.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	names, err := h.svc.Known(r.Context())
	if err != nil {
		h.logger.Errorw("list categories failed", "err", err)
		h.writeError(w, http.StatusInternalServerError, "list categories failed")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string][]string{"categories": names})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	name, err := h.svc.Create(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidName):
			h.writeError(w, http.StatusBadRequest, strings.TrimPrefix(err.Error(), ErrInvalidName.Error()+": "))
		case errors.Is(err, ErrDuplicateCategory):
			h.writeError(w, http.StatusBadRequest, "category already exists")
		default:
			h.logger.Errorw("create category failed", "err", err)
			h.writeError(w, http.StatusInternalServerError, "create category failed")
		}
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"category": name})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if err := h.svc.Delete(r.Context(), name); err != nil {
		if errors.Is(err, ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "category not found")
			return
		}
		h.logger.Errorw("delete category failed", "name", name, "err", err)
		h.writeError(w, http.StatusInternalServerError, "delete category failed")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"category": name})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}

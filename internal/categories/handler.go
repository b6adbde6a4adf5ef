package categories

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/chronicle-cms/chronicle/internal/platform/httpx"
	"github.com/chronicle-cms/chronicle/internal/rbac"
	"github.com/chronicle-cms/chronicle/internal/shared"
)

// Handler manages category endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	gate      rbac.Middleware
	throttle  httpx.Throttle
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, gate rbac.Middleware, throttle httpx.Throttle) *Handler {
	return &Handler{logger: logger, service: service, gate: gate, throttle: throttle, validator: validator.New()}
}

// MountRoutes registers category routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.throttle.Relaxed).Get("/", h.list)
	r.With(h.throttle.Relaxed).Get("/{id}", h.get)

	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireAny(rbac.Require(rbac.ResourceCategory, rbac.ActionCreate)))
		r.With(h.throttle.Normal).Post("/", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireAny(rbac.Require(rbac.ResourceCategory, rbac.ActionUpdate)))
		r.With(h.throttle.Normal).Patch("/{id}", h.update)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireAny(rbac.Require(rbac.ResourceCategory, rbac.ActionDelete)))
		r.With(h.throttle.Normal).Delete("/{id}", h.remove)
	})
}

type categoryRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
}

type categoryResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list categories", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]categoryResponse, 0, len(items))
	for _, c := range items {
		out = append(out, toResponse(&c))
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid category id")
		return
	}
	category, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondErr(w, "get category", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(category))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	category, err := h.service.Create(r.Context(), req.Name, req.Description)
	if err != nil {
		h.respondErr(w, "create category", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toResponse(category))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid category id")
		return
	}
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	category, err := h.service.Update(r.Context(), id, req.Name, req.Description)
	if err != nil {
		h.respondErr(w, "update category", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(category))
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid category id")
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondErr(w, "delete category", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (categoryRequest, bool) {
	var req categoryRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return req, false
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "name is required")
		return req, false
	}
	return req, true
}

func (h *Handler) respondErr(w http.ResponseWriter, op string, err error) {
	if !errors.Is(err, shared.ErrNotFound) && !errors.Is(err, shared.ErrDuplicate) {
		h.logger.Error(op, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}

func toResponse(c *Category) categoryResponse {
	return categoryResponse{ID: c.ID, Name: c.Name, Description: c.Description, CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt}
}

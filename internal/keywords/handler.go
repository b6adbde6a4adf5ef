package keywords

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

// Handler manages keyword endpoints.
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

// MountRoutes registers keyword routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.throttle.Relaxed).Get("/", h.list)
	r.With(h.throttle.Relaxed).Get("/{id}", h.get)

	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireAny(rbac.Require(rbac.ResourceKeyword, rbac.ActionCreate)))
		r.With(h.throttle.Normal).Post("/", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireAny(rbac.Require(rbac.ResourceKeyword, rbac.ActionUpdate)))
		r.With(h.throttle.Normal).Patch("/{id}", h.update)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireAny(rbac.Require(rbac.ResourceKeyword, rbac.ActionDelete)))
		r.With(h.throttle.Normal).Delete("/{id}", h.remove)
	})
}

type keywordRequest struct {
	Name string `json:"name" validate:"required,max=60"`
}

type keywordResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list keywords", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]keywordResponse, 0, len(items))
	for _, k := range items {
		out = append(out, keywordResponse{ID: k.ID, Name: k.Name, CreatedAt: k.CreatedAt, UpdatedAt: k.UpdatedAt})
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid keyword id")
		return
	}
	keyword, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondErr(w, "get keyword", err)
		return
	}
	httpx.JSON(w, http.StatusOK, keywordResponse{ID: keyword.ID, Name: keyword.Name, CreatedAt: keyword.CreatedAt, UpdatedAt: keyword.UpdatedAt})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req keywordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "name is required")
		return
	}
	keyword, err := h.service.Create(r.Context(), req.Name)
	if err != nil {
		h.respondErr(w, "create keyword", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, keywordResponse{ID: keyword.ID, Name: keyword.Name, CreatedAt: keyword.CreatedAt, UpdatedAt: keyword.UpdatedAt})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid keyword id")
		return
	}
	var req keywordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "name is required")
		return
	}
	keyword, err := h.service.Update(r.Context(), id, req.Name)
	if err != nil {
		h.respondErr(w, "update keyword", err)
		return
	}
	httpx.JSON(w, http.StatusOK, keywordResponse{ID: keyword.ID, Name: keyword.Name, CreatedAt: keyword.CreatedAt, UpdatedAt: keyword.UpdatedAt})
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid keyword id")
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondErr(w, "delete keyword", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondErr(w http.ResponseWriter, op string, err error) {
	if !errors.Is(err, shared.ErrNotFound) && !errors.Is(err, shared.ErrDuplicate) {
		h.logger.Error(op, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}

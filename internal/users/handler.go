package users

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

// Handler manages user administration endpoints. Reads require the
// user:read permission, every mutation requires user:update.
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

// MountRoutes registers user routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireAny(rbac.Require(rbac.ResourceUser, rbac.ActionRead)))
		r.With(h.throttle.Relaxed).Get("/", h.list)
		r.With(h.throttle.Relaxed).Get("/{id}", h.get)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireAny(rbac.Require(rbac.ResourceUser, rbac.ActionUpdate)))
		r.With(h.throttle.Normal).Post("/", h.create)
		r.With(h.throttle.Normal).Patch("/{id}", h.update)
		r.With(h.throttle.Normal).Delete("/{id}", h.remove)
	})
}

type createUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,max=100"`
	Password string `json:"password" validate:"required,min=8"`
	RoleID   *int64 `json:"role_id"`
}

type updateUserRequest struct {
	Name     *string `json:"name" validate:"omitempty,max=100"`
	RoleID   *int64  `json:"role_id"`
	IsActive *bool   `json:"is_active"`
}

type userResponse struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	RoleID    *int64    `json:"role_id"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type listUsersResponse struct {
	Items []userResponse    `json:"items"`
	Meta  shared.Pagination `json:"meta"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, perPage := shared.PageFromRequest(r)
	items, meta, err := h.service.List(r.Context(), page, perPage)
	if err != nil {
		h.logger.Error("list users", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := listUsersResponse{Items: make([]userResponse, 0, len(items)), Meta: meta}
	for _, u := range items {
		out.Items = append(out.Items, toUserResponse(&u))
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid user id")
		return
	}
	user, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondErr(w, "get user", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toUserResponse(&user))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "email, name and a password of at least 8 characters are required")
		return
	}
	user, err := h.service.Create(r.Context(), req.Email, req.Name, req.Password, req.RoleID)
	if err != nil {
		h.respondErr(w, "create user", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toUserResponse(&user))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid user id")
		return
	}
	var req updateUserRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "name must be at most 100 characters")
		return
	}
	user, err := h.service.Update(r.Context(), id, UserChanges{Name: req.Name, RoleID: req.RoleID, IsActive: req.IsActive})
	if err != nil {
		h.respondErr(w, "update user", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toUserResponse(&user))
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid user id")
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondErr(w, "delete user", err)
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

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func toUserResponse(u *User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, Name: u.Name, RoleID: u.RoleID, IsActive: u.IsActive, CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt}
}

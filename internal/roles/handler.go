package roles

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

// Handler manages role endpoints, including the role-permission grant
// administration. Every route requires the user:update permission.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	authz     *rbac.Service
	gate      rbac.Middleware
	throttle  httpx.Throttle
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, authz *rbac.Service, gate rbac.Middleware, throttle httpx.Throttle) *Handler {
	return &Handler{logger: logger, service: service, authz: authz, gate: gate, throttle: throttle, validator: validator.New()}
}

// MountRoutes registers role routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireAny(rbac.Require(rbac.ResourceUser, rbac.ActionUpdate)))

		r.With(h.throttle.Relaxed).Get("/", h.list)
		r.With(h.throttle.Relaxed).Get("/{id}", h.get)
		r.With(h.throttle.Normal).Post("/", h.create)
		r.With(h.throttle.Normal).Patch("/{id}", h.update)
		r.With(h.throttle.Normal).Delete("/{id}", h.remove)

		r.With(h.throttle.Relaxed).Get("/{id}/permissions", h.listGrants)
		r.With(h.throttle.Normal).Post("/{id}/permissions", h.assignGrant)
		r.With(h.throttle.Normal).Delete("/{id}/permissions/{permissionID}", h.revokeGrant)
	})
}

type roleRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
}

type assignGrantRequest struct {
	PermissionID int64 `json:"permission_id" validate:"required,gt=0"`
}

type roleResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type grantResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Resource    string `json:"resource"`
	Action      string `json:"action"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list roles", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]roleResponse, 0, len(items))
	for _, role := range items {
		out = append(out, toRoleResponse(&role))
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	role, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondErr(w, "get role", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toRoleResponse(&role))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	role, err := h.service.Create(r.Context(), req.Name, req.Description)
	if err != nil {
		h.respondErr(w, "create role", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toRoleResponse(&role))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	role, err := h.service.Update(r.Context(), id, req.Name, req.Description)
	if err != nil {
		h.respondErr(w, "update role", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toRoleResponse(&role))
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondErr(w, "delete role", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listGrants(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	if _, err := h.service.Get(r.Context(), id); err != nil {
		h.respondErr(w, "get role", err)
		return
	}
	perms, err := h.authz.RolePermissions(r.Context(), id)
	if err != nil {
		h.logger.Error("list role permissions", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]grantResponse, 0, len(perms))
	for _, p := range perms {
		out = append(out, grantResponse{ID: p.ID, Name: p.Name, Description: p.Description, Resource: p.Resource, Action: p.Action})
	}
	httpx.JSON(w, http.StatusOK, out)
}

// assignGrant binds a permission to a role. Binding a permission the
// role already holds is a no-op and still returns 204.
func (h *Handler) assignGrant(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	var req assignGrantRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "permission_id is required")
		return
	}
	if err := h.authz.AssignPermission(r.Context(), id, req.PermissionID); err != nil {
		h.respondErr(w, "assign permission", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) revokeGrant(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	permissionID, ok := h.pathID(w, r, "permissionID")
	if !ok {
		return
	}
	if err := h.authz.RevokePermission(r.Context(), id, permissionID); err != nil {
		h.respondErr(w, "revoke permission", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid identifier")
		return 0, false
	}
	return id, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (roleRequest, bool) {
	var req roleRequest
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

func toRoleResponse(role *Role) roleResponse {
	return roleResponse{ID: role.ID, Name: role.Name, Description: role.Description, CreatedAt: role.CreatedAt, UpdatedAt: role.UpdatedAt}
}

package posts

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

// Handler manages post endpoints.
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
	return &Handler{
		logger:    logger,
		service:   service,
		authz:     authz,
		gate:      gate,
		throttle:  throttle,
		validator: validator.New(),
	}
}

// MountRoutes registers post routes. Reads are public; mutations pass
// the access gate, and update/delete additionally resolve per-instance
// modify rights in the handler.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.throttle.Relaxed).Get("/", h.listPosts)
	r.With(h.throttle.Relaxed).Get("/{id}", h.getPost)

	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireAny(rbac.Require(rbac.ResourcePost, rbac.ActionCreate)))
		r.With(h.throttle.Normal).Post("/", h.createPost)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireAny(
			rbac.Require(rbac.ResourcePost, rbac.ActionUpdateOwn),
			rbac.Require(rbac.ResourcePost, rbac.ActionUpdateAny),
		))
		r.With(h.throttle.Normal).Patch("/{id}", h.updatePost)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireAny(
			rbac.Require(rbac.ResourcePost, rbac.ActionDeleteOwn),
			rbac.Require(rbac.ResourcePost, rbac.ActionDeleteAny),
		))
		r.With(h.throttle.Normal).Delete("/{id}", h.deletePost)
	})
}

type postResponse struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Published  bool      `json:"published"`
	AuthorID   int64     `json:"author_id"`
	CategoryID *int64    `json:"category_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type listPostsResponse struct {
	Items []postResponse    `json:"items"`
	Meta  shared.Pagination `json:"meta"`
}

type createPostRequest struct {
	Title      string `json:"title" validate:"required,max=200"`
	Content    string `json:"content" validate:"required"`
	Published  bool   `json:"published"`
	CategoryID *int64 `json:"category_id"`
}

type updatePostRequest struct {
	Title      *string `json:"title" validate:"omitempty,max=200"`
	Content    *string `json:"content"`
	Published  *bool   `json:"published"`
	CategoryID *int64  `json:"category_id"`
}

func (h *Handler) listPosts(w http.ResponseWriter, r *http.Request) {
	page, perPage := shared.PageFromRequest(r)
	items, meta, err := h.service.List(r.Context(), page, perPage)
	if err != nil {
		h.logger.Error("list posts", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := listPostsResponse{Items: make([]postResponse, 0, len(items)), Meta: meta}
	for _, p := range items {
		out.Items = append(out.Items, toPostResponse(&p))
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) getPost(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid post id")
		return
	}
	post, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondErr(w, "get post", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toPostResponse(post))
}

func (h *Handler) createPost(w http.ResponseWriter, r *http.Request) {
	userID, ok := shared.PrincipalID(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}
	var req createPostRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "title and content are required")
		return
	}
	post, err := h.service.Create(r.Context(), userID, req.Title, req.Content, req.Published, req.CategoryID)
	if err != nil {
		h.logger.Error("create post", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toPostResponse(post))
}

func (h *Handler) updatePost(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorizeModify(w, r, rbac.ActionUpdateOwn, rbac.ActionUpdateAny)
	if !ok {
		return
	}

	var req updatePostRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid post fields")
		return
	}
	post, err := h.service.Update(r.Context(), id, PostChanges{
		Title:      req.Title,
		Content:    req.Content,
		Published:  req.Published,
		CategoryID: req.CategoryID,
	})
	if err != nil {
		h.respondErr(w, "update post", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toPostResponse(post))
}

func (h *Handler) deletePost(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorizeModify(w, r, rbac.ActionDeleteOwn, rbac.ActionDeleteAny)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondErr(w, "delete post", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// authorizeModify performs the per-instance ownership check after the
// access gate has already verified the coarse own/any declaration. It
// writes the rejection itself and reports whether the caller may
// proceed.
func (h *Handler) authorizeModify(w http.ResponseWriter, r *http.Request, ownAction, anyAction string) (id int64, ok bool) {
	userID, authed := shared.PrincipalID(r.Context())
	if !authed {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return 0, false
	}
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid post id")
		return 0, false
	}
	allowed, err := h.authz.CanModify(r.Context(), userID, id, h.service, rbac.ResourcePost, ownAction, anyAction)
	if err != nil {
		h.logger.Error("post modify check", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return 0, false
	}
	if !allowed {
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "not permitted")
		return 0, false
	}
	return id, true
}

func (h *Handler) respondErr(w http.ResponseWriter, op string, err error) {
	if !errors.Is(err, shared.ErrNotFound) && !errors.Is(err, shared.ErrDuplicate) {
		h.logger.Error(op, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}

func toPostResponse(p *Post) postResponse {
	return postResponse{
		ID:         p.ID,
		Title:      p.Title,
		Content:    p.Content,
		Published:  p.Published,
		AuthorID:   p.AuthorID,
		CategoryID: p.CategoryID,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

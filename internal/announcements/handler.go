package announcements

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/benirage/console/internal/access"
	"github.com/benirage/console/internal/platform/httpx"
	"github.com/benirage/console/internal/shared"
)

const visitCountKey = "visit_count"

// Handler exposes the viewer-facing banner endpoints and the admin CRUD.
type Handler struct {
	logger  *slog.Logger
	service *Service
	access  access.Middleware
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, accessmw access.Middleware) *Handler {
	return &Handler{logger: logger, service: service, access: accessmw}
}

// MountRoutes registers announcement routes. The viewer endpoints are open;
// administration requires the manage-settings capability.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/active", h.active)
	r.Post("/{id}/dismiss", h.dismiss)
	r.Post("/{id}/displayed", h.displayed)

	r.Group(func(r chi.Router) {
		r.Use(h.access.Require(access.CapManageSettings))
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
		r.Post("/", h.create)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.remove)
	})
}

// viewer keys dismissals: the account email when signed in, otherwise the
// session id so anonymous dismissals survive page loads.
func viewer(r *http.Request) string {
	if user := access.UserFromContext(r.Context()); user != nil {
		return user.Email
	}
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		return sess.ID
	}
	return ""
}

func (h *Handler) active(w http.ResponseWriter, r *http.Request) {
	view := ViewContext{
		Now:    time.Now(),
		Page:   r.URL.Query().Get("page"),
		Device: r.URL.Query().Get("device"),
	}
	if user := access.UserFromContext(r.Context()); user != nil {
		view.Role = string(access.ResolveRole(user))
	}
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		visits, _ := strconv.Atoi(sess.Get(visitCountKey))
		visits++
		sess.Set(visitCountKey, strconv.Itoa(visits))
		view.Visits = visits
	}

	active, err := h.service.ActiveFor(r.Context(), viewer(r), view)
	if err != nil {
		h.logger.Error("active announcements", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"announcements": active})
}

func (h *Handler) dismiss(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid announcement id")
		return
	}
	if err := h.service.Dismiss(r.Context(), viewer(r), id); err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) displayed(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid announcement id")
		return
	}
	if err := h.service.Displayed(r.Context(), viewer(r), id); err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	all, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list announcements", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"announcements": all})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid announcement id")
		return
	}
	a, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, a)
}

type announcementRequest struct {
	Type            Type       `json:"type"`
	Title           string     `json:"title"`
	Message         string     `json:"message"`
	Priority        int        `json:"priority"`
	Active          bool       `json:"active"`
	Dismissible     bool       `json:"dismissible"`
	StartsAt        time.Time  `json:"starts_at"`
	EndsAt          *time.Time `json:"ends_at"`
	Audience        []string   `json:"audience"`
	Pages           []string   `json:"pages"`
	Devices         []string   `json:"devices"`
	MinVisits       int        `json:"min_visits"`
	AutoHideSeconds int        `json:"auto_hide_seconds"`
}

func (req announcementRequest) model() Announcement {
	return Announcement{
		Type:            req.Type,
		Title:           req.Title,
		Message:         req.Message,
		Priority:        req.Priority,
		Active:          req.Active,
		Dismissible:     req.Dismissible,
		StartsAt:        req.StartsAt,
		EndsAt:          req.EndsAt,
		Audience:        req.Audience,
		Pages:           req.Pages,
		Devices:         req.Devices,
		MinVisits:       req.MinVisits,
		AutoHideSeconds: req.AutoHideSeconds,
	}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req announcementRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if req.Title == "" {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "title is required")
		return
	}
	a, err := h.service.Create(r.Context(), req.model())
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, a)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid announcement id")
		return
	}
	var req announcementRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	a := req.model()
	a.ID = id
	updated, err := h.service.Update(r.Context(), a)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid announcement id")
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) respondErr(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrNotFound) {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "announcement not found")
		return
	}
	if errors.Is(err, ErrNotDismissible) {
		httpx.Problem(w, http.StatusConflict, "Conflict", "announcement cannot be dismissed")
		return
	}
	h.logger.Error("announcements handler", slog.Any("error", err))
	httpx.RespondError(w, err)
}

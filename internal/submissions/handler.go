package submissions

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/google/uuid"

	"github.com/benirage/console/internal/access"
	"github.com/benirage/console/internal/platform/httpx"
	"github.com/benirage/console/internal/shared"
)

// Handler exposes the submission manager and the public intake endpoint.
type Handler struct {
	logger   *slog.Logger
	workflow *Workflow
	access   access.Middleware
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, workflow *Workflow, accessmw access.Middleware) *Handler {
	return &Handler{logger: logger, workflow: workflow, access: accessmw}
}

// MountRoutes registers submission routes. The intake endpoint is public but
// rate limited; everything else requires the manage-forms capability.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(httprate.LimitByIP(10, time.Minute))
		r.Post("/intake/{kind}", h.intake)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.access.Require(access.CapManageForms))
		r.Get("/{kind}", h.list)
		r.Get("/{kind}/counts", h.counts)
		r.Get("/{kind}/{id}", h.get)
		r.Get("/{kind}/{id}/reviews", h.reviews)
		r.Post("/{kind}/{id}/status", h.changeStatus)
		r.Post("/{kind}/status", h.bulkChangeStatus)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.access.Require(access.CapManageForms, access.CapExportData))
		r.Get("/{kind}/export", h.export)
	})
}

type intakeRequest struct {
	Email   string         `json:"email"`
	Payload map[string]any `json:"payload"`
}

func (h *Handler) intake(w http.ResponseWriter, r *http.Request) {
	kind := Kind(chi.URLParam(r, "kind"))
	var req intakeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	sub, err := h.workflow.Submit(r.Context(), kind, req.Email, req.Payload)
	if err != nil {
		if errors.Is(err, ErrInvalidKind) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "unknown form kind")
			return
		}
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "a valid email address is required")
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"id": sub.ID, "status": sub.Status})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	kind := Kind(chi.URLParam(r, "kind"))
	f := filterFromQuery(r)
	subs, total, err := h.workflow.List(r.Context(), access.UserFromContext(r.Context()), kind, f)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"submissions": subs,
		"pagination":  shared.NewPagination(f.Page, f.PerPage, total),
	})
}

func (h *Handler) counts(w http.ResponseWriter, r *http.Request) {
	kind := Kind(chi.URLParam(r, "kind"))
	counts, err := h.workflow.Counts(r.Context(), access.UserFromContext(r.Context()), kind)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"counts": counts})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	kind := Kind(chi.URLParam(r, "kind"))
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid submission id")
		return
	}
	sub, err := h.workflow.Get(r.Context(), access.UserFromContext(r.Context()), kind, id)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sub)
}

type reviewResponse struct {
	ActorID   int64     `json:"actor_id"`
	OldStatus string    `json:"old_status"`
	NewStatus string    `json:"new_status"`
	Note      string    `json:"note,omitempty"`
	At        time.Time `json:"at"`
}

func (h *Handler) reviews(w http.ResponseWriter, r *http.Request) {
	kind := Kind(chi.URLParam(r, "kind"))
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid submission id")
		return
	}
	entries, err := h.workflow.Reviews(r.Context(), access.UserFromContext(r.Context()), kind, id)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	out := make([]reviewResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, reviewResponse{
			ActorID:   e.ActorID,
			OldStatus: e.OldStatus,
			NewStatus: e.NewStatus,
			Note:      e.Note,
			At:        e.At,
		})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"reviews": out})
}

type statusRequest struct {
	Status Status `json:"status"`
	Note   string `json:"note"`
}

func (h *Handler) changeStatus(w http.ResponseWriter, r *http.Request) {
	kind := Kind(chi.URLParam(r, "kind"))
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid submission id")
		return
	}
	var req statusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	sub, err := h.workflow.ChangeStatus(r.Context(), access.UserFromContext(r.Context()), kind, id, req.Status, req.Note)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sub)
}

type bulkStatusRequest struct {
	IDs    []uuid.UUID `json:"ids"`
	Status Status      `json:"status"`
	Note   string      `json:"note"`
}

func (h *Handler) bulkChangeStatus(w http.ResponseWriter, r *http.Request) {
	kind := Kind(chi.URLParam(r, "kind"))
	var req bulkStatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if len(req.IDs) == 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "ids must not be empty")
		return
	}
	result, err := h.workflow.BulkChangeStatus(r.Context(), access.UserFromContext(r.Context()), kind, req.IDs, req.Status, req.Note)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	kind := Kind(chi.URLParam(r, "kind"))
	f := filterFromQuery(r)
	f.Page = 1
	f.PerPage = 10000
	subs, _, err := h.workflow.List(r.Context(), access.UserFromContext(r.Context()), kind, f)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+string(kind)+`_submissions.csv"`)
	if err := WriteCSV(w, subs); err != nil {
		h.logger.Error("write csv export", slog.Any("error", err))
	}
}

func filterFromQuery(r *http.Request) Filter {
	q := r.URL.Query()
	page, perPage := shared.PageParams(r, 20, 100)
	f := Filter{
		Search:  q.Get("search"),
		Status:  Status(q.Get("status")),
		SortBy:  q.Get("sort_by"),
		SortDir: q.Get("sort_dir"),
		Page:    page,
		PerPage: perPage,
	}
	if v := q.Get("from"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			f.From = t
		}
	}
	if v := q.Get("to"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			f.To = t.Add(24*time.Hour - time.Nanosecond)
		}
	}
	return f
}

func (h *Handler) respondErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "submission not found")
	case errors.Is(err, ErrInvalidKind):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "unknown form kind")
	case errors.Is(err, ErrInvalidStatus):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid status value")
	case errors.Is(err, ErrUnauthorized):
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "missing capability: manage_forms")
	default:
		h.logger.Error("submissions handler", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}

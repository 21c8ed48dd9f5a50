package locale

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/benirage/console/internal/platform/httpx"
	"github.com/benirage/console/internal/shared"
)

// Handler reads and switches the UI language for the current session.
type Handler struct {
	logger *slog.Logger
	store  *Store
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, store *Store) *Handler {
	return &Handler{logger: logger, store: store}
}

// MountRoutes registers language routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.current)
	r.Put("/", h.change)
}

func (h *Handler) current(w http.ResponseWriter, r *http.Request) {
	lang := h.store.Get()
	if sess := shared.SessionFromContext(r.Context()); sess != nil && sess.Language() != "" {
		if tag, err := Match(sess.Language()); err == nil {
			lang = tag.String()
		}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"language":  lang,
		"supported": Supported(),
	})
}

type changeRequest struct {
	Language string `json:"language"`
}

func (h *Handler) change(w http.ResponseWriter, r *http.Request) {
	var req changeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	tag, err := Match(req.Language)
	if err != nil {
		if errors.Is(err, ErrUnsupported) {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "unsupported language")
			return
		}
		h.logger.Error("change language", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if err := h.store.Set(tag.String()); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "unsupported language")
		return
	}
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.SetLanguage(tag.String())
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"language": tag.String()})
}

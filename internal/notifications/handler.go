package notifications

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/benirage/console/internal/access"
	"github.com/benirage/console/internal/platform/httpx"
)

// Handler exposes the notification feed for the signed-in user.
type Handler struct {
	logger *slog.Logger
	store  StorePort
	rdb    *redis.Client
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, store StorePort, rdb *redis.Client) *Handler {
	return &Handler{logger: logger, store: store, rdb: rdb}
}

// MountRoutes registers notification routes. All of them operate on the
// session identity; anonymous requests are rejected.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/stream", h.stream)
	r.Post("/{id}/read", h.markRead)
	r.Post("/read-all", h.markAllRead)
	r.Delete("/{id}", h.remove)
}

func (h *Handler) recipient(r *http.Request) (string, bool) {
	user := access.UserFromContext(r.Context())
	if user == nil {
		return "", false
	}
	return user.Email, true
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	recipient, ok := h.recipient(r)
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "sign in required")
		return
	}
	unreadOnly := r.URL.Query().Get("unread") == "true"
	records, err := h.store.List(r.Context(), recipient, unreadOnly, 100)
	if err != nil {
		h.logger.Error("list notifications", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	feed := NewFeed()
	feed.ApplyAll(records)
	httpx.JSON(w, http.StatusOK, map[string]any{
		"notifications": feed.Snapshot(),
		"unread":        feed.Unread(),
	})
}

// stream pushes live notifications for the recipient over SSE. The Redis
// subscription carries every recipient's records; only the caller's are
// forwarded.
func (h *Handler) stream(w http.ResponseWriter, r *http.Request) {
	recipient, ok := h.recipient(r)
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "sign in required")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok || h.rdb == nil {
		httpx.Problem(w, http.StatusNotImplemented, "Not Implemented", "streaming unavailable")
		return
	}
	// The stream outlives the server write timeout.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	sub := h.rdb.Subscribe(r.Context(), Channel)
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := sub.Channel()
	for {
		select {
		case <-r.Context().Done():
			return
		case msg, open := <-ch:
			if !open {
				return
			}
			var n Notification
			if err := json.Unmarshal([]byte(msg.Payload), &n); err != nil || n.Recipient != recipient {
				continue
			}
			fmt.Fprintf(w, "event: notification\ndata: %s\n\n", msg.Payload)
			flusher.Flush()
		}
	}
}

func (h *Handler) markRead(w http.ResponseWriter, r *http.Request) {
	recipient, ok := h.recipient(r)
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "sign in required")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid notification id")
		return
	}
	if err := h.store.MarkRead(r.Context(), recipient, id); err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) markAllRead(w http.ResponseWriter, r *http.Request) {
	recipient, ok := h.recipient(r)
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "sign in required")
		return
	}
	if err := h.store.MarkAllRead(r.Context(), recipient); err != nil {
		h.logger.Error("mark all read", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	recipient, ok := h.recipient(r)
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "sign in required")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid notification id")
		return
	}
	if err := h.store.Delete(r.Context(), recipient, id); err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) respondErr(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrNotFound) {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "notification not found")
		return
	}
	h.logger.Error("notifications handler", slog.Any("error", err))
	httpx.RespondError(w, err)
}

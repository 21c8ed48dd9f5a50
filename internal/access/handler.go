package access

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/benirage/console/internal/platform/httpx"
)

// Handler exposes the caller's resolved role and capability set.
type Handler struct{}

// NewHandler builds a Handler instance.
func NewHandler() *Handler { return &Handler{} }

// MountRoutes registers identity introspection routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.me)
}

type meResponse struct {
	Authenticated bool         `json:"authenticated"`
	Email         string       `json:"email,omitempty"`
	Role          RoleName     `json:"role"`
	Capabilities  Capabilities `json:"capabilities"`
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	resp := meResponse{
		Authenticated: user != nil,
		Role:          ResolveRole(user),
		Capabilities:  FromContext(r.Context()),
	}
	if user != nil {
		resp.Email = user.Email
	}
	httpx.JSON(w, http.StatusOK, resp)
}

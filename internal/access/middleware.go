package access

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/benirage/console/internal/platform/httpx"
	"github.com/benirage/console/internal/shared"
)

type userContextKey struct{}
type capsContextKey struct{}

// UserLoader fetches the identity record backing permission evaluation.
type UserLoader interface {
	LoadUser(ctx context.Context, id int64) (*User, error)
}

// Middleware attaches identity and capabilities to requests and gates routes.
type Middleware struct {
	Loader UserLoader
	Logger *slog.Logger
}

// WithIdentity resolves the session user and stores the evaluated capability
// set in the request context. Anonymous requests proceed with an all-false set.
func (m Middleware) WithIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var user *User
		if sess := shared.SessionFromContext(ctx); sess != nil && sess.User() != "" {
			id, err := strconv.ParseInt(sess.User(), 10, 64)
			if err == nil && m.Loader != nil {
				user, err = m.Loader.LoadUser(ctx, id)
				if err != nil && m.Logger != nil {
					m.Logger.Warn("load identity", slog.Int64("user_id", id), slog.Any("error", err))
				}
			}
		}
		if user != nil {
			ctx = context.WithValue(ctx, userContextKey{}, user)
		}
		ctx = context.WithValue(ctx, capsContextKey{}, ResolveCapabilities(user))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Require rejects requests whose capability set lacks any of the named flags.
func (m Middleware) Require(caps ...Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			granted := FromContext(r.Context())
			for _, c := range caps {
				if !granted.Has(c) {
					if UserFromContext(r.Context()) == nil {
						httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "sign in required")
						return
					}
					httpx.Problem(w, http.StatusForbidden, "Forbidden", "missing capability: "+string(c))
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// FromContext returns the capability set evaluated for the request.
// Absent a set it returns the zero (all-false) record.
func FromContext(ctx context.Context) Capabilities {
	caps, _ := ctx.Value(capsContextKey{}).(Capabilities)
	return caps
}

// UserFromContext returns the identity record, or nil for anonymous requests.
func UserFromContext(ctx context.Context) *User {
	user, _ := ctx.Value(userContextKey{}).(*User)
	return user
}

// ContextWithUser injects an identity for tests and internal calls.
func ContextWithUser(ctx context.Context, user *User) context.Context {
	ctx = context.WithValue(ctx, userContextKey{}, user)
	return context.WithValue(ctx, capsContextKey{}, ResolveCapabilities(user))
}

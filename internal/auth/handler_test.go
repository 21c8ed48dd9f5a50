package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/benirage/console/internal/shared"
)

type fakeRepo struct {
	users    map[string]*User
	sessions map[string]int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: make(map[string]*User), sessions: make(map[string]int64)}
}

func (r *fakeRepo) FindByEmail(ctx context.Context, email string) (*User, error) {
	user, ok := r.users[email]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return user, nil
}

func (r *fakeRepo) CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	r.sessions[id] = userID
	return nil
}

func (r *fakeRepo) DeleteSession(ctx context.Context, id string) error {
	delete(r.sessions, id)
	return nil
}

func setupHandler(t *testing.T) (*Handler, *fakeRepo, *shared.SessionManager) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	sessions := shared.NewSessionManager(client, "console_session", time.Hour, false)
	csrf := shared.NewCSRFManager("test-secret")
	repo := newFakeRepo()

	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	repo.users["admin@benirage.org"] = &User{
		ID:           1,
		Email:        "admin@benirage.org",
		PasswordHash: string(hash),
		IsActive:     true,
	}

	logger := slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), nil))
	return NewHandler(logger, NewService(repo), sessions, csrf), repo, sessions
}

func doLogin(t *testing.T, h *Handler, sessions *shared.SessionManager, email, password string) *httptest.ResponseRecorder {
	t.Helper()

	body, _ := json.Marshal(map[string]string{"email": email, "password": password})
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	sess, err := sessions.Load(req.Context(), req)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))

	rr := httptest.NewRecorder()
	h.login(rr, req)
	return rr
}

func TestLoginSucceedsWithValidCredentials(t *testing.T) {
	h, repo, sessions := setupHandler(t)

	rr := doLogin(t, h, sessions, "admin@benirage.org", "correct-horse")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp struct {
		UserID int64  `json:"user_id"`
		Email  string `json:"email"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.UserID != 1 || resp.Email != "admin@benirage.org" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if len(repo.sessions) != 1 {
		t.Fatalf("expected 1 registered session, got %d", len(repo.sessions))
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	h, repo, sessions := setupHandler(t)

	rr := doLogin(t, h, sessions, "admin@benirage.org", "wrong")
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	if len(repo.sessions) != 0 {
		t.Fatal("no session may be registered on failed login")
	}
}

func TestLoginRejectsUnknownUser(t *testing.T) {
	h, _, sessions := setupHandler(t)

	rr := doLogin(t, h, sessions, "nobody@example.com", "whatever")
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestLoginRejectsInactiveUser(t *testing.T) {
	h, repo, sessions := setupHandler(t)
	repo.users["admin@benirage.org"].IsActive = false

	rr := doLogin(t, h, sessions, "admin@benirage.org", "correct-horse")
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestLogoutRemovesSession(t *testing.T) {
	h, repo, sessions := setupHandler(t)

	login := doLogin(t, h, sessions, "admin@benirage.org", "correct-horse")
	if login.Code != http.StatusOK {
		t.Fatalf("login failed: %d", login.Code)
	}

	var sessID string
	for id := range repo.sessions {
		sessID = id
	}

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	sess, err := sessions.Load(req.Context(), req)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	sess.ID = sessID
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))

	rr := httptest.NewRecorder()
	h.logout(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
	if len(repo.sessions) != 0 {
		t.Fatal("session record must be deleted on logout")
	}
}

func TestCSRFTokenIsStableWithinSession(t *testing.T) {
	h, _, sessions := setupHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/auth/csrf", nil)
	sess, err := sessions.Load(req.Context(), req)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))

	first := httptest.NewRecorder()
	h.csrfToken(first, req)
	second := httptest.NewRecorder()
	h.csrfToken(second, req)

	if first.Code != http.StatusOK || second.Code != http.StatusOK {
		t.Fatalf("expected 200s, got %d and %d", first.Code, second.Code)
	}
	if first.Body.String() != second.Body.String() {
		t.Fatal("token must not rotate within one session")
	}
}

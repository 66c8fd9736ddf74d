package auth_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/meridian-erp/meridian-front/internal/auth"
	"github.com/meridian-erp/meridian-front/internal/erp"
	"github.com/meridian-erp/meridian-front/internal/session"
)

func newHandler(t *testing.T, upstream http.HandlerFunc) *auth.Handler {
	t.Helper()
	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)
	client := erp.NewClient(srv.URL, time.Second, nil)
	return auth.NewHandler(slog.New(slog.DiscardHandler), client)
}

func newRouter(h *auth.Handler) http.Handler {
	r := chi.NewRouter()
	h.MountRoutes(r)
	return r
}

func formRequest(sess *session.Session, path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req.WithContext(session.ContextWith(req.Context(), sess))
}

func TestLoginStoresToken(t *testing.T) {
	h := newHandler(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/login", r.URL.Path)
		_ = json.NewEncoder(w).Encode(erp.Token{AccessToken: "tok456", TokenType: "bearer"})
	})

	sess := &session.Session{ID: "s1"}
	form := url.Values{"username": {"admin"}, "password": {"secret"}}
	rec := httptest.NewRecorder()
	newRouter(h).ServeHTTP(rec, formRequest(sess, "/login", form))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "tok456", sess.Token())
	assert.Equal(t, "admin", sess.User())
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	h := newHandler(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Incorrect username or password"})
	})

	sess := &session.Session{ID: "s1"}
	form := url.Values{"username": {"admin"}, "password": {"wrong"}}
	rec := httptest.NewRecorder()
	newRouter(h).ServeHTTP(rec, formRequest(sess, "/login", form))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, sess.Token())
}

func TestLoginValidatesForm(t *testing.T) {
	h := newHandler(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("upstream must not be called for an empty form")
	})

	rec := httptest.NewRecorder()
	newRouter(h).ServeHTTP(rec, formRequest(&session.Session{ID: "s1"}, "/login", url.Values{}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogoutClearsSession(t *testing.T) {
	h := newHandler(t, func(w http.ResponseWriter, r *http.Request) {})

	sess := &session.Session{ID: "s1"}
	sess.Login("admin", "tok")
	rec := httptest.NewRecorder()
	newRouter(h).ServeHTTP(rec, formRequest(sess, "/logout", url.Values{}))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.False(t, sess.Authenticated())
}

func TestRequireAuthRejectsAnonymous(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run without a token")
	})

	req := httptest.NewRequest(http.MethodGet, "/catalog/products", nil)
	req = req.WithContext(session.ContextWith(req.Context(), &session.Session{ID: "s1"}))
	rec := httptest.NewRecorder()
	auth.RequireAuth(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuthStampsToken(t *testing.T) {
	var got string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = erp.TokenFromContext(r.Context())
	})

	sess := &session.Session{ID: "s1"}
	sess.Login("admin", "tok789")
	req := httptest.NewRequest(http.MethodGet, "/catalog/products", nil)
	req = req.WithContext(session.ContextWith(req.Context(), sess))
	auth.RequireAuth(next).ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "tok789", got)
}

func TestRespondErrorForcesLogoutOnUpstream401(t *testing.T) {
	sess := &session.Session{ID: "s1"}
	sess.Login("admin", "tok")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(session.ContextWith(req.Context(), sess))
	rec := httptest.NewRecorder()
	auth.RespondError(rec, req, erp.ErrUnauthorized)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, sess.Authenticated(), "stored token must be cleared")
}

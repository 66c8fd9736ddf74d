// Package session manages cookie-based browser sessions backed by Redis.
// A session exists to carry exactly one durable fact: the upstream API
// bearer token. Draft order state is deliberately not stored here; drafts
// never survive a reload.
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Manager orchestrates cookie based sessions backed by Redis.
type Manager struct {
	client     *redis.Client
	cookieName string
	ttl        time.Duration
	secure     bool
}

// Session holds per-request session data.
type Session struct {
	ID        string
	token     string
	user      string
	isNew     bool
	dirty     bool
	destroyed bool
}

type payload struct {
	Token string `json:"token"`
	User  string `json:"user"`
}

// NewManager constructs a Manager.
func NewManager(client *redis.Client, cookieName string, ttl time.Duration, secure bool) *Manager {
	return &Manager{
		client:     client,
		cookieName: cookieName,
		ttl:        ttl,
		secure:     secure,
	}
}

// Load loads or creates a session for the request.
func (m *Manager) Load(ctx context.Context, r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return m.newSession(), nil
		}
		return nil, err
	}

	raw, err := m.client.Get(ctx, m.redisKey(cookie.Value)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			sess := m.newSession()
			sess.ID = cookie.Value
			return sess, nil
		}
		return nil, err
	}

	var stored payload
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, err
	}

	return &Session{ID: cookie.Value, token: stored.Token, user: stored.User}, nil
}

// Commit persists the session and writes cookie headers as needed.
func (m *Manager) Commit(ctx context.Context, w http.ResponseWriter, sess *Session) error {
	if sess == nil {
		return nil
	}

	if sess.destroyed {
		if err := m.client.Del(ctx, m.redisKey(sess.ID)).Err(); err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		http.SetCookie(w, &http.Cookie{
			Name:     m.cookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   m.secure,
			SameSite: http.SameSiteStrictMode,
		})
		return nil
	}

	if sess.dirty || sess.isNew {
		data, err := json.Marshal(payload{Token: sess.token, User: sess.user})
		if err != nil {
			return err
		}
		if err := m.client.Set(ctx, m.redisKey(sess.ID), data, m.ttl).Err(); err != nil {
			return err
		}
		sess.dirty = false
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteStrictMode,
		Expires:  time.Now().Add(m.ttl),
	})
	return nil
}

// Destroy marks the session for deletion.
func (m *Manager) Destroy(sess *Session) {
	if sess == nil {
		return
	}
	sess.destroyed = true
}

// TTL exposes the configured session lifetime.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// CookieName returns the cookie identifier used for sessions.
func (m *Manager) CookieName() string {
	return m.cookieName
}

// Login binds an upstream token and username to the session.
func (s *Session) Login(user, token string) {
	s.user = user
	s.token = token
	s.dirty = true
}

// Logout drops the stored token; the session record itself is destroyed
// by the Manager at commit time.
func (s *Session) Logout() {
	s.user = ""
	s.token = ""
	s.dirty = true
}

// Token returns the upstream bearer token, empty when signed out.
func (s *Session) Token() string {
	return s.token
}

// User returns the signed-in username.
func (s *Session) User() string {
	return s.user
}

// Authenticated reports whether an upstream token is present.
func (s *Session) Authenticated() bool {
	return s.token != ""
}

func (m *Manager) newSession() *Session {
	return &Session{ID: generateID(), isNew: true, dirty: true}
}

func (m *Manager) redisKey(id string) string {
	return "session:" + id
}

func generateID() string {
	if id, err := uuid.NewRandom(); err == nil {
		return id.String()
	}
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return base64.RawURLEncoding.EncodeToString([]byte(time.Now().Format(time.RFC3339Nano)))
	}
	return base64.RawURLEncoding.EncodeToString(b)
}

type contextKey struct{}

// ContextWith stores the session in context.
func ContextWith(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, sess)
}

// FromContext extracts the session from context.
func FromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(contextKey{}).(*Session)
	return sess
}

// Package auth proxies the upstream login and manages the token lifecycle
// inside the browser session. Credential verification happens upstream;
// nothing secret is stored here beyond the issued bearer token.
package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/meridian-erp/meridian-front/internal/erp"
	"github.com/meridian-erp/meridian-front/internal/platform/httpx"
	"github.com/meridian-erp/meridian-front/internal/session"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger   *slog.Logger
	client   *erp.Client
	validate *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, client *erp.Client) *Handler {
	return &Handler{
		logger:   logger,
		client:   client,
		validate: validator.New(),
	}
}

// MountRoutes registers auth routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
}

type loginForm struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

type loginResponse struct {
	User string `json:"user"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed form body")
		return
	}

	form := loginForm{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	}
	if err := h.validate.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "username and password are required")
		return
	}

	token, err := h.client.Login(r.Context(), form.Username, form.Password)
	if err != nil {
		if errors.Is(err, erp.ErrUnauthorized) {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid username or password")
			return
		}
		h.logger.Error("upstream login", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	sess := session.FromContext(r.Context())
	if sess == nil {
		h.logger.Error("session missing during login")
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	sess.Login(form.Username, token.AccessToken)

	httpx.JSON(w, http.StatusOK, loginResponse{User: form.Username})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if sess := session.FromContext(r.Context()); sess != nil {
		sess.Logout()
	}
	w.WriteHeader(http.StatusNoContent)
}

// RequireAuth rejects requests without an upstream token and stamps the
// token into the request context for the ERP client.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := session.FromContext(r.Context())
		if sess == nil || !sess.Authenticated() {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "sign in required")
			return
		}
		ctx := erp.ContextWithToken(r.Context(), sess.Token())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RespondError handles the forced-logout rule before delegating to the
// generic error mapping: an upstream 401 invalidates the stored token so
// the browser lands back on the login view.
func RespondError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, erp.ErrUnauthorized) {
		if sess := session.FromContext(r.Context()); sess != nil {
			sess.Logout()
		}
	}
	httpx.RespondError(w, err)
}

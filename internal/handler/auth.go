package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/msomdec/user-dashboard/internal/domain"
	"github.com/msomdec/user-dashboard/internal/service"
	"github.com/msomdec/user-dashboard/internal/view"
)

const authCookieName = "auth_token"

// AuthHandler handles operator sign-in and sign-out.
type AuthHandler struct {
	auth         *service.AuthService
	limiter      *service.RateLimiter
	cookieSecure bool
}

// NewAuthHandler creates a new AuthHandler. limiter throttles login attempts
// per client address.
func NewAuthHandler(auth *service.AuthService, limiter *service.RateLimiter, cookieSecure bool) *AuthHandler {
	return &AuthHandler{auth: auth, limiter: limiter, cookieSecure: cookieSecure}
}

// HandleLoginPage renders the sign-in form.
func (h *AuthHandler) HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	renderLogin(w, r, http.StatusOK, "")
}

// HandleLogin verifies the submitted credentials and sets the session cookie.
// POST /login (form: username, password)
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if !h.limiter.Allow(clientIP(r)) {
		renderLogin(w, r, http.StatusTooManyRequests, "Too many sign-in attempts. Please wait a minute.")
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	token, err := h.auth.Login(r.FormValue("username"), r.FormValue("password"))
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			slog.Warn("failed sign-in", "remote", clientIP(r))
			renderLogin(w, r, http.StatusUnauthorized, "Invalid username or password.")
			return
		}
		slog.Error("sign in", "error", err)
		renderLogin(w, r, http.StatusInternalServerError, "An unexpected error occurred. Please try again.")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(h.auth.SessionTTL().Seconds()),
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleLogout clears the session cookie.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func renderLogin(w http.ResponseWriter, r *http.Request, status int, errMsg string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := view.LoginPage(errMsg).Render(r.Context(), w); err != nil {
		slog.Error("render login", "error", err)
	}
}

package handler

import (
	"net/http"

	"github.com/msomdec/user-dashboard/internal/service"
)

// RegisterRoutes sets up all HTTP routes on the given mux. A nil auth service
// leaves the dashboard open; otherwise every route except /login and /healthz
// requires a session.
func RegisterRoutes(mux *http.ServeMux, users *service.UserService, auth *service.AuthService, limiter *service.RateLimiter, departments []string, cookieSecure bool) {
	health := NewHealthHandler(users)
	dashboard := NewDashboardHandler(users)
	userHandler := NewUserHandler(users, dashboard, departments)
	api := NewAPIHandler(users)

	protect := func(h http.HandlerFunc) http.Handler { return RequireAuth(auth, h) }

	mux.HandleFunc("GET /healthz", health.HandleHealthz)

	if auth != nil {
		authHandler := NewAuthHandler(auth, limiter, cookieSecure)
		mux.HandleFunc("GET /login", authHandler.HandleLoginPage)
		mux.HandleFunc("POST /login", authHandler.HandleLogin)
		mux.HandleFunc("POST /logout", authHandler.HandleLogout)
	}

	// Dashboard page and datastar intents.
	mux.Handle("GET /{$}", RequireAuthPage(auth, http.HandlerFunc(dashboard.HandleDashboard)))
	mux.Handle("GET /users/view", protect(dashboard.HandleView))
	mux.Handle("POST /users/refresh", protect(dashboard.HandleRefresh))
	mux.Handle("GET /users/new", protect(userHandler.HandleNewForm))
	mux.Handle("GET /users/form/close", protect(userHandler.HandleCloseForm))
	mux.Handle("GET /users/{id}/edit", protect(userHandler.HandleEditForm))
	mux.Handle("POST /users", protect(userHandler.HandleCreate))
	mux.Handle("PUT /users/{id}", protect(userHandler.HandleUpdate))
	mux.Handle("DELETE /users/{id}", protect(userHandler.HandleDelete))

	// JSON API.
	mux.Handle("GET /api/users", protect(api.HandleList))
	mux.Handle("POST /api/users", protect(api.HandleCreate))
	mux.Handle("POST /api/users/refresh", protect(api.HandleRefresh))
	mux.Handle("GET /api/users/{id}", protect(api.HandleGet))
	mux.Handle("PUT /api/users/{id}", protect(api.HandleUpdate))
	mux.Handle("DELETE /api/users/{id}", protect(api.HandleDelete))
}

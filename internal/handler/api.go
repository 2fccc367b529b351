package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/msomdec/user-dashboard/internal/domain"
	"github.com/msomdec/user-dashboard/internal/service"
)

// APIHandler exposes the user collection as JSON.
type APIHandler struct {
	users *service.UserService
}

// NewAPIHandler creates a new APIHandler.
func NewAPIHandler(users *service.UserService) *APIHandler {
	return &APIHandler{users: users}
}

// HandleList returns one page of users.
// GET /api/users?search=&department=&page=
// Response: {"users": [...], "page": 1, "totalPages": 2, "total": 15}
// Pages past the end return an empty list; the page is not clamped.
func (h *APIHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	q := domain.Query{
		Search:     params.Get("search"),
		Department: params.Get("department"),
		Page:       1,
	}
	if v := params.Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			writeError(w, http.StatusBadRequest, "page must be a positive integer.")
			return
		}
		q.Page = page
	}

	writeJSON(w, http.StatusOK, toViewDTO(h.users.Query(q), q.Page))
}

// HandleGet returns a single user.
// GET /api/users/{id}
func (h *APIHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	user, err := h.users.GetByID(id)
	if err != nil {
		writeAPIError(w, "get user", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": toUserDTO(user)})
}

// HandleCreate creates a user.
// POST /api/users
// Request:  {"firstName":"...","lastName":"...","email":"...","department":"..."}
// Response: 201 {"user": {...}}
func (h *APIHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req UserFieldsDTO
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	user, err := h.users.Create(r.Context(), req.toDomain())
	if err != nil {
		writeAPIError(w, "create user", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"user": toUserDTO(user)})
}

// HandleUpdate replaces every editable field of a user.
// PUT /api/users/{id}
func (h *APIHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req UserFieldsDTO
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	user, err := h.users.Update(r.Context(), id, req.toDomain())
	if err != nil {
		writeAPIError(w, "update user", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": toUserDTO(user)})
}

// HandleDelete removes a user.
// DELETE /api/users/{id}
// Response: 204 No Content
func (h *APIHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.users.Delete(r.Context(), id); err != nil {
		writeAPIError(w, "delete user", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleRefresh reloads every user from the remote API.
// POST /api/users/refresh
// Response: {"loaded": 10}
func (h *APIHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	n, err := h.users.FetchAll(r.Context())
	if err != nil {
		writeAPIError(w, "reload users", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"loaded": n})
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user id.")
		return 0, false
	}
	return id, true
}

// writeAPIError maps service errors to status codes.
func writeAPIError(w http.ResponseWriter, op string, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":  "Validation failed.",
			"fields": ve.Fields,
		})
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, msgNotFound+".")
	case errors.Is(err, domain.ErrFetch):
		slog.Warn(op, "error", err)
		writeError(w, http.StatusBadGateway, msgLoadFailed+".")
	case errors.Is(err, domain.ErrCreate):
		slog.Warn(op, "error", err)
		writeError(w, http.StatusBadGateway, msgAddFailed+".")
	case errors.Is(err, domain.ErrUpdate):
		slog.Warn(op, "error", err)
		writeError(w, http.StatusBadGateway, msgUpdateFailed+".")
	case errors.Is(err, domain.ErrDelete):
		slog.Warn(op, "error", err)
		writeError(w, http.StatusBadGateway, msgDeleteFailed+".")
	default:
		slog.Error(op, "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred. Please try again.")
	}
}

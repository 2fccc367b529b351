package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	datastar "github.com/starfederation/datastar-go/datastar"

	"github.com/msomdec/user-dashboard/internal/domain"
	"github.com/msomdec/user-dashboard/internal/service"
	"github.com/msomdec/user-dashboard/internal/view"
)

// UserHandler handles the add, edit and delete intents raised by the dashboard.
type UserHandler struct {
	users       *service.UserService
	dashboard   *DashboardHandler
	departments []string
}

// NewUserHandler creates a new UserHandler. departments are the options of
// the form's department dropdown.
func NewUserHandler(users *service.UserService, dashboard *DashboardHandler, departments []string) *UserHandler {
	return &UserHandler{users: users, dashboard: dashboard, departments: departments}
}

// HandleNewForm opens an empty add form.
func (h *UserHandler) HandleNewForm(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)
	h.openForm(sse, 0, domain.UserFields{})
}

// HandleEditForm opens the edit form prefilled with the user's fields.
func (h *UserHandler) HandleEditForm(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	user, err := h.users.GetByID(id)
	sse := datastar.NewSSE(w, r)
	if err != nil {
		patchToast(sse, failureNotification("open edit form", err, msgNotFound))
		return
	}
	h.openForm(sse, user.ID, user.Fields())
}

// HandleCloseForm closes the modal without submitting.
func (h *UserHandler) HandleCloseForm(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)
	closeForm(sse)
}

// HandleCreate submits the add form.
func (h *UserHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var signals dashboardSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	fields := signals.Form.toDomain()
	user, err := h.users.Create(r.Context(), fields)

	sse := datastar.NewSSE(w, r)
	if h.renderValidation(sse, 0, fields, err) {
		return
	}
	if err != nil {
		// The form stays open so the operator can retry.
		patchToast(sse, failureNotification("create user", err, msgAddFailed))
		return
	}

	slog.Info("user created", "id", user.ID)
	closeForm(sse)
	h.dashboard.patchList(r.Context(), sse, signals)
	patchToast(sse, domain.Success(msgAdded))
}

// HandleUpdate submits the edit form.
func (h *UserHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	var signals dashboardSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	fields := signals.Form.toDomain()
	_, err = h.users.Update(r.Context(), id, fields)

	sse := datastar.NewSSE(w, r)
	if h.renderValidation(sse, id, fields, err) {
		return
	}
	if err != nil {
		patchToast(sse, failureNotification("update user", err, msgUpdateFailed))
		return
	}

	slog.Info("user updated", "id", id)
	closeForm(sse)
	h.dashboard.patchList(r.Context(), sse, signals)
	patchToast(sse, domain.Success(msgUpdated))
}

// HandleDelete removes a user.
func (h *UserHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	var signals dashboardSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	err = h.users.Delete(r.Context(), id)

	sse := datastar.NewSSE(w, r)
	if err != nil {
		patchToast(sse, failureNotification("delete user", err, msgDeleteFailed))
		return
	}

	slog.Info("user deleted", "id", id)
	h.dashboard.patchList(r.Context(), sse, signals)
	patchToast(sse, domain.Success(msgDeleted))
}

func (h *UserHandler) openForm(sse *datastar.ServerSentEventGenerator, id int64, fields domain.UserFields) {
	if err := sse.MarshalAndPatchSignals(map[string]any{"form": fromUserFields(fields)}); err != nil {
		slog.Error("patch form signals", "error", err)
		return
	}
	h.patchForm(sse, view.FormData{EditID: id, Fields: fields, Departments: h.departments})
}

// renderValidation re-renders the form with field errors and reports whether
// err was a validation failure.
func (h *UserHandler) renderValidation(sse *datastar.ServerSentEventGenerator, id int64, fields domain.UserFields, err error) bool {
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		return false
	}
	h.patchForm(sse, view.FormData{EditID: id, Fields: fields, Errors: ve.Fields, Departments: h.departments})
	return true
}

func (h *UserHandler) patchForm(sse *datastar.ServerSentEventGenerator, data view.FormData) {
	if err := sse.PatchElementTempl(view.UserForm(data)); err != nil {
		slog.Error("patch user form", "error", err)
	}
}

func closeForm(sse *datastar.ServerSentEventGenerator) {
	if err := sse.PatchElementTempl(view.ClosedUserForm()); err != nil {
		slog.Error("close user form", "error", err)
	}
}

package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	datastar "github.com/starfederation/datastar-go/datastar"

	"github.com/msomdec/user-dashboard/internal/domain"
	"github.com/msomdec/user-dashboard/internal/service"
	"github.com/msomdec/user-dashboard/internal/view"
)

// DashboardHandler renders the dashboard and answers query changes.
type DashboardHandler struct {
	users *service.UserService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(users *service.UserService) *DashboardHandler {
	return &DashboardHandler{users: users}
}

// HandleDashboard renders the full page. The initial query comes from the
// search, department and page URL parameters.
func (h *DashboardHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	q := domain.Query{
		Search:     params.Get("search"),
		Department: params.Get("department"),
		Page:       1,
	}
	if v := params.Get("page"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			q.Page = parsed
		}
	}

	list := h.listData(q)
	if err := view.DashboardPage(view.DashboardData{
		Operator: OperatorFromContext(r.Context()),
		List:     list,
	}).Render(r.Context(), w); err != nil {
		slog.Error("render dashboard", "error", err)
	}
}

// HandleView re-renders the user list for the query held in the page signals.
// If the page no longer exists after a search or filter change it is clamped
// and the corrected page is sent back.
func (h *DashboardHandler) HandleView(w http.ResponseWriter, r *http.Request) {
	var signals dashboardSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	sse := datastar.NewSSE(w, r)
	h.patchList(r.Context(), sse, signals)
}

// HandleRefresh reloads every user from the remote API.
func (h *DashboardHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var signals dashboardSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	note := domain.Success(msgReloaded)
	if n, err := h.users.FetchAll(r.Context()); err != nil {
		note = failureNotification("reload users", err, msgLoadFailed)
	} else {
		slog.Info("users reloaded", "count", n)
	}

	sse := datastar.NewSSE(w, r)
	h.patchList(r.Context(), sse, signals)
	patchToast(sse, note)
}

// listData computes the list model for q, clamping the page into range.
func (h *DashboardHandler) listData(q domain.Query) view.ListData {
	v := h.users.Query(q)
	if clamped := service.ClampPage(q.Page, v.TotalPages); clamped != q.Page {
		q.Page = clamped
		v = h.users.Query(q)
	}

	data := view.ListData{
		View:        v,
		Query:       q,
		Departments: h.users.Departments(),
	}
	if h.users.LoadError() != nil {
		data.LoadError = msgLoadFailed
	}
	return data
}

// patchList sends the user list fragment and, when clamping moved it, the page signal.
func (h *DashboardHandler) patchList(ctx context.Context, sse *datastar.ServerSentEventGenerator, signals dashboardSignals) {
	q := signals.query()
	data := h.listData(q)

	if data.Query.Page != signals.Page {
		if err := sse.MarshalAndPatchSignals(map[string]any{"page": data.Query.Page}); err != nil {
			slog.Error("patch page signal", "error", err)
			return
		}
	}
	if err := sse.PatchElementTempl(view.UserList(data)); err != nil {
		slog.Error("patch user list", "error", err)
	}
}

func patchToast(sse *datastar.ServerSentEventGenerator, n domain.Notification) {
	if err := sse.PatchElementTempl(view.Toast(n)); err != nil {
		slog.Error("patch toast", "error", err)
	}
}

// Package view renders the dashboard HTML. Components are written in .templ
// files; run `templ generate` after editing them.
package view

import (
	"encoding/json"
	"slices"
	"strconv"

	"github.com/msomdec/user-dashboard/internal/domain"
)

// ListData is everything the user list fragment needs.
type ListData struct {
	View        domain.View
	Query       domain.Query
	Departments []string // distinct departments present in the store
	LoadError   string
}

// DashboardData is the full dashboard page model.
type DashboardData struct {
	Operator string
	List     ListData
}

// FormData is the model of the add/edit modal.
type FormData struct {
	EditID      int64 // zero when adding
	Fields      domain.UserFields
	Errors      map[string]string
	Departments []string
}

func (f FormData) title() string {
	if f.EditID != 0 {
		return "Edit User"
	}
	return "Add New User"
}

func (f FormData) submitLabel() string {
	if f.EditID != 0 {
		return "Update User"
	}
	return "Add User"
}

func (f FormData) action() string {
	if f.EditID != 0 {
		return "@put('/users/" + idStr(f.EditID) + "')"
	}
	return "@post('/users')"
}

// initialSignals seeds the browser-side query state from the server-side query.
func initialSignals(q domain.Query) string {
	data, _ := json.Marshal(map[string]any{
		"search":     q.Search,
		"department": q.Department,
		"page":       q.Page,
		"form":       map[string]string{"firstName": "", "lastName": "", "email": "", "department": ""},
	})
	return string(data)
}

// departmentOptions lists the filter choices. An active filter naming a
// department no user has is still offered so the select shows it.
func departmentOptions(d ListData) []string {
	if d.Query.Department == "" || slices.Contains(d.Departments, d.Query.Department) {
		return d.Departments
	}
	opts := append(slices.Clone(d.Departments), d.Query.Department)
	slices.Sort(opts)
	return opts
}

func pageAction(n int) string {
	return "$page = " + itoa(n) + "; @get('/users/view')"
}

func editAction(id int64) string {
	return "@get('/users/" + idStr(id) + "/edit')"
}

func deleteAction(id int64) string {
	return "confirm('Delete this user?') && @delete('/users/" + idStr(id) + "')"
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

func idStr(id int64) string {
	return strconv.FormatInt(id, 10)
}

package service

import (
	"slices"
	"strings"

	"github.com/msomdec/user-dashboard/internal/domain"
)

// ApplyQuery derives the visible page of users from the full collection.
//
// A user is kept when the trimmed, case-insensitive search term is a substring
// of its first name, last name or email, and the department filter is empty or
// equals its department exactly. The kept users are then cut into pages of
// pageSize, preserving order. Pages past the end yield an empty slice; clamping
// is left to the caller.
func ApplyQuery(users []domain.User, q domain.Query, pageSize int) domain.View {
	if pageSize < 1 {
		pageSize = domain.DefaultPageSize
	}

	term := strings.ToLower(strings.TrimSpace(q.Search))

	filtered := make([]domain.User, 0, len(users))
	for _, u := range users {
		if q.Department != "" && u.Department != q.Department {
			continue
		}
		if term != "" && !matchesSearch(u, term) {
			continue
		}
		filtered = append(filtered, u)
	}

	view := domain.View{
		Users:      []domain.User{},
		Total:      len(filtered),
		TotalPages: (len(filtered) + pageSize - 1) / pageSize,
	}

	// Checked against the page count so a huge page cannot overflow start.
	if q.Page < 1 || q.Page > view.TotalPages {
		return view
	}
	start := (q.Page - 1) * pageSize
	end := min(start+pageSize, len(filtered))
	view.Users = filtered[start:end]
	return view
}

// matchesSearch expects term to be lowercased already.
func matchesSearch(u domain.User, term string) bool {
	return strings.Contains(strings.ToLower(u.FirstName), term) ||
		strings.Contains(strings.ToLower(u.LastName), term) ||
		strings.Contains(strings.ToLower(u.Email), term)
}

// ClampPage keeps page within [1, totalPages]. With no pages it returns 1.
func ClampPage(page, totalPages int) int {
	if page > totalPages {
		page = totalPages
	}
	return max(page, 1)
}

// Departments returns the distinct departments of users, sorted.
func Departments(users []domain.User) []string {
	var depts []string
	for _, u := range users {
		if u.Department != "" {
			depts = append(depts, u.Department)
		}
	}
	slices.Sort(depts)
	return slices.Compact(depts)
}

package service

import (
	"strings"

	"github.com/msomdec/user-dashboard/internal/domain"
)

// DefaultDepartments are the department labels offered by the dashboard.
var DefaultDepartments = []string{"HR", "Engineering", "Sales", "Marketing"}

// RemoteMapper converts users from the remote API into dashboard records.
//
// The remote source has no department and its ids are not trusted for
// uniqueness, so records get sequential ids starting at 1 in response order,
// and departments are assigned round-robin over Departments by position.
// The same response always maps to the same records.
type RemoteMapper struct {
	Departments []string
}

// Map converts remote users in order.
func (m RemoteMapper) Map(remote []domain.RemoteUser) []domain.User {
	depts := m.Departments
	if len(depts) == 0 {
		depts = DefaultDepartments
	}

	users := make([]domain.User, len(remote))
	for i, r := range remote {
		first, last := splitName(r.Name)
		users[i] = domain.User{
			ID:         int64(i + 1),
			FirstName:  first,
			LastName:   last,
			Email:      r.Email,
			Department: depts[i%len(depts)],
		}
	}
	return users
}

// splitName takes the first two whitespace-separated words of name as the
// first and last name. Anything after the second word is dropped.
func splitName(name string) (first, last string) {
	parts := strings.Fields(name)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], parts[1]
	}
}

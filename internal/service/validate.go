package service

import (
	"regexp"
	"strings"

	"github.com/msomdec/user-dashboard/internal/domain"
)

// emailPattern is local@domain.tld where no part holds "@" or whitespace.
// RE2's \s is ASCII-only, so Unicode space separators are excluded explicitly.
var emailPattern = regexp.MustCompile(`^[^\s\x0B\p{Z}\x{FEFF}@]+@[^\s\x0B\p{Z}\x{FEFF}@]+\.[^\s\x0B\p{Z}\x{FEFF}@]+$`)

// ValidateUserFields checks the form fields before anything is sent upstream.
// It returns a *domain.ValidationError listing every failing field, or nil.
func ValidateUserFields(f domain.UserFields) error {
	fields := make(map[string]string)

	if strings.TrimSpace(f.FirstName) == "" {
		fields["firstName"] = "First name is required"
	}
	if strings.TrimSpace(f.LastName) == "" {
		fields["lastName"] = "Last name is required"
	}
	if strings.TrimSpace(f.Email) == "" {
		fields["email"] = "Email is required"
	} else if !emailPattern.MatchString(f.Email) {
		fields["email"] = "Invalid email format"
	}
	if strings.TrimSpace(f.Department) == "" {
		fields["department"] = "Department is required"
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

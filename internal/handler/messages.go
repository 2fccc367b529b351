package handler

import (
	"errors"
	"log/slog"

	"github.com/msomdec/user-dashboard/internal/domain"
)

const (
	msgLoadFailed   = "Failed to load users"
	msgReloaded     = "Users reloaded"
	msgAdded        = "User added successfully"
	msgAddFailed    = "Failed to add user"
	msgUpdated      = "User updated successfully"
	msgUpdateFailed = "Failed to update user"
	msgDeleted      = "User deleted successfully"
	msgDeleteFailed = "Failed to delete user"
	msgNotFound     = "User not found"
)

// failureNotification turns a gateway error into the message shown to the
// operator. Unexpected errors are logged; remote failures are logged at warn.
func failureNotification(op string, err error, fallback string) domain.Notification {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return domain.Failure(msgNotFound)
	case errors.Is(err, domain.ErrFetch),
		errors.Is(err, domain.ErrCreate),
		errors.Is(err, domain.ErrUpdate),
		errors.Is(err, domain.ErrDelete):
		slog.Warn(op, "error", err)
	default:
		slog.Error(op, "error", err)
	}
	return domain.Failure(fallback)
}

package domain

// NotificationKind classifies a notification for display.
type NotificationKind string

const (
	NotificationSuccess NotificationKind = "success"
	NotificationError   NotificationKind = "error"
)

// Notification is a short message shown to the operator after an intent completes.
type Notification struct {
	Message string
	Kind    NotificationKind
}

// Success returns a success notification with the given message.
func Success(message string) Notification {
	return Notification{Message: message, Kind: NotificationSuccess}
}

// Failure returns an error notification with the given message.
func Failure(message string) Notification {
	return Notification{Message: message, Kind: NotificationError}
}

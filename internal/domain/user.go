package domain

import "context"

// User is a single record shown in the dashboard table.
type User struct {
	ID         int64
	FirstName  string
	LastName   string
	Email      string
	Department string
}

// UserFields holds the editable fields of a user. Updates replace all of them.
type UserFields struct {
	FirstName  string
	LastName   string
	Email      string
	Department string
}

// Fields returns the editable fields of u.
func (u User) Fields() UserFields {
	return UserFields{
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Email:      u.Email,
		Department: u.Department,
	}
}

// UserStore is the authoritative in-memory collection of users.
// Records are kept in insertion order and IDs are unique.
type UserStore interface {
	Add(user User) error
	Replace(id int64, fields UserFields) (User, error)
	Remove(id int64) error
	Get(id int64) (User, error)
	All() []User
	// Reset swaps the whole collection in one step. It is used after a
	// successful reload from the remote API.
	Reset(users []User) error
	MaxID() int64
}

// RemoteUser is the shape of a user as served by the remote API.
// Only the fields the dashboard consumes are decoded.
type RemoteUser struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UserAPI is the remote REST collaborator that owns the user records.
type UserAPI interface {
	ListUsers(ctx context.Context) ([]RemoteUser, error)
	CreateUser(ctx context.Context, fields UserFields) error
	UpdateUser(ctx context.Context, id int64, fields UserFields) error
	DeleteUser(ctx context.Context, id int64) error
}

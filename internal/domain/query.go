package domain

// DefaultPageSize is the number of users shown per page when none is configured.
const DefaultPageSize = 10

// Query is the search, filter and page selection driving the visible slice.
// It is owned by the presentation layer and rebuilt on every request.
type Query struct {
	Search     string
	Department string // empty means all departments
	Page       int    // 1-based
}

// View is the derived, read-only slice of users to render.
type View struct {
	Users      []User
	TotalPages int
	Total      int // number of users matching the search and filter
}

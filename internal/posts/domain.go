package posts

import "time"

// Post is an authored article. AuthorID is set at creation and never
// reassigned; ownership checks key off it.
type Post struct {
	ID         int64
	Title      string
	Content    string
	Published  bool
	AuthorID   int64
	CategoryID *int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// PostChanges carries the mutable fields of a post. Nil fields are left
// untouched.
type PostChanges struct {
	Title      *string
	Content    *string
	Published  *bool
	CategoryID *int64
}

package keywords

import "time"

// Keyword tags posts for search and discovery.
type Keyword struct {
	ID        int64
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

package domain

import "time"

// Session groups a user's in-progress quoting interaction before a
// membership exists. Rows are never mutated after creation; staleness is
// decided at read time.
type Session struct {
	ID        string
	CreatedAt time.Time
}

package domain

import "time"

// Quote is an immutable snapshot of a prospective membership's cost
// breakdown. Repricing inserts a new row, never updates an existing one.
// All amounts are integers in minor currency units.
type Quote struct {
	ID                   string
	MembershipID         string
	BasePrice            int64
	MedicalLoadingPrice  int64
	CoverageLoadingPrice int64
	DiscountAmount       int64
	TotalPrice           int64
	Currency             string
	DocumentSent         bool
	CreatedAt            time.Time
}

package domain

import "time"

type ReferralCode struct {
	ID              string
	Code            string
	DiscountPercent int
	Active          bool
	CreatedAt       time.Time
}

type ExchangeRate struct {
	Currency  string
	Rate      float64
	UpdatedAt time.Time
}

// CountryBasePrice overrides the fixed base-price table for residents of a
// specific country. Amount is minor currency units.
type CountryBasePrice struct {
	CountryID string
	Amount    int64
}

// Customer maps an application user (by email) to the payment provider's
// customer id.
type Customer struct {
	ID               int64
	Email            string
	StripeCustomerID string
	CreatedAt        time.Time
}

type Product struct {
	ID     string
	Name   string
	Active bool
}

type Price struct {
	ID         string
	ProductID  string
	Currency   string
	UnitAmount int64
	Active     bool
}

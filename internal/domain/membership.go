package domain

import "time"

type MembershipStatus string

const (
	MembershipStatusDraft  MembershipStatus = "DRAFT"
	MembershipStatusPaid   MembershipStatus = "PAID"
	MembershipStatusActive MembershipStatus = "ACTIVE"
	MembershipStatusSent   MembershipStatus = "SENT"
)

type MembershipType string

const (
	MembershipTypeIndividual MembershipType = "INDIVIDUAL"
	MembershipTypeCouple     MembershipType = "COUPLE"
	MembershipTypeFamily     MembershipType = "FAMILY"
)

// MaxMembers bounds the member list per membership type. Zero means the
// type is unknown.
func (t MembershipType) MaxMembers() int {
	switch t {
	case MembershipTypeIndividual:
		return 1
	case MembershipTypeCouple:
		return 2
	case MembershipTypeFamily:
		return 15
	}
	return 0
}

type CoverageType string

const (
	CoverageTypeEurope        CoverageType = "EUROPE"
	CoverageTypeWorldwide     CoverageType = "WORLDWIDE"
	CoverageTypeWorldwidePlus CoverageType = "WORLDWIDE_PLUS"
)

type DurationType string

const (
	DurationTypeSingleTrip DurationType = "SINGLE_TRIP"
	DurationTypeAnnual     DurationType = "ANNUAL"
	DurationTypeExpat      DurationType = "EXPAT"
)

type Membership struct {
	ID             string
	SessionID      string
	MembershipType MembershipType
	CoverageType   CoverageType
	DurationType   DurationType
	Status         MembershipStatus
	FollowupSent   bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Member struct {
	ID                 string
	MembershipID       string
	Salutation         string
	FirstName          string
	LastName           string
	DateOfBirth        string
	Gender             string
	Nationality        string
	CountryCode        string
	ContactNumber      string
	Email              string
	CountryOfResidence string
	Address            string
	IsPrimary          bool
	HasPreexisting     bool
	HighRiskExposure   bool
}

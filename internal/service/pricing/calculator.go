package pricing

import (
	"fmt"
	"math"
	"strings"

	"github.com/coverwing/membership/internal/domain"
	"github.com/google/uuid"
)

// basePrices is the fixed lookup keyed by coverage type then membership
// type, in minor currency units. Country overrides replace the looked-up
// value, they never stack on it.
var basePrices = map[domain.CoverageType]map[domain.MembershipType]int64{
	domain.CoverageTypeEurope: {
		domain.MembershipTypeIndividual: 1000,
		domain.MembershipTypeCouple:     1800,
		domain.MembershipTypeFamily:     2200,
	},
	domain.CoverageTypeWorldwide: {
		domain.MembershipTypeIndividual: 1200,
		domain.MembershipTypeCouple:     2100,
		domain.MembershipTypeFamily:     2500,
	},
	domain.CoverageTypeWorldwidePlus: {
		domain.MembershipTypeIndividual: 1500,
		domain.MembershipTypeCouple:     2600,
		domain.MembershipTypeFamily:     3200,
	},
}

var currencySymbols = map[string]string{
	"GBP": "£",
	"USD": "$",
	"EUR": "€",
	"AUD": "A$",
	"CAD": "C$",
}

// LoadingRates is the externally supplied loading policy. Zero values mean
// no loading of that kind is applied.
type LoadingRates struct {
	MedicalPerHead    int64
	ByDuration        map[domain.DurationType]int64
	HighRiskSurcharge int64
}

type Input struct {
	MembershipType    domain.MembershipType
	CoverageType      domain.CoverageType
	DurationType      domain.DurationType
	Members           []domain.Member
	CountryBasePrices map[string]int64
	Referral          *domain.ReferralCode
	Currency          string
}

type Breakdown struct {
	BasePrice            int64
	MedicalLoadingPrice  int64
	CoverageLoadingPrice int64
	DiscountAmount       int64
	TotalPrice           int64
	Currency             string
	Symbol               string
}

// Calculate validates the member list and prices the plan. It is pure: all
// external data (country overrides, loading rates, referral record) comes in
// through the arguments.
func Calculate(in Input, rates LoadingRates) (*Breakdown, error) {
	if err := validateMembers(in.MembershipType, in.Members); err != nil {
		return nil, err
	}

	base, err := basePrice(in)
	if err != nil {
		return nil, err
	}

	var medical int64
	for _, m := range in.Members {
		if m.HasPreexisting {
			medical += rates.MedicalPerHead
		}
	}

	coverage := rates.ByDuration[in.DurationType]
	for _, m := range in.Members {
		if m.HighRiskExposure {
			coverage += rates.HighRiskSurcharge
			break
		}
	}

	subtotal := base + medical + coverage
	var discount int64
	if in.Referral != nil && in.Referral.Active {
		discount = int64(math.Round(float64(subtotal) * float64(in.Referral.DiscountPercent) / 100))
	}

	total := subtotal - discount
	if total < 0 {
		total = 0
	}

	return &Breakdown{
		BasePrice:            base,
		MedicalLoadingPrice:  medical,
		CoverageLoadingPrice: coverage,
		DiscountAmount:       discount,
		TotalPrice:           total,
		Currency:             in.Currency,
		Symbol:               CurrencySymbol(in.Currency),
	}, nil
}

// CurrencySymbol resolves a display symbol for a currency code, falling
// back to "$" for unknown codes.
func CurrencySymbol(code string) string {
	if s, ok := currencySymbols[code]; ok {
		return s
	}
	return "$"
}

func basePrice(in Input) (int64, error) {
	byMembership, ok := basePrices[in.CoverageType]
	if !ok {
		return 0, domain.NewValidationError("coverage_type", fmt.Sprintf("unknown coverage type %q", in.CoverageType))
	}
	base, ok := byMembership[in.MembershipType]
	if !ok {
		return 0, domain.NewValidationError("membership_type", fmt.Sprintf("unknown membership type %q", in.MembershipType))
	}

	if primary := primaryMember(in.Members); primary != nil {
		if override, ok := in.CountryBasePrices[primary.CountryOfResidence]; ok {
			base = override
		}
	}
	return base, nil
}

func primaryMember(members []domain.Member) *domain.Member {
	for i := range members {
		if members[i].IsPrimary {
			return &members[i]
		}
	}
	return nil
}

func validateMembers(mt domain.MembershipType, members []domain.Member) error {
	max := mt.MaxMembers()
	if max == 0 {
		return domain.NewValidationError("membership_type", fmt.Sprintf("unknown membership type %q", mt))
	}
	if len(members) == 0 {
		return domain.NewValidationError("members", "at least one member is required")
	}
	if len(members) > max {
		return domain.NewValidationError("members", fmt.Sprintf("%s membership allows at most %d members", strings.ToLower(string(mt)), max))
	}

	primaries := 0
	for i, m := range members {
		if m.IsPrimary {
			primaries++
		}
		if err := validateMember(i, m); err != nil {
			return err
		}
	}
	if primaries != 1 {
		return domain.NewValidationError("members", "exactly one member must be primary")
	}
	return nil
}

func validateMember(i int, m domain.Member) error {
	required := []struct {
		field string
		value string
	}{
		{"salutation", m.Salutation},
		{"first_name", m.FirstName},
		{"last_name", m.LastName},
		{"date_of_birth", m.DateOfBirth},
		{"gender", m.Gender},
		{"nationality", m.Nationality},
		{"country_code", m.CountryCode},
		{"contact_number", m.ContactNumber},
		{"email", m.Email},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return domain.NewValidationError(fmt.Sprintf("members[%d].%s", i, f.field), "is required")
		}
	}

	if _, err := uuid.Parse(m.CountryOfResidence); err != nil {
		return domain.NewValidationError(fmt.Sprintf("members[%d].country_of_residence", i), "must be a country id")
	}
	if len(m.Address) < 10 || !strings.Contains(m.Address, " ") {
		return domain.NewValidationError(fmt.Sprintf("members[%d].address", i), "must be at least 10 characters and contain a space")
	}
	return nil
}

package quote

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/coverwing/membership/internal/domain"
	"github.com/coverwing/membership/internal/kafka"
	"github.com/coverwing/membership/internal/repository"
	"github.com/coverwing/membership/internal/service/pricing"
	"github.com/google/uuid"
)

type QuoteUseCase interface {
	CreateSession(ctx context.Context) (*domain.Session, error)
	GetSession(ctx context.Context, id string) (*domain.Session, error)
	CreateQuote(ctx context.Context, input CreateQuoteInput) (*domain.Quote, error)
	GetQuote(ctx context.Context, id string) (*domain.Quote, error)
	CheckReferralCode(ctx context.Context, code string) (*domain.ReferralCode, error)
	FollowUpStaleDrafts(ctx context.Context) ([]domain.Membership, error)
}

type Cache interface {
	GetCountryBasePrices(ctx context.Context) (map[string]int64, error)
	SetCountryBasePrices(ctx context.Context, prices map[string]int64) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type QuoteService struct {
	sessions           repository.SessionRepository
	memberships        repository.MembershipRepository
	quotes             repository.QuoteRepository
	referrals          repository.ReferralRepository
	rates              repository.RateRepository
	cache              Cache
	producer           Producer
	membershipTopic    string
	notificationsTopic string
	sessionMaxAge      time.Duration
	staleAfter         time.Duration
	loading            pricing.LoadingRates
	currency           string
}

type CreateQuoteInput struct {
	SessionID      string                `json:"session_id"`
	MembershipType domain.MembershipType `json:"membership_type"`
	CoverageType   domain.CoverageType   `json:"coverage_type"`
	DurationType   domain.DurationType   `json:"duration_type"`
	Members        []MemberInput         `json:"members"`
	ReferralCode   string                `json:"referral_code"`
}

type MemberInput struct {
	Salutation         string `json:"salutation"`
	FirstName          string `json:"first_name"`
	LastName           string `json:"last_name"`
	DateOfBirth        string `json:"date_of_birth"`
	Gender             string `json:"gender"`
	Nationality        string `json:"nationality"`
	CountryCode        string `json:"country_code"`
	ContactNumber      string `json:"contact_number"`
	Email              string `json:"email"`
	CountryOfResidence string `json:"country_of_residence"`
	Address            string `json:"address"`
	IsPrimary          bool   `json:"is_primary"`
	HasPreexisting     bool   `json:"has_preexisting"`
	HighRiskExposure   bool   `json:"high_risk_exposure"`
}

func (in MemberInput) toDomain() domain.Member {
	return domain.Member{
		ID:                 uuid.NewString(),
		Salutation:         in.Salutation,
		FirstName:          in.FirstName,
		LastName:           in.LastName,
		DateOfBirth:        in.DateOfBirth,
		Gender:             in.Gender,
		Nationality:        in.Nationality,
		CountryCode:        in.CountryCode,
		ContactNumber:      in.ContactNumber,
		Email:              in.Email,
		CountryOfResidence: in.CountryOfResidence,
		Address:            in.Address,
		IsPrimary:          in.IsPrimary,
		HasPreexisting:     in.HasPreexisting,
		HighRiskExposure:   in.HighRiskExposure,
	}
}

type QuoteServiceOption func(*QuoteService)

func WithNotificationsTopic(topic string) QuoteServiceOption {
	return func(s *QuoteService) {
		s.notificationsTopic = topic
	}
}

func WithLoadingRates(rates pricing.LoadingRates) QuoteServiceOption {
	return func(s *QuoteService) {
		s.loading = rates
	}
}

func WithCurrency(currency string) QuoteServiceOption {
	return func(s *QuoteService) {
		s.currency = currency
	}
}

func NewQuoteService(
	sessions repository.SessionRepository,
	memberships repository.MembershipRepository,
	quotes repository.QuoteRepository,
	referrals repository.ReferralRepository,
	rates repository.RateRepository,
	cache Cache,
	producer Producer,
	membershipTopic string,
	sessionMaxAge, staleAfter time.Duration,
	opts ...QuoteServiceOption,
) *QuoteService {
	service := &QuoteService{
		sessions:        sessions,
		memberships:     memberships,
		quotes:          quotes,
		referrals:       referrals,
		rates:           rates,
		cache:           cache,
		producer:        producer,
		membershipTopic: membershipTopic,
		sessionMaxAge:   sessionMaxAge,
		staleAfter:      staleAfter,
		currency:        "GBP",
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *QuoteService) CreateSession(ctx context.Context) (*domain.Session, error) {
	session := &domain.Session{ID: uuid.NewString()}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// GetSession fails closed: an absent row, a session older than the max age,
// or a session that already produced a non-draft membership all come back as
// ErrNoSession. Callers must reset local state and create a fresh session.
func (s *QuoteService) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	taken, err := s.memberships.HasNonDraftForSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.ErrNoSession
	}

	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNoSession
		}
		return nil, err
	}
	if time.Since(session.CreatedAt) >= s.sessionMaxAge {
		return nil, domain.ErrNoSession
	}
	return session, nil
}

func (s *QuoteService) CreateQuote(ctx context.Context, input CreateQuoteInput) (*domain.Quote, error) {
	if _, err := s.GetSession(ctx, input.SessionID); err != nil {
		return nil, err
	}

	overrides, err := s.countryBasePrices(ctx)
	if err != nil {
		return nil, err
	}

	var referral *domain.ReferralCode
	if input.ReferralCode != "" {
		referral, err = s.referrals.GetActiveByCode(ctx, input.ReferralCode)
		if err != nil {
			return nil, err
		}
	}

	members := make([]domain.Member, len(input.Members))
	for i, m := range input.Members {
		members[i] = m.toDomain()
	}

	breakdown, err := pricing.Calculate(pricing.Input{
		MembershipType:    input.MembershipType,
		CoverageType:      input.CoverageType,
		DurationType:      input.DurationType,
		Members:           members,
		CountryBasePrices: overrides,
		Referral:          referral,
		Currency:          s.currency,
	}, s.loading)
	if err != nil {
		return nil, err
	}

	membership := &domain.Membership{
		ID:             uuid.NewString(),
		SessionID:      input.SessionID,
		MembershipType: input.MembershipType,
		CoverageType:   input.CoverageType,
		DurationType:   input.DurationType,
	}
	if err := s.memberships.CreateDraft(ctx, membership, members); err != nil {
		return nil, err
	}

	quote := &domain.Quote{
		ID:                   uuid.NewString(),
		MembershipID:         membership.ID,
		BasePrice:            breakdown.BasePrice,
		MedicalLoadingPrice:  breakdown.MedicalLoadingPrice,
		CoverageLoadingPrice: breakdown.CoverageLoadingPrice,
		DiscountAmount:       breakdown.DiscountAmount,
		TotalPrice:           breakdown.TotalPrice,
		Currency:             breakdown.Currency,
	}
	if err := s.quotes.Create(ctx, quote); err != nil {
		return nil, err
	}

	if err := s.publish(ctx, "quote_created", membership, quote, ""); err != nil {
		log.Printf("WARNING: failed to publish quote_created event for quote %s: %v", quote.ID, err)
	}
	return quote, nil
}

func (s *QuoteService) GetQuote(ctx context.Context, id string) (*domain.Quote, error) {
	return s.quotes.GetByID(ctx, id)
}

// CheckReferralCode returns nil for unknown and inactive codes alike; the
// distinction is an admin concern, not a quoting one.
func (s *QuoteService) CheckReferralCode(ctx context.Context, code string) (*domain.ReferralCode, error) {
	return s.referrals.GetActiveByCode(ctx, code)
}

// FollowUpStaleDrafts flags drafts idle past the configured window and
// publishes one reminder event per membership. The repository update is the
// at-most-once guard, so publish failures here only cost the reminder, never
// a duplicate.
func (s *QuoteService) FollowUpStaleDrafts(ctx context.Context) ([]domain.Membership, error) {
	cutoff := time.Now().Add(-s.staleAfter)
	stale, err := s.memberships.FlagStaleDrafts(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	for _, m := range stale {
		primary, err := s.memberships.GetPrimaryMember(ctx, m.ID)
		if err != nil {
			log.Printf("followup: no primary member for membership %s: %v", m.ID, err)
			continue
		}
		event := kafka.MembershipEvent{
			Type:         "membership_followup",
			MembershipID: m.ID,
			Email:        primary.Email,
			Name:         primary.FirstName,
			Status:       string(m.Status),
			OccurredAt:   time.Now(),
		}
		if s.producer != nil && s.notificationsTopic != "" {
			if err := s.producer.Publish(ctx, s.notificationsTopic, m.ID, event); err != nil {
				log.Printf("followup: publish reminder for membership %s: %v", m.ID, err)
			}
		}
	}
	return stale, nil
}

func (s *QuoteService) countryBasePrices(ctx context.Context) (map[string]int64, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetCountryBasePrices(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	rows, err := s.rates.ListCountryBasePrices(ctx)
	if err != nil {
		return nil, err
	}
	overrides := make(map[string]int64, len(rows))
	for _, row := range rows {
		overrides[row.CountryID] = row.Amount
	}
	if s.cache != nil {
		_ = s.cache.SetCountryBasePrices(ctx, overrides)
	}
	return overrides, nil
}

func (s *QuoteService) publish(ctx context.Context, eventType string, membership *domain.Membership, quote *domain.Quote, email string) error {
	if s.producer == nil || s.membershipTopic == "" {
		return nil
	}
	event := kafka.MembershipEvent{
		Type:         eventType,
		MembershipID: membership.ID,
		QuoteID:      quote.ID,
		Email:        email,
		Status:       string(membership.Status),
		TotalPrice:   quote.TotalPrice,
		Currency:     quote.Currency,
		OccurredAt:   time.Now(),
	}
	return s.producer.Publish(ctx, s.membershipTopic, membership.ID, event)
}

var _ QuoteUseCase = (*QuoteService)(nil)

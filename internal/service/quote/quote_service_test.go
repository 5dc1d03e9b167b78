package quote

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/coverwing/membership/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

type MockMembershipRepository struct {
	mock.Mock
}

func (m *MockMembershipRepository) CreateDraft(ctx context.Context, membership *domain.Membership, members []domain.Member) error {
	args := m.Called(ctx, membership, members)
	return args.Error(0)
}

func (m *MockMembershipRepository) GetByID(ctx context.Context, id string) (*domain.Membership, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Membership), args.Error(1)
}

func (m *MockMembershipRepository) GetPrimaryMember(ctx context.Context, membershipID string) (*domain.Member, error) {
	args := m.Called(ctx, membershipID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Member), args.Error(1)
}

func (m *MockMembershipRepository) UpdateStatus(ctx context.Context, id string, status domain.MembershipStatus) (*domain.Membership, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Membership), args.Error(1)
}

func (m *MockMembershipRepository) HasNonDraftForSession(ctx context.Context, sessionID string) (bool, error) {
	args := m.Called(ctx, sessionID)
	return args.Bool(0), args.Error(1)
}

func (m *MockMembershipRepository) FlagStaleDrafts(ctx context.Context, cutoff time.Time) ([]domain.Membership, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Membership), args.Error(1)
}

type MockQuoteRepository struct {
	mock.Mock
}

func (m *MockQuoteRepository) Create(ctx context.Context, quote *domain.Quote) error {
	args := m.Called(ctx, quote)
	return args.Error(0)
}

func (m *MockQuoteRepository) GetByID(ctx context.Context, id string) (*domain.Quote, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Quote), args.Error(1)
}

func (m *MockQuoteRepository) MarkDocumentSent(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type MockReferralRepository struct {
	mock.Mock
}

func (m *MockReferralRepository) GetActiveByCode(ctx context.Context, code string) (*domain.ReferralCode, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReferralCode), args.Error(1)
}

type MockRateRepository struct {
	mock.Mock
}

func (m *MockRateRepository) UpsertRates(ctx context.Context, rates []domain.ExchangeRate) error {
	args := m.Called(ctx, rates)
	return args.Error(0)
}

func (m *MockRateRepository) ListRates(ctx context.Context) ([]domain.ExchangeRate, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.ExchangeRate), args.Error(1)
}

func (m *MockRateRepository) ListCountryBasePrices(ctx context.Context) ([]domain.CountryBasePrice, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CountryBasePrice), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetCountryBasePrices(ctx context.Context) (map[string]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int64), args.Error(1)
}

func (m *MockCache) SetCountryBasePrices(ctx context.Context, prices map[string]int64) error {
	args := m.Called(ctx, prices)
	return args.Error(0)
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

func validMemberInput(primary bool) MemberInput {
	return MemberInput{
		Salutation:         "Ms",
		FirstName:          "Alice",
		LastName:           "Brown",
		DateOfBirth:        "1988-09-02",
		Gender:             "F",
		Nationality:        "British",
		CountryCode:        "+44",
		ContactNumber:      "7700900456",
		Email:              "alice.brown@example.com",
		CountryOfResidence: uuid.NewString(),
		Address:            "221B Baker Street, London",
		IsPrimary:          primary,
	}
}

func validMember(primary bool) domain.Member {
	return domain.Member{
		Salutation:         "Ms",
		FirstName:          "Alice",
		LastName:           "Brown",
		DateOfBirth:        "1988-09-02",
		Gender:             "F",
		Nationality:        "British",
		CountryCode:        "+44",
		ContactNumber:      "7700900456",
		Email:              "alice.brown@example.com",
		CountryOfResidence: uuid.NewString(),
		Address:            "221B Baker Street, London",
		IsPrimary:          primary,
	}
}

func TestQuoteService_CreateSession(t *testing.T) {
	mockSessions := &MockSessionRepository{}
	service := &QuoteService{sessions: mockSessions}

	ctx := context.Background()
	mockSessions.On("Create", ctx, mock.AnythingOfType("*domain.Session")).Return(nil).Once()

	session, err := service.CreateSession(ctx)

	assert.NoError(t, err)
	assert.NotNil(t, session)
	assert.NotEmpty(t, session.ID)

	mockSessions.AssertExpectations(t)
}

func TestQuoteService_GetSession_Success(t *testing.T) {
	mockSessions := &MockSessionRepository{}
	mockMemberships := &MockMembershipRepository{}

	service := &QuoteService{
		sessions:      mockSessions,
		memberships:   mockMemberships,
		sessionMaxAge: 24 * time.Hour,
	}

	ctx := context.Background()
	existing := &domain.Session{ID: "session-1", CreatedAt: time.Now().Add(-time.Hour)}

	mockMemberships.On("HasNonDraftForSession", ctx, "session-1").Return(false, nil).Once()
	mockSessions.On("GetByID", ctx, "session-1").Return(existing, nil).Once()

	session, err := service.GetSession(ctx, "session-1")

	assert.NoError(t, err)
	assert.Equal(t, existing, session)

	mockSessions.AssertExpectations(t)
	mockMemberships.AssertExpectations(t)
}

func TestQuoteService_GetSession_NotFound(t *testing.T) {
	mockSessions := &MockSessionRepository{}
	mockMemberships := &MockMembershipRepository{}

	service := &QuoteService{
		sessions:      mockSessions,
		memberships:   mockMemberships,
		sessionMaxAge: 24 * time.Hour,
	}

	ctx := context.Background()
	mockMemberships.On("HasNonDraftForSession", ctx, "missing").Return(false, nil).Once()
	mockSessions.On("GetByID", ctx, "missing").Return(nil, domain.ErrNotFound).Once()

	session, err := service.GetSession(ctx, "missing")

	assert.Nil(t, session)
	assert.ErrorIs(t, err, domain.ErrNoSession)
}

func TestQuoteService_GetSession_TooOld(t *testing.T) {
	mockSessions := &MockSessionRepository{}
	mockMemberships := &MockMembershipRepository{}

	service := &QuoteService{
		sessions:      mockSessions,
		memberships:   mockMemberships,
		sessionMaxAge: 24 * time.Hour,
	}

	ctx := context.Background()
	stale := &domain.Session{ID: "session-2", CreatedAt: time.Now().Add(-25 * time.Hour)}

	mockMemberships.On("HasNonDraftForSession", ctx, "session-2").Return(false, nil).Once()
	mockSessions.On("GetByID", ctx, "session-2").Return(stale, nil).Once()

	session, err := service.GetSession(ctx, "session-2")

	assert.Nil(t, session)
	assert.ErrorIs(t, err, domain.ErrNoSession)
}

func TestQuoteService_GetSession_ConsumedBySale(t *testing.T) {
	mockSessions := &MockSessionRepository{}
	mockMemberships := &MockMembershipRepository{}

	service := &QuoteService{
		sessions:      mockSessions,
		memberships:   mockMemberships,
		sessionMaxAge: 24 * time.Hour,
	}

	ctx := context.Background()
	mockMemberships.On("HasNonDraftForSession", ctx, "session-3").Return(true, nil).Once()

	session, err := service.GetSession(ctx, "session-3")

	assert.Nil(t, session)
	assert.ErrorIs(t, err, domain.ErrNoSession)
	mockSessions.AssertNotCalled(t, "GetByID")
}

func TestQuoteService_CreateQuote_Success(t *testing.T) {
	mockSessions := &MockSessionRepository{}
	mockMemberships := &MockMembershipRepository{}
	mockQuotes := &MockQuoteRepository{}
	mockReferrals := &MockReferralRepository{}
	mockRates := &MockRateRepository{}
	mockCache := &MockCache{}
	mockProducer := &MockProducer{}

	service := &QuoteService{
		sessions:        mockSessions,
		memberships:     mockMemberships,
		quotes:          mockQuotes,
		referrals:       mockReferrals,
		rates:           mockRates,
		cache:           mockCache,
		producer:        mockProducer,
		membershipTopic: "membership-events",
		sessionMaxAge:   24 * time.Hour,
		currency:        "GBP",
	}

	ctx := context.Background()
	session := &domain.Session{ID: "session-1", CreatedAt: time.Now()}
	input := CreateQuoteInput{
		SessionID:      "session-1",
		MembershipType: domain.MembershipTypeIndividual,
		CoverageType:   domain.CoverageTypeEurope,
		DurationType:   domain.DurationTypeAnnual,
		Members:        []MemberInput{validMemberInput(true)},
		ReferralCode:   "SUMMER10",
	}

	mockMemberships.On("HasNonDraftForSession", ctx, "session-1").Return(false, nil).Once()
	mockSessions.On("GetByID", ctx, "session-1").Return(session, nil).Once()
	mockCache.On("GetCountryBasePrices", ctx).Return(nil, nil).Once()
	mockRates.On("ListCountryBasePrices", ctx).Return([]domain.CountryBasePrice{}, nil).Once()
	mockCache.On("SetCountryBasePrices", ctx, mock.Anything).Return(nil).Once()
	mockReferrals.On("GetActiveByCode", ctx, "SUMMER10").
		Return(&domain.ReferralCode{Code: "SUMMER10", DiscountPercent: 10, Active: true}, nil).Once()
	mockMemberships.On("CreateDraft", ctx, mock.AnythingOfType("*domain.Membership"), mock.Anything).Return(nil).Once()
	mockQuotes.On("Create", ctx, mock.AnythingOfType("*domain.Quote")).Return(nil).Once()
	mockProducer.On("Publish", ctx, "membership-events", mock.Anything, mock.Anything).Return(nil).Once()

	q, err := service.CreateQuote(ctx, input)

	assert.NoError(t, err)
	assert.NotNil(t, q)
	assert.Equal(t, int64(1000), q.BasePrice)
	assert.Equal(t, int64(100), q.DiscountAmount)
	assert.Equal(t, int64(900), q.TotalPrice)
	assert.Equal(t, "GBP", q.Currency)

	mockMemberships.AssertExpectations(t)
	mockQuotes.AssertExpectations(t)
	mockReferrals.AssertExpectations(t)
	mockProducer.AssertExpectations(t)
}

func TestQuoteService_CreateQuote_NoSession(t *testing.T) {
	mockSessions := &MockSessionRepository{}
	mockMemberships := &MockMembershipRepository{}

	service := &QuoteService{
		sessions:      mockSessions,
		memberships:   mockMemberships,
		sessionMaxAge: 24 * time.Hour,
	}

	ctx := context.Background()
	mockMemberships.On("HasNonDraftForSession", ctx, "gone").Return(false, nil).Once()
	mockSessions.On("GetByID", ctx, "gone").Return(nil, domain.ErrNotFound).Once()

	q, err := service.CreateQuote(ctx, CreateQuoteInput{SessionID: "gone"})

	assert.Nil(t, q)
	assert.ErrorIs(t, err, domain.ErrNoSession)
	mockMemberships.AssertNotCalled(t, "CreateDraft")
}

func TestQuoteService_CreateQuote_ValidationStopsPersistence(t *testing.T) {
	mockSessions := &MockSessionRepository{}
	mockMemberships := &MockMembershipRepository{}
	mockQuotes := &MockQuoteRepository{}
	mockRates := &MockRateRepository{}

	service := &QuoteService{
		sessions:      mockSessions,
		memberships:   mockMemberships,
		quotes:        mockQuotes,
		rates:         mockRates,
		sessionMaxAge: 24 * time.Hour,
		currency:      "GBP",
	}

	ctx := context.Background()
	session := &domain.Session{ID: "session-1", CreatedAt: time.Now()}

	mockMemberships.On("HasNonDraftForSession", ctx, "session-1").Return(false, nil).Once()
	mockSessions.On("GetByID", ctx, "session-1").Return(session, nil).Once()
	mockRates.On("ListCountryBasePrices", ctx).Return([]domain.CountryBasePrice{}, nil).Once()

	member := validMemberInput(true)
	member.Email = ""

	q, err := service.CreateQuote(ctx, CreateQuoteInput{
		SessionID:      "session-1",
		MembershipType: domain.MembershipTypeIndividual,
		CoverageType:   domain.CoverageTypeEurope,
		DurationType:   domain.DurationTypeAnnual,
		Members:        []MemberInput{member},
	})

	assert.Nil(t, q)
	assert.True(t, domain.IsValidation(err))
	mockMemberships.AssertNotCalled(t, "CreateDraft")
	mockQuotes.AssertNotCalled(t, "Create")
}

func TestQuoteService_CreateQuote_PublishFailureIsNonFatal(t *testing.T) {
	mockSessions := &MockSessionRepository{}
	mockMemberships := &MockMembershipRepository{}
	mockQuotes := &MockQuoteRepository{}
	mockRates := &MockRateRepository{}
	mockProducer := &MockProducer{}

	service := &QuoteService{
		sessions:        mockSessions,
		memberships:     mockMemberships,
		quotes:          mockQuotes,
		rates:           mockRates,
		producer:        mockProducer,
		membershipTopic: "membership-events",
		sessionMaxAge:   24 * time.Hour,
		currency:        "GBP",
	}

	ctx := context.Background()
	session := &domain.Session{ID: "session-1", CreatedAt: time.Now()}

	mockMemberships.On("HasNonDraftForSession", ctx, "session-1").Return(false, nil).Once()
	mockSessions.On("GetByID", ctx, "session-1").Return(session, nil).Once()
	mockRates.On("ListCountryBasePrices", ctx).Return([]domain.CountryBasePrice{}, nil).Once()
	mockMemberships.On("CreateDraft", ctx, mock.Anything, mock.Anything).Return(nil).Once()
	mockQuotes.On("Create", ctx, mock.Anything).Return(nil).Once()
	mockProducer.On("Publish", ctx, "membership-events", mock.Anything, mock.Anything).
		Return(errors.New("kafka down")).Once()

	q, err := service.CreateQuote(ctx, CreateQuoteInput{
		SessionID:      "session-1",
		MembershipType: domain.MembershipTypeIndividual,
		CoverageType:   domain.CoverageTypeEurope,
		DurationType:   domain.DurationTypeAnnual,
		Members:        []MemberInput{validMemberInput(true)},
	})

	assert.NoError(t, err)
	assert.NotNil(t, q)

	mockProducer.AssertExpectations(t)
}

func TestQuoteService_CreateQuote_CountryPricesFromCache(t *testing.T) {
	mockSessions := &MockSessionRepository{}
	mockMemberships := &MockMembershipRepository{}
	mockQuotes := &MockQuoteRepository{}
	mockRates := &MockRateRepository{}
	mockCache := &MockCache{}

	service := &QuoteService{
		sessions:      mockSessions,
		memberships:   mockMemberships,
		quotes:        mockQuotes,
		rates:         mockRates,
		cache:         mockCache,
		sessionMaxAge: 24 * time.Hour,
		currency:      "GBP",
	}

	ctx := context.Background()
	session := &domain.Session{ID: "session-1", CreatedAt: time.Now()}
	member := validMemberInput(true)

	mockMemberships.On("HasNonDraftForSession", ctx, "session-1").Return(false, nil).Once()
	mockSessions.On("GetByID", ctx, "session-1").Return(session, nil).Once()
	mockCache.On("GetCountryBasePrices", ctx).Return(map[string]int64{member.CountryOfResidence: 800}, nil).Once()
	mockMemberships.On("CreateDraft", ctx, mock.Anything, mock.Anything).Return(nil).Once()
	mockQuotes.On("Create", ctx, mock.Anything).Return(nil).Once()

	q, err := service.CreateQuote(ctx, CreateQuoteInput{
		SessionID:      "session-1",
		MembershipType: domain.MembershipTypeIndividual,
		CoverageType:   domain.CoverageTypeEurope,
		DurationType:   domain.DurationTypeAnnual,
		Members:        []MemberInput{member},
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(800), q.BasePrice)
	mockRates.AssertNotCalled(t, "ListCountryBasePrices")
}

func TestQuoteService_CheckReferralCode_UnknownIsNil(t *testing.T) {
	mockReferrals := &MockReferralRepository{}
	service := &QuoteService{referrals: mockReferrals}

	ctx := context.Background()
	mockReferrals.On("GetActiveByCode", ctx, "NOPE").Return(nil, nil).Once()

	code, err := service.CheckReferralCode(ctx, "NOPE")

	assert.NoError(t, err)
	assert.Nil(t, code)
}

func TestQuoteService_FollowUpStaleDrafts(t *testing.T) {
	mockMemberships := &MockMembershipRepository{}
	mockProducer := &MockProducer{}

	service := &QuoteService{
		memberships:        mockMemberships,
		producer:           mockProducer,
		notificationsTopic: "notifications",
		staleAfter:         15 * time.Minute,
	}

	ctx := context.Background()
	stale := []domain.Membership{
		{ID: "m-1", Status: domain.MembershipStatusDraft},
		{ID: "m-2", Status: domain.MembershipStatusDraft},
	}
	primary := validMember(true)

	mockMemberships.On("FlagStaleDrafts", ctx, mock.AnythingOfType("time.Time")).Return(stale, nil).Once()
	mockMemberships.On("GetPrimaryMember", ctx, "m-1").Return(&primary, nil).Once()
	mockMemberships.On("GetPrimaryMember", ctx, "m-2").Return(&primary, nil).Once()
	mockProducer.On("Publish", ctx, "notifications", "m-1", mock.Anything).Return(nil).Once()
	mockProducer.On("Publish", ctx, "notifications", "m-2", mock.Anything).Return(nil).Once()

	flagged, err := service.FollowUpStaleDrafts(ctx)

	assert.NoError(t, err)
	assert.Len(t, flagged, 2)

	mockMemberships.AssertExpectations(t)
	mockProducer.AssertExpectations(t)
}

func TestQuoteService_FollowUpStaleDrafts_Empty(t *testing.T) {
	mockMemberships := &MockMembershipRepository{}
	mockProducer := &MockProducer{}

	service := &QuoteService{
		memberships:        mockMemberships,
		producer:           mockProducer,
		notificationsTopic: "notifications",
		staleAfter:         15 * time.Minute,
	}

	ctx := context.Background()
	mockMemberships.On("FlagStaleDrafts", ctx, mock.AnythingOfType("time.Time")).Return([]domain.Membership{}, nil).Once()

	flagged, err := service.FollowUpStaleDrafts(ctx)

	assert.NoError(t, err)
	assert.Empty(t, flagged)
	mockProducer.AssertNotCalled(t, "Publish")
}

func TestQuoteService_FollowUpStaleDrafts_MissingPrimarySkipped(t *testing.T) {
	mockMemberships := &MockMembershipRepository{}
	mockProducer := &MockProducer{}

	service := &QuoteService{
		memberships:        mockMemberships,
		producer:           mockProducer,
		notificationsTopic: "notifications",
		staleAfter:         15 * time.Minute,
	}

	ctx := context.Background()
	stale := []domain.Membership{{ID: "m-1", Status: domain.MembershipStatusDraft}}

	mockMemberships.On("FlagStaleDrafts", ctx, mock.AnythingOfType("time.Time")).Return(stale, nil).Once()
	mockMemberships.On("GetPrimaryMember", ctx, "m-1").Return(nil, domain.ErrNotFound).Once()

	flagged, err := service.FollowUpStaleDrafts(ctx)

	assert.NoError(t, err)
	assert.Len(t, flagged, 1)
	mockProducer.AssertNotCalled(t, "Publish")
}

func TestNewQuoteService_Options(t *testing.T) {
	service := NewQuoteService(
		&MockSessionRepository{},
		&MockMembershipRepository{},
		&MockQuoteRepository{},
		&MockReferralRepository{},
		&MockRateRepository{},
		nil,
		nil,
		"membership-events",
		24*time.Hour,
		15*time.Minute,
		WithNotificationsTopic("notifications"),
		WithCurrency("USD"),
	)

	assert.Equal(t, "notifications", service.notificationsTopic)
	assert.Equal(t, "USD", service.currency)
	assert.Equal(t, 24*time.Hour, service.sessionMaxAge)
}

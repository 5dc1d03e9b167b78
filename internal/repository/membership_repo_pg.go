package repository

import (
	"context"
	"errors"
	"time"

	"github.com/coverwing/membership/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MembershipRepository interface {
	CreateDraft(ctx context.Context, membership *domain.Membership, members []domain.Member) error
	GetByID(ctx context.Context, id string) (*domain.Membership, error)
	GetPrimaryMember(ctx context.Context, membershipID string) (*domain.Member, error)
	UpdateStatus(ctx context.Context, id string, status domain.MembershipStatus) (*domain.Membership, error)
	HasNonDraftForSession(ctx context.Context, sessionID string) (bool, error)
	FlagStaleDrafts(ctx context.Context, cutoff time.Time) ([]domain.Membership, error)
}

type PGMembershipRepository struct {
	db *pgxpool.Pool
}

func NewMembershipRepository(db *pgxpool.Pool) MembershipRepository {
	return &PGMembershipRepository{db: db}
}

func (r *PGMembershipRepository) CreateDraft(ctx context.Context, membership *domain.Membership, members []domain.Member) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	membership.Status = domain.MembershipStatusDraft
	if err := tx.QueryRow(ctx, `INSERT INTO memberships (id, session_id, membership_type, coverage_type, duration_type, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`,
		membership.ID, membership.SessionID, membership.MembershipType, membership.CoverageType, membership.DurationType, membership.Status).
		Scan(&membership.CreatedAt, &membership.UpdatedAt); err != nil {
		return err
	}

	for i := range members {
		m := &members[i]
		m.MembershipID = membership.ID
		if _, err := tx.Exec(ctx, `INSERT INTO members (id, membership_id, salutation, first_name, last_name, date_of_birth, gender, nationality, country_code, contact_number, email, country_of_residence, address, is_primary, has_preexisting, high_risk_exposure)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
			m.ID, m.MembershipID, m.Salutation, m.FirstName, m.LastName, m.DateOfBirth, m.Gender, m.Nationality, m.CountryCode, m.ContactNumber, m.Email, m.CountryOfResidence, m.Address, m.IsPrimary, m.HasPreexisting, m.HighRiskExposure); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *PGMembershipRepository) GetByID(ctx context.Context, id string) (*domain.Membership, error) {
	row := r.db.QueryRow(ctx, `SELECT id, session_id, membership_type, coverage_type, duration_type, status, followup_sent, created_at, updated_at FROM memberships WHERE id=$1`, id)
	var m domain.Membership
	if err := row.Scan(&m.ID, &m.SessionID, &m.MembershipType, &m.CoverageType, &m.DurationType, &m.Status, &m.FollowupSent, &m.CreatedAt, &m.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *PGMembershipRepository) GetPrimaryMember(ctx context.Context, membershipID string) (*domain.Member, error) {
	row := r.db.QueryRow(ctx, `SELECT id, membership_id, salutation, first_name, last_name, date_of_birth, gender, nationality, country_code, contact_number, email, country_of_residence, address, is_primary, has_preexisting, high_risk_exposure
		FROM members WHERE membership_id=$1 AND is_primary=true`, membershipID)
	var m domain.Member
	if err := row.Scan(&m.ID, &m.MembershipID, &m.Salutation, &m.FirstName, &m.LastName, &m.DateOfBirth, &m.Gender, &m.Nationality, &m.CountryCode, &m.ContactNumber, &m.Email, &m.CountryOfResidence, &m.Address, &m.IsPrimary, &m.HasPreexisting, &m.HighRiskExposure); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *PGMembershipRepository) UpdateStatus(ctx context.Context, id string, status domain.MembershipStatus) (*domain.Membership, error) {
	row := r.db.QueryRow(ctx, `UPDATE memberships SET status=$1, updated_at=now() WHERE id=$2 RETURNING id, session_id, membership_type, coverage_type, duration_type, status, followup_sent, created_at, updated_at`, status, id)
	var m domain.Membership
	if err := row.Scan(&m.ID, &m.SessionID, &m.MembershipType, &m.CoverageType, &m.DurationType, &m.Status, &m.FollowupSent, &m.CreatedAt, &m.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *PGMembershipRepository) HasNonDraftForSession(ctx context.Context, sessionID string) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM memberships WHERE session_id=$1 AND status <> $2)`, sessionID, domain.MembershipStatusDraft).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// FlagStaleDrafts marks draft memberships that have not been touched since
// cutoff and had no follow-up yet. The conditional update is the at-most-once
// guard: each row is returned to exactly one caller.
func (r *PGMembershipRepository) FlagStaleDrafts(ctx context.Context, cutoff time.Time) ([]domain.Membership, error) {
	rows, err := r.db.Query(ctx, `UPDATE memberships SET followup_sent=true
		WHERE status=$1 AND updated_at <= $2 AND followup_sent=false
		RETURNING id, session_id, membership_type, coverage_type, duration_type, status, followup_sent, created_at, updated_at`,
		domain.MembershipStatusDraft, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stale []domain.Membership
	for rows.Next() {
		var m domain.Membership
		if err := rows.Scan(&m.ID, &m.SessionID, &m.MembershipType, &m.CoverageType, &m.DurationType, &m.Status, &m.FollowupSent, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		stale = append(stale, m)
	}
	return stale, rows.Err()
}

var _ MembershipRepository = (*PGMembershipRepository)(nil)

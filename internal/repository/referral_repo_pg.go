package repository

import (
	"context"
	"errors"

	"github.com/coverwing/membership/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ReferralRepository interface {
	GetActiveByCode(ctx context.Context, code string) (*domain.ReferralCode, error)
}

type PGReferralRepository struct {
	db *pgxpool.Pool
}

func NewReferralRepository(db *pgxpool.Pool) ReferralRepository {
	return &PGReferralRepository{db: db}
}

// GetActiveByCode returns nil without error for unknown or inactive codes;
// the caller cannot tell the two apart and both mean "no discount".
func (r *PGReferralRepository) GetActiveByCode(ctx context.Context, code string) (*domain.ReferralCode, error) {
	row := r.db.QueryRow(ctx, `SELECT id, code, discount_percent, active, created_at FROM fires WHERE code=$1 AND active=true`, code)
	var rc domain.ReferralCode
	if err := row.Scan(&rc.ID, &rc.Code, &rc.DiscountPercent, &rc.Active, &rc.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rc, nil
}

var _ ReferralRepository = (*PGReferralRepository)(nil)

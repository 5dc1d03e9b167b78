package repository

import (
	"context"
	"errors"

	"github.com/coverwing/membership/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type QuoteRepository interface {
	Create(ctx context.Context, quote *domain.Quote) error
	GetByID(ctx context.Context, id string) (*domain.Quote, error)
	MarkDocumentSent(ctx context.Context, id string) (bool, error)
}

type PGQuoteRepository struct {
	db *pgxpool.Pool
}

func NewQuoteRepository(db *pgxpool.Pool) QuoteRepository {
	return &PGQuoteRepository{db: db}
}

func (r *PGQuoteRepository) Create(ctx context.Context, quote *domain.Quote) error {
	return r.db.QueryRow(ctx, `INSERT INTO quotes (id, membership_id, base_price, medical_loading_price, coverage_loading_price, discount_amount, total_price, currency)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at`,
		quote.ID, quote.MembershipID, quote.BasePrice, quote.MedicalLoadingPrice, quote.CoverageLoadingPrice, quote.DiscountAmount, quote.TotalPrice, quote.Currency).
		Scan(&quote.CreatedAt)
}

func (r *PGQuoteRepository) GetByID(ctx context.Context, id string) (*domain.Quote, error) {
	row := r.db.QueryRow(ctx, `SELECT id, membership_id, base_price, medical_loading_price, coverage_loading_price, discount_amount, total_price, currency, document_sent, created_at FROM quotes WHERE id=$1`, id)
	var q domain.Quote
	if err := row.Scan(&q.ID, &q.MembershipID, &q.BasePrice, &q.MedicalLoadingPrice, &q.CoverageLoadingPrice, &q.DiscountAmount, &q.TotalPrice, &q.Currency, &q.DocumentSent, &q.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &q, nil
}

// MarkDocumentSent flips document_sent and reports whether this call was the
// one that flipped it. A false result means the document already went out.
func (r *PGQuoteRepository) MarkDocumentSent(ctx context.Context, id string) (bool, error) {
	cmd, err := r.db.Exec(ctx, `UPDATE quotes SET document_sent=true WHERE id=$1 AND document_sent=false`, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

var _ QuoteRepository = (*PGQuoteRepository)(nil)

package repository

import (
	"context"
	"errors"

	"github.com/coverwing/membership/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CustomerRepository interface {
	GetByEmail(ctx context.Context, email string) (*domain.Customer, error)
	Create(ctx context.Context, customer *domain.Customer) error
}

type PGCustomerRepository struct {
	db *pgxpool.Pool
}

func NewCustomerRepository(db *pgxpool.Pool) CustomerRepository {
	return &PGCustomerRepository{db: db}
}

func (r *PGCustomerRepository) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	row := r.db.QueryRow(ctx, `SELECT id, email, stripe_customer_id, created_at FROM customers WHERE email=$1`, email)
	var c domain.Customer
	if err := row.Scan(&c.ID, &c.Email, &c.StripeCustomerID, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// Create inserts the email → customer mapping. The unique constraint on
// email makes concurrent creation safe: on conflict the row is left alone
// and the stored mapping is read back.
func (r *PGCustomerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	err := r.db.QueryRow(ctx, `INSERT INTO customers (email, stripe_customer_id) VALUES ($1, $2)
		ON CONFLICT (email) DO NOTHING
		RETURNING id, created_at`, customer.Email, customer.StripeCustomerID).
		Scan(&customer.ID, &customer.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		existing, err := r.GetByEmail(ctx, customer.Email)
		if err != nil {
			return err
		}
		*customer = *existing
		return nil
	}
	return err
}

var _ CustomerRepository = (*PGCustomerRepository)(nil)

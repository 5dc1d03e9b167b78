package repository

import (
	"context"

	"github.com/coverwing/membership/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CatalogRepository mirrors the payment provider's product/price catalog,
// kept in sync by webhook events.
type CatalogRepository interface {
	UpsertProduct(ctx context.Context, product *domain.Product) error
	DeleteProduct(ctx context.Context, id string) error
	UpsertPrice(ctx context.Context, price *domain.Price) error
	DeletePrice(ctx context.Context, id string) error
}

type PGCatalogRepository struct {
	db *pgxpool.Pool
}

func NewCatalogRepository(db *pgxpool.Pool) CatalogRepository {
	return &PGCatalogRepository{db: db}
}

func (r *PGCatalogRepository) UpsertProduct(ctx context.Context, product *domain.Product) error {
	_, err := r.db.Exec(ctx, `INSERT INTO products (id, name, active) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET name=EXCLUDED.name, active=EXCLUDED.active`,
		product.ID, product.Name, product.Active)
	return err
}

func (r *PGCatalogRepository) DeleteProduct(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	return err
}

func (r *PGCatalogRepository) UpsertPrice(ctx context.Context, price *domain.Price) error {
	_, err := r.db.Exec(ctx, `INSERT INTO prices (id, product_id, currency, unit_amount, active) VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET product_id=EXCLUDED.product_id, currency=EXCLUDED.currency, unit_amount=EXCLUDED.unit_amount, active=EXCLUDED.active`,
		price.ID, price.ProductID, price.Currency, price.UnitAmount, price.Active)
	return err
}

func (r *PGCatalogRepository) DeletePrice(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM prices WHERE id=$1`, id)
	return err
}

var _ CatalogRepository = (*PGCatalogRepository)(nil)

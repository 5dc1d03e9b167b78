package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS membership_sessions (
		id UUID PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS memberships (
		id UUID PRIMARY KEY,
		session_id UUID NOT NULL REFERENCES membership_sessions(id),
		membership_type TEXT NOT NULL,
		coverage_type TEXT NOT NULL,
		duration_type TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'DRAFT',
		followup_sent BOOLEAN NOT NULL DEFAULT false,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS members (
		id UUID PRIMARY KEY,
		membership_id UUID NOT NULL REFERENCES memberships(id),
		salutation TEXT NOT NULL,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		date_of_birth TEXT NOT NULL,
		gender TEXT NOT NULL,
		nationality TEXT NOT NULL,
		country_code TEXT NOT NULL,
		contact_number TEXT NOT NULL,
		email TEXT NOT NULL,
		country_of_residence UUID NOT NULL,
		address TEXT NOT NULL,
		is_primary BOOLEAN NOT NULL DEFAULT false,
		has_preexisting BOOLEAN NOT NULL DEFAULT false,
		high_risk_exposure BOOLEAN NOT NULL DEFAULT false
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS members_one_primary ON members (membership_id) WHERE is_primary`,
	`CREATE TABLE IF NOT EXISTS quotes (
		id UUID PRIMARY KEY,
		membership_id UUID NOT NULL REFERENCES memberships(id),
		base_price BIGINT NOT NULL,
		medical_loading_price BIGINT NOT NULL DEFAULT 0,
		coverage_loading_price BIGINT NOT NULL DEFAULT 0,
		discount_amount BIGINT NOT NULL DEFAULT 0,
		total_price BIGINT NOT NULL,
		currency TEXT NOT NULL,
		document_sent BOOLEAN NOT NULL DEFAULT false,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS fires (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		code TEXT NOT NULL UNIQUE,
		discount_percent INT NOT NULL,
		active BOOLEAN NOT NULL DEFAULT true,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS customers (
		id BIGSERIAL PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		stripe_customer_id TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		active BOOLEAN NOT NULL DEFAULT true
	)`,
	`CREATE TABLE IF NOT EXISTS prices (
		id TEXT PRIMARY KEY,
		product_id TEXT NOT NULL,
		currency TEXT NOT NULL,
		unit_amount BIGINT NOT NULL,
		active BOOLEAN NOT NULL DEFAULT true
	)`,
	`CREATE TABLE IF NOT EXISTS exchange_rates (
		currency TEXT PRIMARY KEY,
		rate DOUBLE PRECISION NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS country_base_prices (
		country_id UUID PRIMARY KEY,
		amount BIGINT NOT NULL
	)`,
}

// Migrate creates the schema if it does not exist yet. Statements are
// idempotent so running at every startup is safe.
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	for _, stmt := range migrations {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

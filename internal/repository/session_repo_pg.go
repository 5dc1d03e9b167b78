package repository

import (
	"context"
	"errors"

	"github.com/coverwing/membership/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	GetByID(ctx context.Context, id string) (*domain.Session, error)
}

type PGSessionRepository struct {
	db *pgxpool.Pool
}

func NewSessionRepository(db *pgxpool.Pool) SessionRepository {
	return &PGSessionRepository{db: db}
}

func (r *PGSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	return r.db.QueryRow(ctx, `INSERT INTO membership_sessions (id) VALUES ($1) RETURNING created_at`, session.ID).
		Scan(&session.CreatedAt)
}

func (r *PGSessionRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	row := r.db.QueryRow(ctx, `SELECT id, created_at FROM membership_sessions WHERE id=$1`, id)
	var s domain.Session
	if err := row.Scan(&s.ID, &s.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

var _ SessionRepository = (*PGSessionRepository)(nil)

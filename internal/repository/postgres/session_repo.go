package postgres

import (
	"context"
	"errors"

	"agence-dashboard/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type sessionRepository struct {
	db *pgxpool.Pool
}

func NewSessionRepository(db *pgxpool.Pool) domain.SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Save(ctx context.Context, s *domain.Session) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO dashboard_sessions (id, user_id, agence_id, role, token, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			token = EXCLUDED.token,
			role = EXCLUDED.role,
			expires_at = EXCLUDED.expires_at`,
		s.ID, s.UserID, s.AgencyID, s.Role, s.Token, s.CreatedAt, s.ExpiresAt,
	)
	return err
}

func (r *sessionRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	var s domain.Session
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, agence_id, role, token, created_at, expires_at
		FROM dashboard_sessions WHERE id = $1`, id,
	).Scan(&s.ID, &s.UserID, &s.AgencyID, &s.Role, &s.Token, &s.CreatedAt, &s.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNoSession
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *sessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM dashboard_sessions WHERE id = $1`, id)
	return err
}

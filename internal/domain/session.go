package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type ContextKey string

const SessionContextKey ContextKey = "session"

// Session is the server-side twin of the token the dashboard persists in
// the browser. Token is the shipping API bearer token used for every
// upstream call made on behalf of the session.
type Session struct {
	ID        uuid.UUID `json:"id"`
	UserID    string    `json:"userId"`
	AgencyID  string    `json:"agenceId"`
	Role      string    `json:"role"`
	Token     string    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// CanManageTariffs reports whether the session may mutate tariff catalogs.
func (s *Session) CanManageTariffs() bool {
	return s.Role == RoleAdmin || s.Role == RoleAgency
}

// CanCreateExpeditions reports whether the session may register shipments.
func (s *Session) CanCreateExpeditions() bool {
	return s.CanManageTariffs() || s.Role == RoleAgent
}

// SessionFromContext returns the session attached by the auth middleware.
func SessionFromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(SessionContextKey).(*Session)
	return s, ok && s != nil
}

type SessionRepository interface {
	Save(ctx context.Context, s *Session) error
	Get(ctx context.Context, id uuid.UUID) (*Session, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

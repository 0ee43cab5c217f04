package middleware

import (
	"context"
	"errors"
	"net/http"

	"agence-dashboard/internal/domain"
	"agence-dashboard/pkg/logger"
	"agence-dashboard/pkg/utils"
)

// SessionResolver turns validated token claims into a live session.
type SessionResolver interface {
	Resolve(ctx context.Context, claims *utils.Claims) (*domain.Session, error)
}

// NewAuthMiddleware requires a valid dashboard token whose session still
// exists, and attaches that session to the request context.
func NewAuthMiddleware(sessions SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := utils.ExtractClaims(r)
			if errors.Is(err, utils.ErrNoToken) {
				utils.WriteError(w, http.StatusUnauthorized, "Unauthorized: No token provided")
				return
			}
			if err != nil {
				utils.WriteError(w, http.StatusUnauthorized, "Unauthorized: Invalid token")
				return
			}

			sess, err := sessions.Resolve(r.Context(), claims)
			switch {
			case errors.Is(err, domain.ErrSessionExpired):
				utils.WriteError(w, http.StatusUnauthorized, "Unauthorized: Session expired")
				return
			case errors.Is(err, domain.ErrNoSession):
				utils.WriteError(w, http.StatusUnauthorized, "Unauthorized: No active session")
				return
			case err != nil:
				logger.WithContext(r.Context()).Error().Err(err).Msg("Session lookup failed")
				utils.WriteError(w, http.StatusInternalServerError, "Failed to load session")
				return
			}

			sessLogger := logger.WithSession(*logger.WithContext(r.Context()), sess.ID.String(), sess.AgencyID)
			ctx := logger.NewContext(r.Context(), &sessLogger)
			ctx = context.WithValue(ctx, domain.SessionContextKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"agence-dashboard/internal/domain"
	"agence-dashboard/pkg/logger"
	"agence-dashboard/pkg/utils"

	"github.com/google/uuid"
)

type SessionUsecase struct {
	repo       domain.SessionRepository
	workspaces *WorkspaceManager
	ttl        time.Duration
}

func NewSessionUsecase(repo domain.SessionRepository, workspaces *WorkspaceManager, ttl time.Duration) *SessionUsecase {
	return &SessionUsecase{
		repo:       repo,
		workspaces: workspaces,
		ttl:        ttl,
	}
}

// OpenSessionInput is what the login page hands over once the shipping API
// has authenticated the user.
type OpenSessionInput struct {
	Token    string `json:"token"`
	UserID   string `json:"user_id"`
	AgencyID string `json:"agence_id"`
	Role     string `json:"role"`
}

// Open registers a session and returns it with the signed dashboard token.
func (u *SessionUsecase) Open(ctx context.Context, in OpenSessionInput) (*domain.Session, string, error) {
	in.Token = strings.TrimSpace(in.Token)
	in.Role = strings.ToLower(strings.TrimSpace(in.Role))
	if in.Token == "" {
		return nil, "", domain.NewValidationError("token", "shipping API token is required")
	}
	if strings.TrimSpace(in.AgencyID) == "" {
		return nil, "", domain.NewValidationError("agence_id", "agency id is required")
	}
	if in.Role == "" {
		in.Role = domain.RoleAgency
	}
	known := false
	for _, r := range domain.Roles {
		if r == in.Role {
			known = true
			break
		}
	}
	if !known {
		return nil, "", domain.NewValidationError("role", "unknown role '"+in.Role+"'")
	}

	now := time.Now()
	sess := &domain.Session{
		ID:        uuid.New(),
		UserID:    in.UserID,
		AgencyID:  strings.TrimSpace(in.AgencyID),
		Role:      in.Role,
		Token:     in.Token,
		CreatedAt: now,
		ExpiresAt: now.Add(u.ttl),
	}
	if err := u.repo.Save(ctx, sess); err != nil {
		return nil, "", err
	}

	token, err := utils.GenerateJWT(sess.ID.String(), sess.UserID, sess.AgencyID, sess.Role, sess.ExpiresAt)
	if err != nil {
		return nil, "", err
	}

	logger.WithContext(ctx).Info().
		Str("session_id", sess.ID.String()).
		Str("agence_id", sess.AgencyID).
		Str("role", sess.Role).
		Msg("Session opened")
	return sess, token, nil
}

// Resolve loads the session a dashboard token points at.
func (u *SessionUsecase) Resolve(ctx context.Context, claims *utils.Claims) (*domain.Session, error) {
	id, err := uuid.Parse(claims.SessionID)
	if err != nil {
		return nil, domain.ErrNoSession
	}

	sess, err := u.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.Expired(time.Now()) {
		if err := u.repo.Delete(ctx, id); err != nil {
			logger.WithContext(ctx).Warn().Err(err).Msg("Failed to delete expired session")
		}
		u.workspaces.Discard(id)
		return nil, domain.ErrSessionExpired
	}
	return sess, nil
}

// Close ends the session and tears its workspace down.
func (u *SessionUsecase) Close(ctx context.Context, sess *domain.Session) error {
	u.workspaces.Discard(sess.ID)
	if err := u.repo.Delete(ctx, sess.ID); err != nil && !errors.Is(err, domain.ErrNoSession) {
		return err
	}
	logger.WithContext(ctx).Info().Str("session_id", sess.ID.String()).Msg("Session closed")
	return nil
}

// Workspace returns the tariff workspace bound to sess.
func (u *SessionUsecase) Workspace(sess *domain.Session) *TariffUsecase {
	return u.workspaces.Get(sess)
}

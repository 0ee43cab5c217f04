package usecase

import (
	"context"

	"agence-dashboard/internal/domain"
	"agence-dashboard/pkg/logger"
)

type ExpeditionUsecase struct {
	provider domain.GatewayProvider
}

func NewExpeditionUsecase(provider domain.GatewayProvider) *ExpeditionUsecase {
	return &ExpeditionUsecase{provider: provider}
}

// Simulate asks the server for the price of a shipment without booking it.
func (u *ExpeditionUsecase) Simulate(ctx context.Context, sess *domain.Session, req domain.ExpeditionRequest) (*domain.Quote, error) {
	if err := req.Validate(false); err != nil {
		return nil, err
	}
	return u.provider.ForToken(sess.Token).SimulateExpedition(ctx, req)
}

func (u *ExpeditionUsecase) Create(ctx context.Context, sess *domain.Session, req domain.ExpeditionRequest) (*domain.Expedition, error) {
	if !sess.CanCreateExpeditions() {
		return nil, domain.ErrForbidden
	}
	if err := req.Validate(true); err != nil {
		return nil, err
	}

	exp, err := u.provider.ForToken(sess.Token).CreateExpedition(ctx, req)
	if err != nil {
		return nil, err
	}
	logger.WithContext(ctx).Info().
		Int64("expedition_id", exp.ID).
		Str("reference", exp.Reference).
		Str("agence_id", sess.AgencyID).
		Msg("Expedition created")
	return exp, nil
}

func (u *ExpeditionUsecase) List(ctx context.Context, sess *domain.Session) ([]domain.Expedition, error) {
	return u.provider.ForToken(sess.Token).ListExpeditions(ctx)
}

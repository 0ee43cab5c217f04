package usecase

import (
	"context"
	"fmt"

	"agence-dashboard/internal/catalog"
	"agence-dashboard/internal/domain"
	"agence-dashboard/pkg/logger"

	"golang.org/x/sync/errgroup"
)

func (uc *TariffUsecase) LoadBaseRates(ctx context.Context) (catalog.State, error) {
	rates, err := uc.baseRates(ctx, false)
	if err != nil {
		return uc.store.Snapshot(), err
	}
	return uc.store.Dispatch(catalog.BaseRatesLoaded{Rates: rates}), nil
}

func (uc *TariffUsecase) LoadAgencyRates(ctx context.Context) (catalog.State, error) {
	rates, err := uc.gateway.ListAgencyGroupageRates(ctx)
	if err != nil {
		return uc.store.Snapshot(), err
	}
	return uc.store.Dispatch(catalog.AgencyRatesLoaded{Rates: rates}), nil
}

// ReloadGroupage fetches both groupage catalogs, bypassing the cache.
func (uc *TariffUsecase) ReloadGroupage(ctx context.Context) (catalog.State, error) {
	var base, agency []domain.GroupageRate

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		base, err = uc.baseRates(gctx, true)
		return err
	})
	g.Go(func() error {
		var err error
		agency, err = uc.gateway.ListAgencyGroupageRates(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return uc.store.Snapshot(), err
	}

	uc.store.Dispatch(catalog.BaseRatesLoaded{Rates: base})
	return uc.store.Dispatch(catalog.AgencyRatesLoaded{Rates: agency}), nil
}

func (uc *TariffUsecase) baseRates(ctx context.Context, fresh bool) ([]domain.GroupageRate, error) {
	if !fresh {
		if val, found := uc.cache.Get(baseGroupageKey); found {
			return append([]domain.GroupageRate(nil), val.([]domain.GroupageRate)...), nil
		}
	}

	rates, err := uc.gateway.ListBaseGroupageRates(ctx)
	if err != nil {
		return nil, err
	}
	uc.cache.Set(baseGroupageKey, append([]domain.GroupageRate(nil), rates...), uc.cfg.CacheBaseCatalogTTL)
	return rates, nil
}

// ImportFromBase stages a published rate as an agency rate proposal. A nil
// percent uses the configured default markup.
func (uc *TariffUsecase) ImportFromBase(baseID int64, percent *float64) (catalog.State, error) {
	snap := uc.store.Snapshot()
	if baseID <= 0 {
		return snap, domain.NewValidationError("tarif_groupage_id", "select a base rate first")
	}
	base, ok := snap.FindBaseRate(baseID)
	if !ok {
		return snap, domain.NewValidationError("tarif_groupage_id", fmt.Sprintf("base rate %d not found", baseID))
	}

	markup := uc.cfg.DefaultGroupageMarkup
	if percent != nil {
		markup = *percent
	}
	if markup < 0 {
		return snap, domain.NewValidationError("pourcentage_prestation", "markup cannot be negative")
	}

	return uc.store.Dispatch(catalog.RateImported{Candidate: base.ImportCandidate(markup)}), nil
}

// CreateAgencyRate registers a rate derived from a published one. Without a
// base rate id nothing is sent.
func (uc *TariffUsecase) CreateAgencyRate(ctx context.Context, baseRateID int64, percent float64) (catalog.State, error) {
	if baseRateID <= 0 {
		err := domain.NewValidationError("tarif_groupage_id", "select a base rate first")
		return uc.fail(catalog.ScopeGroupage, err), err
	}
	if percent < 0 {
		err := domain.NewValidationError("pourcentage_prestation", "markup cannot be negative")
		return uc.fail(catalog.ScopeGroupage, err), err
	}

	rate, err := uc.gateway.CreateGroupageRate(ctx, baseRateID, percent)
	if err != nil {
		logger.WithContext(ctx).Warn().Err(err).Int64("tarif_groupage_id", baseRateID).Msg("Groupage rate create failed")
		return uc.fail(catalog.ScopeGroupage, err), err
	}

	candidate := uc.store.Snapshot().Candidate
	fromCandidate := candidate != nil && candidate.BaseRateID == baseRateID

	if rate == nil || rate.ID == 0 {
		// Created, but the server did not say under which id.
		state, err := uc.LoadAgencyRates(ctx)
		if err != nil {
			return state, err
		}
		for _, r := range state.AgencyRates {
			if fromCandidate && r.BaseRateID == baseRateID {
				return uc.store.Dispatch(catalog.RateUpserted{Rate: r, FromCandidate: true}), nil
			}
		}
		return state, nil
	}
	return uc.store.Dispatch(catalog.RateUpserted{Rate: *rate, FromCandidate: fromCandidate}), nil
}

func (uc *TariffUsecase) UpdateAgencyRate(ctx context.Context, id int64, percent float64) (catalog.State, error) {
	current, err := uc.agencyRate(id)
	if err != nil {
		return uc.store.Snapshot(), err
	}
	if percent < 0 {
		err := domain.NewValidationError("pourcentage_prestation", "markup cannot be negative")
		return uc.fail(catalog.ScopeGroupage, err), err
	}

	rate, err := uc.gateway.UpdateGroupageRate(ctx, id, percent)
	if err != nil {
		return uc.fail(catalog.ScopeGroupage, err), err
	}
	if rate == nil || rate.ID == 0 {
		updated := current.WithMarkup(percent)
		rate = &updated
	}
	return uc.store.Dispatch(catalog.RateUpserted{Rate: *rate}), nil
}

func (uc *TariffUsecase) DeleteAgencyRate(ctx context.Context, id int64) (catalog.State, error) {
	if _, err := uc.agencyRate(id); err != nil {
		return uc.store.Snapshot(), err
	}

	if err := uc.gateway.DeleteGroupageRate(ctx, id); err != nil {
		return uc.fail(catalog.ScopeGroupage, err), err
	}
	return uc.store.Dispatch(catalog.RateRemoved{ID: id}), nil
}

func (uc *TariffUsecase) ToggleAgencyRateStatus(ctx context.Context, id int64) (catalog.State, error) {
	current, err := uc.agencyRate(id)
	if err != nil {
		return uc.store.Snapshot(), err
	}

	rate, err := uc.gateway.ToggleGroupageRate(ctx, id)
	if err != nil {
		return uc.fail(catalog.ScopeGroupage, err), err
	}
	if rate == nil || rate.ID == 0 {
		toggled := current
		toggled.Active = !current.Active
		rate = &toggled
	}
	return uc.store.Dispatch(catalog.RateUpserted{Rate: *rate}), nil
}

func (uc *TariffUsecase) agencyRate(id int64) (domain.GroupageRate, error) {
	if id <= 0 {
		return domain.GroupageRate{}, domain.NewValidationError("id", "rate id is required")
	}
	r, ok := uc.store.Snapshot().FindAgencyRate(id)
	if !ok {
		return domain.GroupageRate{}, domain.NewValidationError("id", fmt.Sprintf("rate %d is not in the agency catalog", id))
	}
	return r, nil
}

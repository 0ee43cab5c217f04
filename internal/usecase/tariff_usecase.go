package usecase

import (
	"context"
	"fmt"
	"sync"

	"agence-dashboard/config"
	"agence-dashboard/internal/catalog"
	"agence-dashboard/internal/domain"
	"agence-dashboard/pkg/cache"
	"agence-dashboard/pkg/logger"

	"golang.org/x/sync/errgroup"
)

const (
	baseCatalogPrefix = "tarification:"
	baseSimpleKey     = baseCatalogPrefix + "simple:base"
	baseGroupageKey   = baseCatalogPrefix + "groupage:base"
)

// TariffUsecase is the tariff workspace of one session. Network calls run
// outside the store lock; every outcome lands in the store as an action.
type TariffUsecase struct {
	store   *catalog.Store
	gateway domain.TariffGateway
	cache   cache.CacheService
	cfg     *config.Config
}

func NewTariffUsecase(gateway domain.TariffGateway, cache cache.CacheService, cfg *config.Config) *TariffUsecase {
	return &TariffUsecase{
		store:   catalog.NewStore(cfg.ZoneCount),
		gateway: gateway,
		cache:   cache,
		cfg:     cfg,
	}
}

func (uc *TariffUsecase) Snapshot() catalog.State {
	return uc.store.Snapshot()
}

// Reset drops everything the workspace holds.
func (uc *TariffUsecase) Reset() catalog.State {
	return uc.store.Dispatch(catalog.WorkspaceReset{})
}

// --- Simple tariffs ---

func (uc *TariffUsecase) LoadBaseTariffs(ctx context.Context) (catalog.State, error) {
	tariffs, err := uc.baseTariffs(ctx, false)
	if err != nil {
		return uc.store.Snapshot(), err
	}
	return uc.store.Dispatch(catalog.BaseTariffsLoaded{Tariffs: tariffs}), nil
}

func (uc *TariffUsecase) LoadAgencyTariffs(ctx context.Context) (catalog.State, error) {
	tariffs, err := uc.gateway.ListAgencySimpleTariffs(ctx)
	if err != nil {
		return uc.store.Snapshot(), err
	}
	return uc.store.Dispatch(catalog.AgencyTariffsLoaded{Tariffs: tariffs}), nil
}

// Reload fetches both simple catalogs from the server, bypassing the cache.
func (uc *TariffUsecase) Reload(ctx context.Context) (catalog.State, error) {
	var base, agency []domain.SimpleTariff

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		base, err = uc.baseTariffs(gctx, true)
		return err
	})
	g.Go(func() error {
		var err error
		agency, err = uc.gateway.ListAgencySimpleTariffs(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return uc.store.Snapshot(), err
	}

	uc.store.Dispatch(catalog.BaseTariffsLoaded{Tariffs: base})
	return uc.store.Dispatch(catalog.AgencyTariffsLoaded{Tariffs: agency}), nil
}

func (uc *TariffUsecase) baseTariffs(ctx context.Context, fresh bool) ([]domain.SimpleTariff, error) {
	if !fresh {
		if val, found := uc.cache.Get(baseSimpleKey); found {
			return cloneTariffs(val.([]domain.SimpleTariff)), nil
		}
	}

	tariffs, err := uc.gateway.ListBaseSimpleTariffs(ctx)
	if err != nil {
		return nil, err
	}
	uc.cache.Set(baseSimpleKey, cloneTariffs(tariffs), uc.cfg.CacheBaseCatalogTTL)
	return tariffs, nil
}

// SelectIndex opens a tier for editing. "new" starts a blank tier; an
// unknown tier resolves to the nearest one and the state carries a notice.
func (uc *TariffUsecase) SelectIndex(requested string) (catalog.State, error) {
	indice := domain.Indice(requested)
	if indice.IsZero() {
		return uc.store.Snapshot(), domain.NewValidationError("indice", "a tariff tier is required")
	}
	return uc.store.Dispatch(catalog.IndexSelected{Requested: indice}), nil
}

// UpdateZoneMarkup edits the staging copy only.
func (uc *TariffUsecase) UpdateZoneMarkup(zoneID string, percent float64) (catalog.State, error) {
	snap := uc.store.Snapshot()
	if !snap.Selection.Editable() {
		return snap, domain.NewValidationError("selection", "no tariff is being edited")
	}
	found := false
	for _, z := range snap.Selection.StagingZones {
		if z.ZoneID == zoneID {
			found = true
			break
		}
	}
	if !found {
		return snap, domain.NewValidationError("zoneId", fmt.Sprintf("zone '%s' is not part of this tariff", zoneID))
	}
	if percent < 0 {
		return snap, domain.NewValidationError("pourcentage_prestation", "markup cannot be negative")
	}

	return uc.store.Dispatch(catalog.ZoneMarkupChanged{ZoneID: zoneID, Percent: percent}), nil
}

func (uc *TariffUsecase) CancelEditing() catalog.State {
	return uc.store.Dispatch(catalog.EditingCancelled{})
}

// SaveTariff sends the staging buffer to the server. A "new" tier, or a
// published tier the agency does not have yet, is created; anything else is
// updated. The tier the server answers with is the one kept.
func (uc *TariffUsecase) SaveTariff(ctx context.Context) (catalog.State, error) {
	var (
		tariff domain.SimpleTariff
		create bool
	)
	// Validation and SaveStarted share one lock, so two concurrent saves
	// cannot both leave the idle phase.
	state, err := uc.store.DispatchIf(func(snap catalog.State) error {
		sel := snap.Selection
		if sel.SelectedIndex.IsZero() {
			return domain.NewValidationError("indice", "select a tariff tier first")
		}
		if sel.Phase == catalog.PhaseSaving {
			return domain.NewValidationError("selection", "a save is already in progress")
		}
		if len(sel.StagingZones) == 0 {
			return domain.NewValidationError("prix_zones", "the tariff has no zones")
		}

		tariff = domain.SimpleTariff{
			Indice: sel.SelectedIndex,
			Active: true,
			Zones:  domain.NormalizeZones(sel.StagingZones),
		}
		create = sel.SelectedIndex.IsNew() || domain.FindTariff(snap.AgencyTariffs, sel.SelectedIndex) < 0
		if sel.SelectedIndex.IsNew() {
			tariff.Indice = domain.NextIndice(snap.AgencyTariffs)
		}
		if create {
			// Rows copied from a published tier belong to the publisher.
			for i := range tariff.Zones {
				tariff.Zones[i].RowID = 0
			}
		}
		return nil
	}, catalog.SaveStarted{})
	if err != nil {
		return state, err
	}

	var saved *domain.SimpleTariff
	if create {
		saved, err = uc.gateway.CreateSimpleTariff(ctx, tariff)
	} else {
		saved, err = uc.gateway.UpdateSimpleTariff(ctx, tariff)
	}
	if err != nil {
		logger.WithContext(ctx).Warn().Err(err).Str("indice", string(tariff.Indice)).Bool("create", create).Msg("Tariff save failed")
		return uc.fail(catalog.ScopeSimple, err), err
	}
	echoed := saved == nil
	if echoed {
		saved = &tariff
	}

	if !create {
		return uc.store.Dispatch(catalog.TariffUpdated{Tariff: *saved}), nil
	}
	state = uc.store.Dispatch(catalog.TariffCreated{Tariff: *saved})
	if echoed {
		// The echo carries no row ids; without them the tier cannot be
		// deleted or toggled.
		rows, err := uc.gateway.ListAgencySimpleTariffs(ctx)
		if err != nil {
			logger.WithContext(ctx).Warn().Err(err).Str("indice", string(tariff.Indice)).Msg("Row ids of the created tariff not fetched")
			return state, nil
		}
		state = uc.store.Dispatch(catalog.AgencyTariffsLoaded{Tariffs: rows})
	}
	return state, nil
}

// DeleteTariff removes every zone row of an agency tier. The rows are
// deleted concurrently; if any fails the workspace reloads from the server.
func (uc *TariffUsecase) DeleteTariff(ctx context.Context, indice string) (catalog.State, error) {
	t, err := uc.agencyTariff(indice)
	if err != nil {
		return uc.store.Snapshot(), err
	}

	if err := uc.fanOut(ctx, t.RowIDs(), uc.gateway.DeleteSimpleTariffZone); err != nil {
		return uc.resyncAfter(ctx, err), err
	}
	return uc.store.Dispatch(catalog.TariffRemoved{Indice: t.Indice}), nil
}

// ToggleStatus flips the status of every zone row of an agency tier.
func (uc *TariffUsecase) ToggleStatus(ctx context.Context, indice string) (catalog.State, error) {
	t, err := uc.agencyTariff(indice)
	if err != nil {
		return uc.store.Snapshot(), err
	}

	if err := uc.fanOut(ctx, t.RowIDs(), uc.gateway.ToggleSimpleTariffZone); err != nil {
		return uc.resyncAfter(ctx, err), err
	}
	return uc.store.Dispatch(catalog.TariffStatusToggled{Indice: t.Indice}), nil
}

func (uc *TariffUsecase) agencyTariff(indice string) (domain.SimpleTariff, error) {
	t, ok := uc.store.Snapshot().FindAgencyTariff(domain.Indice(indice))
	if !ok {
		return domain.SimpleTariff{}, domain.NewValidationError("indice", fmt.Sprintf("tariff %s is not in the agency catalog", indice))
	}
	if len(t.RowIDs()) == 0 {
		return domain.SimpleTariff{}, domain.NewValidationError("indice", fmt.Sprintf("tariff %s has no zone rows on the server", indice))
	}
	return t, nil
}

// fanOut runs call for every row and waits for all of them, even after a
// failure, so the server is in a settled state before any resync.
func (uc *TariffUsecase) fanOut(ctx context.Context, rows []int64, call func(context.Context, int64) error) error {
	var (
		g      errgroup.Group
		mu     sync.Mutex
		failed int
	)
	for _, id := range rows {
		g.Go(func() error {
			if err := call(ctx, id); err != nil {
				mu.Lock()
				failed++
				mu.Unlock()
				logger.WithContext(ctx).Warn().Err(err).Int64("row_id", id).Msg("Zone row call failed")
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return &domain.PartialFailureError{Failed: failed, Total: len(rows), Err: err}
	}
	return nil
}

// resyncAfter reloads both simple catalogs after a partial failure and
// records the failure on the selection.
func (uc *TariffUsecase) resyncAfter(ctx context.Context, cause error) catalog.State {
	logger.WithContext(ctx).Warn().Err(cause).Msg("Resyncing simple tariffs after partial failure")
	if _, err := uc.Reload(ctx); err != nil {
		logger.WithContext(ctx).Error().Err(err).Msg("Resync failed")
	}
	return uc.fail(catalog.ScopeSimple, cause)
}

func (uc *TariffUsecase) fail(scope catalog.Scope, err error) catalog.State {
	return uc.store.Dispatch(catalog.OperationFailed{Scope: scope, Message: err.Error()})
}

func cloneTariffs(in []domain.SimpleTariff) []domain.SimpleTariff {
	out := make([]domain.SimpleTariff, len(in))
	for i, t := range in {
		out[i] = t.Clone()
	}
	return out
}

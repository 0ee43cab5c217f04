package usecase_test

import (
	"context"
	"sync"
	"time"

	"agence-dashboard/config"
	"agence-dashboard/internal/domain"
	memcache "agence-dashboard/internal/infrastructure/cache"
	"agence-dashboard/pkg/cache"
)

// fakeGateway is an in-memory shipping API. Mutations change its catalogs
// so a reload observes exactly what the server holds.
type fakeGateway struct {
	mu sync.Mutex

	base        []domain.SimpleTariff
	agency      []domain.SimpleTariff
	baseRates   []domain.GroupageRate
	agencyRates []domain.GroupageRate

	saveErr        error
	assignIndice   domain.Indice
	failRows       map[int64]error
	failRate       error
	echoOnly       bool
	entered        chan struct{}
	release        chan struct{}
	nextRowID      int64
	nextRateID     int64
	calls          map[string]int
	lastExpedition *domain.ExpeditionRequest
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		failRows:   map[int64]error{},
		calls:      map[string]int{},
		nextRowID:  1000,
		nextRateID: 500,
	}
}

func (f *fakeGateway) ForToken(string) domain.Gateway { return f }

func (f *fakeGateway) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeGateway) hit(name string) {
	f.calls[name]++
}

func copyTariffs(in []domain.SimpleTariff) []domain.SimpleTariff {
	out := make([]domain.SimpleTariff, len(in))
	for i, t := range in {
		out[i] = t.Clone()
	}
	return out
}

func (f *fakeGateway) ListBaseSimpleTariffs(context.Context) ([]domain.SimpleTariff, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit("ListBaseSimpleTariffs")
	return copyTariffs(f.base), nil
}

func (f *fakeGateway) ListAgencySimpleTariffs(context.Context) ([]domain.SimpleTariff, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit("ListAgencySimpleTariffs")
	return copyTariffs(f.agency), nil
}

// hold parks a save until the test releases it. The channels are set
// before the workspace is shared, so they are read without the lock.
func (f *fakeGateway) hold() {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
}

func (f *fakeGateway) CreateSimpleTariff(_ context.Context, t domain.SimpleTariff) (*domain.SimpleTariff, error) {
	f.hold()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit("CreateSimpleTariff")
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	t = t.Clone()
	if f.assignIndice != "" {
		t.Indice = f.assignIndice
	}
	for i := range t.Zones {
		f.nextRowID++
		t.Zones[i].RowID = f.nextRowID
	}
	f.agency = append(f.agency, t)
	if f.echoOnly {
		return nil, nil
	}
	out := t.Clone()
	return &out, nil
}

func (f *fakeGateway) UpdateSimpleTariff(_ context.Context, t domain.SimpleTariff) (*domain.SimpleTariff, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit("UpdateSimpleTariff")
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	if i := domain.FindTariff(f.agency, t.Indice); i >= 0 {
		f.agency[i] = t.Clone()
	}
	if f.echoOnly {
		return nil, nil
	}
	out := t.Clone()
	return &out, nil
}

// removeRow drops a zone row from the agency catalog, and its tier once empty.
func (f *fakeGateway) removeRow(rowID int64) {
	for i := range f.agency {
		zones := f.agency[i].Zones[:0]
		for _, z := range f.agency[i].Zones {
			if z.RowID != rowID {
				zones = append(zones, z)
			}
		}
		f.agency[i].Zones = zones
	}
	kept := f.agency[:0]
	for _, t := range f.agency {
		if len(t.Zones) > 0 {
			kept = append(kept, t)
		}
	}
	f.agency = kept
}

func (f *fakeGateway) DeleteSimpleTariffZone(_ context.Context, rowID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit("DeleteSimpleTariffZone")
	if err := f.failRows[rowID]; err != nil {
		return err
	}
	f.removeRow(rowID)
	return nil
}

func (f *fakeGateway) ToggleSimpleTariffZone(_ context.Context, rowID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit("ToggleSimpleTariffZone")
	if err := f.failRows[rowID]; err != nil {
		return err
	}
	for i := range f.agency {
		for j := range f.agency[i].Zones {
			if f.agency[i].Zones[j].RowID == rowID {
				f.agency[i].Zones[j].Active = !f.agency[i].Zones[j].Active
			}
		}
	}
	return nil
}

func (f *fakeGateway) ListBaseGroupageRates(context.Context) ([]domain.GroupageRate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit("ListBaseGroupageRates")
	return append([]domain.GroupageRate(nil), f.baseRates...), nil
}

func (f *fakeGateway) ListAgencyGroupageRates(context.Context) ([]domain.GroupageRate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit("ListAgencyGroupageRates")
	return append([]domain.GroupageRate(nil), f.agencyRates...), nil
}

func (f *fakeGateway) CreateGroupageRate(_ context.Context, baseRateID int64, markup float64) (*domain.GroupageRate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit("CreateGroupageRate")
	if f.failRate != nil {
		return nil, f.failRate
	}
	var r domain.GroupageRate
	for _, b := range f.baseRates {
		if b.ID == baseRateID {
			r = b.ImportCandidate(markup)
		}
	}
	f.nextRateID++
	r.ID = f.nextRateID
	f.agencyRates = append(f.agencyRates, r)
	if f.echoOnly {
		return nil, nil
	}
	return &r, nil
}

func (f *fakeGateway) UpdateGroupageRate(_ context.Context, id int64, markup float64) (*domain.GroupageRate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit("UpdateGroupageRate")
	if f.failRate != nil {
		return nil, f.failRate
	}
	i := domain.FindRate(f.agencyRates, id)
	if i < 0 {
		return nil, &domain.ServerError{Status: 404, Message: "Tarif introuvable"}
	}
	f.agencyRates[i] = f.agencyRates[i].WithMarkup(markup)
	r := f.agencyRates[i]
	return &r, nil
}

func (f *fakeGateway) DeleteGroupageRate(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit("DeleteGroupageRate")
	if f.failRate != nil {
		return f.failRate
	}
	if i := domain.FindRate(f.agencyRates, id); i >= 0 {
		f.agencyRates = append(f.agencyRates[:i], f.agencyRates[i+1:]...)
	}
	return nil
}

func (f *fakeGateway) ToggleGroupageRate(_ context.Context, id int64) (*domain.GroupageRate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit("ToggleGroupageRate")
	if f.failRate != nil {
		return nil, f.failRate
	}
	i := domain.FindRate(f.agencyRates, id)
	if i < 0 {
		return nil, &domain.ServerError{Status: 404, Message: "Tarif introuvable"}
	}
	f.agencyRates[i].Active = !f.agencyRates[i].Active
	if f.echoOnly {
		return nil, nil
	}
	r := f.agencyRates[i]
	return &r, nil
}

func (f *fakeGateway) SimulateExpedition(_ context.Context, req domain.ExpeditionRequest) (*domain.Quote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit("SimulateExpedition")
	f.lastExpedition = &req
	return &domain.Quote{BaseAmount: 10000, PrestationAmount: 1500, TotalAmount: 11500}, nil
}

func (f *fakeGateway) CreateExpedition(_ context.Context, req domain.ExpeditionRequest) (*domain.Expedition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit("CreateExpedition")
	f.lastExpedition = &req
	return &domain.Expedition{ID: 1, Reference: "EXP-0001", ShipmentKind: req.ShipmentKind, Colis: req.Colis, CreatedAt: time.Now()}, nil
}

func (f *fakeGateway) ListExpeditions(context.Context) ([]domain.Expedition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit("ListExpeditions")
	return []domain.Expedition{{ID: 1, Reference: "EXP-0001"}}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		ZoneCount:             8,
		DefaultGroupageMarkup: 15,
		CacheBaseCatalogTTL:   time.Minute,
		WorkspaceIdleTTL:      time.Minute,
		SessionTTL:            time.Hour,
	}
}

func testCache() cache.CacheService {
	return memcache.NewMemoryCache(time.Minute, time.Minute)
}

// zoneRows builds a tier whose zone i has id "i+1", row id firstRow+i.
func zoneRows(firstRow int64, base ...float64) []domain.ZonePrice {
	out := make([]domain.ZonePrice, len(base))
	for i, b := range base {
		out[i] = domain.ZonePrice{
			RowID:      firstRow + int64(i),
			ZoneID:     string(domain.IndiceFromInt(int64(i + 1))),
			ZoneName:   "Zone",
			BaseAmount: b,
			Active:     true,
		}
	}
	return out
}

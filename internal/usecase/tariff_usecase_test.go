package usecase_test

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"agence-dashboard/internal/catalog"
	"agence-dashboard/internal/domain"
	"agence-dashboard/internal/usecase"
)

func loadedWorkspace(t *testing.T, gw *fakeGateway) *usecase.TariffUsecase {
	t.Helper()
	uc := usecase.NewTariffUsecase(gw, testCache(), testConfig())
	if _, err := uc.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	return uc
}

func TestSaveNewTariffUsesNextIndice(t *testing.T) {
	gw := newFakeGateway()
	gw.base = []domain.SimpleTariff{{Indice: "1", Active: true, Zones: zoneRows(1, 10000, 20000)}}
	gw.agency = []domain.SimpleTariff{
		{Indice: "1", Active: true, Zones: zoneRows(11, 10000)},
		{Indice: "2", Active: true, Zones: zoneRows(21, 10000)},
		{Indice: "4", Active: true, Zones: zoneRows(41, 10000)},
	}
	uc := loadedWorkspace(t, gw)

	state, err := uc.SelectIndex("new")
	if err != nil {
		t.Fatalf("SelectIndex: %v", err)
	}
	if len(state.Selection.StagingZones) != 8 {
		t.Fatalf("expected 8 template zones, got %d", len(state.Selection.StagingZones))
	}
	if _, err := uc.UpdateZoneMarkup("1", 15); err != nil {
		t.Fatalf("UpdateZoneMarkup: %v", err)
	}

	state, err = uc.SaveTariff(context.Background())
	if err != nil {
		t.Fatalf("SaveTariff: %v", err)
	}
	if gw.count("CreateSimpleTariff") != 1 {
		t.Errorf("expected one create call")
	}
	if state.Selection.SelectedIndex != "5" || state.Selection.Phase != catalog.PhaseIdle {
		t.Errorf("selection = %+v", state.Selection)
	}
	if len(state.AgencyTariffs) != 4 || state.AgencyTariffs[3].Indice != "5" {
		t.Fatalf("agency tariffs = %+v", state.AgencyTariffs)
	}
	z := state.AgencyTariffs[3].Zones[0]
	if z.BaseAmount != 10000 || z.PrestationAmount != 1500 || z.TotalAmount != 11500 {
		t.Errorf("saved zone = %+v", z)
	}
}

func TestSaveKeepsServerAssignedIndice(t *testing.T) {
	gw := newFakeGateway()
	gw.base = []domain.SimpleTariff{{Indice: "1", Zones: zoneRows(1, 100)}}
	gw.assignIndice = "7"
	uc := loadedWorkspace(t, gw)

	uc.SelectIndex("new")
	state, err := uc.SaveTariff(context.Background())
	if err != nil {
		t.Fatalf("SaveTariff: %v", err)
	}
	if state.Selection.SelectedIndex != "7" {
		t.Errorf("expected server indice 7, got %q", state.Selection.SelectedIndex)
	}
	if _, ok := state.FindAgencyTariff("1"); ok {
		t.Errorf("client guess must not survive")
	}
}

func TestSaveFailureLeavesCatalogUntouched(t *testing.T) {
	gw := newFakeGateway()
	gw.base = []domain.SimpleTariff{{Indice: "1", Zones: zoneRows(1, 100, 200)}}
	gw.agency = []domain.SimpleTariff{{Indice: "1", Active: true, Zones: zoneRows(11, 100, 200)}}
	uc := loadedWorkspace(t, gw)
	before := uc.Snapshot()

	gw.saveErr = &domain.ServerError{Status: 422, Message: "Le pourcentage est invalide"}
	uc.UpdateZoneMarkup("2", 30)

	state, err := uc.SaveTariff(context.Background())
	if err == nil || err.Error() != "Le pourcentage est invalide" {
		t.Fatalf("expected verbatim server message, got %v", err)
	}
	if gw.count("UpdateSimpleTariff") != 1 {
		t.Errorf("expected an update, not a create")
	}
	if !reflect.DeepEqual(state.AgencyTariffs, before.AgencyTariffs) {
		t.Errorf("agency catalog changed after a failed save")
	}
	if state.Selection.Phase != catalog.PhaseError || state.Selection.Error != "Le pourcentage est invalide" {
		t.Errorf("selection = %+v", state.Selection)
	}
	// The edit is still there to retry.
	if state.Selection.StagingZones[1].MarkupPercent != 30 {
		t.Errorf("staging edit lost")
	}
	if _, err := uc.UpdateZoneMarkup("2", 20); err != nil {
		t.Errorf("error phase must stay editable: %v", err)
	}
}

func TestSavePublishedTierCreatesWithoutRowIDs(t *testing.T) {
	gw := newFakeGateway()
	gw.base = []domain.SimpleTariff{{Indice: "3", Zones: zoneRows(1, 100)}}
	uc := loadedWorkspace(t, gw)

	state, err := uc.SaveTariff(context.Background())
	if err != nil {
		t.Fatalf("SaveTariff: %v", err)
	}
	if gw.count("CreateSimpleTariff") != 1 {
		t.Fatalf("expected a create for a tier the agency does not have")
	}
	got, ok := state.FindAgencyTariff("3")
	if !ok || got.Zones[0].RowID == 1 {
		t.Errorf("created tier = %+v", got)
	}
}

func TestUpdateZoneMarkupValidation(t *testing.T) {
	gw := newFakeGateway()
	gw.base = []domain.SimpleTariff{{Indice: "1", Zones: zoneRows(1, 100)}}
	uc := loadedWorkspace(t, gw)

	if _, err := uc.UpdateZoneMarkup("99", 10); !domain.IsValidation(err) {
		t.Errorf("unknown zone: expected validation error, got %v", err)
	}
	if _, err := uc.UpdateZoneMarkup("1", -5); !domain.IsValidation(err) {
		t.Errorf("negative markup: expected validation error, got %v", err)
	}

	uc.CancelEditing()
	if _, err := uc.UpdateZoneMarkup("1", 10); !domain.IsValidation(err) {
		t.Errorf("after cancel: expected validation error, got %v", err)
	}
}

func TestSelectIndexNearestCarriesNotice(t *testing.T) {
	gw := newFakeGateway()
	gw.base = []domain.SimpleTariff{
		{Indice: "1", Zones: zoneRows(1, 100)},
		{Indice: "5", Zones: zoneRows(2, 100)},
	}
	uc := loadedWorkspace(t, gw)

	state, err := uc.SelectIndex("3")
	if err != nil {
		t.Fatalf("SelectIndex: %v", err)
	}
	if state.Selection.SelectedIndex != "1" {
		t.Errorf("expected tie to resolve to 1, got %q", state.Selection.SelectedIndex)
	}
	if state.Selection.Notice == nil || state.Selection.Notice.Level != domain.NoticeInfo {
		t.Errorf("expected info notice, got %+v", state.Selection.Notice)
	}
}

func TestDeleteTariffRemovesAllRows(t *testing.T) {
	gw := newFakeGateway()
	gw.agency = []domain.SimpleTariff{
		{Indice: "1", Active: true, Zones: zoneRows(11, 100, 200)},
		{Indice: "2", Active: true, Zones: zoneRows(21, 100)},
	}
	uc := loadedWorkspace(t, gw)

	state, err := uc.DeleteTariff(context.Background(), "1")
	if err != nil {
		t.Fatalf("DeleteTariff: %v", err)
	}
	if gw.count("DeleteSimpleTariffZone") != 2 {
		t.Errorf("expected one call per zone row")
	}
	if len(state.AgencyTariffs) != 1 || state.AgencyTariffs[0].Indice != "2" {
		t.Errorf("agency tariffs = %+v", state.AgencyTariffs)
	}
}

func TestDeleteTariffPartialFailureResyncs(t *testing.T) {
	gw := newFakeGateway()
	gw.agency = []domain.SimpleTariff{{Indice: "1", Active: true, Zones: zoneRows(11, 100, 200)}}
	gw.failRows[12] = &domain.ServerError{Status: 500, Message: "Erreur serveur"}
	uc := loadedWorkspace(t, gw)

	state, err := uc.DeleteTariff(context.Background(), "1")
	if !errors.Is(err, domain.ErrPartialFanOut) {
		t.Fatalf("expected partial failure, got %v", err)
	}
	if se, ok := domain.AsServerError(err); !ok || se.Message != "Erreur serveur" {
		t.Errorf("expected the row error to surface, got %v", err)
	}
	if gw.count("DeleteSimpleTariffZone") != 2 {
		t.Errorf("both rows must be attempted")
	}

	reloaded, err := uc.Reload(context.Background())
	if err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if !reflect.DeepEqual(state.AgencyTariffs, reloaded.AgencyTariffs) {
		t.Errorf("local state %+v differs from reload %+v", state.AgencyTariffs, reloaded.AgencyTariffs)
	}
	if len(state.AgencyTariffs) != 1 || len(state.AgencyTariffs[0].Zones) != 1 {
		t.Errorf("expected the surviving row only, got %+v", state.AgencyTariffs)
	}
}

func TestToggleStatus(t *testing.T) {
	gw := newFakeGateway()
	gw.agency = []domain.SimpleTariff{{Indice: "1", Active: true, Zones: zoneRows(11, 100, 200)}}
	uc := loadedWorkspace(t, gw)

	state, err := uc.ToggleStatus(context.Background(), "1")
	if err != nil {
		t.Fatalf("ToggleStatus: %v", err)
	}
	got := state.AgencyTariffs[0]
	if got.Active || got.Zones[0].Active || got.Zones[1].Active {
		t.Errorf("expected tier and zones inactive, got %+v", got)
	}
	if gw.count("ToggleSimpleTariffZone") != 2 {
		t.Errorf("expected one call per zone row")
	}
}

func TestDeleteUnknownTariff(t *testing.T) {
	uc := loadedWorkspace(t, newFakeGateway())
	if _, err := uc.DeleteTariff(context.Background(), "9"); !domain.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestBaseCatalogIsCached(t *testing.T) {
	gw := newFakeGateway()
	gw.base = []domain.SimpleTariff{{Indice: "1", Zones: zoneRows(1, 100)}}
	uc := usecase.NewTariffUsecase(gw, testCache(), testConfig())
	ctx := context.Background()

	uc.LoadBaseTariffs(ctx)
	uc.LoadBaseTariffs(ctx)
	if n := gw.count("ListBaseSimpleTariffs"); n != 1 {
		t.Errorf("expected 1 fetch, got %d", n)
	}

	uc.Reload(ctx)
	if n := gw.count("ListBaseSimpleTariffs"); n != 2 {
		t.Errorf("reload must bypass the cache, got %d fetches", n)
	}
}

func TestResetClearsWorkspace(t *testing.T) {
	gw := newFakeGateway()
	gw.base = []domain.SimpleTariff{{Indice: "1", Zones: zoneRows(1, 100)}}
	uc := loadedWorkspace(t, gw)

	state := uc.Reset()
	if !reflect.DeepEqual(state, catalog.NewState(8)) {
		t.Errorf("expected empty state, got %+v", state)
	}
}

func TestSaveUpdateWithoutPayloadKeepsStagedZones(t *testing.T) {
	gw := newFakeGateway()
	gw.base = []domain.SimpleTariff{{Indice: "1", Zones: zoneRows(1, 10000, 20000, 30000)}}
	gw.agency = []domain.SimpleTariff{{Indice: "1", Active: true, Zones: zoneRows(11, 10000, 20000, 30000)}}
	gw.echoOnly = true
	uc := loadedWorkspace(t, gw)

	if _, err := uc.UpdateZoneMarkup("2", 25); err != nil {
		t.Fatalf("UpdateZoneMarkup: %v", err)
	}
	staged := domain.NormalizeZones(uc.Snapshot().Selection.StagingZones)

	state, err := uc.SaveTariff(context.Background())
	if err != nil {
		t.Fatalf("SaveTariff: %v", err)
	}
	if gw.count("UpdateSimpleTariff") != 1 {
		t.Fatalf("expected one update call")
	}
	got, ok := state.FindAgencyTariff("1")
	if !ok || len(got.Zones) != 3 {
		t.Fatalf("agency tier = %+v", got)
	}
	if !reflect.DeepEqual(got.Zones, staged) {
		t.Errorf("saved zones %+v, staged %+v", got.Zones, staged)
	}
	if z := got.Zones[1]; z.RowID != 12 || z.MarkupPercent != 25 || z.TotalAmount != 25000 {
		t.Errorf("edited zone = %+v", z)
	}
	if state.Selection.Phase != catalog.PhaseIdle || state.Selection.Dirty {
		t.Errorf("selection = %+v", state.Selection)
	}
}

func TestSaveCreateWithoutPayloadFetchesRowIDs(t *testing.T) {
	gw := newFakeGateway()
	gw.base = []domain.SimpleTariff{{Indice: "1", Zones: zoneRows(1, 10000, 20000)}}
	gw.echoOnly = true
	uc := loadedWorkspace(t, gw)

	state, err := uc.SaveTariff(context.Background())
	if err != nil {
		t.Fatalf("SaveTariff: %v", err)
	}
	got, ok := state.FindAgencyTariff("1")
	if !ok || len(got.Zones) != 2 {
		t.Fatalf("agency tier = %+v", got)
	}
	for _, z := range got.Zones {
		if z.RowID == 0 || z.RowID == 1 || z.RowID == 2 {
			t.Errorf("zone %s kept row id %d", z.ZoneID, z.RowID)
		}
	}
	if !reflect.DeepEqual(state.Selection.StagingZones, got.Zones) {
		t.Errorf("staging %+v, saved %+v", state.Selection.StagingZones, got.Zones)
	}

	// The created tier is usable right away.
	if _, err := uc.ToggleStatus(context.Background(), "1"); err != nil {
		t.Errorf("ToggleStatus: %v", err)
	}
}

func TestConcurrentSaveIsRefused(t *testing.T) {
	gw := newFakeGateway()
	gw.base = []domain.SimpleTariff{{Indice: "1", Zones: zoneRows(1, 100)}}
	gw.entered = make(chan struct{}, 1)
	gw.release = make(chan struct{})
	uc := loadedWorkspace(t, gw)
	uc.SelectIndex("new")

	first := make(chan error, 1)
	go func() {
		_, err := uc.SaveTariff(context.Background())
		first <- err
	}()

	select {
	case <-gw.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("first save never reached the server")
	}

	state, err := uc.SaveTariff(context.Background())
	if !domain.IsValidation(err) {
		t.Errorf("expected the second save to be refused, got %v", err)
	}
	if state.Selection.Phase != catalog.PhaseSaving {
		t.Errorf("phase = %q", state.Selection.Phase)
	}

	close(gw.release)
	if err := <-first; err != nil {
		t.Fatalf("first save: %v", err)
	}
	if n := gw.count("CreateSimpleTariff"); n != 1 {
		t.Errorf("expected one create call, got %d", n)
	}
	if state := uc.Snapshot(); len(state.AgencyTariffs) != 1 {
		t.Errorf("agency tariffs = %+v", state.AgencyTariffs)
	}
}

func TestToggleStatusFlipsEachRow(t *testing.T) {
	gw := newFakeGateway()
	zones := zoneRows(11, 100, 200, 300)
	zones[1].Active = false
	gw.agency = []domain.SimpleTariff{{Indice: "1", Active: true, Zones: zones}}
	uc := loadedWorkspace(t, gw)

	state, err := uc.ToggleStatus(context.Background(), "1")
	if err != nil {
		t.Fatalf("ToggleStatus: %v", err)
	}
	got := state.AgencyTariffs[0]
	if got.Zones[0].Active || !got.Zones[1].Active || got.Zones[2].Active || !got.Active {
		t.Errorf("expected rows flipped individually, got %+v", got)
	}

	reloaded, err := uc.Reload(context.Background())
	if err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if !reflect.DeepEqual(state.AgencyTariffs, reloaded.AgencyTariffs) {
		t.Errorf("local state %+v differs from server %+v", state.AgencyTariffs, reloaded.AgencyTariffs)
	}
}

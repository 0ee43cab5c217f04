package usecase_test

import (
	"context"
	"testing"

	"agence-dashboard/internal/domain"
	"agence-dashboard/internal/usecase"
)

func groupageWorkspace(t *testing.T, gw *fakeGateway) *usecase.TariffUsecase {
	t.Helper()
	uc := usecase.NewTariffUsecase(gw, testCache(), testConfig())
	if _, err := uc.ReloadGroupage(context.Background()); err != nil {
		t.Fatalf("ReloadGroupage: %v", err)
	}
	return uc
}

func baseRate(id int64, amount float64) domain.GroupageRate {
	return domain.GroupageRate{
		ID:            id,
		Category:      "Colis",
		Country:       "France",
		TransportMode: "aerien",
		ShipmentKind:  domain.ShipmentGroupageCA,
		BaseAmount:    amount,
		Active:        true,
	}
}

func TestCreateAgencyRateWithoutBaseMakesNoCall(t *testing.T) {
	gw := newFakeGateway()
	uc := groupageWorkspace(t, gw)

	state, err := uc.CreateAgencyRate(context.Background(), 0, 10)
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if gw.count("CreateGroupageRate") != 0 {
		t.Errorf("no request may be sent without a base rate")
	}
	if state.GroupageError == "" {
		t.Errorf("expected the error on the groupage state")
	}
}

func TestImportThenCreateMergesByID(t *testing.T) {
	gw := newFakeGateway()
	gw.baseRates = []domain.GroupageRate{baseRate(7, 2000)}
	uc := groupageWorkspace(t, gw)
	ctx := context.Background()

	state, err := uc.ImportFromBase(7, nil)
	if err != nil {
		t.Fatalf("ImportFromBase: %v", err)
	}
	c := state.Candidate
	if c == nil || c.BaseRateID != 7 || c.MarkupPercent != 15 || c.PrestationAmount != 300 || c.TotalAmount != 2300 {
		t.Fatalf("candidate = %+v", c)
	}

	state, err = uc.CreateAgencyRate(ctx, 7, c.MarkupPercent)
	if err != nil {
		t.Fatalf("CreateAgencyRate: %v", err)
	}
	if state.Candidate != nil {
		t.Errorf("candidate should be cleared once created")
	}
	if len(state.AgencyRates) != 1 {
		t.Fatalf("agency rates = %+v", state.AgencyRates)
	}
	id := state.AgencyRates[0].ID

	state, err = uc.UpdateAgencyRate(ctx, id, 20)
	if err != nil {
		t.Fatalf("UpdateAgencyRate: %v", err)
	}
	if len(state.AgencyRates) != 1 {
		t.Fatalf("update must replace in place, got %+v", state.AgencyRates)
	}
	if r := state.AgencyRates[0]; r.MarkupPercent != 20 || r.PrestationAmount != 400 || r.TotalAmount != 2400 {
		t.Errorf("updated rate = %+v", r)
	}
}

func TestCreateAgencyRateWithoutEchoReloads(t *testing.T) {
	gw := newFakeGateway()
	gw.baseRates = []domain.GroupageRate{baseRate(7, 1000)}
	gw.echoOnly = true
	uc := groupageWorkspace(t, gw)

	uc.ImportFromBase(7, nil)
	state, err := uc.CreateAgencyRate(context.Background(), 7, 15)
	if err != nil {
		t.Fatalf("CreateAgencyRate: %v", err)
	}
	if len(state.AgencyRates) != 1 || state.AgencyRates[0].ID == 0 {
		t.Errorf("agency rates = %+v", state.AgencyRates)
	}
	if state.Candidate != nil {
		t.Errorf("candidate should be cleared")
	}
}

func TestGroupageFailureKeepsCatalog(t *testing.T) {
	gw := newFakeGateway()
	gw.agencyRates = []domain.GroupageRate{baseRate(31, 1000)}
	uc := groupageWorkspace(t, gw)

	gw.failRate = &domain.ServerError{Status: 400, Message: "Tarif verrouillé"}
	state, err := uc.DeleteAgencyRate(context.Background(), 31)
	if err == nil || err.Error() != "Tarif verrouillé" {
		t.Fatalf("expected verbatim message, got %v", err)
	}
	if len(state.AgencyRates) != 1 || state.GroupageError != "Tarif verrouillé" {
		t.Errorf("state = %+v", state)
	}
}

func TestDeleteAndToggleAgencyRate(t *testing.T) {
	gw := newFakeGateway()
	gw.agencyRates = []domain.GroupageRate{baseRate(31, 1000), baseRate(32, 1000)}
	gw.echoOnly = true
	uc := groupageWorkspace(t, gw)
	ctx := context.Background()

	state, err := uc.ToggleAgencyRateStatus(ctx, 32)
	if err != nil {
		t.Fatalf("ToggleAgencyRateStatus: %v", err)
	}
	if state.AgencyRates[1].Active {
		t.Errorf("expected rate 32 inactive")
	}

	state, err = uc.DeleteAgencyRate(ctx, 31)
	if err != nil {
		t.Fatalf("DeleteAgencyRate: %v", err)
	}
	if len(state.AgencyRates) != 1 || state.AgencyRates[0].ID != 32 {
		t.Errorf("agency rates = %+v", state.AgencyRates)
	}
}

func TestImportUnknownBaseRate(t *testing.T) {
	uc := groupageWorkspace(t, newFakeGateway())
	if _, err := uc.ImportFromBase(99, nil); !domain.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

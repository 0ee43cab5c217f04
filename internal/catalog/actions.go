package catalog

import "agence-dashboard/internal/domain"

// Action is a state transition request. The set is closed: only types in
// this file implement it.
type Action interface {
	isAction()
}

// Scope tells which engine an OperationFailed belongs to.
type Scope string

const (
	ScopeSimple   Scope = "simple"
	ScopeGroupage Scope = "groupage"
)

type (
	BaseTariffsLoaded   struct{ Tariffs []domain.SimpleTariff }
	AgencyTariffsLoaded struct{ Tariffs []domain.SimpleTariff }

	IndexSelected     struct{ Requested domain.Indice }
	ZoneMarkupChanged struct {
		ZoneID  string
		Percent float64
	}
	SaveStarted      struct{}
	EditingCancelled struct{}

	TariffCreated       struct{ Tariff domain.SimpleTariff }
	TariffUpdated       struct{ Tariff domain.SimpleTariff }
	TariffRemoved       struct{ Indice domain.Indice }
	// TariffStatusToggled flips each zone row of a tier on its own, the way
	// the server toggles them.
	TariffStatusToggled struct{ Indice domain.Indice }

	BaseRatesLoaded   struct{ Rates []domain.GroupageRate }
	AgencyRatesLoaded struct{ Rates []domain.GroupageRate }
	RateImported      struct{ Candidate domain.GroupageRate }
	RateUpserted      struct {
		Rate          domain.GroupageRate
		FromCandidate bool
	}
	RateRemoved struct{ ID int64 }

	OperationFailed struct {
		Scope   Scope
		Message string
	}
	WorkspaceReset struct{}
)

func (BaseTariffsLoaded) isAction()   {}
func (AgencyTariffsLoaded) isAction() {}
func (IndexSelected) isAction()       {}
func (ZoneMarkupChanged) isAction()   {}
func (SaveStarted) isAction()         {}
func (EditingCancelled) isAction()    {}
func (TariffCreated) isAction()       {}
func (TariffUpdated) isAction()       {}
func (TariffRemoved) isAction()       {}
func (TariffStatusToggled) isAction() {}
func (BaseRatesLoaded) isAction()     {}
func (AgencyRatesLoaded) isAction()   {}
func (RateImported) isAction()        {}
func (RateUpserted) isAction()        {}
func (RateRemoved) isAction()         {}
func (OperationFailed) isAction()     {}
func (WorkspaceReset) isAction()      {}

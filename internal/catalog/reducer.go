package catalog

import (
	"fmt"

	"agence-dashboard/internal/domain"
)

// Reduce returns the state that results from applying a to s. It never
// mutates s: the result shares no slices with its input.
func Reduce(s State, a Action) State {
	next := s.Clone()

	switch act := a.(type) {
	case BaseTariffsLoaded:
		next.BaseTariffs = normalizeTariffs(act.Tariffs)
		refreshSelection(&next)
		selectDefault(&next)

	case AgencyTariffsLoaded:
		next.AgencyTariffs = normalizeTariffs(act.Tariffs)
		refreshSelection(&next)
		selectDefault(&next)

	case IndexSelected:
		selectIndex(&next, act.Requested)

	case ZoneMarkupChanged:
		if !next.Selection.Editable() {
			return next
		}
		for i, z := range next.Selection.StagingZones {
			if z.ZoneID == act.ZoneID {
				next.Selection.StagingZones[i] = z.WithMarkup(act.Percent)
				break
			}
		}
		next.Selection.Phase = PhaseEditing
		next.Selection.Error = ""
		next.Selection.Dirty = true

	case SaveStarted:
		next.Selection.Phase = PhaseSaving
		next.Selection.Error = ""
		next.Selection.Notice = nil

	case EditingCancelled:
		next.Selection = Selection{Phase: PhaseIdle}

	case TariffCreated:
		// The server may answer a create with an indice the agency already
		// holds; the catalog never carries the same tier twice.
		t := normalizeTariff(act.Tariff)
		upsertTariff(&next, t)
		settle(&next, t)

	case TariffUpdated:
		t := normalizeTariff(act.Tariff)
		upsertTariff(&next, t)
		settle(&next, t)

	case TariffRemoved:
		if i := domain.FindTariff(next.AgencyTariffs, act.Indice); i >= 0 {
			next.AgencyTariffs = append(next.AgencyTariffs[:i], next.AgencyTariffs[i+1:]...)
		}
		if next.Selection.SelectedIndex.Equal(act.Indice) {
			next.Selection = Selection{Phase: PhaseIdle}
		}

	case TariffStatusToggled:
		if i := domain.FindTariff(next.AgencyTariffs, act.Indice); i >= 0 {
			t := &next.AgencyTariffs[i]
			if len(t.Zones) == 0 {
				t.Active = !t.Active
				break
			}
			t.Active = false
			for j := range t.Zones {
				t.Zones[j].Active = !t.Zones[j].Active
				t.Active = t.Active || t.Zones[j].Active
			}
		}

	case BaseRatesLoaded:
		next.BaseRates = domain.NormalizeRates(act.Rates)

	case AgencyRatesLoaded:
		next.AgencyRates = domain.NormalizeRates(act.Rates)

	case RateImported:
		c := act.Candidate
		c.Recompute()
		next.Candidate = &c
		next.GroupageError = ""

	case RateUpserted:
		r := act.Rate
		r.Recompute()
		if i := domain.FindRate(next.AgencyRates, r.ID); i >= 0 {
			next.AgencyRates[i] = r
		} else {
			next.AgencyRates = append(next.AgencyRates, r)
		}
		if act.FromCandidate {
			next.Candidate = nil
		}
		next.GroupageError = ""

	case RateRemoved:
		if i := domain.FindRate(next.AgencyRates, act.ID); i >= 0 {
			next.AgencyRates = append(next.AgencyRates[:i], next.AgencyRates[i+1:]...)
		}
		next.GroupageError = ""

	case OperationFailed:
		switch act.Scope {
		case ScopeSimple:
			if next.Selection.Phase == PhaseSaving {
				next.Selection.Phase = PhaseError
			}
			next.Selection.Error = act.Message
		case ScopeGroupage:
			next.GroupageError = act.Message
		}

	case WorkspaceReset:
		return NewState(s.ZoneCount)
	}

	return next
}

// refreshSelection re-syncs an untouched buffer with a reloaded catalog.
// Edited or in-flight buffers are left alone; a tier that disappeared
// clears the selection.
func refreshSelection(s *State) {
	sel := s.Selection
	if sel.Dirty || sel.Phase == PhaseSaving || sel.SelectedIndex.IsZero() || sel.SelectedIndex.IsNew() {
		return
	}
	if domain.FindTariff(s.AgencyTariffs, sel.SelectedIndex) < 0 && domain.FindTariff(s.BaseTariffs, sel.SelectedIndex) < 0 {
		s.Selection = Selection{Phase: PhaseIdle}
		return
	}
	s.Selection.StagingZones = stagingZonesFor(*s, sel.SelectedIndex)
}

// selectDefault picks the first tier when nothing is selected yet.
func selectDefault(s *State) {
	if !s.Selection.SelectedIndex.IsZero() {
		return
	}
	tiers := selectableTiers(*s)
	if len(tiers) == 0 {
		return
	}
	selectIndex(s, tiers[0].Indice)
	// A default selection is not a substitution the user asked for.
	s.Selection.Notice = nil
}

func selectIndex(s *State, requested domain.Indice) {
	if requested.IsNew() {
		var reference []domain.ZonePrice
		if len(s.BaseTariffs) > 0 {
			reference = s.BaseTariffs[0].Zones
		}
		s.Selection = Selection{
			SelectedIndex: domain.IndiceNew,
			StagingZones:  domain.ZoneTemplate(s.ZoneCount, reference),
			Phase:         PhaseEditing,
		}
		return
	}

	tiers := selectableTiers(*s)
	resolved, exact, ok := domain.NearestIndice(domain.Indices(tiers), requested)
	if !ok {
		s.Selection.Notice = &domain.Notice{
			Level:   domain.NoticeWarning,
			Message: "no tariff tier is loaded yet",
		}
		return
	}

	sel := Selection{
		SelectedIndex: resolved,
		StagingZones:  stagingZonesFor(*s, resolved),
		Phase:         PhaseEditing,
	}
	if !exact {
		sel.Notice = &domain.Notice{
			Level:   domain.NoticeInfo,
			Message: fmt.Sprintf("tier %s does not exist, showing nearest tier %s", requested, resolved),
		}
	}
	s.Selection = sel
}

// selectableTiers is the catalog selection resolves against: the published
// tiers, or the agency ones while the published catalog is empty.
func selectableTiers(s State) []domain.SimpleTariff {
	if len(s.BaseTariffs) > 0 {
		return s.BaseTariffs
	}
	return s.AgencyTariffs
}

// stagingZonesFor copies the zones to edit for a tier: the agency's own
// version when it exists, so its markups carry over, else the published one.
func stagingZonesFor(s State, indice domain.Indice) []domain.ZonePrice {
	if i := domain.FindTariff(s.AgencyTariffs, indice); i >= 0 {
		return domain.CloneZones(s.AgencyTariffs[i].Zones)
	}
	if i := domain.FindTariff(s.BaseTariffs, indice); i >= 0 {
		return domain.CloneZones(s.BaseTariffs[i].Zones)
	}
	return []domain.ZonePrice{}
}

// settle finishes a successful save: the saved tier becomes the selection
// and the buffer mirrors what the server stored.
func settle(s *State, t domain.SimpleTariff) {
	s.Selection = Selection{
		SelectedIndex: t.Indice,
		StagingZones:  domain.CloneZones(t.Zones),
		Phase:         PhaseIdle,
	}
}

func upsertTariff(s *State, t domain.SimpleTariff) {
	if i := domain.FindTariff(s.AgencyTariffs, t.Indice); i >= 0 {
		s.AgencyTariffs[i].Zones = domain.CloneZones(t.Zones)
		s.AgencyTariffs[i].Active = t.Active
		return
	}
	s.AgencyTariffs = append(s.AgencyTariffs, t.Clone())
}

func normalizeTariffs(in []domain.SimpleTariff) []domain.SimpleTariff {
	out := make([]domain.SimpleTariff, len(in))
	for i, t := range in {
		out[i] = normalizeTariff(t)
	}
	return out
}

func normalizeTariff(t domain.SimpleTariff) domain.SimpleTariff {
	t.Zones = domain.NormalizeZones(t.Zones)
	if t.Zones == nil {
		t.Zones = []domain.ZonePrice{}
	}
	return t
}

// Package catalog holds the tariff workspace state of one dashboard session:
// the published and agency catalogs of both engines and the editing buffer.
// State only changes through Reduce.
package catalog

import "agence-dashboard/internal/domain"

// Phase is the editing lifecycle of the simple tariff buffer.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseEditing Phase = "editing"
	PhaseSaving  Phase = "saving"
	PhaseError   Phase = "error"
)

// Selection is the staging buffer: the tier being edited and a working copy
// of its zones. StagingZones always mirrors the selected tier, or a fresh
// zero-markup set when SelectedIndex is "new".
type Selection struct {
	SelectedIndex domain.Indice      `json:"selectedIndex,omitempty"`
	StagingZones  []domain.ZonePrice `json:"stagingZones"`
	Phase         Phase              `json:"phase"`
	Notice        *domain.Notice     `json:"notice,omitempty"`
	Error         string             `json:"error,omitempty"`
	// Dirty is set once a markup was edited; a reload no longer overwrites
	// the buffer after that.
	Dirty bool `json:"dirty"`
}

// Editable reports whether local markup edits are accepted.
func (s Selection) Editable() bool {
	return !s.SelectedIndex.IsZero() && s.Phase != PhaseSaving
}

func (s Selection) clone() Selection {
	s.StagingZones = domain.CloneZones(s.StagingZones)
	if s.Notice != nil {
		n := *s.Notice
		s.Notice = &n
	}
	return s
}

type State struct {
	// ZoneCount is the zone cardinality of a new simple tier.
	ZoneCount int `json:"zoneCount"`

	BaseTariffs   []domain.SimpleTariff `json:"baseTariffs"`
	AgencyTariffs []domain.SimpleTariff `json:"agencyTariffs"`
	Selection     Selection             `json:"selection"`

	BaseRates     []domain.GroupageRate `json:"baseRates"`
	AgencyRates   []domain.GroupageRate `json:"agencyRates"`
	Candidate     *domain.GroupageRate  `json:"candidate,omitempty"`
	GroupageError string                `json:"groupageError,omitempty"`
}

// NewState returns the empty state of a freshly opened session.
func NewState(zoneCount int) State {
	return State{
		ZoneCount: zoneCount,
		Selection: Selection{Phase: PhaseIdle},
	}
}

// Clone returns a deep copy sharing no slices with s.
func (s State) Clone() State {
	s.BaseTariffs = cloneTariffs(s.BaseTariffs)
	s.AgencyTariffs = cloneTariffs(s.AgencyTariffs)
	s.Selection = s.Selection.clone()
	s.BaseRates = cloneRates(s.BaseRates)
	s.AgencyRates = cloneRates(s.AgencyRates)
	if s.Candidate != nil {
		c := *s.Candidate
		s.Candidate = &c
	}
	return s
}

func cloneTariffs(in []domain.SimpleTariff) []domain.SimpleTariff {
	if in == nil {
		return nil
	}
	out := make([]domain.SimpleTariff, len(in))
	for i, t := range in {
		out[i] = t.Clone()
	}
	return out
}

func cloneRates(in []domain.GroupageRate) []domain.GroupageRate {
	if in == nil {
		return nil
	}
	out := make([]domain.GroupageRate, len(in))
	copy(out, in)
	return out
}

// FindAgencyTariff returns the agency tier matching indice.
func (s State) FindAgencyTariff(indice domain.Indice) (domain.SimpleTariff, bool) {
	if i := domain.FindTariff(s.AgencyTariffs, indice); i >= 0 {
		return s.AgencyTariffs[i], true
	}
	return domain.SimpleTariff{}, false
}

// FindBaseRate returns the published groupage rate with the given id.
func (s State) FindBaseRate(id int64) (domain.GroupageRate, bool) {
	if i := domain.FindRate(s.BaseRates, id); i >= 0 {
		return s.BaseRates[i], true
	}
	return domain.GroupageRate{}, false
}

// FindAgencyRate returns the agency groupage rate with the given id.
func (s State) FindAgencyRate(id int64) (domain.GroupageRate, bool) {
	if i := domain.FindRate(s.AgencyRates, id); i >= 0 {
		return s.AgencyRates[i], true
	}
	return domain.GroupageRate{}, false
}

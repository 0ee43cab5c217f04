package domain

// GroupageRate is one consolidated-shipment price record.
type GroupageRate struct {
	// ID is the upstream identity; zero for a candidate not yet imported.
	ID int64 `json:"id,omitempty"`
	// BaseRateID points an agency rate at the published rate it was cloned from.
	BaseRateID       int64        `json:"baseRateId,omitempty"`
	Category         string       `json:"category"`
	Country          string       `json:"country"`
	TransportMode    string       `json:"transportMode"`
	Line             string       `json:"line"`
	ShipmentKind     ShipmentKind `json:"shipmentKind"`
	BaseAmount       float64      `json:"baseAmount"`
	MarkupPercent    float64      `json:"markupPercent"`
	PrestationAmount float64      `json:"prestationAmount"`
	TotalAmount      float64      `json:"totalAmount"`
	Active           bool         `json:"active"`
}

// Recompute refreshes the derived amounts with the groupage policy.
func (r *GroupageRate) Recompute() {
	r.BaseAmount = finiteOrZero(r.BaseAmount)
	r.MarkupPercent = finiteOrZero(r.MarkupPercent)
	if r.MarkupPercent < 0 {
		r.MarkupPercent = 0
	}
	d := Derive(r.BaseAmount, r.MarkupPercent, RoundUnits)
	r.PrestationAmount = d.PrestationAmount
	r.TotalAmount = d.TotalAmount
}

// WithMarkup returns a copy carrying the new markup and its derived amounts.
func (r GroupageRate) WithMarkup(percent float64) GroupageRate {
	r.MarkupPercent = percent
	r.Recompute()
	return r
}

// DisplayCategory is the category, or the fallback for its shipment kind.
func (r GroupageRate) DisplayCategory() string {
	if r.Category != "" {
		return r.Category
	}
	if name, ok := CategoryFallbacks[r.ShipmentKind]; ok {
		return name
	}
	return DefaultCategory
}

// ImportCandidate clones the identifying fields and base amount of a
// published rate into an agency rate proposal with the given markup.
func (r GroupageRate) ImportCandidate(percent float64) GroupageRate {
	c := r
	c.ID = 0
	c.BaseRateID = r.ID
	c.Active = true
	return c.WithMarkup(percent)
}

// NormalizeRates returns a copy of rates with derived fields recomputed.
func NormalizeRates(rates []GroupageRate) []GroupageRate {
	if rates == nil {
		return nil
	}
	out := make([]GroupageRate, len(rates))
	copy(out, rates)
	for i := range out {
		out[i].Recompute()
	}
	return out
}

// FindRate returns the index of the rate with the given id, or -1.
func FindRate(rates []GroupageRate, id int64) int {
	for i, r := range rates {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// RateGroup gathers the transport-mode variants sharing a display key.
type RateGroup struct {
	GroupKey     string         `json:"groupKey"`
	Category     string         `json:"category"`
	Country      string         `json:"country"`
	ShipmentKind ShipmentKind   `json:"shipmentKind"`
	Modes        []GroupageRate `json:"modes"`
}

// GroupKey is "category-country-shipmentKind", using the display category.
func GroupKey(r GroupageRate) string {
	return r.DisplayCategory() + "-" + r.Country + "-" + string(r.ShipmentKind)
}

// GroupBy groups rates by GroupKey. Groups appear in first-seen order and
// each group keeps its modes in input order.
func GroupBy(rates []GroupageRate) []RateGroup {
	groups := make([]RateGroup, 0)
	pos := make(map[string]int)

	for _, r := range rates {
		key := GroupKey(r)
		i, ok := pos[key]
		if !ok {
			i = len(groups)
			pos[key] = i
			groups = append(groups, RateGroup{
				GroupKey:     key,
				Category:     r.DisplayCategory(),
				Country:      r.Country,
				ShipmentKind: r.ShipmentKind,
			})
		}
		groups[i].Modes = append(groups[i].Modes, r)
	}
	return groups
}

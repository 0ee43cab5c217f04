package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Indice identifies a simple tariff tier. Published tiers are numeric, but
// the value travels as text so "3" and 3 compare equal.
type Indice string

// IndiceNew marks a tier being created that has no number yet.
const IndiceNew Indice = "new"

// IndiceFromInt formats a numeric tier.
func IndiceFromInt(n int64) Indice {
	return Indice(strconv.FormatInt(n, 10))
}

func (i Indice) IsNew() bool {
	return strings.EqualFold(strings.TrimSpace(string(i)), string(IndiceNew))
}

func (i Indice) IsZero() bool {
	return strings.TrimSpace(string(i)) == ""
}

// Number returns the numeric value of the tier, if it has one.
func (i Indice) Number() (float64, bool) {
	s := strings.TrimSpace(string(i))
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Equal compares numerically when both sides are numbers, textually otherwise.
func (i Indice) Equal(other Indice) bool {
	a, okA := i.Number()
	b, okB := other.Number()
	if okA && okB {
		return a == b
	}
	return strings.TrimSpace(string(i)) == strings.TrimSpace(string(other))
}

type ShipmentKind string

// ZonePrice is the price of one destination zone inside a simple tariff.
type ZonePrice struct {
	// RowID is the upstream id of the zone row; deletion and status toggles
	// are addressed per row.
	RowID            int64   `json:"rowId,omitempty"`
	ZoneID           string  `json:"zoneId"`
	ZoneName         string  `json:"zoneName"`
	BaseAmount       float64 `json:"baseAmount"`
	MarkupPercent    float64 `json:"markupPercent"`
	PrestationAmount float64 `json:"prestationAmount"`
	TotalAmount      float64 `json:"totalAmount"`
	Active           bool    `json:"active"`
}

// Recompute refreshes the derived amounts with the simple tariff policy.
func (z *ZonePrice) Recompute() {
	d := Derive(z.BaseAmount, z.MarkupPercent, RoundCents)
	z.PrestationAmount = d.PrestationAmount
	z.TotalAmount = d.TotalAmount
}

// WithMarkup returns a copy carrying the new markup and its derived amounts.
func (z ZonePrice) WithMarkup(percent float64) ZonePrice {
	z.MarkupPercent = finiteOrZero(percent)
	z.Recompute()
	return z
}

// SimpleTariff is one price tier: a price per destination zone.
type SimpleTariff struct {
	Indice Indice      `json:"indice"`
	Active bool        `json:"active"`
	Zones  []ZonePrice `json:"zones"`
}

// Clone returns a deep copy.
func (t SimpleTariff) Clone() SimpleTariff {
	t.Zones = CloneZones(t.Zones)
	return t
}

// RowIDs lists the upstream zone rows owned by the tariff.
func (t SimpleTariff) RowIDs() []int64 {
	ids := make([]int64, 0, len(t.Zones))
	for _, z := range t.Zones {
		if z.RowID != 0 {
			ids = append(ids, z.RowID)
		}
	}
	return ids
}

// Zone finds a zone by id.
func (t SimpleTariff) Zone(zoneID string) (ZonePrice, bool) {
	for _, z := range t.Zones {
		if z.ZoneID == zoneID {
			return z, true
		}
	}
	return ZonePrice{}, false
}

func CloneZones(zones []ZonePrice) []ZonePrice {
	if zones == nil {
		return nil
	}
	out := make([]ZonePrice, len(zones))
	copy(out, zones)
	return out
}

// NormalizeZones returns a copy of zones with negative amounts cleared and
// derived fields recomputed.
func NormalizeZones(zones []ZonePrice) []ZonePrice {
	out := CloneZones(zones)
	for i := range out {
		out[i].BaseAmount = finiteOrZero(out[i].BaseAmount)
		out[i].MarkupPercent = finiteOrZero(out[i].MarkupPercent)
		if out[i].MarkupPercent < 0 {
			out[i].MarkupPercent = 0
		}
		out[i].Recompute()
	}
	return out
}

// FindTariff returns the index of the tier matching indice, or -1.
func FindTariff(tariffs []SimpleTariff, indice Indice) int {
	for i, t := range tariffs {
		if t.Indice.Equal(indice) {
			return i
		}
	}
	return -1
}

// NearestIndice resolves requested against the available tiers. An exact
// (numeric-tolerant) match wins; otherwise the tier closest by absolute
// numeric distance is returned, ties going to the lower value. A
// non-numeric request with no exact match falls back to the first tier.
// ok is false only when no tier is available.
func NearestIndice(available []Indice, requested Indice) (resolved Indice, exact bool, ok bool) {
	if len(available) == 0 {
		return "", false, false
	}
	for _, a := range available {
		if a.Equal(requested) {
			return a, true, true
		}
	}

	want, numeric := requested.Number()
	if !numeric {
		return available[0], false, true
	}

	bestDist := math.Inf(1)
	var bestVal float64
	for _, a := range available {
		n, okN := a.Number()
		if !okN {
			continue
		}
		dist := math.Abs(n - want)
		if dist < bestDist || (dist == bestDist && n < bestVal) {
			bestDist = dist
			bestVal = n
			resolved = a
		}
	}
	if resolved == "" {
		return available[0], false, true
	}
	return resolved, false, true
}

// NextIndice proposes the tier number for a new agency tariff: the highest
// numeric tier plus one, or 1 for an empty catalog. The server response
// remains the source of truth for the number actually assigned.
func NextIndice(tariffs []SimpleTariff) Indice {
	max := 0.0
	for _, t := range tariffs {
		if n, ok := t.Indice.Number(); ok && n > max {
			max = n
		}
	}
	return IndiceFromInt(int64(math.Floor(max)) + 1)
}

// Indices lists the tiers of a catalog in order.
func Indices(tariffs []SimpleTariff) []Indice {
	out := make([]Indice, len(tariffs))
	for i, t := range tariffs {
		out[i] = t.Indice
	}
	return out
}

// ZoneTemplate builds the zero-markup zone set used when creating a new
// tier. The first count zones of reference provide ids, labels and base
// amounts; missing positions are filled with z1..zN placeholders.
func ZoneTemplate(count int, reference []ZonePrice) []ZonePrice {
	if count <= 0 {
		return []ZonePrice{}
	}
	zones := make([]ZonePrice, count)
	for i := 0; i < count; i++ {
		if i < len(reference) {
			ref := reference[i]
			zones[i] = ZonePrice{
				ZoneID:     ref.ZoneID,
				ZoneName:   ref.ZoneName,
				BaseAmount: finiteOrZero(ref.BaseAmount),
				Active:     true,
			}
		} else {
			zones[i] = ZonePrice{
				ZoneID:   fmt.Sprintf("z%d", i+1),
				ZoneName: fmt.Sprintf("Zone %d", i+1),
				Active:   true,
			}
		}
		zones[i].Recompute()
	}
	return zones
}

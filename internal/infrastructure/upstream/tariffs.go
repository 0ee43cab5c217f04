package upstream

import (
	"context"
	"net/http"

	"agence-dashboard/internal/domain"
)

// simpleListItem decodes both shapes the list endpoints use: one object per
// tier with nested prix_zones, or one flat row per tier and zone.
type simpleListItem struct {
	simpleRowDTO
	PrixZones []zonePriceDTO `json:"prix_zones"`
}

func decodeSimpleTariffs(data []byte) ([]domain.SimpleTariff, error) {
	items, err := decodeList[simpleListItem](data)
	if err != nil {
		return nil, err
	}

	nested := false
	for _, it := range items {
		if it.PrixZones != nil {
			nested = true
			break
		}
	}
	if !nested {
		rows := make([]simpleRowDTO, 0, len(items))
		for _, it := range items {
			// A bare {success, message} envelope decodes as an empty row.
			if it.simpleRowDTO.empty() {
				continue
			}
			rows = append(rows, it.simpleRowDTO)
		}
		return groupSimpleRows(rows), nil
	}

	out := make([]domain.SimpleTariff, 0, len(items))
	for _, it := range items {
		if string(it.Indice) == "" && len(it.PrixZones) == 0 {
			continue
		}
		out = append(out, it.tariff().toDomain())
	}
	return out, nil
}

func (it simpleListItem) tariff() simpleTariffDTO {
	return simpleTariffDTO{
		ID:        it.ID,
		Indice:    it.Indice,
		Actif:     it.Actif,
		PrixZones: it.PrixZones,
	}
}

func decodeSimpleTariff(data []byte, fallback domain.SimpleTariff) (*domain.SimpleTariff, error) {
	list, err := decodeSimpleTariffs(data)
	if err != nil {
		return nil, err
	}
	// Some endpoints only answer {success, message}: echo what was sent.
	if len(list) == 0 || (list[0].Indice.IsZero() && len(list[0].Zones) == 0) {
		t := fallback.Clone()
		return &t, nil
	}
	t := list[0]
	if t.Indice.IsZero() {
		t.Indice = fallback.Indice
	}
	return &t, nil
}

func (g *gateway) ListBaseSimpleTariffs(ctx context.Context) ([]domain.SimpleTariff, error) {
	data, err := g.do(ctx, http.MethodGet, "/tarification/list-simple", nil)
	if err != nil {
		return nil, err
	}
	return decodeSimpleTariffs(data)
}

func (g *gateway) ListAgencySimpleTariffs(ctx context.Context) ([]domain.SimpleTariff, error) {
	data, err := g.do(ctx, http.MethodGet, "/agence/list-tarifs-simple", nil)
	if err != nil {
		return nil, err
	}
	return decodeSimpleTariffs(data)
}

func (g *gateway) CreateSimpleTariff(ctx context.Context, t domain.SimpleTariff) (*domain.SimpleTariff, error) {
	data, err := g.do(ctx, http.MethodPost, "/agence/add-tarif-simple", newSimpleTariffPayload(t, true))
	if err != nil {
		return nil, err
	}
	return decodeSimpleTariff(data, t)
}

func (g *gateway) UpdateSimpleTariff(ctx context.Context, t domain.SimpleTariff) (*domain.SimpleTariff, error) {
	path := "/agence/edit-tarif-simple/" + string(t.Indice)
	data, err := g.do(ctx, http.MethodPut, path, newSimpleTariffPayload(t, false))
	if err != nil {
		return nil, err
	}
	return decodeSimpleTariff(data, t)
}

func (g *gateway) DeleteSimpleTariffZone(ctx context.Context, rowID int64) error {
	_, err := g.do(ctx, http.MethodDelete, "/agence/delete-tarif-simple/"+formatID(rowID), nil)
	return err
}

func (g *gateway) ToggleSimpleTariffZone(ctx context.Context, rowID int64) error {
	_, err := g.do(ctx, http.MethodPut, "/agence/status-tarif-simple/"+formatID(rowID), nil)
	return err
}

func decodeRates(data []byte) ([]domain.GroupageRate, error) {
	dtos, err := decodeList[groupageRateDTO](data)
	if err != nil {
		return nil, err
	}
	out := make([]domain.GroupageRate, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func decodeRate(data []byte) (*domain.GroupageRate, error) {
	d, err := decodeOne[groupageRateDTO](data)
	if err != nil || d == nil {
		return nil, err
	}
	r := d.toDomain()
	return &r, nil
}

func (g *gateway) ListBaseGroupageRates(ctx context.Context) ([]domain.GroupageRate, error) {
	data, err := g.do(ctx, http.MethodGet, "/tarification/list-groupage", nil)
	if err != nil {
		return nil, err
	}
	return decodeRates(data)
}

func (g *gateway) ListAgencyGroupageRates(ctx context.Context) ([]domain.GroupageRate, error) {
	data, err := g.do(ctx, http.MethodGet, "/agence/list-tarifs-groupage", nil)
	if err != nil {
		return nil, err
	}
	return decodeRates(data)
}

func (g *gateway) CreateGroupageRate(ctx context.Context, baseRateID int64, markup float64) (*domain.GroupageRate, error) {
	data, err := g.do(ctx, http.MethodPost, "/agence/add-tarif-groupage", createGroupagePayload{
		TarifGroupageID:       baseRateID,
		PourcentagePrestation: markup,
	})
	if err != nil {
		return nil, err
	}
	return decodeRate(data)
}

func (g *gateway) UpdateGroupageRate(ctx context.Context, id int64, markup float64) (*domain.GroupageRate, error) {
	data, err := g.do(ctx, http.MethodPut, "/agence/edit-tarif-groupage/"+formatID(id), markupPayload{
		PourcentagePrestation: markup,
	})
	if err != nil {
		return nil, err
	}
	return decodeRate(data)
}

func (g *gateway) DeleteGroupageRate(ctx context.Context, id int64) error {
	_, err := g.do(ctx, http.MethodDelete, "/agence/delete-tarif-groupage/"+formatID(id), nil)
	return err
}

func (g *gateway) ToggleGroupageRate(ctx context.Context, id int64) (*domain.GroupageRate, error) {
	data, err := g.do(ctx, http.MethodPut, "/agence/status-tarif-groupage/"+formatID(id), nil)
	if err != nil {
		return nil, err
	}
	return decodeRate(data)
}

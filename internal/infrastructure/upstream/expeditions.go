package upstream

import (
	"context"
	"net/http"

	"agence-dashboard/internal/domain"
)

func (g *gateway) SimulateExpedition(ctx context.Context, req domain.ExpeditionRequest) (*domain.Quote, error) {
	data, err := g.do(ctx, http.MethodPost, "/expedition/simulate", newExpeditionPayload(req))
	if err != nil {
		return nil, err
	}
	q, err := decodeOne[quoteDTO](data)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return &domain.Quote{}, nil
	}
	out := q.toDomain()
	return &out, nil
}

func (g *gateway) CreateExpedition(ctx context.Context, req domain.ExpeditionRequest) (*domain.Expedition, error) {
	data, err := g.do(ctx, http.MethodPost, "/expedition/create", newExpeditionPayload(req))
	if err != nil {
		return nil, err
	}
	d, err := decodeOne[expeditionDTO](data)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, &domain.ServerError{Status: http.StatusBadGateway, Message: "shipping API returned no expedition"}
	}
	e := d.toDomain()
	return &e, nil
}

func (g *gateway) ListExpeditions(ctx context.Context) ([]domain.Expedition, error) {
	data, err := g.do(ctx, http.MethodGet, "/agence/list-expeditions", nil)
	if err != nil {
		return nil, err
	}
	dtos, err := decodeList[expeditionDTO](data)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Expedition, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, d.toDomain())
	}
	return out, nil
}

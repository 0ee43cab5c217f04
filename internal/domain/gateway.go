package domain

import "context"

// TariffGateway is the shipping API surface used by the tariff engine.
type TariffGateway interface {
	ListBaseSimpleTariffs(ctx context.Context) ([]SimpleTariff, error)
	ListAgencySimpleTariffs(ctx context.Context) ([]SimpleTariff, error)
	CreateSimpleTariff(ctx context.Context, t SimpleTariff) (*SimpleTariff, error)
	UpdateSimpleTariff(ctx context.Context, t SimpleTariff) (*SimpleTariff, error)
	DeleteSimpleTariffZone(ctx context.Context, rowID int64) error
	ToggleSimpleTariffZone(ctx context.Context, rowID int64) error

	ListBaseGroupageRates(ctx context.Context) ([]GroupageRate, error)
	ListAgencyGroupageRates(ctx context.Context) ([]GroupageRate, error)
	CreateGroupageRate(ctx context.Context, baseRateID int64, markup float64) (*GroupageRate, error)
	UpdateGroupageRate(ctx context.Context, id int64, markup float64) (*GroupageRate, error)
	DeleteGroupageRate(ctx context.Context, id int64) error
	ToggleGroupageRate(ctx context.Context, id int64) (*GroupageRate, error)
}

type ExpeditionGateway interface {
	SimulateExpedition(ctx context.Context, req ExpeditionRequest) (*Quote, error)
	CreateExpedition(ctx context.Context, req ExpeditionRequest) (*Expedition, error)
	ListExpeditions(ctx context.Context) ([]Expedition, error)
}

type Gateway interface {
	TariffGateway
	ExpeditionGateway
}

// GatewayProvider hands out a gateway authenticated with a bearer token.
type GatewayProvider interface {
	ForToken(token string) Gateway
}

package domain

import (
	"strings"
	"time"
)

// Colis is one parcel of an expedition.
type Colis struct {
	Description string  `json:"description,omitempty"`
	Weight      float64 `json:"weight"`
	Length      float64 `json:"length,omitempty"`
	Width       float64 `json:"width,omitempty"`
	Height      float64 `json:"height,omitempty"`
}

type Party struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
	Country string `json:"country,omitempty"`
}

// ExpeditionRequest carries what the pricing API needs to quote or register
// a shipment. Simple shipments name a zone, groupage ones a line or mode.
type ExpeditionRequest struct {
	ShipmentKind       ShipmentKind `json:"shipmentKind"`
	OriginCountry      string       `json:"originCountry"`
	DestinationCountry string       `json:"destinationCountry"`
	ZoneID             string       `json:"zoneId,omitempty"`
	Line               string       `json:"line,omitempty"`
	TransportMode      string       `json:"transportMode,omitempty"`
	Colis              []Colis      `json:"colis"`
	Sender             *Party       `json:"sender,omitempty"`
	Recipient          *Party       `json:"recipient,omitempty"`
}

// Validate checks the request before it leaves the dashboard. Quoting only
// needs the route and parcels; registering also needs both parties.
func (r ExpeditionRequest) Validate(forCreate bool) error {
	if r.ShipmentKind == "" {
		return NewValidationError("shipmentKind", "shipment kind is required")
	}
	known := false
	for _, k := range ShipmentKinds {
		if k == r.ShipmentKind {
			known = true
			break
		}
	}
	if !known {
		return NewValidationError("shipmentKind", "unknown shipment kind '"+string(r.ShipmentKind)+"'")
	}
	if r.ShipmentKind == ShipmentSimple && strings.TrimSpace(r.ZoneID) == "" {
		return NewValidationError("zoneId", "destination zone is required for simple shipments")
	}
	if r.ShipmentKind != ShipmentSimple && strings.TrimSpace(r.DestinationCountry) == "" {
		return NewValidationError("destinationCountry", "destination country is required for groupage shipments")
	}
	if len(r.Colis) == 0 {
		return NewValidationError("colis", "at least one parcel is required")
	}
	for _, c := range r.Colis {
		if c.Weight <= 0 {
			return NewValidationError("colis", "parcel weight must be greater than 0")
		}
		if c.Length < 0 || c.Width < 0 || c.Height < 0 {
			return NewValidationError("colis", "parcel dimensions cannot be negative")
		}
	}
	if forCreate {
		if r.Sender == nil || strings.TrimSpace(r.Sender.Name) == "" {
			return NewValidationError("sender", "sender name is required")
		}
		if r.Recipient == nil || strings.TrimSpace(r.Recipient.Name) == "" {
			return NewValidationError("recipient", "recipient name is required")
		}
	}
	return nil
}

// Quote is the server-side price of a shipment.
type Quote struct {
	BaseAmount       float64 `json:"baseAmount"`
	PrestationAmount float64 `json:"prestationAmount"`
	TotalAmount      float64 `json:"totalAmount"`
}

type Expedition struct {
	ID                 int64        `json:"id"`
	Reference          string       `json:"reference"`
	Status             string       `json:"status"`
	ShipmentKind       ShipmentKind `json:"shipmentKind"`
	OriginCountry      string       `json:"originCountry"`
	DestinationCountry string       `json:"destinationCountry"`
	Quote              Quote        `json:"quote"`
	Colis              []Colis      `json:"colis"`
	CreatedAt          time.Time    `json:"createdAt"`
}

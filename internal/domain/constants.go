package domain

// Shipment kinds. Simple shipments are priced by zone, the groupage kinds by
// (category, country, transport mode, line).
const (
	ShipmentSimple             ShipmentKind = "simple"
	ShipmentGroupageAfrique    ShipmentKind = "groupage_afrique"
	ShipmentGroupageCA         ShipmentKind = "groupage_ca"
	ShipmentGroupageDHDAerien  ShipmentKind = "groupage_dhd_aerien"
	ShipmentGroupageDHDMaritim ShipmentKind = "groupage_dhd_maritime"
)

// Session roles
const (
	RoleAdmin  = "admin"
	RoleAgency = "agence"
	RoleAgent  = "agent"
)

// DefaultCategory is used for groupage rates without a category whose kind
// has no entry in CategoryFallbacks.
const DefaultCategory = "Général"

// CategoryFallbacks names the display category of a groupage rate that was
// published without one.
var CategoryFallbacks = map[ShipmentKind]string{
	ShipmentGroupageAfrique: "Expédition Afrique",
	ShipmentGroupageCA:      "Expédition CA",
}

// List Exports for API
var ShipmentKinds = []ShipmentKind{
	ShipmentSimple,
	ShipmentGroupageAfrique,
	ShipmentGroupageCA,
	ShipmentGroupageDHDAerien,
	ShipmentGroupageDHDMaritim,
}

var Roles = []string{
	RoleAdmin,
	RoleAgency,
	RoleAgent,
}

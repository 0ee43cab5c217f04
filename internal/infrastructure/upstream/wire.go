package upstream

import (
	"bytes"
	"strconv"
	"strings"

	"agence-dashboard/internal/domain"

	"github.com/goccy/go-json"
)

// The shipping API is loose with types: amounts arrive as numbers, quoted
// decimals or null, ids as numbers or strings, flags as booleans or 0/1.
// The flex types below absorb that so the domain only sees clean values.

type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexFloat(domain.ParseAmount(s))
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		// Booleans and objects in an amount field are treated as 0.
		*f = 0
		return nil
	}
	*f = flexFloat(v)
	return nil
}

type flexInt int64

func (i *flexInt) UnmarshalJSON(b []byte) error {
	var f flexFloat
	if err := f.UnmarshalJSON(b); err != nil {
		return err
	}
	*i = flexInt(int64(f))
	return nil
}

type flexBool bool

func (v *flexBool) UnmarshalJSON(b []byte) error {
	s := strings.ToLower(strings.Trim(string(bytes.TrimSpace(b)), `"`))
	switch s {
	case "true", "1", "oui", "yes", "actif", "active":
		*v = true
	default:
		*v = false
	}
	return nil
}

// flexString accepts strings, numbers, or a nested object carrying a label
// (`{"nom": "..."}`), which is how related entities are sometimes embedded.
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	switch b[0] {
	case '"':
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = flexString(strings.TrimSpace(v))
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(b, &obj); err != nil {
			return err
		}
		for _, key := range []string{"nom", "name", "libelle", "label", "code"} {
			if raw, ok := obj[key]; ok {
				return s.UnmarshalJSON(raw)
			}
		}
		*s = ""
	default:
		*s = flexString(strings.Trim(string(b), `"`))
	}
	return nil
}

// --- Simple tariffs ---

type zonePriceDTO struct {
	ID                    flexInt    `json:"id"`
	ZoneDestinationID     flexString `json:"zone_destination_id"`
	ZoneDestination       flexString `json:"zone_destination"`
	NomZone               flexString `json:"nom_zone"`
	MontantBase           flexFloat  `json:"montant_base"`
	PourcentagePrestation flexFloat  `json:"pourcentage_prestation"`
	MontantPrestation     flexFloat  `json:"montant_prestation"`
	MontantExpedition     flexFloat  `json:"montant_expedition"`
	Actif                 *flexBool  `json:"actif"`
}

type simpleTariffDTO struct {
	ID        flexInt        `json:"id"`
	Indice    flexString     `json:"indice"`
	Actif     *flexBool      `json:"actif"`
	PrixZones []zonePriceDTO `json:"prix_zones"`
}

func (d zonePriceDTO) toDomain(tariffActive bool) domain.ZonePrice {
	name := string(d.NomZone)
	if name == "" {
		name = string(d.ZoneDestination)
	}
	active := tariffActive
	if d.Actif != nil {
		active = bool(*d.Actif)
	}
	z := domain.ZonePrice{
		RowID:            int64(d.ID),
		ZoneID:           string(d.ZoneDestinationID),
		ZoneName:         name,
		BaseAmount:       float64(d.MontantBase),
		MarkupPercent:    float64(d.PourcentagePrestation),
		PrestationAmount: float64(d.MontantPrestation),
		TotalAmount:      float64(d.MontantExpedition),
		Active:           active,
	}
	z.Recompute()
	return z
}

func (d simpleTariffDTO) toDomain() domain.SimpleTariff {
	active := true
	if d.Actif != nil {
		active = bool(*d.Actif)
	}
	t := domain.SimpleTariff{
		Indice: domain.Indice(d.Indice),
		Active: active,
		Zones:  make([]domain.ZonePrice, 0, len(d.PrixZones)),
	}
	for _, z := range d.PrixZones {
		t.Zones = append(t.Zones, z.toDomain(active))
	}
	// A tier whose zone rows are all switched off reads as inactive.
	if d.Actif == nil && len(t.Zones) > 0 {
		anyActive := false
		for _, z := range t.Zones {
			anyActive = anyActive || z.Active
		}
		t.Active = anyActive
	}
	return t
}

// groupSimpleRows folds a flat list of zone rows (one row per indice and
// zone, as some endpoints return) into tiers, keeping first-seen order.
func groupSimpleRows(rows []simpleRowDTO) []domain.SimpleTariff {
	out := make([]domain.SimpleTariff, 0)
	pos := make(map[string]int)
	for _, r := range rows {
		key := string(r.Indice)
		i, ok := pos[key]
		if !ok {
			i = len(out)
			pos[key] = i
			out = append(out, domain.SimpleTariff{Indice: domain.Indice(r.Indice), Zones: []domain.ZonePrice{}})
		}
		z := r.zonePriceDTO.toDomain(true)
		out[i].Zones = append(out[i].Zones, z)
		out[i].Active = out[i].Active || z.Active
	}
	return out
}

type simpleRowDTO struct {
	zonePriceDTO
	Indice flexString `json:"indice"`
}

// empty reports a row that names neither a tier nor a zone.
func (r simpleRowDTO) empty() bool {
	return string(r.Indice) == "" && string(r.ZoneDestinationID) == "" && r.ID == 0
}

type zonePricePayload struct {
	ID                    int64   `json:"id,omitempty"`
	ZoneDestinationID     string  `json:"zone_destination_id"`
	MontantBase           float64 `json:"montant_base"`
	PourcentagePrestation float64 `json:"pourcentage_prestation"`
	MontantPrestation     float64 `json:"montant_prestation"`
	MontantExpedition     float64 `json:"montant_expedition"`
}

type simpleTariffPayload struct {
	Indice    interface{}        `json:"indice,omitempty"`
	Actif     bool               `json:"actif"`
	PrixZones []zonePricePayload `json:"prix_zones"`
}

func newSimpleTariffPayload(t domain.SimpleTariff, withIndice bool) simpleTariffPayload {
	p := simpleTariffPayload{
		Actif:     t.Active,
		PrixZones: make([]zonePricePayload, 0, len(t.Zones)),
	}
	if withIndice {
		p.Indice = indiceValue(t.Indice)
	}
	for _, z := range t.Zones {
		p.PrixZones = append(p.PrixZones, zonePricePayload{
			ID:                    z.RowID,
			ZoneDestinationID:     z.ZoneID,
			MontantBase:           z.BaseAmount,
			PourcentagePrestation: z.MarkupPercent,
			MontantPrestation:     z.PrestationAmount,
			MontantExpedition:     z.TotalAmount,
		})
	}
	return p
}

// indiceValue sends whole-number tiers as JSON numbers.
func indiceValue(i domain.Indice) interface{} {
	if n, ok := i.Number(); ok && n == float64(int64(n)) {
		return int64(n)
	}
	return string(i)
}

// --- Groupage ---

type groupageRateDTO struct {
	ID                    flexInt    `json:"id"`
	TarifGroupageID       flexInt    `json:"tarif_groupage_id"`
	Categorie             flexString `json:"categorie"`
	Pays                  flexString `json:"pays"`
	ModeTransport         flexString `json:"mode_transport"`
	Mode                  flexString `json:"mode"`
	Ligne                 flexString `json:"ligne"`
	TypeExpedition        flexString `json:"type_expedition"`
	MontantBase           flexFloat  `json:"montant_base"`
	PourcentagePrestation flexFloat  `json:"pourcentage_prestation"`
	MontantPrestation     flexFloat  `json:"montant_prestation"`
	MontantExpedition     flexFloat  `json:"montant_expedition"`
	Actif                 *flexBool  `json:"actif"`
}

func (d groupageRateDTO) toDomain() domain.GroupageRate {
	mode := string(d.ModeTransport)
	if mode == "" {
		mode = string(d.Mode)
	}
	active := true
	if d.Actif != nil {
		active = bool(*d.Actif)
	}
	r := domain.GroupageRate{
		ID:               int64(d.ID),
		BaseRateID:       int64(d.TarifGroupageID),
		Category:         string(d.Categorie),
		Country:          string(d.Pays),
		TransportMode:    mode,
		Line:             string(d.Ligne),
		ShipmentKind:     domain.ShipmentKind(d.TypeExpedition),
		BaseAmount:       float64(d.MontantBase),
		MarkupPercent:    float64(d.PourcentagePrestation),
		PrestationAmount: float64(d.MontantPrestation),
		TotalAmount:      float64(d.MontantExpedition),
		Active:           active,
	}
	r.Recompute()
	return r
}

type createGroupagePayload struct {
	TarifGroupageID       int64   `json:"tarif_groupage_id"`
	PourcentagePrestation float64 `json:"pourcentage_prestation"`
}

type markupPayload struct {
	PourcentagePrestation float64 `json:"pourcentage_prestation"`
}

// --- Expeditions ---

type colisPayload struct {
	Description string  `json:"description,omitempty"`
	Poids       float64 `json:"poids"`
	Longueur    float64 `json:"longueur,omitempty"`
	Largeur     float64 `json:"largeur,omitempty"`
	Hauteur     float64 `json:"hauteur,omitempty"`
}

type partyPayload struct {
	Nom       string `json:"nom"`
	Telephone string `json:"telephone"`
	Adresse   string `json:"adresse,omitempty"`
	Ville     string `json:"ville,omitempty"`
	Pays      string `json:"pays,omitempty"`
}

type expeditionPayload struct {
	TypeExpedition    string         `json:"type_expedition"`
	PaysDepart        string         `json:"pays_depart"`
	PaysDestination   string         `json:"pays_destination"`
	ZoneDestinationID string         `json:"zone_destination_id,omitempty"`
	Ligne             string         `json:"ligne,omitempty"`
	ModeTransport     string         `json:"mode_transport,omitempty"`
	Colis             []colisPayload `json:"colis"`
	Expediteur        *partyPayload  `json:"expediteur,omitempty"`
	Destinataire      *partyPayload  `json:"destinataire,omitempty"`
}

func newExpeditionPayload(r domain.ExpeditionRequest) expeditionPayload {
	p := expeditionPayload{
		TypeExpedition:    string(r.ShipmentKind),
		PaysDepart:        r.OriginCountry,
		PaysDestination:   r.DestinationCountry,
		ZoneDestinationID: r.ZoneID,
		Ligne:             r.Line,
		ModeTransport:     r.TransportMode,
		Colis:             make([]colisPayload, 0, len(r.Colis)),
	}
	for _, c := range r.Colis {
		p.Colis = append(p.Colis, colisPayload{
			Description: c.Description,
			Poids:       c.Weight,
			Longueur:    c.Length,
			Largeur:     c.Width,
			Hauteur:     c.Height,
		})
	}
	p.Expediteur = newPartyPayload(r.Sender)
	p.Destinataire = newPartyPayload(r.Recipient)
	return p
}

func newPartyPayload(p *domain.Party) *partyPayload {
	if p == nil {
		return nil
	}
	return &partyPayload{Nom: p.Name, Telephone: p.Phone, Adresse: p.Address, Ville: p.City, Pays: p.Country}
}

type quoteDTO struct {
	MontantBase       flexFloat `json:"montant_base"`
	MontantPrestation flexFloat `json:"montant_prestation"`
	MontantExpedition flexFloat `json:"montant_expedition"`
}

func (q quoteDTO) toDomain() domain.Quote {
	return domain.Quote{
		BaseAmount:       float64(q.MontantBase),
		PrestationAmount: float64(q.MontantPrestation),
		TotalAmount:      float64(q.MontantExpedition),
	}
}

type colisDTO struct {
	Description flexString `json:"description"`
	Poids       flexFloat  `json:"poids"`
	Longueur    flexFloat  `json:"longueur"`
	Largeur     flexFloat  `json:"largeur"`
	Hauteur     flexFloat  `json:"hauteur"`
}

type expeditionDTO struct {
	quoteDTO
	ID              flexInt    `json:"id"`
	Reference       flexString `json:"reference"`
	Statut          flexString `json:"statut"`
	TypeExpedition  flexString `json:"type_expedition"`
	PaysDepart      flexString `json:"pays_depart"`
	PaysDestination flexString `json:"pays_destination"`
	Colis           []colisDTO `json:"colis"`
	CreatedAt       flexString `json:"created_at"`
}

func (d expeditionDTO) toDomain() domain.Expedition {
	e := domain.Expedition{
		ID:                 int64(d.ID),
		Reference:          string(d.Reference),
		Status:             string(d.Statut),
		ShipmentKind:       domain.ShipmentKind(d.TypeExpedition),
		OriginCountry:      string(d.PaysDepart),
		DestinationCountry: string(d.PaysDestination),
		Quote:              d.quoteDTO.toDomain(),
		Colis:              make([]domain.Colis, 0, len(d.Colis)),
		CreatedAt:          parseTimestamp(string(d.CreatedAt)),
	}
	for _, c := range d.Colis {
		e.Colis = append(e.Colis, domain.Colis{
			Description: string(c.Description),
			Weight:      float64(c.Poids),
			Length:      float64(c.Longueur),
			Width:       float64(c.Largeur),
			Height:      float64(c.Hauteur),
		})
	}
	return e
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

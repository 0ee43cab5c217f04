package v1

import (
	"net/http"

	"agence-dashboard/internal/catalog"
	"agence-dashboard/internal/domain"
	"agence-dashboard/internal/usecase"
	"agence-dashboard/pkg/utils"
)

// TariffHandler serves the simple tariff workspace of the caller's session.
type TariffHandler struct {
	sessions *usecase.SessionUsecase
}

func NewTariffHandler(sessions *usecase.SessionUsecase) *TariffHandler {
	return &TariffHandler{sessions: sessions}
}

// SimpleView is what the simple tariff screen renders.
type SimpleView struct {
	ZoneCount     int                   `json:"zoneCount"`
	BaseTariffs   []domain.SimpleTariff `json:"baseTariffs"`
	AgencyTariffs []domain.SimpleTariff `json:"agencyTariffs"`
	Selection     catalog.Selection     `json:"selection"`
}

func newSimpleView(s catalog.State) SimpleView {
	v := SimpleView{
		ZoneCount:     s.ZoneCount,
		BaseTariffs:   s.BaseTariffs,
		AgencyTariffs: s.AgencyTariffs,
		Selection:     s.Selection,
	}
	if v.BaseTariffs == nil {
		v.BaseTariffs = []domain.SimpleTariff{}
	}
	if v.AgencyTariffs == nil {
		v.AgencyTariffs = []domain.SimpleTariff{}
	}
	if v.Selection.StagingZones == nil {
		v.Selection.StagingZones = []domain.ZonePrice{}
	}
	return v
}

func (h *TariffHandler) workspace(w http.ResponseWriter, r *http.Request) (*usecase.TariffUsecase, bool) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return nil, false
	}
	return h.sessions.Workspace(sess), true
}

// respond writes the simple view, with the selection notice lifted into the
// envelope when there is one.
func (h *TariffHandler) respond(w http.ResponseWriter, r *http.Request, state catalog.State, err error) {
	view := newSimpleView(state)
	if err != nil {
		writeOperationError(w, r, err, view)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, view, state.Selection.Notice)
}

// Get returns the workspace, loading both catalogs on first access.
func (h *TariffHandler) Get(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}

	state := ws.Snapshot()
	if state.BaseTariffs == nil && state.AgencyTariffs == nil {
		var err error
		if state, err = ws.LoadBaseTariffs(r.Context()); err != nil {
			h.respond(w, r, state, err)
			return
		}
		state, err = ws.LoadAgencyTariffs(r.Context())
		h.respond(w, r, state, err)
		return
	}
	h.respond(w, r, state, nil)
}

func (h *TariffHandler) Reload(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	state, err := ws.Reload(r.Context())
	h.respond(w, r, state, err)
}

type SelectRequest struct {
	Indice interface{} `json:"indice"`
}

func (h *TariffHandler) Select(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}

	var req SelectRequest
	if err := decodeBody(r, &req); err != nil {
		h.respond(w, r, ws.Snapshot(), err)
		return
	}
	state, err := ws.SelectIndex(stringParam(req.Indice))
	h.respond(w, r, state, err)
}

type MarkupRequest struct {
	Percent interface{} `json:"pourcentage_prestation"`
}

func (h *TariffHandler) UpdateZoneMarkup(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}

	var req MarkupRequest
	if err := decodeBody(r, &req); err != nil {
		h.respond(w, r, ws.Snapshot(), err)
		return
	}
	state, err := ws.UpdateZoneMarkup(r.PathValue("zoneId"), domain.ParseMarkup(req.Percent))
	h.respond(w, r, state, err)
}

func (h *TariffHandler) CancelEditing(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	h.respond(w, r, ws.CancelEditing(), nil)
}

func (h *TariffHandler) Save(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	state, err := ws.SaveTariff(r.Context())
	h.respond(w, r, state, err)
}

func (h *TariffHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	state, err := ws.DeleteTariff(r.Context(), r.PathValue("indice"))
	h.respond(w, r, state, err)
}

func (h *TariffHandler) ToggleStatus(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	state, err := ws.ToggleStatus(r.Context(), r.PathValue("indice"))
	h.respond(w, r, state, err)
}

package v1

import (
	"net/http"

	"agence-dashboard/internal/catalog"
	"agence-dashboard/internal/domain"
	"agence-dashboard/internal/usecase"
	"agence-dashboard/pkg/utils"
)

type GroupageHandler struct {
	sessions *usecase.SessionUsecase
}

func NewGroupageHandler(sessions *usecase.SessionUsecase) *GroupageHandler {
	return &GroupageHandler{sessions: sessions}
}

// GroupageView lists both catalogs grouped by category, country and kind.
type GroupageView struct {
	Base      []domain.RateGroup   `json:"base"`
	Agency    []domain.RateGroup   `json:"agency"`
	Candidate *domain.GroupageRate `json:"candidate,omitempty"`
	Error     string               `json:"error,omitempty"`
}

func newGroupageView(s catalog.State) GroupageView {
	return GroupageView{
		Base:      domain.GroupBy(s.BaseRates),
		Agency:    domain.GroupBy(s.AgencyRates),
		Candidate: s.Candidate,
		Error:     s.GroupageError,
	}
}

func (h *GroupageHandler) workspace(w http.ResponseWriter, r *http.Request) (*usecase.TariffUsecase, bool) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return nil, false
	}
	return h.sessions.Workspace(sess), true
}

func (h *GroupageHandler) respond(w http.ResponseWriter, r *http.Request, state catalog.State, err error) {
	view := newGroupageView(state)
	if err != nil {
		writeOperationError(w, r, err, view)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, view, nil)
}

func (h *GroupageHandler) Get(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}

	state := ws.Snapshot()
	if state.BaseRates == nil && state.AgencyRates == nil {
		var err error
		if state, err = ws.LoadBaseRates(r.Context()); err != nil {
			h.respond(w, r, state, err)
			return
		}
		state, err = ws.LoadAgencyRates(r.Context())
		h.respond(w, r, state, err)
		return
	}
	h.respond(w, r, state, nil)
}

func (h *GroupageHandler) Reload(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	state, err := ws.ReloadGroupage(r.Context())
	h.respond(w, r, state, err)
}

type RateRequest struct {
	BaseRateID interface{} `json:"tarif_groupage_id"`
	Percent    interface{} `json:"pourcentage_prestation"`
}

// Import stages a published rate; the markup defaults when omitted.
func (h *GroupageHandler) Import(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}

	var req RateRequest
	if err := decodeBody(r, &req); err != nil {
		h.respond(w, r, ws.Snapshot(), err)
		return
	}
	state, err := ws.ImportFromBase(idParam(req.BaseRateID), markupParam(req.Percent))
	h.respond(w, r, state, err)
}

func (h *GroupageHandler) Create(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}

	var req RateRequest
	if err := decodeBody(r, &req); err != nil {
		h.respond(w, r, ws.Snapshot(), err)
		return
	}
	state, err := ws.CreateAgencyRate(r.Context(), idParam(req.BaseRateID), domain.ParseMarkup(req.Percent))
	h.respond(w, r, state, err)
}

func (h *GroupageHandler) Update(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}

	var req MarkupRequest
	if err := decodeBody(r, &req); err != nil {
		h.respond(w, r, ws.Snapshot(), err)
		return
	}
	id, err := rateIDParam(r)
	if err != nil {
		h.respond(w, r, ws.Snapshot(), err)
		return
	}
	state, err := ws.UpdateAgencyRate(r.Context(), id, domain.ParseMarkup(req.Percent))
	h.respond(w, r, state, err)
}

func (h *GroupageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	id, err := rateIDParam(r)
	if err != nil {
		h.respond(w, r, ws.Snapshot(), err)
		return
	}
	state, err := ws.DeleteAgencyRate(r.Context(), id)
	h.respond(w, r, state, err)
}

func (h *GroupageHandler) ToggleStatus(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	id, err := rateIDParam(r)
	if err != nil {
		h.respond(w, r, ws.Snapshot(), err)
		return
	}
	state, err := ws.ToggleAgencyRateStatus(r.Context(), id)
	h.respond(w, r, state, err)
}

package v1

import (
	"net/http"
	"time"

	"agence-dashboard/internal/domain"
	"agence-dashboard/internal/usecase"
	"agence-dashboard/pkg/utils"
)

type SessionHandler struct {
	usecase      *usecase.SessionUsecase
	secureCookie bool
}

func NewSessionHandler(usecase *usecase.SessionUsecase, secureCookie bool) *SessionHandler {
	return &SessionHandler{usecase: usecase, secureCookie: secureCookie}
}

type OpenSessionRequest struct {
	Token    string      `json:"token"`
	UserID   interface{} `json:"user_id"`
	AgencyID interface{} `json:"agence_id"`
	Role     string      `json:"role"`
}

type SessionResponse struct {
	Token   string          `json:"token,omitempty"`
	Session *domain.Session `json:"session"`
}

func (h *SessionHandler) Open(w http.ResponseWriter, r *http.Request) {
	var req OpenSessionRequest
	if err := decodeBody(r, &req); err != nil {
		writeOperationError(w, r, err, nil)
		return
	}

	sess, token, err := h.usecase.Open(r.Context(), usecase.OpenSessionInput{
		Token:    req.Token,
		UserID:   stringParam(req.UserID),
		AgencyID: stringParam(req.AgencyID),
		Role:     req.Role,
	})
	if err != nil {
		writeOperationError(w, r, err, nil)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     utils.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	utils.WriteSuccess(w, http.StatusCreated, SessionResponse{Token: token, Session: sess}, nil)
}

func (h *SessionHandler) Current(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	utils.WriteSuccess(w, http.StatusOK, SessionResponse{Session: sess}, nil)
}

// Close logs out: the session is deleted and its workspace reset.
func (h *SessionHandler) Close(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	if err := h.usecase.Close(r.Context(), sess); err != nil {
		writeOperationError(w, r, err, nil)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     utils.SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	utils.WriteJSON(w, http.StatusOK, domain.Response{Success: true, Message: "Session closed"})
}

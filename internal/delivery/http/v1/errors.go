package v1

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"agence-dashboard/internal/domain"
	"agence-dashboard/pkg/logger"
	"agence-dashboard/pkg/utils"

	"github.com/goccy/go-json"
)

// writeOperationError maps an operation failure to its HTTP status. data is
// the state after the failure, so the dashboard can re-render from it.
func writeOperationError(w http.ResponseWriter, r *http.Request, err error, data interface{}) {
	status := http.StatusInternalServerError
	message := err.Error()

	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrNoSession), errors.Is(err, domain.ErrSessionExpired):
		status = http.StatusUnauthorized
	default:
		if se, ok := domain.AsServerError(err); ok {
			status = http.StatusBadGateway
			if se.Status >= 400 && se.Status < 500 {
				status = se.Status
			}
		} else {
			logger.WithContext(r.Context()).Error().Err(err).Msg("Operation failed")
			message = "Internal server error"
		}
	}

	utils.WriteJSON(w, status, domain.Response{Success: false, Message: message, Data: data})
}

func decodeBody(r *http.Request, dst interface{}) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return domain.NewValidationError("body", "Invalid request payload")
	}
	return nil
}

func sessionFrom(w http.ResponseWriter, r *http.Request) (*domain.Session, bool) {
	sess, ok := domain.SessionFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return nil, false
	}
	return sess, true
}

// stringParam renders a loosely typed JSON scalar (string or number) as text.
func stringParam(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case json.Number:
		return x.String()
	default:
		return ""
	}
}

// idParam reads an id sent as a number or a numeric string; anything else is 0.
func idParam(v interface{}) int64 {
	return int64(domain.ParseAmount(v))
}

// rateIDParam reads the {id} path value of a groupage rate.
func rateIDParam(r *http.Request) (int64, error) {
	id, ok := utils.ParseInt64(r.PathValue("id"))
	if !ok || id <= 0 {
		return 0, domain.NewValidationError("id", "invalid rate id")
	}
	return id, nil
}

// markupParam is nil when the field was absent.
func markupParam(v interface{}) *float64 {
	if v == nil {
		return nil
	}
	m := domain.ParseMarkup(v)
	return &m
}

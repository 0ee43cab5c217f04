package utils

import (
	"net/http"

	"agence-dashboard/internal/domain"

	"github.com/goccy/go-json"
)

func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// WriteSuccess writes the standard envelope with success=true.
func WriteSuccess(w http.ResponseWriter, status int, data interface{}, notice *domain.Notice) {
	WriteJSON(w, status, domain.Response{Success: true, Data: data, Notice: notice})
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, domain.Response{Success: false, Message: message})
}

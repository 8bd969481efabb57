package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sailesh298-rgb/EMAIL/services"
)

// APIResponse is the envelope every endpoint answers with.
type APIResponse struct {
	Message string      `json:"message"`
	Status  string      `json:"status"` // "success" or "error"
	Data    interface{} `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, statusCode int, payload APIResponse) {
	body, err := json.Marshal(payload)
	if err != nil {
		// Only reachable if the payload holds an unmarshalable Data value.
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(body)
}

func successResponse(w http.ResponseWriter, message string, data interface{}) {
	writeJSON(w, http.StatusOK, APIResponse{Status: "success", Message: message, Data: data})
}

func errorResponse(w http.ResponseWriter, message string, statusCode int) {
	writeJSON(w, statusCode, APIResponse{Status: "error", Message: message})
}

// serviceError maps service-layer sentinel errors onto HTTP statuses. Errors
// without a mapping are reported as an internal error without leaking the
// underlying message.
func serviceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrAccountExists):
		errorResponse(w, "Email account already exists", http.StatusBadRequest)
	case errors.Is(err, services.ErrInvalidCredentials):
		errorResponse(w, "Invalid credentials", http.StatusUnauthorized)
	case errors.Is(err, services.ErrWrongPassword):
		errorResponse(w, "Current password is incorrect", http.StatusBadRequest)
	case errors.Is(err, services.ErrNotFound):
		errorResponse(w, "Not found", http.StatusNotFound)
	case errors.Is(err, services.ErrInvalidFolder):
		errorResponse(w, "Invalid folder", http.StatusBadRequest)
	case errors.Is(err, services.ErrInvalidAddress):
		errorResponse(w, "Invalid email address", http.StatusBadRequest)
	default:
		errorResponse(w, "Internal server error", http.StatusInternalServerError)
	}
}

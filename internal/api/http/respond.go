package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"stayhub-backend/internal/gateway"
	"stayhub-backend/internal/logger"
	"stayhub-backend/internal/service"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Error: message})
}

// writeServiceError maps service-layer sentinels onto HTTP statuses so
// handlers don't repeat the same switch.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrPropertyNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrUnauthorized):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrAccountBlocked), errors.Is(err, service.ErrPropertyBlocked):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrDatesUnavailable):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrAlreadyConfirmed):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrBookingExpired):
		writeError(w, http.StatusGone, err.Error())
	case errors.Is(err, service.ErrGuestDetailsMissing):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, service.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, gateway.ErrUnavailable):
		writeError(w, http.StatusBadGateway, "payment provider unavailable, retry later")
	default:
		logger.Error("Unhandled service error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

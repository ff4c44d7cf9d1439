package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError sends an error payload with a 200 status. Not-found and bad
// credentials are reported this way rather than as HTTP errors.
func writeError(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusOK, errorResponse{Error: msg})
}

// serverError logs err and sends a generic 500 without its text.
func serverError(w http.ResponseWriter, log *zap.Logger, op string, err error) {
	log.Error("request failed", zap.String("op", op), zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
}

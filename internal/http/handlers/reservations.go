package handlers

import (
	"context"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"lightbnb/internal/models"
	"lightbnb/internal/security"
)

type ReservationStore interface {
	GetAllReservations(ctx context.Context, guestID int64, limit int) ([]models.ReservationDetail, error)
}

type ReservationHandler struct {
	reservations ReservationStore
	sessions     *security.SessionStore
	defaultLimit int
	log          *zap.Logger
}

func NewReservationHandler(reservations ReservationStore, sessions *security.SessionStore, defaultLimit int, log *zap.Logger) *ReservationHandler {
	return &ReservationHandler{
		reservations: reservations,
		sessions:     sessions,
		defaultLimit: defaultLimit,
		log:          log.Named("reservations"),
	}
}

type reservationsResponse struct {
	Reservations []models.ReservationDetail `json:"reservations"`
}

// List returns the session user's reservations.
func (h *ReservationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.sessions.UserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: msgNotLoggedIn})
		return
	}

	limit := h.defaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 100 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid limit"})
			return
		}
		limit = n
	}

	reservations, err := h.reservations.GetAllReservations(r.Context(), userID, limit)
	if err != nil {
		serverError(w, h.log, "list reservations", err)
		return
	}

	writeJSON(w, http.StatusOK, reservationsResponse{Reservations: reservations})
}

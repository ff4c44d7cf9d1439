package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
	"go.uber.org/zap"

	"lightbnb/internal/db"
	"lightbnb/internal/models"
	"lightbnb/internal/security"
)

type PropertyStore interface {
	GetAllProperties(ctx context.Context, opts db.SearchOptions, limit int) ([]models.PropertyWithRating, error)
	AddProperty(ctx context.Context, p *models.Property) (*models.Property, error)
}

type PropertyHandler struct {
	properties   PropertyStore
	sessions     *security.SessionStore
	defaultLimit int
	decoder      *schema.Decoder
	validate     *validator.Validate
	log          *zap.Logger
}

func NewPropertyHandler(properties PropertyStore, sessions *security.SessionStore, defaultLimit int, log *zap.Logger) *PropertyHandler {
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)

	return &PropertyHandler{
		properties:   properties,
		sessions:     sessions,
		defaultLimit: defaultLimit,
		decoder:      decoder,
		validate:     validator.New(),
		log:          log.Named("properties"),
	}
}

// searchRequest is the query string of GET /api/properties. Prices are in
// dollars.
type searchRequest struct {
	OwnerID              *int64   `schema:"owner_id" validate:"omitempty,gt=0"`
	MinimumPricePerNight *float64 `schema:"minimum_price_per_night" validate:"omitempty,gte=0,lte=1000000"`
	MaximumPricePerNight *float64 `schema:"maximum_price_per_night" validate:"omitempty,gte=0,lte=1000000"`
	MinimumRating        *float64 `schema:"minimum_rating" validate:"omitempty,gte=0,lte=5"`
	City                 string   `schema:"city" validate:"max=100"`
	Limit                int      `schema:"limit" validate:"gte=0,lte=100"`
}

func (s searchRequest) options() db.SearchOptions {
	return db.SearchOptions{
		OwnerID:              s.OwnerID,
		MinimumPricePerNight: s.MinimumPricePerNight,
		MaximumPricePerNight: s.MaximumPricePerNight,
		MinimumRating:        s.MinimumRating,
		City:                 s.City,
	}
}

type propertiesResponse struct {
	Properties []models.PropertyWithRating `json:"properties"`
}

type propertyResponse struct {
	Property *models.Property `json:"property"`
}

func (h *PropertyHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := h.decoder.Decode(&req, r.URL.Query()); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid search parameters"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid search parameters"})
		return
	}
	if req.MinimumPricePerNight != nil && req.MaximumPricePerNight != nil &&
		*req.MaximumPricePerNight < *req.MinimumPricePerNight {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "maximum price is below minimum price"})
		return
	}

	limit := req.Limit
	if limit == 0 {
		limit = h.defaultLimit
	}

	properties, err := h.properties.GetAllProperties(r.Context(), req.options(), limit)
	if err != nil {
		serverError(w, h.log, "search properties", err)
		return
	}

	writeJSON(w, http.StatusOK, propertiesResponse{Properties: properties})
}

// Create lists a property owned by the session user. cost_per_night is in
// cents.
func (h *PropertyHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.sessions.UserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: msgNotLoggedIn})
		return
	}

	var p models.Property
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request"})
		return
	}
	p.ID = 0
	p.OwnerID = userID

	created, err := h.properties.AddProperty(r.Context(), &p)
	if err != nil {
		serverError(w, h.log, "add property", err)
		return
	}

	writeJSON(w, http.StatusCreated, propertyResponse{Property: created})
}

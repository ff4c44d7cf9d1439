package router

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"lightbnb/internal/db"
	"lightbnb/internal/http/handlers"
	"lightbnb/internal/security"
)

const uploadsPrefix = "/uploads/"

type Options struct {
	SearchLimit int
	UploadDir   string
}

func Setup(database *db.DB, sessionStore *security.SessionStore, log *zap.Logger, opts Options) *mux.Router {
	return setup(database, database, database, sessionStore, log, opts)
}

func setup(users handlers.UserStore, properties handlers.PropertyStore, reservations handlers.ReservationStore,
	sessionStore *security.SessionStore, log *zap.Logger, opts Options) *mux.Router {
	r := mux.NewRouter()
	r.Use(requestID, accessLog(log), recoverer(log))

	authHandler := handlers.NewAuthHandler(users, sessionStore, log)
	propertyHandler := handlers.NewPropertyHandler(properties, sessionStore, opts.SearchLimit, log)
	reservationHandler := handlers.NewReservationHandler(reservations, sessionStore, opts.SearchLimit, log)
	photoHandler := handlers.NewPhotoHandler(sessionStore, opts.UploadDir, uploadsPrefix, log)

	u := r.PathPrefix("/users").Subrouter()
	u.HandleFunc("", authHandler.Register).Methods(http.MethodPost)
	u.HandleFunc("/", authHandler.Register).Methods(http.MethodPost)
	u.HandleFunc("/login", authHandler.Login).Methods(http.MethodPost)
	u.HandleFunc("/logout", authHandler.Logout).Methods(http.MethodPost)
	u.HandleFunc("/me", authHandler.Me).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/properties", propertyHandler.Search).Methods(http.MethodGet)
	api.HandleFunc("/properties", propertyHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/reservations", reservationHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/photos", photoHandler.Upload).Methods(http.MethodPost)

	r.PathPrefix(uploadsPrefix).Handler(http.StripPrefix(uploadsPrefix, http.FileServer(http.Dir(opts.UploadDir))))

	return r
}

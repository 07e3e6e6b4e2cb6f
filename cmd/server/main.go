package main

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"

	"vagalivre/internal/api"
	"vagalivre/internal/auth"
	"vagalivre/internal/config"
	"vagalivre/internal/events"
	"vagalivre/internal/logging"
	"vagalivre/internal/repository"
	"vagalivre/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := logging.New("vagalivre", "info")
		boot.Fatal().Err(err).Msg("failed to load config")
	}
	log := logging.New("vagalivre", cfg.LogLevel)

	database, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open DB")
	}
	if err := database.Ping(); err != nil {
		log.Fatal().Err(err).Msg("failed to connect to DB")
	}
	if err := repository.RunMigrations(context.Background(), database); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	reservationRepo := repository.NewReservationRepository(database)
	spotRepo := repository.NewSpotRepository(database)
	availabilityRepo := repository.NewAvailabilityRepository(database)
	userRepo := repository.NewUserRepository(database)

	bus := events.NewBus()

	authSvc := service.NewAuthService(userRepo, cfg.JWTSecret)
	spotSvc := service.NewSpotService(spotRepo, log)
	availabilitySvc := service.NewAvailabilityService(spotRepo, availabilityRepo, reservationRepo, log)
	bookingSvc := service.NewBookingService(reservationRepo, spotRepo, bus, log)
	notifySvc := service.NewNotifyService(userRepo, spotRepo, cfg.SendGrid, cfg.Twilio, log)
	jobSvc := service.NewJobService(reservationRepo, spotRepo, bus, log)

	bus.Subscribe(notifySvc.HandleEvent)

	authHandler := api.NewAuthHandler(authSvc)
	spotHandler := api.NewSpotHandler(spotSvc, availabilitySvc)
	bookingHandler := api.NewBookingHandler(bookingSvc)

	r := mux.NewRouter()
	r.Use(api.RequestLogger(log))

	// Public endpoints
	r.HandleFunc("/api/auth/register", authHandler.Register).Methods("POST")
	r.HandleFunc("/api/auth/login", authHandler.Login).Methods("POST")
	r.HandleFunc("/api/spots", spotHandler.ListSpots).Methods("GET")
	r.HandleFunc("/api/spots/{id}", spotHandler.GetSpot).Methods("GET")
	r.HandleFunc("/api/spots/{id}/availability", spotHandler.GetAvailability).Methods("GET")

	// Authenticated endpoints
	private := r.PathPrefix("/api").Subrouter()
	private.Use(auth.Middleware(authSvc))
	private.HandleFunc("/spots", spotHandler.CreateSpot).Methods("POST")
	private.HandleFunc("/spots/{id}/availability", spotHandler.ReplaceAvailability).Methods("PUT")
	private.HandleFunc("/reservations", bookingHandler.CreateReservation).Methods("POST")
	private.HandleFunc("/reservations", bookingHandler.ListMyReservations).Methods("GET")
	private.HandleFunc("/reservations/code/{code}", bookingHandler.GetReservationByCode).Methods("GET")
	private.HandleFunc("/reservations/{id}/approve", bookingHandler.ApproveReservation).Methods("POST")
	private.HandleFunc("/reservations/{id}/refuse", bookingHandler.RefuseReservation).Methods("POST")
	private.HandleFunc("/reservations/{id}", bookingHandler.CancelReservation).Methods("DELETE")

	c := cron.New()
	if _, err := c.AddFunc(cfg.ExpireSweepSpec, func() {
		if err := jobSvc.ExpirePendingReservations(context.Background()); err != nil {
			log.Error().Err(err).Msg("expiry sweep failed")
		}
	}); err != nil {
		log.Fatal().Err(err).Msg("failed to schedule expiry sweep")
	}
	c.Start()
	defer c.Stop()

	corsHandler := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)(r)

	log.Info().Str("port", cfg.Port).Msg("server running")
	if err := http.ListenAndServe(":"+cfg.Port, corsHandler); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pawmatch-backend/internal/classifier"
	"pawmatch-backend/internal/config"
	"pawmatch-backend/internal/handlers"
	"pawmatch-backend/internal/middleware"
	"pawmatch-backend/internal/migrations"
	"pawmatch-backend/internal/repository"
	"pawmatch-backend/internal/services"
	"pawmatch-backend/internal/storage"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func Run() {
	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	setupLogger(cfg.Log.Level)

	// Run migrations
	migrationDB, err := sql.Open("pgx", cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database for migrations")
	}
	if err := migrations.Run(migrationDB); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}
	migrationDB.Close()

	// Connect to database
	db, err := pgxpool.New(context.Background(), cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := db.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Database connection established")

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	photoRepo := repository.NewPhotoRepository(db)
	dogRepo := repository.NewDogGroupRepository(db)

	// Initialize object storage
	store, err := storage.NewS3Store(context.Background(), storage.Options{
		Region:        cfg.AWS.Region,
		Bucket:        cfg.AWS.S3Bucket,
		AccessKey:     cfg.AWS.AccessKey,
		SecretKey:     cfg.AWS.SecretKey,
		Endpoint:      cfg.AWS.Endpoint,
		PublicBaseURL: cfg.AWS.PublicBaseURL,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create object store")
	}

	// Initialize services
	userService := services.NewUserService(userRepo, profileRepo, cfg.JWT.Secret)
	hub := services.NewHub()
	remoteClassifier := classifier.NewRemoteClassifier(
		cfg.Classifier.BaseURL,
		cfg.Classifier.APIKey,
		cfg.Classifier.Timeout(),
	)
	intakeService := services.NewIntakeService(photoRepo, store)
	validationService := services.NewValidationService(photoRepo, store, remoteClassifier, hub)

	notifiers := []services.ProfileNotifier{hub}
	if cfg.APNs.Enabled {
		apnsNotifier, err := services.NewAPNsNotifier(
			cfg.APNs.KeyFile,
			cfg.APNs.KeyID,
			cfg.APNs.TeamID,
			cfg.APNs.Topic,
			cfg.APNs.Production,
			userRepo,
		)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create APNs notifier")
		}
		notifiers = append(notifiers, apnsNotifier)
	}
	eligibilityService := services.NewEligibilityService(profileRepo, photoRepo, dogRepo, notifiers...)

	// Start the stale-photo sweeper
	sweeper := services.NewSweeper(
		photoRepo,
		validationService,
		cfg.Pipeline.SweepSchedule,
		cfg.Pipeline.PendingTTL(),
		cfg.Pipeline.SweepConcurrency,
	)
	if err := sweeper.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start sweeper")
	}
	defer sweeper.Stop()

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService)
	dogHandler := handlers.NewDogHandler(dogRepo)
	photoHandler := handlers.NewPhotoHandler(intakeService, validationService, photoRepo)
	profileHandler := handlers.NewProfileHandler(eligibilityService, profileRepo)
	eventHandler := handlers.NewEventHandler(validationService, cfg.Server.EventSecret)
	wsHandler := handlers.NewWebSocketHandler(hub, userService)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(corsMiddleware)

	// Routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Post("/users", userHandler.CreateUser)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(userService))
			r.Put("/users/push-token", userHandler.UpdatePushToken)
			r.Post("/dogs", dogHandler.CreateDog)
			r.Get("/dogs", dogHandler.GetDogs)
			r.Post("/photos", photoHandler.UploadPhoto)
			r.Get("/photos", photoHandler.GetPhotos)
			r.Get("/profile", profileHandler.GetProfile)
			r.Post("/profile/finalize", profileHandler.FinalizeProfile)
		})
	})

	// Storage trigger webhook
	r.Post("/internal/events/photo-created", eventHandler.PhotoCreated)

	// WebSocket route
	r.Get("/ws", wsHandler.HandleWebSocket)

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// setupLogger configures zerolog logger
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

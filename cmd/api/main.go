package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/deskhub/deskhub-api/internal/config"
	"github.com/deskhub/deskhub-api/internal/domain/auth"
	"github.com/deskhub/deskhub-api/internal/domain/image"
	"github.com/deskhub/deskhub-api/internal/domain/notification"
	"github.com/deskhub/deskhub-api/internal/domain/office"
	"github.com/deskhub/deskhub-api/internal/domain/reservation"
	"github.com/deskhub/deskhub-api/internal/domain/tag"
	"github.com/deskhub/deskhub-api/internal/domain/user"
	"github.com/deskhub/deskhub-api/internal/middleware"
	"github.com/deskhub/deskhub-api/internal/pkg/database"
	"github.com/deskhub/deskhub-api/internal/pkg/imaging"
	"github.com/deskhub/deskhub-api/internal/pkg/jwt"
	pkgresponse "github.com/deskhub/deskhub-api/internal/pkg/response"
	"github.com/deskhub/deskhub-api/internal/pkg/storage"
)

func main() {
	cfg := config.Load()
	setupLogger(cfg)

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting DeskHub API")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	redis, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(redis)

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL)

	store, err := newStorage(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StorageDriver).Msg("Failed to create storage")
	}

	// ---------- Repositories ----------
	userRepo := user.NewRepository(db)
	tagRepo := tag.NewRepository(db, redis)
	officeRepo := office.NewRepository(db)
	imageRepo := image.NewRepository(db)
	reservationRepo := reservation.NewRepository(db)
	notificationRepo := notification.NewRepository(db)

	// ---------- Services ----------
	authService := auth.NewService(userRepo, jwtService)
	notificationService := notification.NewService(notificationRepo)

	imageService := image.NewService(
		imageRepo,
		&imageOfficeAdapter{repo: officeRepo},
		store,
		imaging.NewProcessor(imaging.DefaultConfig()),
		cfg.ImageMaxBytes,
	)

	officeService := office.NewService(officeRepo, tagRepo, userRepo, imageService, notificationService)
	reservationService := reservation.NewService(reservationRepo, &reservationOfficeAdapter{repo: officeRepo}, notificationService)

	// ---------- Handlers ----------
	authHandler := auth.NewHandler(authService)
	tagHandler := tag.NewHandler(tagRepo)
	officeHandler := office.NewHandler(officeService)
	imageHandler := image.NewHandler(imageService, cfg.ImageMaxBytes)
	reservationHandler := reservation.NewHandler(reservationService)
	notificationHandler := notification.NewHandler(notificationService)

	// ---------- Router ----------
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))
	r.Use(chimw.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		pkgresponse.OK(w, map[string]string{
			"status":  "ok",
			"version": "1.0.0",
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Mount("/auth", authHandler.Routes())
		r.Mount("/tags", tagHandler.Routes())
		r.Mount("/offices", officeHandler.Routes(jwtService))
		r.Mount("/offices/{officeID}/images", imageHandler.Routes(
			middleware.Auth(jwtService),
			middleware.RequireScope(office.ScopeUpdate),
		))
		r.Mount("/reservations", reservationHandler.Routes(jwtService))
		r.Mount("/notifications", notificationHandler.Routes(jwtService))
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}

func newStorage(cfg *config.Config) (storage.Storage, error) {
	if cfg.StorageDriver == "s3" {
		return storage.NewS3Storage(storage.Config{
			S3Endpoint:  cfg.S3Endpoint,
			S3Region:    cfg.S3Region,
			S3AccessKey: cfg.S3AccessKey,
			S3SecretKey: cfg.S3SecretKey,
			S3Bucket:    cfg.S3Bucket,
		})
	}
	return storage.NewLocalStorage(cfg.StorageLocalPath, cfg.StorageBaseURL)
}

func setupLogger(cfg *config.Config) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: "15:04:05",
		})
	}
}

// Adapter implementations to bridge interface mismatches

// imageOfficeAdapter adapts office.Repository to image.OfficeProvider
type imageOfficeAdapter struct {
	repo office.Repository
}

func (a *imageOfficeAdapter) OfficeRef(ctx context.Context, id uuid.UUID) (*image.OfficeRef, error) {
	o, err := a.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, nil
	}
	return &image.OfficeRef{
		ID:              o.ID,
		OwnerID:         o.UserID,
		FeaturedImageID: o.FeaturedImageID,
	}, nil
}

// reservationOfficeAdapter adapts office.Repository to reservation.OfficeProvider
type reservationOfficeAdapter struct {
	repo office.Repository
}

func (a *reservationOfficeAdapter) OfficeInfo(ctx context.Context, id uuid.UUID) (*reservation.OfficeInfo, error) {
	o, err := a.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, nil
	}
	return &reservation.OfficeInfo{
		ID:              o.ID,
		OwnerID:         o.UserID,
		PricePerDay:     o.PricePerDay,
		MonthlyDiscount: o.MonthlyDiscount,
		Approved:        o.ApprovalStatus == office.ApprovalApproved,
		Hidden:          o.Hidden,
		Title:           o.Title,
		AddressLine1:    o.AddressLine1,
	}, nil
}

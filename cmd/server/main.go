package main

import (
	"alcyxob/gym-app/internal/api"
	"alcyxob/gym-app/internal/config"
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/logging"
	"alcyxob/gym-app/internal/mailer"
	"alcyxob/gym-app/internal/repository"
	"alcyxob/gym-app/internal/repository/memory"
	"alcyxob/gym-app/internal/repository/mongo"
	"alcyxob/gym-app/internal/service"
	"alcyxob/gym-app/internal/session"
	"alcyxob/gym-app/internal/storage"
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

// @title Gym Routines API
// @version 1.0
// @description API for trainers building training routines and students following them.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}
	logging.Setup(logging.LoggerSetupParams{
		LogFileName:   cfg.Log.File,
		LogToStdout:   cfg.Log.Stdout,
		LogLevel:      cfg.Log.Level,
		LogFormatJSON: cfg.Log.JSON,
	})
	log.Info("starting gym app server")
	for _, warning := range cfg.Warnings() {
		log.Warn(warning)
	}

	calendar, err := cfg.Server.Location()
	if err != nil {
		log.Fatalf("invalid server timezone: %v", err)
	}

	var closers []func(context.Context) error

	// --- Database ---
	var repos repository.Repositories
	switch cfg.Database.Driver {
	case config.DriverMemory:
		log.Warn("using in-memory store, data is lost on restart")
		repos = memory.NewRepositories()
	default:
		dbClient, err := mongo.ConnectDB(cfg.Database.URI)
		if err != nil {
			log.Fatalf("could not connect to MongoDB: %v", err)
		}
		closers = append(closers, func(context.Context) error { return mongo.DisconnectDB(dbClient) })
		appDB := dbClient.Database(cfg.Database.Name)

		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		if err := mongo.EnsureIndexes(ctx, appDB); err != nil {
			// unique indexes back the Conflict errors, so refuse to run without them
			cancel()
			log.Fatalf("could not ensure indexes: %v", err)
		}
		cancel()
		repos = mongo.NewRepositories(dbClient, appDB, cfg.Database.UseTransactions)
		log.WithField("database", cfg.Database.Name).Info("database connection established")
	}

	// --- Sessions and rate limiting ---
	var (
		sessions    session.Store
		rateLimiter api.RequestRateLimiter
	)
	if cfg.Redis.Address != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			cancel()
			log.Fatalf("could not reach redis at %s: %v", cfg.Redis.Address, err)
		}
		cancel()
		closers = append(closers, func(context.Context) error { return redisClient.Close() })
		sessions = session.NewRedisStore(redisClient)
		rateLimiter = redis_rate.NewLimiter(redisClient)
	} else {
		log.Warn("no redis configured, tokens are kept in memory and auth is not rate limited")
		sessions = session.NewMemoryStore()
	}

	// --- Storage ---
	var files storage.FileStorage
	if cfg.S3.BucketName != "" {
		files, err = storage.NewS3Storage(cfg.S3)
		if err != nil {
			log.Fatalf("failed to initialize S3 storage: %v", err)
		}
	} else {
		log.Warn("no bucket configured, video uploads are disabled")
	}

	// --- Mail ---
	var mail mailer.Mailer
	if cfg.Mail.Driver == "ses" {
		sesMailer, err := mailer.NewSESMailer(context.Background(), cfg.Mail.Region, cfg.Mail.From)
		if err != nil {
			log.Fatalf("failed to initialize SES mailer: %v", err)
		}
		mail = sesMailer
	} else {
		mail = mailer.NewLogMailer()
	}

	// --- Services ---
	authService := service.NewAuthService(repos.Profiles, sessions, mail, service.AuthConfig{
		JWTSecret:         cfg.JWT.Secret,
		JWTExpiration:     cfg.JWT.Expiration,
		RefreshExpiration: cfg.JWT.RefreshExpiration,
		AppURL:            cfg.Mail.AppURL,
	})
	if cfg.Admin.Email != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		admin, created, err := service.EnsureAdmin(ctx, repos.Profiles, service.SignUpInput{
			Email:    cfg.Admin.Email,
			Password: cfg.Admin.Password,
			FullName: cfg.Admin.FullName,
		})
		cancel()
		switch {
		case err != nil:
			log.Fatalf("could not seed admin account: %v", err)
		case created:
			log.WithField("email", admin.Email).Info("admin account created")
		case admin.Role != domain.RoleAdmin:
			log.WithField("email", admin.Email).Warn("admin.email belongs to a non-admin account, not promoting it")
		}
	}

	services := api.Services{
		Auth:        authService,
		Profiles:    service.NewProfileService(repos),
		Admin:       service.NewAdminService(repos),
		Roster:      service.NewRosterService(repos),
		Routines:    service.NewRoutineService(repos, files),
		Assignments: service.NewAssignmentService(repos),
		Progress:    service.NewProgressService(repos),
		Comments:    service.NewCommentService(repos),
	}

	// --- HTTP ---
	if err := api.RegisterValidators(); err != nil {
		log.Fatalf("failed to register validators: %v", err)
	}
	router := gin.New()
	router.Use(gin.Recovery(), api.RequestLogger())
	api.SetupRoutes(router, services, api.RouteOptions{
		RateLimiter:      rateLimiter,
		AuthPerMinute:    cfg.RateLimit.AuthPerMinute,
		CalendarLocation: calendar,
	})

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.WithField("address", cfg.Server.Address).Info("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("ListenAndServe error: %v", err)
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	errs := server.Shutdown(ctxShutdown)
	for i := len(closers) - 1; i >= 0; i-- {
		errs = multierr.Append(errs, closers[i](ctxShutdown))
	}
	cancelShutdown()
	if errs != nil {
		log.WithError(errs).Error("unclean shutdown")
		os.Exit(1)
	}
	log.Info("server exiting")
}

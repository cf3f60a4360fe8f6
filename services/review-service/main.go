package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tunebox/songreview/internal/auth"
	"github.com/tunebox/songreview/internal/logger"
	"github.com/tunebox/songreview/services/review-service/config"
	"github.com/tunebox/songreview/services/review-service/handler"
	"github.com/tunebox/songreview/services/review-service/middleware"
	"github.com/tunebox/songreview/services/review-service/repository"
	"github.com/tunebox/songreview/services/review-service/service"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"
)

func main() {

	cfg := config.LoadConfig()

	logger.Init(logger.Config{
		ServiceName: "review-service",
		Environment: cfg.Environment,
		LogFilePath: cfg.LogFilePath,
		HMACKey:     cfg.LogHMACKey,
		MaxSizeMB:   cfg.LogMaxSizeMB,
		MaxBackups:  cfg.LogMaxBackups,
		MaxAgeDays:  cfg.LogMaxAgeDays,
	})

	logger.Info(logger.EventServiceStartup, "Review service starting", logger.Fields(
		"port", cfg.ServerPort,
		"environment", cfg.Environment,
	))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Fatal(logger.EventDBError, "Failed to connect to MongoDB", logger.Fields("error", err.Error()))
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		logger.Fatal(logger.EventDBError, "Failed to ping MongoDB", logger.Fields("error", err.Error()))
	}

	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Error(logger.EventDBError, "Error disconnecting from MongoDB", logger.Fields("error", err.Error()))
		}
	}()

	logger.Info(logger.EventDBConnection, "Connected to MongoDB successfully", logger.Fields(
		"database", cfg.MongoDatabase,
	))

	db := client.Database(cfg.MongoDatabase)

	reviewRepo := repository.NewReviewRepository(db)
	reviewService := service.NewReviewService(
		reviewRepo,
		service.NewSongCatalog(cfg.ContentServiceURL),
		service.NewUserDirectory(cfg.UserServiceURL),
		service.NewNotifier(cfg.NotificationsServiceURL, cfg.InternalAPIKey),
	)
	reviewHandler := handler.NewReviewHandler(reviewService)

	if err := handler.RegisterValidators(); err != nil {
		logger.Fatal(logger.EventGeneral, "Failed to register validators", logger.Fields("error", err.Error()))
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	router := gin.Default()
	router.RedirectTrailingSlash = false
	router.Use(middleware.SecurityHeaders())
	router.Use(limiter.Middleware())

	authenticator := auth.NewJWTAuthenticator(cfg.JWTSecret, 24*time.Hour)
	reviewHandler.RegisterRoutes(router, auth.Middleware(authenticator))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info(logger.EventServiceStartup, "Server starting", logger.Fields("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		limiter.Sweep(gctx, 5*time.Minute)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info(logger.EventServiceShutdown, "Shutting down server", nil)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error(logger.EventGeneral, "Server stopped with error", logger.Fields("error", err.Error()))
	}
}

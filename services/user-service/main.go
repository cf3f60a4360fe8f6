package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tunebox/songreview/internal/auth"
	"github.com/tunebox/songreview/internal/logger"
	"github.com/tunebox/songreview/services/user-service/config"
	"github.com/tunebox/songreview/services/user-service/handler"
	"github.com/tunebox/songreview/services/user-service/middleware"
	"github.com/tunebox/songreview/services/user-service/repository"
	"github.com/tunebox/songreview/services/user-service/service"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg := config.LoadConfig()

	logger.Init(logger.Config{
		ServiceName: "user-service",
		Environment: cfg.Environment,
		LogFilePath: cfg.LogFilePath,
		HMACKey:     cfg.LogHMACKey,
		MaxSizeMB:   cfg.LogMaxSizeMB,
		MaxBackups:  cfg.LogMaxBackups,
		MaxAgeDays:  cfg.LogMaxAgeDays,
	})

	logger.Info(logger.EventServiceStartup, "User service starting", logger.Fields(
		"port", cfg.ServerPort,
		"environment", cfg.Environment,
	))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Fatal(logger.EventDBError, "Failed to connect to MongoDB", logger.Fields("error", err.Error()))
	}
	defer client.Disconnect(context.Background())

	if err := client.Ping(connectCtx, nil); err != nil {
		logger.Fatal(logger.EventDBError, "Failed to ping MongoDB", logger.Fields("error", err.Error()))
	}
	logger.Info(logger.EventDBConnection, "Connected to MongoDB successfully", nil)

	db := client.Database(cfg.MongoDatabase)

	authenticator := auth.NewJWTAuthenticator(cfg.JWTSecret, cfg.JWTTTL)
	userRepo := repository.NewUserRepository(db)
	userService := service.NewUserService(userRepo, authenticator)
	userHandler := handler.NewUserHandler(userService)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.RequestGuard())

	generalRateLimiter := middleware.NewRateLimiter(100, time.Minute)
	router.Use(generalRateLimiter.Middleware())
	authRateLimiter := middleware.NewRateLimiter(5, time.Minute)

	userHandler.RegisterRoutes(router, auth.Middleware(authenticator), authRateLimiter.Middleware())

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info(logger.EventServiceStartup, "Server starting", logger.Fields("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		generalRateLimiter.Cleanup(gctx)
		return nil
	})
	g.Go(func() error {
		authRateLimiter.Cleanup(gctx)
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

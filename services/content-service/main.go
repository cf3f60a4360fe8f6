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
	"github.com/tunebox/songreview/services/content-service/config"
	"github.com/tunebox/songreview/services/content-service/handler"
	"github.com/tunebox/songreview/services/content-service/middleware"
	"github.com/tunebox/songreview/services/content-service/repository"
	"github.com/tunebox/songreview/services/content-service/service"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg := config.Load()

	logger.Init(logger.Config{
		ServiceName: "content-service",
		Environment: cfg.Environment,
		LogFilePath: cfg.LogFilePath,
		HMACKey:     cfg.LogHMACKey,
		MaxSizeMB:   cfg.LogMaxSizeMB,
		MaxBackups:  cfg.LogMaxBackups,
		MaxAgeDays:  cfg.LogMaxAgeDays,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Fatal(logger.EventDBError, "Failed to connect to MongoDB", logger.Fields("error", err.Error()))
	}
	defer client.Disconnect(context.Background())
	db := client.Database(cfg.MongoDB)

	importer := service.NewSpotifyImporter(ctx, cfg.SpotifyClientID, cfg.SpotifyClientSecret)
	if importer == nil {
		logger.Warn(logger.EventServiceStartup, "Spotify credentials missing, import disabled", nil)
	}

	repo := repository.NewSongRepository(db)
	svc := service.NewSongService(repo, importer)
	h := handler.NewSongHandler(svc)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ValidateRequest())
	h.RegisterRoutes(r, auth.NewJWTAuthenticator(cfg.JWTSecret, 24*time.Hour))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info(logger.EventServiceStartup, "Starting content-service", logger.Fields("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error(logger.EventGeneral, "Server stopped with error", logger.Fields("error", err.Error()))
	}
}

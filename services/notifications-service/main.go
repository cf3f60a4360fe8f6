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
	"github.com/gocql/gocql"
	"github.com/tunebox/songreview/internal/auth"
	"github.com/tunebox/songreview/internal/logger"
	"github.com/tunebox/songreview/services/notifications-service/config"
	"github.com/tunebox/songreview/services/notifications-service/handler"
	"github.com/tunebox/songreview/services/notifications-service/repository"
	"github.com/tunebox/songreview/services/notifications-service/service"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg := config.LoadConfig()

	logger.Init(logger.Config{
		ServiceName: "notifications-service",
		Environment: cfg.Environment,
		LogFilePath: cfg.LogFilePath,
		HMACKey:     cfg.LogHMACKey,
		MaxSizeMB:   cfg.LogMaxSizeMB,
		MaxBackups:  cfg.LogMaxBackups,
		MaxAgeDays:  cfg.LogMaxAgeDays,
	})

	logger.Info(logger.EventServiceStartup, "Notifications service starting", logger.Fields(
		"port", cfg.ServerPort,
		"environment", cfg.Environment,
	))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cluster := gocql.NewCluster(cfg.CassandraHosts...)
	cluster.Keyspace = cfg.CassandraKeyspace
	cluster.Consistency = gocql.Quorum
	cluster.Timeout = 10 * time.Second
	cluster.ConnectTimeout = 10 * time.Second

	session, err := cluster.CreateSession()
	if err != nil {
		logger.Fatal(logger.EventDBError, "Failed to connect to Cassandra", logger.Fields("error", err.Error()))
	}
	defer session.Close()

	if err := repository.EnsureSchema(ctx, session); err != nil {
		logger.Fatal(logger.EventDBError, "Failed to create notifications table", logger.Fields("error", err.Error()))
	}

	logger.Info(logger.EventDBConnection, "Connected to Cassandra successfully", nil)

	notificationRepo := repository.NewNotificationRepository(session)
	notificationService := service.NewNotificationService(notificationRepo)
	notificationHandler := handler.NewNotificationHandler(notificationService)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("X-Content-Type-Options", "nosniff")
		c.Writer.Header().Set("X-Frame-Options", "DENY")
		c.Writer.Header().Set("X-XSS-Protection", "1; mode=block")
		c.Next()
	})

	authenticator := auth.NewJWTAuthenticator(cfg.JWTSecret, 24*time.Hour)
	notificationHandler.RegisterRoutes(router, auth.Middleware(authenticator), cfg.InternalAPIKey)

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

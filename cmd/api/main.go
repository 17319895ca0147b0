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
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"tradelink/internal/config"
	"tradelink/internal/database"
	"tradelink/internal/domain/auth"
	"tradelink/internal/domain/chat"
	"tradelink/internal/domain/complaint"
	"tradelink/internal/domain/linking"
	"tradelink/internal/domain/order"
	"tradelink/internal/domain/upload"
	"tradelink/internal/middleware"
	jwtsvc "tradelink/internal/pkg/jwt"
	"tradelink/internal/pkg/logger"
	"tradelink/internal/repository"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	log.Logger = logger.New(cfg.LogLevel, cfg.AppEnv)

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	rootCtx, stopRelay := context.WithCancel(context.Background())
	defer stopRelay()

	hub := chat.NewHub(log.Logger)
	var broadcaster chat.Broadcaster = hub
	var relay *chat.Relay
	if cfg.RedisURL != "" {
		relay, err = chat.NewRelay(rootCtx, cfg.RedisURL, hub, log.Logger)
		if err != nil {
			log.Fatal().Err(err).Msg("connect redis relay")
		}
		broadcaster = relay
		go relay.Run(rootCtx)
	}

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTAccessTTL)
	store := repository.New(db)

	directory := chat.NewDirectory(db)
	messages := chat.NewMessageRepository(db)
	composer := chat.NewComposer(directory, messages)

	chatService := chat.NewService(store, directory, messages, broadcaster)
	chatHandler := chat.NewHandler(chatService)
	wsHandler := chat.NewWSHandler(chatService, hub, j, cfg.WS, cfg.CORSAllowedOrigins, log.Logger)

	authHandler := auth.NewHandler(auth.NewService(store, j, log.Logger))
	linkingHandler := linking.NewHandler(linking.NewService(db, log.Logger))
	orderHandler := order.NewHandler(order.NewService(db, directory, composer, broadcaster, log.Logger))
	complaintHandler := complaint.NewHandler(complaint.NewService(db, composer, broadcaster, log.Logger))

	var presigner upload.Presigner
	if cfg.S3.Enabled() {
		presigner, err = upload.NewS3Presigner(cfg.S3)
		if err != nil {
			log.Fatal().Err(err).Msg("configure object storage")
		}
	} else {
		log.Warn().Msg("S3_BUCKET not set, attachment uploads disabled")
	}
	uploadHandler := upload.NewHandler(upload.NewService(db, presigner, cfg.S3.UploadURLTTL, log.Logger))

	if cfg.IsProdLike() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Recovery(log.Logger), middleware.RequestLogger(log.Logger), middleware.CORS(cfg.CORSAllowedOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	chat.RegisterWSRoutes(r, wsHandler)

	v1 := r.Group("/api/v1")
	{
		authHandler.RegisterPublicRoutes(v1)

		protected := v1.Group("")
		protected.Use(middleware.JWTAuth(j))
		{
			authHandler.RegisterProtectedRoutes(protected)
			linking.RegisterRoutes(protected, linkingHandler)
			order.RegisterRoutes(protected, orderHandler)
			complaint.RegisterRoutes(protected, complaintHandler)
			chat.RegisterRoutes(protected, chatHandler)
			upload.RegisterRoutes(protected, uploadHandler)
		}
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Str("env", cfg.AppEnv).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	// hijacked websocket connections are not tracked by Shutdown
	hub.Close()

	stopRelay()
	if relay != nil {
		if err := relay.Close(); err != nil {
			log.Warn().Err(err).Msg("close redis relay")
		}
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	log.Info().Msg("server exited")
}

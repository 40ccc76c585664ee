package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/ArinjayBhola/DocuSend-sub001/pkg/database"
	"github.com/ArinjayBhola/DocuSend-sub001/pkg/jwt"
	pkglog "github.com/ArinjayBhola/DocuSend-sub001/pkg/log"
	"github.com/ArinjayBhola/DocuSend-sub001/pkg/middleware"

	"github.com/ArinjayBhola/DocuSend-sub001/internal/analytics"
	"github.com/ArinjayBhola/DocuSend-sub001/internal/cache"
	"github.com/ArinjayBhola/DocuSend-sub001/internal/collab"
	"github.com/ArinjayBhola/DocuSend-sub001/internal/config"
	"github.com/ArinjayBhola/DocuSend-sub001/internal/domain"
	"github.com/ArinjayBhola/DocuSend-sub001/internal/handler"
	"github.com/ArinjayBhola/DocuSend-sub001/internal/hub"
	"github.com/ArinjayBhola/DocuSend-sub001/internal/presence"
	"github.com/ArinjayBhola/DocuSend-sub001/internal/repository"
	"github.com/ArinjayBhola/DocuSend-sub001/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		pkglog.L().Fatal().Err(err).Msg("failed to load config")
	}

	// Initialize structured logger
	pkglog.Init(pkglog.Config{
		Level:       cfg.Log.Level,
		Pretty:      cfg.Log.Level == "debug",
		ServiceName: "presence-engine",
	})
	logger := pkglog.L()

	// Connect to database using GORM
	db, err := database.New(&database.Config{
		Driver:          cfg.Database.Driver,
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		FilePath:        cfg.Database.FilePath,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	if err := database.AutoMigrate(db,
		&domain.DocumentModel{},
		&domain.CollabSessionModel{},
		&domain.AnnotationModel{},
		&domain.ChatMessageModel{},
	); err != nil {
		logger.Fatal().Err(err).Msg("failed to auto-migrate")
	}
	logger.Info().Msg("database migration completed")

	// Repositories
	documentRepo := repository.NewGormDocumentRepository(db)
	sessionRepo := repository.NewGormSessionRepository(db)
	annotationRepo := repository.NewGormAnnotationRepository(db)
	messageRepo := repository.NewGormMessageRepository(db)

	// Document metadata cache
	var documentCache cache.DocumentCache = cache.Noop{}
	if cfg.Redis.Enabled {
		redisCache, err := cache.NewRedisDocumentCache(cfg.Redis, cfg.Cache.Prefix)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		documentCache = redisCache
		logger.Info().Msg("redis cache connected")
	}
	defer documentCache.Close()

	// Analytics export
	var producer analytics.Producer = analytics.Noop{}
	if cfg.Kafka.Enabled {
		kafkaProducer, err := analytics.NewConfluentProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.Partitions)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create kafka producer")
		}
		producer = kafkaProducer
		logger.Info().Str("topic", cfg.Kafka.Topic).Msg("kafka analytics export enabled")
	}
	defer producer.Close()

	// Services
	documentService := service.NewDocumentService(documentRepo, documentCache, cfg.Cache.TTL)
	sessionService := service.NewSessionService(sessionRepo, documentService)

	// Presence engine
	broadcastHub := hub.NewHub()
	presenceReg := presence.NewRegistry(broadcastHub, producer, presence.Config{
		SweepInterval: cfg.Presence.SweepInterval,
		ViewTTL:       cfg.Presence.ViewTTL,
	})
	collabReg := collab.NewRegistry()

	// Auth
	jwtManager := jwt.NewManager(cfg.Auth.JWTSecret, cfg.Auth.AccessDuration, cfg.Auth.Issuer)
	authMiddleware := middleware.NewAuthMiddleware(jwtManager)

	// Handlers
	httpHandler := handler.NewHandler(
		presenceReg, collabReg, broadcastHub,
		documentService, sessionService,
		annotationRepo, messageRepo,
		authMiddleware,
	)
	wsHandler := handler.NewWSHandler(broadcastHub, collabReg, sessionService, authMiddleware, cfg.WebSocket)

	// Setup Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(pkglog.GinMiddleware(*logger))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	httpHandler.RegisterRoutes(r)
	wsHandler.RegisterRoutes(r)

	// Run the sweep and the HTTP server until interrupted.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return presenceReg.Run(ctx)
	})
	g.Go(func() error {
		logger.Info().Str("addr", addr).Str("driver", cfg.Database.Driver).Msg("presence engine starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal().Err(err).Msg("presence engine exited with error")
	}
	logger.Info().Msg("presence engine stopped")
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/auth"
	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/cache"
	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/config"
	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/database"
	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/domain"
	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/events"
	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/handler"
	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/hub"
	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/log"
	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/middleware"
	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/relay"
	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/repository"
	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/service"
	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/workflow"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log.Init(cfg.Log)
	logger := log.L()

	db, err := database.New(&cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	if err := database.AutoMigrate(db,
		&domain.User{},
		&domain.Customer{},
		&domain.ChatSession{},
		&domain.ChatMessage{},
		&domain.Deal{},
		&domain.Campaign{},
		&domain.CampaignCustomer{},
		&domain.CalendarEvent{},
		&domain.WorkflowRule{},
		&domain.Task{},
		&domain.UserActivity{},
		&domain.CustomerActivity{},
	); err != nil {
		logger.Fatal().Err(err).Msg("auto-migrate failed")
	}
	logger.Info().Msg("database migration completed")

	// Optional Redis cache.
	var crmCache *cache.RedisCache
	if cfg.Redis.Address != "" {
		redisClient, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
		crmCache = cache.NewRedisCache(redisClient, cfg.Cache)
		logger.Info().Str("address", cfg.Redis.Address).Msg("redis cache enabled")
	}

	// Event feed: Kafka when brokers are configured, no-op otherwise.
	var producer events.Producer = events.NewNoopProducer()
	if cfg.Kafka.Enabled() {
		kafkaProducer, err := events.NewConfluentProducer(cfg.Kafka.Brokers, cfg.Kafka.EventsTopic, cfg.Kafka.Partitions)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create kafka producer")
		}
		producer = kafkaProducer
		logger.Info().Str("brokers", cfg.Kafka.Brokers).Msg("event feed enabled")
	}
	defer producer.Close()

	// Repositories.
	userRepo := repository.NewGormUserRepository(db)
	customerRepo := repository.NewGormCustomerRepository(db)
	chatRepo := repository.NewGormChatRepository(db)
	dealRepo := repository.NewGormDealRepository(db)
	campaignRepo := repository.NewGormCampaignRepository(db)
	calendarRepo := repository.NewGormCalendarRepository(db)
	workflowRepo := repository.NewGormWorkflowRepository(db)
	activityRepo := repository.NewGormActivityRepository(db)

	// Services.
	tokens := auth.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenDuration, cfg.Auth.Issuer)
	userSvc := service.NewUserService(userRepo, activityRepo, tokens)
	customerSvc := service.NewCustomerService(customerRepo, activityRepo, crmCache, producer)
	pipelineSvc := service.NewPipelineService(dealRepo, activityRepo, producer)
	campaignSvc := service.NewCampaignService(campaignRepo, customerRepo, producer)

	// Websocket relay.
	wsHub := hub.NewHub()
	go wsHub.Run()
	chatSvc := service.NewChatService(chatRepo, customerRepo, userRepo, wsHub, crmCache)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Workflow engine consumes the event feed.
	if cfg.Kafka.Enabled() {
		executor := workflow.NewExecutor(workflowRepo)
		consumer, err := workflow.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.EventsTopic, cfg.Kafka.ConsumerGroup, executor)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create workflow consumer")
		}
		defer consumer.Close()
		go func() {
			if err := consumer.Run(ctx); err != nil {
				logger.Error().Err(err).Msg("workflow consumer stopped")
			}
		}()
	}

	// Router.
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(log.GinMiddleware(*logger))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authz := middleware.NewAuthMiddleware(tokens)
	handler.NewUserHandler(userSvc, authz).RegisterRoutes(r)
	handler.NewCustomerHandler(customerSvc, authz).RegisterRoutes(r)
	handler.NewCampaignHandler(campaignSvc, authz).RegisterRoutes(r)
	handler.NewCalendarHandler(calendarRepo, authz).RegisterRoutes(r)
	handler.NewPipelineHandler(pipelineSvc, authz).RegisterRoutes(r)
	handler.NewWorkflowHandler(workflowRepo, authz).RegisterRoutes(r)
	handler.NewChatHandler(chatRepo, chatSvc, authz).RegisterRoutes(r)
	relay.NewHandler(wsHub, chatSvc, tokens, cfg.WebSocket).RegisterRoutes(r)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Str("driver", cfg.Database.Driver).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server stopped")
}

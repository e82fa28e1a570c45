package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"jurny-api/internal/config"
	"jurny-api/internal/db"
	grpcserver "jurny-api/internal/grpc"
	"jurny-api/internal/handlers"
	"jurny-api/internal/logging"
	"jurny-api/internal/matching"
	"jurny-api/internal/media"
	"jurny-api/internal/middleware"
	"jurny-api/internal/notify"
	"jurny-api/internal/observability"
	"jurny-api/internal/rabbitmq"
	"jurny-api/internal/repositories"
	"jurny-api/internal/telemetry"
	"jurny-api/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logging.New(cfg.LogDev, cfg.ServiceName, cfg.Environment)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := telemetry.InitTracer(ctx, cfg.OTLPEndpoint, cfg.ServiceName, cfg.Environment)
	if err != nil {
		log.Fatal("failed to init tracer", zap.Error(err))
	}

	database, err := db.Connect(cfg.DBDSN, log)
	if err != nil {
		log.Fatal("failed to connect to db", zap.Error(err))
	}
	defer database.Close()

	publisher := rabbitmq.WithBreaker(
		rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, log),
		rabbitmq.DefaultBreakerSettings,
		log,
	)
	defer publisher.Close()
	observability.SetPublisher(publisher)
	log.Info("event publisher ready",
		zap.String("mode", rabbitmq.PublisherMode(publisher)),
		zap.String("noop_reason", rabbitmq.PublisherNoopReason(publisher)))

	audit := telemetry.NewAuditEmitter(publisher, "audit.logs", cfg.ServiceName, cfg.Environment, log)

	verifier, err := middleware.NewJWTVerifier(cfg.JWTSecret)
	if err != nil {
		log.Fatal("invalid auth config", zap.Error(err))
	}

	placeRepo := repositories.NewPlaceRepo(database)
	profileRepo := repositories.NewProfileRepo(database)
	reactionRepo := repositories.NewReactionRepo(database)
	chatRoomRepo := repositories.NewChatRoomRepo(database)
	messageRepo := repositories.NewMessageRepo(database)

	hub := ws.NewHub(log)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn("redis unavailable, websocket fan-out stays local", zap.Error(err))
		} else {
			relay := ws.NewRedisRelay(rdb, "jurny:ws", log)
			hub.UseRelay(relay)
			go relay.Run(ctx, hub.Deliver)
		}
	}

	announcer := notify.NewAnnouncer(hub, audit, log)
	materializer := matching.NewMaterializer(chatRoomRepo, announcer, log)
	evaluator := matching.NewEvaluator(placeRepo, reactionRepo, materializer, log)
	reactionService := matching.NewReactionService(placeRepo, reactionRepo, evaluator, log)

	var signer handlers.UploadSigner
	if cfg.MediaEnabled() {
		store, err := media.NewS3Store(ctx, cfg.S3Region, cfg.S3BucketPrefix, cfg.S3Endpoint)
		if err != nil {
			log.Warn("media storage disabled", zap.Error(err))
		} else {
			signer = store
		}
	}

	profileHandler := handlers.NewProfileHandler(profileRepo, placeRepo, reactionRepo, audit)
	placeHandler := handlers.NewPlaceHandler(placeRepo, audit)
	reactionHandler := handlers.NewReactionHandler(reactionService, reactionRepo, audit)
	chatRoomHandler := handlers.NewChatRoomHandler(chatRoomRepo, audit)
	messageHandler := handlers.NewMessageHandler(chatRoomRepo, messageRepo, hub)
	mediaHandler := handlers.NewMediaHandler(signer)
	wsHandler := ws.NewHandler(hub, chatRoomRepo, verifier)
	sendLimiter := middleware.NewUserRateLimiter(cfg.MessageRatePerMin, log)

	if !cfg.LogDev {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// middlewares
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(otelgin.Middleware(cfg.ServiceName))
	router.Use(observability.HTTPMetricsMiddleware())

	router.GET("/metrics", observability.MetricsHandler())
	router.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	api := router.Group("/", middleware.AuthMiddleware(verifier))

	api.GET("/profiles/me", profileHandler.GetMyProfile)
	api.PUT("/profiles/me", profileHandler.UpsertMyProfile)
	api.GET("/profiles/me/exists", profileHandler.ProfileExists)
	api.GET("/profiles/me/stats", profileHandler.GetMyStats)
	api.GET("/profiles/:user_id", profileHandler.GetProfile)

	api.GET("/places", placeHandler.ListFeed)
	api.GET("/places/search", placeHandler.Search)
	api.GET("/places/mine", placeHandler.ListMine)
	api.POST("/places", placeHandler.CreatePlace)
	api.GET("/places/:place_id", placeHandler.GetPlace)
	api.PUT("/places/:place_id", placeHandler.UpdatePlace)
	api.DELETE("/places/:place_id", placeHandler.DeletePlace)

	api.POST("/places/:place_id/reactions", reactionHandler.React)
	api.GET("/places/:place_id/reactions/me", reactionHandler.GetMyReaction)
	api.DELETE("/places/:place_id/reactions/me", reactionHandler.DeleteMyReaction)
	api.GET("/places/:place_id/reactions/stats", reactionHandler.PlaceStats)
	api.POST("/places/:place_id/match-check", reactionHandler.CheckMatch)
	api.GET("/reactions", reactionHandler.ListMine)

	api.GET("/chat-rooms", chatRoomHandler.ListRooms)
	api.GET("/chat-rooms/unread", chatRoomHandler.UnreadCount)
	api.GET("/chat-rooms/:room_id", chatRoomHandler.GetRoom)
	api.DELETE("/chat-rooms/:room_id", chatRoomHandler.DeleteRoom)
	api.GET("/chat-rooms/:room_id/messages", messageHandler.ListMessages)
	api.POST("/chat-rooms/:room_id/messages", sendLimiter.Handler(), messageHandler.PostMessage)
	api.POST("/chat-rooms/:room_id/messages/read", messageHandler.MarkRead)
	api.POST("/chat-rooms/:room_id/read", messageHandler.MarkRoomRead)

	api.POST("/media/upload-url", mediaHandler.UploadURL)

	router.GET("/ws/rooms/:room_id", wsHandler.HandleRoom)
	router.GET("/ws/notifications", wsHandler.HandleNotifications)

	handlers.RegisterDebugRoutes(api, audit, publisher, cfg.DebugRoutes)

	healthServer := grpcserver.NewHealthServer(database, cfg.ServiceName, log)
	healthServer.Refresh(ctx, cfg.ServiceName)
	go func() {
		lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
		if err != nil {
			log.Error("grpc listen failed", zap.Error(err))
			return
		}
		if err := healthServer.Serve(lis); err != nil {
			log.Error("grpc server error", zap.Error(err))
		}
	}()
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				healthServer.Refresh(ctx, cfg.ServiceName)
			}
		}
	}()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
	healthServer.Stop()
	if err := shutdownTracer(shutdownCtx); err != nil {
		log.Warn("tracer shutdown", zap.Error(err))
	}
}

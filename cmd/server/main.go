package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"campusconnect/infrastructure/cache"
	"campusconnect/infrastructure/db"
	"campusconnect/infrastructure/events"
	"campusconnect/infrastructure/observability"
	"campusconnect/infrastructure/ws"
	"campusconnect/internal/config"
	httpHandler "campusconnect/internal/delivery/http"
	"campusconnect/internal/delivery/websocket"
	"campusconnect/internal/entity"
	"campusconnect/internal/repository"
	"campusconnect/internal/usecase"
	"campusconnect/pkg/docstore"
	"campusconnect/pkg/identity"
	"campusconnect/pkg/jwt"
	"campusconnect/pkg/logging"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", logging.Err(err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logging.NewLogger(cfg.App.ServiceName, cfg.App.LogLevel)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logging.WithContext(ctx, log)

	shutdownTracing, err := observability.InitTelemetry(ctx, cfg.App.ServiceName, cfg.App.Environment, cfg.Telemetry.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(shutdownCtx)
	}()

	store, health, closeStore, err := openStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer closeStore()

	// Redis is optional: without it the hub and token revocations stay in process.
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn("redis unreachable, falling back to in-memory hub", slog.String("addr", cfg.Redis.Addr), logging.Err(err))
			_ = rdb.Close()
			rdb = nil
		} else {
			defer rdb.Close()
		}
	}

	var (
		hub         ws.IHub
		revocations identity.Revocations
	)
	if rdb != nil {
		log.Info("using redis hub", slog.String("addr", cfg.Redis.Addr), slog.String("server_id", cfg.Redis.ServerId))
		hub = ws.NewRedisHub(rdb, cfg.Redis.ServerId)
		revocations = identity.NewRedisRevocations(rdb)
	} else {
		log.Info("using in-memory hub (single server)")
		hub = ws.NewHub()
		revokedTokens := cache.NewMemCache[struct{}](time.Minute)
		defer revokedTokens.Close()
		observability.RegisterCacheSize("revoked_tokens", revokedTokens.Len)
		revocations = identity.NewMemoryRevocations(revokedTokens)
	}

	provider := identity.NewProvider(jwt.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL), revocations)

	publisher := events.NewPublisher(ctx, cfg.Events.AMQPURL, cfg.Events.Exchange)
	defer publisher.Close()
	emitter := events.NewEmitter(publisher, cfg.App.ServiceName, cfg.App.Environment)

	// Initialize repositories
	userRepo := repository.NewUserRepository(store)
	chatRepo := repository.NewChatRepository(store)
	messageRepo := repository.NewMessageRepository(store)
	requestRepo := repository.NewFriendRequestRepository(store)
	activityRepo := repository.NewActivityRepository(store)
	assignmentRepo := repository.NewAssignmentRepository(store)

	profileCache := cache.NewMemCache[entity.DisplayProfile](time.Minute)
	defer profileCache.Close()
	observability.RegisterCacheSize("profiles", profileCache.Len)
	profiles := usecase.NewProfileResolver(userRepo, profileCache, cfg.Chat.ProfileCacheTTL)

	// Initialize use cases
	userUc := usecase.NewUserUseCase(userRepo, profiles)
	chatUc := usecase.NewChatUsecase(chatRepo, messageRepo, emitter, usecase.ChatConfig{
		EphemeralGroupTTL: cfg.Chat.EphemeralGroupTTL,
	})
	chatListUc := usecase.NewChatListUsecase(chatRepo, profiles, nil)
	friendUc := usecase.NewFriendRequestUsecase(requestRepo, chatUc, profiles, hub, emitter)
	activityUc := usecase.NewActivityUsecase(activityRepo, assignmentRepo, userRepo)

	websocketH := websocket.NewWebsocketHandler(hub, provider, userUc, chatUc, chatListUc, friendUc)
	hub.SetOnClientRegister(websocketH.HandleRegisterClient)
	hub.SetOnClientUnregister(websocketH.HandleUnregisterClient)
	go hub.Run(ctx)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(logging.WithContext(r.Context(), log)))
		})
	})
	router.Use(httpHandler.RequestLogger)
	router.Use(httpHandler.CORS(cfg.App.CORSOrigin))
	router.Use(observability.TracerMiddleware(cfg.App.ServiceName))
	router.Use(observability.HTTPMetrics)

	httpHandler.MapHttpRoutes(router,
		httpHandler.NewHttpHandler(chatUc, chatListUc, friendUc, userUc, activityUc),
		websocketH,
		httpHandler.NewAuthHandler(provider, userUc, hub),
		httpHandler.NewAuthMiddleware(provider),
		httpHandler.RouteOptions{
			DevToken: cfg.App.IsDevelopment(),
			Health:   func(r *http.Request) error { return health(r.Context()) },
		},
	)

	server := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening",
			slog.String("port", cfg.App.Port),
			slog.String("store", cfg.Store.Driver),
			slog.String("events", events.PublisherMode(publisher)),
			slog.Bool("dev_token", cfg.App.IsDevelopment()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// openStore returns the configured document store with its readiness check
// and a close func.
func openStore(ctx context.Context, cfg config.StoreConfig) (docstore.Store, func(context.Context) error, func(), error) {
	if cfg.Driver == config.DriverMemory {
		slog.Warn("using in-memory document store, data is lost on restart")
		return db.NewMemoryStore(), func(context.Context) error { return nil }, func() {}, nil
	}

	mongoStore, err := db.NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDB, db.WithPollInterval(cfg.PollInterval))
	if err != nil {
		return nil, nil, nil, err
	}
	if err := mongoStore.EnsureIndexes(ctx); err != nil {
		_ = mongoStore.Close(context.Background())
		return nil, nil, nil, err
	}
	slog.Info("connected to mongodb", slog.String("database", cfg.MongoDB))

	closeStore := func() {
		if err := mongoStore.Close(context.Background()); err != nil {
			slog.Warn("mongodb disconnect failed", logging.Err(err))
		}
	}
	return mongoStore, mongoStore.Ping, closeStore, nil
}

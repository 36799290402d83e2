package app

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	libredis "chargepulse/libs/redis"

	"chargepulse/internal/clients"
	"chargepulse/internal/config"
	"chargepulse/internal/engine"
	httpserver "chargepulse/internal/http"
	"chargepulse/internal/http/handlers"
	"chargepulse/internal/observability"
	"chargepulse/internal/redisstore"
	"chargepulse/internal/service"
	"chargepulse/internal/token"
	"chargepulse/internal/ws"
)

// App wires session-monitor dependencies.
type App struct {
	server      *httpserver.Server
	wsManager   *ws.Manager
	redisClient *redis.Client
	logger      *zap.Logger
}

// New constructs the application graph.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	var redisClient *redis.Client
	var liveStore *redisstore.LiveStore
	if cfg.Redis.Addr != "" {
		client, err := libredis.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, err
		}
		redisClient = client
		liveStore = redisstore.NewLiveStore(redisClient, cfg.LiveTTL())
	}

	var tokens *token.Service
	if cfg.WS.TokenSecret != "" {
		tokens = token.NewService(cfg.WS.TokenSecret, cfg.TokenTTL())
	}

	wsManager := ws.NewManager(cfg.WSPingInterval())
	var replayer ws.Replayer
	if liveStore != nil {
		replayer = liveStore
	}
	wsServer := ws.NewServer(wsManager, tokens, replayer, cfg.WSWriteTimeout(), logger)

	tableClient := clients.NewTableClient(cfg.TableService.URL, cfg.TableService.Table, logger)
	statusClient := clients.NewStatusClient(cfg.StatusService.URL, logger)

	metrics := observability.NewMetrics()
	executor := engine.NewExecutor(cfg.BookingTimeout(), logger)
	mapper := engine.NewMapper(cfg.TableService.Table)

	statusService := service.NewStatusService(
		tableClient,
		statusClient,
		wsManager,
		liveStore,
		executor,
		mapper,
		metrics,
		logger,
	)

	evaluateHandler := handlers.NewEvaluateHandler(statusService, logger)

	routes := httpserver.Routes{
		Evaluate: evaluateHandler.Handle,
		Live:     wsServer.HandleLive,
		Health:   handlers.NewHealthHandler(),
		Metrics:  metrics.Handler(),
	}

	router := httpserver.NewRouter(routes)
	server := httpserver.NewServer(cfg.HTTPAddress(), router, logger)

	return &App{
		server:      server,
		wsManager:   wsManager,
		redisClient: redisClient,
		logger:      logger,
	}, nil
}

// Run starts the HTTP server and the socket keepalive loop.
func (a *App) Run(ctx context.Context) error {
	go a.wsManager.Start(ctx)
	return a.server.Run(ctx)
}

// Close releases resources.
func (a *App) Close() {
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
}

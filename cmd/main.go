package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"go-notify-hub/internal/application/listener"
	appstream "go-notify-hub/internal/application/stream"
	"go-notify-hub/internal/domain/notification"
	"go-notify-hub/internal/domain/port"
	"go-notify-hub/internal/infrastructure/bus"
	"go-notify-hub/internal/infrastructure/config"
	"go-notify-hub/internal/infrastructure/hub"
	"go-notify-hub/internal/infrastructure/identity"
	"go-notify-hub/internal/infrastructure/logger"
	"go-notify-hub/internal/infrastructure/server"
	"go-notify-hub/internal/infrastructure/store"
)

func main() {
	ctx := context.Background()
	sctx := WithSignal(ctx)

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	lCfg := logger.NewDefaultConfig()
	lCfg.Level = logger.ParseLevel(cfg.LogLevel)
	lCfg.Format = cfg.LogFormat
	log := logger.NewLogrusLogger(lCfg)

	notificationStore, cleanup, err := newStore(ctx, cfg, log)
	if err != nil {
		log.Fatalf("failed to initialize notification store: %v", err)
	}
	defer cleanup()

	registry := hub.NewRegistry(cfg.MaxSocketConnections, cfg.MaxStreamConnections, log)
	eventBus := bus.New(log)
	broadcaster := appstream.NewBroadcaster(registry, cfg.HeartbeatInterval, log)
	verifier := identity.NewHMACVerifier(cfg.AuthSecret)

	subscribeListeners(eventBus, registry, notificationStore, log)

	router := InitRouter(log, registry, eventBus, broadcaster, verifier, notificationStore)
	httpSrv := server.NewHTTPServer(cfg.HTTPAddr, router)
	app := newApplication(log, httpSrv, registry)
	if err := app.Run(sctx); err != nil {
		log.Errorf("failed to run application: %v", err)
	}
}

// subscribeListeners builds the static subscriber list: persistence and
// fan-out for every domain kind, read-state and fan-out for the control kinds.
// Registration order is dispatch order.
func subscribeListeners(
	eventBus *bus.Bus,
	registry *hub.Registry,
	notificationStore port.NotificationStore,
	log logger.Logger,
) {
	persistence := listener.NewPersistence(notificationStore, log)
	readState := listener.NewReadState(notificationStore, log)
	fanout := listener.NewFanout(registry, log)

	for _, kind := range notification.DomainKinds() {
		eventBus.Subscribe(kind, persistence.HandleEvent)
		eventBus.Subscribe(kind, fanout.HandleEvent)
	}
	for _, kind := range notification.ControlKinds() {
		eventBus.Subscribe(kind, readState.HandleEvent)
		eventBus.Subscribe(kind, fanout.HandleEvent)
	}
}

func newStore(ctx context.Context, cfg *config.Config, log logger.Logger) (port.NotificationStore, func(), error) {
	if cfg.DatabaseURL == "" {
		log.Warn("DATABASE_URL not set, using in-memory notification store")
		return store.NewMemoryStore(), func() {}, nil
	}

	pool, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	return store.NewPostgresStore(pool), pool.Close, nil
}

type Application struct {
	logger   logger.Logger
	httpSrv  server.Server
	registry *hub.Registry
}

func newApplication(
	log logger.Logger,
	httpSrv *server.HTTPServer,
	registry *hub.Registry,
) *Application {
	return &Application{
		logger:   log.WithField("app", "notify-hub"),
		httpSrv:  httpSrv,
		registry: registry,
	}
}

func (app *Application) Run(ctx context.Context) error {
	eg := errgroup.Group{}

	eg.Go(func() error {
		return app.httpSrv.Start(ctx)
	})

	eg.Go(func() error {
		<-ctx.Done()

		gracefulshutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			5*time.Second,
		)
		defer cancel()

		// Close every open connection before draining the server.
		app.registry.Shutdown()

		return app.httpSrv.Stop(gracefulshutdownCtx)
	})

	return eg.Wait()
}

func WithSignal(pctx context.Context) context.Context {
	ctx, cancel := context.WithCancel(pctx)

	go func() {
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

		<-sigc

		cancel()
	}()

	return ctx
}

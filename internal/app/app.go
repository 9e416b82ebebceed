package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bizrecords/internal/config"
	"bizrecords/internal/handler"
	"bizrecords/internal/middleware"
	"bizrecords/internal/router"
	"bizrecords/internal/service"
	"bizrecords/internal/websocket"
)

type App struct {
	server       *http.Server
	services     *Services
	cleanupFuncs []func()
}

func New(cfg *config.Config) (*App, error) {
	services, err := BuildServices(context.Background(), cfg)
	if err != nil {
		return nil, err
	}

	verifier := service.NewTokenVerifier(cfg.JWTSecret)
	authMiddleware := middleware.NewAuthMiddleware(verifier)

	hubCtx, hubCancel := context.WithCancel(context.Background())
	hub := websocket.NewHub(services.Bus)
	go hub.Run(hubCtx)

	appRouter := router.New(cfg, authMiddleware, router.Handlers{
		Trash:  handler.NewTrashHandler(services.Trash, services.Restorer, services.Display, services.Audit),
		Audit:  handler.NewAuditHandler(services.Audit),
		Events: websocket.Handler(hub, cfg.CORSOrigins),
	}, services.Health)

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return &App{
		server:   server,
		services: services,
		cleanupFuncs: []func(){
			hubCancel,
			services.Close,
		},
	}, nil
}

func (a *App) Run() error {
	go func() {
		slog.Info("server starting", "addr", a.server.Addr, "types", len(a.services.Registry.Types()))
		if serveErr := a.server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("server failed", "error", serveErr)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	shutdownErr := a.server.Shutdown(ctx)

	// Run cleanup functions
	for _, cleanup := range a.cleanupFuncs {
		cleanup()
	}

	if shutdownErr != nil {
		return fmt.Errorf("graceful shutdown failed: %w", shutdownErr)
	}

	slog.Info("server stopped")
	return nil
}

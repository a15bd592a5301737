package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/damione1/pokersync/internal/handlers"
	"github.com/damione1/pokersync/internal/security"
	"github.com/damione1/pokersync/internal/services"
)

const shutdownTimeout = 10 * time.Second

func serve(ctx context.Context, cfg *Config) error {
	log.Printf("🚀 pokersync v%s starting", releaseVersion)

	metrics := services.NewMetrics()
	registry := services.NewRegistry()
	manager := services.NewRoomManager(registry, metrics)
	hub := services.NewHub(metrics)
	coordinator := services.NewCoordinator(manager, hub, metrics)
	origins := security.NewOriginValidator(cfg.origins)

	go hub.Run()

	ws := handlers.NewWSHandler(hub, coordinator, origins)
	rooms := handlers.NewRoomHandlers()

	mux := httprouter.New()
	mux.GET("/ws", ws.Handle())
	mux.POST("/rooms", rooms.CreateRoom())
	mux.GET("/rooms/:id/qr", rooms.InviteQR())
	mux.GET("/metrics", handlers.HandleMetrics(hub))
	mux.GET("/healthz", handlers.HandleHealth(hub))
	mux.GET("/version", serveVersion())

	srv := &http.Server{
		Addr:    net.JoinHostPort(cfg.bind, strconv.Itoa(cfg.port)),
		Handler: mux,
		// Read/write timeouts are managed per connection by the websocket
		// client pumps; only the handshake is bounded here.
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       10 * time.Minute,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errs := make(chan error, 1)
	go func() {
		log.Printf("🚀 Server running on %s", srv.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	log.Printf("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func serveVersion() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("pokersync v" + releaseVersion + "\n"))
	}
}

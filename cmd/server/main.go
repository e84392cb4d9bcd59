package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/jonboulle/clockwork"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/osoko/rosca/internal/auth"
	"github.com/osoko/rosca/internal/config"
	"github.com/osoko/rosca/internal/events"
	"github.com/osoko/rosca/internal/executor"
	"github.com/osoko/rosca/internal/service"
	"github.com/osoko/rosca/internal/storage/sqlite"
	"github.com/osoko/rosca/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Setup()
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	logging.SetupWithLevel(logging.ParseLevel(cfg.LogLevel))

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	clock := clockwork.NewRealClock()
	emitter := events.NewLogEmitter(slog.Default())

	exec, err := executor.New(executor.Config{
		Store:   store,
		Clock:   clock,
		Emitter: emitter,
	})
	if err != nil {
		slog.Error("Failed to build executor", "error", err)
		os.Exit(1)
	}

	svc := service.New(service.Config{
		Store:      store,
		Executor:   exec,
		JWTManager: auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL),
		Clock:      clock,
		Emitter:    emitter,
	})

	// h2c allows HTTP/2 without TLS for clients that want it.
	handler := h2c.NewHandler(svc.Router(), &http2.Server{})

	slog.Info("Server starting", "address", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, handler); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

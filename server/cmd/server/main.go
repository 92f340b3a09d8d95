package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/innstack/innstack/pkg/format"
	"github.com/innstack/innstack/server/internal/api"
	"github.com/innstack/innstack/server/internal/auth"
	"github.com/innstack/innstack/server/internal/config"
	"github.com/innstack/innstack/server/internal/form"
	"github.com/innstack/innstack/server/internal/metrics"
	"github.com/innstack/innstack/server/internal/store"
	"github.com/innstack/innstack/server/internal/ws"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file; built-in defaults are used if it does not exist")
	envPath := flag.String("env", ".env", "optional dotenv file loaded before the config")
	flag.Parse()

	if err := godotenv.Load(*envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "innstack-server: load %s: %v\n", *envPath, err)
		os.Exit(1)
	}

	cfg, watchable, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "innstack-server: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Server.SlogLevel()}))
	slog.SetDefault(logger)

	slog.Info("innstack-server starting",
		"config", *configPath,
		"http_port", cfg.Server.HTTPPort,
		"auth_mode", cfg.Server.Auth.Mode,
		"session_ttl", cfg.Server.Session.TTL,
		"currency_symbol", cfg.Server.Display.CurrencySymbol,
		"locale", cfg.Server.Display.Locale,
	)

	fm, err := format.New(cfg.Server.Display.CurrencySymbol, cfg.Server.Display.Locale)
	if err != nil {
		slog.Error("invalid display settings", "err", err)
		os.Exit(1)
	}
	live := format.NewLive(fm)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	reg := metrics.New()

	// REST form sessions with background TTL eviction.
	st := store.New(cfg.Server.Session.TTL, func() *form.Form {
		return form.New(live, nil, reg)
	})
	go st.Run(ctx)

	// WebSocket hub: one live form per connection.
	hub := ws.New(live, reg, cfg.Server.WS.ReadLimit)
	go hub.Run(ctx)

	reg.Gauge("innstack_sessions", "Open REST form sessions.", func() float64 { return float64(st.Count()) })
	reg.Gauge("innstack_ws_clients", "Connected WebSocket form clients.", func() float64 { return float64(hub.Count()) })

	if watchable {
		go func() {
			err := config.Watch(ctx, *configPath, func(next *config.Config) {
				applyReload(next, live, hub)
			})
			if err != nil {
				slog.Error("config watcher stopped", "path", *configPath, "err", err)
			}
		}()
	}

	requireKey := auth.Middleware(
		cfg.Server.Auth.Mode,
		cfg.Server.Auth.EffectiveHeader(),
		cfg.Server.Auth.Key(),
	)
	apiHandler := api.New(st, live, reg, hub.Count)

	mux := http.NewServeMux()
	mux.Handle("/api/v1/health", apiHandler)
	mux.Handle("/api/", requireKey(apiHandler))
	mux.Handle("/ws/form", requireKey(hub))
	mux.Handle("/metrics", reg)

	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler: mux,
	}
	go func() {
		slog.Info("HTTP server listening", "port", cfg.Server.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server stopped", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("innstack-server shutting down")
	httpSrv.Shutdown(context.Background()) //nolint:errcheck
}

// loadConfig reads path, falling back to defaults when the file does not
// exist. The bool reports whether the file can be watched for changes.
func loadConfig(path string) (*config.Config, bool, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return config.Default(), false, nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, false, err
	}
	return cfg, true, nil
}

// applyReload swaps in the new display settings and re-renders every
// connected form. Other settings need a restart.
func applyReload(next *config.Config, live *format.Live, hub *ws.Hub) {
	d := next.Server.Display
	fm, err := format.New(d.CurrencySymbol, d.Locale)
	if err != nil {
		slog.Error("config: display settings rejected, keeping previous", "err", err)
		return
	}
	cur := live.Load()
	if cur.Symbol() == fm.Symbol() && cur.Locale().String() == fm.Locale().String() {
		return
	}
	live.Store(fm)
	hub.RefreshAll()
	slog.Info("display settings applied",
		"currency_symbol", d.CurrencySymbol,
		"locale", d.Locale,
		"ws_clients", hub.Count(),
	)
}

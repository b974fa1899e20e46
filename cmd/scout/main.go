// Command scout runs the browser-driven search and crawl service.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/use-agent/scout/api"
	"github.com/use-agent/scout/browser"
	"github.com/use-agent/scout/cache"
	"github.com/use-agent/scout/config"
	"github.com/use-agent/scout/loader"
	"github.com/use-agent/scout/memory"
	"github.com/use-agent/scout/search"
)

// version is stamped at build time via -ldflags.
var version = "dev"

func main() {
	cfg := config.Load()
	setupLogger(cfg.Log, os.Stdout)

	proxies := browser.NewProxyPool(cfg.Proxy.Entries)
	if proxies.Size() > 0 {
		slog.Info("proxy pool loaded", "size", proxies.Size())
	}

	mgr := browser.NewManager(cfg.Browser, proxies)
	mem, err := memory.NewStore(cfg.Memory)
	if err != nil {
		slog.Error("failed to open interaction log", "path", cfg.Memory.Path, "error", err)
		os.Exit(1)
	}

	router := api.NewRouter(api.Options{
		Config:  cfg,
		Engine:  search.NewEngine(mgr, cfg.Search),
		Loader:  loader.New(mgr, cfg.Loader),
		Cache:   cache.New(cfg.Cache.MaxEntries, cfg.Cache.TTL),
		Memory:  mem,
		Browser: mgr,
		Version: version,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr, "version", version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("http shutdown failed", "error", err)
	}
	// Close the browser last so in-flight requests can finish with it.
	mgr.Close()
	slog.Info("bye")
}

func setupLogger(cfg config.LogConfig, w *os.File) {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if strings.ToLower(cfg.Format) == "text" {
		h = slog.NewTextHandler(w, opts)
	} else {
		h = slog.NewJSONHandler(w, opts)
	}
	slog.SetDefault(slog.New(h))
}

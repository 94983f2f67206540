package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"cultivation/internal/config"
	"cultivation/internal/game"
	"cultivation/internal/live"
	"cultivation/internal/loop"
	"cultivation/internal/saves"
	"cultivation/internal/session"
	"cultivation/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	content := game.DefaultContent()
	if cfg.ContentPath != "" {
		content, err = game.LoadContent(cfg.ContentPath)
		if err != nil {
			slog.Error("failed to load content", "path", cfg.ContentPath, "error", err)
			os.Exit(1)
		}
	}
	engine := game.NewEngine(content)

	store, err := session.OpenSQLite[saves.SaveData](cfg.DBPath, "saves")
	if err != nil {
		slog.Error("failed to open save database", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	manager := saves.NewManager(store, engine)
	manager.MaxSlots = cfg.MaxSaveSlots

	hub := web.NewHub()
	go hub.Run()

	table := live.NewTable()
	srv := web.NewServer(engine, manager, table, hub)

	runner := loop.NewRunner(cfg.TickInterval, cfg.AutosaveInterval)
	driver := &loop.Driver{Engine: engine, Table: table, Saves: manager}
	driver.Attach(runner)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		runner.Run(ctx)
	}()

	httpSrv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		slog.Info("listening", "addr", cfg.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}
	hub.Stop()
	// the runner saves every dirty game before it returns
	wg.Wait()
	slog.Info("server stopped")
}

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	configloader "github.com/foxseedlab/modconsole/external/config"
	"github.com/foxseedlab/modconsole/external/console"
	"github.com/foxseedlab/modconsole/external/discord"
	gateimpl "github.com/foxseedlab/modconsole/external/gate"
	noticeimpl "github.com/foxseedlab/modconsole/external/notice"
	repositoryimpl "github.com/foxseedlab/modconsole/external/repository"
	webhookimpl "github.com/foxseedlab/modconsole/external/webhook"
	"github.com/foxseedlab/modconsole/internal/config"
	discordpkg "github.com/foxseedlab/modconsole/internal/discord"
	"github.com/foxseedlab/modconsole/internal/session"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/samber/do/v2"
)

const discordConnectTimeout = 20 * time.Second

func main() {
	slog.Info("startup: loading configuration")
	cfg := mustLoadConfig()
	initLogger(cfg)
	slog.Info("startup: configuration loaded", "env", cfg.Env)

	slog.Info("startup: building dependency graph")
	injector := setupDI(cfg)

	slog.Info("startup: launching moderation console")
	runConsole(cfg, injector)
}

func mustLoadConfig() *config.Config {
	cfg, err := configloader.Load()
	if err != nil {
		slog.Error("config validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

func initLogger(cfg *config.Config) {
	logLevel := slog.LevelInfo
	if cfg.IsDevelopment() {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))
}

func setupDI(cfg *config.Config) do.Injector {
	injector := do.New()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	do.ProvideValue(injector, cfg)
	do.ProvideValue(injector, reg)
	repositoryimpl.RegisterDI(injector)
	gateimpl.RegisterDI(injector)
	discord.RegisterDI(injector)
	webhookimpl.RegisterDI(injector)
	noticeimpl.RegisterDI(injector)
	session.RegisterDI(injector)
	console.RegisterDI(injector)

	return injector
}

func runConsole(cfg *config.Config, injector do.Injector) {
	if cfg.DiscordNoticesEnabled() {
		dc := connectDiscord(injector)
		defer func() {
			if err := dc.Close(); err != nil {
				slog.Error("discord close failed", "error", err)
			}
		}()
	}

	server, err := do.Invoke[*console.Server](injector)
	if err != nil {
		slog.Error("failed to resolve console server", "error", err)
		os.Exit(1)
	}
	hub := do.MustInvoke[*console.Hub](injector)
	manager := do.MustInvoke[*session.Manager](injector)
	pool := do.MustInvoke[*pgxpool.Pool](injector)
	defer pool.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go hub.Run(ctx)

	if err := server.Run(ctx, cfg.ListenAddr); err != nil {
		slog.Error("console server failed", "error", err)
	}
	slog.Info("shutting down")
	manager.Shutdown()
}

func connectDiscord(injector do.Injector) discordpkg.Client {
	dc, err := do.Invoke[discordpkg.Client](injector)
	if err != nil {
		slog.Error("failed to resolve discord client", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), discordConnectTimeout)
	defer cancel()

	slog.Info("startup: connecting to discord")
	if err := dc.Connect(ctx); err != nil {
		slog.Error("discord connect failed", "error", err)
		os.Exit(1)
	}
	slog.Info("startup: discord connected")
	return dc
}

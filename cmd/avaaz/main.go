package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	cli "github.com/spf13/pflag"

	"github.com/avaaz-ai/avaaz/pkg/avaaz"
	"github.com/avaaz-ai/avaaz/pkg/logging"
	"github.com/avaaz-ai/avaaz/pkg/runner"
)

func main() {
	configPath := cli.StringP("config", "c", "config.yaml", "Config file path")
	envFile := cli.StringP("env", "e", ".env", "Env file path")
	logLevel := cli.StringP("log", "l", "", "Log level override")
	cli.Parse()

	_ = godotenv.Load(*envFile)

	cfg, err := avaaz.LoadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	logging.SetDefault(cfg.LogLevel, cfg.LogFormat)

	reg := avaaz.NewProviderRegistry()
	avaaz.RegisterDefaults(reg)

	engine, err := avaaz.NewEngine(cfg, reg)
	if err != nil {
		slog.Error("failed to build engine", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	run := runner.NewLifecycleRunner(engineDrainer{engine}, runner.Hooks{
		OnStart: func() {
			if err := engine.Start(ctx); err != nil {
				slog.Error("engine start failed", slog.String("error", err.Error()))
				stop()
			}
		},
	}, 15*time.Second)

	slog.Info("starting",
		slog.String("environment", cfg.Environment),
		slog.String("transport", cfg.Transports.Provider),
		slog.String("llm", cfg.Vendors.LLM.Provider))

	if err := run.Run(ctx); err != nil {
		slog.Error("shutdown error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

type engineDrainer struct {
	engine *avaaz.Engine
}

func (d engineDrainer) Drain() error { return d.engine.Stop() }

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"milkchain/config"
	"milkchain/core"
	"milkchain/observability/logging"
	telemetry "milkchain/observability/otel"
	"milkchain/rpc"
	"milkchain/storage"
)

var version = "dev"

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	genesisFlag := flag.String("genesis", "", "Path to a genesis YAML file (overrides config GenesisFile)")
	flag.Parse()

	if err := run(*configFile, *genesisFlag); err != nil {
		fmt.Fprintf(os.Stderr, "milkd: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, genesisOverride string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	env := cfg.Env
	if fromEnv := strings.TrimSpace(os.Getenv("MILK_ENV")); fromEnv != "" {
		env = fromEnv
	}
	opts := []logging.Option{logging.WithLevel(logging.ParseLevel(cfg.LogLevel))}
	if cfg.LogFile != "" {
		opts = append(opts, logging.WithFile(cfg.LogFile, 100, 5))
	}
	logger := logging.Setup("milkd", env, opts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    "milkd",
		ServiceVersion: version,
		Environment:    env,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		Headers:        telemetry.ParseHeaders(cfg.Telemetry.Headers),
		Metrics:        cfg.Telemetry.Metrics,
		Traces:         cfg.Telemetry.Traces,
		SampleRatio:    cfg.Telemetry.SampleRatio,
		MetricInterval: time.Duration(cfg.Telemetry.MetricIntervalSec) * time.Second,
	})
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(flushCtx); err != nil {
			logger.Warn("telemetry shutdown", slog.Any("error", err))
		}
	}()

	db, err := storage.Open(cfg.Database, cfg.DataDir)
	if err != nil {
		return fmt.Errorf("open %s storage: %w", cfg.Database, err)
	}
	rarity := cfg.RarityThresholds()
	node, err := core.NewNode(db, core.Options{
		Token:   cfg.TokenMetadata(),
		Factory: cfg.FactoryConfig(),
		Rarity:  &rarity,
		Pauses:  cfg.PauseView(),
		Logger:  logger,
	})
	if err != nil {
		db.Close()
		return err
	}
	defer node.Close()

	genesisPath := cfg.GenesisFile
	if genesisOverride != "" {
		genesisPath = genesisOverride
	}
	if err := bootstrap(ctx, node, genesisPath, logger); err != nil {
		return err
	}

	srvCfg := rpc.Config{
		RateLimit: rpc.RateLimit{
			RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
			Burst:             cfg.RateLimit.Burst,
		},
		Logger: logger,
	}
	if cfg.Auth.Enabled {
		srvCfg.Auth = &rpc.AuthConfig{
			HMACSecret: cfg.Auth.HMACSecret,
			Issuer:     cfg.Auth.Issuer,
			Audience:   cfg.Auth.Audience,
			ClockSkew:  time.Duration(cfg.Auth.ClockSkewSec) * time.Second,
		}
	}
	if err := rpc.NewServer(node, srvCfg).Serve(ctx, cfg.HTTPAddress); err != nil {
		return fmt.Errorf("http surface: %w", err)
	}
	logger.Info("shutdown complete")
	return nil
}

func bootstrap(ctx context.Context, node *core.Node, path string, logger *slog.Logger) error {
	if node.Bootstrapped() {
		if path != "" {
			logger.Info("state already bootstrapped, ignoring genesis", slog.String("genesis", path))
		}
		return nil
	}
	if path == "" {
		logger.Warn("no genesis configured, registries stay uninitialised")
		return nil
	}
	g, err := config.LoadGenesis(path)
	if err != nil {
		return fmt.Errorf("load genesis: %w", err)
	}
	if err := node.Bootstrap(ctx, g); err != nil {
		return fmt.Errorf("apply genesis: %w", err)
	}
	return nil
}

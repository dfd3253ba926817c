package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/cloudx-io/secondprice/resolver"
)

func main() {
	bootstrap, _ := zap.NewProduction()
	zap.ReplaceGlobals(bootstrap)

	// 1. Load configuration
	cfg, err := resolver.LoadConfig()
	if err != nil {
		bootstrap.Fatal("Failed to load configuration", zap.Error(err))
	}

	log := bootstrap
	if cfg.LogDevelopment {
		log, _ = zap.NewDevelopment()
		zap.ReplaceGlobals(log)
	}
	defer func() { _ = log.Sync() }()
	log.Debug("Configuration loaded successfully", zap.Any("config", cfg))

	// 2. Context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Result signing key
	var signer *resolver.Signer
	if cfg.SigningKeyPath != "" {
		signer, err = resolver.LoadSigner(cfg.SigningKeyPath)
	} else {
		signer, err = resolver.NewSigner()
		log.Info("No signing key configured, using an ephemeral key")
	}
	if err != nil {
		log.Fatal("Failed to initialize result signer", zap.Error(err))
	}

	// 4. Serve until interrupted
	server := resolver.NewServer(*cfg, signer, log)
	if err := server.ListenAndServe(ctx); err != nil {
		log.Fatal("Resolver server stopped", zap.Error(err))
	}
	log.Info("Resolver server shut down")
}

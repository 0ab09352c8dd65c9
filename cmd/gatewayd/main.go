package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/your-org/gen-gateway/internal/app"
	"github.com/your-org/gen-gateway/internal/config"
	"github.com/your-org/gen-gateway/internal/version"
	"github.com/your-org/gen-gateway/pkg/logger"
)

func main() {
	if len(os.Args) > 1 && (os.Args[1] == "-v" || os.Args[1] == "--version" || os.Args[1] == "version") {
		fmt.Println(version.String())
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "gatewayd config: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "gatewayd logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	rt, err := app.NewRuntime(ctx, cfg, log)
	if err != nil {
		log.Error("gatewayd startup failed", zap.Error(err))
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		_ = rt.Close(shutdownCtx)
	}()

	if err := app.Serve(ctx, rt); err != nil {
		log.Error("gatewayd server failed", zap.Error(err))
		cancel()
		os.Exit(1)
	}
}

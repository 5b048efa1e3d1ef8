package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"kitchen-admin/internal/app/admin"
	"kitchen-admin/internal/app/relay"
	"kitchen-admin/internal/common/config"
	"kitchen-admin/internal/common/logger"
)

func main() {
	mode := flag.String("mode", "", "admin-api | feed-relay")
	cfgPath := flag.String("config", "config.yaml", "path to YAML config")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	lg := logger.Init(cfg.App.Name, cfg.App.LogFile, cfg.App.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch *mode {
	case "admin-api":
		lg.Info("service starting", "mode", "admin-api", "addr", cfg.HTTP.Addr)
		if err := admin.Run(ctx, cfg); err != nil {
			lg.Error("fatal", "err", err)
			os.Exit(1)
		}
	case "feed-relay":
		lg.Info("service starting", "mode", "feed-relay")
		if err := relay.Run(ctx, cfg); err != nil {
			lg.Error("fatal", "err", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintln(os.Stderr, "--mode is required: admin-api | feed-relay")
		os.Exit(2)
	}
}

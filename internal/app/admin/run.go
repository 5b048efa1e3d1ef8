package admin

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"kitchen-admin/internal/common/config"
	"kitchen-admin/internal/common/db"
	"kitchen-admin/internal/common/httpx"
	"kitchen-admin/internal/common/logger"
	"kitchen-admin/internal/common/metrics"
	"kitchen-admin/internal/feed"
	"kitchen-admin/internal/genai"
	"kitchen-admin/internal/lifecycle"
	"kitchen-admin/internal/objstore"
	"kitchen-admin/internal/repository"
)

// Run wires and starts the staff-facing admin service: Postgres, the order
// lifecycle manager bound to a change feed, and the HTTP surface.
func Run(ctx context.Context, cfg config.Config) error {
	lg := logger.New("admin-api")

	conn, err := db.Connect(ctx, cfg.Database.Host, cfg.Database.Port,
		cfg.Database.User, cfg.Database.Password, cfg.Database.Name, cfg.Database.MaxConns)
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer conn.Close()
	if err := repository.Migrate(ctx, conn); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	orders := repository.NewOrdersPG(conn)
	menu := repository.NewMenuPG(conn)

	hostname, _ := os.Hostname()
	mgr := lifecycle.NewManager(orders, "admin@"+hostname, logger.New("lifecycle"))
	if err := mgr.Refresh(ctx); err != nil {
		return fmt.Errorf("initial order load: %w", err)
	}

	var src feed.Source
	switch cfg.Feed.Mode {
	case "poll":
		src = feed.NewPoller(cfg.Feed.PollInterval)
	default:
		dsn := db.DSN(cfg.Database.Host, cfg.Database.Port,
			cfg.Database.User, cfg.Database.Password, cfg.Database.Name)
		src = feed.NewListener(dsn, logger.New("feed"))
	}

	h := &Handlers{
		mgr:     mgr,
		orders:  orders,
		menu:    menu,
		images:  objstore.NewClient(cfg.Storage.Endpoint, cfg.Storage.Bucket, cfg.Storage.APIKey),
		ai:      genai.NewClient(cfg.GenAI.Endpoint, cfg.GenAI.APIKey, cfg.GenAI.Model, cfg.GenAI.Timeout),
		metrics: metrics.NewServerMetrics("admin_api"),
		log:     lg,
	}

	srv := httpx.New(cfg.HTTP.Addr, h.Router(), cfg.HTTP.ReadTimeout, cfg.HTTP.WriteTimeout)
	lg.Info("admin api listening", "addr", cfg.HTTP.Addr, "feed_mode", cfg.Feed.Mode)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := mgr.Watch(gctx, src)
		if gctx.Err() != nil {
			return nil
		}
		return err
	})
	g.Go(func() error { return srv.Run(gctx) })
	return g.Wait()
}

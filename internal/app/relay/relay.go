// Package relay bridges the Postgres change feed into the RabbitMQ fanout
// exchange, so staff sessions and dashboards on other hosts receive change
// notifications without holding their own database connections.
package relay

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"kitchen-admin/internal/common/config"
	"kitchen-admin/internal/common/db"
	"kitchen-admin/internal/common/logger"
	"kitchen-admin/internal/common/mq"
	"kitchen-admin/internal/feed"
)

var watchedTables = []string{"orders", "menu_items"}

func Run(ctx context.Context, cfg config.Config) error {
	lg := logger.New("feed-relay")

	rmq, err := mq.Dial(cfg.Rabbit.Host, cfg.Rabbit.Port, cfg.Rabbit.User, cfg.Rabbit.Password)
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	defer rmq.Close()
	if err := rmq.DeclareAll(); err != nil {
		return fmt.Errorf("declare exchanges: %w", err)
	}

	dsn := db.DSN(cfg.Database.Host, cfg.Database.Port,
		cfg.Database.User, cfg.Database.Password, cfg.Database.Name)
	listener := feed.NewListener(dsn, lg)

	hostname, _ := os.Hostname()
	origin := "relay@" + hostname

	g, gctx := errgroup.WithContext(ctx)
	for _, table := range watchedTables {
		table := table
		g.Go(func() error {
			events, release, err := listener.Subscribe(gctx, table)
			if err != nil {
				return fmt.Errorf("subscribe %s: %w", table, err)
			}
			defer release()
			lg.Info("relaying table changes", "table", table)
			for {
				select {
				case <-gctx.Done():
					return nil
				case _, ok := <-events:
					if !ok {
						return nil
					}
					if err := feed.Publish(gctx, rmq, table, origin); err != nil {
						lg.Error("publish change failed", "table", table, "err", err)
					}
				}
			}
		})
	}
	return g.Wait()
}

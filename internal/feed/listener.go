package feed

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
)

// Listener is the push-based Source: it holds one dedicated Postgres
// connection per subscription and relays LISTEN/NOTIFY wakeups. The
// <table>_changed channels are raised by statement triggers installed in
// the schema migrations.
type Listener struct {
	dsn string
	log *slog.Logger
}

func NewListener(dsn string, log *slog.Logger) *Listener {
	return &Listener{dsn: dsn, log: log}
}

func (l *Listener) Subscribe(ctx context.Context, table string) (<-chan Event, func(), error) {
	conn, err := pgx.Connect(ctx, l.dsn)
	if err != nil {
		return nil, nil, err
	}
	channel := table + "_changed"
	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{channel}.Sanitize()); err != nil {
		_ = conn.Close(ctx)
		return nil, nil, err
	}

	subCtx, cancel := context.WithCancel(ctx)
	out := make(chan Event, 8)
	go func() {
		defer close(out)
		defer func() {
			closeCtx, closeCancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer closeCancel()
			_ = conn.Close(closeCtx)
		}()
		for {
			if _, err := conn.WaitForNotification(subCtx); err != nil {
				if subCtx.Err() == nil {
					l.log.Error("notification wait failed", "table", table, "err", err)
				}
				return
			}
			select {
			case out <- Event{Table: table, At: time.Now().UTC()}:
			default:
				// Subscriber is behind; the pending event already forces a
				// re-query, so dropping this one loses nothing.
			}
		}
	}()
	return out, cancel, nil
}

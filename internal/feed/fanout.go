package feed

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"kitchen-admin/internal/common/mq"
	"kitchen-admin/internal/domain"
)

// Fanout adapts the RabbitMQ fanout exchange into a Source, for processes
// without direct database access. The feed-relay mode feeds the exchange
// from the Postgres listener.
type Fanout struct {
	client   *mq.Client
	consumer string
	log      *slog.Logger
}

func NewFanout(client *mq.Client, consumer string, log *slog.Logger) *Fanout {
	return &Fanout{client: client, consumer: consumer, log: log}
}

func (f *Fanout) Subscribe(ctx context.Context, table string) (<-chan Event, func(), error) {
	deliveries, err := f.client.ConsumeFanout(f.consumer + "." + table)
	if err != nil {
		return nil, nil, err
	}
	subCtx, cancel := context.WithCancel(ctx)
	out := make(chan Event, 8)
	go func() {
		defer close(out)
		for {
			select {
			case <-subCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				var msg domain.ChangeMessage
				if err := json.Unmarshal(d.Body, &msg); err != nil {
					f.log.Error("malformed change message", "err", err)
					continue
				}
				if msg.Table != table {
					continue
				}
				select {
				case out <- Event{Table: msg.Table, At: msg.ObservedAt}:
				default:
				}
			}
		}
	}()
	return out, cancel, nil
}

// Publish pushes one change notification into the fanout exchange.
func Publish(ctx context.Context, client *mq.Client, table, origin string) error {
	body, err := json.Marshal(domain.ChangeMessage{
		Table:      table,
		ObservedAt: time.Now().UTC(),
		Origin:     origin,
	})
	if err != nil {
		return err
	}
	return client.Publish(ctx, mq.ChangesExchange, "", body)
}

package feed

import (
	"context"
	"time"
)

// Poller is the pull-based Source fallback: it emits an event every
// interval, which makes subscribers re-query on a fixed cadence. The
// interval comes from config and trades staleness for load.
type Poller struct {
	interval time.Duration
}

func NewPoller(interval time.Duration) *Poller {
	return &Poller{interval: interval}
}

func (p *Poller) Subscribe(ctx context.Context, table string) (<-chan Event, func(), error) {
	subCtx, cancel := context.WithCancel(ctx)
	out := make(chan Event, 1)
	go func() {
		defer close(out)
		t := time.NewTicker(p.interval)
		defer t.Stop()
		for {
			select {
			case <-subCtx.Done():
				return
			case now := <-t.C:
				select {
				case out <- Event{Table: table, At: now.UTC()}:
				default:
				}
			}
		}
	}()
	return out, cancel, nil
}
